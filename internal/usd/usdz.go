package usd

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// openPackage opens a .usdz archive, records its physical layout, and
// composes the stage from the first usd layer entry.
func openPackage(path string) (*Stage, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}
	defer r.Close()

	pkg := &Package{}
	var layerFile *zip.File
	for _, f := range r.File {
		offset, err := f.DataOffset()
		if err != nil {
			return nil, fmt.Errorf("open package %s: entry %s: %w", path, f.Name, err)
		}
		pkg.Entries = append(pkg.Entries, PackageEntry{
			Name:       f.Name,
			Offset:     offset,
			Compressed: f.Method != zip.Store,
			Size:       f.UncompressedSize64,
		})
		if layerFile == nil && isLayerName(f.Name) {
			layerFile = f
		}
	}
	if layerFile == nil {
		return nil, fmt.Errorf("open package %s: no usd layer entry found", path)
	}
	if strings.EqualFold(filepath.Ext(layerFile.Name), ".usdc") {
		return nil, fmt.Errorf("open package %s: default layer %s is a binary crate layer, which is not supported", path, layerFile.Name)
	}
	pkg.DefaultLayer = layerFile.Name

	rc, err := layerFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}

	st, err := parseLayer(layerFile.Name, data)
	if err != nil {
		return nil, err
	}
	st.path = path
	st.pkg = pkg
	return st, nil
}

// isLayerName reports whether a package entry name is a usd layer.
func isLayerName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".usda", ".usd", ".usdc":
		return true
	}
	return false
}
