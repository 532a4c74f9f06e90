// Package fsutil provides file system helpers for input discovery.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// sceneExtensions are the file suffixes directory expansion picks up.
var sceneExtensions = map[string]bool{
	".usda": true,
	".usd":  true,
	".usdz": true,
}

// FindSceneFiles recursively collects all scene files under the given root,
// in lexical walk order.
func FindSceneFiles(rootPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && sceneExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
