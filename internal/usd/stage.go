package usd

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// crateMagic is the file signature of binary crate layers, which this tool
// does not read.
var crateMagic = []byte("PXR-USDC")

// Predicate decides whether a prim is yielded by Traverse. A prim failing
// the predicate is pruned together with its entire subtree.
type Predicate func(*Prim) bool

// Stage is an opened scene: layer metadata, the prim hierarchy, and (for
// .usdz inputs) the package listing.
type Stage struct {
	path          string
	defaultPrim   string
	upAxis        string
	metersPerUnit float64
	roots         []*Prim
	pkg           *Package
}

// Package describes a .usdz archive's physical layout, used by the
// package-scope compliance rules.
type Package struct {
	// DefaultLayer is the archive entry the stage was composed from.
	DefaultLayer string
	Entries      []PackageEntry
}

// PackageEntry is one file inside a .usdz archive.
type PackageEntry struct {
	Name string
	// Offset is the byte offset of the entry's data within the archive.
	Offset int64
	// Compressed reports whether the entry uses a compression method.
	Compressed bool
	Size       uint64
}

// Open reads a scene file and composes its stage. Supported inputs are
// .usda/.usd text layers and .usdz packages.
func Open(path string) (*Stage, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".usda", ".usd":
		return openLayer(path)
	case ".usdz":
		return openPackage(path)
	default:
		return nil, fmt.Errorf("open %s: unrecognized scene format %q", path, filepath.Ext(path))
	}
}

func openLayer(path string) (*Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open layer: %w", err)
	}
	if bytes.HasPrefix(data, crateMagic) {
		return nil, fmt.Errorf("open %s: binary crate layers are not supported", path)
	}
	st, err := parseLayer(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	st.path = path
	return st, nil
}

// Path returns the file path the stage was opened from.
func (s *Stage) Path() string { return s.path }

// DefaultPrim returns the layer's defaultPrim metadata, or "".
func (s *Stage) DefaultPrim() string { return s.defaultPrim }

// UpAxis returns the layer's upAxis metadata, or "".
func (s *Stage) UpAxis() string { return s.upAxis }

// MetersPerUnit returns the layer's metersPerUnit metadata (default 1).
func (s *Stage) MetersPerUnit() float64 { return s.metersPerUnit }

// RootPrims returns the top-level prims in document order.
func (s *Stage) RootPrims() []*Prim { return s.roots }

// UsdzPackage returns the archive layout for .usdz inputs, or nil for
// loose layers.
func (s *Stage) UsdzPackage() *Package { return s.pkg }

// FindPrim resolves an absolute prim path, returning nil when no prim
// exists at it.
func (s *Stage) FindPrim(path string) *Prim {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil
	}
	var cur *Prim
	scope := s.roots
	for _, part := range parts {
		cur = nil
		for _, p := range scope {
			if p.name == part {
				cur = p
				break
			}
		}
		if cur == nil {
			return nil
		}
		scope = cur.children
	}
	return cur
}

// Traverse returns a restartable depth-first iteration over the hierarchy
// in document order, yielding only prims that pass the predicate. A nil
// predicate yields every prim. The traversal never mutates the stage.
func (s *Stage) Traverse(pred Predicate) iter.Seq[*Prim] {
	return func(yield func(*Prim) bool) {
		var walk func(p *Prim) bool
		walk = func(p *Prim) bool {
			if pred != nil && !pred(p) {
				return true
			}
			if !yield(p) {
				return false
			}
			for _, c := range p.children {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		for _, r := range s.roots {
			if !walk(r) {
				return
			}
		}
	}
}

// resolveInstances expands instanceable prims: each one referencing a local
// prototype gains that prototype's children as instance proxies. The
// prototype subtree itself stays abstract and is therefore never visited by
// the default validation predicate, so instanced geometry is seen exactly
// once, in its resolved form.
func (s *Stage) resolveInstances() {
	var walk func(p *Prim)
	walk = func(p *Prim) {
		for _, c := range p.children {
			walk(c)
		}
		if !p.instanceable {
			return
		}
		for _, ref := range p.references {
			if !strings.HasPrefix(ref, "/") {
				continue
			}
			proto := s.FindPrim(ref)
			if proto == nil {
				continue
			}
			if p.typeName == "" {
				p.typeName = proto.typeName
			}
			for _, child := range proto.children {
				p.children = append(p.children, cloneAsProxy(child, p.path, p.defined))
			}
		}
	}
	for _, r := range s.roots {
		walk(r)
	}
}

// WriteOutline writes an indented summary of the hierarchy: one line per
// prim with its specifier, type and status flags.
func (s *Stage) WriteOutline(w io.Writer) {
	var walk func(p *Prim, depth int)
	walk = func(p *Prim, depth int) {
		var flags []string
		if !p.IsActive() {
			flags = append(flags, "inactive")
		}
		if p.IsAbstract() {
			flags = append(flags, "abstract")
		}
		if p.IsInstanceProxy() {
			flags = append(flags, "proxy")
		}
		if p.IsInstanceable() {
			flags = append(flags, "instanceable")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = " (" + strings.Join(flags, ", ") + ")"
		}
		typeName := p.TypeName()
		if typeName == "" {
			typeName = "<untyped>"
		}
		fmt.Fprintf(w, "%s%s %s %q%s\n", strings.Repeat("  ", depth), p.Specifier(), typeName, p.Name(), suffix)
		for _, c := range p.children {
			walk(c, depth+1)
		}
	}
	for _, r := range s.roots {
		walk(r, 0)
	}
}
