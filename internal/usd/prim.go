package usd

import "strings"

// Specifier is the declaration form of a prim in its layer.
type Specifier int

const (
	// SpecifierDef declares a concrete, defined prim.
	SpecifierDef Specifier = iota
	// SpecifierOver declares speculative opinions; the prim is not defined.
	SpecifierOver
	// SpecifierClass declares an abstract prototype.
	SpecifierClass
)

// String returns the usda keyword for the specifier.
func (s Specifier) String() string {
	switch s {
	case SpecifierOver:
		return "over"
	case SpecifierClass:
		return "class"
	default:
		return "def"
	}
}

// Kind is the closed set of prim categories the validation engine
// distinguishes. Anything that is not a recognized category is KindOther.
type Kind int

const (
	// KindOther is the catch-all for unrecognized or untyped prims.
	KindOther Kind = iota
	// KindMesh is a polygonal geometry prim.
	KindMesh
	// KindMaterial is a material definition prim.
	KindMaterial
)

// String returns a stable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "Mesh"
	case KindMaterial:
		return "Material"
	default:
		return "Other"
	}
}

// KindOf maps a prim type tag to its Kind. Unknown tags map to KindOther.
func KindOf(typeName string) Kind {
	switch typeName {
	case "Mesh":
		return KindMesh
	case "Material":
		return KindMaterial
	default:
		return KindOther
	}
}

// Prim is one node of the composed scene hierarchy. Prims are owned by their
// Stage and must not be retained past its lifetime.
type Prim struct {
	name         string
	path         string
	specifier    Specifier
	typeName     string
	active       bool
	instanceable bool
	abstract     bool
	defined      bool
	proxy        bool
	references   []string
	attrs        map[string]*Attribute
	children     []*Prim
}

// Name returns the prim's own name.
func (p *Prim) Name() string { return p.name }

// Path returns the absolute prim path, e.g. "/Root/Geom".
func (p *Prim) Path() string { return p.path }

// Specifier returns the prim's declaration specifier.
func (p *Prim) Specifier() Specifier { return p.specifier }

// TypeName returns the prim's type tag, e.g. "Mesh". Empty for untyped prims.
func (p *Prim) TypeName() string { return p.typeName }

// Kind returns the engine-facing category derived from the type tag.
func (p *Prim) Kind() Kind { return KindOf(p.typeName) }

// IsActive reports whether the prim's active metadata is unset or true.
func (p *Prim) IsActive() bool { return p.active }

// IsDefined reports whether the prim and all its ancestors carry defining
// specifiers (def or class); a def nested under an over is not defined.
func (p *Prim) IsDefined() bool { return p.defined }

// IsAbstract reports whether the prim is a class prototype or lives under one.
func (p *Prim) IsAbstract() bool { return p.abstract }

// IsInstanceProxy reports whether the prim is the resolved stand-in for a
// prototype child reached through an instanceable prim.
func (p *Prim) IsInstanceProxy() bool { return p.proxy }

// IsInstanceable reports whether the prim carries the instanceable metadata.
func (p *Prim) IsInstanceable() bool { return p.instanceable }

// References returns the prim's local reference targets, in declaration order.
func (p *Prim) References() []string { return p.references }

// Children returns the prim's children in document order, including any
// resolved instance proxies.
func (p *Prim) Children() []*Prim { return p.children }

// Attr looks up an attribute or relationship by its full declared name,
// including any namespace prefix (e.g. "inputs:file").
func (p *Prim) Attr(name string) (*Attribute, bool) {
	a, ok := p.attrs[name]
	return a, ok
}

// AttrNames returns the declared attribute names. Order is unspecified.
func (p *Prim) AttrNames() []string {
	names := make([]string, 0, len(p.attrs))
	for n := range p.attrs {
		names = append(names, n)
	}
	return names
}

// cloneAsProxy deep-copies a prototype subtree as instance proxies rooted
// under parentPath. Proxies are concrete: the abstract flag is cleared, and
// defined-ness follows the instance they hang under.
func cloneAsProxy(p *Prim, parentPath string, parentDefined bool) *Prim {
	c := &Prim{
		name:         p.name,
		path:         parentPath + "/" + p.name,
		specifier:    SpecifierDef,
		typeName:     p.typeName,
		active:       p.active,
		instanceable: false,
		abstract:     false,
		defined:      parentDefined,
		proxy:        true,
		references:   p.references,
		attrs:        p.attrs,
	}
	for _, child := range p.children {
		c.children = append(c.children, cloneAsProxy(child, c.path, c.defined))
	}
	return c
}

// markFlags propagates hierarchy-derived status down the tree: every
// descendant of a class is abstract, and a prim is defined only when it and
// all its ancestors carry defining specifiers (def or class).
func markFlags(p *Prim, underClass, parentDefined bool) {
	p.abstract = underClass || p.specifier == SpecifierClass
	p.defined = parentDefined && p.specifier != SpecifierOver
	for _, c := range p.children {
		markFlags(c, p.abstract, p.defined)
	}
}

// splitPath splits an absolute prim path into its components.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
