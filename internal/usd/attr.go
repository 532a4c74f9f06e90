package usd

import (
	"fmt"
	"strconv"
	"strings"
)

// Attribute is one attribute or relationship opinion on a prim. Values are
// kept in their textual form; typed accessors parse on demand.
type Attribute struct {
	// TypeName is the declared value type, e.g. "int[]" or "asset".
	// Relationships have the type name "rel".
	TypeName string
	// Name is the full declared name, including namespaces and connection
	// suffixes, e.g. "outputs:surface.connect".
	Name string
	// Raw is the unparsed right-hand side of the declaration.
	Raw string
}

// IsRelationship reports whether the attribute is a relationship.
func (a *Attribute) IsRelationship() bool { return a.TypeName == "rel" }

// Ints parses the value as an integer array, e.g. "[3, 3, 4]".
func (a *Attribute) Ints() ([]int, error) {
	body, err := arrayBody(a.Raw)
	if err != nil {
		return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("attribute %s: bad int element %q", a.Name, part)
		}
		out = append(out, n)
	}
	return out, nil
}

// Floats parses the value as a float array, e.g. "[0.5, 1.0]".
func (a *Attribute) Floats() ([]float64, error) {
	body, err := arrayBody(a.Raw)
	if err != nil {
		return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: bad float element %q", a.Name, part)
		}
		out = append(out, f)
	}
	return out, nil
}

// TupleCount counts the tuples in an array of tuples, e.g.
// "[(0,0,0), (1,0,0)]" has two. Returns 0 for an empty array.
func (a *Attribute) TupleCount() (int, error) {
	body, err := arrayBody(a.Raw)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	return strings.Count(body, "("), nil
}

// StringVal returns the value with surrounding quotes removed.
func (a *Attribute) StringVal() string {
	return strings.Trim(strings.TrimSpace(a.Raw), `"`)
}

// AssetPath returns the path between the @ delimiters of an asset value,
// e.g. `@textures/albedo.png@` yields "textures/albedo.png".
func (a *Attribute) AssetPath() string {
	return strings.Trim(strings.TrimSpace(a.Raw), "@")
}

// PathVal returns the prim or property path between < and > delimiters.
func (a *Attribute) PathVal() string {
	return strings.Trim(strings.TrimSpace(a.Raw), "<>")
}

// Bool parses the value as a boolean.
func (a *Attribute) Bool() (bool, error) {
	switch strings.TrimSpace(a.Raw) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("attribute %s: not a boolean: %q", a.Name, a.Raw)
}

// arrayBody strips the surrounding brackets from an array literal.
func arrayBody(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return "", fmt.Errorf("not an array literal: %q", raw)
	}
	return strings.TrimSpace(s[1 : len(s)-1]), nil
}
