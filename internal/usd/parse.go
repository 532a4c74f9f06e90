package usd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// primDeclRe matches a prim declaration line: specifier, optional type tag,
// quoted name, and whatever trails it ("{", "(" or nothing).
var primDeclRe = regexp.MustCompile(`^(def|over|class)(?:\s+([A-Za-z_][\w]*))?\s+"([^"]+)"\s*(.*)$`)

// attrDeclRe matches an attribute or relationship declaration up to the
// optional "= value" part. Names may carry namespaces and connection
// suffixes, e.g. "outputs:surface.connect".
var attrDeclRe = regexp.MustCompile(`^([A-Za-z_][\w\[\]]*)\s+([A-Za-z_][\w:.]*)\s*(=\s*(.*))?$`)

// attrQualifiers are declaration keywords that precede the type name and do
// not change how this tool reads the value.
var attrQualifiers = map[string]bool{
	"uniform": true,
	"custom":  true,
	"prepend": true,
	"append":  true,
	"add":     true,
	"delete":  true,
	"varying": true,
}

type parser struct {
	name  string
	lines []string
	pos   int
}

type parseError struct {
	name string
	line int
	msg  string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.name, e.line, e.msg)
}

func (p *parser) errorf(format string, args ...any) error {
	return &parseError{name: p.name, line: p.pos, msg: fmt.Sprintf(format, args...)}
}

// next returns the next meaningful line, skipping blanks and comments.
// The "#usda" header line is not a comment and is never skipped.
func (p *parser) next() (string, bool) {
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(strings.TrimSuffix(p.lines[p.pos], "\r"))
		p.pos++
		if line == "" || (strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "#usda")) {
			continue
		}
		return line, true
	}
	return "", false
}

// peek returns the next meaningful line without consuming it.
func (p *parser) peek() (string, bool) {
	save := p.pos
	line, ok := p.next()
	p.pos = save
	return line, ok
}

// parseLayer parses usda text into the stage's layer metadata and root prims.
func parseLayer(name string, data []byte) (*Stage, error) {
	p := &parser{name: name, lines: strings.Split(string(data), "\n")}

	header, ok := p.next()
	if !ok || !strings.HasPrefix(header, "#usda") {
		return nil, &parseError{name: name, line: 1, msg: "missing #usda header"}
	}

	st := &Stage{metersPerUnit: 1}
	if line, ok := p.peek(); ok && line == "(" {
		p.next()
		if err := p.parseLayerMetadata(st); err != nil {
			return nil, err
		}
	}

	for {
		line, ok := p.next()
		if !ok {
			break
		}
		prim, err := p.parsePrim(line, "")
		if err != nil {
			return nil, err
		}
		st.roots = append(st.roots, prim)
	}

	for _, r := range st.roots {
		markFlags(r, false, true)
	}
	st.resolveInstances()
	return st, nil
}

// parseLayerMetadata reads the parenthesized layer metadata block.
func (p *parser) parseLayerMetadata(st *Stage) error {
	for {
		line, ok := p.next()
		if !ok {
			return p.errorf("unterminated layer metadata")
		}
		if line == ")" {
			return nil
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "defaultPrim":
			st.defaultPrim = strings.Trim(value, `"`)
		case "upAxis":
			st.upAxis = strings.Trim(value, `"`)
		case "metersPerUnit":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				st.metersPerUnit = f
			}
		}
	}
}

// parsePrim parses one prim declaration starting at decl, including its
// metadata block and body, and returns the completed prim.
func (p *parser) parsePrim(decl, parentPath string) (*Prim, error) {
	m := primDeclRe.FindStringSubmatch(decl)
	if m == nil {
		return nil, p.errorf("expected prim declaration, got %q", decl)
	}

	prim := &Prim{
		name:     m[3],
		typeName: m[2],
		active:   true,
		attrs:    map[string]*Attribute{},
	}
	prim.path = parentPath + "/" + prim.name
	switch m[1] {
	case "over":
		prim.specifier = SpecifierOver
	case "class":
		prim.specifier = SpecifierClass
	default:
		prim.specifier = SpecifierDef
	}

	rest := strings.TrimSpace(m[4])
	if rest == "(" {
		if err := p.parsePrimMetadata(prim); err != nil {
			return nil, err
		}
		rest = ""
	}
	if rest == "" {
		line, ok := p.next()
		if !ok {
			return nil, p.errorf("prim %s: missing body", prim.path)
		}
		rest = line
	}
	if rest != "{" {
		return nil, p.errorf("prim %s: expected '{', got %q", prim.path, rest)
	}

	if err := p.parsePrimBody(prim); err != nil {
		return nil, err
	}
	return prim, nil
}

// parsePrimMetadata reads the parenthesized metadata block of a prim.
func (p *parser) parsePrimMetadata(prim *Prim) error {
	for {
		line, ok := p.next()
		if !ok {
			return p.errorf("prim %s: unterminated metadata", prim.path)
		}
		if line == ")" {
			return nil
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		// List-edit qualifiers carry no meaning for a single layer.
		key = strings.TrimPrefix(key, "prepend ")
		key = strings.TrimPrefix(key, "append ")
		switch key {
		case "active":
			prim.active = value != "false"
		case "instanceable":
			prim.instanceable = value == "true"
		case "references":
			prim.references = append(prim.references, parseReferenceList(value)...)
		}
	}
}

// parsePrimBody reads attribute declarations and child prims until the
// closing brace.
func (p *parser) parsePrimBody(prim *Prim) error {
	for {
		line, ok := p.next()
		if !ok {
			return p.errorf("prim %s: unterminated body", prim.path)
		}
		if line == "}" {
			return nil
		}
		if primDeclRe.MatchString(line) {
			child, err := p.parsePrim(line, prim.path)
			if err != nil {
				return err
			}
			prim.children = append(prim.children, child)
			continue
		}
		if attr, ok, err := p.parseAttribute(line); err != nil {
			return fmt.Errorf("prim %s: %w", prim.path, err)
		} else if ok {
			prim.attrs[attr.Name] = attr
			continue
		}
		// Unsupported construct (variant sets, nested dictionaries): skip
		// the whole block so brace tracking stays sound.
		if strings.HasSuffix(line, "{") {
			if err := p.skipBlock(); err != nil {
				return err
			}
		}
	}
}

// parseAttribute parses one attribute or relationship declaration. The
// second return value reports whether the line was recognized as one.
func (p *parser) parseAttribute(line string) (*Attribute, bool, error) {
	fields := strings.Fields(line)
	for len(fields) > 0 && attrQualifiers[fields[0]] {
		fields = fields[1:]
	}
	stripped := strings.Join(fields, " ")

	m := attrDeclRe.FindStringSubmatch(stripped)
	if m == nil {
		return nil, false, nil
	}
	attr := &Attribute{TypeName: m[1], Name: m[2], Raw: strings.TrimSpace(m[4])}
	if m[3] == "" {
		// Declaration without a value opinion.
		return attr, true, nil
	}

	// Array and tuple values may continue over several lines; join until
	// the brackets balance.
	for bracketBalance(attr.Raw) > 0 {
		cont, ok := p.next()
		if !ok {
			return nil, false, p.errorf("attribute %s: unterminated value", attr.Name)
		}
		attr.Raw += " " + cont
	}
	return attr, true, nil
}

// skipBlock consumes lines until the braces opened so far are closed.
func (p *parser) skipBlock() error {
	depth := 1
	for depth > 0 {
		line, ok := p.next()
		if !ok {
			return p.errorf("unterminated block")
		}
		depth += strings.Count(line, "{") - strings.Count(line, "}")
	}
	return nil
}

// bracketBalance counts unclosed brackets and parens outside of strings.
func bracketBalance(s string) int {
	depth := 0
	inString := false
	for _, r := range s {
		switch r {
		case '"':
			inString = !inString
		case '[', '(':
			if !inString {
				depth++
			}
		case ']', ')':
			if !inString {
				depth--
			}
		}
	}
	return depth
}

// parseReferenceList parses a references metadata value: a single target or
// a bracketed list. Local targets are stored as prim paths; targets in other
// layers keep their asset-path prefix verbatim.
func parseReferenceList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	var refs []string
	for _, tok := range strings.Split(value, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if strings.HasPrefix(tok, "<") {
			refs = append(refs, strings.Trim(tok, "<>"))
		} else {
			refs = append(refs, tok)
		}
	}
	return refs
}
