package emitter

import (
	"strings"

	"github.com/cgenlang/cgen/internal/cfile"
	"github.com/cgenlang/cgen/internal/typesystem"
)

// unionPool assigns one tagged-union declaration per distinct union type
// seen across the translation unit.
type unionPool struct {
	order []string
	decls map[string]*cfile.UnionDecl
	tags  map[string][]string // union C name -> tag constant per member
}

func newUnionPool() *unionPool {
	return &unionPool{
		decls: make(map[string]*cfile.UnionDecl),
		tags:  make(map[string][]string),
	}
}

// intern registers a union type and returns its C name. Member order
// follows the normalized union, so the same lattice type always maps to
// the same declaration.
func (p *unionPool) intern(u typesystem.Union) string {
	parts := make([]string, len(u.Types))
	for i, m := range u.Types {
		parts[i] = memberTag(m)
	}
	name := strings.Join(parts, "Or")
	if _, ok := p.decls[name]; ok {
		return name
	}

	decl := &cfile.UnionDecl{Name: name}
	var tags []string
	for _, m := range u.Types {
		decl.Members = append(decl.Members, cfile.StructField{
			Type: scalarCType(m),
			Name: strings.ToLower(memberTag(m)),
		})
		tags = append(tags, name+"_"+memberTag(m))
	}
	p.order = append(p.order, name)
	p.decls[name] = decl
	p.tags[name] = tags
	return name
}

// tagConstant returns the enum constant testing membership of m in u, or
// "" if m is not a member.
func (p *unionPool) tagConstant(u typesystem.Union, m typesystem.Type) string {
	name := p.intern(u)
	for i, member := range u.Types {
		if typesystem.Equal(member, m) {
			return p.tags[name][i]
		}
	}
	return ""
}

// elements renders all pooled declarations in first-use order.
func (p *unionPool) elements() []cfile.Element {
	var out []cfile.Element
	for _, name := range p.order {
		out = append(out, p.decls[name], &cfile.EnumDecl{Names: p.tags[name]}, &cfile.Blank{})
	}
	return out
}

// memberTag is the identifier fragment of one union member.
func memberTag(t typesystem.Type) string {
	switch tt := t.(type) {
	case typesystem.Primitive:
		return tt.String() // Int, Bool, Float
	case typesystem.Record:
		return tt.Name
	}
	return "Unknown"
}

// scalarCType maps a non-union lattice type to its native type.
func scalarCType(t typesystem.Type) string {
	switch tt := t.(type) {
	case typesystem.Primitive:
		switch tt.Kind {
		case typesystem.Int:
			return "int"
		case typesystem.Bool:
			return "bool"
		case typesystem.Float:
			return "double"
		}
	case typesystem.Record:
		return tt.Name
	}
	return ""
}

// cTypeOf maps any lattice type to its native type, interning union
// declarations as a side effect. Returns "" for Unknown: the analyzer
// rejects functions with Unknown-typed variables before emission.
func (t *translator) cTypeOf(typ typesystem.Type) string {
	if u, ok := typ.(typesystem.Union); ok {
		return t.unions.intern(u)
	}
	return scalarCType(typ)
}

// zeroValue is the C zero of a native type, used on failure paths.
func zeroValue(cType string) string {
	switch cType {
	case "", "void":
		return ""
	case "int", "bool":
		return "0"
	case "double":
		return "0.0"
	}
	return "(" + cType + "){0}"
}
