// Package typesystem defines the type lattice of the translation core and
// the Unify lattice-join operation.
//
// The domain is a closed variant: primitives (Int, Bool, Float), nominal
// record types, flattened unions of at least two distinct non-unknown
// members, and Unknown as the bottom element. Container shapes are not part
// of the lattice; they are resolved from annotations by the container
// mapper.
package typesystem

import (
	"sort"
	"strings"
)

// Type is the interface for all types in the lattice.
type Type interface {
	String() string
	typeNode()
}

// PrimKind enumerates the primitive types.
type PrimKind int

const (
	Int PrimKind = iota
	Bool
	Float
)

// Primitive is a scalar native type.
type Primitive struct {
	Kind PrimKind
}

func (p Primitive) typeNode() {}

func (p Primitive) String() string {
	switch p.Kind {
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	case Float:
		return "Float"
	}
	return "Primitive(?)"
}

// Record is a nominal record type, resolved by name against the registry.
type Record struct {
	Name string
}

func (r Record) typeNode()      {}
func (r Record) String() string { return r.Name }

// Union is a flattened set of at least two distinct non-unknown members.
// Construct unions only through NormalizeUnion, which maintains the
// invariant.
type Union struct {
	Types []Type
}

func (u Union) typeNode() {}

func (u Union) String() string {
	parts := make([]string, len(u.Types))
	for i, t := range u.Types {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}

// Unknown is the lattice bottom: absorbed by any other type under Unify.
type Unknown struct{}

func (Unknown) typeNode()      {}
func (Unknown) String() string { return "Unknown" }

// IsUnknown reports whether t is the bottom element.
func IsUnknown(t Type) bool {
	_, ok := t.(Unknown)
	return ok
}

// Equal compares two types structurally. Unions compare as sets; both
// sides are assumed normalized (sorted, deduplicated).
func Equal(a, b Type) bool {
	return a.String() == b.String()
}

// NormalizeUnion builds a normalized type from a list of candidate
// members: nested unions are flattened, Unknown members are absorbed,
// duplicates removed, and the result is sorted for deterministic
// comparison. Fewer than two members collapse to the single member or
// Unknown.
func NormalizeUnion(types []Type) Type {
	flat := make([]Type, 0, len(types))
	for _, t := range types {
		switch tt := t.(type) {
		case Union:
			flat = append(flat, tt.Types...)
		case Unknown:
			// bottom: contributes nothing
		default:
			flat = append(flat, t)
		}
	}

	seen := make(map[string]bool, len(flat))
	unique := make([]Type, 0, len(flat))
	for _, t := range flat {
		s := t.String()
		if !seen[s] {
			seen[s] = true
			unique = append(unique, t)
		}
	}

	switch len(unique) {
	case 0:
		return Unknown{}
	case 1:
		return unique[0]
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})
	return Union{Types: unique}
}

// Members returns the union members of t, or t itself as a single-element
// slice when t is not a union.
func Members(t Type) []Type {
	if u, ok := t.(Union); ok {
		return u.Types
	}
	return []Type{t}
}

// RemoveMember narrows t by excluding member m: the else-branch of a
// type test. If t is exactly m the result resets to Unknown; removing
// from a union renormalizes (a single leftover member collapses).
func RemoveMember(t, m Type) Type {
	if Equal(t, m) {
		return Unknown{}
	}
	u, ok := t.(Union)
	if !ok {
		return t
	}
	kept := make([]Type, 0, len(u.Types))
	for _, member := range u.Types {
		if !Equal(member, m) {
			kept = append(kept, member)
		}
	}
	return NormalizeUnion(kept)
}
