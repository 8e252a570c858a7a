// Package containers selects concrete native container strategies for the
// abstract collection types of the source subset and translates abstract
// operations into concrete STC calls.
package containers

import (
	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/config"
)

// AbstractKind is a source-level container annotation not yet bound to a
// native representation.
type AbstractKind int

const (
	Sequence AbstractKind = iota
	Mapping
	UniqueSet
	Text
)

func (k AbstractKind) String() string {
	switch k {
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	case UniqueSet:
		return "set"
	case Text:
		return "text"
	}
	return "abstract(?)"
}

// AbstractKindFor classifies a container annotation. The second result is
// false for non-container annotations.
func AbstractKindFor(ann *ast.TypeAnnotation) (AbstractKind, bool) {
	switch ann.Name {
	case config.ListTypeName, config.DequeTypeName:
		return Sequence, true
	case config.DictTypeName:
		return Mapping, true
	case config.SetTypeName:
		return UniqueSet, true
	case config.StrTypeName:
		return Text, true
	}
	return 0, false
}

// ConcreteKind is a specific native container strategy.
type ConcreteKind int

const (
	Vec ConcreteKind = iota
	Deque
	HashMap
	SortedMap
	HashSet
	SortedSet
	Str
)

func (k ConcreteKind) String() string {
	switch k {
	case Vec:
		return "vec"
	case Deque:
		return "deque"
	case HashMap:
		return "hmap"
	case SortedMap:
		return "smap"
	case HashSet:
		return "hset"
	case SortedSet:
		return "sset"
	case Str:
		return "cstr"
	}
	return "concrete(?)"
}

// Include is the STC header providing the container.
func (k ConcreteKind) Include() string {
	return "stc/" + k.String() + ".h"
}

// TypeSuffix disambiguates generated typedef names per strategy family.
func (k ConcreteKind) TypeSuffix() string {
	switch k {
	case Vec:
		return "Vec"
	case Deque:
		return "Deque"
	case HashMap, SortedMap:
		return "Map"
	case HashSet, SortedSet:
		return "Set"
	}
	return ""
}

// IsKeyValue reports whether the strategy stores key/value pairs.
func (k ConcreteKind) IsKeyValue() bool {
	return k == HashMap || k == SortedMap
}
