package containers

import (
	"fmt"
	"strings"

	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/diagnostics"
)

// Binding is one container variable bound to a concrete strategy: a unique
// generated type name plus the native element types instantiating it.
type Binding struct {
	Var      string
	Kind     ConcreteKind
	TypeName string
	Elem     string // native element (or key) type
	Value    string // native mapped value type, key-value kinds only
}

// TypeDef renders the template instantiation line preceding the include.
// The text form of an STC instantiation is a T define listing the type
// name and its element types.
func (b *Binding) TypeDef() string {
	if b.Kind == Str {
		return ""
	}
	if b.Kind.IsKeyValue() {
		return fmt.Sprintf("#define T %s, %s, %s", b.TypeName, b.Elem, b.Value)
	}
	return fmt.Sprintf("#define T %s, %s", b.TypeName, b.Elem)
}

// Include is the header providing the bound strategy.
func (b *Binding) Include() string { return b.Kind.Include() }

// Init is the zero initializer valid for every STC container.
func (b *Binding) Init() string { return "{0}" }

// Call renders an STC call. recv is the receiver's address expression:
// "&v" for a local, the bare name for a pointer parameter.
func (b *Binding) Call(fn, recv string, args ...string) string {
	all := append([]string{recv}, args...)
	return fmt.Sprintf("%s_%s(%s)", b.TypeName, fn, strings.Join(all, ", "))
}

// DropCall releases the container's storage.
func (b *Binding) DropCall(recv string) string { return b.Call("drop", recv) }

// SizeExpr is the native length query backing len().
func (b *Binding) SizeExpr(recv string) string { return b.Call("size", recv) }

// ContainsExpr is the native membership test backing the in operator.
func (b *Binding) ContainsExpr(recv, key string) string {
	return b.Call("contains", recv, key)
}

// LoadExpr reads one element by index or key.
func (b *Binding) LoadExpr(recv, key string) string {
	return "*" + b.Call("at", recv, key)
}

// StoreStmt writes one element by index or key.
func (b *Binding) StoreStmt(recv, key, val string) string {
	if b.Kind.IsKeyValue() {
		return b.Call("insert_or_assign", recv, key, val) + ";"
	}
	return fmt.Sprintf("*%s = %s;", b.Call("at_mut", recv, key), val)
}

// Mapper assigns concrete bindings to container variables. Generated type
// names are unique across one translation unit even when distinct
// functions reuse a variable name.
type Mapper struct {
	used     map[string]bool
	bindings map[string]*Binding
	order    []string
}

func NewMapper() *Mapper {
	return &Mapper{
		used:     make(map[string]bool),
		bindings: make(map[string]*Binding),
	}
}

// Bind resolves the element types of a container annotation and registers
// a binding under a fresh type name.
func (m *Mapper) Bind(varName string, ann *ast.TypeAnnotation, kind ConcreteKind, line int) (*Binding, *diagnostics.DiagnosticError) {
	b := &Binding{Var: varName, Kind: kind}

	switch {
	case kind == Str:
		if len(ann.Args) != 0 {
			return nil, diagnostics.NewError(diagnostics.ErrC002, line, ann.String())
		}
		b.TypeName = "cstr"
	case kind.IsKeyValue():
		if len(ann.Args) != 2 {
			return nil, diagnostics.NewError(diagnostics.ErrC002, line, ann.String())
		}
		key, ok := nativeElemType(ann.Args[0])
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrC002, line, ann.String())
		}
		val, ok := nativeElemType(ann.Args[1])
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrC002, line, ann.String())
		}
		b.Elem, b.Value = key, val
		b.TypeName = m.freshTypeName(varName, kind)
	default:
		if len(ann.Args) != 1 {
			return nil, diagnostics.NewError(diagnostics.ErrC002, line, ann.String())
		}
		elem, ok := nativeElemType(ann.Args[0])
		if !ok {
			return nil, diagnostics.NewError(diagnostics.ErrC002, line, ann.String())
		}
		b.Elem = elem
		b.TypeName = m.freshTypeName(varName, kind)
	}

	m.bindings[varName] = b
	m.order = append(m.order, varName)
	return b, nil
}

// Binding returns the binding of a variable, if any.
func (m *Mapper) Binding(varName string) (*Binding, bool) {
	b, ok := m.bindings[varName]
	return b, ok
}

// Bindings returns all bindings in registration order.
func (m *Mapper) Bindings() []*Binding {
	out := make([]*Binding, 0, len(m.order))
	for _, v := range m.order {
		out = append(out, m.bindings[v])
	}
	return out
}

// Reset clears per-function bindings while keeping the name pool, so
// type names stay unique across a whole translation unit.
func (m *Mapper) Reset() {
	m.bindings = make(map[string]*Binding)
	m.order = nil
}

func (m *Mapper) freshTypeName(varName string, kind ConcreteKind) string {
	base := capitalize(varName) + kind.TypeSuffix()
	name := base
	for n := 2; m.used[name]; n++ {
		name = fmt.Sprintf("%s%d", base, n)
	}
	m.used[name] = true
	return name
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// nativeElemType maps an element annotation to its native type. Only
// primitives, text and record names are storable; nesting containers is
// not supported.
func nativeElemType(ann *ast.TypeAnnotation) (string, bool) {
	if ann == nil || len(ann.Args) != 0 {
		return "", false
	}
	switch ann.Name {
	case config.IntTypeName:
		return "int", true
	case config.FloatTypeName:
		return "double", true
	case config.BoolTypeName:
		return "bool", true
	case config.StrTypeName:
		return "cstr", true
	case config.ListTypeName, config.DictTypeName, config.SetTypeName, config.DequeTypeName:
		return "", false
	case config.NoneTypeName:
		return "", false
	}
	return ann.Name, true
}

type opKey struct {
	method string
	argc   int
}

var sequenceOps = map[opKey]string{
	{"append", 1}: "push",
	{"pop", 0}:    "pop",
	{"pop", 1}:    "erase_at",
	{"insert", 2}: "insert_at",
	{"remove", 1}: "erase_val",
	{"clear", 0}:  "clear",
	{"copy", 0}:   "clone",
}

var mappingOps = map[opKey]string{
	{"get", 1}:   "get",
	{"pop", 1}:   "erase",
	{"clear", 0}: "clear",
	{"copy", 0}:  "clone",
}

var setOps = map[opKey]string{
	{"add", 1}:     "insert",
	{"remove", 1}:  "erase",
	{"discard", 1}: "erase",
	{"clear", 0}:   "clear",
	{"copy", 0}:    "clone",
}

var textOps = map[opKey]string{
	{"append", 1}: "append_s",
	{"clear", 0}:  "clear",
	{"copy", 0}:   "clone",
}

// MapOperation translates an abstract container method to the concrete
// call name of the bound strategy. Methods without a translation are a
// hard error: silently approximating a container operation would change
// program behavior.
func (m *Mapper) MapOperation(b *Binding, method string, argc, line int) (string, *diagnostics.DiagnosticError) {
	var table map[opKey]string
	switch b.Kind {
	case Vec, Deque:
		table = sequenceOps
	case HashMap, SortedMap:
		table = mappingOps
	case HashSet, SortedSet:
		table = setOps
	case Str:
		table = textOps
	}
	if fn, ok := table[opKey{method, argc}]; ok {
		return fn, nil
	}
	return "", diagnostics.NewError(diagnostics.ErrC001, line, b.Var, method)
}
