package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/containers"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/typesystem"
)

var binaryOps = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "//": "/", "%": "%",
	"and": "&&", "or": "||",
}

var compareOps = map[string]string{
	"==": "==", "!=": "!=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

var unaryOps = map[string]string{
	"not": "!", "-": "-",
}

// exprString renders an expression to C text. Unsupported shapes collect a
// diagnostic and render a placeholder; the function is excluded from the
// unit whenever any diagnostic exists, so the placeholder never ships.
func (t *translator) exprString(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(n.Value, 10)

	case *ast.FloatLiteral:
		s := strconv.FormatFloat(n.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s

	case *ast.BoolLiteral:
		if n.Value {
			return "true"
		}
		return "false"

	case *ast.StringLiteral:
		return "cstr_lit(" + strconv.Quote(n.Value) + ")"

	case *ast.Name:
		t.mem.NoteUse(n.Value, n.Line)
		if _, isContainer := t.binding(n.Value); isContainer {
			return t.valueOf(n.Value)
		}
		return n.Value

	case *ast.AttributeExpr:
		return t.attributeString(n)

	case *ast.BinaryExpr:
		op, ok := binaryOps[n.Op]
		if !ok {
			t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, n.Op))
			return "0"
		}
		return "(" + t.exprString(n.Left) + " " + op + " " + t.exprString(n.Right) + ")"

	case *ast.UnaryExpr:
		op, ok := unaryOps[n.Op]
		if !ok {
			t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, n.Op))
			return "0"
		}
		return op + "(" + t.exprString(n.X) + ")"

	case *ast.CompareExpr:
		return t.compareString(n)

	case *ast.TernaryExpr:
		return "(" + t.exprString(n.Test) + " ? " + t.exprString(n.Then) + " : " + t.exprString(n.Else) + ")"

	case *ast.TypeTestExpr:
		return t.typeTestString(n)

	case *ast.CallExpr:
		return t.callString(n)

	case *ast.MethodCallExpr:
		return t.methodCallString(n)

	case *ast.SubscriptExpr:
		return t.subscriptString(n)

	case *ast.RecordLiteral:
		return t.recordLiteralString(n)
	}

	t.addError(diagnostics.NewError(diagnostics.ErrU002, e.Pos(), fmt.Sprintf("%T", e)))
	return "0"
}

func (t *translator) attributeString(n *ast.AttributeExpr) string {
	base, ok := n.X.(*ast.Name)
	if !ok {
		t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, fmt.Sprintf("%T", n.X)))
		return "0"
	}
	typ, _ := t.ft.Env.Get(base.Value)
	if typ != nil {
		if _, isUnion := typ.(typesystem.Union); isUnion {
			// Field access on a union value needs a narrowing the
			// emitter does not re-derive.
			t.addError(diagnostics.NewError(diagnostics.ErrT001, n.Line, typ.String()))
			return "0"
		}
	}
	return base.Value + "." + n.Name
}

func (t *translator) compareString(n *ast.CompareExpr) string {
	if n.Op == "in" || n.Op == "not in" {
		name, ok := n.Right.(*ast.Name)
		if !ok {
			t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, n.Op))
			return "0"
		}
		b, bound := t.binding(name.Value)
		if !bound {
			t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, name.Value))
			return "0"
		}
		contains := b.ContainsExpr(t.addrOf(name.Value), t.exprString(n.Left))
		if n.Op == "not in" {
			return "!" + contains
		}
		return contains
	}
	op, ok := compareOps[n.Op]
	if !ok {
		t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, n.Op))
		return "0"
	}
	return "(" + t.exprString(n.Left) + " " + op + " " + t.exprString(n.Right) + ")"
}

// typeTestString lowers a declared-type test. On a union value it becomes
// a tag check; on a statically known type it folds to a constant.
func (t *translator) typeTestString(n *ast.TypeTestExpr) string {
	typ, ok := t.ft.Env.Get(n.Var)
	if !ok || typ == nil {
		return "false"
	}
	tested := annotationLatticeType(n.Type)
	if tested == nil {
		t.addError(diagnostics.NewError(diagnostics.ErrT002, n.Line, n.Type.String(), n.Var))
		return "false"
	}
	if u, isUnion := typ.(typesystem.Union); isUnion {
		if tag := t.unions.tagConstant(u, tested); tag != "" {
			return "(" + n.Var + ".tag == " + tag + ")"
		}
		return "false"
	}
	if typesystem.Equal(typ, tested) {
		return "true"
	}
	return "false"
}

// annotationLatticeType is the emitter-side annotation resolver; container
// annotations have no lattice type.
func annotationLatticeType(ann *ast.TypeAnnotation) typesystem.Type {
	if ann == nil || len(ann.Args) != 0 {
		return nil
	}
	switch ann.Name {
	case config.IntTypeName:
		return typesystem.Primitive{Kind: typesystem.Int}
	case config.FloatTypeName:
		return typesystem.Primitive{Kind: typesystem.Float}
	case config.BoolTypeName:
		return typesystem.Primitive{Kind: typesystem.Bool}
	case config.ListTypeName, config.DictTypeName, config.SetTypeName,
		config.StrTypeName, config.DequeTypeName, config.NoneTypeName:
		return nil
	}
	return typesystem.Record{Name: ann.Name}
}

func (t *translator) callString(n *ast.CallExpr) string {
	switch n.Func {
	case config.LenFuncName:
		if len(n.Args) == 1 {
			if name, ok := n.Args[0].(*ast.Name); ok {
				if b, bound := t.binding(name.Value); bound {
					return b.SizeExpr(t.addrOf(name.Value))
				}
			}
		}
		t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, config.LenFuncName))
		return "0"
	case config.RangeFuncName, config.PrintFuncName:
		t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, n.Func))
		return "0"
	}

	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		if name, ok := a.(*ast.Name); ok {
			if _, isContainer := t.binding(name.Value); isContainer {
				// Containers cross scopes by pointer; ownership
				// is considered transferred.
				args[i] = t.addrOf(name.Value)
				t.mem.MarkMoved(name.Value, n.Line)
				continue
			}
		}
		args[i] = t.exprString(a)
	}
	return n.Func + "(" + strings.Join(args, ", ") + ")"
}

func (t *translator) methodCallString(n *ast.MethodCallExpr) string {
	b, ok := t.binding(n.Recv)
	if !ok {
		t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, n.Recv+"."+n.Method))
		return "0"
	}
	op, derr := t.em.mapper.MapOperation(b, n.Method, len(n.Args), n.Line)
	if derr != nil {
		t.addError(derr)
		return "0"
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = t.exprString(a)
	}
	call := b.Call(op, t.addrOf(n.Recv), args...)
	if op == "get" {
		return "*" + call
	}
	return call
}

func (t *translator) subscriptString(n *ast.SubscriptExpr) string {
	name, ok := n.X.(*ast.Name)
	if !ok {
		t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, fmt.Sprintf("%T", n.X)))
		return "0"
	}
	b, bound := t.binding(name.Value)
	if !bound {
		t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, name.Value))
		return "0"
	}
	idx := t.exprString(n.Index)
	switch b.Kind {
	case containers.HashSet, containers.SortedSet:
		return b.ContainsExpr(t.addrOf(name.Value), idx)
	}
	return b.LoadExpr(t.addrOf(name.Value), idx)
}

func (t *translator) recordLiteralString(n *ast.RecordLiteral) string {
	fields := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = "." + f + " = " + t.exprString(n.Values[i])
	}
	return "(" + n.Type + "){" + strings.Join(fields, ", ") + "}"
}

// printfArg resolves one print argument to a format specifier and its C
// expression.
func (t *translator) printfArg(e ast.Expression) (format, arg string, ok bool) {
	if lit, isStr := e.(*ast.StringLiteral); isStr {
		return "%s", strconv.Quote(lit.Value), true
	}
	if name, isName := e.(*ast.Name); isName {
		if b, bound := t.binding(name.Value); bound {
			if b.Kind == containers.Str {
				return "%s", "cstr_str(" + t.addrOf(name.Value) + ")", true
			}
			t.addError(diagnostics.NewError(diagnostics.ErrU002, name.Line, "print("+name.Value+")"))
			return "", "", false
		}
	}

	// Container reads type by the binding, not the lattice.
	if native, isRead := t.containerValueNative(e); isRead {
		f, known := nativeFormat(native)
		if !known {
			t.addError(diagnostics.NewError(diagnostics.ErrU002, e.Pos(), "print of "+native+" element"))
			return "", "", false
		}
		return f, t.exprString(e), true
	}

	arg = t.exprString(e)
	switch typ := t.staticTypeOf(e).(type) {
	case typesystem.Primitive:
		if typ.Kind == typesystem.Float {
			return "%g", arg, true
		}
		return "%d", arg, true
	case typesystem.Record, typesystem.Union:
		t.addError(diagnostics.NewError(diagnostics.ErrU002, e.Pos(), "print of composite value"))
		return "", "", false
	}
	// Guessing a specifier for an unresolved type would pass the wrong
	// width to printf.
	t.addError(diagnostics.NewError(diagnostics.ErrU002, e.Pos(), "print argument of unresolved type"))
	return "", "", false
}

// containerValueNative resolves the native type a container read produces:
// the element type for sequence loads, the mapped value for dict lookups,
// a bool for set membership probes.
func (t *translator) containerValueNative(e ast.Expression) (string, bool) {
	switch n := e.(type) {
	case *ast.SubscriptExpr:
		name, ok := n.X.(*ast.Name)
		if !ok {
			return "", false
		}
		b, bound := t.binding(name.Value)
		if !bound {
			return "", false
		}
		switch b.Kind {
		case containers.HashSet, containers.SortedSet:
			return "bool", true
		}
		if b.Kind.IsKeyValue() {
			return b.Value, true
		}
		return b.Elem, true
	case *ast.MethodCallExpr:
		b, bound := t.binding(n.Recv)
		if !bound {
			return "", false
		}
		switch {
		case n.Method == "get" && b.Kind.IsKeyValue():
			return b.Value, true
		case n.Method == "pop" && len(n.Args) == 0 && !b.Kind.IsKeyValue():
			return b.Elem, true
		}
	}
	return "", false
}

func nativeFormat(native string) (string, bool) {
	switch native {
	case "int", "bool":
		return "%d", true
	case "double":
		return "%g", true
	}
	return "", false
}

// staticTypeOf is a shallow type lookup for emission decisions: literals
// by shape, names by environment. It never infers.
func (t *translator) staticTypeOf(e ast.Expression) typesystem.Type {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return typesystem.Primitive{Kind: typesystem.Int}
	case *ast.FloatLiteral:
		return typesystem.Primitive{Kind: typesystem.Float}
	case *ast.BoolLiteral:
		return typesystem.Primitive{Kind: typesystem.Bool}
	case *ast.Name:
		if typ, ok := t.ft.Env.Get(n.Value); ok {
			return typ
		}
	case *ast.BinaryExpr:
		if n.Op == "and" || n.Op == "or" {
			return typesystem.Primitive{Kind: typesystem.Bool}
		}
		left := t.staticTypeOf(n.Left)
		right := t.staticTypeOf(n.Right)
		if left != nil && right != nil {
			return typesystem.Unify(left, right)
		}
	case *ast.CompareExpr, *ast.TypeTestExpr, *ast.UnaryExpr:
		return typesystem.Primitive{Kind: typesystem.Bool}
	case *ast.CallExpr:
		if n.Func == config.LenFuncName {
			return typesystem.Primitive{Kind: typesystem.Int}
		}
	}
	return typesystem.Unknown{}
}
