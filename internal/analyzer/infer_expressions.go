package analyzer

import (
	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/typesystem"
)

// inferExpr computes the lattice type of an expression. Comparisons
// additionally propagate the unified operand type back into the
// environment for bare variable operands, which is how untyped parameters
// acquire concrete types purely from usage.
func (w *walk) inferExpr(e ast.Expression, env *Environment) typesystem.Type {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return typesystem.Primitive{Kind: typesystem.Int}
	case *ast.FloatLiteral:
		return typesystem.Primitive{Kind: typesystem.Float}
	case *ast.BoolLiteral:
		return typesystem.Primitive{Kind: typesystem.Bool}
	case *ast.StringLiteral:
		// Strings are containers (cstr), outside the lattice.
		return typesystem.Unknown{}

	case *ast.Name:
		if w.ft.IsContainer(n.Value) {
			return typesystem.Unknown{}
		}
		if t, ok := env.Get(n.Value); ok {
			return t
		}
		return typesystem.Unknown{}

	case *ast.AttributeExpr:
		return w.inferAttribute(n, env)

	case *ast.BinaryExpr:
		left := w.inferExpr(n.Left, env)
		right := w.inferExpr(n.Right, env)
		switch n.Op {
		case "and", "or":
			return typesystem.Primitive{Kind: typesystem.Bool}
		}
		return typesystem.Unify(left, right)

	case *ast.UnaryExpr:
		t := w.inferExpr(n.X, env)
		if n.Op == "not" {
			return typesystem.Primitive{Kind: typesystem.Bool}
		}
		return t

	case *ast.CompareExpr:
		return w.inferCompare(n, env)

	case *ast.TernaryExpr:
		// Both arms are inferred unconditionally: no statement-level
		// scope exists to split on.
		w.inferExpr(n.Test, env)
		thenType := w.inferExpr(n.Then, env)
		elseType := w.inferExpr(n.Else, env)
		return typesystem.Unify(thenType, elseType)

	case *ast.TypeTestExpr:
		return typesystem.Primitive{Kind: typesystem.Bool}

	case *ast.CallExpr:
		return w.inferCall(n, env)

	case *ast.MethodCallExpr:
		return w.inferMethodCall(n, env)

	case *ast.SubscriptExpr:
		return w.inferSubscript(n, env)

	case *ast.ListLiteral:
		for _, el := range n.Elems {
			w.inferExpr(el, env)
		}
		return typesystem.Unknown{}
	case *ast.SetLiteral:
		for _, el := range n.Elems {
			w.inferExpr(el, env)
		}
		return typesystem.Unknown{}
	case *ast.DictLiteral:
		for i := range n.Keys {
			w.inferExpr(n.Keys[i], env)
			w.inferExpr(n.Values[i], env)
		}
		return typesystem.Unknown{}

	case *ast.RecordLiteral:
		if _, ok := w.inf.registry.Lookup(n.Type); !ok {
			w.inf.addError(diagnostics.NewError(diagnostics.ErrT005, n.Line, n.Type))
		}
		for _, v := range n.Values {
			w.inferExpr(v, env)
		}
		return typesystem.Record{Name: n.Type}
	}

	w.inf.addError(diagnostics.NewError(diagnostics.ErrU002, e.Pos(), nodeKind(e)))
	return typesystem.Unknown{}
}

func (w *walk) inferAttribute(n *ast.AttributeExpr, env *Environment) typesystem.Type {
	base := w.inferExpr(n.X, env)
	rec, ok := base.(typesystem.Record)
	if !ok {
		return typesystem.Unknown{}
	}
	info, ok := w.inf.registry.Lookup(rec.Name)
	if !ok {
		w.inf.addError(diagnostics.NewError(diagnostics.ErrT005, n.Line, rec.Name))
		return typesystem.Unknown{}
	}
	ft, ok := info.FieldType(n.Name)
	if !ok {
		w.inf.addError(diagnostics.NewError(diagnostics.ErrT004, n.Line, rec.Name, n.Name))
		return typesystem.Unknown{}
	}
	return ft
}

func (w *walk) inferCompare(n *ast.CompareExpr, env *Environment) typesystem.Type {
	boolT := typesystem.Primitive{Kind: typesystem.Bool}

	if n.Op == "in" || n.Op == "not in" {
		w.inferExpr(n.Left, env)
		w.inferExpr(n.Right, env)
		return boolT
	}

	left := w.inferExpr(n.Left, env)
	right := w.inferExpr(n.Right, env)
	unified := typesystem.Unify(left, right)

	// Back-propagation: a bare variable compared against a typed value
	// adopts the unified type.
	if name, ok := n.Left.(*ast.Name); ok && !w.ft.IsContainer(name.Value) {
		env.Set(name.Value, unified)
	}
	if name, ok := n.Right.(*ast.Name); ok && !w.ft.IsContainer(name.Value) {
		env.Set(name.Value, unified)
	}
	return boolT
}

func (w *walk) inferCall(n *ast.CallExpr, env *Environment) typesystem.Type {
	for _, a := range n.Args {
		w.inferExpr(a, env)
	}
	switch n.Func {
	case config.LenFuncName:
		return typesystem.Primitive{Kind: typesystem.Int}
	case config.PrintFuncName:
		return typesystem.Unknown{}
	case config.RangeFuncName:
		// range appears only inside for_range; a bare call has no
		// value representation.
		w.inf.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, "range outside for"))
		return typesystem.Unknown{}
	case config.IsInstanceFuncName:
		// Type tests arrive as dedicated nodes; a leftover bare call
		// means the interchange was not normalized.
		w.inf.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, "isinstance outside a type test"))
		return typesystem.Primitive{Kind: typesystem.Bool}
	}
	return w.inf.calleeReturnType(n.Func, n.Line)
}

func (w *walk) inferMethodCall(n *ast.MethodCallExpr, env *Environment) typesystem.Type {
	for _, a := range n.Args {
		w.inferExpr(a, env)
	}
	ann, ok := w.ft.Containers[n.Recv]
	if !ok {
		return typesystem.Unknown{}
	}
	// Value-producing container operations surface the element or
	// value lattice type where the annotation provides one.
	switch n.Method {
	case "pop":
		return w.containerValueType(ann, n.Line)
	case "get":
		return w.containerValueType(ann, n.Line)
	}
	return typesystem.Unknown{}
}

func (w *walk) inferSubscript(n *ast.SubscriptExpr, env *Environment) typesystem.Type {
	w.inferExpr(n.Index, env)
	name, ok := n.X.(*ast.Name)
	if !ok {
		w.inferExpr(n.X, env)
		return typesystem.Unknown{}
	}
	ann, ok := w.ft.Containers[name.Value]
	if !ok {
		return typesystem.Unknown{}
	}
	if ann.Name == config.SetTypeName {
		// Subscript on a set is a membership probe.
		return typesystem.Primitive{Kind: typesystem.Bool}
	}
	return w.containerValueType(ann, n.Line)
}

// containerValueType is the lattice type of the values stored in a
// container: the element type for sequences and sets, the mapped-to type
// for mappings.
func (w *walk) containerValueType(ann *ast.TypeAnnotation, line int) typesystem.Type {
	switch ann.Name {
	case config.ListTypeName, config.SetTypeName, config.DequeTypeName:
		if len(ann.Args) == 1 {
			if t, ok := w.inf.annotationToType(ann.Args[0], line); ok {
				return t
			}
		}
	case config.DictTypeName:
		if len(ann.Args) == 2 {
			if t, ok := w.inf.annotationToType(ann.Args[1], line); ok {
				return t
			}
		}
	}
	return typesystem.Unknown{}
}
