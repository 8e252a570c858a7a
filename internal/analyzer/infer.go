package analyzer

import (
	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/typesystem"
)

// walk carries the per-function inference state through the statement tree.
type walk struct {
	inf *Inferencer
	ft  *FunctionTypes
}

func (w *walk) inferBlock(stmts []ast.Statement, env *Environment, ret *typesystem.Type, hasRet *bool) {
	for _, s := range stmts {
		w.inferStmt(s, env, ret, hasRet)
	}
}

func (w *walk) inferStmt(s ast.Statement, env *Environment, ret *typesystem.Type, hasRet *bool) {
	switch n := s.(type) {
	case *ast.AssignStatement:
		w.inferAssign(n, env)

	case *ast.AnnAssignStatement:
		w.inferAnnAssign(n, env)

	case *ast.AugAssignStatement:
		valueType := w.inferExpr(n.Value, env)
		if w.ft.IsContainer(n.Target) {
			return
		}
		existing, _ := env.Get(n.Target)
		if existing == nil {
			existing = typesystem.Unknown{}
		}
		env.Set(n.Target, typesystem.Unify(existing, valueType))

	case *ast.IfStatement:
		// The test may narrow operand types as a side effect before
		// the environment splits.
		w.inferExpr(n.Test, env)
		thenEnv, elseEnv := w.branchEntryEnvs(n.Test, env)
		w.inferBlock(n.Then, thenEnv, ret, hasRet)
		w.inferBlock(n.Else, elseEnv, ret, hasRet)
		env.join(thenEnv, elseEnv)

	case *ast.WhileStatement:
		w.inferExpr(n.Test, env)
		// Single-pass fixpoint: widening happens through the lattice
		// join, not through iteration.
		bodyEnv := env.Copy()
		w.inferBlock(n.Body, bodyEnv, ret, hasRet)
		env.join(env.Copy(), bodyEnv)

	case *ast.ForRangeStatement:
		w.inferExpr(n.Count, env)
		env.Set(n.Var, typesystem.Primitive{Kind: typesystem.Int})
		bodyEnv := env.Copy()
		w.inferBlock(n.Body, bodyEnv, ret, hasRet)
		env.join(env.Copy(), bodyEnv)

	case *ast.ForEachStatement:
		w.inferExpr(n.Iterable, env)
		if elem, ok := w.iterationElementType(n.Iterable); ok {
			env.Set(n.Var, elem)
		} else if _, exists := env.Get(n.Var); !exists {
			env.Set(n.Var, typesystem.Unknown{})
		}
		bodyEnv := env.Copy()
		w.inferBlock(n.Body, bodyEnv, ret, hasRet)
		env.join(env.Copy(), bodyEnv)

	case *ast.ReturnStatement:
		if n.Value == nil {
			return
		}
		t := w.inferExpr(n.Value, env)
		if name, ok := n.Value.(*ast.Name); ok && w.ft.IsContainer(name.Value) {
			// Returning a container transfers ownership; the
			// lattice return type stays untouched.
			return
		}
		*ret = typesystem.Unify(*ret, t)
		*hasRet = true

	case *ast.ExpressionStatement:
		w.inferExpr(n.X, env)

	default:
		w.inf.addError(diagnostics.NewError(diagnostics.ErrU001, s.Pos(), nodeKind(s)))
	}
}

func (w *walk) inferAssign(n *ast.AssignStatement, env *Environment) {
	valueType := w.inferExpr(n.Value, env)

	switch target := n.Target.(type) {
	case *ast.Name:
		if w.ft.IsContainer(target.Value) {
			return
		}
		existing, _ := env.Get(target.Value)
		if existing == nil {
			existing = typesystem.Unknown{}
		}
		env.Set(target.Value, typesystem.Unify(existing, valueType))

	case *ast.SubscriptExpr:
		// container[key] = value mutates the container, not the
		// environment.
		w.inferExpr(target.Index, env)

	default:
		w.inf.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, nodeKind(n.Target)))
	}
}

func (w *walk) inferAnnAssign(n *ast.AnnAssignStatement, env *Environment) {
	if isContainerAnnotation(n.Annotation) {
		if n.Value != nil {
			w.inferExpr(n.Value, env)
		}
		w.inf.trackContainer(w.ft, n.Target, n.Annotation)
		return
	}
	declared, ok := w.inf.annotationToType(n.Annotation, n.Line)
	if !ok {
		return
	}
	existing, _ := env.Get(n.Target)
	if existing == nil {
		existing = typesystem.Unknown{}
	}
	t := typesystem.Unify(existing, declared)
	if n.Value != nil {
		t = typesystem.Unify(t, w.inferExpr(n.Value, env))
	}
	env.Set(n.Target, t)
}

// branchEntryEnvs produces the two branch-entry environments for a
// conditional. A type test narrows the tested variable: the then branch
// unifies with the tested type, the else branch removes it from a prior
// union (or resets to Unknown when the prior type was exactly the tested
// type).
func (w *walk) branchEntryEnvs(test ast.Expression, env *Environment) (*Environment, *Environment) {
	thenEnv, elseEnv := env.Copy(), env.Copy()

	tt, negated := typeTestOf(test)
	if tt == nil || w.ft.IsContainer(tt.Var) {
		return thenEnv, elseEnv
	}
	tested, ok := w.inf.annotationToType(tt.Type, tt.Line)
	if !ok {
		return thenEnv, elseEnv
	}

	existing, _ := env.Get(tt.Var)
	if existing == nil {
		existing = typesystem.Unknown{}
	}
	narrowed := typesystem.Unify(existing, tested)
	widened := typesystem.RemoveMember(existing, tested)

	if negated {
		thenEnv.Set(tt.Var, widened)
		elseEnv.Set(tt.Var, narrowed)
	} else {
		thenEnv.Set(tt.Var, narrowed)
		elseEnv.Set(tt.Var, widened)
	}
	return thenEnv, elseEnv
}

// typeTestOf unwraps a bare or negated type test.
func typeTestOf(test ast.Expression) (*ast.TypeTestExpr, bool) {
	switch n := test.(type) {
	case *ast.TypeTestExpr:
		return n, false
	case *ast.UnaryExpr:
		if n.Op == "not" {
			if tt, ok := n.X.(*ast.TypeTestExpr); ok {
				return tt, true
			}
		}
	}
	return nil, false
}

// iterationElementType resolves the lattice type bound to a loop variable
// iterating over a container: element type for sequences and sets, key
// type for mappings.
func (w *walk) iterationElementType(iterable ast.Expression) (typesystem.Type, bool) {
	name, ok := iterable.(*ast.Name)
	if !ok {
		return nil, false
	}
	ann, ok := w.ft.Containers[name.Value]
	if !ok {
		return nil, false
	}
	switch ann.Name {
	case config.ListTypeName, config.SetTypeName, config.DequeTypeName:
		if len(ann.Args) == 1 {
			if t, ok := w.inf.annotationToType(ann.Args[0], name.Line); ok {
				return t, true
			}
		}
	case config.DictTypeName:
		if len(ann.Args) == 2 {
			if t, ok := w.inf.annotationToType(ann.Args[0], name.Line); ok {
				return t, true
			}
		}
	}
	return nil, false
}
