package emitter

import (
	"fmt"
	"strings"

	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/cfile"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/containers"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/typesystem"
)

// emitBlock translates a statement list and reports whether it ended with
// a return, so callers skip unreachable trailing cleanup.
func (t *translator) emitBlock(block *cfile.Block, stmts []ast.Statement) bool {
	ended := false
	for _, s := range stmts {
		ended = t.emitStmt(block, s)
	}
	return ended
}

func (t *translator) emitStmt(block *cfile.Block, s ast.Statement) bool {
	switch n := s.(type) {
	case *ast.AssignStatement:
		t.emitAssign(block, n)

	case *ast.AnnAssignStatement:
		t.emitAnnAssign(block, n)

	case *ast.AugAssignStatement:
		t.emitAugAssign(block, n)

	case *ast.IfStatement:
		thenB, elseB := &cfile.Block{}, &cfile.Block{}
		cond := t.exprString(n.Test)
		t.emitBlock(thenB, n.Then)
		t.emitBlock(elseB, n.Else)
		stmt := &cfile.If{Cond: cond, Then: thenB}
		if len(elseB.Elems) > 0 {
			stmt.Else = elseB
		}
		block.Add(stmt)

	case *ast.WhileStatement:
		body := &cfile.Block{}
		cond := t.exprString(n.Test)
		t.emitBlock(body, n.Body)
		block.Add(&cfile.While{Cond: cond, Body: body})

	case *ast.ForRangeStatement:
		body := &cfile.Block{}
		count := t.exprString(n.Count)
		t.emitBlock(body, n.Body)
		block.Add(&cfile.For{
			Init: "int " + n.Var + " = 0",
			Cond: n.Var + " < " + count,
			Post: n.Var + "++",
			Body: body,
		})

	case *ast.ForEachStatement:
		t.emitForEach(block, n)

	case *ast.ReturnStatement:
		t.emitReturn(block, n)
		return true

	case *ast.ExpressionStatement:
		t.emitExprStmt(block, n)

	default:
		t.addError(diagnostics.NewError(diagnostics.ErrU001, s.Pos(), fmt.Sprintf("%T", s)))
	}
	return false
}

func (t *translator) emitAssign(block *cfile.Block, n *ast.AssignStatement) {
	switch target := n.Target.(type) {
	case *ast.Name:
		if bt, isContainer := t.binding(target.Value); isContainer {
			t.emitContainerReassign(block, bt, target.Value, n)
			return
		}
		if typ, ok := t.ft.Env.Get(target.Value); ok {
			if u, isUnion := typ.(typesystem.Union); isUnion {
				if t.emitUnionAssign(block, target.Value, u, n.Value) {
					return
				}
			}
		}
		value := t.exprString(n.Value)
		block.Add(&cfile.Statement{Text: target.Value + " = " + value + ";"})

	case *ast.SubscriptExpr:
		recv, ok := target.X.(*ast.Name)
		if !ok {
			t.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, fmt.Sprintf("%T", target.X)))
			return
		}
		b, bound := t.binding(recv.Value)
		if !bound {
			t.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, recv.Value))
			return
		}
		idx := t.exprString(target.Index)
		val := t.exprString(n.Value)
		block.Add(&cfile.Statement{Text: b.StoreStmt(t.addrOf(recv.Value), idx, val)})

	default:
		t.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, fmt.Sprintf("%T", n.Target)))
	}
}

// emitContainerReassign overwrites a live container variable. The old
// storage becomes unreachable, so it is released first. The source must be
// bound to the same concrete type: distinct bindings instantiate distinct
// struct types, and overwriting across them is not representable.
func (t *translator) emitContainerReassign(block *cfile.Block, bt *containers.Binding, target string, n *ast.AssignStatement) {
	src, ok := n.Value.(*ast.Name)
	if !ok {
		t.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, fmt.Sprintf("%s = %T", target, n.Value)))
		return
	}
	bs, bound := t.binding(src.Value)
	if !bound || bs.TypeName != bt.TypeName {
		t.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, target+" = "+src.Value))
		return
	}
	t.emitDrop(block, target)
	block.Add(&cfile.Statement{Text: t.valueOf(target) + " = " + t.exprString(src) + ";"})
	t.mem.MarkMoved(src.Value, n.Line)
}

// emitUnionAssign lowers an assignment into a union-typed variable to a
// tagged construction. Ternaries split into a conditional so each arm
// carries its own tag. Returns false when the value is already the same
// union (plain copy) or not a member.
func (t *translator) emitUnionAssign(block *cfile.Block, name string, u typesystem.Union, value ast.Expression) bool {
	if tern, ok := value.(*ast.TernaryExpr); ok {
		cond := t.exprString(tern.Test)
		thenB, elseB := &cfile.Block{}, &cfile.Block{}
		if t.emitUnionAssign(thenB, name, u, tern.Then) && t.emitUnionAssign(elseB, name, u, tern.Else) {
			block.Add(&cfile.If{Cond: cond, Then: thenB, Else: elseB})
			return true
		}
		return false
	}

	mt := t.staticTypeOf(value)
	if mt == nil || typesystem.Equal(mt, u) {
		return false
	}
	tag := t.unions.tagConstant(u, mt)
	if tag == "" {
		return false
	}
	unionName := t.unions.intern(u)
	field := strings.ToLower(memberTag(mt))
	block.Add(&cfile.Statement{Text: fmt.Sprintf("%s = (%s){.tag = %s, .value.%s = %s};",
		name, unionName, tag, field, t.exprString(value))})
	return true
}

func (t *translator) emitAnnAssign(block *cfile.Block, n *ast.AnnAssignStatement) {
	b, isContainer := t.binding(n.Target)
	if !isContainer {
		if n.Value != nil {
			value := t.exprString(n.Value)
			block.Add(&cfile.Statement{Text: n.Target + " = " + value + ";"})
		}
		return
	}
	if n.Value == nil {
		return // zero-initialized at declaration
	}

	addr := t.addrOf(n.Target)
	switch v := n.Value.(type) {
	case *ast.ListLiteral:
		for _, el := range v.Elems {
			call := b.Call("push", addr, t.exprString(el))
			if !t.emitGuardedGrowth(block, b, n.Target, call) {
				block.Add(&cfile.Statement{Text: call + ";"})
			}
		}
	case *ast.SetLiteral:
		for _, el := range v.Elems {
			block.Add(&cfile.Statement{Text: b.Call("insert", addr, t.exprString(el)) + ";"})
		}
	case *ast.DictLiteral:
		for i := range v.Keys {
			key, val := t.exprString(v.Keys[i]), t.exprString(v.Values[i])
			block.Add(&cfile.Statement{Text: b.Call("insert_or_assign", addr, key, val) + ";"})
		}
	case *ast.StringLiteral:
		block.Add(&cfile.Statement{Text: n.Target + " = " + t.exprString(v) + ";"})
	case *ast.Name:
		bs, bound := t.binding(v.Value)
		if !bound || bs.TypeName != b.TypeName {
			t.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, n.Target+" = "+v.Value))
			return
		}
		block.Add(&cfile.Statement{Text: n.Target + " = " + t.exprString(v) + ";"})
		t.mem.MarkMoved(v.Value, n.Line)
	case *ast.MethodCallExpr:
		if bs, bound := t.binding(v.Recv); !bound || bs.TypeName != b.TypeName {
			t.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, n.Target+" = "+v.Recv+"."+v.Method+"()"))
			return
		}
		block.Add(&cfile.Statement{Text: n.Target + " = " + t.exprString(v) + ";"})
	default:
		t.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, fmt.Sprintf("%T", n.Value)))
	}
}

var augOps = map[string]string{
	"+": "+=", "-": "-=", "*": "*=", "/": "/=", "//": "/=", "%": "%=",
}

func (t *translator) emitAugAssign(block *cfile.Block, n *ast.AugAssignStatement) {
	if b, ok := t.binding(n.Target); ok {
		// Only text concatenation has an augmented container form.
		op, derr := t.em.mapper.MapOperation(b, "append", 1, n.Line)
		if derr != nil {
			t.addError(derr)
			return
		}
		block.Add(&cfile.Statement{Text: b.Call(op, t.addrOf(n.Target), t.exprString(n.Value)) + ";"})
		return
	}
	op, ok := augOps[n.Op]
	if !ok {
		t.addError(diagnostics.NewError(diagnostics.ErrU003, n.Line, n.Op+"="))
		return
	}
	block.Add(&cfile.Statement{Text: n.Target + " " + op + " " + t.exprString(n.Value) + ";"})
}

func (t *translator) emitForEach(block *cfile.Block, n *ast.ForEachStatement) {
	iterName := ""
	sortedIter := false
	switch it := n.Iterable.(type) {
	case *ast.Name:
		iterName = it.Value
	case *ast.CallExpr:
		if it.Func == "sorted" && len(it.Args) == 1 {
			if name, ok := it.Args[0].(*ast.Name); ok {
				iterName = name.Value
				sortedIter = true
			}
		}
	}
	b, ok := t.binding(iterName)
	if iterName == "" || !ok {
		t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, fmt.Sprintf("%T", n.Iterable)))
		return
	}
	// Maps and sets under sorted access are bound to their ordered
	// strategies, where plain iteration is already in key order. Sequences
	// have no ordered strategy, so lowering sorted() to a plain loop would
	// silently lose the ordering.
	if sortedIter {
		switch b.Kind {
		case containers.Vec, containers.Deque:
			t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, "sorted("+iterName+") over a sequence"))
			return
		}
	}

	t.seq++
	it := fmt.Sprintf("it%d", t.seq)
	body := &cfile.Block{}
	if b.Kind.IsKeyValue() {
		body.Add(&cfile.VarDecl{Type: b.Elem, Name: n.Var, Init: it + ".ref->first"})
	} else {
		body.Add(&cfile.VarDecl{Type: b.Elem, Name: n.Var, Init: "*" + it + ".ref"})
	}
	t.emitBlock(body, n.Body)
	block.Add(&cfile.MacroLoop{
		Header: fmt.Sprintf("c_each(%s, %s, %s)", it, b.TypeName, t.valueOf(iterName)),
		Body:   body,
	})
}

func (t *translator) emitReturn(block *cfile.Block, n *ast.ReturnStatement) {
	if n.Value == nil {
		for _, a := range t.mem.LiveCleanups("") {
			t.emitDrop(block, a.Name)
		}
		block.Add(&cfile.Return{})
		return
	}

	if name, ok := n.Value.(*ast.Name); ok {
		if _, isContainer := t.binding(name.Value); isContainer {
			t.mem.RegisterReturnValue(name.Value)
			for _, a := range t.mem.LiveCleanups(name.Value) {
				t.emitDrop(block, a.Name)
			}
			block.Add(&cfile.Return{Expr: t.valueOf(name.Value)})
			return
		}
	}

	expr := t.exprString(n.Value)
	drops := t.mem.LiveCleanups("")
	if len(drops) == 0 {
		block.Add(&cfile.Return{Expr: expr})
		return
	}
	// The return value may read the containers about to be dropped;
	// evaluate first.
	t.seq++
	tmp := fmt.Sprintf("ret%d", t.seq)
	block.Add(&cfile.VarDecl{Type: t.retCType, Name: tmp, Init: expr})
	for _, a := range drops {
		t.emitDrop(block, a.Name)
	}
	block.Add(&cfile.Return{Expr: tmp})
}

func (t *translator) emitExprStmt(block *cfile.Block, n *ast.ExpressionStatement) {
	switch x := n.X.(type) {
	case *ast.MethodCallExpr:
		t.emitMethodCallStmt(block, x)
	case *ast.CallExpr:
		if x.Func == config.PrintFuncName {
			t.emitPrint(block, x)
			return
		}
		block.Add(&cfile.Statement{Text: t.exprString(x) + ";"})
	default:
		block.Add(&cfile.Statement{Text: t.exprString(n.X) + ";"})
	}
}

func (t *translator) emitMethodCallStmt(block *cfile.Block, n *ast.MethodCallExpr) {
	b, ok := t.binding(n.Recv)
	if !ok {
		t.addError(diagnostics.NewError(diagnostics.ErrU002, n.Line, n.Recv+"."+n.Method))
		return
	}
	op, derr := t.em.mapper.MapOperation(b, n.Method, len(n.Args), n.Line)
	if derr != nil {
		t.addError(derr)
		return
	}

	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = t.exprString(a)
		// Storing one tracked allocation inside another is a
		// depends-on edge for cycle detection.
		if name, isName := a.(*ast.Name); isName && t.mem.Tracked(name.Value) {
			t.mem.AddDependency(n.Recv, name.Value)
		}
	}
	call := b.Call(op, t.addrOf(n.Recv), args...)
	if op == "push" && t.emitGuardedGrowth(block, b, n.Recv, call) {
		return
	}
	block.Add(&cfile.Statement{Text: call + ";"})
}

// emitGuardedGrowth emits a growth call with a failure path that releases
// the receiver before bailing out: a growth operation can abort
// mid-function. Reports false when the receiver is exempt from cleanup, in
// which case the caller emits the plain call.
func (t *translator) emitGuardedGrowth(block *cfile.Block, b *containers.Binding, recv, call string) bool {
	w := t.mem.ExceptionSafeWrapper(call, recv)
	if w.Owner == nil {
		return false
	}
	then := &cfile.Block{}
	then.Add(&cfile.Statement{Text: b.DropCall(t.addrOf(recv)) + ";"})
	then.Add(&cfile.Return{Expr: zeroValue(t.retCType)})
	block.Add(&cfile.If{Cond: "!" + w.Op, Then: then})
	return true
}

func (t *translator) emitPrint(block *cfile.Block, n *ast.CallExpr) {
	format := ""
	var args []string
	for i, a := range n.Args {
		if i > 0 {
			format += " "
		}
		f, arg, ok := t.printfArg(a)
		if !ok {
			return
		}
		format += f
		args = append(args, arg)
	}
	text := "printf(\"" + format + "\\n\""
	for _, a := range args {
		text += ", " + a
	}
	block.Add(&cfile.Statement{Text: text + ");"})
}
