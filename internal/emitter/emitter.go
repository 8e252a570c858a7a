// Package emitter lowers inferred functions into the cfile element tree:
// native declarations in environment order, translated statements, and
// deterministic cleanup calls on every exit path. The emitter never
// infers; it consumes the analyzer's result as data.
package emitter

import (
	"github.com/cgenlang/cgen/internal/analyzer"
	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/cfile"
	"github.com/cgenlang/cgen/internal/containers"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/memory"
	"github.com/cgenlang/cgen/internal/symbols"
)

// Emitter holds the unit-wide state shared by all functions: the frozen
// registry, the container mapper (its name pool spans the unit) and the
// tagged-union pool.
type Emitter struct {
	registry *symbols.RecordRegistry
	mapper   *containers.Mapper
	unions   *unionPool
}

func New(registry *symbols.RecordRegistry) *Emitter {
	return &Emitter{
		registry: registry,
		mapper:   containers.NewMapper(),
		unions:   newUnionPool(),
	}
}

// FunctionResult is the emission outcome of one function. Errors non-empty
// means Decl is nil and the function is excluded from the unit; its
// bindings still reserve their type names.
type FunctionResult struct {
	Name     string
	Decl     *cfile.FunctionDecl
	Bindings []*containers.Binding
	Findings []memory.Finding
	Summary  memory.Summary
	Errors   []*diagnostics.DiagnosticError
}

// EmitFunction translates one inferred function. profiles carries the
// usage analysis driving concrete container choice.
func (e *Emitter) EmitFunction(fn *ast.FunctionDef, ft *analyzer.FunctionTypes, profiles map[string]*containers.UsageProfile) *FunctionResult {
	e.mapper.Reset()

	t := &translator{
		em:     e,
		fn:     fn,
		ft:     ft,
		mem:    memory.NewManager(),
		unions: e.unions,
		params: make(map[string]bool, len(ft.ParamNames)),
	}
	for _, p := range ft.ParamNames {
		t.params[p] = true
	}

	t.mem.EnterScope(memory.FunctionScope)
	t.bindContainers(profiles)
	t.retCType = t.returnCType()

	body := &cfile.Block{}
	t.declareLocals(body)
	endsWithReturn := t.emitBlock(body, fn.Body)

	// Scope end: release what normal returns did not.
	if !endsWithReturn {
		for _, a := range t.mem.LiveCleanups("") {
			t.emitDrop(body, a.Name)
		}
	}
	// Cycles are detected while the allocations are still in scope, so
	// findings carry their declaration lines.
	t.mem.DetectCycles()
	t.mem.ExitScope()

	res := &FunctionResult{
		Name:     fn.Name,
		Bindings: e.mapper.Bindings(),
		Findings: t.mem.Findings(),
		Summary:  t.mem.Summary(),
		Errors:   t.errors,
	}
	if len(t.errors) > 0 {
		return res
	}

	res.Decl = &cfile.FunctionDecl{
		ReturnType: t.retCType,
		Name:       fn.Name,
		Params:     t.paramDecls(),
		Body:       body,
	}
	return res
}

// UnionElements renders the tagged unions interned so far, in first-use
// order. Called once per unit after all functions are emitted.
func (e *Emitter) UnionElements() []cfile.Element {
	return e.unions.elements()
}

// RecordElements renders one struct declaration per registered record, in
// registration order. Container-annotated fields have no flat layout and
// are diagnosed.
func (e *Emitter) RecordElements() ([]cfile.Element, []*diagnostics.DiagnosticError) {
	var out []cfile.Element
	var errs []*diagnostics.DiagnosticError
	for _, name := range e.registry.Names() {
		info, _ := e.registry.Lookup(name)
		decl := &cfile.StructDecl{Name: name}
		for _, f := range info.Fields {
			cType, ok := fieldCType(f)
			if !ok {
				typeStr := "?"
				if f.Type != nil {
					typeStr = f.Type.String()
				}
				errs = append(errs, diagnostics.NewError(diagnostics.ErrT002, info.Line, typeStr, name+"."+f.Name))
				continue
			}
			decl.Fields = append(decl.Fields, cfile.StructField{Type: cType, Name: f.Name})
		}
		out = append(out, decl, &cfile.Blank{})
	}
	return out, errs
}

// translator carries the per-function emission state.
type translator struct {
	em       *Emitter
	fn       *ast.FunctionDef
	ft       *analyzer.FunctionTypes
	mem      *memory.Manager
	unions   *unionPool
	params   map[string]bool
	retCType string
	seq      int

	errors   []*diagnostics.DiagnosticError
	errorSet map[string]bool
}

func (t *translator) addError(err *diagnostics.DiagnosticError) {
	if err == nil {
		return
	}
	if t.errorSet == nil {
		t.errorSet = make(map[string]bool)
	}
	if t.errorSet[err.Key()] {
		return
	}
	t.errorSet[err.Key()] = true
	err.Function = t.fn.Name
	t.errors = append(t.errors, err)
}

// bindContainers chooses a concrete strategy per container variable and
// registers its allocation, in declaration order so drops come out
// reversed correctly.
func (t *translator) bindContainers(profiles map[string]*containers.UsageProfile) {
	for _, name := range t.ft.ContainerOrder {
		ann := t.ft.Containers[name]
		abstract, ok := containers.AbstractKindFor(ann)
		if !ok {
			continue
		}
		kind := containers.Choose(abstract, profiles[name])
		line := t.declLine(name)
		if _, derr := t.em.mapper.Bind(name, ann, kind, line); derr != nil {
			t.addError(derr)
			continue
		}
		if t.params[name] {
			t.mem.RegisterParameter(name, kind.String(), line)
		} else {
			t.mem.Register(name, kind.String(), line)
		}
	}
}

func (t *translator) declLine(name string) int {
	for _, p := range t.fn.Params {
		if p.Name == name {
			return p.Line
		}
	}
	return annAssignLine(t.fn.Body, name)
}

func annAssignLine(stmts []ast.Statement, name string) int {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.AnnAssignStatement:
			if n.Target == name {
				return n.Line
			}
		case *ast.IfStatement:
			if l := annAssignLine(n.Then, name); l != 0 {
				return l
			}
			if l := annAssignLine(n.Else, name); l != 0 {
				return l
			}
		case *ast.WhileStatement:
			if l := annAssignLine(n.Body, name); l != 0 {
				return l
			}
		case *ast.ForRangeStatement:
			if l := annAssignLine(n.Body, name); l != 0 {
				return l
			}
		case *ast.ForEachStatement:
			if l := annAssignLine(n.Body, name); l != 0 {
				return l
			}
		}
	}
	return 0
}

// binding resolves the container binding of a variable.
func (t *translator) binding(name string) (*containers.Binding, bool) {
	return t.em.mapper.Binding(name)
}

// addrOf is the receiver address expression: locals take &, container
// parameters are already pointers.
func (t *translator) addrOf(name string) string {
	if t.params[name] {
		return name
	}
	return "&" + name
}

// valueOf is the container value expression, for iteration and return.
func (t *translator) valueOf(name string) string {
	if t.params[name] {
		return "*" + name
	}
	return name
}

func (t *translator) returnCType() string {
	if t.fn.Returns != nil {
		if _, isContainer := containers.AbstractKindFor(t.fn.Returns); isContainer {
			if name := returnedContainer(t.fn.Body); name != "" {
				if b, ok := t.binding(name); ok {
					return b.TypeName
				}
			}
		}
	}
	if t.ft.Return == nil {
		return "void"
	}
	return t.cTypeOf(t.ft.Return)
}

// returnedContainer finds the first bare container name returned, which
// fixes the concrete return type of a container-returning function.
func returnedContainer(stmts []ast.Statement) string {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.ReturnStatement:
			if name, ok := n.Value.(*ast.Name); ok {
				return name.Value
			}
		case *ast.IfStatement:
			if r := returnedContainer(n.Then); r != "" {
				return r
			}
			if r := returnedContainer(n.Else); r != "" {
				return r
			}
		case *ast.WhileStatement:
			if r := returnedContainer(n.Body); r != "" {
				return r
			}
		case *ast.ForRangeStatement:
			if r := returnedContainer(n.Body); r != "" {
				return r
			}
		case *ast.ForEachStatement:
			if r := returnedContainer(n.Body); r != "" {
				return r
			}
		}
	}
	return ""
}

func (t *translator) paramDecls() []cfile.ParamDecl {
	var out []cfile.ParamDecl
	for _, p := range t.fn.Params {
		if b, ok := t.binding(p.Name); ok {
			out = append(out, cfile.ParamDecl{Type: b.TypeName, Name: "*" + p.Name})
			continue
		}
		typ, _ := t.ft.Env.Get(p.Name)
		out = append(out, cfile.ParamDecl{Type: t.cTypeOf(typ), Name: p.Name})
	}
	return out
}

// declareLocals emits every local declaration at the top of the body:
// lattice-typed variables in environment insertion order, then container
// locals zero-initialized in declaration order. Loop variables are
// declared by their loop headers instead.
func (t *translator) declareLocals(body *cfile.Block) {
	loopVars := make(map[string]bool)
	collectLoopVars(t.fn.Body, loopVars)

	declared := 0
	for _, name := range t.ft.Env.Names() {
		if t.params[name] || loopVars[name] {
			continue
		}
		typ, _ := t.ft.Env.Get(name)
		body.Add(&cfile.VarDecl{Type: t.cTypeOf(typ), Name: name})
		declared++
	}
	for _, name := range t.ft.ContainerOrder {
		if t.params[name] {
			continue
		}
		b, ok := t.binding(name)
		if !ok {
			continue
		}
		body.Add(&cfile.VarDecl{Type: b.TypeName, Name: name, Init: b.Init()})
		declared++
	}
	if declared > 0 {
		body.Add(&cfile.Blank{})
	}
}

func collectLoopVars(stmts []ast.Statement, out map[string]bool) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.ForRangeStatement:
			out[n.Var] = true
			collectLoopVars(n.Body, out)
		case *ast.ForEachStatement:
			out[n.Var] = true
			collectLoopVars(n.Body, out)
		case *ast.IfStatement:
			collectLoopVars(n.Then, out)
			collectLoopVars(n.Else, out)
		case *ast.WhileStatement:
			collectLoopVars(n.Body, out)
		}
	}
}

func (t *translator) emitDrop(block *cfile.Block, name string) {
	if b, ok := t.binding(name); ok {
		block.Add(&cfile.Statement{Text: b.DropCall(t.addrOf(name)) + ";"})
	}
}

// fieldCType resolves a record field's lattice type to a flat native
// type. Unions have no flat field layout.
func fieldCType(f symbols.FieldInfo) (string, bool) {
	if f.Type == nil {
		return "", false
	}
	c := scalarCType(f.Type)
	return c, c != ""
}
