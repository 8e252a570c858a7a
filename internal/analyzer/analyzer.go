// Package analyzer implements the flow-sensitive type inferencer.
//
// A function is inferred in three phases: the entry environment is seeded
// from parameter annotations (Unknown where absent), the statement tree is
// walked with copy-on-branch environment threading, and the exit step
// reconciles parameters and the return type. Functions are inferred
// independently; the only shared input is the frozen record registry.
package analyzer

import (
	"fmt"

	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/symbols"
	"github.com/cgenlang/cgen/internal/typesystem"
)

// FunctionTypes is the inference result for one function.
type FunctionTypes struct {
	// Env holds the final type of every lattice-typed variable in
	// declaration order (parameters first).
	Env *Environment

	// Return is the unified return type; nil means void.
	Return typesystem.Type

	// Containers maps container-annotated variables (parameters and
	// locals) to their source annotations. Container shapes live
	// outside the lattice and are resolved by the container mapper.
	Containers map[string]*ast.TypeAnnotation

	// ContainerOrder preserves the declaration order of Containers.
	ContainerOrder []string

	// ParamNames in declaration order.
	ParamNames []string
}

// IsContainer reports whether name is a container-annotated variable.
func (ft *FunctionTypes) IsContainer(name string) bool {
	_, ok := ft.Containers[name]
	return ok
}

// Inferencer walks one function at a time against a frozen registry.
type Inferencer struct {
	registry *symbols.RecordRegistry
	module   *ast.Module

	errorSet map[string]*diagnostics.DiagnosticError
	errors   []*diagnostics.DiagnosticError
}

// New creates an inferencer for a module whose registry is already
// populated and frozen.
func New(registry *symbols.RecordRegistry, module *ast.Module) *Inferencer {
	return &Inferencer{registry: registry, module: module}
}

func (inf *Inferencer) addError(err *diagnostics.DiagnosticError) {
	if err == nil {
		return
	}
	if inf.errorSet == nil {
		inf.errorSet = make(map[string]*diagnostics.DiagnosticError)
	}
	key := err.Key()
	if _, dup := inf.errorSet[key]; dup {
		return
	}
	inf.errorSet[key] = err
	inf.errors = append(inf.errors, err)
}

// InferFunction runs entry→block-walk→exit for a single function and
// returns its typed environment together with every diagnostic collected
// along the way. A non-empty error list means the function must not be
// emitted; sibling functions are unaffected.
func (inf *Inferencer) InferFunction(fn *ast.FunctionDef) (*FunctionTypes, []*diagnostics.DiagnosticError) {
	inf.errorSet = nil
	inf.errors = nil

	ft := &FunctionTypes{
		Env:        NewEnvironment(),
		Containers: make(map[string]*ast.TypeAnnotation),
	}

	// Entry: seed from parameter annotations.
	for _, p := range fn.Params {
		ft.ParamNames = append(ft.ParamNames, p.Name)
		if p.Annotation != nil && isContainerAnnotation(p.Annotation) {
			inf.trackContainer(ft, p.Name, p.Annotation)
			continue
		}
		t := typesystem.Type(typesystem.Unknown{})
		if p.Annotation != nil {
			resolved, ok := inf.annotationToType(p.Annotation, p.Line)
			if !ok {
				continue
			}
			t = resolved
		}
		ft.Env.Set(p.Name, t)
	}

	w := &walk{inf: inf, ft: ft}
	retType := typesystem.Type(typesystem.Unknown{})
	hasReturnValue := false
	w.inferBlock(fn.Body, ft.Env, &retType, &hasReturnValue)

	// Exit: unify the declared return annotation, if any.
	if fn.Returns != nil && !isContainerAnnotation(fn.Returns) {
		if declared, ok := inf.annotationToType(fn.Returns, fn.Line); ok {
			retType = typesystem.Unify(retType, declared)
			hasReturnValue = true
		}
	}
	if hasReturnValue {
		ft.Return = retType
	}

	// Exit: parameter reconciliation. The environment has threaded
	// annotation and usage information already; whatever is still
	// Unknown here was resolvable from neither.
	for _, p := range fn.Params {
		if ft.IsContainer(p.Name) {
			continue
		}
		t, ok := ft.Env.Get(p.Name)
		if !ok || typesystem.IsUnknown(t) {
			inf.addError(diagnostics.NewError(diagnostics.ErrI001, p.Line, p.Name))
		}
	}

	// Any non-parameter variable left Unknown has no native
	// representation either.
	params := make(map[string]bool, len(ft.ParamNames))
	for _, n := range ft.ParamNames {
		params[n] = true
	}
	for _, name := range ft.Env.Names() {
		if params[name] {
			continue
		}
		if t, _ := ft.Env.Get(name); typesystem.IsUnknown(t) {
			inf.addError(diagnostics.NewError(diagnostics.ErrT003, fn.Line, name))
		}
	}

	return ft, inf.errors
}

func (inf *Inferencer) trackContainer(ft *FunctionTypes, name string, ann *ast.TypeAnnotation) {
	if _, exists := ft.Containers[name]; !exists {
		ft.ContainerOrder = append(ft.ContainerOrder, name)
	}
	ft.Containers[name] = ann
}

// annotationToType resolves a source annotation to a lattice type.
// Container annotations are not lattice types and must be routed through
// trackContainer instead.
func (inf *Inferencer) annotationToType(ann *ast.TypeAnnotation, line int) (typesystem.Type, bool) {
	switch ann.Name {
	case config.IntTypeName:
		return typesystem.Primitive{Kind: typesystem.Int}, true
	case config.FloatTypeName:
		return typesystem.Primitive{Kind: typesystem.Float}, true
	case config.BoolTypeName:
		return typesystem.Primitive{Kind: typesystem.Bool}, true
	case config.NoneTypeName:
		return nil, false
	case config.ListTypeName, config.DictTypeName, config.SetTypeName,
		config.StrTypeName, config.DequeTypeName:
		inf.addError(diagnostics.NewError(diagnostics.ErrT002, line, ann.String(), "non-container position"))
		return nil, false
	}
	// Nominal types resolve by identity; the registry may not know the
	// name yet during field resolution, but by emission time it must.
	return typesystem.Record{Name: ann.Name}, true
}

// isContainerAnnotation reports whether the annotation names an abstract
// collection type.
func isContainerAnnotation(ann *ast.TypeAnnotation) bool {
	switch ann.Name {
	case config.ListTypeName, config.DictTypeName, config.SetTypeName,
		config.StrTypeName, config.DequeTypeName:
		return true
	}
	return false
}

// calleeReturnType resolves the declared return annotation of a called
// function in the same module; cross-function inference is out of scope.
func (inf *Inferencer) calleeReturnType(name string, line int) typesystem.Type {
	if inf.module == nil {
		return typesystem.Unknown{}
	}
	for _, fn := range inf.module.Functions {
		if fn.Name != name {
			continue
		}
		if fn.Returns == nil || isContainerAnnotation(fn.Returns) {
			return typesystem.Unknown{}
		}
		if t, ok := inf.annotationToType(fn.Returns, line); ok {
			return t
		}
		return typesystem.Unknown{}
	}
	return typesystem.Unknown{}
}

func nodeKind(n ast.Node) string {
	return fmt.Sprintf("%T", n)
}
