package analyzer

import (
	"testing"

	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/symbols"
	"github.com/cgenlang/cgen/internal/typesystem"
)

func intAnn() *ast.TypeAnnotation   { return &ast.TypeAnnotation{Name: "int"} }
func floatAnn() *ast.TypeAnnotation { return &ast.TypeAnnotation{Name: "float"} }

func newTestInferencer(fns ...*ast.FunctionDef) *Inferencer {
	registry := symbols.NewRecordRegistry()
	registry.Freeze()
	return New(registry, &ast.Module{Functions: fns})
}

func mustInfer(t *testing.T, fn *ast.FunctionDef) *FunctionTypes {
	t.Helper()
	ft, errs := newTestInferencer(fn).InferFunction(fn)
	if len(errs) > 0 {
		t.Fatalf("InferFunction(%s) errors: %v", fn.Name, errs)
	}
	return ft
}

func envType(t *testing.T, ft *FunctionTypes, name string) string {
	t.Helper()
	typ, ok := ft.Env.Get(name)
	if !ok {
		t.Fatalf("variable %q missing from environment", name)
	}
	return typ.String()
}

// f(n: int, y):
//
//	if y > 0: z = n + y
//	else:     z = n * y
//	return z
//
// The comparison propagates Int onto the untyped y; z unifies to Int in
// both branches.
func TestInferComparisonPropagation(t *testing.T) {
	fn := &ast.FunctionDef{
		Name: "f",
		Params: []*ast.Param{
			{Name: "n", Annotation: intAnn()},
			{Name: "y"},
		},
		Body: []ast.Statement{
			&ast.IfStatement{
				Test: &ast.CompareExpr{Op: ">", Left: &ast.Name{Value: "y"}, Right: &ast.IntLiteral{Value: 0}},
				Then: []ast.Statement{
					&ast.AssignStatement{
						Target: &ast.Name{Value: "z"},
						Value:  &ast.BinaryExpr{Op: "+", Left: &ast.Name{Value: "n"}, Right: &ast.Name{Value: "y"}},
					},
				},
				Else: []ast.Statement{
					&ast.AssignStatement{
						Target: &ast.Name{Value: "z"},
						Value:  &ast.BinaryExpr{Op: "*", Left: &ast.Name{Value: "n"}, Right: &ast.Name{Value: "y"}},
					},
				},
			},
			&ast.ReturnStatement{Value: &ast.Name{Value: "z"}},
		},
	}

	ft := mustInfer(t, fn)
	for _, v := range []string{"n", "y", "z"} {
		if got := envType(t, ft, v); got != "Int" {
			t.Errorf("%s inferred %s, want Int", v, got)
		}
	}
	if ft.Return == nil || ft.Return.String() != "Int" {
		t.Errorf("return type = %v, want Int", ft.Return)
	}
}

// sum_range(n: int):
//
//	for i in range(n): total = total + i
//	return total
//
// The range rule binds i to Int unconditionally even though untyped.
func TestInferBoundedRangeLoop(t *testing.T) {
	fn := &ast.FunctionDef{
		Name:   "sum_range",
		Params: []*ast.Param{{Name: "n", Annotation: intAnn()}},
		Body: []ast.Statement{
			&ast.ForRangeStatement{
				Var:   "i",
				Count: &ast.Name{Value: "n"},
				Body: []ast.Statement{
					&ast.AssignStatement{
						Target: &ast.Name{Value: "total"},
						Value:  &ast.BinaryExpr{Op: "+", Left: &ast.Name{Value: "total"}, Right: &ast.Name{Value: "i"}},
					},
				},
			},
			&ast.ReturnStatement{Value: &ast.Name{Value: "total"}},
		},
	}

	ft := mustInfer(t, fn)
	if got := envType(t, ft, "i"); got != "Int" {
		t.Errorf("i inferred %s, want Int", got)
	}
	if got := envType(t, ft, "total"); got != "Int" {
		t.Errorf("total inferred %s, want Int", got)
	}
	if ft.Return == nil || ft.Return.String() != "Int" {
		t.Errorf("return type = %v, want Int", ft.Return)
	}
}

// area(x, r: float):
//
//	if isinstance(x, int): return -x
//	else:                  return 3.14 * r * r
//
// The type test narrows x to Int in the then branch; the overall return
// type unifies Int and Float to Float.
func TestInferTypeTestNarrowing(t *testing.T) {
	fn := &ast.FunctionDef{
		Name: "area",
		Params: []*ast.Param{
			{Name: "x"},
			{Name: "r", Annotation: floatAnn()},
		},
		Body: []ast.Statement{
			&ast.IfStatement{
				Test: &ast.TypeTestExpr{Var: "x", Type: intAnn()},
				Then: []ast.Statement{
					&ast.ReturnStatement{Value: &ast.UnaryExpr{Op: "-", X: &ast.Name{Value: "x"}}},
				},
				Else: []ast.Statement{
					&ast.ReturnStatement{Value: &ast.BinaryExpr{
						Op:   "*",
						Left: &ast.BinaryExpr{Op: "*", Left: &ast.FloatLiteral{Value: 3.14}, Right: &ast.Name{Value: "r"}},
						Right: &ast.Name{
							Value: "r",
						},
					}},
				},
			},
		},
	}

	ft := mustInfer(t, fn)
	if got := envType(t, ft, "x"); got != "Int" {
		t.Errorf("x inferred %s, want Int (then-branch narrowing joins with Unknown)", got)
	}
	if ft.Return == nil || ft.Return.String() != "Float" {
		t.Errorf("return type = %v, want Float", ft.Return)
	}
}

func TestInferBranchJoinAbsentVariable(t *testing.T) {
	// Variable assigned in only one branch joins with Unknown and
	// keeps the branch type.
	fn := &ast.FunctionDef{
		Name:   "g",
		Params: []*ast.Param{{Name: "flag", Annotation: &ast.TypeAnnotation{Name: "bool"}}},
		Body: []ast.Statement{
			&ast.IfStatement{
				Test: &ast.Name{Value: "flag"},
				Then: []ast.Statement{
					&ast.AssignStatement{Target: &ast.Name{Value: "v"}, Value: &ast.IntLiteral{Value: 1}},
				},
			},
			&ast.ReturnStatement{Value: &ast.Name{Value: "v"}},
		},
	}

	ft := mustInfer(t, fn)
	if got := envType(t, ft, "v"); got != "Int" {
		t.Errorf("v inferred %s, want Int", got)
	}
}

func TestInferWhileLoopJoin(t *testing.T) {
	// x starts Int, becomes Float in the body: loop exit joins to Float.
	fn := &ast.FunctionDef{
		Name:   "widen",
		Params: []*ast.Param{{Name: "n", Annotation: intAnn()}},
		Body: []ast.Statement{
			&ast.AssignStatement{Target: &ast.Name{Value: "x"}, Value: &ast.IntLiteral{Value: 0}},
			&ast.WhileStatement{
				Test: &ast.CompareExpr{Op: "<", Left: &ast.Name{Value: "x"}, Right: &ast.Name{Value: "n"}},
				Body: []ast.Statement{
					&ast.AssignStatement{Target: &ast.Name{Value: "x"}, Value: &ast.FloatLiteral{Value: 0.5}},
				},
			},
			&ast.ReturnStatement{Value: &ast.Name{Value: "x"}},
		},
	}

	ft := mustInfer(t, fn)
	if got := envType(t, ft, "x"); got != "Float" {
		t.Errorf("x inferred %s, want Float", got)
	}
}

func TestInferTernaryUnifiesArms(t *testing.T) {
	fn := &ast.FunctionDef{
		Name:   "pick",
		Params: []*ast.Param{{Name: "flag", Annotation: &ast.TypeAnnotation{Name: "bool"}}},
		Body: []ast.Statement{
			&ast.AssignStatement{
				Target: &ast.Name{Value: "v"},
				Value: &ast.TernaryExpr{
					Test: &ast.Name{Value: "flag"},
					Then: &ast.IntLiteral{Value: 1},
					Else: &ast.FloatLiteral{Value: 2.5},
				},
			},
			&ast.ReturnStatement{Value: &ast.Name{Value: "v"}},
		},
	}

	ft := mustInfer(t, fn)
	if got := envType(t, ft, "v"); got != "Float" {
		t.Errorf("v inferred %s, want Float", got)
	}
}

func TestInferUnresolvedParametersCollected(t *testing.T) {
	// Two parameters with neither annotation nor usage: both reported,
	// not just the first.
	fn := &ast.FunctionDef{
		Name:   "bad",
		Params: []*ast.Param{{Name: "a", Line: 1}, {Name: "b", Line: 1}},
		Body: []ast.Statement{
			&ast.ReturnStatement{Value: &ast.IntLiteral{Value: 0}},
		},
	}

	_, errs := newTestInferencer(fn).InferFunction(fn)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	for _, e := range errs {
		if e.Code.ID != "I001" {
			t.Errorf("error code %s, want I001", e.Code.ID)
		}
	}
}

func TestInferNegatedTypeTest(t *testing.T) {
	fn := &ast.FunctionDef{
		Name:   "h",
		Params: []*ast.Param{{Name: "x"}},
		Body: []ast.Statement{
			&ast.IfStatement{
				Test: &ast.UnaryExpr{Op: "not", X: &ast.TypeTestExpr{Var: "x", Type: intAnn()}},
				Then: []ast.Statement{
					&ast.ReturnStatement{Value: &ast.FloatLiteral{Value: 0}},
				},
				Else: []ast.Statement{
					&ast.ReturnStatement{Value: &ast.Name{Value: "x"}},
				},
			},
		},
	}

	ft := mustInfer(t, fn)
	// The else branch is the narrowed one under negation.
	if got := envType(t, ft, "x"); got != "Int" {
		t.Errorf("x inferred %s, want Int", got)
	}
	if ft.Return == nil || ft.Return.String() != "Float" {
		t.Errorf("return type = %v, want Float", ft.Return)
	}
}

func TestInferRecordFieldAccess(t *testing.T) {
	registry := symbols.NewRecordRegistry()
	if err := registry.Register("Point", []symbols.FieldInfo{
		{Name: "x", Type: typesystem.Primitive{Kind: typesystem.Float}},
		{Name: "y", Type: typesystem.Primitive{Kind: typesystem.Float}},
	}, 1); err != nil {
		t.Fatal(err)
	}
	registry.Freeze()

	fn := &ast.FunctionDef{
		Name:   "norm",
		Params: []*ast.Param{{Name: "p", Annotation: &ast.TypeAnnotation{Name: "Point"}}},
		Body: []ast.Statement{
			&ast.ReturnStatement{Value: &ast.BinaryExpr{
				Op:    "+",
				Left:  &ast.AttributeExpr{X: &ast.Name{Value: "p"}, Name: "x"},
				Right: &ast.AttributeExpr{X: &ast.Name{Value: "p"}, Name: "y"},
			}},
		},
	}

	inf := New(registry, &ast.Module{Functions: []*ast.FunctionDef{fn}})
	ft, errs := inf.InferFunction(fn)
	if len(errs) > 0 {
		t.Fatalf("errors: %v", errs)
	}
	if ft.Return == nil || ft.Return.String() != "Float" {
		t.Errorf("return type = %v, want Float", ft.Return)
	}
}

func TestInferContainerParamExcludedFromLattice(t *testing.T) {
	fn := &ast.FunctionDef{
		Name: "count",
		Params: []*ast.Param{
			{Name: "xs", Annotation: &ast.TypeAnnotation{Name: "list", Args: []*ast.TypeAnnotation{intAnn()}}},
		},
		Body: []ast.Statement{
			&ast.ReturnStatement{Value: &ast.CallExpr{Func: "len", Args: []ast.Expression{&ast.Name{Value: "xs"}}}},
		},
	}

	ft := mustInfer(t, fn)
	if !ft.IsContainer("xs") {
		t.Error("xs should be tracked as a container")
	}
	if _, ok := ft.Env.Get("xs"); ok {
		t.Error("container variable must not enter the lattice environment")
	}
	if ft.Return == nil || ft.Return.String() != "Int" {
		t.Errorf("return type = %v, want Int", ft.Return)
	}
}

func TestInferBareIsInstanceCallRejected(t *testing.T) {
	// Type tests arrive as dedicated nodes; a leftover bare isinstance
	// call means the interchange was not normalized.
	fn := &ast.FunctionDef{
		Name:   "check",
		Params: []*ast.Param{{Name: "x", Annotation: intAnn()}},
		Body: []ast.Statement{
			&ast.AssignStatement{
				Target: &ast.Name{Value: "ok"},
				Value: &ast.CallExpr{
					Func: "isinstance",
					Args: []ast.Expression{&ast.Name{Value: "x"}},
					Line: 2,
				},
				Line: 2,
			},
		},
	}

	_, errs := newTestInferencer(fn).InferFunction(fn)
	found := false
	for _, e := range errs {
		if e.Code.ID == "U002" && e.Line == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want U002 at line 2", errs)
	}
}
