package containers

import (
	"testing"

	"github.com/cgenlang/cgen/internal/ast"
)

func ann(name string, args ...*ast.TypeAnnotation) *ast.TypeAnnotation {
	return &ast.TypeAnnotation{Name: name, Args: args}
}

func TestChooseDecisionTable(t *testing.T) {
	tests := []struct {
		name    string
		kind    AbstractKind
		profile UsageProfile
		want    ConcreteKind
	}{
		{"sequence default", Sequence, UsageProfile{}, Vec},
		{"sequence insert only", Sequence, UsageProfile{FrequentInsert: true}, Vec},
		{"sequence access only", Sequence, UsageProfile{RandomAccess: true}, Vec},
		{"sequence insert and access", Sequence, UsageProfile{FrequentInsert: true, RandomAccess: true}, Deque},
		{"mapping default", Mapping, UsageProfile{FrequentLookup: true}, HashMap},
		{"mapping sorted", Mapping, UsageProfile{SortedAccess: true}, SortedMap},
		{"set default", UniqueSet, UsageProfile{FrequentInsert: true, FrequentDelete: true}, HashSet},
		{"set sorted", UniqueSet, UsageProfile{SortedAccess: true}, SortedSet},
		{"text", Text, UsageProfile{RandomAccess: true}, Str},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Choose(tt.kind, &tt.profile)
			if got != tt.want {
				t.Errorf("Choose(%v, %+v) = %v, want %v", tt.kind, tt.profile, got, tt.want)
			}
		})
	}
}

func TestChooseNilProfile(t *testing.T) {
	if got := Choose(Sequence, nil); got != Vec {
		t.Errorf("Choose(Sequence, nil) = %v, want Vec", got)
	}
}

func TestAnalyzeUsage(t *testing.T) {
	// def f(xs, d, s):
	//     xs.append(1)
	//     v = xs[0]
	//     if 1 in xs: d.get(2)
	//     for k in sorted(d): s.add(k)
	//     s.discard(3)
	fn := &ast.FunctionDef{
		Name: "f",
		Body: []ast.Statement{
			&ast.ExpressionStatement{X: &ast.MethodCallExpr{
				Recv: "xs", Method: "append", Args: []ast.Expression{&ast.IntLiteral{Value: 1}},
			}},
			&ast.AssignStatement{
				Target: &ast.Name{Value: "v"},
				Value:  &ast.SubscriptExpr{X: &ast.Name{Value: "xs"}, Index: &ast.IntLiteral{Value: 0}},
			},
			&ast.IfStatement{
				Test: &ast.CompareExpr{Op: "in", Left: &ast.IntLiteral{Value: 1}, Right: &ast.Name{Value: "xs"}},
				Then: []ast.Statement{
					&ast.ExpressionStatement{X: &ast.MethodCallExpr{
						Recv: "d", Method: "get", Args: []ast.Expression{&ast.IntLiteral{Value: 2}},
					}},
				},
			},
			&ast.ForEachStatement{
				Var:      "k",
				Iterable: &ast.CallExpr{Func: "sorted", Args: []ast.Expression{&ast.Name{Value: "d"}}},
				Body: []ast.Statement{
					&ast.ExpressionStatement{X: &ast.MethodCallExpr{
						Recv: "s", Method: "add", Args: []ast.Expression{&ast.Name{Value: "k"}},
					}},
				},
			},
			&ast.ExpressionStatement{X: &ast.MethodCallExpr{
				Recv: "s", Method: "discard", Args: []ast.Expression{&ast.IntLiteral{Value: 3}},
			}},
		},
	}

	profiles := AnalyzeUsage(fn)

	xs := profiles["xs"]
	if xs == nil || !xs.FrequentInsert || !xs.RandomAccess {
		t.Fatalf("xs profile = %+v, want insert and random access", xs)
	}
	if xs.ModificationCount != 1 || xs.AccessCount != 1 {
		t.Errorf("xs counts = %d mods, %d accesses, want 1, 1", xs.ModificationCount, xs.AccessCount)
	}

	d := profiles["d"]
	if d == nil || !d.FrequentLookup || !d.KeyValue || !d.SortedAccess {
		t.Fatalf("d profile = %+v, want lookup, key-value and sorted access", d)
	}

	s := profiles["s"]
	if s == nil || !s.FrequentInsert || !s.FrequentDelete {
		t.Fatalf("s profile = %+v, want insert and delete", s)
	}
	if s.SortedAccess {
		t.Errorf("s profile gained sorted access it never exhibited")
	}

	if Choose(Sequence, xs) != Deque {
		t.Errorf("xs should map to deque given insert + random access")
	}
	if Choose(Mapping, d) != SortedMap {
		t.Errorf("d should map to smap given sorted access")
	}
	if Choose(UniqueSet, s) != HashSet {
		t.Errorf("s should map to hset absent sorted access")
	}
}

func TestAbstractKindFor(t *testing.T) {
	tests := []struct {
		ann  *ast.TypeAnnotation
		want AbstractKind
		ok   bool
	}{
		{ann("list", ann("int")), Sequence, true},
		{ann("deque", ann("int")), Sequence, true},
		{ann("dict", ann("str"), ann("int")), Mapping, true},
		{ann("set", ann("float")), UniqueSet, true},
		{ann("str"), Text, true},
		{ann("int"), 0, false},
		{ann("Point"), 0, false},
	}
	for _, tt := range tests {
		got, ok := AbstractKindFor(tt.ann)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("AbstractKindFor(%s) = %v, %v; want %v, %v", tt.ann, got, ok, tt.want, tt.ok)
		}
	}
}
