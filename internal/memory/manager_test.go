package memory

import (
	"testing"

	"github.com/cgenlang/cgen/internal/diagnostics"
)

func TestExitScopeReleasesOnce(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("items", "vec", 2)

	drops := m.ExitScope()
	if len(drops) != 1 || drops[0].Name != "items" {
		t.Fatalf("drops = %v, want exactly [items]", names(drops))
	}
	if more := m.ExitScope(); len(more) != 0 {
		t.Errorf("second ExitScope released %v, want nothing", names(more))
	}
}

func TestReturnedAllocationNotReleased(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("items", "vec", 2)
	m.RegisterReturnValue("items")

	if drops := m.ExitScope(); len(drops) != 0 {
		t.Fatalf("returned allocation released: %v", names(drops))
	}
}

func TestExitScopeReverseDeclarationOrder(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("a", "vec", 1)
	m.Register("b", "hmap", 2)
	m.Register("c", "hset", 3)

	got := names(m.ExitScope())
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("release order = %v, want %v", got, want)
		}
	}
}

func TestParameterExemptFromCleanup(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.RegisterParameter("xs", "vec", 1)
	m.Register("tmp", "vec", 2)

	got := names(m.ExitScope())
	if len(got) != 1 || got[0] != "tmp" {
		t.Fatalf("drops = %v, want [tmp]", got)
	}
}

func TestNestedScopes(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("outer", "vec", 1)
	m.EnterScope(BlockScope)
	m.Register("inner", "hset", 3)

	if got := names(m.ExitScope()); len(got) != 1 || got[0] != "inner" {
		t.Fatalf("block drops = %v, want [inner]", got)
	}
	if got := names(m.ExitScope()); len(got) != 1 || got[0] != "outer" {
		t.Fatalf("function drops = %v, want [outer]", got)
	}
}

func TestLiveCleanupsForEarlyReturn(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("a", "vec", 1)
	m.Register("b", "hmap", 2)
	m.EnterScope(BlockScope)
	m.Register("c", "hset", 3)

	got := names(m.LiveCleanups("b"))
	want := []string{"c", "a"}
	if len(got) != len(want) {
		t.Fatalf("live cleanups = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("live cleanups = %v, want %v", got, want)
		}
	}
}

func TestUseAfterMoveFinding(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("items", "vec", 1)
	m.MarkMoved("items", 4)
	m.NoteUse("items", 6)

	fs := m.Findings()
	if len(fs) != 1 {
		t.Fatalf("findings = %d, want 1", len(fs))
	}
	f := fs[0]
	if f.Kind != FindingUseAfterMove || f.Severity != diagnostics.SeverityWarning || f.Line != 6 {
		t.Errorf("finding = %+v, want use-after-move warning at line 6", f)
	}

	if drops := m.ExitScope(); len(drops) != 0 {
		t.Errorf("moved allocation released: %v", names(drops))
	}
}

func TestDoubleMoveFinding(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("items", "vec", 1)
	m.MarkMoved("items", 4)
	m.MarkMoved("items", 9)

	fs := m.Findings()
	if len(fs) != 1 || fs[0].Severity != diagnostics.SeverityError {
		t.Fatalf("findings = %+v, want one error for the second move", fs)
	}
}

func TestExceptionSafeWrapper(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("items", "vec", 1)
	m.RegisterParameter("xs", "vec", 1)

	w := m.ExceptionSafeWrapper("ItemsVec_push(&items, v)", "items")
	if w.Owner == nil || w.Owner.Name != "items" {
		t.Fatalf("wrapper owner = %+v, want items", w.Owner)
	}

	w = m.ExceptionSafeWrapper("XsVec_push(&xs, v)", "xs")
	if w.Owner != nil {
		t.Errorf("caller-owned receiver got a failure path: %+v", w.Owner)
	}
}

func TestCycleFindingKeepsLineAfterScopeExit(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("a", "str", 2)
	m.Register("b", "str", 3)
	m.AddDependency("a", "b")
	m.AddDependency("b", "a")
	m.ExitScope()
	m.DetectCycles()

	fs := m.Findings()
	if len(fs) != 1 {
		t.Fatalf("findings = %+v, want one reference cycle", fs)
	}
	f := fs[0]
	if f.Kind != FindingReferenceCycle || f.Severity != diagnostics.SeverityError {
		t.Fatalf("finding = %+v, want a reference-cycle error", f)
	}
	if f.Line != 2 && f.Line != 3 {
		t.Errorf("finding line = %d, want the declaration line of a cycle member", f.Line)
	}
}

func TestSummary(t *testing.T) {
	m := NewManager()
	m.EnterScope(FunctionScope)
	m.Register("a", "vec", 1)
	m.Register("b", "vec", 2)
	m.Register("c", "hmap", 3)
	m.RegisterReturnValue("c")
	m.ExitScope()

	s := m.Summary()
	if s.TotalAllocations != 3 {
		t.Errorf("TotalAllocations = %d, want 3", s.TotalAllocations)
	}
	if s.NeedingCleanup != 2 {
		t.Errorf("NeedingCleanup = %d, want 2", s.NeedingCleanup)
	}
	if s.ByKind["vec"] != 2 || s.ByKind["hmap"] != 1 {
		t.Errorf("ByKind = %v, want vec:2 hmap:1", s.ByKind)
	}
}

func names(allocs []*Allocation) []string {
	out := make([]string, len(allocs))
	for i, a := range allocs {
		out[i] = a.Name
	}
	return out
}
