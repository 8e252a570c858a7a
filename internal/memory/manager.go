// Package memory tracks heap-backed allocations by lexical scope, derives
// deterministic cleanup sequences, and surfaces unsafe patterns (reference
// cycles, use after move) as findings. Findings are collected, never
// thrown: one unsafe function must not stop analysis of its siblings.
package memory

import (
	"fmt"

	"github.com/cgenlang/cgen/internal/diagnostics"
)

// ScopeKind labels a scope frame.
type ScopeKind int

const (
	FunctionScope ScopeKind = iota
	BlockScope
)

func (k ScopeKind) String() string {
	if k == FunctionScope {
		return "function"
	}
	return "block"
}

// Allocation is one tracked allocation-bearing variable.
type Allocation struct {
	Name          string
	Kind          string // concrete container kind, e.g. "vec"
	ScopeID       int
	Line          int
	IsParameter   bool
	IsReturnValue bool
	IsMoved       bool
}

// needsCleanup reports whether the declaring scope must release the
// allocation on exit.
func (a *Allocation) needsCleanup() bool {
	return !a.IsParameter && !a.IsReturnValue && !a.IsMoved
}

// Finding is a single memory-safety observation.
type Finding struct {
	Kind     string
	Message  string
	Severity diagnostics.Severity
	Line     int
}

// Finding kinds.
const (
	FindingUseAfterMove   = "use-after-move"
	FindingReferenceCycle = "reference-cycle"
)

// Summary aggregates allocation counts for reporting.
type Summary struct {
	TotalAllocations int
	NeedingCleanup   int
	ByKind           map[string]int
}

type scopeFrame struct {
	id     int
	kind   ScopeKind
	allocs []*Allocation
}

// Manager is the per-function scope and allocation tracker. Zero value is
// not usable; construct with NewManager.
type Manager struct {
	scopes   []*scopeFrame
	nextID   int
	byName   map[string]*Allocation
	all      []*Allocation
	graph    *Graph
	findings []Finding
}

func NewManager() *Manager {
	return &Manager{
		byName: make(map[string]*Allocation),
		graph:  NewGraph(),
	}
}

// EnterScope pushes a new scope frame.
func (m *Manager) EnterScope(kind ScopeKind) {
	m.nextID++
	m.scopes = append(m.scopes, &scopeFrame{id: m.nextID, kind: kind})
}

// ExitScope pops the innermost frame and returns its allocations needing
// release, in reverse declaration order so dependent releases stay safe.
func (m *Manager) ExitScope() []*Allocation {
	if len(m.scopes) == 0 {
		return nil
	}
	frame := m.scopes[len(m.scopes)-1]
	m.scopes = m.scopes[:len(m.scopes)-1]

	var out []*Allocation
	for i := len(frame.allocs) - 1; i >= 0; i-- {
		a := frame.allocs[i]
		if a.needsCleanup() {
			out = append(out, a)
		}
		delete(m.byName, a.Name)
	}
	return out
}

// Register tracks an allocation declared in the current scope.
func (m *Manager) Register(name, kind string, line int) *Allocation {
	a := &Allocation{Name: name, Kind: kind, Line: line}
	if len(m.scopes) > 0 {
		frame := m.scopes[len(m.scopes)-1]
		a.ScopeID = frame.id
		frame.allocs = append(frame.allocs, a)
	}
	m.byName[name] = a
	m.all = append(m.all, a)
	return a
}

// RegisterParameter tracks a caller-owned allocation: visible for moves
// and cycle edges, never cleaned up here.
func (m *Manager) RegisterParameter(name, kind string, line int) *Allocation {
	a := m.Register(name, kind, line)
	a.IsParameter = true
	return a
}

// RegisterReturnValue transfers ownership of an allocation to the caller.
// Must run before the enclosing function scope exits, or the allocation
// would be double-managed.
func (m *Manager) RegisterReturnValue(name string) {
	if a, ok := m.byName[name]; ok {
		a.IsReturnValue = true
		a.IsMoved = true
	}
}

// MarkMoved records an ownership transfer out of the declaring scope.
func (m *Manager) MarkMoved(name string, line int) {
	if a, ok := m.byName[name]; ok {
		if a.IsMoved {
			m.addFinding(FindingUseAfterMove, diagnostics.SeverityError, line,
				"allocation %q moved twice", name)
			return
		}
		a.IsMoved = true
	}
}

// Tracked reports whether name is a live tracked allocation.
func (m *Manager) Tracked(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// NoteUse records a read of an allocation; use after a move is flagged.
func (m *Manager) NoteUse(name string, line int) {
	if a, ok := m.byName[name]; ok && a.IsMoved && !a.IsReturnValue {
		m.addFinding(FindingUseAfterMove, diagnostics.SeverityWarning, line,
			"allocation %q used after move", name)
	}
}

// LiveCleanups returns every live allocation needing release across all
// open frames, innermost first and reverse declaration order within a
// frame. Used on early return, optionally excluding the returned value.
func (m *Manager) LiveCleanups(exclude string) []*Allocation {
	var out []*Allocation
	for i := len(m.scopes) - 1; i >= 0; i-- {
		frame := m.scopes[i]
		for j := len(frame.allocs) - 1; j >= 0; j-- {
			a := frame.allocs[j]
			if a.Name != exclude && a.needsCleanup() {
				out = append(out, a)
			}
		}
	}
	return out
}

// Wrapper is one fallible operation paired with the receiver allocation
// to release when the operation aborts mid-function.
type Wrapper struct {
	Op    string
	Owner *Allocation
}

// ExceptionSafeWrapper pairs a fallible operation with its receiver's
// allocation. Owner is nil when the receiver is untracked or exempt from
// cleanup, in which case no failure path is needed.
func (m *Manager) ExceptionSafeWrapper(op, owner string) Wrapper {
	a, ok := m.byName[owner]
	if !ok || !a.needsCleanup() {
		return Wrapper{Op: op}
	}
	return Wrapper{Op: op, Owner: a}
}

// AddDependency records a depends-on edge between tracked allocations.
func (m *Manager) AddDependency(from, to string) {
	m.graph.AddDependency(from, to)
}

// DetectCycles searches the dependency graph and reports each directed
// cycle once, as an error. Cycles are never broken automatically: the
// source annotations carry no owner/weak distinction that would make a
// break safe.
func (m *Manager) DetectCycles() {
	for _, cycle := range m.graph.DetectCycles() {
		line := 0
		if a := m.lookup(cycle[0]); a != nil {
			line = a.Line
		}
		m.addFinding(FindingReferenceCycle, diagnostics.SeverityError, line,
			"reference cycle: %s", cyclePath(cycle))
	}
}

// lookup finds an allocation by name, falling back to scopes already
// exited so findings keep their declaration lines.
func (m *Manager) lookup(name string) *Allocation {
	if a, ok := m.byName[name]; ok {
		return a
	}
	for _, a := range m.all {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Findings returns all collected findings in detection order.
func (m *Manager) Findings() []Finding {
	return m.findings
}

// Summary aggregates allocation counts over the whole run of the manager,
// including scopes already exited.
func (m *Manager) Summary() Summary {
	s := Summary{ByKind: make(map[string]int)}
	for _, a := range m.all {
		s.TotalAllocations++
		if a.needsCleanup() {
			s.NeedingCleanup++
		}
		s.ByKind[a.Kind]++
	}
	return s
}

func (m *Manager) addFinding(kind string, sev diagnostics.Severity, line int, format string, args ...interface{}) {
	m.findings = append(m.findings, Finding{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Line:     line,
	})
}

func cyclePath(cycle []string) string {
	s := ""
	for _, n := range cycle {
		s += n + " -> "
	}
	return s + cycle[0]
}
