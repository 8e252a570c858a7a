// Package report aggregates memory-safety findings and allocation
// statistics across a translated unit into a single run-stamped report,
// rendered as text or stored in a SQLite sink.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/memory"
)

// FunctionReport is the per-function slice of the unit report.
type FunctionReport struct {
	Name     string
	Findings []memory.Finding
	Summary  memory.Summary
}

// MemorySafetyReport is one translation run's aggregated view.
type MemorySafetyReport struct {
	RunID       string
	Unit        string
	GeneratedAt time.Time
	Functions   []FunctionReport

	TotalAllocations int
	NeedingCleanup   int
	ByKind           map[string]int
}

// New creates an empty report with a fresh run ID.
func New(unit string) *MemorySafetyReport {
	return &MemorySafetyReport{
		RunID:       uuid.NewString(),
		Unit:        unit,
		GeneratedAt: time.Now().UTC(),
		ByKind:      make(map[string]int),
	}
}

// AddFunction folds one function's findings and allocation summary into
// the aggregate.
func (r *MemorySafetyReport) AddFunction(name string, findings []memory.Finding, s memory.Summary) {
	r.Functions = append(r.Functions, FunctionReport{Name: name, Findings: findings, Summary: s})
	r.TotalAllocations += s.TotalAllocations
	r.NeedingCleanup += s.NeedingCleanup
	for kind, n := range s.ByKind {
		r.ByKind[kind] += n
	}
}

// FindingCount returns the number of findings at or above a severity.
func (r *MemorySafetyReport) FindingCount(min diagnostics.Severity) int {
	n := 0
	for _, fr := range r.Functions {
		for _, f := range fr.Findings {
			if f.Severity >= min {
				n++
			}
		}
	}
	return n
}

// ANSI escape sequences used when the sink is a terminal.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func severityColor(s diagnostics.Severity) string {
	switch s {
	case diagnostics.SeverityError:
		return colorRed
	case diagnostics.SeverityWarning:
		return colorYellow
	}
	return colorCyan
}

// Render writes the text form of the report. color toggles ANSI
// sequences; the CLI enables it only on a terminal.
func (r *MemorySafetyReport) Render(w io.Writer, color bool) {
	fmt.Fprintf(w, "memory safety report %s (unit %s)\n", r.RunID, r.Unit)
	fmt.Fprintf(w, "allocations: %d total, %d needing cleanup\n", r.TotalAllocations, r.NeedingCleanup)

	kinds := make([]string, 0, len(r.ByKind))
	for k := range r.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-6s %d\n", k, r.ByKind[k])
	}

	for _, fr := range r.Functions {
		if len(fr.Findings) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", fr.Name)
		for _, f := range fr.Findings {
			if color {
				fmt.Fprintf(w, "  %s%s%s line %d: %s\n",
					severityColor(f.Severity), f.Severity, colorReset, f.Line, f.Message)
			} else {
				fmt.Fprintf(w, "  %s line %d: %s\n", f.Severity, f.Line, f.Message)
			}
		}
	}
}
