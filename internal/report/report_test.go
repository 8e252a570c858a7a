package report

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/memory"
)

func sampleReport() *MemorySafetyReport {
	r := New("m")
	r.AddFunction("alpha",
		[]memory.Finding{
			{Kind: memory.FindingUseAfterMove, Message: "allocation \"xs\" used after move", Severity: diagnostics.SeverityWarning, Line: 6},
		},
		memory.Summary{TotalAllocations: 2, NeedingCleanup: 1, ByKind: map[string]int{"vec": 2}},
	)
	r.AddFunction("beta",
		[]memory.Finding{
			{Kind: memory.FindingReferenceCycle, Message: "reference cycle: A -> B -> A", Severity: diagnostics.SeverityError, Line: 3},
		},
		memory.Summary{TotalAllocations: 3, NeedingCleanup: 3, ByKind: map[string]int{"vec": 1, "hmap": 2}},
	)
	return r
}

func TestReportAggregation(t *testing.T) {
	r := sampleReport()

	if r.RunID == "" {
		t.Error("report has no run ID")
	}
	if r.TotalAllocations != 5 {
		t.Errorf("TotalAllocations = %d, want 5", r.TotalAllocations)
	}
	if r.NeedingCleanup != 4 {
		t.Errorf("NeedingCleanup = %d, want 4", r.NeedingCleanup)
	}
	if r.ByKind["vec"] != 3 || r.ByKind["hmap"] != 2 {
		t.Errorf("ByKind = %v, want vec:3 hmap:2", r.ByKind)
	}
	if n := r.FindingCount(diagnostics.SeverityWarning); n != 2 {
		t.Errorf("FindingCount(warning) = %d, want 2", n)
	}
	if n := r.FindingCount(diagnostics.SeverityError); n != 1 {
		t.Errorf("FindingCount(error) = %d, want 1", n)
	}
}

func TestRenderText(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	r.Render(&buf, false)
	out := buf.String()

	for _, want := range []string{
		"allocations: 5 total, 4 needing cleanup",
		"hmap   2",
		"vec    3",
		"alpha:",
		"warning line 6:",
		"beta:",
		"error line 3: reference cycle: A -> B -> A",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("plain render contains ANSI sequences:\n%s", out)
	}

	buf.Reset()
	r.Render(&buf, true)
	if !strings.Contains(buf.String(), colorRed) {
		t.Errorf("colored render lacks error color:\n%s", buf.String())
	}
}

func TestSaveSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")
	r := sampleReport()

	if err := SaveSQLite(path, r); err != nil {
		t.Fatalf("SaveSQLite: %v", err)
	}
	// second run appends
	r2 := sampleReport()
	if err := SaveSQLite(path, r2); err != nil {
		t.Fatalf("SaveSQLite second run: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var runs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}

	var findings int
	if err := db.QueryRow(`SELECT COUNT(*) FROM findings WHERE run_id = ?`, r.RunID).Scan(&findings); err != nil {
		t.Fatalf("count findings: %v", err)
	}
	if findings != 2 {
		t.Errorf("findings for run = %d, want 2", findings)
	}

	var severity string
	if err := db.QueryRow(
		`SELECT severity FROM findings WHERE run_id = ? AND function = 'beta'`, r.RunID,
	).Scan(&severity); err != nil {
		t.Fatalf("select severity: %v", err)
	}
	if severity != "error" {
		t.Errorf("severity = %q, want error", severity)
	}
}
