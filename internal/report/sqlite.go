package report

import (
	"database/sql"
	"fmt"
	"io"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id            TEXT PRIMARY KEY,
	unit              TEXT NOT NULL,
	generated_at      TEXT NOT NULL,
	total_allocations INTEGER NOT NULL,
	needing_cleanup   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS findings (
	run_id   TEXT NOT NULL REFERENCES runs(run_id),
	function TEXT NOT NULL,
	kind     TEXT NOT NULL,
	severity TEXT NOT NULL,
	line     INTEGER NOT NULL,
	message  TEXT NOT NULL
);
`

// SaveSQLite appends the report to a SQLite database, creating the schema
// on first use. Each run is one row in runs plus one row per finding.
func SaveSQLite(path string, r *MemorySafetyReport) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening report db %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating report schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting report transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, unit, generated_at, total_allocations, needing_cleanup) VALUES (?, ?, ?, ?, ?)`,
		r.RunID, r.Unit, r.GeneratedAt.Format("2006-01-02T15:04:05Z"), r.TotalAllocations, r.NeedingCleanup,
	); err != nil {
		return fmt.Errorf("storing run %s: %w", r.RunID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO findings (run_id, function, kind, severity, line, message) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing finding insert: %w", err)
	}
	defer stmt.Close()

	for _, fr := range r.Functions {
		for _, f := range fr.Findings {
			if _, err := stmt.Exec(r.RunID, fr.Name, f.Kind, f.Severity.String(), f.Line, f.Message); err != nil {
				return fmt.Errorf("storing finding for %s: %w", fr.Name, err)
			}
		}
	}
	return tx.Commit()
}

// StoredRun is one historical run read back from the database.
type StoredRun struct {
	RunID            string
	Unit             string
	GeneratedAt      string
	TotalAllocations int
	NeedingCleanup   int
	Findings         []StoredFinding
}

// StoredFinding is one persisted finding row.
type StoredFinding struct {
	Function string
	Kind     string
	Severity string
	Line     int
	Message  string
}

// LoadRuns reads every stored run, newest first.
func LoadRuns(path string) ([]StoredRun, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening report db %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT run_id, unit, generated_at, total_allocations, needing_cleanup FROM runs ORDER BY generated_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []StoredRun
	for rows.Next() {
		var r StoredRun
		if err := rows.Scan(&r.RunID, &r.Unit, &r.GeneratedAt, &r.TotalAllocations, &r.NeedingCleanup); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		frows, err := db.Query(
			`SELECT function, kind, severity, line, message FROM findings WHERE run_id = ? ORDER BY function, line`,
			runs[i].RunID)
		if err != nil {
			return nil, fmt.Errorf("listing findings for %s: %w", runs[i].RunID, err)
		}
		for frows.Next() {
			var f StoredFinding
			if err := frows.Scan(&f.Function, &f.Kind, &f.Severity, &f.Line, &f.Message); err != nil {
				frows.Close()
				return nil, fmt.Errorf("scanning finding: %w", err)
			}
			runs[i].Findings = append(runs[i].Findings, f)
		}
		frows.Close()
		if err := frows.Err(); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// RenderRuns writes the text form of historical runs read via LoadRuns.
func RenderRuns(w io.Writer, runs []StoredRun, color bool) {
	for i, run := range runs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "run %s (unit %s, %s)\n", run.RunID, run.Unit, run.GeneratedAt)
		fmt.Fprintf(w, "allocations: %d total, %d needing cleanup\n", run.TotalAllocations, run.NeedingCleanup)
		for _, f := range run.Findings {
			if color {
				c := colorCyan
				switch f.Severity {
				case "error":
					c = colorRed
				case "warning":
					c = colorYellow
				}
				fmt.Fprintf(w, "  %s: %s%s%s line %d: %s\n", f.Function, c, f.Severity, colorReset, f.Line, f.Message)
			} else {
				fmt.Fprintf(w, "  %s: %s line %d: %s\n", f.Function, f.Severity, f.Line, f.Message)
			}
		}
	}
}
