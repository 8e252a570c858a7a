package tests

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/pipeline"
)

// TestFunctional runs .ast.json files through the full pipeline and
// compares the rendered C output with .want files.
func TestFunctional(t *testing.T) {
	var testFiles []string
	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, config.SourceFileExt) {
			return nil
		}
		wantFile := strings.TrimSuffix(path, config.SourceFileExt) + ".want"
		if _, err := os.Stat(wantFile); err == nil {
			testFiles = append(testFiles, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk directory: %v", err)
	}
	if len(testFiles) == 0 {
		t.Skip("No test files with .want found")
	}

	for _, testFile := range testFiles {
		testFile := testFile
		name := strings.TrimSuffix(filepath.Base(testFile), config.SourceFileExt)
		t.Run(name, func(t *testing.T) {
			want, err := os.ReadFile(strings.TrimSuffix(testFile, config.SourceFileExt) + ".want")
			if err != nil {
				t.Fatalf("Failed to read want file: %v", err)
			}

			ctx := pipeline.Translate(testFile, config.Default())
			if len(ctx.Errors) > 0 {
				for _, e := range ctx.Errors {
					t.Errorf("- %s", e.Error())
				}
				t.Fatal("translation failed")
			}

			if got, expected := normalize(ctx.Output), normalize(string(want)); got != expected {
				t.Errorf("output mismatch for %s:\n--- want\n%s\n--- got\n%s", testFile, expected, got)
			}
		})
	}
}

// normalize strips trailing whitespace so goldens survive editor cleanup.
func normalize(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
