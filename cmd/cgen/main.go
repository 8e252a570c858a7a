package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"

	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/pipeline"
	"github.com/cgenlang/cgen/internal/report"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
)

func stderrIsTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// loadConfig looks for the project configuration next to the input file.
func loadConfig(inputPath string) *config.Config {
	path := filepath.Join(filepath.Dir(inputPath), config.ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

func printErrors(errors []*diagnostics.DiagnosticError) {
	color := stderrIsTerminal()
	for _, err := range errors {
		if color && err.Code.Severity == diagnostics.SeverityError {
			fmt.Fprintf(os.Stderr, "- %s%s%s\n", colorRed, err.Error(), colorReset)
		} else {
			fmt.Fprintf(os.Stderr, "- %s\n", err.Error())
		}
	}
}

func outputPath(inputPath string, cfg *config.Config) string {
	if cfg.Output != "" {
		return cfg.Output
	}
	return strings.TrimSuffix(inputPath, config.SourceFileExt) + ".c"
}

// translateFile runs the full pipeline for one interchange file and writes
// the C output next to it. Returns false when any diagnostic blocked
// emission.
func translateFile(inputPath string, cfg *config.Config) bool {
	ctx := pipeline.Translate(inputPath, cfg)

	if ctx.Report != nil && (len(ctx.Report.Functions) > 0 || ctx.Report.TotalAllocations > 0) {
		ctx.Report.Render(os.Stderr, stderrIsTerminal())
	}

	if len(ctx.Errors) > 0 {
		fmt.Fprintln(os.Stderr, "Translation failed with errors:")
		printErrors(ctx.Errors)
	}

	if cfg.ReportDB != "" && ctx.Report != nil {
		if err := report.SaveSQLite(cfg.ReportDB, ctx.Report); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving report: %s\n", err)
		}
	}

	if ctx.Output == "" {
		return false
	}
	outPath := outputPath(inputPath, cfg)
	if err := os.WriteFile(outPath, []byte(ctx.Output), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %s\n", outPath, err)
		return false
	}
	fmt.Printf("Translated %s -> %s\n", inputPath, outPath)
	return len(ctx.Errors) == 0
}

// handleReport prints the runs stored in a report database.
func handleReport() bool {
	if len(os.Args) < 2 || os.Args[1] != "report" {
		return false
	}
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s report <report.db>\n", os.Args[0])
		os.Exit(1)
	}

	runs, err := report.LoadRuns(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs")
		return true
	}
	report.RenderRuns(os.Stdout, runs, stdoutIsTerminal())
	return true
}

// handleWatch re-translates an interchange file whenever it changes.
func handleWatch() bool {
	if len(os.Args) < 2 || os.Args[1] != "watch" {
		return false
	}
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s watch <file%s>\n", os.Args[0], config.SourceFileExt)
		os.Exit(1)
	}

	inputPath, err := filepath.Abs(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting watcher: %s\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(inputPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Error watching %s: %s\n", filepath.Dir(inputPath), err)
		os.Exit(1)
	}

	translateFile(inputPath, loadConfig(inputPath))
	fmt.Printf("Watching %s\n", inputPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return true
			}
			if event.Name != inputPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Printf("Change detected: %s\n", event.Name)
			translateFile(inputPath, loadConfig(inputPath))
		case err, ok := <-watcher.Errors:
			if !ok {
				return true
			}
			fmt.Fprintf(os.Stderr, "Watch error: %s\n", err)
		}
	}
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		return false
	}
	if os.Args[1] != "-help" && os.Args[1] != "--help" && os.Args[1] != "help" {
		return false
	}
	fmt.Printf(`Usage: %[1]s <file%[2]s>            translate one module to C
       %[1]s translate <file%[2]s>  same as above
       %[1]s watch <file%[2]s>      re-translate on change
       %[1]s report <report.db>        print stored memory safety runs

Configuration is read from %[3]s next to the input file when present.
`, os.Args[0], config.SourceFileExt, config.ConfigFileName)
	return true
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}
	if handleReport() {
		return
	}
	if handleWatch() {
		return
	}

	args := os.Args[1:]
	if len(args) >= 1 && args[0] == "translate" {
		args = args[1:]
	}
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s <file%s> (try --help)\n", os.Args[0], config.SourceFileExt)
		os.Exit(1)
	}

	inputPath := args[0]
	if !strings.HasSuffix(inputPath, config.SourceFileExt) {
		fmt.Fprintf(os.Stderr, "Error: input must be a %s file\n", config.SourceFileExt)
		os.Exit(1)
	}
	if !translateFile(inputPath, loadConfig(inputPath)) {
		os.Exit(1)
	}
}
