package emitter

import (
	"sync"

	"github.com/cgenlang/cgen/internal/analyzer"
	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/cfile"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/containers"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/symbols"
)

// UnitResult is the outcome of translating one module: the output tree
// plus per-function results. A function with errors is excluded from the
// tree; its siblings are unaffected.
type UnitResult struct {
	Name      string
	File      *cfile.File
	Functions []*FunctionResult
	Registry  *symbols.RecordRegistry
	Errors    []*diagnostics.DiagnosticError
}

// inference is the per-function analysis result feeding emission.
type inference struct {
	ft       *analyzer.FunctionTypes
	profiles map[string]*containers.UsageProfile
	errs     []*diagnostics.DiagnosticError
}

// TranslateUnit runs the whole module: registry build and freeze,
// per-function inference and usage analysis (fanned out when Parallelism
// allows; the frozen registry makes that safe), then ordered emission.
// Emission stays sequential: the container name pool and union pool are
// unit-wide and their determinism matters more than the cheap final pass.
func TranslateUnit(module *ast.Module, cfg *config.Config) *UnitResult {
	registry, regErrs := analyzer.BuildRegistry(module)
	registry.Freeze()

	res := &UnitResult{Name: module.Name, Registry: registry, Errors: regErrs}

	inferred := make([]inference, len(module.Functions))
	analyze := func(i int) {
		fn := module.Functions[i]
		inf := analyzer.New(registry, module)
		ft, errs := inf.InferFunction(fn)
		inferred[i] = inference{
			ft:       ft,
			profiles: containers.AnalyzeUsage(fn),
			errs:     errs,
		}
	}

	workers := cfg.Parallelism
	if workers <= 1 || len(module.Functions) < 2 {
		for i := range module.Functions {
			analyze(i)
		}
	} else {
		var wg sync.WaitGroup
		jobs := make(chan int)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					analyze(i)
				}
			}()
		}
		for i := range module.Functions {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	em := New(registry)
	for i, fn := range module.Functions {
		in := inferred[i]
		if len(in.errs) > 0 {
			fr := &FunctionResult{Name: fn.Name, Errors: in.errs}
			for _, e := range fr.Errors {
				e.Function = fn.Name
			}
			res.Functions = append(res.Functions, fr)
			res.Errors = append(res.Errors, fr.Errors...)
			continue
		}
		fr := em.EmitFunction(fn, in.ft, in.profiles)
		promoteFindings(fr, cfg.WarningsAsErrors)
		res.Functions = append(res.Functions, fr)
		res.Errors = append(res.Errors, fr.Errors...)
	}

	res.File = assembleFile(em, res.Functions, &res.Errors)
	return res
}

// promoteFindings blocks emission of a function whose findings are
// error-severity, or warning-severity under WarningsAsErrors.
func promoteFindings(fr *FunctionResult, warningsAsErrors bool) {
	for _, f := range fr.Findings {
		blocking := f.Severity == diagnostics.SeverityError ||
			(warningsAsErrors && f.Severity == diagnostics.SeverityWarning)
		if !blocking {
			continue
		}
		err := diagnostics.NewError(diagnostics.ErrM001, f.Line, f.Message)
		err.Function = fr.Name
		fr.Errors = append(fr.Errors, err)
	}
	if len(fr.Errors) > 0 {
		fr.Decl = nil
	}
}

// assembleFile lays out the translation unit: standard includes, one
// define+include pair per container instantiation (deduplicated), record
// structs, tagged unions, then the function definitions.
func assembleFile(em *Emitter, functions []*FunctionResult, errs *[]*diagnostics.DiagnosticError) *cfile.File {
	f := &cfile.File{}

	for _, inc := range config.StandardIncludes {
		f.Add(&cfile.Include{Path: inc, System: true})
	}

	needCstr := false
	seenType := make(map[string]bool)
	var containerElems []cfile.Element
	for _, fr := range functions {
		if fr.Decl == nil {
			continue
		}
		for _, b := range fr.Bindings {
			if b.Kind == containers.Str || b.Elem == "cstr" || b.Value == "cstr" {
				needCstr = true
			}
			if b.Kind == containers.Str || seenType[b.TypeName] {
				continue
			}
			seenType[b.TypeName] = true
			containerElems = append(containerElems,
				&cfile.Define{Text: b.TypeDef()},
				&cfile.Include{Path: b.Include()},
			)
		}
	}
	if needCstr {
		f.Add(&cfile.Include{Path: "stc/cstr.h"})
	}
	f.Add(containerElems...)
	f.Add(&cfile.Blank{})

	records, recErrs := em.RecordElements()
	*errs = append(*errs, recErrs...)
	f.Add(records...)
	f.Add(em.UnionElements()...)

	for _, fr := range functions {
		if fr.Decl == nil {
			continue
		}
		f.Add(fr.Decl, &cfile.Blank{})
	}
	return f
}
