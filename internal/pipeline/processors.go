package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/cfile"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/emitter"
	"github.com/cgenlang/cgen/internal/report"
)

// LoadProcessor reads the AST interchange file named by the context.
type LoadProcessor struct{}

func (lp *LoadProcessor) Process(ctx *PipelineContext) *PipelineContext {
	data, err := os.ReadFile(ctx.FilePath)
	if err != nil {
		ctx.Errors = append(ctx.Errors,
			diagnostics.NewError(diagnostics.ErrU003, 0, "reading "+ctx.FilePath+": "+err.Error()))
		return ctx
	}
	module, err := ast.DecodeModule(data)
	if err != nil {
		ctx.Errors = append(ctx.Errors,
			diagnostics.NewError(diagnostics.ErrU003, 0, "decoding "+ctx.FilePath+": "+err.Error()))
		return ctx
	}
	if module.Name == "" {
		base := filepath.Base(ctx.FilePath)
		module.Name = strings.TrimSuffix(base, config.SourceFileExt)
	}
	ctx.Module = module
	return ctx
}

// TranslateProcessor runs the whole unit translation.
type TranslateProcessor struct{}

func (tp *TranslateProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Module == nil {
		return ctx
	}
	ctx.Unit = emitter.TranslateUnit(ctx.Module, ctx.Config)
	ctx.Errors = append(ctx.Errors, ctx.Unit.Errors...)
	return ctx
}

// RenderProcessor turns the unit's element tree into C text.
type RenderProcessor struct{}

func (rp *RenderProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Unit == nil || ctx.Unit.File == nil {
		return ctx
	}
	ctx.Output = cfile.NewWriter(ctx.Config.Style).Render(ctx.Unit.File)
	return ctx
}

// ReportProcessor aggregates per-function findings into the run report.
type ReportProcessor struct{}

func (rp *ReportProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Unit == nil {
		return ctx
	}
	r := report.New(ctx.Unit.Name)
	for _, fr := range ctx.Unit.Functions {
		r.AddFunction(fr.Name, fr.Findings, fr.Summary)
	}
	ctx.Report = r
	return ctx
}

// Translate builds the standard chain for one interchange file.
func Translate(path string, cfg *config.Config) *PipelineContext {
	ctx := &PipelineContext{FilePath: path, Config: cfg}
	return New(
		&LoadProcessor{},
		&TranslateProcessor{},
		&RenderProcessor{},
		&ReportProcessor{},
	).Run(ctx)
}
