// Package pipeline chains the translation stages: load, translate,
// render, report. Stages communicate through a shared context and never
// abort the chain; errors accumulate so one bad stage still surfaces the
// diagnostics of the others.
package pipeline

import (
	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/emitter"
	"github.com/cgenlang/cgen/internal/report"
)

// PipelineContext carries the state threaded through all stages.
type PipelineContext struct {
	FilePath string
	Config   *config.Config

	Module *ast.Module
	Unit   *emitter.UnitResult
	Output string // rendered C text
	Report *report.MemorySafetyReport

	Errors []*diagnostics.DiagnosticError
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages run even after earlier errors so a
// single pass collects every diagnostic.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
