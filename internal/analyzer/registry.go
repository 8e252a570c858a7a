package analyzer

import (
	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/config"
	"github.com/cgenlang/cgen/internal/diagnostics"
	"github.com/cgenlang/cgen/internal/symbols"
	"github.com/cgenlang/cgen/internal/typesystem"
)

// BuildRegistry populates a record registry from the module's class
// declarations. The caller freezes it before function inference starts.
// Fields may reference record names declared later in the module.
func BuildRegistry(module *ast.Module) (*symbols.RecordRegistry, []*diagnostics.DiagnosticError) {
	rr := symbols.NewRecordRegistry()
	var errs []*diagnostics.DiagnosticError

	for _, cls := range module.Classes {
		fields := make([]symbols.FieldInfo, 0, len(cls.Fields))
		for _, f := range cls.Fields {
			t, ok := fieldLatticeType(f.Annotation)
			if !ok {
				errs = append(errs, diagnostics.NewError(diagnostics.ErrT002, f.Line,
					f.Annotation.String(), cls.Name+"."+f.Name))
				continue
			}
			fields = append(fields, symbols.FieldInfo{Name: f.Name, Type: t})
		}
		if err := rr.Register(cls.Name, fields, cls.Line); err != nil {
			errs = append(errs, diagnostics.NewError(diagnostics.ErrT006, cls.Line, err.Error()))
		}
	}
	return rr, errs
}

// fieldLatticeType resolves a record field annotation. Container-typed
// fields have no flat struct layout and are rejected.
func fieldLatticeType(ann *ast.TypeAnnotation) (typesystem.Type, bool) {
	if ann == nil || len(ann.Args) != 0 {
		return nil, false
	}
	switch ann.Name {
	case config.IntTypeName:
		return typesystem.Primitive{Kind: typesystem.Int}, true
	case config.FloatTypeName:
		return typesystem.Primitive{Kind: typesystem.Float}, true
	case config.BoolTypeName:
		return typesystem.Primitive{Kind: typesystem.Bool}, true
	case config.NoneTypeName, config.ListTypeName, config.DictTypeName,
		config.SetTypeName, config.StrTypeName, config.DequeTypeName:
		return nil, false
	}
	return typesystem.Record{Name: ann.Name}, true
}
