// Package diagnostics defines the coded, structured errors surfaced by the
// translation core. Errors are collected per function and never halt the
// module driver; one failing function leaves its siblings untouched.
package diagnostics

import "fmt"

// Severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Code identifies a diagnostic kind together with its message template.
type Code struct {
	ID       string
	Severity Severity
	Template string
}

// Structural error codes. U = unsupported construct, T = type mapping,
// I = inference, C = container mapping.
var (
	ErrU001 = Code{"U001", SeverityError, "unsupported statement: %s"}
	ErrU002 = Code{"U002", SeverityError, "unsupported expression: %s"}
	ErrU003 = Code{"U003", SeverityError, "unsupported construct: %s"}

	ErrT001 = Code{"T001", SeverityError, "no native mapping for type %q"}
	ErrT002 = Code{"T002", SeverityError, "unsupported annotation %q on %q"}
	ErrT003 = Code{"T003", SeverityError, "variable %q has no resolvable type"}
	ErrT004 = Code{"T004", SeverityError, "record %q has no field %q"}
	ErrT005 = Code{"T005", SeverityError, "unknown record type %q"}
	ErrT006 = Code{"T006", SeverityError, "record declaration rejected: %s"}

	ErrI001 = Code{"I001", SeverityError, "parameter %q: type not resolvable from annotation or usage"}

	ErrC001 = Code{"C001", SeverityError, "container %q: no translation for operation %q"}
	ErrC002 = Code{"C002", SeverityError, "container annotation %q: malformed element types"}

	ErrM001 = Code{"M001", SeverityError, "memory safety: %s"}
)

// DiagnosticError is a single coded diagnostic tied to a source line.
type DiagnosticError struct {
	Code     Code
	Line     int
	Message  string
	Function string // filled in by the unit driver
}

// NewError builds a diagnostic from a code, a source line and the
// template arguments of the code.
func NewError(code Code, line int, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Line:    line,
		Message: fmt.Sprintf(code.Template, args...),
	}
}

func (e *DiagnosticError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("[%s] %s (line %d, in %s)", e.Code.ID, e.Message, e.Line, e.Function)
	}
	return fmt.Sprintf("[%s] %s (line %d)", e.Code.ID, e.Message, e.Line)
}

// Key is used to deduplicate diagnostics collected from multiple passes
// over the same node.
func (e *DiagnosticError) Key() string {
	return fmt.Sprintf("%d:%s:%s", e.Line, e.Code.ID, e.Message)
}
