// Package ast defines the abstract syntax tree of the statically
// annotatable source subset. The tree is produced by an external parser
// and handed to the core as data; the JSON field tags describe the
// interchange encoding accepted by the CLI.
package ast

// Node is the base interface for all AST nodes.
type Node interface {
	// Pos returns the 1-based source line of the node, 0 if unknown.
	Pos() int
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// TypeAnnotation is a source-level type expression.
// Examples: int, float, Point, list[int], dict[str, int].
type TypeAnnotation struct {
	Name string            `json:"name"`
	Args []*TypeAnnotation `json:"args,omitempty"`
}

// String renders the annotation in source syntax.
func (t *TypeAnnotation) String() string {
	if t == nil {
		return ""
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	s := t.Name + "["
	for i, a := range t.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + "]"
}

// Module is the root node: a collection of record and function definitions.
type Module struct {
	Name      string         `json:"name"`
	Classes   []*ClassDef    `json:"classes,omitempty"`
	Functions []*FunctionDef `json:"functions,omitempty"`
}

// ClassDef is a record type declaration: a flat bag of typed fields.
// Methods beyond field declarations are out of scope for the registry.
type ClassDef struct {
	Name   string   `json:"name"`
	Fields []*Field `json:"fields"`
	Line   int      `json:"line,omitempty"`
}

func (c *ClassDef) Pos() int { return c.Line }

// Field is a single typed record field.
type Field struct {
	Name       string          `json:"name"`
	Annotation *TypeAnnotation `json:"annotation"`
	Line       int             `json:"line,omitempty"`
}

// FunctionDef is a function definition with typed or untyped parameters
// and an optional return annotation.
type FunctionDef struct {
	Name    string          `json:"name"`
	Params  []*Param        `json:"params"`
	Returns *TypeAnnotation `json:"returns,omitempty"`
	Body    []Statement     `json:"-"`
	Line    int             `json:"line,omitempty"`
}

func (f *FunctionDef) Pos() int { return f.Line }

// Param is a function parameter; Annotation is nil when untyped.
type Param struct {
	Name       string          `json:"name"`
	Annotation *TypeAnnotation `json:"annotation,omitempty"`
	Line       int             `json:"line,omitempty"`
}
