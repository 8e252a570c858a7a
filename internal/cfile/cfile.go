// Package cfile models an emitted C translation unit as a tree of
// elements and renders it to text. The tree is built by the emitter;
// rendering style (indentation, brace placement) is configuration, never
// semantics.
package cfile

// Element is one node of the output tree.
type Element interface {
	emit(w *Writer)
}

// File is a whole translation unit.
type File struct {
	Elems []Element
}

func (f *File) Add(elems ...Element) {
	f.Elems = append(f.Elems, elems...)
}

// Include is a preprocessor include; System selects angle brackets.
type Include struct {
	Path   string
	System bool
}

// Define is a verbatim preprocessor define line (without the newline).
type Define struct {
	Text string
}

// Comment is a single-line comment.
type Comment struct {
	Text string
}

// Blank is an empty separator line.
type Blank struct{}

// Raw is a preformatted line emitted at the current indentation.
type Raw struct {
	Text string
}

// StructField is one typed field of a struct declaration.
type StructField struct {
	Type string
	Name string
}

// StructDecl is a typedef'd struct declaration.
type StructDecl struct {
	Name   string
	Fields []StructField
}

// VarDecl is a local or file-scope variable declaration with an optional
// initializer.
type VarDecl struct {
	Type string
	Name string
	Init string
}

// Statement is a complete C statement, terminator included.
type Statement struct {
	Text string
}

// Block is a braced sequence of elements.
type Block struct {
	Elems []Element
}

func (b *Block) Add(elems ...Element) {
	b.Elems = append(b.Elems, elems...)
}

// If is a conditional with an optional else block.
type If struct {
	Cond string
	Then *Block
	Else *Block
}

// While is a condition-guarded loop.
type While struct {
	Cond string
	Body *Block
}

// For is a counting loop with verbatim clauses.
type For struct {
	Init string
	Cond string
	Post string
	Body *Block
}

// MacroLoop is a loop whose header is a macro invocation, e.g. the STC
// c_each iteration form.
type MacroLoop struct {
	Header string
	Body   *Block
}

// EnumDecl is an anonymous enum of named constants.
type EnumDecl struct {
	Names []string
}

// UnionDecl is a typedef'd tagged union: an int tag plus one member per
// alternative.
type UnionDecl struct {
	Name    string
	Members []StructField
}

// Return returns an optional expression.
type Return struct {
	Expr string
}

// ParamDecl is one typed function parameter.
type ParamDecl struct {
	Type string
	Name string
}

// FunctionDecl is a function definition with its body.
type FunctionDecl struct {
	ReturnType string
	Name       string
	Params     []ParamDecl
	Body       *Block
}
