package cfile

import (
	"bytes"
	"strings"

	"github.com/cgenlang/cgen/internal/config"
)

// Writer renders an element tree to C text according to style options.
type Writer struct {
	buf           bytes.Buffer
	indent        int
	indentWidth   int
	braceSameLine bool
}

func NewWriter(style config.StyleOptions) *Writer {
	w := &Writer{indentWidth: style.IndentWidth, braceSameLine: true}
	if w.indentWidth <= 0 {
		w.indentWidth = 4
	}
	if style.BraceSameLine != nil {
		w.braceSameLine = *style.BraceSameLine
	}
	return w
}

// Render writes a whole translation unit and returns its text.
func (w *Writer) Render(f *File) string {
	w.buf.Reset()
	for _, e := range f.Elems {
		e.emit(w)
	}
	return w.buf.String()
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent*w.indentWidth; i++ {
		w.buf.WriteByte(' ')
	}
}

func (w *Writer) line(s string) {
	w.writeIndent()
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

// openBrace emits a block header with the configured brace placement and
// returns with indentation increased.
func (w *Writer) openBrace(header string) {
	if w.braceSameLine {
		w.line(header + " {")
	} else {
		w.line(header)
		w.line("{")
	}
	w.indent++
}

func (w *Writer) closeBrace(suffix string) {
	w.indent--
	w.line("}" + suffix)
}

func (e *Include) emit(w *Writer) {
	if e.System {
		w.line("#include <" + e.Path + ">")
	} else {
		w.line("#include \"" + e.Path + "\"")
	}
}

func (e *Define) emit(w *Writer) { w.line(e.Text) }

func (e *Comment) emit(w *Writer) { w.line("// " + e.Text) }

func (e *Blank) emit(w *Writer) { w.buf.WriteByte('\n') }

func (e *Raw) emit(w *Writer) { w.line(e.Text) }

func (e *StructDecl) emit(w *Writer) {
	w.openBrace("typedef struct")
	for _, f := range e.Fields {
		w.line(f.Type + " " + f.Name + ";")
	}
	w.closeBrace(" " + e.Name + ";")
}

func (e *VarDecl) emit(w *Writer) {
	if e.Init != "" {
		w.line(e.Type + " " + e.Name + " = " + e.Init + ";")
	} else {
		w.line(e.Type + " " + e.Name + ";")
	}
}

func (e *Statement) emit(w *Writer) { w.line(e.Text) }

func (e *Block) emit(w *Writer) {
	for _, el := range e.Elems {
		el.emit(w)
	}
}

func (e *If) emit(w *Writer) {
	w.openBrace("if (" + e.Cond + ")")
	e.Then.emit(w)
	if e.Else != nil && len(e.Else.Elems) > 0 {
		w.indent--
		if w.braceSameLine {
			w.line("} else {")
		} else {
			w.line("}")
			w.line("else")
			w.line("{")
		}
		w.indent++
		e.Else.emit(w)
	}
	w.closeBrace("")
}

func (e *While) emit(w *Writer) {
	w.openBrace("while (" + e.Cond + ")")
	e.Body.emit(w)
	w.closeBrace("")
}

func (e *For) emit(w *Writer) {
	header := "for (" + e.Init + "; " + e.Cond + "; " + e.Post + ")"
	w.openBrace(header)
	e.Body.emit(w)
	w.closeBrace("")
}

func (e *MacroLoop) emit(w *Writer) {
	w.openBrace("for (" + e.Header + ")")
	e.Body.emit(w)
	w.closeBrace("")
}

func (e *EnumDecl) emit(w *Writer) {
	w.openBrace("enum")
	for i, n := range e.Names {
		if i == len(e.Names)-1 {
			w.line(n)
		} else {
			w.line(n + ",")
		}
	}
	w.closeBrace(";")
}

func (e *UnionDecl) emit(w *Writer) {
	w.openBrace("typedef struct")
	w.line("int tag;")
	w.openBrace("union")
	for _, m := range e.Members {
		w.line(m.Type + " " + m.Name + ";")
	}
	w.closeBrace(" value;")
	w.closeBrace(" " + e.Name + ";")
}

func (e *Return) emit(w *Writer) {
	if e.Expr == "" {
		w.line("return;")
	} else {
		w.line("return " + e.Expr + ";")
	}
}

func (e *FunctionDecl) emit(w *Writer) {
	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		params[i] = p.Type + " " + p.Name
	}
	sig := e.ReturnType + " " + e.Name + "(" + strings.Join(params, ", ") + ")"
	if len(params) == 0 {
		sig = e.ReturnType + " " + e.Name + "(void)"
	}
	w.openBrace(sig)
	e.Body.emit(w)
	w.closeBrace("")
}
