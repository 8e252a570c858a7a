package cfile

import (
	"strings"
	"testing"

	"github.com/cgenlang/cgen/internal/config"
)

func defaultStyle() config.StyleOptions {
	same := true
	return config.StyleOptions{IndentWidth: 4, BraceSameLine: &same}
}

func TestRenderFunction(t *testing.T) {
	f := &File{}
	f.Add(
		&Include{Path: "stdio.h", System: true},
		&Include{Path: "stc/vec.h"},
		&Blank{},
		&FunctionDecl{
			ReturnType: "int",
			Name:       "total",
			Params:     []ParamDecl{{Type: "int", Name: "n"}},
			Body: &Block{Elems: []Element{
				&VarDecl{Type: "int", Name: "sum", Init: "0"},
				&For{
					Init: "int i = 0", Cond: "i < n", Post: "i++",
					Body: &Block{Elems: []Element{
						&Statement{Text: "sum += i;"},
					}},
				},
				&Return{Expr: "sum"},
			}},
		},
	)

	got := NewWriter(defaultStyle()).Render(f)
	want := `#include <stdio.h>
#include "stc/vec.h"

int total(int n) {
    int sum = 0;
    for (int i = 0; i < n; i++) {
        sum += i;
    }
    return sum;
}
`
	if got != want {
		t.Errorf("Render:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderStructDecl(t *testing.T) {
	f := &File{}
	f.Add(&StructDecl{
		Name: "Point",
		Fields: []StructField{
			{Type: "int", Name: "x"},
			{Type: "int", Name: "y"},
		},
	})

	got := NewWriter(defaultStyle()).Render(f)
	want := `typedef struct {
    int x;
    int y;
} Point;
`
	if got != want {
		t.Errorf("Render:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderIfElse(t *testing.T) {
	f := &File{}
	f.Add(&If{
		Cond: "x > 0",
		Then: &Block{Elems: []Element{&Return{Expr: "1"}}},
		Else: &Block{Elems: []Element{&Return{Expr: "0"}}},
	})

	got := NewWriter(defaultStyle()).Render(f)
	want := `if (x > 0) {
    return 1;
} else {
    return 0;
}
`
	if got != want {
		t.Errorf("Render:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderAllmanBraces(t *testing.T) {
	allman := false
	style := config.StyleOptions{IndentWidth: 2, BraceSameLine: &allman}

	f := &File{}
	f.Add(&While{
		Cond: "running",
		Body: &Block{Elems: []Element{&Statement{Text: "step();"}}},
	})

	got := NewWriter(style).Render(f)
	want := `while (running)
{
  step();
}
`
	if got != want {
		t.Errorf("Render:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderVoidParamList(t *testing.T) {
	f := &File{}
	f.Add(&FunctionDecl{
		ReturnType: "void",
		Name:       "noop",
		Body:       &Block{},
	})

	got := NewWriter(defaultStyle()).Render(f)
	if !strings.Contains(got, "void noop(void) {") {
		t.Errorf("empty parameter list rendered as %q, want (void)", got)
	}
}

func TestRenderBareReturnAndComment(t *testing.T) {
	f := &File{}
	f.Add(
		&Comment{Text: "cleanup"},
		&Return{},
	)
	got := NewWriter(defaultStyle()).Render(f)
	want := "// cleanup\nreturn;\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}
