package ast

// IntLiteral is an integer literal.
type IntLiteral struct {
	Value int64 `json:"value"`
	Line  int   `json:"line,omitempty"`
}

func (e *IntLiteral) Pos() int        { return e.Line }
func (e *IntLiteral) expressionNode() {}

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	Value float64 `json:"value"`
	Line  int     `json:"line,omitempty"`
}

func (e *FloatLiteral) Pos() int        { return e.Line }
func (e *FloatLiteral) expressionNode() {}

// BoolLiteral is true or false.
type BoolLiteral struct {
	Value bool `json:"value"`
	Line  int  `json:"line,omitempty"`
}

func (e *BoolLiteral) Pos() int        { return e.Line }
func (e *BoolLiteral) expressionNode() {}

// StringLiteral is a string literal; maps to the cstr concrete kind.
type StringLiteral struct {
	Value string `json:"value"`
	Line  int    `json:"line,omitempty"`
}

func (e *StringLiteral) Pos() int        { return e.Line }
func (e *StringLiteral) expressionNode() {}

// Name is a bare variable reference.
type Name struct {
	Value string `json:"value"`
	Line  int    `json:"line,omitempty"`
}

func (e *Name) Pos() int        { return e.Line }
func (e *Name) expressionNode() {}

// AttributeExpr is a record field access.
// p.x
type AttributeExpr struct {
	X    Expression `json:"-"`
	Name string     `json:"name"`
	Line int        `json:"line,omitempty"`
}

func (e *AttributeExpr) Pos() int        { return e.Line }
func (e *AttributeExpr) expressionNode() {}

// BinaryExpr is an arithmetic or logical binary operation.
type BinaryExpr struct {
	Op    string     `json:"op"`
	Left  Expression `json:"-"`
	Right Expression `json:"-"`
	Line  int        `json:"line,omitempty"`
}

func (e *BinaryExpr) Pos() int        { return e.Line }
func (e *BinaryExpr) expressionNode() {}

// UnaryExpr is a unary operation.
// -x, not x
type UnaryExpr struct {
	Op   string     `json:"op"`
	X    Expression `json:"-"`
	Line int        `json:"line,omitempty"`
}

func (e *UnaryExpr) Pos() int        { return e.Line }
func (e *UnaryExpr) expressionNode() {}

// CompareExpr is a comparison; Op "in" and "not in" are membership tests.
type CompareExpr struct {
	Op    string     `json:"op"`
	Left  Expression `json:"-"`
	Right Expression `json:"-"`
	Line  int        `json:"line,omitempty"`
}

func (e *CompareExpr) Pos() int        { return e.Line }
func (e *CompareExpr) expressionNode() {}

// TernaryExpr is a conditional expression. Both arms are inferred
// unconditionally; there is no statement-level scope split.
// a if test else b
type TernaryExpr struct {
	Test Expression `json:"-"`
	Then Expression `json:"-"`
	Else Expression `json:"-"`
	Line int        `json:"line,omitempty"`
}

func (e *TernaryExpr) Pos() int        { return e.Line }
func (e *TernaryExpr) expressionNode() {}

// TypeTestExpr is a declared-type test, the refinement source for
// branch narrowing.
// isinstance(x, int)
type TypeTestExpr struct {
	Var  string          `json:"var"`
	Type *TypeAnnotation `json:"type"`
	Line int             `json:"line,omitempty"`
}

func (e *TypeTestExpr) Pos() int        { return e.Line }
func (e *TypeTestExpr) expressionNode() {}

// CallExpr is a call of a free function: user-defined or builtin.
type CallExpr struct {
	Func string       `json:"func"`
	Args []Expression `json:"-"`
	Line int          `json:"line,omitempty"`
}

func (e *CallExpr) Pos() int        { return e.Line }
func (e *CallExpr) expressionNode() {}

// MethodCallExpr is a method call on a container variable.
// xs.append(1)
type MethodCallExpr struct {
	Recv   string       `json:"recv"`
	Method string       `json:"method"`
	Args   []Expression `json:"-"`
	Line   int          `json:"line,omitempty"`
}

func (e *MethodCallExpr) Pos() int        { return e.Line }
func (e *MethodCallExpr) expressionNode() {}

// SubscriptExpr is indexed access on a container.
// xs[i], m[key]
type SubscriptExpr struct {
	X     Expression `json:"-"` // *Name of a container variable
	Index Expression `json:"-"`
	Line  int        `json:"line,omitempty"`
}

func (e *SubscriptExpr) Pos() int        { return e.Line }
func (e *SubscriptExpr) expressionNode() {}

// ListLiteral is a sequence literal lowered to per-element pushes.
type ListLiteral struct {
	Elems []Expression `json:"-"`
	Line  int          `json:"line,omitempty"`
}

func (e *ListLiteral) Pos() int        { return e.Line }
func (e *ListLiteral) expressionNode() {}

// DictLiteral is a key-value literal lowered to per-pair inserts.
type DictLiteral struct {
	Keys   []Expression `json:"-"`
	Values []Expression `json:"-"`
	Line   int          `json:"line,omitempty"`
}

func (e *DictLiteral) Pos() int        { return e.Line }
func (e *DictLiteral) expressionNode() {}

// SetLiteral is a unique-element literal lowered to per-element inserts.
type SetLiteral struct {
	Elems []Expression `json:"-"`
	Line  int          `json:"line,omitempty"`
}

func (e *SetLiteral) Pos() int        { return e.Line }
func (e *SetLiteral) expressionNode() {}

// RecordLiteral constructs a record value field by field.
// Point(x=1, y=2)
type RecordLiteral struct {
	Type   string       `json:"type"`
	Fields []string     `json:"fields"`
	Values []Expression `json:"-"`
	Line   int          `json:"line,omitempty"`
}

func (e *RecordLiteral) Pos() int        { return e.Line }
func (e *RecordLiteral) expressionNode() {}
