package ast

// AssignStatement is a plain assignment.
// x = expr  or  xs[i] = expr
type AssignStatement struct {
	Target Expression `json:"-"` // *Name or *SubscriptExpr
	Value  Expression `json:"-"`
	Line   int        `json:"line,omitempty"`
}

func (s *AssignStatement) Pos() int       { return s.Line }
func (s *AssignStatement) statementNode() {}

// AnnAssignStatement is a type-annotated assignment.
// xs: list[int] = []
type AnnAssignStatement struct {
	Target     string          `json:"target"`
	Annotation *TypeAnnotation `json:"annotation"`
	Value      Expression      `json:"-"` // nil for a bare declaration
	Line       int             `json:"line,omitempty"`
}

func (s *AnnAssignStatement) Pos() int       { return s.Line }
func (s *AnnAssignStatement) statementNode() {}

// AugAssignStatement is an augmented assignment.
// total += x
type AugAssignStatement struct {
	Target string     `json:"target"`
	Op     string     `json:"op"`
	Value  Expression `json:"-"`
	Line   int        `json:"line,omitempty"`
}

func (s *AugAssignStatement) Pos() int       { return s.Line }
func (s *AugAssignStatement) statementNode() {}

// IfStatement is a conditional with an optional else branch.
type IfStatement struct {
	Test Expression  `json:"-"`
	Then []Statement `json:"-"`
	Else []Statement `json:"-"`
	Line int         `json:"line,omitempty"`
}

func (s *IfStatement) Pos() int       { return s.Line }
func (s *IfStatement) statementNode() {}

// WhileStatement is an indefinite loop.
type WhileStatement struct {
	Test Expression  `json:"-"`
	Body []Statement `json:"-"`
	Line int         `json:"line,omitempty"`
}

func (s *WhileStatement) Pos() int       { return s.Line }
func (s *WhileStatement) statementNode() {}

// ForRangeStatement is a bounded counting loop.
// for i in range(n): ...
type ForRangeStatement struct {
	Var   string     `json:"var"`
	Count Expression `json:"-"`
	Body  []Statement
	Line  int `json:"line,omitempty"`
}

func (s *ForRangeStatement) Pos() int       { return s.Line }
func (s *ForRangeStatement) statementNode() {}

// ForEachStatement iterates over a container variable.
// for x in xs: ...
type ForEachStatement struct {
	Var      string     `json:"var"`
	Iterable Expression `json:"-"` // *Name of a container variable
	Body     []Statement
	Line     int `json:"line,omitempty"`
}

func (s *ForEachStatement) Pos() int       { return s.Line }
func (s *ForEachStatement) statementNode() {}

// ReturnStatement returns an optional value.
type ReturnStatement struct {
	Value Expression `json:"-"` // nil for a bare return
	Line  int        `json:"line,omitempty"`
}

func (s *ReturnStatement) Pos() int       { return s.Line }
func (s *ReturnStatement) statementNode() {}

// ExpressionStatement is an expression evaluated for its effect,
// typically a container method call.
type ExpressionStatement struct {
	X    Expression `json:"-"`
	Line int        `json:"line,omitempty"`
}

func (s *ExpressionStatement) Pos() int       { return s.Line }
func (s *ExpressionStatement) statementNode() {}
