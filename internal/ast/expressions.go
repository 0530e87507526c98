package ast

// IntLiteral is an integer literal.
type IntLiteral struct {
	Value int64
	Span  Span
}

func (e *IntLiteral) GetSpan() Span   { return e.Span }
func (e *IntLiteral) expressionNode() {}

// FloatLiteral is a floating point literal.
type FloatLiteral struct {
	Value float64
	Span  Span
}

func (e *FloatLiteral) GetSpan() Span   { return e.Span }
func (e *FloatLiteral) expressionNode() {}

// StringLiteral is a string literal.
type StringLiteral struct {
	Value string
	Span  Span
}

func (e *StringLiteral) GetSpan() Span   { return e.Span }
func (e *StringLiteral) expressionNode() {}

// Identifier references a value, function or constructor in scope.
// Module is non-empty for qualified references like geometry.area.
type Identifier struct {
	Module string
	Name   string
	Span   Span
}

func (e *Identifier) GetSpan() Span   { return e.Span }
func (e *Identifier) expressionNode() {}

// CallExpression applies a function to arguments, positional first,
// labelled after.
type CallExpression struct {
	Fn   Expression
	Args []*CallArgument
	Span Span
}

func (e *CallExpression) GetSpan() Span   { return e.Span }
func (e *CallExpression) expressionNode() {}

// CallArgument is one argument at a call site. Label is empty for
// positional arguments.
type CallArgument struct {
	Label string
	Value Expression
	Span  Span
}

func (a *CallArgument) GetSpan() Span { return a.Span }

// FnExpression is an anonymous function.
type FnExpression struct {
	Params []*Parameter
	Return TypeAnnotation // optional
	Body   Expression
	Span   Span
}

func (e *FnExpression) GetSpan() Span   { return e.Span }
func (e *FnExpression) expressionNode() {}

// LetExpression binds the value to a pattern and evaluates the body with the
// new bindings in scope.
type LetExpression struct {
	Pattern    Pattern
	Annotation TypeAnnotation // optional
	Value      Expression
	Body       Expression
	Span       Span
}

func (e *LetExpression) GetSpan() Span   { return e.Span }
func (e *LetExpression) expressionNode() {}

// CaseExpression matches the subject against clause patterns in order.
type CaseExpression struct {
	Subject Expression
	Clauses []*CaseClause
	Span    Span
}

func (e *CaseExpression) GetSpan() Span   { return e.Span }
func (e *CaseExpression) expressionNode() {}

// CaseClause is one pattern -> body arm of a case expression.
type CaseClause struct {
	Pattern Pattern
	Body    Expression
	Span    Span
}

func (c *CaseClause) GetSpan() Span { return c.Span }

// TupleExpression constructs a tuple.
type TupleExpression struct {
	Elements []Expression
	Span     Span
}

func (e *TupleExpression) GetSpan() Span   { return e.Span }
func (e *TupleExpression) expressionNode() {}

// ListExpression constructs a homogeneous list.
type ListExpression struct {
	Elements []Expression
	Span     Span
}

func (e *ListExpression) GetSpan() Span   { return e.Span }
func (e *ListExpression) expressionNode() {}
