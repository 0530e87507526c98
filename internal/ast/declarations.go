package ast

// CustomTypeDeclaration introduces a named, possibly parameterized custom type
// with one or more value constructors.
//
//	type Shape(a) { Circle(a) Square(a, a) }
type CustomTypeDeclaration struct {
	Name         string
	Params       []string // type parameter names, e.g. ["a"]
	Constructors []*Constructor
	Public       bool
	Span         Span
}

func (d *CustomTypeDeclaration) GetSpan() Span    { return d.Span }
func (d *CustomTypeDeclaration) declarationNode() {}

// Constructor is one variant of a custom type.
type Constructor struct {
	Name string
	Args []TypeAnnotation
	Span Span
}

func (c *Constructor) GetSpan() Span { return c.Span }

// FunctionDeclaration is a top-level function. Parameters may carry a label,
// letting call sites supply the argument by name instead of position.
type FunctionDeclaration struct {
	Name   string
	Params []*Parameter
	Return TypeAnnotation // optional
	Body   Expression
	Public bool
	Span   Span
}

func (d *FunctionDeclaration) GetSpan() Span    { return d.Span }
func (d *FunctionDeclaration) declarationNode() {}

// Parameter is a function parameter. Label is empty for purely positional
// parameters; a labelled parameter may still be filled positionally.
type Parameter struct {
	Name       string
	Label      string
	Annotation TypeAnnotation // optional
	Span       Span
}

func (p *Parameter) GetSpan() Span { return p.Span }

// ConstantDeclaration is a top-level constant binding.
type ConstantDeclaration struct {
	Name       string
	Annotation TypeAnnotation // optional
	Value      Expression
	Public     bool
	Span       Span
}

func (d *ConstantDeclaration) GetSpan() Span    { return d.Span }
func (d *ConstantDeclaration) declarationNode() {}
