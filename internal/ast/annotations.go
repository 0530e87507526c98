package ast

// NamedAnnotation references a named type, possibly parameterized and
// possibly qualified with a module alias: Int, List(a), geometry.Shape(Int).
type NamedAnnotation struct {
	Module string
	Name   string
	Args   []TypeAnnotation
	Span   Span
}

func (a *NamedAnnotation) GetSpan() Span   { return a.Span }
func (a *NamedAnnotation) annotationNode() {}

// VarAnnotation is a type variable written in source, e.g. the `a` in
// `fn head(List(a)) -> a`.
type VarAnnotation struct {
	Name string
	Span Span
}

func (a *VarAnnotation) GetSpan() Span   { return a.Span }
func (a *VarAnnotation) annotationNode() {}

// FnAnnotation is a function type annotation: fn(Int, Int) -> Bool.
type FnAnnotation struct {
	Params []TypeAnnotation
	Return TypeAnnotation
	Span   Span
}

func (a *FnAnnotation) GetSpan() Span   { return a.Span }
func (a *FnAnnotation) annotationNode() {}

// TupleAnnotation is a tuple type annotation: #(Int, String).
type TupleAnnotation struct {
	Elements []TypeAnnotation
	Span     Span
}

func (a *TupleAnnotation) GetSpan() Span   { return a.Span }
func (a *TupleAnnotation) annotationNode() {}
