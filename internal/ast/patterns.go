package ast

// VariablePattern binds the matched value to a name.
type VariablePattern struct {
	Name string
	Span Span
}

func (p *VariablePattern) GetSpan() Span { return p.Span }
func (p *VariablePattern) patternNode()  {}

// DiscardPattern matches anything without binding, written `_`.
type DiscardPattern struct {
	Span Span
}

func (p *DiscardPattern) GetSpan() Span { return p.Span }
func (p *DiscardPattern) patternNode()  {}

// ConstructorPattern matches one constructor of a custom type and
// destructures its arguments.
type ConstructorPattern struct {
	Module string // non-empty for qualified constructors
	Name   string
	Args   []Pattern
	Span   Span
}

func (p *ConstructorPattern) GetSpan() Span { return p.Span }
func (p *ConstructorPattern) patternNode()  {}

// IntPattern matches an exact integer value.
type IntPattern struct {
	Value int64
	Span  Span
}

func (p *IntPattern) GetSpan() Span { return p.Span }
func (p *IntPattern) patternNode()  {}

// StringPattern matches an exact string value.
type StringPattern struct {
	Value string
	Span  Span
}

func (p *StringPattern) GetSpan() Span { return p.Span }
func (p *StringPattern) patternNode()  {}

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Elements []Pattern
	Span     Span
}

func (p *TuplePattern) GetSpan() Span { return p.Span }
func (p *TuplePattern) patternNode()  {}

// IsCatchAll reports whether the pattern matches every value of its type.
func IsCatchAll(p Pattern) bool {
	switch p := p.(type) {
	case *VariablePattern, *DiscardPattern:
		return true
	case *TuplePattern:
		for _, el := range p.Elements {
			if !IsCatchAll(el) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
