package ast

// Node is the base interface for all syntax nodes.
type Node interface {
	GetSpan() Span
}

// Declaration is a top-level statement of a module.
type Declaration interface {
	Node
	declarationNode()
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Pattern is a Node that destructures a value in let bindings and case clauses.
type Pattern interface {
	Node
	patternNode()
}

// TypeAnnotation is a syntactic type written by the user.
// It is resolved against the type registry during inference.
type TypeAnnotation interface {
	Node
	annotationNode()
}

// Module is the root node for one compilation unit, as handed over by the
// parser. Name is the unique dotted module name; Source holds the raw bytes
// the module was parsed from, kept for cache fingerprinting.
type Module struct {
	Name         string
	Package      string
	Source       []byte
	Imports      []*Import
	Declarations []Declaration
}

// Import declares a dependency on another module by its dotted name.
type Import struct {
	Module string
	Alias  string // optional local name; defaults to the last name segment
	Span   Span
}

func (i *Import) GetSpan() Span { return i.Span }

// LocalName returns the name the imported module is referenced by.
func (i *Import) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	name := i.Module
	for j := len(name) - 1; j >= 0; j-- {
		if name[j] == '.' {
			return name[j+1:]
		}
	}
	return name
}
