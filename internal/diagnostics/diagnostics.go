// Package diagnostics defines the closed set of errors and warnings the
// compiler can emit, and the collector that aggregates them across a build.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/sable-lang/sable/internal/ast"
)

// Severity of a diagnostic. Errors are fatal to the owning module's typing
// but never to sibling modules; warnings never block code generation.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Kind is the closed tagged-variant enumeration of diagnostic kinds.
// Rendering switches over it exhaustively; adding a kind means adding a
// message case.
type Kind uint8

const (
	// Errors fatal to the owning module.
	KindTypeMismatch Kind = iota
	KindRecursiveType
	KindArityMismatch
	KindUnknownVariable
	KindUnknownType
	KindUnknownModule
	KindUnknownConstructor
	KindUnknownLabel
	KindDuplicateLabel
	KindMissingLabel
	KindPositionalAfterLabelled
	KindNotAFunction
	KindDuplicateDefinition
	KindTypeArityMismatch
	KindBlockedDependency

	// Warnings; KindNotExhaustive may be promoted to an error by
	// configuration.
	KindNotExhaustive
	KindUnreachablePattern
	KindUnusedVariable
)

// Diagnostic is one error or warning with a source span and kind-specific
// payload, carried structured so messages never need re-deriving from the
// syntax tree.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Module   string
	Span     ast.Span

	// Payload fields; which are set depends on Kind.
	Expected string   // rendered expected type
	Found    string   // rendered actual type
	Name     string   // variable / type / constructor / module / dependency name
	Label    string   // offending argument label
	Missing  []string // uncovered constructor names
	Arity    int      // expected count for arity mismatches
	Given    int      // supplied count for arity mismatches
}

// IsError reports whether the diagnostic blocks code generation for its
// module.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// Message renders the human-readable text for the diagnostic.
func (d Diagnostic) Message() string {
	switch d.Kind {
	case KindTypeMismatch:
		return fmt.Sprintf("type mismatch: expected %s, found %s", d.Expected, d.Found)
	case KindRecursiveType:
		return fmt.Sprintf("infinite type: %s occurs in %s", d.Expected, d.Found)
	case KindArityMismatch:
		return fmt.Sprintf("wrong number of arguments: expected %d, given %d", d.Arity, d.Given)
	case KindUnknownVariable:
		return fmt.Sprintf("unknown variable `%s`", d.Name)
	case KindUnknownType:
		return fmt.Sprintf("unknown type `%s`", d.Name)
	case KindUnknownModule:
		return fmt.Sprintf("unknown module `%s`", d.Name)
	case KindUnknownConstructor:
		return fmt.Sprintf("unknown constructor `%s`", d.Name)
	case KindUnknownLabel:
		return fmt.Sprintf("function `%s` has no argument labelled `%s`", d.Name, d.Label)
	case KindDuplicateLabel:
		return fmt.Sprintf("argument labelled `%s` supplied more than once", d.Label)
	case KindMissingLabel:
		return fmt.Sprintf("missing required labelled argument `%s`", d.Label)
	case KindPositionalAfterLabelled:
		return "positional argument after labelled argument"
	case KindNotAFunction:
		return fmt.Sprintf("this value is not a function, it has type %s", d.Found)
	case KindDuplicateDefinition:
		return fmt.Sprintf("`%s` is defined more than once in this module", d.Name)
	case KindTypeArityMismatch:
		return fmt.Sprintf("type `%s` expects %d type arguments, given %d", d.Name, d.Arity, d.Given)
	case KindBlockedDependency:
		return fmt.Sprintf("not checked: depends on module `%s`, which has errors", d.Name)
	case KindNotExhaustive:
		return fmt.Sprintf("this match does not cover all cases; missing: %s", strings.Join(d.Missing, ", "))
	case KindUnreachablePattern:
		return "this pattern can never match; an earlier pattern already covers it"
	case KindUnusedVariable:
		return fmt.Sprintf("unused variable `%s`", d.Name)
	default:
		return "unknown diagnostic"
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%s: %s: %s", d.Module, d.Span.Start, d.Severity, d.Message())
}
