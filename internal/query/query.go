// Package query answers language-server point queries over a build result.
// It works on whatever the build produced, so modules that failed or were
// blocked still answer with their diagnostics and an empty type index.
package query

import (
	"sort"

	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/build"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/infer"
	"github.com/sable-lang/sable/internal/typesystem"
)

// Index wraps a build result for point queries. The result is immutable, so
// one Index can serve concurrent requests.
type Index struct {
	result *build.Result
}

func NewIndex(result *build.Result) *Index {
	return &Index{result: result}
}

// Modules returns the names of all modules in the result, sorted.
func (ix *Index) Modules() []string {
	names := make([]string, 0, len(ix.result.Modules))
	for name := range ix.result.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeAt returns the rendered type of the innermost expression covering the
// position, for hover output.
func (ix *Index) TypeAt(module string, pos ast.Position) (string, bool) {
	typed, ok := ix.result.Modules[module]
	if !ok {
		return "", false
	}

	var best *infer.ExprType
	for i := range typed.ExprTypes {
		et := &typed.ExprTypes[i]
		if !et.Span.Contains(pos) {
			continue
		}
		if best == nil || narrower(et.Span, best.Span) {
			best = et
		}
	}
	if best == nil {
		return "", false
	}
	return typesystem.PrintType(best.Type), true
}

// Definition returns the declaration span of a top-level name, for
// go-to-definition.
func (ix *Index) Definition(module, name string) (ast.Span, bool) {
	typed, ok := ix.result.Modules[module]
	if !ok {
		return ast.Span{}, false
	}
	for _, d := range typed.Declarations {
		if d.Name == name {
			return d.Span, true
		}
	}
	return ast.Span{}, false
}

// Diagnostics returns one module's diagnostics in source order.
func (ix *Index) Diagnostics(module string) []diagnostics.Diagnostic {
	typed, ok := ix.result.Modules[module]
	if !ok {
		return nil
	}
	return typed.Diagnostics
}

// narrower prefers the span that starts later and ends earlier, i.e. the
// innermost expression when spans nest.
func narrower(a, b ast.Span) bool {
	if a.Start != b.Start {
		return b.Start.Before(a.Start)
	}
	return a.End.Before(b.End) || a.End == b.End
}
