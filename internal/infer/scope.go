package infer

import (
	"strings"

	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/diagnostics"
)

// localBinding tracks one local name for unused-variable reporting. The type
// of the binding lives in the immutable environment; only usage is mutable
// and it is scoped to the walker, never shared.
type localBinding struct {
	name string
	span ast.Span
	used bool
}

type frame struct {
	locals []*localBinding
}

func (w *walker) pushFrame() {
	w.frames = append(w.frames, &frame{})
}

// popFrame emits unused-variable warnings for bindings of the closing scope.
// Names starting with an underscore opt out.
func (w *walker) popFrame() {
	f := w.frames[len(w.frames)-1]
	w.frames = w.frames[:len(w.frames)-1]
	for _, b := range f.locals {
		if b.used || strings.HasPrefix(b.name, "_") {
			continue
		}
		w.addDiag(diagnostics.Diagnostic{
			Kind:     diagnostics.KindUnusedVariable,
			Severity: diagnostics.SeverityWarning,
			Span:     b.span,
			Name:     b.name,
		})
	}
}

func (w *walker) declareLocal(name string, span ast.Span) {
	f := w.frames[len(w.frames)-1]
	f.locals = append(f.locals, &localBinding{name: name, span: span})
}

// markUsed flags the innermost binding with the given name. Shadowed outer
// bindings stay unused unless referenced before the shadow.
func (w *walker) markUsed(name string) {
	for i := len(w.frames) - 1; i >= 0; i-- {
		locals := w.frames[i].locals
		for j := len(locals) - 1; j >= 0; j-- {
			if locals[j].name == name {
				locals[j].used = true
				return
			}
		}
	}
}
