package infer

import (
	"golang.org/x/tools/container/intsets"

	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/symbols"
	"github.com/sable-lang/sable/internal/typesystem"
)

func (w *walker) inferCase(e *ast.CaseExpression, env *symbols.Environment) typesystem.Type {
	subjectType := w.inferExpr(e.Subject, env)
	result := w.arena.Fresh(w.level)

	for _, clause := range e.Clauses {
		w.pushFrame()
		clauseEnv := w.bindPattern(clause.Pattern, subjectType, env)
		bodyType := w.inferExpr(clause.Body, clauseEnv)
		w.unify(result, bodyType, clause.Body.GetSpan())
		w.popFrame()
	}

	w.checkCoverage(e, subjectType)
	return result
}

// checkCoverage enumerates the constructors of the scrutinee's type and
// verifies the clause patterns cover them all, directly or via a catch-all.
// Gaps produce a non-exhaustive diagnostic whose severity follows the
// configured strictness; patterns subsumed by earlier ones produce an
// unreachable-pattern warning, which is never configurable.
func (w *walker) checkCoverage(e *ast.CaseExpression, subjectType typesystem.Type) {
	td, haveType := w.scrutineeType(subjectType)
	constructors := td.Constructors

	var covered intsets.Sparse
	caughtAll := false

	for _, clause := range e.Clauses {
		if caughtAll || (haveType && len(constructors) > 0 && covered.Len() == len(constructors)) {
			w.addDiag(diagnostics.Diagnostic{
				Kind:     diagnostics.KindUnreachablePattern,
				Severity: diagnostics.SeverityWarning,
				Span:     clause.Pattern.GetSpan(),
			})
			continue
		}

		if ast.IsCatchAll(clause.Pattern) {
			caughtAll = true
			continue
		}

		p, ok := clause.Pattern.(*ast.ConstructorPattern)
		if !ok || !haveType {
			continue
		}
		idx := td.ConstructorIndex(p.Name)
		if idx < 0 {
			continue
		}
		if !w.fullyCovers(p) {
			continue
		}
		if !covered.Insert(idx) {
			// The same constructor was already fully matched earlier.
			w.addDiag(diagnostics.Diagnostic{
				Kind:     diagnostics.KindUnreachablePattern,
				Severity: diagnostics.SeverityWarning,
				Span:     clause.Pattern.GetSpan(),
			})
		}
	}

	if caughtAll || !haveType || len(constructors) == 0 {
		return
	}
	if covered.Len() == len(constructors) {
		return
	}

	var missing []string
	for i, c := range constructors {
		if !covered.Has(i) {
			missing = append(missing, c.Name)
		}
	}

	severity := diagnostics.SeverityWarning
	if w.cfg.Exhaustiveness == ExhaustivenessError {
		severity = diagnostics.SeverityError
	}
	w.addDiag(diagnostics.Diagnostic{
		Kind:     diagnostics.KindNotExhaustive,
		Severity: severity,
		Span:     e.Span,
		Missing:  missing,
	})
}

// scrutineeType resolves the subject type to a custom type declaration with
// a closed constructor set, when it has one.
func (w *walker) scrutineeType(t typesystem.Type) (symbols.TypeDef, bool) {
	named, ok := w.arena.Resolve(t).(typesystem.TNamed)
	if !ok {
		return symbols.TypeDef{}, false
	}

	var iface *symbols.ModuleInterface
	switch named.Module {
	case w.module.Name:
		iface = w.local
	default:
		reg, ok := w.registry.Get(named.Module)
		if !ok {
			return symbols.TypeDef{}, false
		}
		iface = reg
	}

	td, ok := iface.Type(named.Name)
	if !ok || len(td.Constructors) == 0 {
		return symbols.TypeDef{}, false
	}
	return td, true
}

// fullyCovers reports whether a constructor pattern matches every value
// built with that constructor, i.e. all sub-patterns are catch-alls.
func (w *walker) fullyCovers(p *ast.ConstructorPattern) bool {
	for _, arg := range p.Args {
		if !ast.IsCatchAll(arg) {
			return false
		}
	}
	return true
}
