// Package infer implements per-module type inference: Hindley-Milner style
// unification and generalization, labelled-argument resolution, and pattern
// exhaustiveness checking. One Inferrer checks one module against the
// already-typed interfaces of its dependencies; it never mutates them.
package infer

import (
	"sort"

	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/symbols"
	"github.com/sable-lang/sable/internal/typesystem"
)

// Strictness selects how non-exhaustive matches are reported.
type Strictness uint8

const (
	ExhaustivenessWarn Strictness = iota
	ExhaustivenessError
)

// Config is the caller-facing inference configuration.
type Config struct {
	Exhaustiveness Strictness
}

// TypedDeclaration is one typed top-level binding, with its definition span
// kept for go-to-definition queries.
type TypedDeclaration struct {
	Name   string
	Type   typesystem.Type
	Public bool
	Span   ast.Span
}

// ExprType records the inferred type of one expression for hover queries.
type ExprType struct {
	Span ast.Span
	Type typesystem.Type
}

// TypedModule is the result of inferring one module. All contained types are
// arena-free and the value is immutable, so it can be shared, cached and
// queried concurrently.
type TypedModule struct {
	Name         string
	Interface    *symbols.ModuleInterface
	Declarations []TypedDeclaration
	ExprTypes    []ExprType
	Diagnostics  []diagnostics.Diagnostic
}

// HasErrors reports whether the module is un-codegen-able.
func (m *TypedModule) HasErrors() bool {
	for _, d := range m.Diagnostics {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Inferrer checks modules against a registry of dependency interfaces.
type Inferrer struct {
	registry *symbols.Registry
	cfg      Config
}

func NewInferrer(registry *symbols.Registry, cfg Config) *Inferrer {
	return &Inferrer{registry: registry, cfg: cfg}
}

// Infer type-checks one module. Dependencies named by the module's imports
// must already be present in the registry; a missing one produces an unknown
// module diagnostic rather than a Go error.
func (inf *Inferrer) Infer(mod *ast.Module) *TypedModule {
	w := &walker{
		module:   mod,
		registry: inf.registry,
		cfg:      inf.cfg,
		arena:    typesystem.NewArena(),
		imports:  map[string]*symbols.ModuleInterface{},
		local:    symbols.NewModuleInterface(mod.Name),
		sigs:     map[string]typesystem.Type{},
		typeMap:  map[ast.Expression]typesystem.Type{},
	}

	w.resolveImports()
	w.registerTypes()
	w.registerSignatures()
	w.inferBodies()

	return w.finish()
}

// walker holds the mutable state of one module's inference pass.
type walker struct {
	module   *ast.Module
	registry *symbols.Registry
	cfg      Config
	arena    *typesystem.Arena

	imports map[string]*symbols.ModuleInterface // local alias -> dependency interface
	local   *symbols.ModuleInterface            // interface under construction
	sigs    map[string]typesystem.Type          // top-level signatures, pre-generalization
	sigSpan map[string]ast.Span

	typed   []TypedDeclaration
	typeMap map[ast.Expression]typesystem.Type
	diags   []diagnostics.Diagnostic
	frames  []*frame

	level int
}

func (w *walker) addDiag(d diagnostics.Diagnostic) {
	d.Module = w.module.Name
	w.diags = append(w.diags, d)
}

func (w *walker) errorf(kind diagnostics.Kind, span ast.Span) *diagnostics.Diagnostic {
	w.diags = append(w.diags, diagnostics.Diagnostic{
		Kind:     kind,
		Severity: diagnostics.SeverityError,
		Module:   w.module.Name,
		Span:     span,
	})
	return &w.diags[len(w.diags)-1]
}

// addUnifyError converts a unification failure into the matching diagnostic
// kind, rendering both sides with one shared printer so variable names line
// up between expected and found.
func (w *walker) addUnifyError(err *typesystem.UnifyError, span ast.Span) {
	p := typesystem.NewPrinter(w.arena)
	expected := p.Print(err.Expected)
	found := p.Print(err.Actual)

	switch err.Code {
	case typesystem.ErrRecursive:
		d := w.errorf(diagnostics.KindRecursiveType, span)
		d.Expected = expected
		d.Found = found
	case typesystem.ErrFnArity:
		e := err.Expected.(typesystem.TFn)
		a := err.Actual.(typesystem.TFn)
		d := w.errorf(diagnostics.KindArityMismatch, span)
		d.Arity = len(e.Params)
		d.Given = len(a.Params)
	default:
		d := w.errorf(diagnostics.KindTypeMismatch, span)
		d.Expected = expected
		d.Found = found
	}
}

// unify wraps arena unification with diagnostic reporting. It returns false
// when the types were incompatible; inference continues with the expected
// type to avoid error cascades.
func (w *walker) unify(expected, actual typesystem.Type, span ast.Span) bool {
	if err := w.arena.Unify(expected, actual); err != nil {
		w.addUnifyError(err, span)
		return false
	}
	return true
}

// finish freezes the walker's results into an immutable TypedModule.
func (w *walker) finish() *TypedModule {
	// Entries with identical spans (an expression and its sole child, say)
	// fall back to the rendered type, so the order is total and never leaks
	// map iteration order.
	type keyed struct {
		et  ExprType
		key string
	}
	entries := make([]keyed, 0, len(w.typeMap))
	for expr, t := range w.typeMap {
		resolved := w.arena.ResolveDeep(t)
		entries = append(entries, keyed{
			et:  ExprType{Span: expr.GetSpan(), Type: resolved},
			key: typesystem.PrintType(resolved),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		si, sj := entries[i].et.Span, entries[j].et.Span
		if si.Start != sj.Start {
			return si.Start.Before(sj.Start)
		}
		if si.End != sj.End {
			return si.End.Before(sj.End)
		}
		return entries[i].key < entries[j].key
	})
	exprTypes := make([]ExprType, len(entries))
	for i, e := range entries {
		exprTypes[i] = e.et
	}

	return &TypedModule{
		Name:         w.module.Name,
		Interface:    w.local,
		Declarations: w.typed,
		ExprTypes:    exprTypes,
		Diagnostics:  w.diags,
	}
}
