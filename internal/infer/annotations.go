package infer

import (
	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/symbols"
	"github.com/sable-lang/sable/internal/typesystem"
)

// annotationScope resolves type variables written in annotations. In
// signature position (create=true) unknown names allocate fresh unification
// variables shared across the whole signature; in constructor fields only
// the declared type parameters are in scope.
type annotationScope struct {
	vars   map[string]typesystem.Type
	create bool
	level  int
}

// resolveAnnotation turns a syntactic type annotation into a Type, reporting
// unknown names and arity mistakes. On error it returns a fresh variable so
// inference can continue without cascading.
func (w *walker) resolveAnnotation(a ast.TypeAnnotation, sc *annotationScope) typesystem.Type {
	switch a := a.(type) {
	case *ast.VarAnnotation:
		if t, ok := sc.vars[a.Name]; ok {
			return t
		}
		if sc.create {
			v := w.arena.Fresh(sc.level)
			sc.vars[a.Name] = v
			return v
		}
		d := w.errorf(diagnostics.KindUnknownType, a.Span)
		d.Name = a.Name
		return w.arena.Fresh(1)

	case *ast.NamedAnnotation:
		td, owner, ok := w.lookupType(a)
		if !ok {
			d := w.errorf(diagnostics.KindUnknownType, a.Span)
			d.Name = a.Name
			return w.arena.Fresh(1)
		}
		if len(a.Args) != td.Params {
			d := w.errorf(diagnostics.KindTypeArityMismatch, a.Span)
			d.Name = a.Name
			d.Arity = td.Params
			d.Given = len(a.Args)
			return w.arena.Fresh(1)
		}
		args := make([]typesystem.Type, len(a.Args))
		for i, arg := range a.Args {
			args[i] = w.resolveAnnotation(arg, sc)
		}
		return typesystem.TNamed{Module: owner, Name: td.Name, Args: args}

	case *ast.FnAnnotation:
		params := make([]typesystem.Type, len(a.Params))
		for i, p := range a.Params {
			params[i] = w.resolveAnnotation(p, sc)
		}
		var ret typesystem.Type = typesystem.Nil()
		if a.Return != nil {
			ret = w.resolveAnnotation(a.Return, sc)
		}
		return typesystem.TFn{Params: params, Return: ret}

	case *ast.TupleAnnotation:
		elems := make([]typesystem.Type, len(a.Elements))
		for i, el := range a.Elements {
			elems[i] = w.resolveAnnotation(el, sc)
		}
		return typesystem.TTuple{Elements: elems}

	default:
		return w.arena.Fresh(1)
	}
}

// lookupType resolves a named annotation to its declaration and the name of
// the owning module. Lookup order for unqualified names: the current module,
// then the prelude.
func (w *walker) lookupType(a *ast.NamedAnnotation) (symbols.TypeDef, string, bool) {
	if a.Module != "" {
		iface, ok := w.imports[a.Module]
		if !ok {
			d := w.errorf(diagnostics.KindUnknownModule, a.Span)
			d.Name = a.Module
			return symbols.TypeDef{}, "", false
		}
		td, ok := iface.Type(a.Name)
		if !ok || !td.Public {
			return symbols.TypeDef{}, "", false
		}
		return td, iface.Name, true
	}

	if td, ok := w.local.Type(a.Name); ok {
		return td, w.module.Name, true
	}
	if prelude, ok := w.registry.Get(typesystem.PreludeModule); ok {
		if td, ok := prelude.Type(a.Name); ok {
			return td, typesystem.PreludeModule, true
		}
	}
	return symbols.TypeDef{}, "", false
}
