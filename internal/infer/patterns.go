package infer

import (
	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/symbols"
	"github.com/sable-lang/sable/internal/typesystem"
)

// bindPattern checks a pattern against the type of the matched value and
// returns the environment extended with the pattern's bindings.
func (w *walker) bindPattern(p ast.Pattern, expected typesystem.Type, env *symbols.Environment) *symbols.Environment {
	switch p := p.(type) {
	case *ast.VariablePattern:
		w.declareLocal(p.Name, p.Span)
		return env.Bind(p.Name, symbols.Binding{Type: expected, Span: p.Span})

	case *ast.DiscardPattern:
		return env

	case *ast.IntPattern:
		w.unify(expected, typesystem.Int(), p.Span)
		return env

	case *ast.StringPattern:
		w.unify(expected, typesystem.String(), p.Span)
		return env

	case *ast.TuplePattern:
		elems := make([]typesystem.Type, len(p.Elements))
		for i := range p.Elements {
			elems[i] = w.arena.Fresh(w.level)
		}
		w.unify(expected, typesystem.TTuple{Elements: elems}, p.Span)
		for i, el := range p.Elements {
			env = w.bindPattern(el, elems[i], env)
		}
		return env

	case *ast.ConstructorPattern:
		return w.bindConstructorPattern(p, expected, env)

	default:
		return env
	}
}

func (w *walker) bindConstructorPattern(p *ast.ConstructorPattern, expected typesystem.Type, env *symbols.Environment) *symbols.Environment {
	ctor, _, ok := w.lookupConstructor(p.Module, p.Name)
	if !ok {
		d := w.errorf(diagnostics.KindUnknownConstructor, p.Span)
		if p.Module != "" {
			d.Name = p.Module + "." + p.Name
		} else {
			d.Name = p.Name
		}
		// Still bind sub-pattern variables so their uses don't cascade.
		for _, arg := range p.Args {
			env = w.bindPattern(arg, w.arena.Fresh(w.level), env)
		}
		return env
	}

	if len(p.Args) != len(ctor.Fields) {
		d := w.errorf(diagnostics.KindArityMismatch, p.Span)
		d.Arity = len(ctor.Fields)
		d.Given = len(p.Args)
		for _, arg := range p.Args {
			env = w.bindPattern(arg, w.arena.Fresh(w.level), env)
		}
		return env
	}

	// Instantiate the constructor's type so the pattern fixes the custom
	// type's parameters through unification with the scrutinee.
	var fields []typesystem.Type
	var result typesystem.Type
	switch inst := w.arena.Instantiate(w.level, ctor.Type).(type) {
	case typesystem.TFn:
		fields = inst.Params
		result = inst.Return
	default:
		result = inst
	}

	w.unify(expected, result, p.Span)
	for i, arg := range p.Args {
		env = w.bindPattern(arg, fields[i], env)
	}
	return env
}

// lookupConstructor resolves a constructor reference to its definition and
// owning type. Unqualified lookup order: the current module, then the
// prelude.
func (w *walker) lookupConstructor(module, name string) (symbols.ConstructorDef, symbols.TypeDef, bool) {
	if module != "" {
		iface, ok := w.imports[module]
		if !ok {
			return symbols.ConstructorDef{}, symbols.TypeDef{}, false
		}
		ctor, td, ok := iface.Constructor(name)
		if !ok || !td.Public {
			return symbols.ConstructorDef{}, symbols.TypeDef{}, false
		}
		return ctor, td, true
	}

	if ctor, td, ok := w.local.Constructor(name); ok {
		return ctor, td, true
	}
	if prelude, ok := w.registry.Get(typesystem.PreludeModule); ok {
		if ctor, td, ok := prelude.Constructor(name); ok {
			return ctor, td, true
		}
	}
	return symbols.ConstructorDef{}, symbols.TypeDef{}, false
}
