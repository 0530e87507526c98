package infer

import (
	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/symbols"
	"github.com/sable-lang/sable/internal/typesystem"
)

// inferExpr infers the type of an expression and records it for hover
// queries. Errors are reported as diagnostics; the returned type is then a
// fresh variable so inference of the enclosing expression can continue.
func (w *walker) inferExpr(e ast.Expression, env *symbols.Environment) typesystem.Type {
	t := w.inferExprInner(e, env)
	w.typeMap[e] = t
	return t
}

func (w *walker) inferExprInner(e ast.Expression, env *symbols.Environment) typesystem.Type {
	switch e := e.(type) {
	case *ast.IntLiteral:
		return typesystem.Int()
	case *ast.FloatLiteral:
		return typesystem.Float()
	case *ast.StringLiteral:
		return typesystem.String()

	case *ast.Identifier:
		return w.inferIdentifier(e, env)

	case *ast.CallExpression:
		return w.inferCall(e, env)

	case *ast.FnExpression:
		return w.inferFn(e, env)

	case *ast.LetExpression:
		return w.inferLet(e, env)

	case *ast.CaseExpression:
		return w.inferCase(e, env)

	case *ast.TupleExpression:
		elems := make([]typesystem.Type, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = w.inferExpr(el, env)
		}
		return typesystem.TTuple{Elements: elems}

	case *ast.ListExpression:
		element := w.arena.Fresh(w.level)
		for _, el := range e.Elements {
			t := w.inferExpr(el, env)
			w.unify(element, t, el.GetSpan())
		}
		return typesystem.List(element)

	default:
		return w.arena.Fresh(w.level)
	}
}

// inferIdentifier resolves a reference. Lookup order for unqualified names:
// local scope, then top-level signatures (covering mutual recursion), then
// the module's own values (constructors included), then the prelude.
// Whatever is found is instantiated at the current level; instantiation is
// the identity on monomorphic types, so in-progress signatures stay shared.
func (w *walker) inferIdentifier(e *ast.Identifier, env *symbols.Environment) typesystem.Type {
	if e.Module != "" {
		iface, ok := w.imports[e.Module]
		if !ok {
			d := w.errorf(diagnostics.KindUnknownModule, e.Span)
			d.Name = e.Module
			return w.arena.Fresh(w.level)
		}
		v, ok := iface.Value(e.Name)
		if !ok || !v.Public {
			d := w.errorf(diagnostics.KindUnknownVariable, e.Span)
			d.Name = e.Module + "." + e.Name
			return w.arena.Fresh(w.level)
		}
		return w.arena.Instantiate(w.level, v.Type)
	}

	if b, ok := env.Lookup(e.Name); ok {
		w.markUsed(e.Name)
		return w.arena.Instantiate(w.level, b.Type)
	}
	if sig, ok := w.sigs[e.Name]; ok {
		return w.arena.Instantiate(w.level, sig)
	}
	if v, ok := w.local.Value(e.Name); ok {
		return w.arena.Instantiate(w.level, v.Type)
	}
	if prelude, ok := w.registry.Get(typesystem.PreludeModule); ok {
		if v, ok := prelude.Value(e.Name); ok {
			return w.arena.Instantiate(w.level, v.Type)
		}
	}

	d := w.errorf(diagnostics.KindUnknownVariable, e.Span)
	d.Name = e.Name
	return w.arena.Fresh(w.level)
}

func (w *walker) inferFn(e *ast.FnExpression, env *symbols.Environment) typesystem.Type {
	sc := &annotationScope{vars: map[string]typesystem.Type{}, create: true, level: w.level}
	w.pushFrame()

	fn := typesystem.TFn{}
	for _, p := range e.Params {
		var t typesystem.Type
		if p.Annotation != nil {
			t = w.resolveAnnotation(p.Annotation, sc)
		} else {
			t = w.arena.Fresh(w.level)
		}
		if p.Label == "" {
			fn.Params = append(fn.Params, t)
		} else {
			fn.Labelled = append(fn.Labelled, typesystem.LabelledParam{Label: p.Label, Type: t})
		}
		env = env.Bind(p.Name, symbols.Binding{Type: t, Span: p.Span})
		w.declareLocal(p.Name, p.Span)
	}

	bodyType := w.inferExpr(e.Body, env)
	if e.Return != nil {
		fn.Return = w.resolveAnnotation(e.Return, sc)
		w.unify(fn.Return, bodyType, e.Body.GetSpan())
	} else {
		fn.Return = bodyType
	}

	w.popFrame()
	return fn
}

func (w *walker) inferLet(e *ast.LetExpression, env *symbols.Environment) typesystem.Type {
	// The bound value is inferred one level deeper so that variables local to
	// it can be generalized at this level (let-polymorphism).
	w.level++
	valueType := w.inferExpr(e.Value, env)
	if e.Annotation != nil {
		sc := &annotationScope{vars: map[string]typesystem.Type{}, create: true, level: w.level}
		annotated := w.resolveAnnotation(e.Annotation, sc)
		w.unify(annotated, valueType, e.Value.GetSpan())
	}
	w.level--

	generalized := w.arena.Generalize(w.level, valueType)

	w.pushFrame()
	env = w.bindPattern(e.Pattern, generalized, env)
	result := w.inferExpr(e.Body, env)
	w.popFrame()
	return result
}

// inferCall resolves positional and labelled arguments against the callee's
// parameter lists, then unifies each argument.
func (w *walker) inferCall(e *ast.CallExpression, env *symbols.Environment) typesystem.Type {
	calleeType := w.inferExpr(e.Fn, env)

	calleeName := ""
	if id, ok := e.Fn.(*ast.Identifier); ok {
		calleeName = id.Name
	}

	resolved := w.arena.Resolve(calleeType)

	// Calling a yet-unknown value: synthesize a function type from the call
	// shape and let unification constrain the callee.
	if v, ok := resolved.(typesystem.TVar); ok {
		fn := typesystem.TFn{Return: w.arena.Fresh(w.level)}
		for _, arg := range e.Args {
			t := w.arena.Fresh(w.level)
			if arg.Label == "" {
				fn.Params = append(fn.Params, t)
			} else {
				fn.Labelled = append(fn.Labelled, typesystem.LabelledParam{Label: arg.Label, Type: t})
			}
		}
		if !w.unify(v, fn, e.Span) {
			return w.arena.Fresh(w.level)
		}
		resolved = fn
	}

	fn, ok := resolved.(typesystem.TFn)
	if !ok {
		d := w.errorf(diagnostics.KindNotAFunction, e.Fn.GetSpan())
		d.Found = typesystem.NewPrinter(w.arena).Print(resolved)
		return w.arena.Fresh(w.level)
	}

	w.checkArguments(e, fn, calleeName, env)
	return fn.Return
}

// checkArguments implements the labelled-argument protocol: positional
// arguments are consumed left to right against the positional parameter list
// and then spill into the labelled parameters in declaration order; labelled
// arguments match the remaining labelled parameters by name. Unknown,
// duplicate and missing labels are reported as their own kinds so the
// diagnostic points at the offending label, not at a generic arity error.
func (w *walker) checkArguments(e *ast.CallExpression, fn typesystem.TFn, calleeName string, env *symbols.Environment) {
	filled := make(map[string]bool, len(fn.Labelled))
	labelType := make(map[string]typesystem.Type, len(fn.Labelled))
	for _, lp := range fn.Labelled {
		labelType[lp.Label] = lp.Type
	}

	positional := 0
	sawLabelled := false
	arityReported := false

	for _, arg := range e.Args {
		if arg.Label == "" {
			if sawLabelled {
				w.errorf(diagnostics.KindPositionalAfterLabelled, arg.Span)
				w.inferExpr(arg.Value, env)
				continue
			}
			var want typesystem.Type
			switch {
			case positional < len(fn.Params):
				want = fn.Params[positional]
			case positional < len(fn.Params)+len(fn.Labelled):
				lp := fn.Labelled[positional-len(fn.Params)]
				filled[lp.Label] = true
				want = lp.Type
			default:
				if !arityReported {
					d := w.errorf(diagnostics.KindArityMismatch, arg.Span)
					d.Arity = len(fn.Params) + len(fn.Labelled)
					d.Given = len(e.Args)
					arityReported = true
				}
				w.inferExpr(arg.Value, env)
				continue
			}
			positional++
			got := w.inferExpr(arg.Value, env)
			w.unify(want, got, arg.Value.GetSpan())
			continue
		}

		sawLabelled = true
		want, known := labelType[arg.Label]
		if !known {
			d := w.errorf(diagnostics.KindUnknownLabel, arg.Span)
			d.Name = calleeName
			d.Label = arg.Label
			w.inferExpr(arg.Value, env)
			continue
		}
		if filled[arg.Label] {
			d := w.errorf(diagnostics.KindDuplicateLabel, arg.Span)
			d.Label = arg.Label
			w.inferExpr(arg.Value, env)
			continue
		}
		filled[arg.Label] = true
		got := w.inferExpr(arg.Value, env)
		w.unify(want, got, arg.Value.GetSpan())
	}

	if positional < len(fn.Params) && !arityReported {
		d := w.errorf(diagnostics.KindArityMismatch, e.Span)
		d.Arity = len(fn.Params) + len(fn.Labelled)
		d.Given = len(e.Args)
		arityReported = true
	}
	for _, lp := range fn.Labelled {
		if !filled[lp.Label] && !arityReported {
			d := w.errorf(diagnostics.KindMissingLabel, e.Span)
			d.Name = calleeName
			d.Label = lp.Label
		}
	}
}
