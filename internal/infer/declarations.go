package infer

import (
	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/symbols"
	"github.com/sable-lang/sable/internal/typesystem"
)

// resolveImports binds each import to a dependency interface from the
// registry. A missing module is recorded once here; later references through
// the alias resolve against an empty interface so they don't cascade into
// unknown-variable noise.
func (w *walker) resolveImports() {
	for _, imp := range w.module.Imports {
		iface, ok := w.registry.Get(imp.Module)
		if !ok {
			d := w.errorf(diagnostics.KindUnknownModule, imp.Span)
			d.Name = imp.Module
			iface = symbols.NewModuleInterface(imp.Module)
		}
		w.imports[imp.LocalName()] = iface
	}
}

// registerTypes records all custom type declarations before resolving any
// constructor fields, so constructors may reference types declared later in
// the module (including their own type, for recursive data).
func (w *walker) registerTypes() {
	for _, decl := range w.module.Declarations {
		d, ok := decl.(*ast.CustomTypeDeclaration)
		if !ok {
			continue
		}
		if _, exists := w.local.Types[d.Name]; exists {
			diag := w.errorf(diagnostics.KindDuplicateDefinition, d.Span)
			diag.Name = d.Name
			continue
		}
		w.local.Types[d.Name] = symbols.TypeDef{
			Name:   d.Name,
			Params: len(d.Params),
			Public: d.Public,
			Span:   d.Span,
		}
	}

	for _, decl := range w.module.Declarations {
		d, ok := decl.(*ast.CustomTypeDeclaration)
		if !ok {
			continue
		}
		td, exists := w.local.Types[d.Name]
		if !exists || td.Span != d.Span {
			continue // duplicate; only the first declaration wins
		}
		w.registerConstructors(d, &td)
		w.local.Types[d.Name] = td
	}
}

func (w *walker) registerConstructors(d *ast.CustomTypeDeclaration, td *symbols.TypeDef) {
	params := map[string]typesystem.Type{}
	args := make([]typesystem.Type, len(d.Params))
	for i, name := range d.Params {
		g := typesystem.TGeneric{ID: i}
		params[name] = g
		args[i] = g
	}
	result := typesystem.TNamed{Module: w.module.Name, Name: d.Name, Args: args}

	sc := &annotationScope{vars: params}
	for _, ctor := range d.Constructors {
		fields := make([]typesystem.Type, len(ctor.Args))
		for i, arg := range ctor.Args {
			fields[i] = w.resolveAnnotation(arg, sc)
		}

		var ctorType typesystem.Type = result
		if len(fields) > 0 {
			ctorType = typesystem.TFn{Params: fields, Return: result}
		}

		td.Constructors = append(td.Constructors, symbols.ConstructorDef{
			Name:   ctor.Name,
			Fields: fields,
			Type:   ctorType,
			Span:   ctor.Span,
		})

		if _, exists := w.local.Values[ctor.Name]; exists {
			diag := w.errorf(diagnostics.KindDuplicateDefinition, ctor.Span)
			diag.Name = ctor.Name
			continue
		}
		w.local.Values[ctor.Name] = symbols.ValueDef{
			Name:   ctor.Name,
			Type:   ctorType,
			Public: d.Public,
			Span:   ctor.Span,
		}
	}
}

// registerSignatures records the type of every top-level function and
// constant before any body is inferred, so that mutually recursive functions
// within one module can reference each other.
func (w *walker) registerSignatures() {
	w.sigSpan = map[string]ast.Span{}

	for _, decl := range w.module.Declarations {
		switch d := decl.(type) {
		case *ast.FunctionDeclaration:
			if w.declared(d.Name, d.Span) {
				continue
			}
			w.sigs[d.Name] = w.functionSignature(d.Params, d.Return)
			w.sigSpan[d.Name] = d.Span
		case *ast.ConstantDeclaration:
			if w.declared(d.Name, d.Span) {
				continue
			}
			if d.Annotation != nil {
				sc := &annotationScope{vars: map[string]typesystem.Type{}, create: true, level: 1}
				w.sigs[d.Name] = w.resolveAnnotation(d.Annotation, sc)
			} else {
				w.sigs[d.Name] = w.arena.Fresh(1)
			}
			w.sigSpan[d.Name] = d.Span
		}
	}
}

func (w *walker) declared(name string, span ast.Span) bool {
	_, inSigs := w.sigs[name]
	_, inValues := w.local.Values[name]
	if inSigs || inValues {
		d := w.errorf(diagnostics.KindDuplicateDefinition, span)
		d.Name = name
		return true
	}
	return false
}

// functionSignature builds a function type from parameter and return
// annotations, using fresh variables where annotations are absent.
// Positional parameters come first; labelled parameters follow in
// declaration order.
func (w *walker) functionSignature(params []*ast.Parameter, ret ast.TypeAnnotation) typesystem.TFn {
	sc := &annotationScope{vars: map[string]typesystem.Type{}, create: true, level: 1}

	fn := typesystem.TFn{}
	for _, p := range params {
		var t typesystem.Type
		if p.Annotation != nil {
			t = w.resolveAnnotation(p.Annotation, sc)
		} else {
			t = w.arena.Fresh(1)
		}
		if p.Label == "" {
			fn.Params = append(fn.Params, t)
		} else {
			fn.Labelled = append(fn.Labelled, typesystem.LabelledParam{Label: p.Label, Type: t})
		}
	}
	if ret != nil {
		fn.Return = w.resolveAnnotation(ret, sc)
	} else {
		fn.Return = w.arena.Fresh(1)
	}
	return fn
}

// inferBodies checks every top-level body in source order, then generalizes
// the signature and publishes it on the module interface.
func (w *walker) inferBodies() {
	for _, decl := range w.module.Declarations {
		switch d := decl.(type) {
		case *ast.FunctionDeclaration:
			sig, ok := w.sigs[d.Name].(typesystem.TFn)
			if !ok || w.sigSpan[d.Name] != d.Span {
				continue // duplicate declaration, first one owns the name
			}
			w.inferFunction(d, sig)
		case *ast.ConstantDeclaration:
			sig, ok := w.sigs[d.Name]
			if !ok || w.sigSpan[d.Name] != d.Span {
				continue
			}
			w.inferConstant(d, sig)
		}
	}
}

func (w *walker) inferFunction(d *ast.FunctionDeclaration, sig typesystem.TFn) {
	w.level = 1
	env := symbols.NewEnvironment(w.module.Name)
	w.pushFrame()

	positional := 0
	labelled := 0
	for _, p := range d.Params {
		var t typesystem.Type
		if p.Label == "" {
			t = sig.Params[positional]
			positional++
		} else {
			t = sig.Labelled[labelled].Type
			labelled++
		}
		env = env.Bind(p.Name, symbols.Binding{Type: t, Span: p.Span})
		w.declareLocal(p.Name, p.Span)
	}

	bodyType := w.inferExpr(d.Body, env)
	w.unify(sig.Return, bodyType, d.Body.GetSpan())
	w.popFrame()

	gen := w.arena.Generalize(0, sig)
	w.publish(d.Name, gen, d.Public, d.Span)
}

func (w *walker) inferConstant(d *ast.ConstantDeclaration, sig typesystem.Type) {
	w.level = 1
	env := symbols.NewEnvironment(w.module.Name)

	valueType := w.inferExpr(d.Value, env)
	w.unify(sig, valueType, d.Value.GetSpan())

	gen := w.arena.Generalize(0, sig)
	w.publish(d.Name, gen, d.Public, d.Span)
}

func (w *walker) publish(name string, t typesystem.Type, public bool, span ast.Span) {
	w.local.Values[name] = symbols.ValueDef{Name: name, Type: t, Public: public, Span: span}
	w.typed = append(w.typed, TypedDeclaration{Name: name, Type: t, Public: public, Span: span})
}
