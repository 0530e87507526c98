package typesystem

// Generalize converts unbound variables bound at a deeper level than `level`
// into universally quantified TGeneric parameters. The affected cells are
// tightened to link to their generic replacement, which is the final state a
// cell can reach; the returned type is arena-free when every variable in t
// was generalizable.
//
// Per the level discipline, a variable at a deeper level cannot occur in any
// type outside the binding being generalized, so linking the cell is safe.
func (a *Arena) Generalize(level int, t Type) Type {
	g := &generalizer{arena: a, level: level}
	return g.walk(t)
}

type generalizer struct {
	arena *Arena
	level int
	next  int
}

func (g *generalizer) walk(t Type) Type {
	switch t := g.arena.Resolve(t).(type) {
	case TVar:
		if g.arena.level(t.Ref) > g.level {
			gen := TGeneric{ID: g.nextID()}
			g.arena.Bind(t.Ref, gen)
			return gen
		}
		return t
	case TGeneric:
		return t
	case TNamed:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]Type, len(t.Args))
		for i, arg := range t.Args {
			args[i] = g.walk(arg)
		}
		return TNamed{Module: t.Module, Name: t.Name, Args: args}
	case TFn:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = g.walk(p)
		}
		labelled := make([]LabelledParam, len(t.Labelled))
		for i, lp := range t.Labelled {
			labelled[i] = LabelledParam{Label: lp.Label, Type: g.walk(lp.Type)}
		}
		return TFn{Params: params, Labelled: labelled, Return: g.walk(t.Return)}
	case TTuple:
		elems := make([]Type, len(t.Elements))
		for i, el := range t.Elements {
			elems[i] = g.walk(el)
		}
		return TTuple{Elements: elems}
	default:
		return t
	}
}

func (g *generalizer) nextID() int {
	id := g.next
	g.next++
	return id
}

// Instantiate replaces every TGeneric in t with a fresh unbound variable at
// the given level. Occurrences of the same generic parameter share one fresh
// variable.
func (a *Arena) Instantiate(level int, t Type) Type {
	return a.instantiate(level, t, map[int]TVar{})
}

func (a *Arena) instantiate(level int, t Type, fresh map[int]TVar) Type {
	switch t := a.Resolve(t).(type) {
	case TGeneric:
		v, ok := fresh[t.ID]
		if !ok {
			v = a.Fresh(level)
			fresh[t.ID] = v
		}
		return v
	case TVar:
		return t
	case TNamed:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]Type, len(t.Args))
		for i, arg := range t.Args {
			args[i] = a.instantiate(level, arg, fresh)
		}
		return TNamed{Module: t.Module, Name: t.Name, Args: args}
	case TFn:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = a.instantiate(level, p, fresh)
		}
		labelled := make([]LabelledParam, len(t.Labelled))
		for i, lp := range t.Labelled {
			labelled[i] = LabelledParam{Label: lp.Label, Type: a.instantiate(level, lp.Type, fresh)}
		}
		return TFn{Params: params, Labelled: labelled, Return: a.instantiate(level, t.Return, fresh)}
	case TTuple:
		elems := make([]Type, len(t.Elements))
		for i, el := range t.Elements {
			elems[i] = a.instantiate(level, el, fresh)
		}
		return TTuple{Elements: elems}
	default:
		return t
	}
}
