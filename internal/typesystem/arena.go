package typesystem

// VarID addresses a type-variable cell in an Arena.
type VarID int32

const (
	cellUnbound uint8 = iota
	cellLinked
)

type cell struct {
	kind  uint8
	level int32
	link  Type
}

// Arena owns the mutable link cells of all unification variables created
// during one module's inference pass. Storing cells in a slice addressed by
// index avoids reference cycles between types and keeps the occurs check
// cheap. An Arena must not be shared between concurrently inferred modules;
// exported types are made arena-free via ResolveDeep/Generalize first.
type Arena struct {
	cells []cell
}

func NewArena() *Arena {
	return &Arena{}
}

// Fresh creates an unbound variable at the given binding level.
func (a *Arena) Fresh(level int) TVar {
	a.cells = append(a.cells, cell{kind: cellUnbound, level: int32(level)})
	return TVar{Ref: VarID(len(a.cells) - 1)}
}

// Len returns the number of variables allocated so far.
func (a *Arena) Len() int { return len(a.cells) }

// Bind links an unbound variable to a type. Cells are only ever tightened;
// binding an already-bound cell is a programming error.
func (a *Arena) Bind(id VarID, t Type) {
	c := &a.cells[id]
	if c.kind != cellUnbound {
		panic("typesystem: rebinding a bound type variable")
	}
	c.kind = cellLinked
	c.link = t
}

func (a *Arena) level(id VarID) int { return int(a.cells[id].level) }

func (a *Arena) setLevel(id VarID, level int) {
	a.cells[id].level = int32(level)
}

// Resolve follows link cells until it reaches an unbound variable or a
// non-variable type, compressing variable-to-variable chains along the way
// (the union-find "find root" operation).
func (a *Arena) Resolve(t Type) Type {
	tv, ok := t.(TVar)
	if !ok {
		return t
	}
	c := &a.cells[tv.Ref]
	if c.kind == cellUnbound {
		return tv
	}
	root := a.Resolve(c.link)
	c.link = root
	return root
}

// ResolveDeep substitutes every bound variable in t with its resolved target,
// producing a type with no linked variables. Unbound variables are preserved.
// The occurs check guarantees links are acyclic, so plain recursion over the
// already-resolved structure terminates.
func (a *Arena) ResolveDeep(t Type) Type {
	switch t := a.Resolve(t).(type) {
	case TVar, TGeneric:
		return t
	case TNamed:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]Type, len(t.Args))
		for i, arg := range t.Args {
			args[i] = a.ResolveDeep(arg)
		}
		return TNamed{Module: t.Module, Name: t.Name, Args: args}
	case TFn:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = a.ResolveDeep(p)
		}
		labelled := make([]LabelledParam, len(t.Labelled))
		for i, lp := range t.Labelled {
			labelled[i] = LabelledParam{Label: lp.Label, Type: a.ResolveDeep(lp.Type)}
		}
		return TFn{Params: params, Labelled: labelled, Return: a.ResolveDeep(t.Return)}
	case TTuple:
		elems := make([]Type, len(t.Elements))
		for i, el := range t.Elements {
			elems[i] = a.ResolveDeep(el)
		}
		return TTuple{Elements: elems}
	default:
		return t
	}
}
