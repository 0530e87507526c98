package typesystem

// UnifyErrorCode distinguishes the ways unification can fail, so callers can
// attach the right diagnostic kind without parsing message text.
type UnifyErrorCode uint8

const (
	// ErrMismatch: the two types have incompatible constructors.
	ErrMismatch UnifyErrorCode = iota
	// ErrRecursive: binding would create an infinite type (occurs check).
	ErrRecursive
	// ErrFnArity: function types with different parameter counts.
	ErrFnArity
	// ErrFnLabels: function types with different labelled parameter sets.
	ErrFnLabels
	// ErrTupleArity: tuple types with different element counts.
	ErrTupleArity
)

// UnifyError carries the top-level expected/actual pair plus the specific
// sub-pair that failed, both fully resolved against the arena.
type UnifyError struct {
	Code     UnifyErrorCode
	Expected Type
	Actual   Type
}

type typePair struct {
	expected Type
	actual   Type
}

// Unify makes expected and actual equal by tightening unbound variables, or
// reports why it cannot. It is iterative over an explicit worklist so that
// adversarially nested annotations cannot overflow the stack. Unification is
// symmetric up to the expected/actual orientation of the reported error, and
// re-unifying an already-unified pair is a no-op.
func (a *Arena) Unify(expected, actual Type) *UnifyError {
	work := []typePair{{expected, actual}}

	for len(work) > 0 {
		pair := work[len(work)-1]
		work = work[:len(work)-1]

		t1 := a.Resolve(pair.expected)
		t2 := a.Resolve(pair.actual)

		if v1, ok := t1.(TVar); ok {
			if v2, ok := t2.(TVar); ok && v1.Ref == v2.Ref {
				continue
			}
			if err := a.bindVar(v1, t2); err != nil {
				return err
			}
			continue
		}
		if v2, ok := t2.(TVar); ok {
			if err := a.bindVar(v2, t1); err != nil {
				return err
			}
			continue
		}

		switch t1 := t1.(type) {
		case TGeneric:
			// Generic parameters are rigid here; they only become flexible
			// through instantiation.
			if t2, ok := t2.(TGeneric); ok && t1.ID == t2.ID {
				continue
			}
			return &UnifyError{Code: ErrMismatch, Expected: a.ResolveDeep(t1), Actual: a.ResolveDeep(t2)}

		case TNamed:
			t2, ok := t2.(TNamed)
			if !ok || t1.Name != t2.Name || t1.Module != t2.Module || len(t1.Args) != len(t2.Args) {
				return &UnifyError{Code: ErrMismatch, Expected: a.ResolveDeep(t1), Actual: a.ResolveDeep(pair.actual)}
			}
			for i := range t1.Args {
				work = append(work, typePair{t1.Args[i], t2.Args[i]})
			}

		case TFn:
			t2, ok := t2.(TFn)
			if !ok {
				return &UnifyError{Code: ErrMismatch, Expected: a.ResolveDeep(t1), Actual: a.ResolveDeep(pair.actual)}
			}
			if len(t1.Params) != len(t2.Params) {
				return &UnifyError{Code: ErrFnArity, Expected: a.ResolveDeep(t1), Actual: a.ResolveDeep(t2)}
			}
			if len(t1.Labelled) != len(t2.Labelled) {
				return &UnifyError{Code: ErrFnLabels, Expected: a.ResolveDeep(t1), Actual: a.ResolveDeep(t2)}
			}
			// Labelled parameters are a set keyed by label; callers supply
			// them in any order, so declaration order must not matter here.
			byLabel := make(map[string]Type, len(t2.Labelled))
			for _, lp := range t2.Labelled {
				byLabel[lp.Label] = lp.Type
			}
			for _, lp := range t1.Labelled {
				other, ok := byLabel[lp.Label]
				if !ok {
					return &UnifyError{Code: ErrFnLabels, Expected: a.ResolveDeep(t1), Actual: a.ResolveDeep(t2)}
				}
				work = append(work, typePair{lp.Type, other})
			}
			for i := range t1.Params {
				work = append(work, typePair{t1.Params[i], t2.Params[i]})
			}
			work = append(work, typePair{t1.Return, t2.Return})

		case TTuple:
			t2, ok := t2.(TTuple)
			if !ok {
				return &UnifyError{Code: ErrMismatch, Expected: a.ResolveDeep(t1), Actual: a.ResolveDeep(pair.actual)}
			}
			if len(t1.Elements) != len(t2.Elements) {
				return &UnifyError{Code: ErrTupleArity, Expected: a.ResolveDeep(t1), Actual: a.ResolveDeep(t2)}
			}
			for i := range t1.Elements {
				work = append(work, typePair{t1.Elements[i], t2.Elements[i]})
			}

		default:
			return &UnifyError{Code: ErrMismatch, Expected: a.ResolveDeep(t1), Actual: a.ResolveDeep(t2)}
		}
	}
	return nil
}

// bindVar binds tv to t after the occurs check, lowering binding levels of
// variables inside t so that let-generalization stays sound (levels per
// Kiselyov's "Efficient Generalization with Levels").
func (a *Arena) bindVar(tv TVar, t Type) *UnifyError {
	if a.occursAdjustLevels(tv.Ref, a.level(tv.Ref), t) {
		return &UnifyError{Code: ErrRecursive, Expected: tv, Actual: a.ResolveDeep(t)}
	}
	a.Bind(tv.Ref, t)
	return nil
}

// occursAdjustLevels walks t with an explicit stack, reporting true if the
// variable id occurs in t.
func (a *Arena) occursAdjustLevels(id VarID, level int, t Type) bool {
	stack := []Type{t}
	for len(stack) > 0 {
		cur := a.Resolve(stack[len(stack)-1])
		stack = stack[:len(stack)-1]

		switch cur := cur.(type) {
		case TVar:
			if cur.Ref == id {
				return true
			}
			if a.level(cur.Ref) > level {
				a.setLevel(cur.Ref, level)
			}
		case TNamed:
			stack = append(stack, cur.Args...)
		case TFn:
			stack = append(stack, cur.Params...)
			for _, lp := range cur.Labelled {
				stack = append(stack, lp.Type)
			}
			stack = append(stack, cur.Return)
		case TTuple:
			stack = append(stack, cur.Elements...)
		}
	}
	return false
}
