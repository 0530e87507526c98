package typesystem

// Type is the representation shared by inference, module interfaces and the
// cache codec. Values are immutable except for unification variables, whose
// arena cells are tightened (unbound -> bound) during one inference pass and
// never reset.
type Type interface {
	typeNode()
}

// TVar is a unification variable. It carries no state of its own; the
// variable's link cell lives in the Arena and is addressed by Ref.
type TVar struct {
	Ref VarID
}

func (TVar) typeNode() {}

// TGeneric is a universally quantified type parameter produced by
// generalization. Generic types are arena-free and safe to share across
// modules and goroutines; they are replaced by fresh TVars on instantiation.
type TGeneric struct {
	ID int
}

func (TGeneric) typeNode() {}

// TNamed is a named type: a primitive, or a custom type declared in the named
// module, applied to zero or more type arguments.
type TNamed struct {
	Module string
	Name   string
	Args   []Type
}

func (TNamed) typeNode() {}

// LabelledParam is a labelled function parameter in a function type.
type LabelledParam struct {
	Label string
	Type  Type
}

// TFn is a function type with ordered positional parameters and an auxiliary
// ordered set of labelled parameters.
type TFn struct {
	Params   []Type
	Labelled []LabelledParam
	Return   Type
}

func (TFn) typeNode() {}

// TTuple is a fixed-arity tuple type.
type TTuple struct {
	Elements []Type
}

func (TTuple) typeNode() {}

// PreludeModule is the module name the built-in types belong to.
const PreludeModule = "sable"

// Built-in type names, shared with the prelude registry.
const (
	IntTypeName    = "Int"
	FloatTypeName  = "Float"
	StringTypeName = "String"
	BoolTypeName   = "Bool"
	ListTypeName   = "List"
	NilTypeName    = "Nil"
)

func Int() Type    { return TNamed{Module: PreludeModule, Name: IntTypeName} }
func Float() Type  { return TNamed{Module: PreludeModule, Name: FloatTypeName} }
func String() Type { return TNamed{Module: PreludeModule, Name: StringTypeName} }
func Bool() Type   { return TNamed{Module: PreludeModule, Name: BoolTypeName} }
func Nil() Type    { return TNamed{Module: PreludeModule, Name: NilTypeName} }

func List(element Type) Type {
	return TNamed{Module: PreludeModule, Name: ListTypeName, Args: []Type{element}}
}
