package symbols

import (
	"sort"

	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/typesystem"
)

// ValueDef is one exported value (function or constant) of a compiled module.
// Its type is arena-free: generic parameters appear as TGeneric.
type ValueDef struct {
	Name   string
	Type   typesystem.Type
	Public bool
	Span   ast.Span
}

// ConstructorDef is one variant of a custom type. Type is the value type of
// the constructor: a function type when it has fields, otherwise the custom
// type itself.
type ConstructorDef struct {
	Name   string
	Fields []typesystem.Type
	Type   typesystem.Type
	Span   ast.Span
}

// TypeDef is a custom type declaration as seen by importers: its arity and
// the closed set of constructors used for exhaustiveness checking.
type TypeDef struct {
	Name         string
	Params       int
	Constructors []ConstructorDef
	Public       bool
	Span         ast.Span
}

// ConstructorIndex returns the position of a constructor within the type's
// declaration order, or -1.
func (d TypeDef) ConstructorIndex(name string) int {
	for i, c := range d.Constructors {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ModuleInterface is the inferred top-level type environment of a module.
// It is immutable once its module finishes inference, which is what makes
// concurrent reads from parallel workers safe.
type ModuleInterface struct {
	Name   string
	Values map[string]ValueDef
	Types  map[string]TypeDef
}

func NewModuleInterface(name string) *ModuleInterface {
	return &ModuleInterface{
		Name:   name,
		Values: map[string]ValueDef{},
		Types:  map[string]TypeDef{},
	}
}

// Value looks up an exported or internal value by name.
func (m *ModuleInterface) Value(name string) (ValueDef, bool) {
	v, ok := m.Values[name]
	return v, ok
}

// Type looks up a type declaration by name.
func (m *ModuleInterface) Type(name string) (TypeDef, bool) {
	t, ok := m.Types[name]
	return t, ok
}

// Constructor finds a constructor and its owning type by constructor name.
func (m *ModuleInterface) Constructor(name string) (ConstructorDef, TypeDef, bool) {
	for _, typeName := range m.TypeNames() {
		td := m.Types[typeName]
		for _, c := range td.Constructors {
			if c.Name == name {
				return c, td, true
			}
		}
	}
	return ConstructorDef{}, TypeDef{}, false
}

// ValueNames returns value names in sorted order, for deterministic output.
func (m *ModuleInterface) ValueNames() []string {
	names := make([]string, 0, len(m.Values))
	for name := range m.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeNames returns type names in sorted order.
func (m *ModuleInterface) TypeNames() []string {
	names := make([]string, 0, len(m.Types))
	for name := range m.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
