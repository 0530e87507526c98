package symbols

import (
	"github.com/benbjohnson/immutable"

	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/typesystem"
)

// Binding is one name -> type entry in a type environment.
type Binding struct {
	Type typesystem.Type
	Span ast.Span
}

// Environment maps value names to types, scoped per module and nested per
// local binding. It is backed by an immutable sorted map, so deriving an
// inner scope shadows outer bindings without destructively overwriting them,
// and handing an environment to another goroutine is always safe.
type Environment struct {
	module   string
	bindings *immutable.SortedMap
}

var emptyBindings = immutable.NewSortedMap(nil)

// NewEnvironment creates an empty environment for a module.
func NewEnvironment(module string) *Environment {
	return &Environment{module: module, bindings: emptyBindings}
}

// Module returns the name of the module the environment belongs to.
func (e *Environment) Module() string { return e.module }

// Bind derives a new environment with the binding added. The receiver is
// unchanged; an inner scope keeps using its derived copy and outer scopes
// keep theirs.
func (e *Environment) Bind(name string, b Binding) *Environment {
	return &Environment{module: e.module, bindings: e.bindings.Set(name, b)}
}

// Lookup finds a binding by name.
func (e *Environment) Lookup(name string) (Binding, bool) {
	v, ok := e.bindings.Get(name)
	if !ok {
		return Binding{}, false
	}
	return v.(Binding), true
}

// Names returns all bound names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, e.bindings.Len())
	iter := e.bindings.Iterator()
	for !iter.Done() {
		k, _ := iter.Next()
		names = append(names, k.(string))
	}
	return names
}
