package symbols

import (
	"sort"
	"sync"

	"github.com/sable-lang/sable/internal/typesystem"
)

// Registry accumulates module interfaces as the build progresses. Entries are
// immutable once added; the lock only guards the map itself, so concurrent
// workers can read completed dependencies while others are still inferring.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*ModuleInterface
}

func NewRegistry() *Registry {
	r := &Registry{modules: map[string]*ModuleInterface{}}
	r.Add(Prelude())
	return r
}

// Add registers a completed module interface.
func (r *Registry) Add(m *ModuleInterface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[m.Name] = m
}

// Get returns a registered module interface.
func (r *Registry) Get(name string) (*ModuleInterface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// ModuleNames returns registered module names in sorted order.
func (r *Registry) ModuleNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prelude builds the interface of the built-in module. Bool is an ordinary
// custom type with two constructors so that exhaustiveness checking treats it
// like any user-declared type.
func Prelude() *ModuleInterface {
	m := NewModuleInterface(typesystem.PreludeModule)

	for _, name := range []string{
		typesystem.IntTypeName,
		typesystem.FloatTypeName,
		typesystem.StringTypeName,
	} {
		m.Types[name] = TypeDef{Name: name, Public: true}
	}

	m.Types[typesystem.NilTypeName] = TypeDef{
		Name:   typesystem.NilTypeName,
		Public: true,
		Constructors: []ConstructorDef{
			{Name: "Nil", Type: typesystem.Nil()},
		},
	}

	m.Types[typesystem.BoolTypeName] = TypeDef{
		Name:   typesystem.BoolTypeName,
		Public: true,
		Constructors: []ConstructorDef{
			{Name: "True", Type: typesystem.Bool()},
			{Name: "False", Type: typesystem.Bool()},
		},
	}

	m.Types[typesystem.ListTypeName] = TypeDef{
		Name:   typesystem.ListTypeName,
		Params: 1,
		Public: true,
	}

	m.Values["Nil"] = ValueDef{Name: "Nil", Type: typesystem.Nil(), Public: true}
	m.Values["True"] = ValueDef{Name: "True", Type: typesystem.Bool(), Public: true}
	m.Values["False"] = ValueDef{Name: "False", Type: typesystem.Bool(), Public: true}

	return m
}
