package diagnostics

import (
	"sync"
)

// Collector aggregates diagnostics across all modules of a build, preserving
// per-module grouping and within-module source order. It never deduplicates
// or drops entries. Appends are mutex-guarded so parallel workers can report
// through one collector; the orchestrator adds whole module groups in build
// order to keep output deterministic.
type Collector struct {
	mu       sync.Mutex
	byModule map[string][]Diagnostic
	order    []string
	errors   int
}

func NewCollector() *Collector {
	return &Collector{byModule: map[string][]Diagnostic{}}
}

// Add appends a single diagnostic to its module's group.
func (c *Collector) Add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(d)
}

// AddModule appends a module's diagnostics as one group, in the order given.
func (c *Collector) AddModule(module string, diags []Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byModule[module]; !ok {
		c.order = append(c.order, module)
		c.byModule[module] = nil
	}
	for _, d := range diags {
		c.add(d)
	}
}

func (c *Collector) add(d Diagnostic) {
	if _, ok := c.byModule[d.Module]; !ok {
		c.order = append(c.order, d.Module)
	}
	c.byModule[d.Module] = append(c.byModule[d.Module], d)
	if d.IsError() {
		c.errors++
	}
}

// HasErrors is the gate that suppresses code generation.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors > 0
}

// ModuleHasErrors reports whether a specific module recorded any error.
func (c *Collector) ModuleHasErrors(module string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.byModule[module] {
		if d.IsError() {
			return true
		}
	}
	return false
}

// ForModule returns the diagnostics of one module in source order.
func (c *Collector) ForModule(module string) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.byModule[module]))
	copy(out, c.byModule[module])
	return out
}

// All returns every diagnostic, grouped per module in the order groups were
// first added, each group in source order.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Diagnostic
	for _, module := range c.order {
		out = append(out, c.byModule[module]...)
	}
	return out
}

// Len returns the total number of diagnostics collected.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, diags := range c.byModule {
		n += len(diags)
	}
	return n
}
