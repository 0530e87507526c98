// Package build orchestrates a compilation: dependency ordering, wave
// scheduling of independent modules across workers, the incremental cache,
// and diagnostic collection. All state is carried in an explicit Context so
// concurrent builds in one process never share anything by accident.
package build

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/cache"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/graph"
	"github.com/sable-lang/sable/internal/infer"
	"github.com/sable-lang/sable/internal/symbols"
)

// Options configures one build.
type Options struct {
	// Exhaustiveness selects whether non-exhaustive matches are warnings or
	// errors.
	Exhaustiveness infer.Strictness

	// Parallelism bounds concurrent inference workers. Zero means GOMAXPROCS.
	Parallelism int

	// Trace receives per-module progress lines when non-nil.
	Trace io.Writer
}

// Context carries everything one build touches. Zero globals: two builds in
// one process (an LSP rechecking two packages, say) are fully independent.
type Context struct {
	Registry  *symbols.Registry
	Collector *diagnostics.Collector
	Cache     cache.Store
	Options   Options

	runID string
}

// NewContext assembles a build context with a fresh registry and collector.
// Pass cache.Null{} to disable caching.
func NewContext(store cache.Store, opts Options) *Context {
	if store == nil {
		store = cache.Null{}
	}
	return &Context{
		Registry:  symbols.NewRegistry(),
		Collector: diagnostics.NewCollector(),
		Cache:     store,
		Options:   opts,
		runID:     uuid.NewString()[:8],
	}
}

// Result is the outcome of one build, handed to code generation and to
// language-server queries. Modules holds an entry for every input module,
// including ones that failed or were blocked; HasErrors on the context's
// collector is the codegen gate.
type Result struct {
	// Order is the build order the modules were compiled in.
	Order []*ast.Module

	// Modules maps module name to its typed result.
	Modules map[string]*infer.TypedModule

	// Cached records which modules were adopted from the cache.
	Cached map[string]bool
}

// Build compiles a set of parsed modules. The only Go error it returns is a
// dependency cycle (or context cancellation); everything else is reported
// through the collector, and sibling modules keep compiling past a failed
// one.
func (c *Context) Build(ctx context.Context, modules []*ast.Module) (*Result, error) {
	order, err := graph.BuildOrder(modules)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Order:   order,
		Modules: make(map[string]*infer.TypedModule, len(order)),
		Cached:  map[string]bool{},
	}

	inSet := make(map[string]bool, len(order))
	for _, m := range order {
		inSet[m.Name] = true
	}

	fingerprints := make(map[string]cache.Fingerprint, len(order))
	failed := map[string]bool{}

	for _, wave := range waves(order) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Fingerprints compose dependency fingerprints, all of which belong
		// to earlier waves by construction.
		for _, m := range wave {
			var deps []cache.Fingerprint
			for _, imp := range m.Imports {
				if fp, ok := fingerprints[imp.Module]; ok {
					deps = append(deps, fp)
				}
			}
			fingerprints[m.Name] = cache.ModuleFingerprint(m.Source, c.optionsFingerprint(), deps)
		}

		// Modules whose dependencies failed are marked blocked up front and
		// never scheduled; their state is derivative, so they are not cached
		// either. Their markers are committed in order below, with the rest
		// of the wave.
		blockedDiags := map[string][]diagnostics.Diagnostic{}
		slot := map[string]int{}
		var runnable []*ast.Module
		for _, m := range wave {
			if diags := c.blockedMarkers(m, inSet, failed); len(diags) > 0 {
				c.tracef("blocked %s", m.Name)
				failed[m.Name] = true
				blockedDiags[m.Name] = diags
				continue
			}
			slot[m.Name] = len(runnable)
			runnable = append(runnable, m)
		}

		typed := make([]*infer.TypedModule, len(runnable))
		cached := make([]bool, len(runnable))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.parallelism())
		for i, m := range runnable {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				typed[i], cached[i] = c.checkModule(m, fingerprints[m.Name])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		// Commit sequentially in build order so diagnostic grouping and
		// registry contents do not depend on worker timing. Blocked modules
		// take their wave positions here too; a blocked marker never jumps
		// ahead of a sibling that compiled.
		for _, m := range wave {
			if diags, ok := blockedDiags[m.Name]; ok {
				c.Collector.AddModule(m.Name, diags)
				result.Modules[m.Name] = &infer.TypedModule{
					Name:        m.Name,
					Interface:   symbols.NewModuleInterface(m.Name),
					Diagnostics: diags,
				}
				continue
			}
			i := slot[m.Name]
			tm := typed[i]
			c.Registry.Add(tm.Interface)
			c.Collector.AddModule(m.Name, tm.Diagnostics)
			result.Modules[m.Name] = tm
			result.Cached[m.Name] = cached[i]
			if tm.HasErrors() {
				failed[m.Name] = true
			} else if !cached[i] {
				if err := c.Cache.Save(m.Name, fingerprints[m.Name], tm); err != nil {
					c.tracef("cache save %s: %v", m.Name, err)
				}
			}
		}
	}

	return result, nil
}

// checkModule produces one module's typed result, from the cache when the
// fingerprint matches and by inference otherwise.
func (c *Context) checkModule(m *ast.Module, fp cache.Fingerprint) (*infer.TypedModule, bool) {
	if tm, ok := c.Cache.Load(m.Name, fp); ok {
		c.tracef("cache hit %s (%s)", m.Name, fp)
		return tm, true
	}
	c.tracef("checking %s (%s)", m.Name, fp)
	inf := infer.NewInferrer(c.Registry, infer.Config{Exhaustiveness: c.Options.Exhaustiveness})
	return inf.Infer(m), false
}

// blockedMarkers returns one blocked-dependency marker per failed direct
// dependency, or nil when the module can be scheduled.
func (c *Context) blockedMarkers(m *ast.Module, inSet, failed map[string]bool) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	for _, imp := range m.Imports {
		if inSet[imp.Module] && failed[imp.Module] {
			diags = append(diags, diagnostics.Diagnostic{
				Kind:     diagnostics.KindBlockedDependency,
				Severity: diagnostics.SeverityError,
				Module:   m.Name,
				Span:     imp.Span,
				Name:     imp.Module,
			})
		}
	}
	return diags
}

// optionsFingerprint packs the options that change a module's artefact into
// the cache key, so a strict build never adopts an artefact whose
// non-exhaustive matches were recorded as mere warnings.
func (c *Context) optionsFingerprint() uint64 {
	return uint64(c.Options.Exhaustiveness)
}

func (c *Context) parallelism() int {
	if c.Options.Parallelism > 0 {
		return c.Options.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

func (c *Context) tracef(format string, args ...any) {
	if c.Options.Trace == nil {
		return
	}
	fmt.Fprintf(c.Options.Trace, "[build %s] "+format+"\n", append([]any{c.runID}, args...)...)
}

// waves partitions a topologically ordered module list into batches whose
// members are mutually independent, so each batch can be checked in
// parallel once the previous batches are committed.
func waves(order []*ast.Module) [][]*ast.Module {
	depth := make(map[string]int, len(order))
	var out [][]*ast.Module

	for _, m := range order {
		d := 0
		for _, imp := range m.Imports {
			if dd, ok := depth[imp.Module]; ok && dd+1 > d {
				d = dd + 1
			}
		}
		depth[m.Name] = d
		if d == len(out) {
			out = append(out, nil)
		}
		out[d] = append(out[d], m)
	}
	return out
}
