// Package graph builds the module dependency graph for one compilation and
// produces the build order. The graph is rebuilt fresh per compilation and
// discarded once the order is produced.
package graph

import (
	"fmt"
	"strings"

	"github.com/sable-lang/sable/internal/ast"
)

// CycleError reports an import cycle as the ordered sequence of module names
// forming the loop. A cycle is fatal to the whole build: no order with
// fully-typed dependencies exists.
type CycleError struct {
	Modules []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle: %s -> %s", strings.Join(e.Modules, " -> "), e.Modules[0])
}

const (
	colorUnvisited = iota
	colorInProgress
	colorDone
)

// BuildOrder returns the modules ordered so that every module appears after
// all modules it imports. Ties among independent modules are broken by the
// order modules were supplied in, so the build order (and with it diagnostic
// ordering) is reproducible across runs on the same input.
//
// Imports naming modules outside the input set are ignored here; they either
// resolve against already-compiled package interfaces or surface as unknown
// module diagnostics during inference.
func BuildOrder(modules []*ast.Module) ([]*ast.Module, error) {
	byName := make(map[string]*ast.Module, len(modules))
	for _, m := range modules {
		byName[m.Name] = m
	}

	s := &sorter{
		byName: byName,
		color:  make(map[string]int, len(modules)),
	}

	for _, m := range modules {
		if s.color[m.Name] == colorUnvisited {
			if cycle := s.visit(m); cycle != nil {
				return nil, cycle
			}
		}
	}
	return s.order, nil
}

type sorter struct {
	byName map[string]*ast.Module
	color  map[string]int
	path   []string
	order  []*ast.Module
}

func (s *sorter) visit(m *ast.Module) *CycleError {
	s.color[m.Name] = colorInProgress
	s.path = append(s.path, m.Name)

	for _, imp := range m.Imports {
		dep, ok := s.byName[imp.Module]
		if !ok {
			continue
		}
		switch s.color[dep.Name] {
		case colorDone:
		case colorInProgress:
			// A back-edge to an in-progress node closes a cycle; the loop is
			// the tail of the current path starting at the revisited node.
			return s.cycleFrom(dep.Name)
		default:
			if cycle := s.visit(dep); cycle != nil {
				return cycle
			}
		}
	}

	s.path = s.path[:len(s.path)-1]
	s.color[m.Name] = colorDone
	s.order = append(s.order, m)
	return nil
}

func (s *sorter) cycleFrom(name string) *CycleError {
	for i, n := range s.path {
		if n == name {
			cycle := make([]string, len(s.path)-i)
			copy(cycle, s.path[i:])
			return &CycleError{Modules: cycle}
		}
	}
	return &CycleError{Modules: []string{name}}
}
