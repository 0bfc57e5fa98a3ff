package modgraph

import "sort"

// edgeKey is one (from module, import source text) pair.
type edgeKey struct {
	from   ModuleID
	source string
}

// MemoryGraph is a concrete, in-memory Graph backed by maps. It is the
// graph implementation this module ships for callers that already have
// every module and edge in hand (a demo CLI, a test fixture) rather than
// a live resolver; it is grounded on esbuild's own in-memory
// internal/graph.LinkerGraph, trimmed to the handful of queries this
// linker actually issues.
type MemoryGraph struct {
	modules map[ModuleID]*Module
	edges   map[edgeKey]ModuleID
	depents map[ModuleID][]ModuleID
}

// NewMemoryGraph builds a graph from every module and the import edges
// between them. An edge's source is the literal import/export specifier
// text a "from" module used to reach "to" (`import x from "./a"` records
// source="./a").
func NewMemoryGraph(modules []*Module) *MemoryGraph {
	g := &MemoryGraph{
		modules: make(map[ModuleID]*Module, len(modules)),
		edges:   make(map[edgeKey]ModuleID),
		depents: make(map[ModuleID][]ModuleID),
	}
	for _, m := range modules {
		g.modules[m.ID] = m
	}
	return g
}

// AddEdge records that `from`, when importing `source`, reaches `to`.
func (g *MemoryGraph) AddEdge(from ModuleID, source string, to ModuleID) {
	g.edges[edgeKey{from, source}] = to
	g.depents[to] = append(g.depents[to], from)
}

func (g *MemoryGraph) Module(id ModuleID) (*Module, bool) {
	m, ok := g.modules[id]
	return m, ok
}

func (g *MemoryGraph) DependentsIDs(id ModuleID) []ModuleID {
	out := append([]ModuleID(nil), g.depents[id]...)
	sort.Strings(out)
	return out
}

func (g *MemoryGraph) DepBySourceOptional(from ModuleID, source string) (ModuleID, bool) {
	id, ok := g.edges[edgeKey{from, source}]
	return id, ok
}

func (g *MemoryGraph) IsDynamic(id ModuleID) bool {
	m, ok := g.modules[id]
	return ok && m.IsDynamic
}

// Toposort returns a dependency-first ordering of every module (a
// dependency always precedes its dependents) via Tarjan's strongly
// connected components, taken in the order Tarjan completes them. Any SCC with more
// than one member is also returned as a circle; modules inside it are
// still placed contiguously in the output order so a caller that doesn't
// care about cycles can ignore the second return value entirely.
func (g *MemoryGraph) Toposort() (order []ModuleID, circles [][]ModuleID) {
	ids := make([]ModuleID, 0, len(g.modules))
	for id := range g.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := &tarjan{
		graph:   g,
		index:   make(map[ModuleID]int),
		low:     make(map[ModuleID]int),
		onStack: make(map[ModuleID]bool),
	}
	for _, id := range ids {
		if _, visited := t.index[id]; !visited {
			t.strongConnect(id)
		}
	}

	// t.sccs already puts dependencies before dependents (a component is
	// fully resolved, including its dependencies, before its caller
	// returns), so it is emitted in that order.
	for _, scc := range t.sccs {
		order = append(order, scc...)
		if len(scc) > 1 {
			circles = append(circles, scc)
		}
	}
	return order, circles
}

// tarjan implements Tarjan's strongly connected components algorithm
// iteratively would be preferable for very deep graphs, but a plain
// recursive walk matches the graphs this linker is built to handle (one
// build's module count, not an unbounded corpus).
type tarjan struct {
	graph   *MemoryGraph
	index   map[ModuleID]int
	low     map[ModuleID]int
	onStack map[ModuleID]bool
	stack   []ModuleID
	counter int
	sccs    [][]ModuleID
}

func (t *tarjan) strongConnect(v ModuleID) {
	t.index[v] = t.counter
	t.low[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph.sortedDeps(v) {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.low[w] < t.low[v] {
				t.low[v] = t.low[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.low[v] {
				t.low[v] = t.index[w]
			}
		}
	}

	if t.low[v] == t.index[v] {
		var scc []ModuleID
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		sort.Strings(scc)
		t.sccs = append(t.sccs, scc)
	}
}

// sortedDeps returns every module v has an edge to, sorted for
// deterministic traversal.
func (g *MemoryGraph) sortedDeps(v ModuleID) []ModuleID {
	var out []ModuleID
	for k, to := range g.edges {
		if k.from == v {
			out = append(out, to)
		}
	}
	sort.Strings(out)
	return out
}
