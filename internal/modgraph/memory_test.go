package modgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func modules(ids ...string) []*Module {
	out := make([]*Module, len(ids))
	for i, id := range ids {
		out[i] = &Module{ID: id}
	}
	return out
}

func indexOf(order []ModuleID, id ModuleID) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

func TestToposortOrdersDependenciesBeforeDependents(t *testing.T) {
	g := NewMemoryGraph(modules("a", "b", "c"))
	g.AddEdge("a", "./b", "b")
	g.AddEdge("b", "./c", "c")

	order, circles := g.Toposort()
	require.Empty(t, circles)
	require.True(t, indexOf(order, "c") < indexOf(order, "b"))
	require.True(t, indexOf(order, "b") < indexOf(order, "a"))
}

func TestToposortSurfacesCycles(t *testing.T) {
	g := NewMemoryGraph(modules("a", "b"))
	g.AddEdge("a", "./b", "b")
	g.AddEdge("b", "./a", "a")

	order, circles := g.Toposort()
	require.Len(t, order, 2)
	require.Len(t, circles, 1)
	require.ElementsMatch(t, []ModuleID{"a", "b"}, circles[0])
}

func TestDependentsIDsIsSortedAndReflectsEdges(t *testing.T) {
	g := NewMemoryGraph(modules("a", "b", "c"))
	g.AddEdge("b", "./c", "c")
	g.AddEdge("a", "./c", "c")

	require.Equal(t, []ModuleID{"a", "b"}, g.DependentsIDs("c"))
	require.Empty(t, g.DependentsIDs("a"))
}

func TestDepBySourceOptional(t *testing.T) {
	g := NewMemoryGraph(modules("a", "b"))
	g.AddEdge("a", "./b", "b")

	to, ok := g.DepBySourceOptional("a", "./b")
	require.True(t, ok)
	require.Equal(t, ModuleID("b"), to)

	_, ok = g.DepBySourceOptional("a", "./missing")
	require.False(t, ok)
}

func TestIsDynamic(t *testing.T) {
	mods := modules("a", "b")
	mods[1].IsDynamic = true
	g := NewMemoryGraph(mods)

	require.False(t, g.IsDynamic("a"))
	require.True(t, g.IsDynamic("b"))
}

func TestModuleLookup(t *testing.T) {
	g := NewMemoryGraph(modules("a"))
	m, ok := g.Module("a")
	require.True(t, ok)
	require.Equal(t, ModuleID("a"), m.ID)

	_, ok = g.Module("missing")
	require.False(t, ok)
}
