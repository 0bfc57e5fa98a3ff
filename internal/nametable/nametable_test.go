package nametable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterIsStrictDeduped(t *testing.T) {
	nt := New()
	a := nt.Register("mod-a", "x", true)
	b := nt.Register("mod-a", "x", true)
	require.Equal(t, a, b, "strict registration of the same (module, name) pair must return the same index")

	c := nt.Register("mod-a", "x", false)
	require.NotEqual(t, a, c, "non-strict registration always mints a fresh index")
}

func TestSetVarUniqRenameMintsSuffixOnCollision(t *testing.T) {
	nt := New()
	x1 := nt.Register("mod-a", "x", false)
	x2 := nt.Register("mod-b", "x", false)

	name1 := nt.SetVarUniqRename(x1)
	name2 := nt.SetVarUniqRename(x2)

	require.Equal(t, "x", name1)
	require.Equal(t, "x$2", name2, "second binding named x in the same namespace must get a collision-free suffix")
	require.Equal(t, name1, nt.RenderName(x1))
	require.Equal(t, name2, nt.RenderName(x2))
}

func TestWithNamespaceIsolatesUsedNames(t *testing.T) {
	// Mirrors the real pipeline: every var is interned up front (outside
	// any chunk's namespace scope, as newAnalyzer/Link do), and only the
	// later renaming pass runs under a chunk's WithNamespace.
	nt := New()
	chunk1Var := nt.Register("mod-a", "x", false)
	chunk2Var := nt.Register("mod-b", "x", false)

	var name1, name2 string
	nt.WithNamespace("chunk-1", func() {
		name1 = nt.SetVarUniqRename(chunk1Var)
	})
	nt.WithNamespace("chunk-2", func() {
		name2 = nt.SetVarUniqRename(chunk2Var)
	})

	require.Equal(t, "x", name1)
	require.Equal(t, "x", name2, "a separate namespace tag must be able to reuse a name already claimed in another chunk's tag")
}

func TestSetRenameForceClearsPriorUsedName(t *testing.T) {
	nt := New()
	idx := nt.Register("mod-a", "x", false)
	nt.SetRenameForce(idx, "first")
	nt.SetRenameForce(idx, "second")

	other := nt.Register("mod-b", "first", false)
	name := nt.SetVarUniqRename(other)
	require.Equal(t, "first", name, "renaming away from a name must free it for reuse by another binding")
}

func TestMarkRemovedIsReflectedInIsRemoved(t *testing.T) {
	nt := New()
	idx := nt.Register("mod-a", "x", false)
	require.False(t, nt.IsRemoved(idx))
	nt.MarkRemoved(idx)
	require.True(t, nt.IsRemoved(idx))
}

func TestRenderNameFallsBackToOriginName(t *testing.T) {
	nt := New()
	idx := nt.Register("mod-a", "x", false)
	require.Equal(t, "x", nt.RenderName(idx), "a binding with no rename set must render under its origin name")
}
