package bundleref

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scopelink/linker/internal/ast"
	"github.com/scopelink/linker/internal/nametable"
)

func TestSyncImportReusesNamedBindingForSameSpecifier(t *testing.T) {
	ref := New(nametable.New())
	first := ref.SyncImport("./a", ImportSpecifierRequest{Kind: ast.ImportNamed, Imported: "x"})
	second := ref.SyncImport("./a", ImportSpecifierRequest{Kind: ast.ImportNamed, Imported: "x"})
	require.Equal(t, first, second)

	other := ref.SyncImport("./a", ImportSpecifierRequest{Kind: ast.ImportNamed, Imported: "y"})
	require.NotEqual(t, first, other)
}

func TestSyncImportOneNamespaceAndDefaultPerSource(t *testing.T) {
	ref := New(nametable.New())
	ns1 := ref.SyncImport("./a", ImportSpecifierRequest{Kind: ast.ImportNamespace})
	ns2 := ref.SyncImport("./a", ImportSpecifierRequest{Kind: ast.ImportNamespace})
	require.Equal(t, ns1, ns2)

	def1 := ref.SyncImport("./a", ImportSpecifierRequest{Kind: ast.ImportDefault})
	def2 := ref.SyncImport("./a", ImportSpecifierRequest{Kind: ast.ImportDefault})
	require.Equal(t, def1, def2)
	require.NotEqual(t, ns1, def1)
}

func TestSourcesIsSorted(t *testing.T) {
	ref := New(nametable.New())
	ref.SyncImport("./z", ImportSpecifierRequest{Kind: ast.ImportNamed, Imported: "a"})
	ref.SyncImport("./a", ImportSpecifierRequest{Kind: ast.ImportNamed, Imported: "b"})
	require.Equal(t, []string{"./a", "./z"}, ref.Sources())
}

func TestSyncExportKeepsFirstBindingAndWarnsOnConflict(t *testing.T) {
	names := nametable.New()
	x := names.Register("mod-a", "x", false)
	y := names.Register("mod-b", "x", false)

	ref := New(names)
	var conflicts []string
	onConflict := func(source, name string) { conflicts = append(conflicts, source+":"+name) }

	ref.SyncExport(ExportSpecifierRequest{Spec: ast.ExportSpecifier{Kind: ast.ExportNamed, Local: x, Exported: "x"}}, nil, onConflict)
	ref.SyncExport(ExportSpecifierRequest{Spec: ast.ExportSpecifier{Kind: ast.ExportNamed, Local: y, Exported: "x"}}, nil, onConflict)

	require.Equal(t, x, ref.OwnExports.Named["x"], "the first binding for a given exported name must win")
	require.Equal(t, []string{":x"}, conflicts, "a second, differing binding for the same name must be reported exactly once")

	// A third conflicting sync must not warn again.
	ref.SyncExport(ExportSpecifierRequest{Spec: ast.ExportSpecifier{Kind: ast.ExportNamed, Local: y, Exported: "x"}}, nil, onConflict)
	require.Len(t, conflicts, 1)
}

func TestSyncExportExternalSourceAndOwnExportsAreSeparate(t *testing.T) {
	names := nametable.New()
	x := names.Register("mod-a", "x", false)

	ref := New(names)
	source := "./sibling-chunk"
	ref.SyncExport(ExportSpecifierRequest{Spec: ast.ExportSpecifier{Kind: ast.ExportNamed, Local: x, Exported: "x"}}, &source, nil)

	require.Empty(t, ref.OwnExports.Named)
	require.Equal(t, []string{"./sibling-chunk"}, ref.ExportSources())
	require.Equal(t, x, ref.ExternalExports["./sibling-chunk"].Named["x"])
}

func TestSyncExportAllSetsFlag(t *testing.T) {
	ref := New(nametable.New())
	source := "./a"
	ref.SyncExport(ExportSpecifierRequest{Spec: ast.ExportSpecifier{Kind: ast.ExportAll}}, &source, nil)
	require.True(t, ref.ExternalExports["./a"].All)
}
