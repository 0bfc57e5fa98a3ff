package printer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scopelink/linker/internal/ast"
)

func TestDefaultGenerateSkipsRemovedStatements(t *testing.T) {
	p := &ast.Program{Stmts: []*ast.Stmt{
		{Decl: &ast.Decl{Kind: ast.DeclVar, Name: "x", Ref: ast.NoRef}},
		{Decl: &ast.Decl{Kind: ast.DeclVar, Name: "y", Ref: ast.NoRef}, Removed: true},
	}}
	out, err := Default{}.Generate(p)
	require.NoError(t, err)
	require.Contains(t, out, "var x;")
	require.NotContains(t, out, "y")
}

func TestDefaultGenerateReprintsRawExpressionVerbatim(t *testing.T) {
	p := &ast.Program{Stmts: []*ast.Stmt{
		{Expr: ast.RawExpr("import { a } from \"./a\";")},
	}}
	out, err := Default{}.Generate(p)
	require.NoError(t, err)
	require.Equal(t, "import { a } from \"./a\";\n", out)
}

func TestDefaultGenerateFunctionAndClassDecls(t *testing.T) {
	p := &ast.Program{Stmts: []*ast.Stmt{
		{Decl: &ast.Decl{Kind: ast.DeclFunc, Name: "f", Rest: "() { return 1; }"}},
		{Decl: &ast.Decl{Kind: ast.DeclClass, Name: "C", Rest: "{ }"}},
	}}
	out, err := Default{}.Generate(p)
	require.NoError(t, err)
	require.Contains(t, out, "function f() { return 1; }")
	require.Contains(t, out, "class C { }")
}

func TestImportBlockRendersNamespaceDefaultAndNamed(t *testing.T) {
	out := ImportBlock([]ImportBlockEntry{
		{
			Source:    "./a",
			Namespace: "a_ns",
			Default:   "aDefault",
			Named:     []NamedBinding{{Name: "x", Local: "x"}, {Name: "y", Local: "y2"}},
		},
	})
	require.Equal(t, `import * as a_ns, aDefault, { x, y as y2 } from "./a";`+"\n", out)
}

func TestImportBlockBareSideEffectImport(t *testing.T) {
	out := ImportBlock([]ImportBlockEntry{{Source: "./side-effect"}})
	require.Equal(t, `import "./side-effect";`+"\n", out)
}

func TestExportBlockRendersStarAndNamed(t *testing.T) {
	out := ExportBlock([]ExportBlockEntry{
		{Source: "./a", All: true},
		{Source: "", Named: []NamedBinding{{Name: "x", Local: "x"}, {Name: "default", Local: "main_default"}}},
	})
	require.Contains(t, out, `export * from "./a";`)
	require.Contains(t, out, "export { x, main_default as default };")
}
