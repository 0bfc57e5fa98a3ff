package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyRenamesSkipsRemovedStatements(t *testing.T) {
	p := &Program{Stmts: []*Stmt{
		{Decl: &Decl{Name: "x", Ref: 0}, Removed: true},
		{Decl: &Decl{Name: "y", Ref: 1}},
	}}
	ApplyRenames(p, RenameMap{0: "x$2", 1: "y$2"})

	require.Equal(t, "x", p.Stmts[0].Decl.Name, "a removed statement's declaration must not be renamed")
	require.Equal(t, "y$2", p.Stmts[1].Decl.Name)
}

func TestApplyRenamesRewritesIdentifierExpressions(t *testing.T) {
	p := &Program{Stmts: []*Stmt{
		{Expr: Call(Ident(5, "x"), Ident(NoRef, "console"))},
	}}
	ApplyRenames(p, RenameMap{5: "x$3"})

	call := p.Stmts[0].Expr
	require.Equal(t, "x$3", call.Callee.Name)
	require.Equal(t, "console", call.Args[0].Name, "an identifier with NoRef must never be rewritten")
}

func TestApplyRenamesWalksDeclInit(t *testing.T) {
	p := &Program{Stmts: []*Stmt{
		{Decl: &Decl{Name: "x", Ref: NoRef, Init: Ident(2, "y")}},
	}}
	ApplyRenames(p, RenameMap{2: "y$2"})
	require.Equal(t, "y$2", p.Stmts[0].Decl.Init.Name)
}
