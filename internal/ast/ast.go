// Package ast holds the minimal per-module AST this linker operates on.
//
// The actual JavaScript/TypeScript grammar is produced upstream by a
// parser that is out of scope for this package, treated as an external
// collaborator. What lands here is already a flat list of top-level
// statements, each boiled down to the handful of shapes the linker cares
// about: import and export
// declarations, top-level bindings, and bare expression statements. A real
// parser's AST would carry a great deal more (full expression grammar,
// JSX, TypeScript types); this package models only enough of it to
// register bindings, rewrite identifiers, and hand the result to a printer.
package ast

import "github.com/scopelink/linker/internal/sourcemap"

// VarRef identifies a binding referenced from a module's AST. It is the
// binding's index in the build-wide name table (see package nametable,
// whose Index is this type), so the same value identifies the binding in
// every module's AST, rename map and BundleReference.
type VarRef int

// NoRef marks an identifier that is not bound to any module-local
// declaration: a global like `console` or `Math`, or a property name in a
// member expression. It is never renamed.
const NoRef VarRef = -1

// Program is one module's rewritable AST.
type Program struct {
	ModuleID string
	Stmts    []*Stmt

	// SourceMap is this module's own map from its emitted text back to its
	// original source, supplied by the external parser that produced this
	// Program. Zero-value (no Sources) for a module with none.
	SourceMap sourcemap.Map
}

// StmtKind tags which optional fields of a Stmt are meaningful.
type StmtKind uint8

const (
	SOther StmtKind = iota
	SImport
	SExport
)

// Stmt is one top-level statement. At most one of Import/Export is set,
// plus an optional Decl when the statement also introduces a binding
// (`export const x = 1`, `function f(){}`, `export default function f(){}`)
// and an optional Expr for a bare expression statement (`console.log(x)`).
type Stmt struct {
	Kind   StmtKind
	Import *ImportInfo
	Export *ExportInfo
	Decl   *Decl
	Expr   *Expr

	// Removed is set by an action tag during stripping; a removed
	// statement contributes nothing to codegen.
	Removed bool
}

// ImportSpecKind is the variant tag for an import specifier.
type ImportSpecKind uint8

const (
	ImportNamespace ImportSpecKind = iota
	ImportNamed
	ImportDefault
)

// ImportSpecifier is one binding introduced by an import declaration.
type ImportSpecifier struct {
	Kind  ImportSpecKind
	Local VarRef
	// Imported is the name bound in the source module; empty for
	// ImportNamespace and ImportDefault, otherwise defaults to the local
	// name when unaliased (`import {x} from …` has Imported == "x").
	Imported string
}

// ImportInfo is the import half of a statement summary.
type ImportInfo struct {
	Source     string
	Specifiers []ImportSpecifier
}

// ExportSpecKind is the variant tag for an export specifier.
type ExportSpecKind uint8

const (
	ExportAll ExportSpecKind = iota
	ExportNamed
	ExportDefault
	ExportNamespace
)

// ExportSpecifier is one binding exposed by an export declaration.
type ExportSpecifier struct {
	Kind ExportSpecKind
	// Local is the binding this specifier exposes. It is NoRef for
	// ExportAll (there is no single local binding — it re-exports
	// everything from Source) and may be NoRef for ExportNamed/ExportDefault
	// before resolution when Source is set and the binding lives in
	// another module.
	Local VarRef
	// LocalName is the identifier text as written for Local, used before
	// Local has been resolved and for diagnostics.
	LocalName string
	// Exported is the external name this binding is exposed under.
	// For ExportDefault it is literally "default". For ExportNamespace it
	// is the synthesized namespace's external name (`export * as ns from …`).
	Exported string
}

// ExportInfo is the export half of a statement summary.
type ExportInfo struct {
	// Source is nil for a source-less export (`export { x }`,
	// `export const x = 1`) and non-nil for a re-export
	// (`export { x } from './a'`, `export * from './a'`).
	Source     *string
	Specifiers []ExportSpecifier
}

// DeclKind is the flavor of a top-level binding declaration.
type DeclKind uint8

const (
	DeclVar DeclKind = iota
	DeclFunc
	DeclClass
)

// Decl is a single-binding top-level declaration. A real parser would
// allow multiple declarators per `var`/`const`/`let` statement; by the
// time an AST reaches this linker those have already been normalized to
// one declarator per statement, so Decl models exactly one name.
type Decl struct {
	Kind DeclKind
	// Name is the origin identifier text. Empty only for the anonymous
	// `export default <expr>` form, which carries no declaration at all
	// (see Stmt.Expr / ExportInfo's ExportDefault specifier with Local ==
	// NoRef in that case).
	Name string
	Ref  VarRef
	// Init is the initializer expression for DeclVar, or nil.
	Init *Expr
	// Rest is the trailing, parser-opaque text of the declaration that this
	// linker does not need to understand to do scope hoisting: a function's
	// parameter list and body, a class's member list, or a var's type
	// annotation remnants. It is reprinted byte-for-byte after the
	// (possibly renamed) Name: directly for a function, after a space for
	// a class, and after the `;` for a var with no Init. A var with an Init
	// is printed without Rest.
	Rest string
}
