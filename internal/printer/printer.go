// Package printer is the concrete, minimal code generator this repo wires
// in place of the real per-AST codegen, which is treated as an external
// collaborator. It only knows how to print the small node set package ast
// defines; a production build would swap this for a full printer
// (esbuild's internal/js_printer is the real thing) without BundleAnalyzer
// needing to change, since linker only ever talks to the Generator
// interface below.
package printer

import (
	"fmt"
	"strings"

	"github.com/scopelink/linker/internal/ast"
	"github.com/scopelink/linker/internal/helpers"
)

// Generator renders one module's AST to output text. BundleAnalyzer
// invokes it once per module, in module order, as its final pass. A
// non-nil error is fatal for the chunk being rendered (wrapped into
// ErrCodegenError by the caller) — a fuller generator than Default may
// fail on a node it cannot emit, or on an underlying writer error.
type Generator interface {
	Generate(p *ast.Program) (string, error)
}

// Default is the Generator this module wires by default. It only knows
// the small node set package ast defines, so it never actually fails;
// Generate still returns an error to satisfy Generator, always nil.
type Default struct{}

func (Default) Generate(p *ast.Program) (string, error) {
	var j helpers.Joiner
	for _, stmt := range p.Stmts {
		if stmt.Removed {
			continue
		}
		text := printStmt(stmt)
		if text == "" {
			continue
		}
		j.AddString(text)
		j.EnsureNewlineAtEnd()
	}
	return string(j.Done()), nil
}

func printStmt(stmt *ast.Stmt) string {
	switch {
	case stmt.Decl != nil:
		return printDecl(stmt.Decl)
	case stmt.Expr != nil && stmt.Expr.Kind == ast.ExprRaw:
		// Raw expression statements carry pre-formatted, possibly
		// multi-line text (the synthesized import/export blocks) and are
		// reprinted verbatim.
		return stmt.Expr.Raw
	case stmt.Expr != nil:
		return printExpr(stmt.Expr) + ";"
	default:
		return ""
	}
}

func printDecl(d *ast.Decl) string {
	switch d.Kind {
	case ast.DeclFunc:
		return fmt.Sprintf("function %s%s", d.Name, d.Rest)
	case ast.DeclClass:
		return fmt.Sprintf("class %s %s", d.Name, d.Rest)
	default: // DeclVar
		if d.Init != nil {
			return fmt.Sprintf("var %s = %s;", d.Name, printExpr(d.Init))
		}
		return fmt.Sprintf("var %s;%s", d.Name, d.Rest)
	}
}

func printExpr(e *ast.Expr) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ast.ExprRaw:
		return e.Raw
	case ast.ExprIdent:
		return e.Name
	case ast.ExprMember:
		return printExpr(e.Object) + "." + e.Property
	case ast.ExprCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = printExpr(a)
		}
		return printExpr(e.Callee) + "(" + strings.Join(args, ", ") + ")"
	case ast.ExprObject:
		parts := make([]string, len(e.Props))
		for i, p := range e.Props {
			parts[i] = fmt.Sprintf("%s: %s", p.Key, printExpr(p.Value))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return ""
	}
}

// ImportBlock renders the single consolidated import block a chunk emits
// at its first module. Entries must already be in final emission order
// (one per source, specifiers namespace/default/named).
func ImportBlock(entries []ImportBlockEntry) string {
	var j helpers.Joiner
	for _, e := range entries {
		line := renderImportLine(e)
		if line == "" {
			continue
		}
		j.AddString(line)
		j.EnsureNewlineAtEnd()
	}
	return string(j.Done())
}

// ImportBlockEntry is one `import … from "<source>"` declaration.
type ImportBlockEntry struct {
	Source    string
	Namespace string // rendered local name, or "" if absent
	Default   string // rendered local name, or "" if absent
	Named     []NamedBinding
}

// NamedBinding is one `imported as local` (or `local as exported`) pair.
// Name is omitted from the printed form when it equals Local.
type NamedBinding struct {
	Name  string
	Local string
}

func renderImportLine(e ImportBlockEntry) string {
	var clauses []string
	if e.Namespace != "" {
		clauses = append(clauses, "* as "+e.Namespace)
	}
	if e.Default != "" {
		clauses = append(clauses, e.Default)
	}
	if len(e.Named) > 0 {
		parts := make([]string, len(e.Named))
		for i, n := range e.Named {
			if n.Name == n.Local {
				parts[i] = n.Local
			} else {
				parts[i] = fmt.Sprintf("%s as %s", n.Name, n.Local)
			}
		}
		clauses = append(clauses, "{ "+strings.Join(parts, ", ")+" }")
	}
	if len(clauses) == 0 {
		return fmt.Sprintf("import %q;", e.Source)
	}
	return fmt.Sprintf("import %s from %q;", strings.Join(clauses, ", "), e.Source)
}

// ExportBlockEntry is one `export { … } from "<source>"`, one
// `export * from "<source>"`, or (Source == "") the chunk's own
// source-less `export { … }`.
type ExportBlockEntry struct {
	Source string
	All    bool
	Named  []NamedBinding // Name is the exported name, Local the rendered local
}

// ExportBlock renders the single consolidated export block a chunk emits
// at its last module.
func ExportBlock(entries []ExportBlockEntry) string {
	var j helpers.Joiner
	for _, e := range entries {
		for _, line := range renderExportLines(e) {
			j.AddString(line)
			j.EnsureNewlineAtEnd()
		}
	}
	return string(j.Done())
}

func renderExportLines(e ExportBlockEntry) []string {
	var lines []string
	if e.All {
		lines = append(lines, fmt.Sprintf("export * from %q;", e.Source))
	}
	if len(e.Named) > 0 {
		parts := make([]string, len(e.Named))
		for i, n := range e.Named {
			if n.Name == n.Local {
				parts[i] = n.Local
			} else {
				parts[i] = fmt.Sprintf("%s as %s", n.Local, n.Name)
			}
		}
		clause := "export { " + strings.Join(parts, ", ") + " }"
		if e.Source != "" {
			clause += fmt.Sprintf(" from %q", e.Source)
		}
		lines = append(lines, clause+";")
	}
	return lines
}
