// Package moduleanalyzer implements ModuleAnalyzer and
// ModuleAnalyzerManager: the per-module bookkeeping the linker needs
// before it can resolve identifiers across modules, plus the AST mutation
// that applies the action tags a BundleAnalyzer pass decides on.
package moduleanalyzer

import (
	"github.com/scopelink/linker/internal/ast"
	"github.com/scopelink/linker/internal/modgraph"
	"github.com/scopelink/linker/internal/nametable"
)

// ModuleAnalyzer owns one module's AST, its chunk assignment, and the
// action tags accumulated for it during a chunk render.
type ModuleAnalyzer struct {
	ModuleID string
	Program  *ast.Program

	IsEntryPoint bool
	IsExternal   bool
	IsDynamic    bool
	IsRuntime    bool
	ChunkID      string

	actions []Action

	// namespaceSynth is the name-table index of this module's synthesized
	// namespace object, or ast.NoRef if nothing ever imports this module
	// as `* as L`. At most one synthesized local name and one declaration
	// exists per namespace-target module.
	namespaceSynth ast.VarRef
}

// newAnalyzer registers every binding the module introduces — each
// declaration name and each import specifier's local name — into names,
// filling in Decl.Ref / ImportSpecifier.Local in place. This is the
// extraction and binding step done eagerly so every later pass can treat
// refs as already valid indices rather than re-deriving them.
func newAnalyzer(m *modgraph.Module, names *nametable.NameTable) *ModuleAnalyzer {
	a := &ModuleAnalyzer{
		ModuleID:       m.ID,
		Program:        m.Program,
		IsEntryPoint:   m.IsEntryPoint,
		IsExternal:     m.IsExternal,
		IsDynamic:      m.IsDynamic,
		IsRuntime:      m.IsRuntime,
		ChunkID:        m.ChunkID,
		namespaceSynth: ast.NoRef,
	}
	for _, stmt := range a.Program.Stmts {
		if stmt.Decl != nil && stmt.Decl.Ref == ast.NoRef && stmt.Decl.Name != "" {
			stmt.Decl.Ref = names.Register(a.ModuleID, stmt.Decl.Name, true)
		}
		if stmt.Import != nil {
			for i := range stmt.Import.Specifiers {
				spec := &stmt.Import.Specifiers[i]
				if spec.Local == ast.NoRef {
					localName := localBindingName(*spec)
					spec.Local = names.Register(a.ModuleID, localName, false)
				}
			}
		}
	}
	return a
}

func localBindingName(spec ast.ImportSpecifier) string {
	// The local binding's registration name is a synthetic placeholder;
	// its actual render name is always overwritten by cross-module
	// resolution, and each specifier is registered non-strictly so it gets
	// its own index even when two specifiers share this string. We use
	// the imported name when available for readability in diagnostics and
	// fall back to a generic tag otherwise.
	if spec.Imported != "" {
		return spec.Imported
	}
	switch spec.Kind {
	case ast.ImportNamespace:
		return "*ns*"
	default:
		return "*default*"
	}
}

// Variables returns every binding index this module introduces: its own
// declarations plus every local bound by one of its import specifiers.
// This is the set BundleAnalyzer's module_conflict_name pass renames.
func (a *ModuleAnalyzer) Variables() []ast.VarRef {
	var out []ast.VarRef
	for _, stmt := range a.Program.Stmts {
		if stmt.Decl != nil && stmt.Decl.Ref != ast.NoRef {
			out = append(out, stmt.Decl.Ref)
		}
		if stmt.Import != nil {
			for _, spec := range stmt.Import.Specifiers {
				out = append(out, spec.Local)
			}
		}
	}
	if a.namespaceSynth != ast.NoRef {
		out = append(out, a.namespaceSynth)
	}
	return out
}

// NamespaceImportTarget is one `import * as L` or `export * as L from`
// request this module makes of another module.
type NamespaceImportTarget struct {
	TargetModule string
	// StmtIndex locates the requesting specifier for diagnostics.
	StmtIndex int
}

// NamespaceImporters returns every module this analyzer requests as a
// namespace object.
func (a *ModuleAnalyzer) NamespaceImporters() []NamespaceImportTarget {
	var out []NamespaceImportTarget
	for i, stmt := range a.Program.Stmts {
		if stmt.Import != nil {
			for _, spec := range stmt.Import.Specifiers {
				if spec.Kind == ast.ImportNamespace {
					out = append(out, NamespaceImportTarget{TargetModule: stmt.Import.Source, StmtIndex: i})
				}
			}
		}
		if stmt.Export != nil && stmt.Export.Source != nil {
			for _, spec := range stmt.Export.Specifiers {
				if spec.Kind == ast.ExportNamespace {
					out = append(out, NamespaceImportTarget{TargetModule: *stmt.Export.Source, StmtIndex: i})
				}
			}
		}
	}
	return out
}

// IsNamespaceTarget reports whether some importer anywhere requested this
// module as `* as L`.
func (a *ModuleAnalyzer) IsNamespaceTarget() bool {
	return a.namespaceSynth != ast.NoRef
}

// NamespaceSynthRef is the name-table index of this module's synthesized
// namespace object, valid only when IsNamespaceTarget().
func (a *ModuleAnalyzer) NamespaceSynthRef() ast.VarRef {
	return a.namespaceSynth
}
