package moduleanalyzer

import (
	"fmt"
	"sort"

	"github.com/scopelink/linker/internal/ast"
	"github.com/scopelink/linker/internal/modgraph"
	"github.com/scopelink/linker/internal/nametable"
)

// ExportEntry is one flattened, terminal export this manager resolved
// while following `export *` / `export { … } from` chains.
type ExportEntry struct {
	Spec           ast.ExportSpecifier
	TerminalModule string
}

// Manager owns every ModuleAnalyzer for one build.
type Manager struct {
	graph     modgraph.Graph
	names     *nametable.NameTable
	analyzers map[string]*ModuleAnalyzer

	exportCache map[string][]ExportEntry
}

// NewManager constructs a Manager over every module in graph that the
// caller hands it via AddModule.
func NewManager(graph modgraph.Graph, names *nametable.NameTable) *Manager {
	return &Manager{
		graph:       graph,
		names:       names,
		analyzers:   make(map[string]*ModuleAnalyzer),
		exportCache: make(map[string][]ExportEntry),
	}
}

// AddModule creates and registers the ModuleAnalyzer for m, interning its
// declarations and import locals into the name table.
func (mgr *Manager) AddModule(m *modgraph.Module) *ModuleAnalyzer {
	a := newAnalyzer(m, mgr.names)
	mgr.analyzers[m.ID] = a
	return a
}

// Analyzer returns the ModuleAnalyzer for id, or nil if unknown.
func (mgr *Manager) Analyzer(id string) *ModuleAnalyzer {
	return mgr.analyzers[id]
}

// Link mints the one synthesized namespace object each namespace-target
// module needs. It must run once, over the full set of modules across
// every chunk, before any chunk starts its per-chunk passes: namespace
// names assigned while linking one chunk must be visible to a sibling
// chunk that imports from it.
func (mgr *Manager) Link() {
	ids := make([]string, 0, len(mgr.analyzers))
	for id := range mgr.analyzers {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic iteration order

	for _, id := range ids {
		a := mgr.analyzers[id]
		for _, target := range a.NamespaceImporters() {
			targetAnalyzer := mgr.analyzers[target.TargetModule]
			if targetAnalyzer == nil {
				// Target lives outside this build's module set (e.g. an
				// external module accessed via `import * as fs from
				// "node:fs"`); there is nothing to synthesize, the
				// namespace import is satisfied directly by the runtime
				// module namespace object the host provides.
				continue
			}
			if targetAnalyzer.namespaceSynth == ast.NoRef {
				synthName := SanitizeModulePath(target.TargetModule) + "_ns"
				targetAnalyzer.namespaceSynth = mgr.names.Register(target.TargetModule, synthName, true)
			}
		}
	}
}

// SanitizeModulePath turns an arbitrary module id into valid-identifier
// text, deriving a safe name from the module's path. It is exported so
// BundleAnalyzer's default-export synthesis (DeclDefaultExpr) can derive a
// matching binding name without duplicating the rule.
func SanitizeModulePath(s string) string {
	out := make([]byte, 0, len(s)+1)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_' || c == '$':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 || (out[0] >= '0' && out[0] <= '9') {
		out = append([]byte{'_'}, out...)
	}
	return string(out)
}

// ExportNames returns the flattened list of (specifier, terminal module)
// pairs this module exposes, after recursing through `export *` and
// `export { … } from`. The result is memoized. Cycles are broken by a
// visited set keyed by module id; a module re-entered mid-recursion
// contributes nothing further, matching findIdentByIndex's own cycle
// behavior.
func (mgr *Manager) ExportNames(moduleID string) []ExportEntry {
	if cached, ok := mgr.exportCache[moduleID]; ok {
		return cached
	}
	visited := map[string]bool{}
	entries := mgr.exportNames(moduleID, visited)
	mgr.exportCache[moduleID] = entries
	return entries
}

func (mgr *Manager) exportNames(moduleID string, visited map[string]bool) []ExportEntry {
	if visited[moduleID] {
		return nil
	}
	visited[moduleID] = true

	a := mgr.analyzers[moduleID]
	if a == nil {
		// Module with no analyzer (e.g. an external module): the linker
		// cannot see inside it, so it is always a terminal with no further
		// expansion available here. Callers resolving a specific name against an external
		// module do so via BundleReference, not ExportNames.
		return nil
	}

	var out []ExportEntry
	seen := map[string]int{} // exported name -> index into out, for last-wins dedup
	emit := func(e ExportEntry) {
		if idx, ok := seen[e.Spec.Exported]; ok {
			out[idx] = e
			return
		}
		seen[e.Spec.Exported] = len(out)
		out = append(out, e)
	}

	for _, stmt := range a.Program.Stmts {
		if stmt.Export == nil {
			continue
		}
		for _, spec := range stmt.Export.Specifiers {
			switch spec.Kind {
			case ast.ExportAll:
				if stmt.Export.Source == nil {
					continue
				}
				next, ok := mgr.graph.DepBySourceOptional(moduleID, *stmt.Export.Source)
				if !ok {
					continue
				}
				for _, sub := range mgr.exportNames(next, visited) {
					if sub.Spec.Exported == "default" {
						// ES module semantics exclude `default` from
						// `export *`.
						continue
					}
					emit(sub)
				}
			case ast.ExportNamed, ast.ExportDefault:
				if stmt.Export.Source != nil {
					next, ok := mgr.graph.DepBySourceOptional(moduleID, *stmt.Export.Source)
					if !ok {
						emit(ExportEntry{Spec: spec, TerminalModule: moduleID})
						continue
					}
					forwarded := forwardedSpecifier(spec)
					for _, sub := range mgr.exportNames(next, visited) {
						if sub.Spec.Exported == forwarded {
							// Keep this module's exported name but point at the
							// terminal module's binding.
							fwd := spec
							fwd.Local = sub.Spec.Local
							emit(ExportEntry{Spec: fwd, TerminalModule: sub.TerminalModule})
							break
						}
					}
				} else {
					emit(ExportEntry{Spec: spec, TerminalModule: moduleID})
				}
			case ast.ExportNamespace:
				emit(ExportEntry{Spec: spec, TerminalModule: moduleID})
			}
		}
	}
	return out
}

// forwardedSpecifier returns the name a re-export specifier looks up in
// its source module: `export { x as z } from './a'` looks up "x", not "z".
func forwardedSpecifier(spec ast.ExportSpecifier) string {
	if spec.LocalName != "" {
		return spec.LocalName
	}
	return spec.Exported
}

// PatchModuleAST applies every queued action tag to a's program, sorted
// by statement index descending, synthesizes the namespace object
// declaration if a is a namespace target, prunes now-empty statements,
// and finally runs the rename visitor exactly once using BuildRenameMap.
func (mgr *Manager) PatchModuleAST(a *ModuleAnalyzer) {
	sort.Slice(a.actions, func(i, j int) bool {
		return a.actions[i].StmtIndex > a.actions[j].StmtIndex
	})
	for _, act := range a.actions {
		applyAction(a.Program.Stmts[act.StmtIndex], act)
	}
	a.actions = nil

	for _, stmt := range a.Program.Stmts {
		if !stmt.Removed && stmt.Decl == nil && stmt.Expr == nil && stmt.Import == nil && stmt.Export == nil {
			stmt.Removed = true
		}
	}

	if a.namespaceSynth != ast.NoRef {
		a.Program.Stmts = append(a.Program.Stmts, mgr.buildNamespaceDecl(a))
	}

	ast.ApplyRenames(a.Program, BuildRenameMap(a.Program, mgr.names))
}

func applyAction(stmt *ast.Stmt, act Action) {
	switch act.Kind {
	case RemoveImport, StripImport:
		stmt.Removed = true
	case RemoveExport:
		stmt.Export = nil
	case StripExport, StripDefaultExport:
		stmt.Export = nil
	case DeclDefaultExpr:
		expr := stmt.Expr
		stmt.Expr = nil
		stmt.Export = nil
		stmt.Decl = &ast.Decl{Kind: ast.DeclVar, Ref: act.Var, Init: expr}
	}
}

// buildNamespaceDecl synthesizes `var <synth> = { k: v, … }` for a
// namespace-target module. Key order follows ExportNames' discovery
// order; `default` is excluded unless explicitly re-exported under the
// literal name "default".
func (mgr *Manager) buildNamespaceDecl(a *ModuleAnalyzer) *ast.Stmt {
	var props []ast.ObjectProp
	for _, entry := range mgr.ExportNames(a.ModuleID) {
		if entry.Spec.Kind == ast.ExportNamespace {
			continue // one level of flattening only
		}
		local := entry.Spec.Local
		if local == ast.NoRef {
			continue
		}
		props = append(props, ast.ObjectProp{
			Key:   entry.Spec.Exported,
			Value: ast.Ident(local, mgr.names.RenderName(local)),
		})
	}
	return &ast.Stmt{
		Decl: &ast.Decl{
			Kind: ast.DeclVar,
			Ref:  a.namespaceSynth,
			Init: ast.Object(props),
		},
	}
}

// BuildRenameMap walks p collecting every VarRef it references — each
// declaration and every identifier expression — and maps it to its
// rendered name.
func BuildRenameMap(p *ast.Program, names *nametable.NameTable) ast.RenameMap {
	out := make(ast.RenameMap)
	add := func(ref ast.VarRef) {
		if ref != ast.NoRef {
			if _, ok := out[ref]; !ok {
				out[ref] = names.RenderName(ref)
			}
		}
	}
	for _, stmt := range p.Stmts {
		if stmt.Decl != nil {
			add(stmt.Decl.Ref)
			if stmt.Decl.Init != nil {
				ast.Walk(stmt.Decl.Init, func(e *ast.Expr) {
					if e.Kind == ast.ExprIdent {
						add(e.Ref)
					}
				})
			}
		}
		if stmt.Expr != nil {
			ast.Walk(stmt.Expr, func(e *ast.Expr) {
				if e.Kind == ast.ExprIdent {
					add(e.Ref)
				}
			})
		}
	}
	return out
}

// String is a small debug helper naming the analyzer's module.
func (a *ModuleAnalyzer) String() string {
	return fmt.Sprintf("ModuleAnalyzer(%s)", a.ModuleID)
}
