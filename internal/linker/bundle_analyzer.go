// Package linker implements BundleAnalyzer and the top-level SharedBundle
// coordinator: the per-chunk driver that toposorts a resource pot's
// modules, resolves every identifier across module and chunk boundaries,
// rewrites each module's AST, and synthesizes the chunk's consolidated
// import and export blocks.
package linker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/scopelink/linker/internal/ast"
	"github.com/scopelink/linker/internal/bundleref"
	"github.com/scopelink/linker/internal/logger"
	"github.com/scopelink/linker/internal/modgraph"
	"github.com/scopelink/linker/internal/moduleanalyzer"
	"github.com/scopelink/linker/internal/nametable"
	"github.com/scopelink/linker/internal/printer"
	"github.com/scopelink/linker/internal/sourcemap"
)

// chunkKeyNamespace roots every chunk's UniqueKey in a fixed UUID
// namespace so the same chunk id always mints the same key across builds
// (esbuild instead mints a fresh random key per build; a stable,
// content-addressed key is more useful for caching and is reproducible in
// tests).
var chunkKeyNamespace = uuid.MustParse("b7e151f8-9e25-4a1c-8b1e-9f7c2a9b7f3d")

// Bundle is the rendered result of one chunk.
type Bundle struct {
	Text string
	// UniqueKey identifies this chunk's render deterministically; derived
	// from the chunk id via uuid.NewSHA1 rather than a random v4 so
	// repeated renders of the same chunk id are cache-stable.
	UniqueKey string
	// SourceMap is the composite map across every module this chunk
	// emitted, in module order, each offset onto the running generated
	// line count and onto the running source index.
	SourceMap sourcemap.Map
}

// Options is this subsystem's configuration surface. Configuration
// loading from files/flags/env is out of scope here — a caller constructs
// Options directly; cmd/scopelink is the one place allowed to turn flags
// into one of these.
type Options struct {
	// Dev, when true, prefixes each module's emitted text with a banner
	// comment naming its module id.
	Dev bool
}

// BundleAnalyzer drives the render of one resource pot.
type BundleAnalyzer struct {
	pot     modgraph.ResourcePot
	graph   modgraph.Graph
	names   *nametable.NameTable
	manager *moduleanalyzer.Manager
	gen     printer.Generator
	log     logger.Log
	options Options

	moduleOrder []string
	ref         *bundleref.BundleReference
}

// NewBundleAnalyzer constructs the driver for one chunk. manager.Link()
// must already have run over the full module set.
func NewBundleAnalyzer(pot modgraph.ResourcePot, graph modgraph.Graph, names *nametable.NameTable, manager *moduleanalyzer.Manager, gen printer.Generator, log logger.Log, options Options) *BundleAnalyzer {
	return &BundleAnalyzer{
		pot:     pot,
		graph:   graph,
		names:   names,
		manager: manager,
		gen:     gen,
		log:     log,
		options: options,
		ref:     bundleref.New(names),
	}
}

// Render runs every pass in order and returns the concatenated bundle
// text plus its stable UniqueKey.
func (c *BundleAnalyzer) Render() (Bundle, error) {
	if err := c.buildModuleOrder(); err != nil {
		return Bundle{}, err
	}

	// Passes 2-5 all mint or force renames; running them under this
	// chunk's namespace tag is what makes render_name unique per chunk
	// rather than globally, so a sibling chunk's identically-named
	// binding can never collide with (or perturb) this chunk's names.
	var renderErr error
	c.names.WithNamespace(c.pot.ID, func() {
		c.moduleConflictName()
		if err := c.stripModule(); err != nil {
			renderErr = err
			return
		}
		if err := c.analyzeModuleRelation(); err != nil {
			renderErr = err
			return
		}
		c.patchAST()
	})
	if renderErr != nil {
		return Bundle{}, renderErr
	}

	text, srcMap, err := c.codegen()
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Text:      text,
		UniqueKey: uuid.NewSHA1(chunkKeyNamespace, []byte(c.pot.ID)).String(),
		SourceMap: srcMap,
	}, nil
}

// buildModuleOrder is pass 1: toposort the global module graph (which is
// dependency-first), restrict to this chunk's modules keeping that order
// so dependencies precede dependents, and push non-members ("greater")
// to the end.
func (c *BundleAnalyzer) buildModuleOrder() error {
	members := make(map[string]bool, len(c.pot.ModuleIDs))
	for _, id := range c.pot.ModuleIDs {
		members[id] = true
		if c.manager.Analyzer(id) == nil {
			return &Error{Kind: ErrMissingDependency, ModuleID: id, ChunkID: c.pot.ID, Text: "resource pot references a module with no analyzer"}
		}
	}

	// Toposort is dependency-first for the whole graph; the slice we keep
	// preserves that order, so dependencies precede dependents.
	order, _ := c.graph.Toposort()

	ordered := make([]string, 0, len(c.pot.ModuleIDs))
	for _, id := range order {
		if members[id] {
			ordered = append(ordered, id)
		}
	}
	if len(ordered) != len(c.pot.ModuleIDs) {
		// A module belongs to the chunk but never appeared in the global
		// toposort output (disconnected from the graph the caller gave
		// us) — append it last ("non-members are ordered greater").
		seen := make(map[string]bool, len(ordered))
		for _, id := range ordered {
			seen[id] = true
		}
		for _, id := range c.pot.ModuleIDs {
			if !seen[id] {
				ordered = append(ordered, id)
			}
		}
	}
	c.moduleOrder = ordered
	return nil
}

// moduleConflictName is pass 2: in toposorted order, mint a collision-free
// rename for every binding each module introduces, guaranteeing no two
// bindings collide once flattened into one chunk. Must run under the
// rendering chunk's WithNamespace scope (see Render) so the collision
// check is chunk-scoped rather than global.
func (c *BundleAnalyzer) moduleConflictName() {
	for _, id := range c.moduleOrder {
		a := c.manager.Analyzer(id)
		for _, v := range a.Variables() {
			c.names.SetVarUniqRename(v)
		}
	}
}

// stripModule is pass 3: emit an action tag for every import/export
// statement.
func (c *BundleAnalyzer) stripModule() error {
	for _, id := range c.moduleOrder {
		a := c.manager.Analyzer(id)
		for i, stmt := range a.Program.Stmts {
			if stmt.Import != nil {
				a.AddAction(moduleanalyzer.Action{StmtIndex: i, Kind: moduleanalyzer.RemoveImport})
				continue
			}
			if stmt.Export == nil {
				continue
			}
			if stmt.Export.Source != nil {
				a.AddAction(moduleanalyzer.Action{StmtIndex: i, Kind: moduleanalyzer.StripExport})
				continue
			}
			if isAnonymousDefaultExport(stmt) {
				ref := c.names.Register(id, defaultBindingName(id), true)
				a.AddAction(moduleanalyzer.Action{StmtIndex: i, Kind: moduleanalyzer.DeclDefaultExpr, Var: ref})
				continue
			}
			if isNamedDefaultExport(stmt) {
				a.AddAction(moduleanalyzer.Action{StmtIndex: i, Kind: moduleanalyzer.StripDefaultExport})
				continue
			}
			a.AddAction(moduleanalyzer.Action{StmtIndex: i, Kind: moduleanalyzer.StripExport})
		}
	}
	return nil
}

func isAnonymousDefaultExport(stmt *ast.Stmt) bool {
	for _, spec := range stmt.Export.Specifiers {
		if spec.Kind == ast.ExportDefault {
			return stmt.Decl == nil
		}
	}
	return false
}

func isNamedDefaultExport(stmt *ast.Stmt) bool {
	for _, spec := range stmt.Export.Specifiers {
		if spec.Kind == ast.ExportDefault {
			return stmt.Decl != nil
		}
	}
	return false
}

func defaultBindingName(moduleID string) string {
	return moduleanalyzer.SanitizeModulePath(moduleID) + "_default"
}

// analyzeModuleRelation is pass 4: resolve every import/export specifier
// across module and chunk boundaries.
func (c *BundleAnalyzer) analyzeModuleRelation() error {
	for _, id := range c.moduleOrder {
		a := c.manager.Analyzer(id)
		for _, stmt := range a.Program.Stmts {
			if stmt.Import != nil {
				if err := c.resolveImportStmt(id, stmt); err != nil {
					return err
				}
			}
			if stmt.Export != nil && stmt.Export.Source != nil {
				if err := c.resolveReexportStmt(id, stmt); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *BundleAnalyzer) resolveImportStmt(moduleID string, stmt *ast.Stmt) error {
	if _, ok := c.graph.DepBySourceOptional(moduleID, stmt.Import.Source); !ok {
		return &Error{Kind: ErrMissingDependency, ModuleID: moduleID, ChunkID: c.pot.ID, Text: fmt.Sprintf("import from %q: no such dependency", stmt.Import.Source)}
	}
	for i := range stmt.Import.Specifiers {
		spec := &stmt.Import.Specifiers[i]
		isDefault := spec.Kind == ast.ImportDefault
		isNamespace := spec.Kind == ast.ImportNamespace
		name := spec.Imported

		result := c.findIdentByIndex(findIdentByIndexRequest{
			fromModule:  moduleID,
			source:      stmt.Import.Source,
			chunkID:     c.pot.ID,
			isDefault:   isDefault,
			isNamespace: isNamespace,
		}, name)

		if err := c.applyFindResult(result, moduleID, stmt.Import.Source, spec.Local, spec.Kind, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *BundleAnalyzer) applyFindResult(result FindResult, moduleID, source string, local ast.VarRef, kind ast.ImportSpecKind, name string) error {
	switch result.Kind {
	case FindLocal:
		c.names.SetRenameForce(local, c.names.RenderName(result.Var))
	case FindExternal:
		req := bundleref.ImportSpecifierRequest{Kind: kind, Imported: name}
		ref := c.ref.SyncImport(result.Module, req)
		c.names.SetRenameForce(local, c.nameForExternalRef(result, ref, kind, name))
	case FindBundleRef:
		req := bundleref.ImportSpecifierRequest{Kind: kind, Imported: name}
		c.ref.SyncImport(result.Module, req)
		c.names.SetRenameForce(local, c.names.RenderName(result.Var))
	default:
		c.log.AddWarningf(moduleID, "unresolved import %q from %q", name, source)
		c.names.MarkRemoved(local)
	}
	return nil
}

// nameForExternalRef picks the local binding name a synced external
// import should render as. For a namespace/default specifier whose
// terminal export carries no name-table index of its own (genuinely
// external module, no analyzer) the freshly minted sync var IS the
// binding, rendered as its own origin name.
func (c *BundleAnalyzer) nameForExternalRef(result FindResult, syncedRef ast.VarRef, kind ast.ImportSpecKind, name string) string {
	if result.Var != ast.NoRef {
		return c.names.RenderName(result.Var)
	}
	return c.names.RenderName(syncedRef)
}

func (c *BundleAnalyzer) resolveReexportStmt(moduleID string, stmt *ast.Stmt) error {
	source := *stmt.Export.Source
	for i := range stmt.Export.Specifiers {
		spec := &stmt.Export.Specifiers[i]
		switch spec.Kind {
		case ast.ExportAll:
			if err := c.resolveExportAll(moduleID, source); err != nil {
				return err
			}
		case ast.ExportNamespace:
			// `export * as L from M` is an implicit namespace import of M
			// plus a named export of L.
			result := c.findIdentByIndex(findIdentByIndexRequest{
				fromModule: moduleID, source: source, chunkID: c.pot.ID, isNamespace: true,
			}, "")
			c.forwardNamespaceExport(result, source, spec.Exported)
		default: // ExportNamed, ExportDefault
			lookupName := forwardedLookupName(*spec)
			result := c.findIdentByIndex(findIdentByIndexRequest{
				fromModule: moduleID, source: source, chunkID: c.pot.ID,
				isDefault: spec.Kind == ast.ExportDefault,
			}, lookupName)
			c.forwardNamedExport(result, source, *spec)
		}
	}
	return nil
}

func forwardedLookupName(spec ast.ExportSpecifier) string {
	if spec.LocalName != "" {
		return spec.LocalName
	}
	return spec.Exported
}

func (c *BundleAnalyzer) forwardNamedExport(result FindResult, source string, spec ast.ExportSpecifier) {
	switch result.Kind {
	case FindLocal:
		c.ref.SyncExport(bundleref.ExportSpecifierRequest{Spec: ast.ExportSpecifier{
			Kind: spec.Kind, Local: result.Var, Exported: spec.Exported,
		}}, nil, c.warnConflict)
	case FindExternal:
		c.ref.SyncExport(bundleref.ExportSpecifierRequest{Spec: ast.ExportSpecifier{
			Kind: spec.Kind, Local: ast.NoRef, LocalName: forwardedLookupName(spec), Exported: spec.Exported,
		}}, &result.Module, c.warnConflict)
	case FindBundleRef:
		c.ref.SyncExport(bundleref.ExportSpecifierRequest{Spec: ast.ExportSpecifier{
			Kind: spec.Kind, Local: result.Var, Exported: spec.Exported,
		}}, &result.Module, c.warnConflict)
	default:
		c.log.AddWarningf(source, "unresolved re-export %q", spec.Exported)
	}
}

func (c *BundleAnalyzer) forwardNamespaceExport(result FindResult, source, exportedAs string) {
	switch result.Kind {
	case FindLocal:
		c.ref.SyncExport(bundleref.ExportSpecifierRequest{Spec: ast.ExportSpecifier{
			Kind: ast.ExportNamespace, Local: result.Var, Exported: exportedAs,
		}}, nil, c.warnConflict)
	case FindExternal, FindBundleRef:
		req := bundleref.ImportSpecifierRequest{Kind: ast.ImportNamespace}
		ref := c.ref.SyncImport(result.Module, req)
		local := ref
		if result.Var != ast.NoRef {
			local = result.Var
		}
		c.ref.SyncExport(bundleref.ExportSpecifierRequest{Spec: ast.ExportSpecifier{
			Kind: ast.ExportNamespace, Local: local, Exported: exportedAs,
		}}, nil, c.warnConflict)
	default:
		c.log.AddWarningf(source, "unresolved namespace re-export as %q", exportedAs)
	}
}

// resolveExportAll expands `export * from source` into one forwarded
// specifier per name the source transitively exports. `default` is never
// included, matching ES module semantics.
func (c *BundleAnalyzer) resolveExportAll(moduleID, source string) error {
	targetModule, ok := c.graph.DepBySourceOptional(moduleID, source)
	if !ok {
		return &Error{Kind: ErrMissingDependency, ModuleID: moduleID, Text: fmt.Sprintf("export * from %q: no such dependency", source)}
	}
	for _, entry := range c.manager.ExportNames(targetModule) {
		if entry.Spec.Exported == "default" || entry.Spec.Kind == ast.ExportNamespace {
			continue
		}
		result := c.findIdentByIndex(findIdentByIndexRequest{
			fromModule: moduleID, source: source, chunkID: c.pot.ID,
		}, entry.Spec.Exported)
		c.forwardNamedExport(result, source, ast.ExportSpecifier{
			Kind: ast.ExportNamed, Exported: entry.Spec.Exported, LocalName: entry.Spec.Exported,
		})
	}
	return nil
}

func (c *BundleAnalyzer) warnConflict(source, name string) {
	c.log.AddWarningf(source, "conflicting re-export binding for %q; keeping the first one seen", name)
}

// patchAST is pass 5: rewrite every module's AST and synthesize the
// leading import block and trailing export block.
func (c *BundleAnalyzer) patchAST() {
	for _, id := range c.moduleOrder {
		c.manager.PatchModuleAST(c.manager.Analyzer(id))
	}
	c.pruneEmptyModules()

	if len(c.moduleOrder) == 0 {
		return
	}
	first := c.manager.Analyzer(c.moduleOrder[0])
	last := c.manager.Analyzer(c.moduleOrder[len(c.moduleOrder)-1])

	importText := printer.ImportBlock(c.buildImportBlockEntries())
	if importText != "" {
		first.Program.Stmts = append([]*ast.Stmt{{Expr: ast.RawExpr(importText)}}, first.Program.Stmts...)
	}
	exportText := printer.ExportBlock(c.buildExportBlockEntries())
	if exportText != "" {
		last.Program.Stmts = append(last.Program.Stmts, &ast.Stmt{Expr: ast.RawExpr(exportText)})
	}
}

// pruneEmptyModules drops a module from the emitted sequence entirely
// when none of its statements survived stripping: an
// all-side-effect-free module whose only content was import/export
// declarations contributes nothing to the bundle.
func (c *BundleAnalyzer) pruneEmptyModules() {
	kept := c.moduleOrder[:0:0]
	for _, id := range c.moduleOrder {
		a := c.manager.Analyzer(id)
		empty := true
		for _, stmt := range a.Program.Stmts {
			if !stmt.Removed {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 && len(c.moduleOrder) > 0 {
		// Keep at least the entry module so a chunk with only re-export
		// glue still emits something for its import/export blocks to
		// attach to. Falls back to the first module in order when the
		// entry module is not part of this chunk's order.
		keep := c.moduleOrder[0]
		for _, id := range c.moduleOrder {
			if id == c.pot.EntryModule {
				keep = id
				break
			}
		}
		kept = append(kept, keep)
	}
	c.moduleOrder = kept
}

func (c *BundleAnalyzer) buildImportBlockEntries() []printer.ImportBlockEntry {
	var out []printer.ImportBlockEntry
	for _, source := range c.ref.Sources() {
		entry := c.ref.ImportMap[source]
		var named []printer.NamedBinding
		names := make([]string, 0, len(entry.Named))
		for n := range entry.Named {
			names = append(names, n)
		}
		// Ordered by interned index, not alphabetically: deterministic
		// output that follows each binding's registration order rather
		// than its spelling.
		sort.Slice(names, func(i, j int) bool { return entry.Named[names[i]] < entry.Named[names[j]] })
		for _, n := range names {
			named = append(named, printer.NamedBinding{Name: n, Local: c.names.RenderName(entry.Named[n])})
		}
		out = append(out, printer.ImportBlockEntry{
			Source:    source,
			Namespace: renderOrEmpty(c.names, entry.Namespace),
			Default:   renderOrEmpty(c.names, entry.Default),
			Named:     named,
		})
	}
	return out
}

func (c *BundleAnalyzer) buildExportBlockEntries() []printer.ExportBlockEntry {
	var out []printer.ExportBlockEntry
	for _, source := range c.ref.ExportSources() {
		entry := c.ref.ExternalExports[source]
		out = append(out, printer.ExportBlockEntry{Source: source, All: entry.All, Named: namedBindings(c.names, entry.Named)})
		if entry.Default != ast.NoRef {
			// A default re-export with an external source is emitted as
			// `export * from`.
			out = append(out, printer.ExportBlockEntry{Source: source, All: true})
		}
	}
	own := c.ref.OwnExports
	if len(own.Named) > 0 || own.Default != ast.NoRef {
		named := namedBindings(c.names, own.Named)
		if own.Default != ast.NoRef {
			named = append(named, printer.NamedBinding{Name: "default", Local: c.names.RenderName(own.Default)})
		}
		out = append(out, printer.ExportBlockEntry{Source: "", Named: named})
	}
	return out
}

func namedBindings(names *nametable.NameTable, m map[string]ast.VarRef) []printer.NamedBinding {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]printer.NamedBinding, 0, len(keys))
	for _, k := range keys {
		out = append(out, printer.NamedBinding{Name: k, Local: names.RenderName(m[k])})
	}
	return out
}

func renderOrEmpty(names *nametable.NameTable, ref ast.VarRef) string {
	if ref == ast.NoRef {
		return ""
	}
	return names.RenderName(ref)
}

// codegen is pass 6: feed each module's AST to the generator in module
// order, concatenate the emitted text, and stack each module's source map
// onto the chunk's composite map at the right line/source offset. A
// generator failure on any module aborts the whole chunk.
func (c *BundleAnalyzer) codegen() (string, sourcemap.Map, error) {
	var b strings.Builder
	var maps []sourcemap.Map
	var lineCounts []int
	for _, id := range c.moduleOrder {
		a := c.manager.Analyzer(id)
		lines := 0
		if c.options.Dev {
			fmt.Fprintf(&b, "// scope-link: %s\n", id)
			lines++
		}
		text, err := c.gen.Generate(a.Program)
		if err != nil {
			return "", sourcemap.Map{}, &Error{Kind: ErrCodegenError, ModuleID: id, ChunkID: c.pot.ID, Text: err.Error()}
		}
		b.WriteString(text)
		b.WriteString("\n")
		lines += strings.Count(text, "\n") + 1

		maps = append(maps, a.Program.SourceMap)
		lineCounts = append(lineCounts, lines)
	}
	return b.String(), sourcemap.Concat(maps, lineCounts), nil
}

