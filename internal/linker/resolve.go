package linker

import (
	"github.com/scopelink/linker/internal/ast"
	"github.com/scopelink/linker/internal/moduleanalyzer"
)

// FindResultKind is the terminal classification find_ident_by_index
// produces.
type FindResultKind uint8

const (
	FindNone FindResultKind = iota
	FindLocal
	FindExternal
	FindBundleRef
)

// FindResult is the outcome of resolving one identifier across chunk
// boundaries.
type FindResult struct {
	Kind FindResultKind
	// Var is the terminal binding's name-table index. Unset (ast.NoRef)
	// for FindNone and for every FindExternal result (an external module
	// has no binding of its own in this build).
	Var ast.VarRef
	// Module is the terminal module id for FindLocal, the external
	// module/source id for FindExternal, or the sibling chunk id for
	// FindBundleRef.
	Module string
}

// findIdentByIndexRequest bundles the lookup parameters find_ident_by_index
// needs. It is implemented as a BundleAnalyzer method in this
// package rather than as a NameTable method — see DESIGN.md: putting
// cross-module export resolution in the linker package (not renamer/
// nametable) mirrors how esbuild's own internal/linker.go centralizes
// import/export matching instead of pushing it down into
// internal/renamer, which only ever deals with one module's own symbols.
type findIdentByIndexRequest struct {
	fromModule  string
	source      string
	chunkID     string
	isDefault   bool
	isNamespace bool
}

func (c *BundleAnalyzer) findIdentByIndex(req findIdentByIndexRequest, name string) FindResult {
	targetModule, ok := c.graph.DepBySourceOptional(req.fromModule, req.source)
	if !ok {
		// No edge for this source at all. Returning FindNone lets the
		// caller decide whether that's truly fatal (an import) or can be
		// logged and skipped — an unresolved name within a known module is
		// recoverable, but a missing graph edge is a harder failure.
		return FindResult{Kind: FindNone}
	}

	if req.isNamespace {
		return c.findNamespace(targetModule, req.chunkID)
	}

	targetMod, _ := c.graph.Module(targetModule)

	if targetMod != nil && targetMod.IsExternal {
		return FindResult{Kind: FindExternal, Module: targetModule}
	}

	entries := c.manager.ExportNames(targetModule)
	var terminal *moduleanalyzer.ExportEntry
	for i := range entries {
		e := &entries[i]
		if req.isDefault {
			if e.Spec.Kind == ast.ExportDefault || e.Spec.Exported == "default" {
				terminal = e
				break
			}
			continue
		}
		if e.Spec.Kind != ast.ExportNamespace && e.Spec.Exported == name {
			terminal = e
			break
		}
	}
	if terminal == nil {
		return FindResult{Kind: FindNone}
	}

	// Self-import guard: a re-export chain that
	// resolves back to the requesting module itself is always Local,
	// without consulting BundleReference.
	if terminal.TerminalModule == req.fromModule {
		return FindResult{Kind: FindLocal, Var: lookupLocalRef(terminal), Module: req.fromModule}
	}

	terminalMod, _ := c.graph.Module(terminal.TerminalModule)
	if terminalMod != nil && terminalMod.IsExternal {
		return FindResult{Kind: FindExternal, Module: terminal.TerminalModule}
	}

	terminalAnalyzer := c.manager.Analyzer(terminal.TerminalModule)
	if terminalAnalyzer == nil {
		return FindResult{Kind: FindNone}
	}
	ref := lookupLocalRef(terminal)
	if terminalAnalyzer.ChunkID == req.chunkID {
		return FindResult{Kind: FindLocal, Var: ref, Module: terminal.TerminalModule}
	}
	return FindResult{Kind: FindBundleRef, Var: ref, Module: terminalAnalyzer.ChunkID}
}

// lookupLocalRef returns the name-table index a resolved export entry
// points at within its own terminal module's analyzer.
func lookupLocalRef(entry *moduleanalyzer.ExportEntry) ast.VarRef {
	return entry.Spec.Local
}

func (c *BundleAnalyzer) findNamespace(targetModule, chunkID string) FindResult {
	targetMod, _ := c.graph.Module(targetModule)
	if targetMod != nil && targetMod.IsExternal {
		return FindResult{Kind: FindExternal, Module: targetModule}
	}
	targetAnalyzer := c.manager.Analyzer(targetModule)
	if targetAnalyzer == nil {
		return FindResult{Kind: FindNone}
	}
	if targetAnalyzer.ChunkID == chunkID {
		return FindResult{Kind: FindLocal, Var: targetAnalyzer.NamespaceSynthRef(), Module: targetModule}
	}
	return FindResult{Kind: FindBundleRef, Var: targetAnalyzer.NamespaceSynthRef(), Module: targetAnalyzer.ChunkID}
}
