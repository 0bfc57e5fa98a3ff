// Package bundleref implements the per-chunk accumulator of a chunk's
// external imports and externally visible exports, keyed by source (an
// external module id or a sibling chunk id).
package bundleref

import (
	"sort"

	"github.com/scopelink/linker/internal/ast"
	"github.com/scopelink/linker/internal/nametable"
)

// ImportEntry is the import-side bookkeeping for one source.
type ImportEntry struct {
	Named     map[string]ast.VarRef // exported name -> local var
	Namespace ast.VarRef
	Default   ast.VarRef
}

func newImportEntry() *ImportEntry {
	return &ImportEntry{Named: make(map[string]ast.VarRef), Namespace: ast.NoRef, Default: ast.NoRef}
}

// ExportEntry is the export-side bookkeeping for one source (or the
// chunk's own exports, held in BundleReference.OwnExports).
type ExportEntry struct {
	Named     map[string]ast.VarRef
	Namespace ast.VarRef
	Default   ast.VarRef
	All       bool
}

func newExportEntry() *ExportEntry {
	return &ExportEntry{Named: make(map[string]ast.VarRef), Namespace: ast.NoRef, Default: ast.NoRef}
}

// BundleReference accumulates one chunk's cross-boundary surface.
type BundleReference struct {
	names *nametable.NameTable

	ImportMap       map[string]*ImportEntry
	ExternalExports map[string]*ExportEntry
	// OwnExports holds bindings this chunk exposes with no source: an
	// optional own-exports block for bindings defined inside the chunk.
	OwnExports *ExportEntry

	// warnedInconsistentReexport tracks sources we've already warned about
	// for a conflicting re-export of the same name, so repeats are quiet.
	warnedInconsistentReexport map[string]bool
}

// New constructs an empty BundleReference for one chunk render.
func New(names *nametable.NameTable) *BundleReference {
	return &BundleReference{
		names:                      names,
		ImportMap:                  make(map[string]*ImportEntry),
		ExternalExports:            make(map[string]*ExportEntry),
		OwnExports:                 newExportEntry(),
		warnedInconsistentReexport: make(map[string]bool),
	}
}

// ImportSpecifierRequest describes the binding a module needs from an
// external source or a sibling chunk.
type ImportSpecifierRequest struct {
	Kind     ast.ImportSpecKind
	Imported string // only meaningful for ast.ImportNamed
}

// SyncImport resolves a request against source, minting a fresh variable
// the first time this (source, specifier kind, exported name) combination
// is seen and reusing it afterwards. For namespace specifiers there is
// exactly one namespace binding per source.
func (b *BundleReference) SyncImport(source string, req ImportSpecifierRequest) ast.VarRef {
	entry, ok := b.ImportMap[source]
	if !ok {
		entry = newImportEntry()
		b.ImportMap[source] = entry
	}
	switch req.Kind {
	case ast.ImportNamespace:
		if entry.Namespace == ast.NoRef {
			entry.Namespace = b.names.Register(source, "*", false)
		}
		return entry.Namespace
	case ast.ImportDefault:
		if entry.Default == ast.NoRef {
			entry.Default = b.names.Register(source, "default", false)
		}
		return entry.Default
	default: // ast.ImportNamed
		if ref, ok := entry.Named[req.Imported]; ok {
			return ref
		}
		ref := b.names.Register(source, req.Imported, false)
		entry.Named[req.Imported] = ref
		return ref
	}
}

// ExportSpecifierRequest describes one specifier being re-exposed from
// this chunk, optionally re-exported from a further source.
type ExportSpecifierRequest struct {
	Spec ast.ExportSpecifier
}

// SyncExport enters req into the external export map keyed by source if
// source is non-nil, otherwise into the chunk's own export block. An
// ExportAll specifier sets source's "all" flag. A conflicting
// re-assignment of an already-bound exported name keeps the first
// mapping; this implementation warns once per (source, name) via
// onConflict.
func (b *BundleReference) SyncExport(req ExportSpecifierRequest, source *string, onConflict func(source, name string)) {
	var entry *ExportEntry
	key := ""
	if source != nil {
		key = *source
		e, ok := b.ExternalExports[key]
		if !ok {
			e = newExportEntry()
			b.ExternalExports[key] = e
		}
		entry = e
	} else {
		entry = b.OwnExports
	}

	switch req.Spec.Kind {
	case ast.ExportAll:
		entry.All = true
	case ast.ExportNamespace:
		if entry.Namespace == ast.NoRef {
			entry.Namespace = req.Spec.Local
		}
	case ast.ExportDefault:
		if entry.Default == ast.NoRef {
			entry.Default = req.Spec.Local
		} else if entry.Default != req.Spec.Local && onConflict != nil && !b.warnedInconsistentReexport[key+"\x00default"] {
			b.warnedInconsistentReexport[key+"\x00default"] = true
			onConflict(key, "default")
		}
	default: // ast.ExportNamed
		if existing, ok := entry.Named[req.Spec.Exported]; !ok {
			entry.Named[req.Spec.Exported] = req.Spec.Local
		} else if existing != req.Spec.Local && onConflict != nil && !b.warnedInconsistentReexport[key+"\x00"+req.Spec.Exported] {
			b.warnedInconsistentReexport[key+"\x00"+req.Spec.Exported] = true
			onConflict(key, req.Spec.Exported)
		}
	}
}

// Sources returns every import source this chunk references, in a
// deterministic (sorted) order, since emission order follows this order.
func (b *BundleReference) Sources() []string {
	out := make([]string, 0, len(b.ImportMap))
	for s := range b.ImportMap {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ExportSources returns every source this chunk re-exports from, sorted.
func (b *BundleReference) ExportSources() []string {
	out := make([]string, 0, len(b.ExternalExports))
	for s := range b.ExternalExports {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
