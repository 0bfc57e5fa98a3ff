// Package nametable implements the process-wide-per-build identifier
// registry: the single writer for every renaming decision the linker
// makes. Every pass that needs to mint or read a name does so through a
// *NameTable passed in explicitly, rather than module-level state,
// specifically so tests can reset it between runs.
package nametable

import (
	"fmt"

	"github.com/scopelink/linker/internal/ast"
)

// Index is the dense integer identity of one interned binding. It is
// stable for the lifetime of a build and is the same value used as
// ast.VarRef inside every module's AST — a binding is registered into the
// table exactly once and that one index is threaded through the
// statement summaries, the rename map, and BundleReference.
type Index = ast.VarRef

// Var is the record a NameTable index points to.
type Var struct {
	ModuleID   string
	OriginName string
	Rename     string
	Removed    bool
	// NamespaceTag is the namespace tag that was active when Rename was
	// last assigned — the "used names" partition Rename is currently
	// claimed in. It tracks the active tag at rename time, not
	// registration time: a var is interned once but may be renamed
	// during a later chunk's render, under that chunk's tag.
	NamespaceTag string
}

type dedupKey struct {
	tag        string
	moduleID   string
	originName string
}

// NameTable is the registry. The zero value is not usable; use New.
type NameTable struct {
	vars  []Var
	dedup map[dedupKey]Index

	// used tracks, per namespace tag, the render names already claimed so
	// SetVarUniqRename can mint a collision-free one.
	used map[string]map[string]bool

	tagStack []string
}

// New constructs an empty NameTable, rooted in the "" (default) namespace.
func New() *NameTable {
	return &NameTable{
		dedup:    make(map[dedupKey]Index),
		used:     map[string]map[string]bool{"": {}},
		tagStack: []string{""},
	}
}

func (t *NameTable) activeTag() string {
	return t.tagStack[len(t.tagStack)-1]
}

// WithNamespace runs f with tag as the active namespace. Reentrancy is
// nested: calls may nest arbitrarily and each nested tag gets its own
// "used names" set, restored on return.
func (t *NameTable) WithNamespace(tag string, f func()) {
	t.tagStack = append(t.tagStack, tag)
	if _, ok := t.used[tag]; !ok {
		t.used[tag] = make(map[string]bool)
	}
	defer func() { t.tagStack = t.tagStack[:len(t.tagStack)-1] }()
	f()
}

// Register interns origin_name for module, returning its index. If strict
// and a (namespace_tag, module, origin_name) entry already exists, the
// prior index is returned instead of minting a new one.
func (t *NameTable) Register(moduleID, originName string, strict bool) Index {
	tag := t.activeTag()
	key := dedupKey{tag, moduleID, originName}
	if strict {
		if idx, ok := t.dedup[key]; ok {
			return idx
		}
	}
	idx := Index(len(t.vars))
	t.vars = append(t.vars, Var{
		ModuleID:     moduleID,
		OriginName:   originName,
		NamespaceTag: tag,
	})
	t.dedup[key] = idx
	return idx
}

// Get returns the Var record for idx.
func (t *NameTable) Get(idx Index) Var {
	return t.vars[idx]
}

// MarkRemoved flags idx as removed; a removed binding's specifier is
// dropped rather than emitted (used when resolution fails).
func (t *NameTable) MarkRemoved(idx Index) {
	t.vars[idx].Removed = true
}

// SetRename assigns a rename to idx if one is not already set.
func (t *NameTable) SetRename(idx Index, name string) {
	if t.vars[idx].Rename == "" {
		t.SetRenameForce(idx, name)
	}
}

// SetRenameForce assigns a rename to idx unconditionally, overwriting any
// prior rename. Used when cross-module resolution discovers a binding's
// render name must equal another binding's (aliasing one var's identity
// onto another's chosen name, e.g. a re-export target).
func (t *NameTable) SetRenameForce(idx Index, name string) {
	v := &t.vars[idx]
	if v.Rename != "" {
		delete(t.used[v.NamespaceTag], v.Rename)
	}
	tag := t.activeTag()
	v.Rename = name
	v.NamespaceTag = tag
	t.used[tag][name] = true
}

// SetVarUniqRename mints a collision-free rename for idx within the
// currently active namespace tag's used-names set by appending "$N" to
// the origin name until unused, then assigns it. This is the workhorse
// of module_conflict_name, called once per binding in toposorted module
// order, under the rendering chunk's WithNamespace scope, so that
// render_name stays unique within that chunk's namespace tag regardless
// of which tag was active when idx was first registered.
func (t *NameTable) SetVarUniqRename(idx Index) string {
	v := &t.vars[idx]
	tag := t.activeTag()
	used := t.used[tag]

	name := v.OriginName
	if name == "" {
		name = "_"
	}
	if !used[name] {
		t.SetRenameForce(idx, name)
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s$%d", name, n)
		if !used[candidate] {
			t.SetRenameForce(idx, candidate)
			return candidate
		}
	}
}

// RenderName returns idx's rename if set, else its origin name.
func (t *NameTable) RenderName(idx Index) string {
	v := t.vars[idx]
	if v.Rename != "" {
		return v.Rename
	}
	return v.OriginName
}

// IsRemoved reports whether idx was marked removed.
func (t *NameTable) IsRemoved(idx Index) bool {
	return t.vars[idx].Removed
}
