// Package modgraph defines the module-graph surface the linker consumes.
// The graph itself — resolution, dependency discovery, toposort — is an
// external collaborator: something upstream builds and hands the linker a
// read-only view of. This package is only the port: the interface a real
// resolver implements, plus a Module value shape grounded on esbuild's
// internal/graph.InputFile (trimmed to what the linker reads).
package modgraph

import "github.com/scopelink/linker/internal/ast"

// ModuleID is an opaque module identifier. Equality and hashing are exact
// string comparison.
type ModuleID = string

// Module is one parsed unit the linker may need to rewrite.
type Module struct {
	ID      ModuleID
	Program *ast.Program

	// IsEntryPoint marks a chunk's designated root, referenced from
	// outside the bundle.
	IsEntryPoint bool
	// IsExternal marks a module not included in any chunk; references to
	// it become import declarations in the output.
	IsExternal bool
	// IsDynamic marks a module reached only through a dynamic import.
	// Dynamic/lazy chunk boundaries are out of scope here, but the flag is
	// still surfaced since upstream may use it to decide chunk membership
	// before calling into this linker.
	IsDynamic bool
	// IsRuntime marks esbuild-style synthetic runtime modules injected by
	// the bundler itself (e.g. helper functions for lowered syntax).
	IsRuntime bool

	// ChunkID is the resource pot this module currently belongs to.
	ChunkID string
}

// Graph is the read-only module graph the linker queries; nothing in this
// module ever mutates it.
type Graph interface {
	// Module looks up a module by id.
	Module(id ModuleID) (*Module, bool)
	// DependentsIDs returns the ids of modules that import id.
	DependentsIDs(id ModuleID) []ModuleID
	// DepBySourceOptional resolves the module `source` refers to when
	// imported from `from`, or ok=false if there is no such edge.
	DepBySourceOptional(from ModuleID, source string) (ModuleID, bool)
	// Toposort returns a dependency-first ordering of every module in the
	// graph along with any circular groups it had to break ties within.
	Toposort() (order []ModuleID, circles [][]ModuleID)
	// IsDynamic reports whether id is only reachable via a dynamic import.
	IsDynamic(id ModuleID) bool
}

// ResourcePot is one chunk: a set of modules slated to be emitted as a
// single output artifact.
type ResourcePot struct {
	ID          string
	ModuleIDs   []ModuleID
	EntryModule ModuleID
	Immutable   bool
}
