// Package fixture loads a module graph from a JSON description. The real
// resolver and parser that would normally produce a module graph and its
// ASTs are external collaborators this repo does not implement; fixture
// is the stand-in cmd/scopelink (and the package-level tests) use to
// exercise the linker against hand-written input, grounded on the way
// esbuild's own snapshot tests (cmd/snapshot) describe fixtures as data
// rather than driving a real bundle end to end.
package fixture

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/scopelink/linker/internal/ast"
	"github.com/scopelink/linker/internal/modgraph"
	"github.com/scopelink/linker/internal/moduleanalyzer"
	"github.com/scopelink/linker/internal/sourcemap"
)

// File is the top-level JSON shape: a flat module list, the import edges
// between them, and the chunk membership each module is assigned to.
type File struct {
	Modules []Module `json:"modules"`
	Edges   []Edge   `json:"edges"`
	Chunks  []Chunk  `json:"chunks"`
}

// Module describes one entry of File.Modules.
type Module struct {
	ID         string     `json:"id"`
	EntryPoint bool       `json:"entryPoint"`
	External   bool       `json:"external"`
	Dynamic    bool       `json:"dynamic"`
	Runtime    bool       `json:"runtime"`
	Stmts      []ast.Stmt `json:"stmts"`
	// Source and Lines describe this module's original source file for the
	// purpose of building its identity source map: generated line N maps
	// to line N of Source. Both empty/zero skips source map generation for
	// this module entirely.
	Source string `json:"source"`
	Lines  int    `json:"lines"`
}

// Edge records that `from`, importing the literal specifier `source`,
// resolves to module `to`.
type Edge struct {
	From   string `json:"from"`
	Source string `json:"source"`
	To     string `json:"to"`
}

// Chunk describes one resource pot: the modules assigned to it and which
// of them is its entry module.
type Chunk struct {
	ID      string   `json:"id"`
	Modules []string `json:"modules"`
	Entry   string   `json:"entry"`
}

// Parsed is a fixture file's modules and their dependency edges, resolved
// to a concrete graph but not yet registered with any name table: the
// graph must exist before a SharedBundle/Manager can be constructed
// (Manager resolves exports by querying the graph), so parsing and name
// registration are necessarily two steps.
type Parsed struct {
	Graph   *modgraph.MemoryGraph
	Modules []*modgraph.Module
	Pots    []modgraph.ResourcePot
}

// Parse decodes r as a File and builds its module graph. Call Register
// with the resulting Modules once a Manager exists for the graph.
func Parse(r io.Reader) (*Parsed, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("fixture: decode: %w", err)
	}

	chunkOf := make(map[string]string)
	for _, c := range f.Chunks {
		for _, id := range c.Modules {
			chunkOf[id] = c.ID
		}
	}

	var modules []*modgraph.Module
	for _, fm := range f.Modules {
		resetRefs(fm.Stmts)
		program := &ast.Program{ModuleID: fm.ID, Stmts: stmtPointers(fm.Stmts)}
		if fm.Source != "" {
			program.SourceMap = sourcemap.NewIdentity(fm.Source, fm.Lines)
		}
		modules = append(modules, &modgraph.Module{
			ID:           fm.ID,
			Program:      program,
			IsEntryPoint: fm.EntryPoint,
			IsExternal:   fm.External,
			IsDynamic:    fm.Dynamic,
			IsRuntime:    fm.Runtime,
			ChunkID:      chunkOf[fm.ID],
		})
	}

	graph := modgraph.NewMemoryGraph(modules)
	for _, e := range f.Edges {
		graph.AddEdge(e.From, e.Source, e.To)
	}

	pots := make([]modgraph.ResourcePot, 0, len(f.Chunks))
	for _, c := range f.Chunks {
		pots = append(pots, modgraph.ResourcePot{ID: c.ID, ModuleIDs: c.Modules, EntryModule: c.Entry})
	}

	return &Parsed{Graph: graph, Modules: modules, Pots: pots}, nil
}

// Register adds every parsed module to mgr and resolves the identifier
// text a fixture can only name by spelling (export locals, expression
// identifiers) against the VarRefs mgr.AddModule just minted. Fixture
// JSON never encodes a raw VarRef index, only identifier text.
func Register(p *Parsed, mgr *moduleanalyzer.Manager) {
	for _, m := range p.Modules {
		mgr.AddModule(m)
	}
	for _, m := range p.Modules {
		resolveExportLocals(m.Program)
	}
}

func stmtPointers(stmts []ast.Stmt) []*ast.Stmt {
	out := make([]*ast.Stmt, len(stmts))
	for i := range stmts {
		out[i] = &stmts[i]
	}
	return out
}

// resetRefs clears every VarRef fixture JSON may have decoded as its Go
// zero value (0, a valid index once real registration starts) back to
// ast.NoRef, since fixture authors only ever write identifier text.
func resetRefs(stmts []ast.Stmt) {
	for i := range stmts {
		s := &stmts[i]
		if s.Decl != nil {
			s.Decl.Ref = ast.NoRef
			if s.Decl.Init != nil {
				resetExprRefs(s.Decl.Init)
			}
		}
		if s.Import != nil {
			for j := range s.Import.Specifiers {
				s.Import.Specifiers[j].Local = ast.NoRef
			}
		}
		if s.Export != nil {
			for j := range s.Export.Specifiers {
				s.Export.Specifiers[j].Local = ast.NoRef
			}
		}
		if s.Expr != nil {
			resetExprRefs(s.Expr)
		}
	}
}

func resetExprRefs(e *ast.Expr) {
	ast.Walk(e, func(n *ast.Expr) {
		if n.Kind == ast.ExprIdent {
			n.Ref = ast.NoRef
		}
	})
}

// resolveExportLocals fills in every reference fixture JSON can only name
// by identifier text, now that AddModule has assigned a VarRef to each
// declaration and import specifier: a source-less export's Local, and any
// ExprIdent whose Name matches a local binding (global identifiers like
// `console` are left at NoRef and never renamed).
func resolveExportLocals(p *ast.Program) {
	byName := make(map[string]ast.VarRef)
	for _, stmt := range p.Stmts {
		if stmt.Decl != nil && stmt.Decl.Name != "" {
			byName[stmt.Decl.Name] = stmt.Decl.Ref
		}
		if stmt.Import != nil {
			for _, spec := range stmt.Import.Specifiers {
				key := spec.Imported
				if key == "" {
					if spec.Kind == ast.ImportNamespace {
						key = "*ns*"
					} else {
						key = "*default*"
					}
				}
				byName[key] = spec.Local
			}
		}
	}

	for _, stmt := range p.Stmts {
		if stmt.Export != nil && stmt.Export.Source == nil {
			for i := range stmt.Export.Specifiers {
				spec := &stmt.Export.Specifiers[i]
				name := spec.LocalName
				if name == "" {
					name = spec.Exported
				}
				if ref, ok := byName[name]; ok {
					spec.Local = ref
				}
			}
		}
		if stmt.Decl != nil && stmt.Decl.Init != nil {
			resolveExprRefs(stmt.Decl.Init, byName)
		}
		if stmt.Expr != nil {
			resolveExprRefs(stmt.Expr, byName)
		}
	}
}

func resolveExprRefs(e *ast.Expr, byName map[string]ast.VarRef) {
	ast.Walk(e, func(n *ast.Expr) {
		if n.Kind == ast.ExprIdent && n.Ref == ast.NoRef && n.Name != "" {
			if ref, ok := byName[n.Name]; ok {
				n.Ref = ref
			}
		}
	})
}
