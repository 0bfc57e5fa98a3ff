package linker

import (
	"github.com/scopelink/linker/internal/logger"
	"github.com/scopelink/linker/internal/modgraph"
	"github.com/scopelink/linker/internal/moduleanalyzer"
	"github.com/scopelink/linker/internal/nametable"
	"github.com/scopelink/linker/internal/printer"
)

// SharedBundle is the top-level coordinator over every chunk in one
// build: it owns the single NameTable and ModuleAnalyzerManager shared
// across chunks, runs Manager.Link() once over the full module set, and
// then renders each chunk in turn.
//
// Chunks may be rendered in any order once Link has completed: namespace
// names minted while linking are visible to every chunk from that point
// on, and each chunk's own renaming lives in its own namespace tag so two
// chunks can independently reuse a name without collision.
type SharedBundle struct {
	Graph   modgraph.Graph
	Names   *nametable.NameTable
	Manager *moduleanalyzer.Manager
	Gen     printer.Generator
	Log     logger.Log
	Options Options

	pots map[string]modgraph.ResourcePot
}

// NewSharedBundle constructs a build-wide coordinator. gen is the code
// generator to invoke per module; pass printer.Default{} unless the
// caller has wired in a fuller one.
func NewSharedBundle(graph modgraph.Graph, gen printer.Generator, log logger.Log, options Options) *SharedBundle {
	names := nametable.New()
	return &SharedBundle{
		Graph:   graph,
		Names:   names,
		Manager: moduleanalyzer.NewManager(graph, names),
		Gen:     gen,
		Log:     log,
		Options: options,
		pots:    make(map[string]modgraph.ResourcePot),
	}
}

// AddModule registers one module with the shared ModuleAnalyzerManager.
// Every module across every chunk must be added before Link.
func (sb *SharedBundle) AddModule(m *modgraph.Module) {
	sb.Manager.AddModule(m)
}

// AddResourcePot registers one chunk's module membership.
func (sb *SharedBundle) AddResourcePot(pot modgraph.ResourcePot) {
	sb.pots[pot.ID] = pot
}

// Link runs ModuleAnalyzerManager.Link() over the full set of modules
// added so far. Call this exactly once, after every AddModule and before
// any Render.
func (sb *SharedBundle) Link() {
	sb.Manager.Link()
}

// Render renders a single previously-registered chunk by id.
func (sb *SharedBundle) Render(chunkID string) (Bundle, error) {
	pot, ok := sb.pots[chunkID]
	if !ok {
		return Bundle{}, &Error{Kind: ErrUnknownResourcePot, ChunkID: chunkID, Text: "resource pot was never registered"}
	}
	analyzer := NewBundleAnalyzer(pot, sb.Graph, sb.Names, sb.Manager, sb.Gen, sb.Log, sb.Options)
	return analyzer.Render()
}

// RenderAll renders every registered chunk, stopping at the first fatal
// error a chunk's render produces. A caller that wants best-effort
// rendering of every chunk should call Render directly per chunk instead
// and collect errors itself.
func (sb *SharedBundle) RenderAll() (map[string]Bundle, error) {
	out := make(map[string]Bundle, len(sb.pots))
	for id := range sb.pots {
		bundle, err := sb.Render(id)
		if err != nil {
			return out, err
		}
		out[id] = bundle
	}
	return out, nil
}
