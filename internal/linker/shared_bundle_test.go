package linker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scopelink/linker/internal/fixture"
	"github.com/scopelink/linker/internal/logger"
	"github.com/scopelink/linker/internal/printer"
)

const twoModuleFixture = `{
  "modules": [
    {
      "id": "b",
      "source": "b.js",
      "lines": 1,
      "stmts": [
        {
          "decl": {"kind": 0, "name": "x", "init": {"kind": 0, "raw": "1"}},
          "export": {"specifiers": [{"kind": 1, "localName": "x", "exported": "x"}]}
        }
      ]
    },
    {
      "id": "a",
      "entryPoint": true,
      "stmts": [
        {"import": {"source": "./b", "specifiers": [{"kind": 1, "imported": "x"}]}},
        {
          "expr": {
            "kind": 3,
            "callee": {"kind": 2, "object": {"kind": 1, "name": "console"}, "property": "log"},
            "args": [{"kind": 1, "name": "x"}]
          }
        }
      ]
    }
  ],
  "edges": [{"from": "a", "source": "./b", "to": "b"}],
  "chunks": [{"id": "main", "modules": ["a", "b"], "entry": "a"}]
}`

func newSharedBundle(t *testing.T, opts Options) (*SharedBundle, *fixture.Parsed) {
	t.Helper()
	parsed, err := fixture.Parse(strings.NewReader(twoModuleFixture))
	require.NoError(t, err)

	log := logger.New()
	sb := NewSharedBundle(parsed.Graph, printer.Default{}, log, opts)
	fixture.Register(parsed, sb.Manager)
	for _, pot := range parsed.Pots {
		sb.AddResourcePot(pot)
	}
	sb.Link()
	return sb, parsed
}

func TestRenderInlinesSameChunkImport(t *testing.T) {
	sb, _ := newSharedBundle(t, Options{})
	bundle, err := sb.Render("main")
	require.NoError(t, err)

	require.Contains(t, bundle.Text, "console.log(x)")
	require.Contains(t, bundle.Text, "var x = 1;")
	require.NotContains(t, bundle.Text, `import`, "a same-chunk import must be inlined, not re-emitted as a declaration")
	require.NotEmpty(t, bundle.UniqueKey)
}

func TestRenderIsDeterministicAcrossCalls(t *testing.T) {
	sb, _ := newSharedBundle(t, Options{})
	first, err := sb.Render("main")
	require.NoError(t, err)

	sb2, _ := newSharedBundle(t, Options{})
	second, err := sb2.Render("main")
	require.NoError(t, err)

	require.Equal(t, first.Text, second.Text)
	require.Equal(t, first.UniqueKey, second.UniqueKey, "UniqueKey is content-addressed on chunk id, so two independent builds of the same fixture must agree")
}

func TestRenderDevModeAddsModuleBanner(t *testing.T) {
	sb, _ := newSharedBundle(t, Options{Dev: true})
	bundle, err := sb.Render("main")
	require.NoError(t, err)

	require.Contains(t, bundle.Text, "// scope-link: a")
	require.Contains(t, bundle.Text, "// scope-link: b")
}

func TestRenderUnknownChunkIsAnError(t *testing.T) {
	sb, _ := newSharedBundle(t, Options{})
	_, err := sb.Render("nope")
	require.Error(t, err)

	var linkErr *Error
	require.ErrorAs(t, err, &linkErr)
	require.Equal(t, ErrUnknownResourcePot, linkErr.Kind)
}

func TestRenderProducesCompositeSourceMap(t *testing.T) {
	sb, _ := newSharedBundle(t, Options{})
	bundle, err := sb.Render("main")
	require.NoError(t, err)

	require.Equal(t, []string{"b.js"}, bundle.SourceMap.Sources, "only module b's fixture entry supplies a source, so the composite map carries exactly one source")
}

func TestRenderAllRendersEveryChunk(t *testing.T) {
	sb, _ := newSharedBundle(t, Options{})
	all, err := sb.RenderAll()
	require.NoError(t, err)
	require.Contains(t, all, "main")
}

// twoChunkSameNameFixture has two entirely independent chunks, each a
// single module declaring a top-level `x`. Nothing connects them — the
// point is to prove module_conflict_name's collision check is scoped to
// the rendering chunk, not global: each chunk must see its own `x` as
// the only `x` and render it unsuffixed, instead of one chunk minting
// "x" and the other being forced into "x$2" by a totally unrelated
// sibling chunk's binding of the same origin name.
const twoChunkSameNameFixture = `{
  "modules": [
    {
      "id": "p",
      "entryPoint": true,
      "stmts": [
        {"decl": {"kind": 0, "name": "x", "init": {"kind": 0, "raw": "1"}}},
        {"expr": {"kind": 3, "callee": {"kind": 2, "object": {"kind": 1, "name": "console"}, "property": "log"}, "args": [{"kind": 1, "name": "x"}]}}
      ]
    },
    {
      "id": "q",
      "entryPoint": true,
      "stmts": [
        {"decl": {"kind": 0, "name": "x", "init": {"kind": 0, "raw": "2"}}},
        {"expr": {"kind": 3, "callee": {"kind": 2, "object": {"kind": 1, "name": "console"}, "property": "log"}, "args": [{"kind": 1, "name": "x"}]}}
      ]
    }
  ],
  "edges": [],
  "chunks": [{"id": "p", "modules": ["p"], "entry": "p"}, {"id": "q", "modules": ["q"], "entry": "q"}]
}`

func TestRenderIsolatesSameOriginNameAcrossChunks(t *testing.T) {
	parsed, err := fixture.Parse(strings.NewReader(twoChunkSameNameFixture))
	require.NoError(t, err)

	log := logger.New()
	sb := NewSharedBundle(parsed.Graph, printer.Default{}, log, Options{})
	fixture.Register(parsed, sb.Manager)
	for _, pot := range parsed.Pots {
		sb.AddResourcePot(pot)
	}
	sb.Link()

	all, err := sb.RenderAll()
	require.NoError(t, err)

	require.Contains(t, all["p"].Text, "var x = 1;", "chunk p's own x must never be perturbed by chunk q sharing the same origin name")
	require.Contains(t, all["q"].Text, "var x = 2;", "chunk q's own x must never be perturbed by chunk p sharing the same origin name")
	require.NotContains(t, all["p"].Text, "x$2")
	require.NotContains(t, all["q"].Text, "x$2")
}
