package sourcemap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNewIdentityMapsEveryLineToItself(t *testing.T) {
	m := NewIdentity("a.js", 3)
	require.Equal(t, []string{"a.js"}, m.Sources)
	require.Len(t, m.Mappings, 3)
	for i, seg := range m.Mappings {
		require.Equal(t, i, seg.GeneratedLine)
		require.Equal(t, i, seg.OriginalLine)
		require.Equal(t, 0, seg.SourceIndex)
	}
}

func TestConcatOffsetsSourceIndexAndGeneratedLine(t *testing.T) {
	a := NewIdentity("a.js", 2)
	b := NewIdentity("b.js", 2)

	out := Concat([]Map{a, b}, []int{2, 2})

	want := Map{
		Sources: []string{"a.js", "b.js"},
		Mappings: []Mapping{
			{GeneratedLine: 0, SourceIndex: 0, OriginalLine: 0},
			{GeneratedLine: 1, SourceIndex: 0, OriginalLine: 1},
			{GeneratedLine: 2, SourceIndex: 1, OriginalLine: 0},
			{GeneratedLine: 3, SourceIndex: 1, OriginalLine: 1},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Concat result mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeProducesOneGroupPerLine(t *testing.T) {
	m := Map{
		Sources: []string{"a.js"},
		Mappings: []Mapping{
			{GeneratedLine: 0, OriginalLine: 0},
			{GeneratedLine: 2, OriginalLine: 2},
		},
	}
	encoded := Encode(m)
	// Three ';'-separated groups (lines 0,1,2): line 1 has no segment,
	// so its group is empty; line 2's original-line field is delta-encoded
	// against line 0's (a running value across the whole map, not per line).
	require.Equal(t, "AAAA;;AAEA", encoded)
}

func TestEncodeEmptyMapProducesEmptyString(t *testing.T) {
	require.Equal(t, "", Encode(Map{}))
}
