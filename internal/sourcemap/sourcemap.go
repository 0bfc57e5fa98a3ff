// Package sourcemap is the minimal source map v3 codec this linker needs:
// enough to represent one module's line mapping and concatenate several of
// those into one chunk-wide map, the way BundleAnalyzer's codegen pass
// stacks every rendered module's map onto the chunk's composite output.
//
// Grounded on esbuild's own internal/sourcemap: a decoded Mapping slice
// rather than carrying the base64-VLQ text around between passes, trimmed
// to line-level mappings (no names table, no binary search) since nothing
// here needs to answer "what source position is under this cursor" — only
// to produce a valid composite map a downstream tool can query.
package sourcemap

import "strings"

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Mapping is one decoded segment: generated line/column to source
// line/column, within SourceIndex of the owning Map's Sources.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	SourceIndex     int
	OriginalLine    int
	OriginalColumn  int
}

// Map is one module's (or one chunk's composite) source map.
type Map struct {
	Sources  []string
	Mappings []Mapping
}

// NewIdentity builds the map for a module whose emitted text is an
// unmodified, column-0 copy of its original source: generated line N maps
// to source line N of source, for every line in [0, lines).
func NewIdentity(source string, lines int) Map {
	m := Map{Sources: []string{source}}
	for i := 0; i < lines; i++ {
		m.Mappings = append(m.Mappings, Mapping{GeneratedLine: i, OriginalLine: i})
	}
	return m
}

// Concat stacks maps in order into one composite: later maps' source
// indices are offset past earlier maps' Sources, and generated lines are
// offset past the running generated-line count of every prior module's
// text (lineCounts[i] is the number of generated lines module i
// contributed, including any banner/separator lines codegen inserted).
func Concat(maps []Map, lineCounts []int) Map {
	var out Map
	srcOffset, lineOffset := 0, 0
	for i, m := range maps {
		for _, mapping := range m.Mappings {
			out.Mappings = append(out.Mappings, Mapping{
				GeneratedLine:   mapping.GeneratedLine + lineOffset,
				GeneratedColumn: mapping.GeneratedColumn,
				SourceIndex:     mapping.SourceIndex + srcOffset,
				OriginalLine:    mapping.OriginalLine,
				OriginalColumn:  mapping.OriginalColumn,
			})
		}
		out.Sources = append(out.Sources, m.Sources...)
		srcOffset += len(m.Sources)
		if i < len(lineCounts) {
			lineOffset += lineCounts[i]
		}
	}
	return out
}

// Encode renders m as a source map v3 "mappings" string: one ';'-separated
// group of VLQ segments per generated line, fields relative-encoded exactly
// as the format requires (generated column resets every line; source index,
// source line and source column are running deltas across the whole map).
func Encode(m Map) string {
	byLine := make(map[int][]Mapping)
	maxLine := -1
	for _, mapping := range m.Mappings {
		byLine[mapping.GeneratedLine] = append(byLine[mapping.GeneratedLine], mapping)
		if mapping.GeneratedLine > maxLine {
			maxLine = mapping.GeneratedLine
		}
	}

	var lines []string
	prevSrc, prevOrigLine, prevOrigCol := 0, 0, 0
	for line := 0; line <= maxLine; line++ {
		segs := byLine[line]
		prevCol := 0
		var parts []string
		for _, s := range segs {
			var b strings.Builder
			encodeVLQ(&b, s.GeneratedColumn-prevCol)
			encodeVLQ(&b, s.SourceIndex-prevSrc)
			encodeVLQ(&b, s.OriginalLine-prevOrigLine)
			encodeVLQ(&b, s.OriginalColumn-prevOrigCol)
			prevCol = s.GeneratedColumn
			prevSrc = s.SourceIndex
			prevOrigLine = s.OriginalLine
			prevOrigCol = s.OriginalColumn
			parts = append(parts, b.String())
		}
		lines = append(lines, strings.Join(parts, ","))
	}
	return strings.Join(lines, ";")
}

func encodeVLQ(b *strings.Builder, value int) {
	vlq := value << 1
	if value < 0 {
		vlq = (-value << 1) | 1
	}
	for {
		digit := vlq & 0x1f
		vlq >>= 5
		if vlq > 0 {
			digit |= 0x20
		}
		b.WriteByte(base64Chars[digit])
		if vlq == 0 {
			break
		}
	}
}
