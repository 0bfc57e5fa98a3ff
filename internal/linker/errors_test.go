package linker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorStringWithModuleID(t *testing.T) {
	err := &Error{Kind: ErrMissingDependency, ModuleID: "a", Text: "no such dependency"}
	require.Equal(t, "MissingDependency: no such dependency (module a)", err.Error())
}

func TestErrorStringWithChunkID(t *testing.T) {
	err := &Error{Kind: ErrUnknownResourcePot, ChunkID: "main", Text: "unknown chunk"}
	require.Equal(t, "UnknownResourcePot: unknown chunk (chunk main)", err.Error())
}

func TestErrorStringWithNeitherModuleNorChunk(t *testing.T) {
	err := &Error{Kind: ErrInvariantViolation, Text: "toposort produced a cycle"}
	require.Equal(t, "InvariantViolation: toposort produced a cycle", err.Error())
}
