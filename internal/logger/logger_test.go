package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddWarningDoesNotSetHasErrors(t *testing.T) {
	log := New()
	log.AddWarning("mod-a", "something recoverable")
	require.False(t, log.HasErrors())
	require.Len(t, log.Msgs(), 1)
	require.Equal(t, MsgWarning, log.Msgs()[0].Kind)
}

func TestAddErrorSetsHasErrors(t *testing.T) {
	log := New()
	log.AddErrorf("mod-a", "missing %s", "dependency")
	require.True(t, log.HasErrors())
	require.Equal(t, "missing dependency", log.Msgs()[0].Text)
}

func TestMsgsPreservesEmissionOrder(t *testing.T) {
	log := New()
	log.AddWarning("mod-a", "first")
	log.AddError("mod-b", "second")
	log.AddDebug("mod-c", "third")

	msgs := log.Msgs()
	require.Len(t, msgs, 3)
	require.Equal(t, "first", msgs[0].Text)
	require.Equal(t, "second", msgs[1].Text)
	require.Equal(t, "third", msgs[2].Text)
}

func TestLogValueSharesUnderlyingStorage(t *testing.T) {
	log := New()
	passed := log // Log's zero-cost copy semantics: both values share *msgs.
	passed.AddWarning("mod-a", "shared")
	require.Len(t, log.Msgs(), 1, "a Log copy must still append to the same underlying slice")
}
