package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledByDefaultDoesNotPanic(t *testing.T) {
	SetEnabled(false)
	require.False(t, Packet.Enabled())
	Packet.Printf("packet:     %04x %q", 9, []byte("want"))
}

func TestEnabledReflectsSetEnabled(t *testing.T) {
	t.Cleanup(func() { SetEnabled(false) })
	SetEnabled(true)
	require.True(t, Packet.Enabled())
	SetEnabled(false)
	require.False(t, Packet.Enabled())
}
