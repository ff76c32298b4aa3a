package sideband_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libgit2-go/transport/sideband"
)

func TestDemuxChannels(t *testing.T) {
	ch, rest, err := sideband.Demux([]byte{1, 'p', 'a', 'c', 'k'})
	require.NoError(t, err)
	require.Equal(t, sideband.PackData, ch)
	require.Equal(t, []byte("pack"), rest)

	ch, rest, err = sideband.Demux([]byte{2, 'h', 'i'})
	require.NoError(t, err)
	require.Equal(t, sideband.Progress, ch)
	require.Equal(t, []byte("hi"), rest)

	ch, rest, err = sideband.Demux([]byte{3, 'b', 'o', 'o', 'm'})
	require.NoError(t, err)
	require.Equal(t, sideband.Error, ch)
	require.Equal(t, []byte("boom"), rest)
}

func TestDemuxUnknownChannel(t *testing.T) {
	_, _, err := sideband.Demux([]byte{9, 'x'})
	var unknown sideband.ErrUnknownChannel
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, byte(9), byte(unknown))
}

func TestDemuxEmptyPayload(t *testing.T) {
	_, _, err := sideband.Demux(nil)
	require.Error(t, err)
}
