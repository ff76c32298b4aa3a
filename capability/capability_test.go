package capability_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libgit2-go/transport/capability"
)

func TestDetectEachTokenInIsolation(t *testing.T) {
	cases := map[string]func(capability.Set) bool{
		capability.OfsDelta:    func(s capability.Set) bool { return s.OfsDelta },
		capability.MultiAck:    func(s capability.Set) bool { return s.MultiAck },
		capability.IncludeTag:  func(s capability.Set) bool { return s.IncludeTag },
		capability.SideBand64k: func(s capability.Set) bool { return s.SideBand64k },
		capability.SideBand:    func(s capability.Set) bool { return s.SideBand },
	}

	for token, has := range cases {
		got := capability.Detect(token)
		require.True(t, got.Common, token)
		require.True(t, has(got), token)

		// no other flag should be set
		want := capability.Set{Common: true}
		switch token {
		case capability.OfsDelta:
			want.OfsDelta = true
		case capability.MultiAck:
			want.MultiAck = true
		case capability.IncludeTag:
			want.IncludeTag = true
		case capability.SideBand64k:
			want.SideBand64k = true
		case capability.SideBand:
			want.SideBand = true
		}
		require.Equal(t, want, got, token)
	}
}

func TestDetectSideBand64kWinsOverSideBand(t *testing.T) {
	got := capability.Detect("side-band-64k side-band")
	require.True(t, got.SideBand64k)
	require.False(t, got.SideBand)
}

func TestDetectSkipsUnknownTokens(t *testing.T) {
	got := capability.Detect("frobnicate ofs-delta shallow")
	require.True(t, got.OfsDelta)
	require.True(t, got.Common)
}

func TestDetectEmpty(t *testing.T) {
	got := capability.Detect("")
	require.Equal(t, capability.Set{}, got)
}

func TestIntersectPrefersSideBand64kOverSideBand(t *testing.T) {
	server := capability.Set{SideBand: true, SideBand64k: true, MultiAck: true}
	tokens := capability.Intersect(server, capability.Supported)
	require.Contains(t, tokens, capability.SideBand64k)
	require.NotContains(t, tokens, " "+capability.SideBand+" ")
}

func TestIntersectOnlyCommonTokens(t *testing.T) {
	server := capability.Set{OfsDelta: true}
	client := capability.Set{MultiAck: true}
	require.Equal(t, "", capability.Intersect(server, client))
}
