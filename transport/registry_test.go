package transport_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libgit2-go/transport/transport"
)

func TestValidURLForRegisteredScheme(t *testing.T) {
	require.True(t, transport.ValidURL("git://example.com/foo.git"))
	require.True(t, transport.ValidURL("https://example.com/foo.git"))
	require.True(t, transport.SupportedURL("git://example.com/foo.git"))
}

func TestSSHLooksLikeURLRoutesToDummy(t *testing.T) {
	require.True(t, transport.ValidURL("git+ssh://example.com/foo.git"))
	require.False(t, transport.SupportedURL("git+ssh://example.com/foo.git"))
}

func TestExistingDirectoryRoutesToLocal(t *testing.T) {
	dir := t.TempDir()
	require.True(t, transport.ValidURL(dir))
	require.True(t, transport.SupportedURL(dir))
}

func TestExistingDirectoryWithColonRoutesToDummy(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "foo:bar")
	require.NoError(t, os.Mkdir(dir, 0o755))

	require.True(t, transport.ValidURL(dir))
	require.False(t, transport.SupportedURL(dir), "colon check must overwrite the local-directory match, matching the original's fall-through quirk")
}

func TestColonHeuristicWithoutMatchingScheme(t *testing.T) {
	require.True(t, transport.ValidURL("user@host:repo.git"))
	require.False(t, transport.SupportedURL("user@host:repo.git"))
}

func TestUnrecognizedURLWithNoColon(t *testing.T) {
	require.False(t, transport.ValidURL("not-a-url-at-all"))
}

func TestHigherPriorityWinsOnPrefixTie(t *testing.T) {
	transport.Register("priority-test://", 1, func(interface{}) transport.Transport { return nil }, "low")
	transport.Register("priority-test://", 5, func(interface{}) transport.Transport { return nil }, "high")
	defer transport.Unregister("priority-test://")

	_, param, err := transport.Find("priority-test://host/path")
	require.NoError(t, err)
	require.Equal(t, "high", param)
}

func TestFirstMatchWinsOnEqualPriority(t *testing.T) {
	transport.Register("tie-test://", 3, func(interface{}) transport.Transport { return nil }, "first")
	transport.Register("tie-test://", 3, func(interface{}) transport.Transport { return nil }, "second")
	defer transport.Unregister("tie-test://")

	_, param, err := transport.Find("tie-test://host/path")
	require.NoError(t, err)
	require.Equal(t, "first", param)
}

