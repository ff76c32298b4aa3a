package indexer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libgit2-go/transport/indexer"
)

func TestFileIndexerWritesUnderObjectsPack(t *testing.T) {
	repoPath := t.TempDir()

	idx, err := indexer.NewFileIndexer(repoPath)
	require.NoError(t, err)

	n, err := idx.Write([]byte("PACK...."))
	require.NoError(t, err)
	require.Equal(t, 8, n)

	require.Equal(t, int64(8), idx.Stats().ReceivedBytes)

	require.NoError(t, idx.Finalize())

	data, err := os.ReadFile(filepath.Join(repoPath, "objects", "pack", "pack-incoming.pack"))
	require.NoError(t, err)
	require.Equal(t, "PACK....", string(data))
}

func TestFileIndexerCloseIsIdempotent(t *testing.T) {
	idx, err := indexer.NewFileIndexer(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())
}

func TestFileIndexerFinalizeThenCloseIsSafe(t *testing.T) {
	idx, err := indexer.NewFileIndexer(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, idx.Finalize())
	require.NoError(t, idx.Close())
}
