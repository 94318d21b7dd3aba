package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pushdown/internal/testutil"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// loadModern writes the six-vertex "modern" graph.
func loadModern(t *testing.T, s *Store) {
	t.Helper()
	require.NoError(t, s.Load(context.Background(), testutil.ModernVertices(), testutil.ModernEdges()))
}
