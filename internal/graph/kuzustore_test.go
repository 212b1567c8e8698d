//go:build cgo

package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/konig/internal/hashcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
// It registers a cleanup function to close the store when the test finishes.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx), "InitSchema should not fail")
	return s
}

func TestKuzuStore_InitSchema(t *testing.T) {
	s, err := NewKuzuStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	// First call creates the tables.
	require.NoError(t, s.InitSchema(ctx))

	// Second call should be idempotent (IF NOT EXISTS).
	require.NoError(t, s.InitSchema(ctx))
}

func TestKuzuStore_ArtifactRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	node := ArtifactNode{ID: "sample.exe", Digest: "96:abc:def"}
	require.NoError(t, s.AddArtifact(ctx, node))

	got, err := s.GetArtifact(ctx, node.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, node, *got)

	missing, err := s.GetArtifact(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestKuzuStore_SaveAndLoadGraph(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := twoFamilies(t)
	hashes := hashcache.HashTable{"a": "3:a:a", "b": "3:b:b"}

	require.NoError(t, Save(ctx, s, g, hashes))

	loaded, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, g.Nodes(), loaded.Nodes())
	assert.Equal(t, g.Edges(), loaded.Edges())

	gotHashes, err := s.LoadHashes(ctx)
	require.NoError(t, err)
	assert.Equal(t, hashes, gotHashes)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.NodeCount)
	assert.Equal(t, 3, stats.EdgeCount)
	assert.InDelta(t, Summarize(g).Density, stats.Density, 1e-12)
}

func TestKuzuStore_GetNeighborsUndirected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, Save(ctx, s, twoFamilies(t), nil))

	// b is the target of a-b and the source of b-c; both must be found.
	nbrs, err := s.GetNeighbors(ctx, "b", 0)
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{ID: "a", Weight: 90}, {ID: "c", Weight: 70}}, nbrs)

	limited, err := s.GetNeighbors(ctx, "b", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = s.GetNeighbors(ctx, "ghost", 0)
	assert.ErrorIs(t, err, ErrUnknownArtifact)
}

func TestKuzuStore_AddSimilarityUnknownEndpoint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddArtifact(ctx, ArtifactNode{ID: "a"}))

	err := s.AddSimilarity(ctx, Edge{Source: "a", Target: "ghost", Weight: 80})
	assert.ErrorIs(t, err, ErrUnknownArtifact)

	err = s.AddSimilarity(ctx, Edge{Source: "a", Target: "a", Weight: 80})
	assert.ErrorIs(t, err, ErrSelfLoop)
}

func TestKuzuFileStore_Persists(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "graphdb")

	s, err := NewKuzuFileStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, Save(ctx, s, twoFamilies(t), nil))
	require.NoError(t, s.Close())

	reopened, err := NewKuzuFileStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	g, err := reopened.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
}

func TestPersistKuzu_ReplacesOldGraph(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "graphdb")

	require.NoError(t, PersistKuzu(ctx, dbPath, twoFamilies(t), nil))

	smaller := mustGraph(t, []string{"x", "y"}, []Edge{{Source: "x", Target: "y", Weight: 99}})
	hashes := hashcache.HashTable{"x": "3:x:x", "y": "3:y:y"}
	require.NoError(t, PersistKuzu(ctx, dbPath, smaller, hashes))

	g, gotHashes, err := LoadKuzu(ctx, dbPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, g.Nodes())
	assert.Equal(t, hashes, gotHashes)
}

func TestLoadKuzu_Missing(t *testing.T) {
	_, _, err := LoadKuzu(context.Background(), filepath.Join(t.TempDir(), "none"))
	assert.Error(t, err)
}

func TestPersistKuzu_RefusesUnrelatedDirectory(t *testing.T) {
	ctx := context.Background()
	samples := t.TempDir()
	sample := filepath.Join(samples, "dropper.exe")
	require.NoError(t, os.WriteFile(sample, []byte("keep me"), 0o644))

	err := PersistKuzu(ctx, samples, twoFamilies(t), nil)
	assert.ErrorIs(t, err, ErrNotGraphDB)

	data, err := os.ReadFile(sample)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))

	entries, err := os.ReadDir(filepath.Dir(samples))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".build-", "no staging directory left behind")
	}
}
