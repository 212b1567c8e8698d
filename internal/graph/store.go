package graph

import (
	"context"
	"fmt"
	"io"

	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/hashcache"
)

// Store is the interface for similarity graph persistence backends.
// Implementations: KuzuStore (on-disk, cgo), MemStore (the live graph behind
// the MCP query tools).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations.
	AddArtifact(ctx context.Context, node ArtifactNode) error
	AddSimilarity(ctx context.Context, edge Edge) error

	// Read operations.
	GetArtifact(ctx context.Context, id string) (*ArtifactNode, error)
	GetNeighbors(ctx context.Context, id string, limit int) ([]Neighbor, error)
	LoadGraph(ctx context.Context) (*SimilarityGraph, error)
	LoadHashes(ctx context.Context) (hashcache.HashTable, error)

	// Stats.
	Stats(ctx context.Context) (*Stats, error)
}

// ArtifactNode is a stored graph node: the artifact and the digest it was
// compared by.
type ArtifactNode struct {
	ID     string       `json:"id"`
	Digest fuzzy.Digest `json:"digest,omitempty"`
}

// Save writes every node of g, with its digest from hashes when known, and
// every edge of g into store. The store schema is initialized first.
func Save(ctx context.Context, store Store, g *SimilarityGraph, hashes hashcache.HashTable) error {
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	for _, id := range g.Nodes() {
		if err := store.AddArtifact(ctx, ArtifactNode{ID: id, Digest: hashes[id]}); err != nil {
			return fmt.Errorf("add artifact %s: %w", id, err)
		}
	}
	for _, e := range g.Edges() {
		if err := store.AddSimilarity(ctx, e); err != nil {
			return fmt.Errorf("add similarity %s-%s: %w", e.Source, e.Target, err)
		}
	}
	return nil
}
