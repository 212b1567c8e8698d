package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/dusk-indust/konig/internal/hashcache"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store on top of a SimilarityGraph. Thread-safe via
// sync.RWMutex.
type MemStore struct {
	mu        sync.RWMutex
	artifacts map[string]ArtifactNode
	graph     *SimilarityGraph
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		artifacts: make(map[string]ArtifactNode),
		graph:     NewSimilarityGraph(),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddArtifact stores an artifact node keyed by id.
func (m *MemStore) AddArtifact(_ context.Context, node ArtifactNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[node.ID] = node
	m.graph.AddNode(node.ID)
	return nil
}

// AddSimilarity stores an edge. Both endpoints must already be artifacts.
func (m *MemStore) AddSimilarity(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range []string{edge.Source, edge.Target} {
		if _, ok := m.artifacts[id]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownArtifact, id)
		}
	}
	return m.graph.AddEdge(edge.Source, edge.Target, edge.Weight)
}

// GetArtifact returns the artifact with the given id, or nil if not found.
func (m *MemStore) GetArtifact(_ context.Context, id string) (*ArtifactNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// GetNeighbors returns up to limit neighbors of id by descending weight.
// A limit <= 0 returns all of them.
func (m *MemStore) GetNeighbors(_ context.Context, id string, limit int) ([]Neighbor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.graph.HasNode(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, id)
	}
	nbrs := m.graph.Neighbors(id)
	if limit > 0 && len(nbrs) > limit {
		nbrs = nbrs[:limit]
	}
	return nbrs, nil
}

// LoadGraph returns a copy of the stored graph.
func (m *MemStore) LoadGraph(_ context.Context) (*SimilarityGraph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.graph.Clone(), nil
}

// LoadHashes returns the digests of every stored artifact that has one.
func (m *MemStore) LoadHashes(_ context.Context) (hashcache.HashTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(hashcache.HashTable, len(m.artifacts))
	for id, a := range m.artifacts {
		if a.Digest != "" {
			out[id] = a.Digest
		}
	}
	return out, nil
}

// Stats summarizes the stored graph.
func (m *MemStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Summarize(m.graph)
	return &s, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
