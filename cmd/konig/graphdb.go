//go:build cgo

package main

import (
	"context"

	"github.com/dusk-indust/konig/internal/graph"
	"github.com/dusk-indust/konig/internal/hashcache"
)

func persistGraphDB(ctx context.Context, path string, g *graph.SimilarityGraph, hashes hashcache.HashTable) error {
	return graph.PersistKuzu(ctx, path, g, hashes)
}

func loadGraphDB(ctx context.Context, path string) (*graph.SimilarityGraph, hashcache.HashTable, error) {
	return graph.LoadKuzu(ctx, path)
}
