//go:build !cgo

package main

import (
	"context"
	"errors"

	"github.com/dusk-indust/konig/internal/graph"
	"github.com/dusk-indust/konig/internal/hashcache"
)

var errNoGraphDB = errors.New("graph database support requires a cgo build")

func persistGraphDB(context.Context, string, *graph.SimilarityGraph, hashcache.HashTable) error {
	return errNoGraphDB
}

func loadGraphDB(context.Context, string) (*graph.SimilarityGraph, hashcache.HashTable, error) {
	return nil, nil, errNoGraphDB
}
