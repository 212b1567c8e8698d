package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dusk-indust/konig/internal/config"
	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/graph"
	"github.com/dusk-indust/konig/internal/hashcache"
	"github.com/dusk-indust/konig/internal/mcptools"
	"github.com/dusk-indust/konig/internal/snapshot"
)

// runServeMCP serves the similarity tools over streamable HTTP until ctx is
// cancelled. A graph from -load, or from -graph-db when it already exists,
// is available to the query tools before the first build_graph call.
func runServeMCP(ctx context.Context, flags cliFlags, s config.Settings, logger *slog.Logger) error {
	opts := []mcptools.Option{
		mcptools.WithLogger(logger),
		mcptools.WithWorkers(s.Workers),
	}

	switch {
	case flags.Load != "":
		snap, err := snapshot.Load(flags.Load)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}
		opts = append(opts, mcptools.WithGraph(snap.Graph, nil, snap.Threshold))
	case s.GraphDB != "":
		g, hashes, err := loadGraphDB(ctx, s.GraphDB)
		if err != nil {
			logger.Info("no stored graph loaded", "path", s.GraphDB, "reason", err)
		} else {
			opts = append(opts, mcptools.WithGraph(g, hashes, s.Threshold))
		}
	}

	if s.GraphDB != "" {
		path := s.GraphDB
		opts = append(opts, mcptools.WithPersist(func(ctx context.Context, g *graph.SimilarityGraph, hashes hashcache.HashTable) error {
			return persistGraphDB(ctx, path, g, hashes)
		}))
	}

	svc := mcptools.NewSimilarityService(fuzzy.SSDeep{}, opts...)
	logger.Info("serving MCP", "addr", flags.Addr)
	return mcptools.RunMCPServer(ctx, svc, flags.Addr)
}
