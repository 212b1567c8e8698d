package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dusk-indust/konig/internal/config"
	"github.com/dusk-indust/konig/internal/export"
	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/graph"
	"github.com/dusk-indust/konig/internal/hashcache"
	"github.com/dusk-indust/konig/internal/hashdb"
	"github.com/dusk-indust/konig/internal/persist"
	"github.com/dusk-indust/konig/internal/progress"
	"github.com/dusk-indust/konig/internal/snapshot"
)

// runPipeline hashes (or loads) a graph, narrows it to one component when
// -file is given, writes the requested exports and prints a summary.
func runPipeline(ctx context.Context, flags cliFlags, s config.Settings, logger *slog.Logger, stdout, stderr io.Writer) error {
	var (
		g         *graph.SimilarityGraph
		hashes    hashcache.HashTable
		threshold = s.Threshold
	)

	if flags.Load != "" {
		logger.Info("loading saved graph", "path", flags.Load)
		snap, err := snapshot.Load(flags.Load)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}
		g, threshold = snap.Graph, snap.Threshold
	} else {
		var err error
		g, hashes, err = hashAndBuild(ctx, flags, s, logger, stderr)
		if err != nil {
			return err
		}
	}

	if flags.File != "" {
		sub, err := graph.Extract(g, flags.File)
		if err != nil {
			return err
		}
		g = sub
	}

	if err := writeOutputs(ctx, flags, s, g, hashes, threshold, logger); err != nil {
		return err
	}

	fmt.Fprintln(stdout, graph.Summarize(g))
	if !flags.NoPlot {
		fmt.Fprintln(stdout)
		fmt.Fprint(stdout, export.GenerateMermaid(g, export.MermaidOptions{}))
	}
	return nil
}

func hashAndBuild(ctx context.Context, flags cliFlags, s config.Settings, logger *slog.Logger, stderr io.Writer) (*graph.SimilarityGraph, hashcache.HashTable, error) {
	// Reject a bad threshold before any file is read.
	if err := graph.ValidateThreshold(s.Threshold); err != nil {
		return nil, nil, err
	}

	prior, err := loadPrior(s.HashDB, flags.Input != "", logger)
	if err != nil {
		return nil, nil, err
	}

	emit, stop := startProgress(stderr, flags.Verbose)
	defer stop()

	provider := fuzzy.SSDeep{}
	logger.Info("calculating fuzzy hashes", "directory", s.HashDir)
	res, err := hashcache.BuildFromSource(ctx, hashcache.NewDirSource(s.HashDir), prior, provider,
		hashcache.WithWorkers(s.Workers),
		hashcache.WithLogger(logger),
		hashcache.WithProgress(emit),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("hash %s: %w", s.HashDir, err)
	}
	logger.Info("hashes ready", "artifacts", len(res.Table), "cached", res.Hits, "hashed", res.Misses)

	if flags.Output != "" {
		if err := hashdb.Save(flags.Output, res.Table); err != nil {
			return nil, nil, err
		}
		logger.Info("saved hash database", "path", flags.Output)
	}

	logger.Info("creating graph structure", "threshold", s.Threshold)
	g, err := graph.Build(ctx, res.Table, s.Threshold, provider,
		graph.WithWorkers(s.Workers),
		graph.WithMaxArtifacts(s.MaxArtifacts),
		graph.WithLogger(logger),
		graph.WithProgress(emit),
	)
	if err != nil {
		return nil, nil, err
	}
	return g, res.Table, nil
}

// loadPrior reads the hash database. A database named explicitly with
// -input must exist; one that only comes from konig.yml may be absent on the
// first run.
func loadPrior(path string, explicit bool, logger *slog.Logger) (hashcache.HashTable, error) {
	if path == "" {
		return hashcache.HashTable{}, nil
	}
	logger.Info("loading saved hash database", "path", path)
	table, err := hashdb.Load(path)
	switch {
	case err == nil:
		return table, nil
	case errors.Is(err, os.ErrNotExist) && !explicit:
		logger.Info("hash database not found, starting empty", "path", path)
		return hashcache.HashTable{}, nil
	default:
		return nil, err
	}
}

func writeOutputs(ctx context.Context, flags cliFlags, s config.Settings, g *graph.SimilarityGraph, hashes hashcache.HashTable, threshold int, logger *slog.Logger) error {
	if flags.Export != "" {
		if err := persist.WriteAtomic(flags.Export, func(w io.Writer) error { return export.WriteGraphML(w, g) }); err != nil {
			return err
		}
		logger.Info("exported graph", "path", flags.Export, "format", "graphml")
	}
	if flags.JSON != "" {
		if err := persist.WriteAtomic(flags.JSON, func(w io.Writer) error { return export.WriteJSON(w, g, threshold) }); err != nil {
			return err
		}
		logger.Info("exported graph", "path", flags.JSON, "format", "json")
	}
	if flags.Save != "" {
		if err := snapshot.Save(flags.Save, snapshot.Snapshot{Threshold: threshold, Graph: g}); err != nil {
			return fmt.Errorf("save graph: %w", err)
		}
		logger.Info("saved graph object", "path", flags.Save)
	}
	if s.GraphDB != "" {
		if err := persistGraphDB(ctx, s.GraphDB, g, hashes); err != nil {
			return fmt.Errorf("persist graph: %w", err)
		}
		logger.Info("persisted graph", "path", s.GraphDB)
	}
	return nil
}

// startProgress drains a progress.Reporter onto stderr. Per-item events are
// only printed in verbose mode. The returned stop func waits for the drain
// goroutine to finish.
func startProgress(stderr io.Writer, verbose bool) (progress.Func, func()) {
	rep := progress.NewReporter()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range rep.Subscribe() {
			if ev.Status == progress.StatusWorking && ev.Done > 0 && !verbose {
				continue
			}
			fmt.Fprintln(stderr, progress.Format(ev))
		}
	}()
	return rep.Emit, func() {
		rep.Close()
		<-done
	}
}
