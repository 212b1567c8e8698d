package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/hashcache"
	"github.com/dusk-indust/konig/internal/progress"
	"golang.org/x/sync/errgroup"
)

const (
	// MinThreshold connects every pair the comparer scores at 0 or above.
	MinThreshold = 0

	// MaxThreshold is one above the highest possible score: it produces a
	// graph with every artifact isolated.
	MaxThreshold = fuzzy.MaxScore + 1

	// DefaultBatchRows is the number of upper-triangle rows compared per
	// unit of work between cancellation checks.
	DefaultBatchRows = 32
)

// ValidateThreshold reports ErrInvalidThreshold unless t is in
// [MinThreshold, MaxThreshold].
func ValidateThreshold(t int) error {
	if t < MinThreshold || t > MaxThreshold {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidThreshold, t, MinThreshold, MaxThreshold)
	}
	return nil
}

type buildOptions struct {
	workers      int
	batchRows    int
	maxArtifacts int
	logger       *slog.Logger
	progress     progress.Func
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithWorkers sets the number of goroutines comparing pairs. 1 (the default)
// compares on the calling goroutine.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) { o.workers = n }
}

// WithBatchRows sets how many upper-triangle rows make up one unit of work.
func WithBatchRows(n int) BuildOption {
	return func(o *buildOptions) { o.batchRows = n }
}

// WithMaxArtifacts rejects hash tables with more than n entries with
// ErrTooManyArtifacts. 0 disables the ceiling.
func WithMaxArtifacts(n int) BuildOption {
	return func(o *buildOptions) { o.maxArtifacts = n }
}

// WithLogger sets the logger for build summaries.
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = l }
}

// WithProgress registers a callback invoked after every completed batch.
func WithProgress(fn progress.Func) BuildOption {
	return func(o *buildOptions) { o.progress = fn }
}

// Build compares every unordered pair of artifacts in hashes exactly once and
// returns the graph whose edges are the pairs scoring at least threshold.
// Every key of hashes is a node, connected or not.
//
// Pairs are enumerated as the upper triangle of the sorted key list, so the
// cost is n*(n-1)/2 comparisons. With WithWorkers(n > 1) batches of rows are
// compared concurrently; each batch writes its own edge slice and the slices
// are merged after all workers finish. The context is checked between rows.
func Build(ctx context.Context, hashes hashcache.HashTable, threshold int, cmp fuzzy.Comparer, opts ...BuildOption) (*SimilarityGraph, error) {
	o := buildOptions{workers: 1, batchRows: DefaultBatchRows, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.batchRows < 1 {
		o.batchRows = DefaultBatchRows
	}

	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if o.maxArtifacts > 0 && len(hashes) > o.maxArtifacts {
		return nil, fmt.Errorf("%w: %d artifacts, limit %d", ErrTooManyArtifacts, len(hashes), o.maxArtifacts)
	}

	keys := hashes.Keys()
	g := NewSimilarityGraph()
	for _, k := range keys {
		g.AddNode(k)
	}

	rows := len(keys) - 1
	if rows < 1 {
		return g, nil
	}
	batches := (rows + o.batchRows - 1) / o.batchRows
	o.logger.Debug("comparing artifacts",
		"artifacts", len(keys),
		"pairs", len(keys)*(len(keys)-1)/2,
		"threshold", threshold,
		"workers", o.workers,
	)

	results := make([][]Edge, batches)
	var done atomic.Int64
	runBatch := func(ctx context.Context, b int) error {
		lo := b * o.batchRows
		hi := min(lo+o.batchRows, rows)
		edges, err := compareRows(ctx, keys, hashes, lo, hi, threshold, cmp)
		if err != nil {
			return err
		}
		results[b] = edges
		o.progress.Emit(progress.Event{
			Phase:  progress.PhaseCompare,
			Status: progress.StatusWorking,
			Done:   int(done.Add(1)),
			Total:  batches,
		})
		return nil
	}

	var err error
	if o.workers == 1 {
		for b := 0; b < batches && err == nil; b++ {
			err = runBatch(ctx, b)
		}
	} else {
		eg, gctx := errgroup.WithContext(ctx)
		eg.SetLimit(o.workers)
		for b := range batches {
			eg.Go(func() error { return runBatch(gctx, b) })
		}
		err = eg.Wait()
	}
	if err != nil {
		o.progress.Emit(progress.Event{Phase: progress.PhaseCompare, Status: progress.StatusFailed, Message: err.Error()})
		return nil, err
	}

	// Single writer: batches own disjoint row ranges, so no pair repeats.
	for _, edges := range results {
		for _, e := range edges {
			if err := g.AddEdge(e.Source, e.Target, e.Weight); err != nil {
				return nil, err
			}
		}
	}

	o.progress.Emit(progress.Event{Phase: progress.PhaseCompare, Status: progress.StatusComplete, Done: batches, Total: batches})
	o.logger.Debug("similarity graph built", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// compareRows scores keys[i] against every keys[j], j > i, for lo <= i < hi.
func compareRows(ctx context.Context, keys []string, hashes hashcache.HashTable, lo, hi, threshold int, cmp fuzzy.Comparer) ([]Edge, error) {
	var edges []Edge
	for i := lo; i < hi; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		k := keys[i]
		for _, l := range keys[i+1:] {
			score, err := cmp.Compare(hashes[k], hashes[l])
			if err != nil {
				return nil, fmt.Errorf("compare %q and %q: %w", k, l, err)
			}
			if score >= threshold {
				edges = append(edges, Edge{Source: k, Target: l, Weight: score})
			}
		}
	}
	return edges, nil
}
