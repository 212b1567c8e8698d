package hashcache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/progress"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent file reads when no WithWorkers option is
// given.
const DefaultWorkers = 8

// Result is the outcome of Build.
type Result struct {
	Table HashTable

	// Hits counts digests reused from the prior table.
	Hits int

	// Misses counts digests computed from content.
	Misses int
}

type options struct {
	workers  int
	logger   *slog.Logger
	progress progress.Func
}

// Option configures Build.
type Option func(*options)

// WithWorkers sets the maximum number of artifacts read concurrently.
// Values below 1 fall back to DefaultWorkers.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger sets the logger used for per-artifact debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProgress registers a progress callback, called once per computed digest.
func WithProgress(fn progress.Func) Option {
	return func(o *options) { o.progress = fn }
}

// Build returns a table with exactly one entry per id in ids.
//
// An id present in prior keeps its prior digest verbatim: its content is not
// opened, even if it changed since. Every other id is opened through src and
// digested by provider. Entries of prior that are not in ids are dropped.
//
// The first read or digest failure cancels the remaining work and is returned
// as an *UnreadableArtifactError. Re-running Build with the same prior after a
// failure is safe.
func Build(ctx context.Context, ids []ArtifactID, src Source, prior HashTable, provider fuzzy.Provider, opts ...Option) (*Result, error) {
	o := options{workers: DefaultWorkers, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = DefaultWorkers
	}

	table := make(HashTable, len(ids))
	var misses []ArtifactID
	for _, id := range ids {
		if _, seen := table[id]; seen {
			continue
		}
		if d, ok := prior[id]; ok {
			table[id] = d
			continue
		}
		// Reserve the key so duplicate ids are digested once.
		table[id] = ""
		misses = append(misses, id)
	}
	hits := len(table) - len(misses)
	o.logger.Debug("hash cache plan", "artifacts", len(table), "cached", hits, "to_hash", len(misses))

	o.progress.Emit(progress.Event{Phase: progress.PhaseHash, Status: progress.StatusWorking, Total: len(misses)})

	var (
		mu   sync.Mutex
		done atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, id := range misses {
		g.Go(func() error {
			d, err := digestOne(gctx, src, provider, id)
			if err != nil {
				return err
			}
			mu.Lock()
			table[id] = d
			mu.Unlock()
			n := done.Add(1)
			o.logger.Debug("hashed artifact", "id", id, "digest", string(d))
			o.progress.Emit(progress.Event{
				Phase:  progress.PhaseHash,
				Status: progress.StatusWorking,
				Done:   int(n),
				Total:  len(misses),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.progress.Emit(progress.Event{Phase: progress.PhaseHash, Status: progress.StatusFailed, Message: err.Error()})
		return nil, err
	}

	o.progress.Emit(progress.Event{
		Phase:  progress.PhaseHash,
		Status: progress.StatusComplete,
		Done:   len(misses),
		Total:  len(misses),
	})
	return &Result{Table: table, Hits: hits, Misses: len(misses)}, nil
}

// BuildFromSource lists src and builds the table for everything it returns.
func BuildFromSource(ctx context.Context, src Source, prior HashTable, provider fuzzy.Provider, opts ...Option) (*Result, error) {
	ids, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	return Build(ctx, ids, src, prior, provider, opts...)
}

func digestOne(ctx context.Context, src Source, provider fuzzy.Provider, id ArtifactID) (fuzzy.Digest, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rc, err := src.Open(ctx, id)
	if err != nil {
		return "", &UnreadableArtifactError{ID: id, Err: err}
	}
	defer rc.Close()

	d, err := provider.Digest(ctx, rc)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &UnreadableArtifactError{ID: id, Err: err}
	}
	return d, nil
}
