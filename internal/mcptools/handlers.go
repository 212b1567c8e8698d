package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dusk-indust/konig/internal/config"
	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/graph"
	"github.com/dusk-indust/konig/internal/hashcache"
	"github.com/dusk-indust/konig/internal/hashdb"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrNoGraph is returned by the query tools before any graph is available.
var ErrNoGraph = errors.New("no graph built yet; call build_graph first")

const defaultNeighborLimit = 20

// PersistFunc stores a freshly built graph somewhere durable.
type PersistFunc func(ctx context.Context, g *graph.SimilarityGraph, hashes hashcache.HashTable) error

// SimilarityService holds the current similarity graph and the collaborators
// used by MCP tool handlers.
type SimilarityService struct {
	provider fuzzy.Provider
	logger   *slog.Logger
	workers  int
	persist  PersistFunc

	mu        sync.RWMutex
	store     graph.Store // nil until a graph is built or preloaded
	threshold int

	preload       *graph.SimilarityGraph
	preloadHashes hashcache.HashTable
}

// Option configures a SimilarityService.
type Option func(*SimilarityService)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *SimilarityService) { s.logger = l }
}

// WithWorkers sets the parallelism used for hashing and comparing.
func WithWorkers(n int) Option {
	return func(s *SimilarityService) { s.workers = n }
}

// WithPersist registers a function called after each successful build.
// Persist failures are logged, not returned.
func WithPersist(fn PersistFunc) Option {
	return func(s *SimilarityService) { s.persist = fn }
}

// WithGraph preloads a graph, e.g. from a snapshot or graph database.
func WithGraph(g *graph.SimilarityGraph, hashes hashcache.HashTable, threshold int) Option {
	return func(s *SimilarityService) {
		s.preload, s.preloadHashes, s.threshold = g, hashes, threshold
	}
}

// NewSimilarityService creates a SimilarityService that digests artifacts
// with provider.
func NewSimilarityService(provider fuzzy.Provider, opts ...Option) *SimilarityService {
	s := &SimilarityService{
		provider:  provider,
		logger:    slog.Default(),
		workers:   hashcache.DefaultWorkers,
		threshold: config.DefaultThreshold,
	}
	for _, o := range opts {
		o(s)
	}
	if s.preload != nil {
		if err := s.install(context.Background(), s.preload, s.preloadHashes, s.threshold); err != nil {
			s.logger.Warn("failed to load preloaded graph", "error", err)
		}
		s.preload, s.preloadHashes = nil, nil
	}
	return s
}

// install loads g into a fresh MemStore and makes it the live graph. The
// previous store is closed.
func (s *SimilarityService) install(ctx context.Context, g *graph.SimilarityGraph, hashes hashcache.HashTable, threshold int) error {
	store := graph.NewMemStore()
	if err := graph.Save(ctx, store, g, hashes); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	s.mu.Lock()
	old := s.store
	s.store, s.threshold = store, threshold
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// BuildGraph hashes every regular file in a directory, reusing digests from
// an optional hash database, and builds the similarity graph. Returns graph
// statistics.
func (s *SimilarityService) BuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, BuildGraphOutput, error) {
	if input.Directory == "" {
		return nil, BuildGraphOutput{}, fmt.Errorf("directory is required")
	}
	info, err := os.Stat(input.Directory)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, BuildGraphOutput{}, fmt.Errorf("not a directory: %s", input.Directory)
	}

	threshold := config.DefaultThreshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}
	if err := graph.ValidateThreshold(threshold); err != nil {
		return nil, BuildGraphOutput{}, err
	}

	prior := hashcache.HashTable{}
	if input.HashDB != "" {
		if prior, err = hashdb.LoadOrEmpty(input.HashDB); err != nil {
			return nil, BuildGraphOutput{}, fmt.Errorf("load hash database: %w", err)
		}
	}

	res, err := hashcache.BuildFromSource(ctx, hashcache.NewDirSource(input.Directory), prior, s.provider,
		hashcache.WithWorkers(s.workers),
		hashcache.WithLogger(s.logger),
	)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("hash artifacts: %w", err)
	}

	g, err := graph.Build(ctx, res.Table, threshold, s.provider,
		graph.WithWorkers(s.workers),
		graph.WithLogger(s.logger),
	)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("build graph: %w", err)
	}

	if input.HashDB != "" {
		if err := hashdb.Save(input.HashDB, res.Table); err != nil {
			return nil, BuildGraphOutput{}, fmt.Errorf("save hash database: %w", err)
		}
	}

	if s.persist != nil {
		if err := s.persist(ctx, g, res.Table); err != nil {
			s.logger.Warn("failed to persist graph", "error", err)
		}
	}

	if err := s.install(ctx, g, res.Table, threshold); err != nil {
		return nil, BuildGraphOutput{}, err
	}

	return nil, BuildGraphOutput{
		Stats:     graph.Summarize(g),
		Threshold: threshold,
		Hashed:    res.Misses,
		Reused:    res.Hits,
	}, nil
}

// GetSubgraph returns the connected component containing an artifact.
func (s *SimilarityService) GetSubgraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetSubgraphInput,
) (*mcp.CallToolResult, GetSubgraphOutput, error) {
	if input.Artifact == "" {
		return nil, GetSubgraphOutput{}, fmt.Errorf("artifact is required")
	}
	g, err := s.loadGraph(ctx)
	if err != nil {
		return nil, GetSubgraphOutput{}, err
	}

	sub, err := graph.Extract(g, input.Artifact)
	if err != nil {
		return nil, GetSubgraphOutput{}, err
	}
	return nil, GetSubgraphOutput{
		Nodes: sub.Nodes(),
		Edges: sub.Edges(),
		Stats: graph.Summarize(sub),
	}, nil
}

// GraphStats reports node count, edge count and density of the current graph.
func (s *SimilarityService) GraphStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GraphStatsInput,
) (*mcp.CallToolResult, GraphStatsOutput, error) {
	store, threshold, err := s.current()
	if err != nil {
		return nil, GraphStatsOutput{}, err
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, GraphStatsOutput{}, fmt.Errorf("stats: %w", err)
	}
	return nil, GraphStatsOutput{Stats: *stats, Threshold: threshold, Summary: stats.String()}, nil
}

// GetClusters returns the connected components of the current graph.
func (s *SimilarityService) GetClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	g, err := s.loadGraph(ctx)
	if err != nil {
		return nil, GetClustersOutput{}, err
	}
	clusters := graph.Components(g, input.IncludeSingletons)
	if clusters == nil {
		clusters = []graph.Component{}
	}
	return nil, GetClustersOutput{Clusters: clusters}, nil
}

// SimilarTo lists an artifact's neighbors, most similar first.
func (s *SimilarityService) SimilarTo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SimilarToInput,
) (*mcp.CallToolResult, SimilarToOutput, error) {
	if input.Artifact == "" {
		return nil, SimilarToOutput{}, fmt.Errorf("artifact is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultNeighborLimit
	}

	store, _, err := s.current()
	if err != nil {
		return nil, SimilarToOutput{}, err
	}
	node, err := store.GetArtifact(ctx, input.Artifact)
	if err != nil {
		return nil, SimilarToOutput{}, fmt.Errorf("get artifact: %w", err)
	}
	if node == nil {
		return nil, SimilarToOutput{}, fmt.Errorf("%w: %q", graph.ErrUnknownArtifact, input.Artifact)
	}

	nbrs, err := store.GetNeighbors(ctx, input.Artifact, limit)
	if err != nil {
		return nil, SimilarToOutput{}, fmt.Errorf("get neighbors: %w", err)
	}
	return nil, SimilarToOutput{Digest: node.Digest, Neighbors: nbrs}, nil
}

func (s *SimilarityService) current() (graph.Store, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, 0, ErrNoGraph
	}
	return s.store, s.threshold, nil
}

func (s *SimilarityService) loadGraph(ctx context.Context) (*graph.SimilarityGraph, error) {
	store, _, err := s.current()
	if err != nil {
		return nil, err
	}
	g, err := store.LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	return g, nil
}
