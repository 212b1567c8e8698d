package mcptools

import (
	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/graph"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// BuildGraphInput is the input for the build_graph MCP tool.
type BuildGraphInput struct {
	Directory string `json:"directory" jsonschema:"directory whose regular files are hashed and compared (not recursive)"`
	Threshold *int   `json:"threshold,omitempty" jsonschema:"minimum similarity score (0-101) for an edge; default 90"`
	HashDB    string `json:"hashDB,omitempty" jsonschema:"optional JSON hash database; existing digests are reused and the refreshed table is written back"`
}

// BuildGraphOutput is the result of the build_graph MCP tool.
type BuildGraphOutput struct {
	Stats     graph.Stats `json:"stats"`
	Threshold int         `json:"threshold"`
	Hashed    int         `json:"hashed"` // artifacts digested in this call
	Reused    int         `json:"reused"` // digests taken from the hash database
}

// GetSubgraphInput is the input for the get_subgraph MCP tool.
type GetSubgraphInput struct {
	Artifact string `json:"artifact" jsonschema:"artifact id (file name) whose connected component is returned"`
}

// GetSubgraphOutput is the result of the get_subgraph MCP tool.
type GetSubgraphOutput struct {
	Nodes []string     `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
	Stats graph.Stats  `json:"stats"`
}

// GraphStatsInput is the input for the graph_stats MCP tool.
type GraphStatsInput struct{}

// GraphStatsOutput is the result of the graph_stats MCP tool.
type GraphStatsOutput struct {
	Stats     graph.Stats `json:"stats"`
	Threshold int         `json:"threshold"`
	Summary   string      `json:"summary"`
}

// GetClustersInput is the input for the get_clusters MCP tool.
type GetClustersInput struct {
	IncludeSingletons bool `json:"includeSingletons,omitempty" jsonschema:"also list artifacts with no similar peers"`
}

// GetClustersOutput is the result of the get_clusters MCP tool.
type GetClustersOutput struct {
	Clusters []graph.Component `json:"clusters"`
}

// SimilarToInput is the input for the similar_to MCP tool.
type SimilarToInput struct {
	Artifact string `json:"artifact" jsonschema:"artifact id (file name)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of neighbors (default: 20)"`
}

// SimilarToOutput is the result of the similar_to MCP tool.
type SimilarToOutput struct {
	Digest    fuzzy.Digest     `json:"digest,omitempty"`
	Neighbors []graph.Neighbor `json:"neighbors"`
}
