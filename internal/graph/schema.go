package graph

import "fmt"

// --- Models ---

// Edge is an undirected similarity relationship. Edges returned by a
// SimilarityGraph always have Source < Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"` // similarity score, 0–100
}

// Stats summarizes a similarity graph.
type Stats struct {
	NodeCount int     `json:"nodeCount"`
	EdgeCount int     `json:"edgeCount"`
	Density   float64 `json:"density"`
}

// String renders the stats as the multi-line block printed by the CLI.
func (s Stats) String() string {
	return fmt.Sprintf("Number of nodes: %d\nNumber of edges: %d\nGraph density: %g", s.NodeCount, s.EdgeCount, s.Density)
}

// Component is one connected component of a similarity graph: a family of
// related artifacts.
type Component struct {
	Members    []string `json:"members"` // sorted artifact ids
	EdgeCount  int      `json:"edgeCount"`
	MaxWeight  int      `json:"maxWeight"`
	MeanWeight float64  `json:"meanWeight"`
	Density    float64  `json:"density"`
}

// Neighbor is an artifact adjacent to some focus artifact.
type Neighbor struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
}
