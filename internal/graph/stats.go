package graph

// Summarize returns node and edge counts and the density of g.
func Summarize(g *SimilarityGraph) Stats {
	return Stats{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		Density:   density(g.NodeCount(), g.EdgeCount()),
	}
}

// density is 2m / (n(n-1)). Graphs with fewer than two nodes have no
// possible edges; their density is defined as 0 rather than left undefined.
func density(nodes, edges int) float64 {
	if nodes < 2 {
		return 0
	}
	return 2 * float64(edges) / (float64(nodes) * float64(nodes-1))
}
