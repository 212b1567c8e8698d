package graph

import (
	"fmt"
	"sort"
)

// Extract returns the connected component containing focus as a new graph:
// every node reachable from focus and only the edges between them. The
// result shares no state with g.
func Extract(g *SimilarityGraph, focus string) (*SimilarityGraph, error) {
	if !g.HasNode(focus) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, focus)
	}

	visited := make(map[string]bool)
	component := bfsComponent(focus, g.adj, visited)
	return induced(g, component), nil
}

// Components returns the connected components of g, largest first and ties
// broken by first member. Isolated artifacts are included only when
// includeSingletons is set.
//
// Algorithm:
//  1. BFS from every unvisited node in sorted order.
//  2. Summarize each component's internal edges.
func Components(g *SimilarityGraph, includeSingletons bool) []Component {
	visited := make(map[string]bool, g.NodeCount())
	var out []Component

	for _, id := range g.Nodes() {
		if visited[id] {
			continue
		}
		members := bfsComponent(id, g.adj, visited)
		if len(members) < 2 && !includeSingletons {
			continue
		}
		sort.Strings(members)
		out = append(out, summarizeComponent(members, g.adj))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Members) != len(out[j].Members) {
			return len(out[i].Members) > len(out[j].Members)
		}
		return out[i].Members[0] < out[j].Members[0]
	})
	return out
}

// bfsComponent performs BFS from start on the adjacency map and returns all
// reachable nodes. It marks visited nodes as it goes.
func bfsComponent(start string, adj map[string]map[string]int, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for neighbor := range adj[node] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return component
}

// induced copies the subgraph of g over members into a fresh graph.
func induced(g *SimilarityGraph, members []string) *SimilarityGraph {
	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	out := NewSimilarityGraph()
	for _, m := range members {
		out.AddNode(m)
	}
	for _, m := range members {
		for n, w := range g.adj[m] {
			// Each undirected edge once.
			if memberSet[n] && m < n {
				// Endpoints are distinct, AddEdge cannot fail.
				_ = out.AddEdge(m, n, w)
			}
		}
	}
	return out
}

// summarizeComponent counts internal edges once (when m < neighbor) and
// aggregates their weights.
func summarizeComponent(members []string, adj map[string]map[string]int) Component {
	c := Component{Members: members}
	total := 0
	for _, m := range members {
		for n, w := range adj[m] {
			if m < n {
				c.EdgeCount++
				total += w
				if w > c.MaxWeight {
					c.MaxWeight = w
				}
			}
		}
	}
	if c.EdgeCount > 0 {
		c.MeanWeight = float64(total) / float64(c.EdgeCount)
	}
	c.Density = density(len(members), c.EdgeCount)
	return c
}
