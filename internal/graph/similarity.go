package graph

import (
	"fmt"
	"sort"
)

// SimilarityGraph is an undirected, weighted graph over artifact ids.
// There are no self-loops and at most one edge per unordered pair.
// The zero value is not usable; use NewSimilarityGraph.
type SimilarityGraph struct {
	adj   map[string]map[string]int
	edges int
}

// NewSimilarityGraph returns an empty graph.
func NewSimilarityGraph() *SimilarityGraph {
	return &SimilarityGraph{adj: make(map[string]map[string]int)}
}

// AddNode adds id as a node. Adding an existing node is a no-op.
func (g *SimilarityGraph) AddNode(id string) {
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[string]int)
	}
}

// AddEdge connects a and b with the given weight, adding either endpoint as
// a node if needed. If the pair is already connected its weight is replaced;
// the pair never gets a second edge.
func (g *SimilarityGraph) AddEdge(a, b string, weight int) error {
	if a == b {
		return fmt.Errorf("%w: %q", ErrSelfLoop, a)
	}
	g.AddNode(a)
	g.AddNode(b)
	if _, exists := g.adj[a][b]; !exists {
		g.edges++
	}
	g.adj[a][b] = weight
	g.adj[b][a] = weight
	return nil
}

// HasNode reports whether id is a node.
func (g *SimilarityGraph) HasNode(id string) bool {
	_, ok := g.adj[id]
	return ok
}

// Weight returns the weight of edge (a, b) and whether it exists.
func (g *SimilarityGraph) Weight(a, b string) (int, bool) {
	w, ok := g.adj[a][b]
	return w, ok
}

// NodeCount returns the number of nodes.
func (g *SimilarityGraph) NodeCount() int { return len(g.adj) }

// EdgeCount returns the number of undirected edges.
func (g *SimilarityGraph) EdgeCount() int { return g.edges }

// Degree returns the number of edges incident to id.
func (g *SimilarityGraph) Degree(id string) int { return len(g.adj[id]) }

// Nodes returns all node ids, sorted.
func (g *SimilarityGraph) Nodes() []string {
	out := make([]string, 0, len(g.adj))
	for id := range g.adj {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Edges returns every edge once, with Source < Target, sorted by
// (Source, Target).
func (g *SimilarityGraph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for a, nbrs := range g.adj {
		for b, w := range nbrs {
			if a < b {
				out = append(out, Edge{Source: a, Target: b, Weight: w})
			}
		}
	}
	sortEdges(out)
	return out
}

// Neighbors returns the artifacts adjacent to id, highest weight first and
// ties broken by id.
func (g *SimilarityGraph) Neighbors(id string) []Neighbor {
	nbrs := g.adj[id]
	out := make([]Neighbor, 0, len(nbrs))
	for n, w := range nbrs {
		out = append(out, Neighbor{ID: n, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Clone returns a deep copy of g.
func (g *SimilarityGraph) Clone() *SimilarityGraph {
	out := &SimilarityGraph{adj: make(map[string]map[string]int, len(g.adj)), edges: g.edges}
	for id, nbrs := range g.adj {
		cp := make(map[string]int, len(nbrs))
		for n, w := range nbrs {
			cp[n] = w
		}
		out.adj[id] = cp
	}
	return out
}

// FromParts assembles a graph from a node list and an edge list. Edge
// endpoints missing from nodes are added as nodes.
func FromParts(nodes []string, edges []Edge) (*SimilarityGraph, error) {
	g := NewSimilarityGraph()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		if err := g.AddEdge(e.Source, e.Target, e.Weight); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
}
