package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/konig/internal/graph"
)

// GraphExport is the top-level JSON export structure: a node-link document
// that downstream tooling can load without knowing anything about digests.
type GraphExport struct {
	ExportedAt string            `json:"exportedAt"`
	Threshold  int               `json:"threshold"`
	Stats      graph.Stats       `json:"stats"`
	Nodes      []NodeExport      `json:"nodes"`
	Links      []graph.Edge      `json:"links"`
	Components []graph.Component `json:"components,omitempty"`
}

// NodeExport describes one artifact in the document.
type NodeExport struct {
	ID        string `json:"id"`
	Degree    int    `json:"degree"`
	Component int    `json:"component"` // index into Components, -1 when isolated
}

// ExportGraph builds a GraphExport from g. Only components with at least two
// members are listed; isolated artifacts carry component -1.
func ExportGraph(g *graph.SimilarityGraph, threshold int) *GraphExport {
	if g == nil {
		g = graph.NewSimilarityGraph()
	}
	comps := graph.Components(g, false)
	owner := make(map[string]int)
	for i, c := range comps {
		for _, m := range c.Members {
			owner[m] = i
		}
	}

	doc := &GraphExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Threshold:  threshold,
		Stats:      graph.Summarize(g),
		Nodes:      []NodeExport{},
		Links:      g.Edges(),
		Components: comps,
	}
	for _, id := range g.Nodes() {
		c, ok := owner[id]
		if !ok {
			c = -1
		}
		doc.Nodes = append(doc.Nodes, NodeExport{ID: id, Degree: g.Degree(id), Component: c})
	}
	if doc.Links == nil {
		doc.Links = []graph.Edge{}
	}
	return doc
}

// WriteJSON writes the node-link document for g to w.
func WriteJSON(w io.Writer, g *graph.SimilarityGraph, threshold int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ExportGraph(g, threshold)); err != nil {
		return fmt.Errorf("encode graph json: %w", err)
	}
	return nil
}
