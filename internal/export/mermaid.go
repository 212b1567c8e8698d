package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/konig/internal/graph"
)

// MermaidOptions tunes GenerateMermaid.
type MermaidOptions struct {
	// HideIsolated drops artifacts with no edges from the diagram.
	HideIsolated bool
	// MaxNodes caps the number of rendered artifacts; 0 means unlimited.
	// Larger components are kept first.
	MaxNodes int
}

// GenerateMermaid produces a Mermaid graph LR diagram from g. Components with
// two or more members become subgraphs; similarity edges become undirected
// links labelled with their score.
func GenerateMermaid(g *graph.SimilarityGraph, opts MermaidOptions) string {
	if g == nil {
		g = graph.NewSimilarityGraph()
	}

	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", len(nodeIDs))
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	rendered := make(map[string]bool)
	budget := func() bool { return opts.MaxNodes <= 0 || len(rendered) < opts.MaxNodes }

	for i, c := range graph.Components(g, !opts.HideIsolated) {
		if !budget() {
			break
		}
		if len(c.Members) == 1 {
			id := c.Members[0]
			rendered[id] = true
			fmt.Fprintf(&sb, "  %s[\"%s\"]\n", getID(id), label(id))
			continue
		}
		fmt.Fprintf(&sb, "  subgraph C%d[\"cluster %d (%d)\"]\n", i, i+1, len(c.Members))
		for _, m := range c.Members {
			if !budget() {
				break
			}
			rendered[m] = true
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", getID(m), label(m))
		}
		sb.WriteString("  end\n")
	}

	for _, e := range g.Edges() {
		if !rendered[e.Source] || !rendered[e.Target] {
			continue
		}
		fmt.Fprintf(&sb, "  %s ---|%d| %s\n", getID(e.Source), e.Weight, getID(e.Target))
	}
	return sb.String()
}

// label shortens an artifact id to its base name and strips characters
// Mermaid treats as syntax.
func label(id string) string {
	s := filepath.Base(filepath.ToSlash(id))
	return strings.NewReplacer(`"`, "'", "[", "(", "]", ")").Replace(s)
}
