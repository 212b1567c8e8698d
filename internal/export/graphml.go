package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/dusk-indust/konig/internal/graph"
)

const graphMLNamespace = "http://graphml.graphdrawing.org/xmlns"

type graphML struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphMLKey `xml:"key"`
	Graph   graphMLGraph `xml:"graph"`
}

type graphMLKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphMLGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLNode struct {
	ID string `xml:"id,attr"`
}

type graphMLEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphMLData `xml:"data"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// WriteGraphML writes g as an undirected GraphML document. Edge weights are
// stored under the "weight" key so tools like Gephi and networkx pick them up.
func WriteGraphML(w io.Writer, g *graph.SimilarityGraph) error {
	if g == nil {
		g = graph.NewSimilarityGraph()
	}
	doc := graphML{
		XMLNS: graphMLNamespace,
		Keys: []graphMLKey{
			{ID: "weight", For: "edge", AttrName: "weight", AttrType: "int"},
		},
		Graph: graphMLGraph{ID: "G", EdgeDefault: "undirected"},
	}
	for _, id := range g.Nodes() {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphMLNode{ID: id})
	}
	for _, e := range g.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphMLEdge{
			Source: e.Source,
			Target: e.Target,
			Data:   []graphMLData{{Key: "weight", Value: strconv.Itoa(e.Weight)}},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write graphml: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode graphml: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write graphml: %w", err)
	}
	return nil
}
