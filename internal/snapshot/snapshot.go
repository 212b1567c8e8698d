// Package snapshot stores similarity graphs in a compact, versioned binary
// form: an 8-byte magic followed by a protobuf-encoded message with an
// explicit schema.
//
//	Snapshot {
//	  1: version   uint32   (required, currently 1)
//	  2: threshold sint64   (the threshold the graph was built with)
//	  3: node      string   (repeated; every artifact id)
//	  4: edge      Edge     (repeated)
//	}
//	Edge {
//	  1: source string
//	  2: target string
//	  3: weight uint32 (0–100)
//	}
//
// Decoding only ever rebuilds nodes and weighted edges. Unknown fields are
// skipped so older readers accept snapshots from newer minor revisions.
package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/graph"
	"github.com/dusk-indust/konig/internal/persist"
	"google.golang.org/protobuf/encoding/protowire"
)

// Version is the schema version written by this package.
const Version = 1

// Magic prefixes every snapshot.
const Magic = "KONIGSNP"

// ErrMalformedPersistedState is returned for any snapshot that cannot be
// decoded.
var ErrMalformedPersistedState = persist.ErrMalformedPersistedState

const (
	fieldVersion   protowire.Number = 1
	fieldThreshold protowire.Number = 2
	fieldNode      protowire.Number = 3
	fieldEdge      protowire.Number = 4

	fieldEdgeSource protowire.Number = 1
	fieldEdgeTarget protowire.Number = 2
	fieldEdgeWeight protowire.Number = 3
)

// Snapshot is a graph together with the threshold it was built at.
type Snapshot struct {
	Threshold int
	Graph     *graph.SimilarityGraph
}

// Marshal encodes s.
func Marshal(s Snapshot) []byte {
	b := []byte(Magic)
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)
	b = protowire.AppendTag(b, fieldThreshold, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(s.Threshold)))

	g := s.Graph
	if g == nil {
		g = graph.NewSimilarityGraph()
	}
	for _, n := range g.Nodes() {
		b = protowire.AppendTag(b, fieldNode, protowire.BytesType)
		b = protowire.AppendString(b, n)
	}
	for _, e := range g.Edges() {
		var eb []byte
		eb = protowire.AppendTag(eb, fieldEdgeSource, protowire.BytesType)
		eb = protowire.AppendString(eb, e.Source)
		eb = protowire.AppendTag(eb, fieldEdgeTarget, protowire.BytesType)
		eb = protowire.AppendString(eb, e.Target)
		eb = protowire.AppendTag(eb, fieldEdgeWeight, protowire.VarintType)
		eb = protowire.AppendVarint(eb, uint64(e.Weight))

		b = protowire.AppendTag(b, fieldEdge, protowire.BytesType)
		b = protowire.AppendBytes(b, eb)
	}
	return b
}

// Unmarshal decodes a snapshot produced by Marshal.
func Unmarshal(data []byte) (*Snapshot, error) {
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return nil, malformed("missing magic header")
	}
	b := data[len(Magic):]

	var (
		version   uint64
		threshold int64
		nodes     []string
		edges     []graph.Edge
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, malformed("tag: %v", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, malformed("version: %v", protowire.ParseError(n))
			}
			version, b = v, b[n:]
		case num == fieldThreshold && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, malformed("threshold: %v", protowire.ParseError(n))
			}
			threshold, b = protowire.DecodeZigZag(v), b[n:]
		case num == fieldNode && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, malformed("node: %v", protowire.ParseError(n))
			}
			nodes, b = append(nodes, v), b[n:]
		case num == fieldEdge && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, malformed("edge: %v", protowire.ParseError(n))
			}
			e, err := unmarshalEdge(v)
			if err != nil {
				return nil, err
			}
			edges, b = append(edges, e), b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, malformed("field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if version == 0 {
		return nil, malformed("missing version")
	}
	if version > Version {
		return nil, malformed("unsupported version %d (max %d)", version, Version)
	}

	known := make(map[string]bool, len(nodes))
	for _, id := range nodes {
		if known[id] {
			return nil, malformed("duplicate node %q", id)
		}
		known[id] = true
	}
	for _, e := range edges {
		if !known[e.Source] || !known[e.Target] {
			return nil, malformed("edge %q-%q references an undeclared node", e.Source, e.Target)
		}
	}
	g, err := graph.FromParts(nodes, edges)
	if err != nil {
		return nil, malformed("%v", err)
	}
	if g.EdgeCount() != len(edges) {
		return nil, malformed("duplicate edges")
	}
	return &Snapshot{Threshold: int(threshold), Graph: g}, nil
}

func unmarshalEdge(b []byte) (graph.Edge, error) {
	var e graph.Edge
	var weight uint64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, malformed("edge tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldEdgeSource && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return e, malformed("edge source: %v", protowire.ParseError(n))
			}
			e.Source, b = v, b[n:]
		case num == fieldEdgeTarget && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return e, malformed("edge target: %v", protowire.ParseError(n))
			}
			e.Target, b = v, b[n:]
		case num == fieldEdgeWeight && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return e, malformed("edge weight: %v", protowire.ParseError(n))
			}
			weight, b = v, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return e, malformed("edge field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if weight > fuzzy.MaxScore {
		return e, malformed("edge weight %d out of range", weight)
	}
	e.Weight = int(weight)
	return e, nil
}

// Encode writes the snapshot to w.
func Encode(w io.Writer, s Snapshot) error {
	_, err := w.Write(Marshal(s))
	return err
}

// Decode reads a whole snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Unmarshal(data)
}

// Save writes s to path atomically.
func Save(path string, s Snapshot) error {
	return persist.WriteAtomic(path, func(w io.Writer) error { return Encode(w, s) })
}

// Load reads the snapshot at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: snapshot: %s", ErrMalformedPersistedState, fmt.Sprintf(format, args...))
}
