//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/hashcache"
	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path. KuzuDB creates the database itself when it does not exist.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Artifact(
		id STRING,
		digest STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS SIMILAR(FROM Artifact TO Artifact, weight INT64)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddArtifact inserts an Artifact node.
func (s *KuzuStore) AddArtifact(_ context.Context, node ArtifactNode) error {
	return s.exec(
		"CREATE (a:Artifact {id: $id, digest: $digest})",
		map[string]any{
			"id":     node.ID,
			"digest": string(node.Digest),
		},
	)
}

// AddSimilarity inserts a SIMILAR relationship. Relationships are stored
// once, directed from the smaller id to the larger, and read undirected.
func (s *KuzuStore) AddSimilarity(ctx context.Context, edge Edge) error {
	if edge.Source == edge.Target {
		return fmt.Errorf("%w: %q", ErrSelfLoop, edge.Source)
	}
	src, dst := edge.Source, edge.Target
	if dst < src {
		src, dst = dst, src
	}
	for _, id := range []string{src, dst} {
		a, err := s.GetArtifact(ctx, id)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: %q", ErrUnknownArtifact, id)
		}
	}
	return s.exec(
		`MATCH (a:Artifact {id: $src}), (b:Artifact {id: $dst})
		 CREATE (a)-[:SIMILAR {weight: $w}]->(b)`,
		map[string]any{
			"src": src,
			"dst": dst,
			"w":   int64(edge.Weight),
		},
	)
}

// ---------- Read operations ----------

// GetArtifact retrieves a single Artifact node by id, or nil if not found.
func (s *KuzuStore) GetArtifact(_ context.Context, id string) (*ArtifactNode, error) {
	rows, err := s.query(
		"MATCH (a:Artifact {id: $id}) RETURN a.id, a.digest",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &ArtifactNode{
		ID:     toString(rows[0][0]),
		Digest: fuzzy.Digest(toString(rows[0][1])),
	}, nil
}

// GetNeighbors returns up to limit neighbors of id by descending weight.
// A limit <= 0 returns all of them.
func (s *KuzuStore) GetNeighbors(ctx context.Context, id string, limit int) ([]Neighbor, error) {
	a, err := s.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, id)
	}

	cypher := `MATCH (a:Artifact {id: $id})-[r:SIMILAR]-(b:Artifact)
		 RETURN b.id, r.weight
		 ORDER BY r.weight DESC, b.id`
	params := map[string]any{"id": id}
	if limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]Neighbor, 0, len(rows))
	for _, r := range rows {
		out = append(out, Neighbor{ID: toString(r[0]), Weight: toInt(r[1])})
	}
	return out, nil
}

// LoadGraph reads every Artifact and SIMILAR relationship into a new graph.
func (s *KuzuStore) LoadGraph(_ context.Context) (*SimilarityGraph, error) {
	nodeRows, err := s.query("MATCH (a:Artifact) RETURN a.id", nil)
	if err != nil {
		return nil, err
	}
	g := NewSimilarityGraph()
	for _, r := range nodeRows {
		g.AddNode(toString(r[0]))
	}

	edgeRows, err := s.query(
		"MATCH (a:Artifact)-[r:SIMILAR]->(b:Artifact) RETURN a.id, b.id, r.weight",
		nil,
	)
	if err != nil {
		return nil, err
	}
	for _, r := range edgeRows {
		if err := g.AddEdge(toString(r[0]), toString(r[1]), toInt(r[2])); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// LoadHashes returns the digests of every stored artifact that has one.
func (s *KuzuStore) LoadHashes(_ context.Context) (hashcache.HashTable, error) {
	rows, err := s.query("MATCH (a:Artifact) WHERE a.digest <> '' RETURN a.id, a.digest", nil)
	if err != nil {
		return nil, err
	}
	out := make(hashcache.HashTable, len(rows))
	for _, r := range rows {
		out[toString(r[0])] = fuzzy.Digest(toString(r[1]))
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns node and relationship counts and the resulting density.
func (s *KuzuStore) Stats(_ context.Context) (*Stats, error) {
	nodes, err := s.count("MATCH (a:Artifact) RETURN count(a)")
	if err != nil {
		return nil, err
	}
	edges, err := s.count("MATCH ()-[r:SIMILAR]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &Stats{
		NodeCount: nodes,
		EdgeCount: edges,
		Density:   density(nodes, edges),
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// PersistKuzu replaces the KuzuDB at dbPath with g and its digests.
//
// The database is built in a staging directory beside dbPath and moved into
// place only once complete. An existing dbPath is replaced only when konig
// installed it (or it is an empty directory); anything else fails with
// ErrNotGraphDB and is left untouched.
func PersistKuzu(ctx context.Context, dbPath string, g *SimilarityGraph, hashes hashcache.HashTable) error {
	if err := checkReplaceable(dbPath); err != nil {
		return err
	}
	parent := filepath.Dir(dbPath)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(dbPath)+".build-*")
	if err != nil {
		return fmt.Errorf("kuzu: create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	dst, err := NewKuzuFileStore(filepath.Join(staging, stagedDBName))
	if err != nil {
		return err
	}
	if err := Save(ctx, dst, g, hashes); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("kuzu: close staged database: %w", err)
	}
	return installStaged(staging, dbPath)
}

// LoadKuzu opens the existing KuzuDB at dbPath and returns its graph and
// digests.
func LoadKuzu(ctx context.Context, dbPath string) (*SimilarityGraph, hashcache.HashTable, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil, fmt.Errorf("no graph found at %s: %w", dbPath, err)
	}
	src, err := NewKuzuFileStore(dbPath)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	g, err := src.LoadGraph(ctx)
	if err != nil {
		return nil, nil, err
	}
	hashes, err := src.LoadHashes(ctx)
	if err != nil {
		return nil, nil, err
	}
	return g, hashes, nil
}
