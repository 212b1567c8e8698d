// Package hashdb persists hash tables as a JSON object mapping artifact id to
// digest, so later runs can skip re-hashing unchanged corpora.
package hashdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dusk-indust/konig/internal/fuzzy"
	"github.com/dusk-indust/konig/internal/hashcache"
	"github.com/dusk-indust/konig/internal/persist"
)

// ErrMalformedPersistedState is returned when a hash database cannot be
// parsed.
var ErrMalformedPersistedState = persist.ErrMalformedPersistedState

// Decode reads a hash table from r.
func Decode(r io.Reader) (hashcache.HashTable, error) {
	var raw map[string]string
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: hash db: %v", ErrMalformedPersistedState, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: hash db: trailing data after object", ErrMalformedPersistedState)
	}
	table := make(hashcache.HashTable, len(raw))
	for id, d := range raw {
		if id == "" {
			return nil, fmt.Errorf("%w: hash db: empty artifact id", ErrMalformedPersistedState)
		}
		table[id] = fuzzy.Digest(d)
	}
	return table, nil
}

// Encode writes table to w as an indented JSON object with sorted keys.
func Encode(w io.Writer, table hashcache.HashTable) error {
	raw := make(map[string]string, len(table))
	for id, d := range table {
		raw[id] = string(d)
	}
	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hash db: %w", err)
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

// Load reads the hash table stored at path. A missing file yields an error
// matching os.ErrNotExist.
func Load(path string) (hashcache.HashTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hash db: %w", err)
	}
	defer f.Close()
	table, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// LoadOrEmpty is Load, except that a missing file yields an empty table.
func LoadOrEmpty(path string) (hashcache.HashTable, error) {
	table, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return hashcache.HashTable{}, nil
	}
	return table, err
}

// Save writes table to path, replacing any existing file atomically.
func Save(path string, table hashcache.HashTable) error {
	return persist.WriteAtomic(path, func(w io.Writer) error { return Encode(w, table) })
}
