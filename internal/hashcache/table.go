// Package hashcache maps artifacts to fuzzy digests, reusing digests that
// were computed in an earlier run instead of re-reading the content.
package hashcache

import (
	"sort"

	"github.com/dusk-indust/konig/internal/fuzzy"
)

// ArtifactID identifies one file within a scan: its name inside the scanned
// directory.
type ArtifactID = string

// HashTable maps each artifact to its digest.
type HashTable map[ArtifactID]fuzzy.Digest

// Keys returns the artifact ids in ascending order.
func (h HashTable) Keys() []ArtifactID {
	keys := make([]ArtifactID, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of h. A nil table clones to an empty one.
func (h HashTable) Clone() HashTable {
	out := make(HashTable, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
