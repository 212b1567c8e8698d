// Package fuzzy defines the digest capability the similarity analysis is
// built on: turn a byte stream into a locality-sensitive digest, and score
// how close two digests are.
package fuzzy

import (
	"context"
	"errors"
	"io"
)

// Digest is an opaque locality-sensitive fingerprint of one artifact's bytes.
type Digest string

// MaxScore is the similarity of two digests of identical content.
const MaxScore = 100

// ErrMalformedDigest is returned by Compare when either digest cannot be
// parsed.
var ErrMalformedDigest = errors.New("fuzzy: malformed digest")

// Provider computes and compares digests. Implementations must be
// deterministic per content, and Compare must be symmetric and return a
// score in [0, MaxScore].
type Provider interface {
	Digest(ctx context.Context, r io.Reader) (Digest, error)
	Compare(a, b Digest) (int, error)
}

// Comparer is the subset of Provider needed to score pairs.
type Comparer interface {
	Compare(a, b Digest) (int, error)
}

// CompareFunc adapts a plain function to Comparer.
type CompareFunc func(a, b Digest) (int, error)

// Compare calls f(a, b).
func (f CompareFunc) Compare(a, b Digest) (int, error) {
	return f(a, b)
}
