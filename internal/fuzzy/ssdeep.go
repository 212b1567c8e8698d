package fuzzy

import (
	"context"
	"fmt"
	"io"

	"github.com/glaslos/ssdeep"
)

func init() {
	// Digest every input, however small. Without this the library refuses
	// anything of 4096 bytes or less. Set once here, before any goroutine
	// can call FuzzyBytes.
	ssdeep.Force = true
}

// Compile-time assertion: SSDeep satisfies Provider.
var _ Provider = SSDeep{}

// SSDeep is the context-triggered piecewise hashing provider.
type SSDeep struct{}

// Digest reads r to EOF and returns its ssdeep digest. Inputs of any length
// are accepted; very small ones produce short digests that rarely match.
func (SSDeep) Digest(ctx context.Context, r io.Reader) (Digest, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	h, err := ssdeep.FuzzyBytes(data)
	if err != nil {
		return "", fmt.Errorf("ssdeep: %w", err)
	}
	return Digest(h), nil
}

// Compare returns the ssdeep match score of a and b, 0 (unrelated) to 100.
func (SSDeep) Compare(a, b Digest) (int, error) {
	score, err := ssdeep.Distance(string(a), string(b))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
	return score, nil
}
