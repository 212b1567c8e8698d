//go:build e2e

package e2e

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeCorpus lays out a deterministic sample directory:
//
//	alpha.bin, alpha-copy.bin, alpha-copy2.bin   identical bytes
//	alpha-patched.bin                            alpha with a few bytes changed
//	beta.bin, beta-copy.bin                      identical bytes
//	noise-0.bin .. noise-2.bin                   unrelated
//	tiny.txt                                     a few bytes, only when withTiny is set
func writeCorpus(t *testing.T, withTiny bool) string {
	t.Helper()
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(1))

	random := func(n int) []byte {
		b := make([]byte, n)
		rng.Read(b)
		return b
	}
	write := func(name string, data []byte) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	alpha := random(32 * 1024)
	write("alpha.bin", alpha)
	write("alpha-copy.bin", alpha)
	write("alpha-copy2.bin", alpha)

	patched := append([]byte(nil), alpha...)
	for i := 0; i < 8; i++ {
		patched[rng.Intn(len(patched))] ^= 0xff
	}
	write("alpha-patched.bin", patched)

	beta := random(24 * 1024)
	write("beta.bin", beta)
	write("beta-copy.bin", beta)

	for i := range 3 {
		write("noise-"+string(rune('0'+i))+".bin", random(20*1024))
	}

	if withTiny {
		write("tiny.txt", []byte("too small to fingerprint"))
	}
	return dir
}
