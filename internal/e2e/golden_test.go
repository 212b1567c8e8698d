//go:build e2e

package e2e

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/konig/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

// renderOutputs builds the corpus graph and renders every deterministic
// export format, keyed by golden file name. The JSON export carries a
// timestamp and is left out.
func renderOutputs(t *testing.T) map[string][]byte {
	t.Helper()
	g, _ := buildFrom(t, writeCorpus(t, false), nil, 60, 1)

	var graphml bytes.Buffer
	require.NoError(t, export.WriteGraphML(&graphml, g))

	return map[string][]byte{
		"corpus.graphml": graphml.Bytes(),
		"corpus.mmd":     []byte(export.GenerateMermaid(g, export.MermaidOptions{})),
	}
}

// TestGolden compares export output against golden files. If golden files
// do not exist, the test is skipped with a message to run with -update.
func TestGolden(t *testing.T) {
	outputs := renderOutputs(t)
	gDir := goldenDir()

	for name, actual := range outputs {
		t.Run(name, func(t *testing.T) {
			golden, err := os.ReadFile(filepath.Join(gDir, name))
			if os.IsNotExist(err) {
				t.Skipf("golden file %s not found; run with -update to generate", name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(golden), string(actual), "output for %s does not match golden file", name)
		})
	}
}

// TestUpdateGolden regenerates golden files from the current output.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}

	gDir := goldenDir()
	require.NoError(t, os.MkdirAll(gDir, 0o755))

	for name, data := range renderOutputs(t) {
		require.NoError(t, os.WriteFile(filepath.Join(gDir, name), data, 0o644))
		t.Logf("updated %s", name)
	}
}
