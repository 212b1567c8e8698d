package hashdb

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dusk-indust/konig/internal/hashcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hashes.json")
	table := hashcache.HashTable{
		"dropper.exe": "96:Qk3x:Qk3y",
		"loader.dll":  "192:abc:def",
	}

	require.NoError(t, Save(path, table))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, table, got)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEncode_SortedKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, hashcache.HashTable{"b": "2", "a": "1"}))
	assert.Equal(t, "{\n  \"a\": \"1\",\n  \"b\": \"2\"\n}\n", buf.String())
}

func TestDecode_Malformed(t *testing.T) {
	inputs := map[string]string{
		"not json":      "not json",
		"array":         `["a","b"]`,
		"non-string":    `{"a": 1}`,
		"trailing data": `{"a": "1"} {"b": "2"}`,
		"empty id":      `{"": "1"}`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(in))
			assert.ErrorIs(t, err, ErrMalformedPersistedState)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	table, err := LoadOrEmpty(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestLoadOrEmpty_MalformedStillFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := LoadOrEmpty(path)
	assert.ErrorIs(t, err, ErrMalformedPersistedState)
}
