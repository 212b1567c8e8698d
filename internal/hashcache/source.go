package hashcache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Source enumerates artifacts and opens their content.
type Source interface {
	List(ctx context.Context) ([]ArtifactID, error)
	Open(ctx context.Context, id ArtifactID) (io.ReadCloser, error)
}

// Compile-time assertion: DirSource satisfies Source.
var _ Source = (*DirSource)(nil)

// DirSource serves the regular files directly inside one directory.
// Subdirectories are not descended into.
type DirSource struct {
	Dir string
}

// NewDirSource returns a Source over dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// List returns the names of the regular files in the directory, sorted.
func (d *DirSource) List(ctx context.Context) ([]ArtifactID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.Dir, err)
	}
	ids := make([]ArtifactID, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Open opens the named file for reading.
func (d *DirSource) Open(ctx context.Context, id ArtifactID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id != filepath.Base(id) {
		return nil, fmt.Errorf("artifact id %q is not a plain file name", id)
	}
	return os.Open(filepath.Join(d.Dir, id))
}
