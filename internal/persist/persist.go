// Package persist holds what every on-disk format shares: atomic file
// replacement and the error reported for state that cannot be decoded.
package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrMalformedPersistedState is returned when a hash database or graph
// snapshot cannot be decoded. Callers decide whether to start over or abort.
var ErrMalformedPersistedState = errors.New("malformed persisted state")

// WriteAtomic creates path's parent directory if needed, writes to a temporary
// file beside path and renames it over path once fully written. On any
// error path is left untouched.
func WriteAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
