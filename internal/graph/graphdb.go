package graph

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotGraphDB is returned when a graph database path already holds
// something konig did not write there.
var ErrNotGraphDB = errors.New("not a konig graph database")

// graphDBMarker is written next to every graph database konig installs.
// Only paths carrying it (or nothing at all) are ever replaced.
const graphDBMarker = ".konig-graph"

// stagedDBName is the database name used inside a staging directory.
const stagedDBName = "db"

func markerPath(dbPath string) string { return dbPath + graphDBMarker }

// checkReplaceable returns nil when dbPath is absent, an empty directory, or
// a database konig installed earlier. Anything else is ErrNotGraphDB.
func checkReplaceable(dbPath string) error {
	info, err := os.Lstat(dbPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect graph database path: %w", err)
	}
	if _, err := os.Stat(markerPath(dbPath)); err == nil {
		return nil
	}
	if info.IsDir() {
		entries, err := os.ReadDir(dbPath)
		if err != nil {
			return fmt.Errorf("inspect graph database path: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: %s exists and was not created by konig", ErrNotGraphDB, dbPath)
}

// installStaged moves a database built under staging/stagedDBName (plus any
// companion files such as its write-ahead log) to dbPath, replacing the
// previous database, and writes the marker. dbPath must have passed
// checkReplaceable.
//
// The marker lists the suffixes installed, one per line, so the next
// install removes exactly those paths and nothing else.
func installStaged(staging, dbPath string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("read staging directory: %w", err)
	}

	for _, suffix := range installedSuffixes(dbPath) {
		if err := os.RemoveAll(dbPath + suffix); err != nil {
			return fmt.Errorf("remove old graph database: %w", err)
		}
	}

	var installed []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, stagedDBName) {
			continue
		}
		suffix := strings.TrimPrefix(name, stagedDBName)
		if err := os.Rename(filepath.Join(staging, name), dbPath+suffix); err != nil {
			return fmt.Errorf("install graph database: %w", err)
		}
		installed = append(installed, suffix)
	}

	content := "konig graph database\n"
	for _, suffix := range installed {
		content += "path " + suffix + "\n"
	}
	if err := os.WriteFile(markerPath(dbPath), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write graph database marker: %w", err)
	}
	return nil
}

// installedSuffixes returns the suffixes recorded by the previous install.
// dbPath itself is always included.
func installedSuffixes(dbPath string) []string {
	out := []string{""}
	data, err := os.ReadFile(markerPath(dbPath))
	if err != nil {
		return out
	}
	for _, line := range strings.Split(string(data), "\n") {
		suffix, ok := strings.CutPrefix(line, "path ")
		if !ok || suffix == "" || strings.ContainsAny(suffix, `/\`) {
			continue
		}
		out = append(out, suffix)
	}
	return out
}
