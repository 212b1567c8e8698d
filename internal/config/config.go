package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultThreshold is the similarity threshold used when neither the command
// line nor konig.yml sets one.
const DefaultThreshold = 90

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// ProjectConfig holds project-level settings loaded from konig.yml.
// Pointer fields distinguish "unset" from an explicit zero.
type ProjectConfig struct {
	Threshold    *int   `yaml:"threshold,omitempty"`
	HashDB       string `yaml:"hashDB,omitempty"`
	HashDir      string `yaml:"hashDir,omitempty"`
	Workers      int    `yaml:"workers,omitempty"`
	MaxArtifacts int    `yaml:"maxArtifacts,omitempty"`
	GraphDB      string `yaml:"graphDB,omitempty"`
}

// FileNames lists the config file names Load looks for, in order.
var FileNames = []string{"konig.yml", "konig.yaml"}

// Load attempts to read konig.yml or konig.yaml from the given directory.
// Returns a zero-value config (not an error) if no config file exists. A
// file that exists but cannot be parsed is an error.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return Parse(data, path)
	}
	return &ProjectConfig{}, nil
}

// LoadFile reads an explicit config file. Unlike Load, a missing file is an
// error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes YAML config data. name is used only in error messages.
func Parse(data []byte, name string) (*ProjectConfig, error) {
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &cfg, nil
}

// Overrides carries values set on the command line. Zero values and nil
// pointers mean "not given".
type Overrides struct {
	Threshold    *int
	HashDB       string
	HashDir      string
	Workers      int
	MaxArtifacts int
	GraphDB      string
}

// Settings are the effective values after defaults, file and flags have
// been layered.
type Settings struct {
	Threshold    int
	HashDB       string
	HashDir      string
	Workers      int
	MaxArtifacts int
	GraphDB      string
}

// Resolve layers defaults, then cfg, then o. cfg may be nil.
func Resolve(cfg *ProjectConfig, o Overrides) Settings {
	s := Settings{Threshold: DefaultThreshold, HashDir: "."}
	if cfg != nil {
		if cfg.Threshold != nil {
			s.Threshold = *cfg.Threshold
		}
		s.HashDB = pick(cfg.HashDB, s.HashDB)
		s.HashDir = pick(cfg.HashDir, s.HashDir)
		s.GraphDB = pick(cfg.GraphDB, s.GraphDB)
		if cfg.Workers != 0 {
			s.Workers = cfg.Workers
		}
		if cfg.MaxArtifacts != 0 {
			s.MaxArtifacts = cfg.MaxArtifacts
		}
	}

	if o.Threshold != nil {
		s.Threshold = *o.Threshold
	}
	s.HashDB = pick(o.HashDB, s.HashDB)
	s.HashDir = pick(o.HashDir, s.HashDir)
	s.GraphDB = pick(o.GraphDB, s.GraphDB)
	if o.Workers != 0 {
		s.Workers = o.Workers
	}
	if o.MaxArtifacts != 0 {
		s.MaxArtifacts = o.MaxArtifacts
	}
	return s
}

// Validate checks value ranges that do not depend on other packages.
// Threshold range checking belongs to the graph builder.
func (s Settings) Validate() error {
	if s.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, s.Workers)
	}
	if s.MaxArtifacts < 0 {
		return fmt.Errorf("%w: maxArtifacts must be >= 0, got %d", ErrInvalidConfig, s.MaxArtifacts)
	}
	if s.HashDir == "" {
		return fmt.Errorf("%w: hashDir is empty", ErrInvalidConfig)
	}
	return nil
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
