package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/konig/internal/config"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Directory    string
	Threshold    int
	Output       string
	Input        string
	File         string
	Export       string
	JSON         string
	Load         string
	Save         string
	NoPlot       bool
	Config       string
	Workers      int
	MaxArtifacts int
	GraphDB      string
	ServeMCP     bool
	Addr         string
	Verbose      bool
	Version      bool

	thresholdSet bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags cliFlags

	fs := flag.NewFlagSet("konig", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&flags.Directory, "directory", "", "directory of files to be hashed (default: hashDir from konig.yml, else .)")
	fs.IntVar(&flags.Threshold, "threshold", config.DefaultThreshold, "minimum similarity score (0-101) for two files to be related")
	fs.StringVar(&flags.Output, "output", "", "file to save the fuzzy hash database to (JSON)")
	fs.StringVar(&flags.Input, "input", "", "JSON file with existing fuzzy hashes (default: hashDB from konig.yml)")
	fs.StringVar(&flags.File, "file", "", "restrict the graph to the component containing this file")
	fs.StringVar(&flags.Export, "export", "", "file to export the graph to (GraphML)")
	fs.StringVar(&flags.JSON, "json", "", "file to export the graph to (JSON node-link)")
	fs.StringVar(&flags.Load, "load", "", "load a saved graph snapshot instead of hashing")
	fs.StringVar(&flags.Save, "save", "", "save the graph snapshot to this file")
	fs.BoolVar(&flags.NoPlot, "noplot", false, "do not print the Mermaid diagram")
	fs.StringVar(&flags.Config, "config", "", "config file (default: konig.yml or konig.yaml in the working directory)")
	fs.IntVar(&flags.Workers, "workers", 0, "parallel hashing and comparison workers (default 8 for hashing, 1 for comparison)")
	fs.IntVar(&flags.MaxArtifacts, "max-artifacts", 0, "refuse to compare more than this many files (0: unlimited)")
	fs.StringVar(&flags.GraphDB, "graph-db", "", "KuzuDB directory to persist the graph to (requires cgo)")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as an MCP server over streamable HTTP")
	fs.StringVar(&flags.Addr, "addr", "localhost:8390", "listen address for -serve-mcp")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			flags.thresholdSet = true
		}
	})

	if flags.Version {
		fmt.Fprintln(stdout, version)
		return nil
	}

	level := slog.LevelInfo
	if flags.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	settings, err := loadSettings(flags)
	if err != nil {
		return err
	}

	if flags.ServeMCP {
		return runServeMCP(ctx, flags, settings, logger)
	}
	return runPipeline(ctx, flags, settings, logger, stdout, stderr)
}

// loadSettings layers konig.yml (or -config) and command-line flags.
func loadSettings(flags cliFlags) (config.Settings, error) {
	var (
		cfg *config.ProjectConfig
		err error
	)
	if flags.Config != "" {
		cfg, err = config.LoadFile(flags.Config)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return config.Settings{}, fmt.Errorf("load config: %w", err)
	}

	o := config.Overrides{
		HashDB:       flags.Input,
		HashDir:      flags.Directory,
		Workers:      flags.Workers,
		MaxArtifacts: flags.MaxArtifacts,
		GraphDB:      flags.GraphDB,
	}
	if flags.thresholdSet {
		t := flags.Threshold
		o.Threshold = &t
	}

	s := config.Resolve(cfg, o)
	if err := s.Validate(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}
