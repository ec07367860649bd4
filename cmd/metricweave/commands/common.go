package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/metricweave/internal/config"
	"git.home.luguber.info/inful/metricweave/internal/weave"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"metricweave.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Weave WeaveCmd `cmd:"" default:"withargs" help:"Weave instrumentation into annotated functions"`
	Check CheckCmd `cmd:"" help:"Resolve annotations and report derived metrics without writing"`
	Watch WatchCmd `cmd:"" help:"Re-weave continuously when sources change"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig resolves the effective configuration for a run: file values
// (when the file exists) overridden by command-line flags.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.LoadOrDefault(root.Config)
}

// weaveOptions merges config and per-command flags into weaver options.
// Flag values win over file values.
func weaveOptions(cfg *config.Config, global *Global, patterns []string, output string, write, force bool) weave.Options {
	opts := weave.Options{
		Patterns:      cfg.Packages,
		Exclude:       cfg.Exclude,
		OutputDir:     cfg.Output.Directory,
		InPlace:       cfg.Output.Write,
		CachePath:     cfg.Cache.Path,
		CacheDisabled: cfg.Cache.Disabled,
		Force:         force,
		Logger:        global.Logger,
	}
	if len(patterns) > 0 {
		opts.Patterns = patterns
	}
	if write {
		opts.InPlace = true
		opts.OutputDir = ""
	} else if output != "" {
		opts.OutputDir = output
		opts.InPlace = false
	}
	return opts
}
