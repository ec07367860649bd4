package commands

import (
	"context"

	"git.home.luguber.info/inful/metricweave/internal/weave"
)

// WeaveCmd implements the 'weave' command.
type WeaveCmd struct {
	Patterns []string `arg:"" optional:"" help:"Package patterns to weave (default from config, else ./...)"`
	Output   string   `short:"o" help:"Output directory for woven sources (mirror mode)"`
	Write    bool     `short:"w" help:"Rewrite sources in place instead of mirroring"`
	Force    bool     `help:"Weave even when the incremental cache reports no changes"`
}

func (w *WeaveCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	opts := weaveOptions(cfg, global, w.Patterns, w.Output, w.Write, w.Force)
	result, err := weave.New(opts).Run(context.Background())
	if err != nil {
		return err
	}

	global.Logger.Info("weave finished",
		"functions", result.FunctionsWoven,
		"files", result.FilesWoven,
		"cache_hits", result.FilesSkipped)
	return nil
}
