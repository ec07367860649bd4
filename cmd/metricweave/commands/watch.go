package commands

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/metricweave/internal/watch"
	"git.home.luguber.info/inful/metricweave/internal/weave"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Root  string        `short:"r" default:"." help:"Directory tree to watch"`
	Quiet time.Duration `default:"500ms" help:"Debounce window before re-weaving"`
}

func (w *WatchCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	opts := weaveOptions(cfg, global, nil, "", false, false)
	opts.Dir = w.Root

	ignore := []string{"vendor"}
	if !opts.InPlace && opts.OutputDir != "" {
		ignore = append(ignore, filepath.Base(opts.OutputDir))
	}

	watcher, err := watch.New(watch.Config{
		Root:        w.Root,
		IgnoreDirs:  ignore,
		QuietWindow: w.Quiet,
		Logger:      global.Logger,
		OnChange: func(ctx context.Context) error {
			_, err := weave.New(opts).Run(ctx)
			return err
		},
	})
	if err != nil {
		return err
	}

	// Weave once up front so the output is current before the first change.
	if _, err := weave.New(opts).Run(context.Background()); err != nil {
		global.Logger.Error("initial weave failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
