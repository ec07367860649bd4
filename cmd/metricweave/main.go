package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/metricweave/cmd/metricweave/commands"
	werrors "git.home.luguber.info/inful/metricweave/internal/errors"
	"git.home.luguber.info/inful/metricweave/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("metricweave"),
		kong.Description("Build-time metrics instrumentation weaving for Go functions."),
		kong.Vars{"version": version.Version},
		kong.UsageOnError(),
	)

	global := &commands.Global{Logger: slog.Default()}
	err := ctx.Run(global, &cli)
	if err == nil {
		return
	}

	adapter := werrors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
	global.Logger.Error(adapter.FormatError(err))
	os.Exit(adapter.ExitCodeFor(err))
}
