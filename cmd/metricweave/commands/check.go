package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/metricweave/internal/weave"
)

// CheckCmd implements the 'check' command: a dry run that resolves every
// directive and prints the derived metrics and label capabilities.
type CheckCmd struct {
	Patterns []string `arg:"" optional:"" help:"Package patterns to check (default from config, else ./...)"`
}

func (c *CheckCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	opts := weaveOptions(cfg, global, c.Patterns, "", false, false)
	opts.DryRun = true
	result, err := weave.New(opts).Run(context.Background())
	if err != nil {
		return err
	}

	if len(result.Reports) == 0 {
		fmt.Println("no instrument directives found")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "FUNCTION\tHISTOGRAM\tCOUNTER\tLABELS\tSUSPENDING")
	for _, r := range result.Reports {
		fmt.Fprintf(tw, "%s.%s\t%s\t%s\t%s\t%v\n",
			r.Package, r.Function, r.Histogram, r.Counter, r.Capability, r.Suspending)
	}
	return tw.Flush()
}
