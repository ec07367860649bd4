package integration

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/metricweave/internal/weave"
)

// reportEntry is the stable, machine-comparable shape of one resolved weave
// target used for golden comparison.
type reportEntry struct {
	Function   string `json:"function"`
	Histogram  string `json:"histogram"`
	Counter    string `json:"counter"`
	Capability string `json:"capability"`
	Suspending bool   `json:"suspending"`
	Explicit   bool   `json:"explicit"`
}

// fixtureDir resolves a fixture package directory relative to this test file.
func fixtureDir(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("..", "fixtures", "src", name))
	require.NoError(t, err)
	return abs
}

func goldenPath(name string) string {
	return filepath.Join("..", "golden", name+".json")
}

// checkFixture runs a dry-run weave over one fixture package and returns the
// resolved reports in stable order.
func checkFixture(t *testing.T, name string) []reportEntry {
	t.Helper()

	weaver := weave.New(weave.Options{
		Dir:           fixtureDir(t, name),
		Patterns:      []string{"."},
		DryRun:        true,
		CacheDisabled: true,
		Logger:        slog.Default(),
	})
	result, err := weaver.Run(context.Background())
	require.NoError(t, err)

	entries := make([]reportEntry, 0, len(result.Reports))
	for _, r := range result.Reports {
		entries = append(entries, reportEntry{
			Function:   r.Function,
			Histogram:  r.Histogram,
			Counter:    r.Counter,
			Capability: r.Capability,
			Suspending: r.Suspending,
			Explicit:   r.Explicit,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Function < entries[j].Function })
	return entries
}

// compareGolden compares entries against the stored golden file, rewriting
// it when -update-golden is set.
func compareGolden(t *testing.T, name string, entries []reportEntry, update bool) {
	t.Helper()

	actual, err := json.MarshalIndent(entries, "", "  ")
	require.NoError(t, err)
	actual = append(actual, '\n')

	path := goldenPath(name)
	if update {
		require.NoError(t, os.WriteFile(path, actual, 0o644))
		return
	}

	expected, err := os.ReadFile(path)
	require.NoError(t, err, "golden file missing; run with -update-golden")
	require.JSONEq(t, string(expected), string(actual))
}

// weaveFixture weaves one fixture package into a mirror directory (a fresh
// temporary one unless opts.OutputDir is set) and returns the weave result
// together with the output directory.
func weaveFixture(t *testing.T, name string, opts weave.Options) (*weave.Result, string) {
	t.Helper()

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = t.TempDir()
	}
	opts.Dir = fixtureDir(t, name)
	opts.Patterns = []string{"."}
	opts.OutputDir = outDir
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CachePath == "" {
		opts.CacheDisabled = true
	}

	result, err := weave.New(opts).Run(context.Background())
	require.NoError(t, err)
	return result, outDir
}

func readOutput(t *testing.T, outDir, file string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(outDir, file))
	require.NoError(t, err)
	return string(content)
}
