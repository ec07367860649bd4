package commands

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/metricweave/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Packages: []string{"./..."},
		Exclude:  []string{"*_test.go"},
		Output:   config.OutputConfig{Directory: "./woven"},
		Cache:    config.CacheConfig{Path: ".metricweave/cache.db"},
	}
}

func TestWeaveOptions_ConfigDefaults(t *testing.T) {
	opts := weaveOptions(testConfig(), &Global{Logger: slog.Default()}, nil, "", false, false)

	require.Equal(t, []string{"./..."}, opts.Patterns)
	require.Equal(t, []string{"*_test.go"}, opts.Exclude)
	require.Equal(t, "./woven", opts.OutputDir)
	require.False(t, opts.InPlace)
	require.Equal(t, ".metricweave/cache.db", opts.CachePath)
}

func TestWeaveOptions_FlagsWinOverConfig(t *testing.T) {
	opts := weaveOptions(testConfig(), &Global{Logger: slog.Default()},
		[]string{"./internal/..."}, "./out", false, true)

	require.Equal(t, []string{"./internal/..."}, opts.Patterns)
	require.Equal(t, "./out", opts.OutputDir)
	require.True(t, opts.Force)
}

func TestWeaveOptions_WriteFlagForcesInPlace(t *testing.T) {
	opts := weaveOptions(testConfig(), &Global{Logger: slog.Default()}, nil, "./out", true, false)

	require.True(t, opts.InPlace)
	require.Empty(t, opts.OutputDir)
}
