package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	werrors "git.home.luguber.info/inful/metricweave/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metricweave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile_Fails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var we *werrors.WeaveError
	require.True(t, errors.As(err, &we))
	require.Equal(t, werrors.CategoryConfig, we.Category)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "packages:\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"./..."}, cfg.Packages)
	require.Equal(t, "./woven", cfg.Output.Directory)
	require.Equal(t, ".metricweave/cache.db", cfg.Cache.Path)
	require.False(t, cfg.Output.Write)
}

func TestLoad_ExplicitValuesPreserved(t *testing.T) {
	path := writeConfig(t, `
packages:
  - ./internal/...
exclude:
  - "*_gen.go"
output:
  write: true
cache:
  disabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"./internal/..."}, cfg.Packages)
	require.Equal(t, []string{"*_gen.go"}, cfg.Exclude)
	require.True(t, cfg.Output.Write)
	require.Empty(t, cfg.Output.Directory)
	require.True(t, cfg.Cache.Disabled)
}

func TestLoad_WriteAndDirectory_MutuallyExclusive(t *testing.T) {
	path := writeConfig(t, `
output:
  write: true
  directory: ./out
`)

	_, err := Load(path)
	require.Error(t, err)

	var we *werrors.WeaveError
	require.True(t, errors.As(err, &we))
	require.Equal(t, werrors.CategoryValidation, we.Category)
}

func TestLoad_InvalidExcludePattern_Fails(t *testing.T) {
	path := writeConfig(t, `
exclude:
  - "[unclosed"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("MW_OUT", "./expanded")
	path := writeConfig(t, "output:\n  directory: ${MW_OUT}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./expanded", cfg.Output.Directory)
}

func TestLoadOrDefault_NoFile_ReturnsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadOrDefault(DefaultPath)
	require.NoError(t, err)
	require.Equal(t, []string{"./..."}, cfg.Packages)
}

func TestInit_WritesStarterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metricweave.yaml")

	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"./..."}, cfg.Packages)
	require.Equal(t, []string{"*_test.go"}, cfg.Exclude)
}

func TestInit_ExistingFileWithoutForce_Fails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metricweave.yaml")
	require.NoError(t, os.WriteFile(path, []byte("packages: []\n"), 0o644))

	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}
