package config

import (
	"os"
	"path/filepath"

	werrors "git.home.luguber.info/inful/metricweave/internal/errors"
)

const starterConfig = `# metricweave configuration
#
# Annotate functions with //metricweave:instrument (optionally
# name="<base>") and run: metricweave weave

# Package patterns to scan for instrument directives.
packages:
  - ./...

# File base-name globs to skip.
exclude:
  - "*_test.go"

output:
  # Woven sources are mirrored here; set write: true to rewrite in place.
  directory: ./woven

cache:
  path: .metricweave/cache.db
`

// Init writes a starter configuration file. Existing files are preserved
// unless force is set.
func Init(configPath string, force bool) error {
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return werrors.New(werrors.CategoryConfig, werrors.SeverityFatal, "configuration file already exists").
				WithContext("path", configPath)
		}
	}
	if dir := filepath.Dir(configPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return werrors.FileSystemError("create config directory", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0o644); err != nil {
		return werrors.FileSystemError("write config", err)
	}
	return nil
}
