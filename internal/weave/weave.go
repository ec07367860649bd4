// Package weave implements the instrumentation weaving engine: it scans
// packages for //metricweave:instrument directives and rewrites each
// annotated function into a semantically-equivalent version that records a
// duration histogram and an invocation counter around every call.
//
// The whole derivation happens at weave (build) time: directive arguments
// are parsed into a config, metric names are derived from the explicit base
// or the declaration path, and the label-extraction capability is chosen
// from the statically known return type. The woven source contains only the
// timer, the extraction call, and two emissions with constant metric names.
package weave

import (
	"context"
	"go/ast"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/metricweave/internal/cache"
	werrors "git.home.luguber.info/inful/metricweave/internal/errors"
)

// Options configures a weave run.
type Options struct {
	Dir      string   // Working directory for package loading; "" means cwd
	Patterns []string // Package patterns, e.g. ./...
	Exclude  []string // File base-name globs to skip

	OutputDir string // Mirror mode destination (ignored when InPlace)
	InPlace   bool   // Rewrite sources in place

	Force         bool // Bypass the incremental cache
	DryRun        bool // Resolve and report without writing (check command)
	CachePath     string
	CacheDisabled bool

	Logger *slog.Logger
}

// Result summarizes a weave run.
type Result struct {
	RunID          string
	FilesScanned   int
	FilesWoven     int
	FilesSkipped   int // incremental cache hits
	FunctionsWoven int
	Reports        []FunctionReport
}

// FunctionReport describes one resolved weave target; the check command
// prints these instead of writing output.
type FunctionReport struct {
	Package    string
	Function   string
	File       string
	Counter    string
	Histogram  string
	Capability string
	Suspending bool
	Explicit   bool // base name came from the directive
}

// Weaver runs the scan → transform → emit pipeline.
type Weaver struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Weaver. Zero-value options get the usual defaults: current
// directory, ./... patterns, mirror output to ./woven.
func New(opts Options) *Weaver {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = []string{"./..."}
	}
	if !opts.InPlace && opts.OutputDir == "" {
		opts.OutputDir = "./woven"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Weaver{opts: opts, logger: logger}
}

// Run executes one weave pass.
func (w *Weaver) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	logger := w.logger.With("run_id", result.RunID)

	store, err := w.openCache()
	if err != nil {
		// A broken cache degrades to a full weave.
		logger.Warn("weave cache unavailable", "error", err)
	}
	if store != nil {
		defer store.Close()
	}

	skipDir := ""
	if !w.opts.InPlace && w.opts.OutputDir != "" {
		// The output directory is relative to the weave root, not the
		// process working directory.
		if !filepath.IsAbs(w.opts.OutputDir) {
			w.opts.OutputDir = filepath.Join(w.opts.Dir, w.opts.OutputDir)
		}
		if abs, err := filepath.Abs(w.opts.OutputDir); err == nil {
			skipDir = abs
		}
	}

	files, err := scan(ctx, w.opts.Dir, w.opts.Patterns, w.opts.Exclude, skipDir)
	if err != nil {
		return nil, err
	}
	result.FilesScanned = len(files)

	root, err := filepath.Abs(w.opts.Dir)
	if err != nil {
		return nil, werrors.FileSystemError("resolve working directory", err)
	}

	for _, sf := range files {
		if err := w.weaveFile(ctx, sf, root, store, result, logger); err != nil {
			return nil, err
		}
	}

	logger.Info("weave complete",
		"files", result.FilesScanned,
		"woven", result.FilesWoven,
		"skipped", result.FilesSkipped,
		"functions", result.FunctionsWoven)
	return result, nil
}

func (w *Weaver) weaveFile(ctx context.Context, sf *sourceFile, root string, store *cache.Store, result *Result, logger *slog.Logger) error {
	for _, tgt := range sf.targets {
		result.Reports = append(result.Reports, FunctionReport{
			Package:    sf.pkg.PkgPath,
			Function:   tgt.funcName,
			File:       sf.path,
			Counter:    tgt.names.Counter,
			Histogram:  tgt.names.Histogram,
			Capability: tgt.capability.String(),
			Suspending: tgt.suspending,
			Explicit:   tgt.cfg.Explicit(),
		})
	}

	if w.opts.DryRun {
		result.FunctionsWoven += len(sf.targets)
		return nil
	}

	original, err := os.ReadFile(sf.path)
	if err != nil {
		return werrors.FileSystemError("read source", err)
	}
	fingerprint := cache.Fingerprint(original)

	if len(sf.targets) == 0 {
		// Mirror mode keeps the output tree buildable: unwoven files are
		// copied verbatim.
		if !w.opts.InPlace {
			return sf.writeMirror(root, w.opts.OutputDir, original, false)
		}
		return nil
	}

	if store != nil && !w.opts.Force {
		unchanged, err := store.Unchanged(ctx, sf.path, fingerprint)
		if err != nil {
			logger.Warn("cache lookup failed", "file", sf.path, "error", err)
		} else if unchanged && w.outputExists(sf, root) {
			// A fingerprint hit only skips work while the previous output
			// survives; a cleaned mirror is rebuilt regardless.
			logger.Debug("skipping unchanged file", "file", sf.path)
			result.FilesSkipped++
			return nil
		}
	}

	timeName := sf.importName("time", "time")
	instrName := sf.importName(instrumentPath, "instrument")
	for _, tgt := range sf.targets {
		var elemType ast.Expr
		if tgt.suspending {
			expr, err := sf.elemTypeExpr(tgt)
			if err != nil {
				return err
			}
			elemType = expr
		}
		tgt.rewriteFunc(timeName, instrName, elemType)
		result.FunctionsWoven++
		logger.Debug("woven",
			"function", tgt.funcName,
			"histogram", tgt.names.Histogram,
			"counter", tgt.names.Counter,
			"capability", tgt.capability.String(),
			"suspending", tgt.suspending)
	}

	content, err := sf.render()
	if err != nil {
		return err
	}

	if w.opts.InPlace {
		if err := sf.writeInPlace(content); err != nil {
			return err
		}
		fingerprint = cache.Fingerprint(content)
	} else {
		if err := sf.writeMirror(root, w.opts.OutputDir, content, true); err != nil {
			return err
		}
	}
	result.FilesWoven++

	if store != nil {
		if err := store.Record(ctx, sf.path, fingerprint, result.RunID); err != nil {
			logger.Warn("cache record failed", "file", sf.path, "error", err)
		}
	}
	return nil
}

// outputExists reports whether the woven output for sf is already on disk.
// In-place mode the source file itself is the output.
func (w *Weaver) outputExists(sf *sourceFile, root string) bool {
	if w.opts.InPlace {
		return true
	}
	_, err := os.Stat(sf.mirrorPath(root, w.opts.OutputDir))
	return err == nil
}

func (w *Weaver) openCache() (*cache.Store, error) {
	if w.opts.DryRun || w.opts.CacheDisabled || w.opts.CachePath == "" {
		return nil, nil
	}
	return cache.Open(w.opts.CachePath)
}
