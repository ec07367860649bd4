// Package watch re-runs the weaver when Go sources change. Bursts of
// filesystem events are coalesced through a quiet-window debounce so one
// save-all in an editor triggers one weave.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	werrors "git.home.luguber.info/inful/metricweave/internal/errors"
)

// DefaultQuietWindow is the debounce interval applied when none is configured.
const DefaultQuietWindow = 500 * time.Millisecond

// Watcher monitors a source tree and invokes a callback after changes settle.
type Watcher struct {
	root        string
	ignoreDirs  []string
	quietWindow time.Duration
	onChange    func(ctx context.Context) error
	logger      *slog.Logger

	watcher *fsnotify.Watcher
	trigger chan struct{}
}

// Config configures a Watcher.
type Config struct {
	Root        string        // Directory tree to watch
	IgnoreDirs  []string      // Directory base names to skip (output dir etc.)
	QuietWindow time.Duration // Debounce window; defaults to DefaultQuietWindow
	OnChange    func(ctx context.Context) error
	Logger      *slog.Logger
}

// New creates a Watcher for the configured tree.
func New(cfg Config) (*Watcher, error) {
	if cfg.OnChange == nil {
		return nil, werrors.ValidationFailed("on_change", "callback is required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, werrors.WatchError(err)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		fw.Close()
		return nil, werrors.WatchError(err)
	}

	quiet := cfg.QuietWindow
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		root:        root,
		ignoreDirs:  cfg.IgnoreDirs,
		quietWindow: quiet,
		onChange:    cfg.OnChange,
		logger:      logger,
		watcher:     fw,
		trigger:     make(chan struct{}, 1),
	}, nil
}

// Run watches until ctx is canceled. The callback runs on the watch
// goroutine; a callback error is logged, not fatal, so a transient weave
// failure does not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Info("watching for source changes", "root", w.root, "quiet_window", w.quietWindow)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			// New directories need watches of their own.
			if event.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					_ = w.addTree(event.Name)
				}
			}
			w.logger.Debug("source change", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.quietWindow)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.quietWindow)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.onChange(ctx); err != nil {
				w.logger.Error("weave on change failed", "error", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// relevant filters events down to Go source mutations outside ignored trees.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".go") {
		// Directory events matter for addTree; other non-Go files are noise.
		fi, err := os.Stat(event.Name)
		if err != nil || !fi.IsDir() {
			return false
		}
	}
	return !w.ignored(event.Name)
}

func (w *Watcher) ignored(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
		for _, dir := range w.ignoreDirs {
			if part == dir {
				return true
			}
		}
	}
	return false
}

// addTree registers watches for dir and every subdirectory.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return werrors.WatchError(err)
	}
	return nil
}
