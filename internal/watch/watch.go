// Package watch re-runs the resolver when the site document or content changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/resolve"
)

// Runner performs one resolution.
type Runner interface {
	Run(ctx context.Context) (*resolve.Outcome, error)
}

// Options configures a Watcher.
type Options struct {
	// Files are watched through their parent directory, which is not
	// descended into. Only events naming one of the files trigger a run.
	Files []string
	// Trees are directories watched recursively. Missing paths are skipped.
	Trees    []string
	Debounce time.Duration
	// Every schedules a full re-check independent of file events. Zero disables it.
	Every time.Duration
	// OnResult receives every run's outcome. It is called from the watch loop.
	OnResult func(*resolve.Outcome, error)
}

// Watcher coalesces file events into resolver runs. Runs never overlap.
type Watcher struct {
	runner    Runner
	opts      Options
	fsw       *fsnotify.Watcher
	scheduler gocron.Scheduler
	trigger   chan string
	files     map[string]bool
	trees     []string
}

// New creates a watcher. Call Run to start it.
func New(r Runner, opts Options) (*Watcher, error) {
	if r == nil {
		return nil, errors.New("runner is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{runner: r, opts: opts, fsw: fsw, trigger: make(chan string, 1), files: make(map[string]bool)}
	for _, p := range opts.Files {
		if err := w.addFile(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	for _, p := range opts.Trees {
		if err := w.addRoot(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	if opts.Every > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
		}
		_, err = s.NewJob(
			gocron.DurationJob(opts.Every),
			gocron.NewTask(w.fire, "schedule"),
			gocron.WithName("periodic-recheck"),
		)
		if err != nil {
			_ = s.Shutdown()
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to schedule periodic re-check: %w", err)
		}
		w.scheduler = s
	}
	return w, nil
}

// addFile watches the directory holding path without descending into it.
func (w *Watcher) addFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	w.files[abs] = true
	dir := filepath.Dir(abs)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Watch path does not exist, skipping", logfields.Path(dir))
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return nil
}

// addRoot registers a recursively watched directory.
func (w *Watcher) addRoot(path string) error {
	root, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Watch path does not exist, skipping", logfields.Path(root))
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return w.addFile(root)
	}
	w.trees = append(w.trees, root)
	return w.addTree(root)
}

// addTree watches root and every non-hidden directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && ignored(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// fire requests a run without blocking. A pending request absorbs later ones.
func (w *Watcher) fire(reason string) {
	select {
	case w.trigger <- reason:
	default:
	}
}

// Run performs an initial resolution, then re-runs on changes until ctx is
// done. It releases the file watcher and scheduler before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()
	if w.scheduler != nil {
		w.scheduler.Start()
		defer func() {
			if err := w.scheduler.Shutdown(); err != nil {
				slog.Error("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	slog.Info("Watching for changes",
		slog.Any("files", w.opts.Files),
		slog.Any("trees", w.opts.Trees),
		slog.Duration("every", w.opts.Every))
	w.runOnce(ctx, "startup")

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.opts.Debounce, func() { w.fire("change") })
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		case reason := <-w.trigger:
			w.runOnce(ctx, reason)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(ev.Name)
	if w.files[name] {
		return true
	}
	if ignored(filepath.Base(name)) || !w.inTree(name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
		}
	}
	return true
}

func (w *Watcher) inTree(name string) bool {
	for _, root := range w.trees {
		rel, err := filepath.Rel(root, name)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) runOnce(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	slog.Debug("Re-running resolution", slog.String("reason", reason))
	out, err := w.runner.Run(ctx)
	if w.opts.OnResult != nil {
		w.opts.OnResult(out, err)
	}
}

// ignored matches hidden files and editor backup files.
func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}
