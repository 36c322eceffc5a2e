package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc is called after a burst of changes settles. changed holds the
// root-relative slash paths that triggered the re-run, sorted.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher watches a directory tree for document changes.
type Watcher struct {
	root     string
	delay    time.Duration
	relevant func(rel string) bool
	skipDir  func(name string) bool
	logger   *slog.Logger

	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	trigger   chan struct{}

	mu      sync.Mutex
	changed map[string]struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithFilter sets the function deciding whether a changed root-relative
// path should cause a re-run.
func WithFilter(fn func(rel string) bool) Option {
	return func(w *Watcher) {
		w.relevant = fn
	}
}

// WithSkipDir sets the function deciding whether a directory name is left
// unwatched.
func WithSkipDir(fn func(name string) bool) Option {
	return func(w *Watcher) {
		w.skipDir = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a Watcher and registers every directory under root.
func New(root string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}

	w := &Watcher{
		root:     abs,
		delay:    DefaultDebounce,
		relevant: func(string) bool { return true },
		skipDir:  func(string) bool { return false },
		logger:   slog.Default(),
		trigger:  make(chan struct{}, 1),
		changed:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.delay)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw

	if err := w.addTree(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watch root.
func (w *Watcher) Root() string {
	return w.root
}

// WatchList returns the directories currently registered.
func (w *Watcher) WatchList() []string {
	list := w.fsw.WatchList()
	sort.Strings(list)
	return list
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.debouncer.Cancel()
	return w.fsw.Close()
}

// Run delivers settled changes to fn until ctx is cancelled or the
// underlying watcher is closed. Calls to fn never overlap. An error from fn
// is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	defer w.debouncer.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-w.trigger:
			changed := w.drain()
			if len(changed) == 0 {
				continue
			}
			w.logger.Info("documents changed", "count", len(changed))
			if err := fn(ctx, changed); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Warn("re-run failed", "error", err)
			}
		}
	}
}

// Relevant reports whether ev concerns an eligible document, returning its
// root-relative slash path.
func (w *Watcher) Relevant(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || rel == ".." || filepath.IsAbs(rel) {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if len(rel) >= 3 && rel[:3] == "../" {
		return "", false
	}
	return rel, w.relevant(rel)
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.skipDir(info.Name()) {
				return
			}
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
			}
			return
		}
	}

	rel, ok := w.Relevant(ev)
	if !ok {
		return
	}
	w.logger.Debug("document event", "path", rel, "op", ev.Op.String())

	w.mu.Lock()
	w.changed[rel] = struct{}{}
	w.mu.Unlock()

	w.debouncer.Trigger(func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.changed))
	for p := range w.changed {
		out = append(out, p)
	}
	w.changed = make(map[string]struct{})
	sort.Strings(out)
	return out
}

func (w *Watcher) addTree(start string) error {
	return filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == start {
				return fmt.Errorf("failed to walk %s: %w", p, err)
			}
			w.logger.Warn("skipping unreadable directory", "path", p, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != start && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}
