// Package watch re-resolves prompt references whenever one of the files in
// the resolved trees changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gubarz/promptref/internal/logging"
	"github.com/gubarz/promptref/internal/metrics"
	"github.com/gubarz/promptref/internal/prompt"
)

// DefaultDebounce is used when no positive debounce is configured
const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc receives the trees of every resolution, the first one included
type ChangeFunc func(roots []*prompt.Reference)

// Watcher monitors the directories of resolved prompt files
type Watcher struct {
	resolver *prompt.Resolver
	target   string
	onChange ChangeFunc
	debounce time.Duration
	logger   *slog.Logger
	recorder *metrics.Recorder

	fsw   *fsnotify.Watcher
	dirs  map[string]struct{}
	files map[string]struct{}
}

// Option configures a Watcher
type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithRecorder(rec *metrics.Recorder) Option {
	return func(w *Watcher) { w.recorder = rec }
}

// New creates a watcher for target, a prompt file or a directory of them
func New(resolver *prompt.Resolver, target string, onChange ChangeFunc, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch target: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		resolver: resolver,
		target:   abs,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logging.Discard(),
		fsw:      fsw,
		dirs:     make(map[string]struct{}),
		files:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run resolves once, then again after every relevant change, until ctx is
// done. The underlying fsnotify watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.rebuild(ctx); err != nil {
		return err
	}
	w.logger.Info("watching prompt files",
		logging.Path(w.target),
		logging.Count(len(w.files)),
		slog.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopping watcher", logging.Path(w.target))
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("change detected", logging.Path(event.Name), slog.String("op", event.Op.String()))
			// Reset/start debounce timer
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", logging.Error(err))

		case <-timer.C:
			w.recorder.ObserveRebuild()
			if err := w.rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// Dirs lists the directories currently watched
func (w *Watcher) Dirs() []string {
	out := make([]string, 0, len(w.dirs))
	for d := range w.dirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// rebuild resolves the target and moves the watch set to the new trees
func (w *Watcher) rebuild(ctx context.Context) error {
	roots, err := w.resolver.ResolveAll(ctx, w.target)
	if err != nil {
		return err
	}

	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	if w.isDirTarget(roots) {
		dirs[w.target] = struct{}{}
	}
	for _, root := range roots {
		for _, ref := range root.Flatten() {
			files[ref.Path] = struct{}{}
			dirs[filepath.Dir(ref.Path)] = struct{}{}
		}
	}

	for d := range w.dirs {
		if _, keep := dirs[d]; !keep {
			_ = w.fsw.Remove(d)
			delete(w.dirs, d)
		}
	}
	for d := range dirs {
		if _, ok := w.dirs[d]; ok {
			continue
		}
		if err := w.fsw.Add(d); err != nil {
			// Missing directories are expected for unresolved references
			w.logger.Debug("cannot watch directory", logging.Path(d), logging.Error(err))
			continue
		}
		w.dirs[d] = struct{}{}
	}
	w.files = files

	if w.onChange != nil {
		w.onChange(roots)
	}
	return nil
}

func (w *Watcher) isDirTarget(roots []*prompt.Reference) bool {
	return len(roots) != 1 || roots[0].Path != filepath.Clean(w.target)
}

// relevant reports whether an event may change the resolved trees
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if _, ok := w.files[name]; ok {
		return true
	}
	// New prompt files matter when a whole directory is watched
	return strings.HasSuffix(name, w.resolver.Extension())
}
