package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/gubarz/promptref/internal/codec/simple"
	"github.com/gubarz/promptref/internal/logging"
	"github.com/gubarz/promptref/internal/metrics"
)

const (
	DefaultExtension   = ".prompt.md"
	DefaultMaxDepth    = 32
	DefaultConcurrency = 4
)

var errIsDirectory = errors.New("is a directory")

// Resolver follows file references from a root prompt file
type Resolver struct {
	fs          afero.Fs
	extension   string
	maxDepth    int
	concurrency int
	logger      *slog.Logger
	recorder    *metrics.Recorder
}

// Option configures a Resolver
type Option func(*Resolver)

// WithFs reads files from fs instead of the OS filesystem
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) { r.fs = fs }
}

// WithExtension sets the suffix a file needs to count as a prompt file
func WithExtension(ext string) Option {
	return func(r *Resolver) {
		if ext != "" {
			r.extension = ext
		}
	}
}

// WithMaxDepth bounds how deep references are followed
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// WithConcurrency bounds how many siblings are resolved at once
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithRecorder(rec *metrics.Recorder) Option {
	return func(r *Resolver) { r.recorder = rec }
}

// NewResolver creates a resolver with defaults overridden by opts
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		fs:          afero.NewOsFs(),
		extension:   DefaultExtension,
		maxDepth:    DefaultMaxDepth,
		concurrency: DefaultConcurrency,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extension returns the prompt file suffix in use
func (r *Resolver) Extension() string {
	return r.extension
}

// Resolve builds the reference tree rooted at path. Unreadable, recursive or
// non-prompt references are recorded on their node; the returned error is
// only set when ctx is done.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Reference, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", path, err)
		}
		path = abs
	}

	start := time.Now()
	root := &Reference{Path: normalizePath(path)}
	if err := r.resolve(ctx, root); err != nil {
		return nil, err
	}
	r.recorder.ObserveResolve(time.Since(start).Seconds())

	r.logger.Info("resolved prompt references",
		logging.Path(root.Path),
		logging.Count(len(root.Flatten())),
		slog.Int("errors", len(root.Conditions())))
	return root, nil
}

func (r *Resolver) resolve(ctx context.Context, ref *Reference) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ref.Err = r.check(ref)
	if ref.Err == nil {
		ref.Err = r.read(ref)
	}

	if ref.Err != nil {
		r.logger.Debug("reference not resolved",
			logging.Path(ref.Path),
			logging.Depth(ref.Depth()),
			logging.Error(ref.Err))
		r.recorder.ObserveReference(ref.Err.Name())
		return nil
	}
	r.recorder.ObserveReference("ok")

	if len(ref.Links) == 0 {
		return nil
	}

	ref.Children = make([]*Reference, len(ref.Links))
	for i := range ref.Links {
		ref.Children[i] = &Reference{
			Path:   joinTarget(ref.Path, ref.Links[i].Path),
			Parent: ref,
			Link:   &ref.Links[i],
		}
	}

	p := pool.New().WithMaxGoroutines(r.concurrency).WithContext(ctx).WithCancelOnError()
	for _, child := range ref.Children {
		child := child
		p.Go(func(ctx context.Context) error {
			return r.resolve(ctx, child)
		})
	}
	return p.Wait()
}

// check classifies a reference without touching the filesystem
func (r *Resolver) check(ref *Reference) ErrorCondition {
	for p := ref.Parent; p != nil; p = p.Parent {
		if p.Path == ref.Path {
			return NewRecursiveReference(ref.Path, ref.chain())
		}
	}
	if !strings.HasSuffix(ref.Path, r.extension) {
		return NewNotPromptFile(ref.Path, r.extension)
	}
	if ref.Depth() > r.maxDepth {
		return NewDepthExceeded(ref.Path, r.maxDepth)
	}
	return nil
}

// read opens the file and scans it for links
func (r *Resolver) read(ref *Reference) ErrorCondition {
	info, err := r.fs.Stat(ref.Path)
	if err != nil {
		return NewFileOpenFailed(ref.Path, err)
	}
	if info.IsDir() {
		return NewFileOpenFailed(ref.Path, errIsDirectory)
	}

	f, err := r.fs.Open(ref.Path)
	if err != nil {
		return NewFileOpenFailed(ref.Path, err)
	}
	defer f.Close()

	links, stats, err := ScanLinks(simple.NewDecoder(f))
	r.recorder.ObserveDecoder(stats)
	if err != nil {
		return NewFileOpenFailed(ref.Path, err)
	}
	ref.Links = links
	return nil
}
