package prompt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/gubarz/promptref/internal/logging"
)

// Discover recursively collects every prompt file under dir, sorted by path.
// Hidden directories are skipped.
func (r *Resolver) Discover(dir string) ([]string, error) {
	if !filepath.IsAbs(dir) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("discover %q: %w", dir, err)
		}
		dir = abs
	}

	var found []string
	err := afero.Walk(r.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(info.Name(), r.extension) {
			found = append(found, normalizePath(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %q: %w", dir, err)
	}

	sort.Strings(found)
	r.logger.Debug("discovered prompt files", logging.Path(dir), logging.Count(len(found)))
	return found, nil
}

// ResolveAll resolves path when it is a file, or every prompt file beneath it
// when it is a directory.
func (r *Resolver) ResolveAll(ctx context.Context, path string) ([]*Reference, error) {
	info, err := r.fs.Stat(path)
	if err != nil || !info.IsDir() {
		// Missing or plain files are reported through the reference itself
		root, err := r.Resolve(ctx, path)
		if err != nil {
			return nil, err
		}
		return []*Reference{root}, nil
	}

	files, err := r.Discover(path)
	if err != nil {
		return nil, err
	}
	roots := make([]*Reference, 0, len(files))
	for _, f := range files {
		root, err := r.Resolve(ctx, f)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}
