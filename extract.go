package brk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/brk/internal/fsutil"
)

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	prefix    string
	overwrite bool
	workers   int
}

// ExtractWithPrefix limits extraction to entries whose path starts with prefix.
func ExtractWithPrefix(prefix string) ExtractOption {
	return func(c *extractConfig) {
		c.prefix = prefix
	}
}

// ExtractWithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(c *extractConfig) {
		c.overwrite = overwrite
	}
}

// ExtractWithWorkers sets how many entries are decoded at once.
// Values < 1 are treated as 1.
func ExtractWithWorkers(n int) ExtractOption {
	return func(c *extractConfig) {
		c.workers = max(n, 1)
	}
}

// Extract decodes entries into destDir, preserving their virtual paths.
//
// Files are written atomically using temp files and renames, and parent
// directories are created as needed. Entries whose path is not a valid
// slash-separated relative path are rejected before anything is written.
// Extract returns the number of files written.
func (a *Archive) Extract(ctx context.Context, destDir string, key []byte, opts ...ExtractOption) (int, error) {
	cfg := extractConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	var names []string
	for _, name := range a.ListFiles() {
		if !strings.HasPrefix(name, cfg.prefix) {
			continue
		}
		if !fs.ValidPath(name) {
			return 0, &fs.PathError{Op: "extract", Path: name, Err: fs.ErrInvalid}
		}
		names = append(names, name)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return 0, fmt.Errorf("open destination: %w", err)
	}
	defer root.Close()

	written := make([]bool, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := a.ReadFile(name, key)
			if err != nil {
				return err
			}
			err = fsutil.WriteFile(root, name, data, 0, cfg.overwrite)
			if errors.Is(err, fs.ErrExist) {
				a.log().Debug("skipped existing file", "path", name)
				return nil
			}
			if err != nil {
				return fmt.Errorf("extract %s: %w", name, err)
			}
			written[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	n := 0
	for _, ok := range written {
		if ok {
			n++
		}
	}
	a.log().Debug("extracted archive", "dest", destDir, "files", n)
	return n, nil
}
