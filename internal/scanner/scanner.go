// Package scanner finds orphaned images: image files inside a directory tree
// that no Markdown document in the same tree references.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/mdprune/internal/ctxlog"
	"github.com/vk/mdprune/internal/fsutil"
	"github.com/vk/mdprune/internal/mdref"
	"golang.org/x/sync/errgroup"
)

// DefaultExtensions are the image extensions considered when none are configured.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"}

// Options control a scan.
type Options struct {
	// Extensions lists the image extensions to consider, without dots.
	Extensions []string
	// Workers bounds how many Markdown files are parsed concurrently.
	Workers int
}

// Result is the outcome of a scan.
type Result struct {
	// BaseDir is the canonical directory that was scanned.
	BaseDir string
	// Images holds the canonical paths of every image found.
	Images []string
	// Referenced holds the canonical paths referenced by Markdown files.
	Referenced map[string]struct{}
	// Orphans holds the images that are not referenced, sorted.
	Orphans []string
}

// FindOrphans scans dir and returns the images no Markdown file references.
func FindOrphans(ctx context.Context, dir string, opts Options) (*Result, error) {
	baseDir, err := fsutil.Canonical(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize path: %s: %w", dir, err)
	}
	ctx = ctxlog.With(ctx, "base_dir", baseDir)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Scan started.")

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	images, err := findImages(ctx, baseDir, exts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Images discovered.", "count", len(images))

	referenced, err := collectReferences(ctx, baseDir, opts.Workers)
	if err != nil {
		return nil, err
	}
	logger.Debug("References collected.", "count", len(referenced))

	var orphans []string
	for _, img := range images {
		if _, ok := referenced[img]; !ok {
			orphans = append(orphans, img)
		}
	}
	sort.Strings(orphans)

	return &Result{
		BaseDir:    baseDir,
		Images:     images,
		Referenced: referenced,
		Orphans:    orphans,
	}, nil
}

// findImages returns the canonical, de-duplicated paths of all images.
func findImages(ctx context.Context, baseDir string, exts []string) ([]string, error) {
	paths, err := fsutil.FindFilesByExtension(ctx, baseDir, exts...)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", baseDir, err)
	}

	seen := make(map[string]struct{}, len(paths))
	images := make([]string, 0, len(paths))
	for _, p := range paths {
		canonical, err := fsutil.Canonical(p)
		if err != nil {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		images = append(images, canonical)
	}
	return images, nil
}

// collectReferences parses every Markdown file below baseDir with a bounded
// pool of workers. Unreadable files are logged and skipped.
func collectReferences(ctx context.Context, baseDir string, workers int) (map[string]struct{}, error) {
	logger := ctxlog.FromContext(ctx)

	docs, err := fsutil.FindFilesByExtension(ctx, baseDir, "md", "markdown")
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", baseDir, err)
	}
	logger.Debug("Markdown files discovered.", "count", len(docs))

	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	referenced := make(map[string]struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			refs, err := mdref.Extract(gctx, doc, baseDir)
			if err != nil {
				logger.Warn("Skipping unreadable markdown file.", "path", doc, "error", err)
				return nil
			}
			mu.Lock()
			for r := range refs {
				referenced[r] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return referenced, nil
}
