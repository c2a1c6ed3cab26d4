package epub2md

import (
	"context"
	"log/slog"

	"github.com/alnah/go-epub2md/internal/logging"
	"github.com/alnah/go-epub2md/internal/media"
	"github.com/alnah/go-epub2md/internal/pipeline"
)

// Default optimization bounds.
const (
	DefaultMaxWidth  = 1200
	DefaultMaxHeight = 1600
)

// ImageOptions configures NormalizeImages.
type ImageOptions struct {
	// Optimize downscales JPEG and PNG files larger than MaxWidth x MaxHeight.
	Optimize  bool
	MaxWidth  int // 0 means DefaultMaxWidth
	MaxHeight int // 0 means DefaultMaxHeight

	// Logger receives per-file failures. Nil discards them.
	Logger *slog.Logger
}

func (o ImageOptions) bounds() (int, int) {
	w, h := o.MaxWidth, o.MaxHeight
	if w == 0 {
		w = DefaultMaxWidth
	}
	if h == 0 {
		h = DefaultMaxHeight
	}
	return w, h
}

// NormalizeImages flattens imagesDir, optionally optimizes its images, and
// rewrites every local image reference in document to ./images/<name>.
// Repeated whole-line images are dropped. A missing imagesDir still gets the
// text rewrite, with zero file counts.
//
// Per-file failures are logged and skipped. Only invalid bounds and a
// cancelled context are returned as errors.
func NormalizeImages(ctx context.Context, document, imagesDir string, opts ImageOptions) (string, ImageStats, error) {
	renames, stats, err := prepareImages(ctx, imagesDir, opts)
	if err != nil {
		return document, stats, err
	}
	out, rep := pipeline.CanonicalizeImages(document, renames)
	stats.Rewritten = rep[pipeline.KeyImagesRewritten]
	stats.DuplicatesRemoved = rep[pipeline.KeyDuplicateImagesRemoved]
	return out, stats, nil
}

// prepareImages does the on-disk half of NormalizeImages and returns the
// flatten rename table for the text half.
func prepareImages(ctx context.Context, imagesDir string, opts ImageOptions) (map[string]string, ImageStats, error) {
	var stats ImageStats
	logger := logging.OrDiscard(opts.Logger)

	var optimizer *media.Optimizer
	if opts.Optimize {
		w, h := opts.bounds()
		var err error
		if optimizer, err = media.NewOptimizer(w, h, logger); err != nil {
			return nil, stats, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	if imagesDir == "" {
		return nil, stats, nil
	}

	flat, err := media.Flatten(imagesDir, logger)
	if err != nil {
		logger.Warn("cannot flatten images directory", "path", imagesDir, "error", err)
	}
	stats.Found = flat.Found
	stats.Moved = flat.Moved

	if optimizer != nil {
		n, err := optimizer.OptimizeDir(ctx, imagesDir)
		stats.Optimized = n
		if err != nil {
			return flat.Renames, stats, err
		}
	}
	return flat.Renames, stats, nil
}
