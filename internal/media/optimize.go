package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	_ "image/gif" // registers the GIF decoder for DecodeConfig

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp" // registers the BMP decoder for DecodeConfig
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // registers the WebP decoder for DecodeConfig

	"github.com/alnah/go-epub2md/internal/fileutil"
	"github.com/alnah/go-epub2md/internal/logging"
)

// ErrInvalidBounds is returned for non-positive or oversized bounds.
var ErrInvalidBounds = errors.New("invalid image bounds")

// MaxBound is the largest accepted width or height bound.
const MaxBound = 10000

const jpegQuality = 85

// Optimizer downscales JPEG and PNG files that exceed a bounding box.
type Optimizer struct {
	maxWidth  int
	maxHeight int
	logger    *slog.Logger
}

// NewOptimizer returns an optimizer fitting images into maxWidth x maxHeight.
func NewOptimizer(maxWidth, maxHeight int, logger *slog.Logger) (*Optimizer, error) {
	if maxWidth <= 0 || maxHeight <= 0 || maxWidth > MaxBound || maxHeight > MaxBound {
		return nil, fmt.Errorf("%w: %dx%d (each must be 1-%d)", ErrInvalidBounds, maxWidth, maxHeight, MaxBound)
	}
	return &Optimizer{maxWidth: maxWidth, maxHeight: maxHeight, logger: logging.OrDiscard(logger)}, nil
}

// OptimizeDir optimizes every image file directly inside dir and returns how
// many were rewritten. Per-file failures are logged and skipped; only context
// cancellation is returned.
func (o *Optimizer) OptimizeDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		o.logger.Warn("cannot read images directory", "path", dir, "error", err)
		return 0, nil
	}

	optimized := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return optimized, err
		}
		if e.IsDir() || !fileutil.IsImageFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		changed, err := o.OptimizeFile(path)
		if err != nil {
			o.logger.Warn("failed to optimize image", "path", path, "error", err)
			continue
		}
		if changed {
			optimized++
		}
	}
	return optimized, nil
}

// OptimizeFile downscales path in place when it is a JPEG or PNG larger than
// the bounding box. It reports whether the file was rewritten.
func (o *Optimizer) OptimizeFile(path string) (bool, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false, fmt.Errorf("detecting type: %w", err)
	}

	switch {
	case mtype.Is("image/jpeg"), mtype.Is("image/png"):
	default:
		// No lossless re-encoder for the rest; report size for oversized files.
		if w, h, ok := dimensions(path); ok && (w > o.maxWidth || h > o.maxHeight) {
			o.logger.Debug("oversized image left as is", "path", path, "type", mtype.String(), "width", w, "height", h)
		}
		return false, nil
	}

	src, err := decode(path)
	if err != nil {
		return false, err
	}
	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), o.maxWidth, o.maxHeight)
	if w == b.Dx() && h == b.Dy() {
		return false, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	if err := writeAtomic(path, func(f *os.File) error {
		if mtype.Is("image/jpeg") {
			return jpeg.Encode(f, dst, &jpeg.Options{Quality: jpegQuality})
		}
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(f, dst)
	}); err != nil {
		return false, err
	}

	o.logger.Debug("downscaled image", "path", path, "from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "to", fmt.Sprintf("%dx%d", w, h))
	return true, nil
}

// fitWithin scales w x h down to fit maxW x maxH, keeping the aspect ratio.
// Images already inside the box are returned unchanged.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	return min(nw, maxW), min(nh, maxH)
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the images directory listing
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	return img, nil
}

func dimensions(path string) (int, int, bool) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the images directory listing
	if err != nil {
		return 0, 0, false
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// writeAtomic writes through a temp file in the same directory, then renames
// it over path.
func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".optimize-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encoding: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { // #nosec G302 -- images are meant to be readable
		return err
	}
	return os.Rename(tmpName, path)
}
