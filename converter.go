package epub2md

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
	"unicode/utf8"

	"github.com/alnah/go-epub2md/internal/convert"
	"github.com/alnah/go-epub2md/internal/fileutil"
	"github.com/alnah/go-epub2md/internal/hints"
	"github.com/alnah/go-epub2md/internal/logging"
	"github.com/alnah/go-epub2md/internal/media"
	"github.com/alnah/go-epub2md/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ convert.Converter = (*convert.Pandoc)(nil)
	_ convert.Converter = (*convert.Native)(nil)
)

// Converter orchestrates the EPUB to Markdown pipeline.
// Create with NewConverter, then call Convert for each book.
type Converter struct {
	cfg     converterConfig
	backend convert.Converter
	auditor *pipeline.Auditor
	logger  *slog.Logger
}

// NewConverter creates a Converter with default configuration: automatic
// backend selection, every cleanup pass, images extracted to "images", and
// frontmatter without custom fields.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			backend:     BackendAuto,
			timeout:     defaultTimeout,
			clean:       DefaultCleanOptions(),
			imagesDir:   DefaultImagesDir,
			extract:     true,
			frontmatter: &FrontmatterConfig{},
		},
		auditor: pipeline.NewAuditor(),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDiscard(c.logger)

	if c.cfg.images.Optimize {
		w, h := c.cfg.images.bounds()
		if w <= 0 || h <= 0 || w > media.MaxBound || h > media.MaxBound {
			return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImageBounds, w, h)
		}
	}
	if c.cfg.images.Logger == nil {
		c.cfg.images.Logger = c.logger
	}

	// Create backend if not injected (e.g., by tests)
	if c.backend == nil {
		backend, err := convert.New(convert.Options{
			Backend:    c.cfg.backend,
			PandocPath: c.cfg.pandocPath,
			ExtraArgs:  c.cfg.extraArgs,
			Logger:     c.logger,
		})
		if err != nil {
			return nil, err
		}
		c.backend = backend
	}

	return c, nil
}

// Backend returns the name of the selected converter backend.
func (c *Converter) Backend() string {
	return c.backend.Name()
}

// Convert converts one book and writes the Markdown file.
// The context is used for cancellation; the converter run is additionally
// bounded by the configured timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	start := time.Now()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	outPath := input.OutputPath
	if outPath == "" {
		outPath = DefaultOutputPath(input.EPUBPath)
	}
	outDir := filepath.Dir(outPath)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w%s", ErrWriteOutput, outDir, err, hints.ForOutputDirectory())
	}

	md, err := ReadMetadata(input.EPUBPath)
	if err != nil {
		return nil, err
	}

	logger := c.logger.With("input", input.EPUBPath)

	// Convert to raw Markdown
	req := convert.Request{EPUBPath: input.EPUBPath}
	imagesDir := ""
	if c.cfg.extract {
		imagesDir = filepath.Join(outDir, c.cfg.imagesDir)
		absImages, err := filepath.Abs(imagesDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		req.ImagesDir = absImages
		req.ImagesRef = c.cfg.imagesDir
	}

	runCtx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	raw, err := c.backend.Convert(runCtx, req)
	cancel()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if !utf8.ValidString(raw) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUTF8, input.EPUBPath)
	}
	logger.Debug("converted to markdown", "backend", c.backend.Name(), "bytes", len(raw))

	// Images on disk, then the cleanup rules with the image stage
	renames, stats, err := prepareImages(ctx, imagesDir, c.cfg.images)
	if err != nil {
		return nil, err
	}

	imageReport := pipeline.Report{}
	cleanOpts := c.cfg.clean
	cleanOpts.ImageStage = nil
	if c.cfg.extract {
		cleanOpts.ImageStage = func(doc string) string {
			out, rep := pipeline.CanonicalizeImages(doc, renames)
			imageReport.Merge(rep)
			return out
		}
	}
	cleaned, report := Clean(raw, cleanOpts)
	report.Merge(imageReport)
	stats.Rewritten = report[ReportImagesRewritten]
	stats.DuplicatesRemoved = report[ReportDuplicateImagesRemoved]

	// Frontmatter
	doc := cleaned
	if c.cfg.frontmatter != nil {
		doc = SynthesizeFrontmatter(md, *c.cfg.frontmatter) + "\n" + cleaned
	}

	if err := os.WriteFile(outPath, []byte(doc), 0o644); err != nil { // #nosec G306 -- output is meant to be readable
		return nil, fmt.Errorf("%w: %s: %w%s", ErrWriteOutput, outPath, err, hints.ForOutputDirectory())
	}

	audit, err := c.auditor.Audit(ctx, cleaned)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("markdown audit failed", "error", err)
	}
	if audit.RawHTML > 0 {
		logger.Warn("raw HTML left in output", "count", audit.RawHTML, "samples", audit.RawHTMLSamples)
	}

	res := &Result{
		InputPath:  input.EPUBPath,
		OutputPath: outPath,
		Metadata:   md,
		Report:     report,
		Images:     stats,
		Audit:      audit,
		Backend:    c.backend.Name(),
		Duration:   time.Since(start),
	}
	logger.Info("converted",
		"output", outPath,
		"changes", report.Total(),
		"images", stats.Found,
		"duration", res.Duration.Round(time.Millisecond),
	)
	return res, nil
}

// validateInput checks that the input names an existing .epub file.
func validateInput(input Input) error {
	if !strings.EqualFold(filepath.Ext(input.EPUBPath), ".epub") {
		return fmt.Errorf("%w: %q", ErrNotEPUB, input.EPUBPath)
	}
	info, err := os.Stat(input.EPUBPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, input.EPUBPath)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotEPUB, input.EPUBPath)
	}
	return nil
}

// DefaultOutputPath returns <dir>/<name>/<name>.md for <dir>/<name>.epub,
// with <name> sanitized for use as a directory name.
func DefaultOutputPath(epubPath string) string {
	stem := strings.TrimSuffix(filepath.Base(epubPath), filepath.Ext(epubPath))
	name := fileutil.SanitizeDirName(stem)
	return filepath.Join(filepath.Dir(epubPath), name, name+".md")
}
