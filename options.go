package epub2md

import (
	"log/slog"
	"time"

	"github.com/alnah/go-epub2md/internal/convert"
)

// Backend names accepted by WithBackend.
const (
	BackendAuto   = convert.BackendAuto
	BackendPandoc = convert.BackendPandoc
	BackendNative = convert.BackendNative
)

// DefaultImagesDir is the images directory name next to the output file.
const DefaultImagesDir = "images"

// defaultTimeout bounds one converter run.
const defaultTimeout = 2 * time.Minute

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	backend     string
	pandocPath  string
	extraArgs   []string
	timeout     time.Duration
	clean       CleanOptions
	images      ImageOptions
	imagesDir   string
	extract     bool
	frontmatter *FrontmatterConfig
}

// WithLogger sets the logger for conversion progress and per-file warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// WithBackend selects "auto", "pandoc" or "native".
func WithBackend(name string) Option {
	return func(c *Converter) {
		c.cfg.backend = name
	}
}

// WithPandoc sets the pandoc binary and extra command-line arguments.
func WithPandoc(path string, extraArgs ...string) Option {
	return func(c *Converter) {
		c.cfg.pandocPath = path
		c.cfg.extraArgs = extraArgs
	}
}

// WithTimeout sets the converter timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("epub2md: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithCleanOptions replaces DefaultCleanOptions. ImageStage is ignored:
// the converter installs its own.
func WithCleanOptions(opts CleanOptions) Option {
	return func(c *Converter) {
		c.cfg.clean = opts
	}
}

// WithImages configures extraction into dirName next to the output file.
// An empty dirName disables extraction.
func WithImages(dirName string, opts ImageOptions) Option {
	return func(c *Converter) {
		c.cfg.extract = dirName != ""
		c.cfg.imagesDir = dirName
		c.cfg.images = opts
	}
}

// WithFrontmatter sets the frontmatter configuration. Nil disables the block.
func WithFrontmatter(cfg *FrontmatterConfig) Option {
	return func(c *Converter) {
		c.cfg.frontmatter = cfg
	}
}

// withBackendConverter injects a backend, bypassing selection (for tests).
func withBackendConverter(b convert.Converter) Option {
	return func(c *Converter) {
		c.backend = b
	}
}
