package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	epub2md "github.com/alnah/go-epub2md"
	"github.com/alnah/go-epub2md/internal/config"
	"github.com/alnah/go-epub2md/internal/logging"
)

// BookConverter is the interface for the conversion service.
type BookConverter interface {
	Convert(ctx context.Context, input epub2md.Input) (*epub2md.Result, error)
}

// Compile-time interface implementation check.
var _ BookConverter = (*epub2md.Converter)(nil)

// newBookConverter builds the library converter; tests replace it.
var newBookConverter = func(opts ...epub2md.Option) (BookConverter, error) {
	return epub2md.NewConverter(opts...)
}

// runConvert handles `epub2md convert [input] [output]` and `convert --all`.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 2 {
		return fmt.Errorf("%w: convert takes at most an input and an output, got %d arguments", ErrUsage, len(positional))
	}
	if flags.all && len(positional) > 0 {
		return fmt.Errorf("%w: --all takes no input argument", ErrUsage)
	}

	cfg, logger, err := loadSettings(flags, env)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	var files []FileToConvert
	switch {
	case flags.all:
		dir, err := env.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		if files, err = discoverDir(dir, outputDir); err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
	case len(positional) > 0:
		output := outputDir
		if len(positional) == 2 {
			output = positional[1]
		}
		files = discoverSingle(positional[0], output)
	case cfg.Input.DefaultDir != "":
		if files, err = discoverDir(cfg.Input.DefaultDir, outputDir); err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
	default:
		return fmt.Errorf("%w: pass an .epub file or use --all", ErrNoInput)
	}

	return convertFiles(ctx, files, flags, cfg, logger, env)
}

// runBatch handles `epub2md batch <input-dir> <output-dir> [-r]`.
func runBatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, logger, err := loadSettings(flags, env)
	if err != nil {
		return err
	}

	inputDir := cfg.Input.DefaultDir
	outputDir := resolveOutputDir(flags.output, cfg)
	switch len(positional) {
	case 0:
	case 1:
		inputDir = positional[0]
	case 2:
		inputDir, outputDir = positional[0], positional[1]
	default:
		return fmt.Errorf("%w: batch takes an input and an output directory, got %d arguments", ErrUsage, len(positional))
	}
	if inputDir == "" {
		return fmt.Errorf("%w: batch needs an input directory", ErrNoInput)
	}
	if outputDir == "" {
		outputDir = inputDir
	}

	files, err := discoverTree(inputDir, outputDir, flags.recursive)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	return convertFiles(ctx, files, flags, cfg, logger, env)
}

// convertFiles runs the conversions and prints the outcome.
// A single failed book returns its own error; a failed batch returns
// ErrConversionsFailed.
func convertFiles(ctx context.Context, files []FileToConvert, flags *convertFlags, cfg *config.Config, logger *slog.Logger, env *Environment) error {
	if len(files) == 0 {
		return ErrNoBooks
	}

	conv, err := newBookConverter(buildOptions(cfg, logger, env)...)
	if err != nil {
		return err
	}

	workers := epub2md.ResolvePoolSize(flags.workers)
	logger.Debug("starting conversion", "books", len(files), "workers", workers)

	results := convertBatch(ctx, conv, files, workers)
	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return results[0].Err
	}
	return fmt.Errorf("%w: %d of %d", ErrConversionsFailed, failed, len(results))
}

// loadSettings resolves configuration and builds the logger.
// Precedence: defaults < config file < EPUB2MD_* env < CLI flags.
func loadSettings(flags *convertFlags, env *Environment) (*config.Config, *slog.Logger, error) {
	if err := validateWorkers(flags.workers); err != nil {
		return nil, nil, err
	}

	warnUnknownEnvVars(env.Stderr, env.Environ())
	envCfg := loadEnvConfig(env.Getenv)

	configPath := flags.common.config
	if configPath == "" {
		configPath = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	if flags.workers == 0 {
		flags.workers = envCfg.Workers
	}
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(flags.common, envCfg.LogLevel, env.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newLogger builds the CLI logger. Per-book results go to stdout, so the
// default level is warn; --verbose means debug.
func newLogger(f commonFlags, envLevel string, w io.Writer) (*slog.Logger, error) {
	level := "warn"
	switch {
	case f.logLevel != "":
		level = f.logLevel
	case f.verbose:
		level = "debug"
	case envLevel != "":
		level = envLevel
	}
	return logging.New(logging.Options{
		Level:  level,
		Quiet:  f.quiet,
		JSON:   f.logJSON,
		Output: w,
	})
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	// Converter flags
	if flags.converter.backend != "" {
		cfg.Converter.Backend = flags.converter.backend
	}
	if flags.converter.pandocPath != "" {
		cfg.Converter.PandocPath = flags.converter.pandocPath
	}
	if flags.converter.timeout != "" {
		cfg.Converter.Timeout = flags.converter.timeout
	}

	// Cleanup flags only ever disable
	if flags.cleanup.noDivs {
		cfg.Cleanup.RemoveDivBlocks = false
	}
	if flags.cleanup.noSpans {
		cfg.Cleanup.RemoveSpans = false
	}
	if flags.cleanup.noHeaderFix {
		cfg.Cleanup.FixHeaders = false
	}
	if flags.cleanup.noLinkFix {
		cfg.Cleanup.FixLinks = false
	}
	if flags.cleanup.noWhitespace {
		cfg.Cleanup.NormalizeWhitespace = false
	}

	// Image flags
	if flags.images.disabled {
		cfg.Images.Extract = false
	}
	if flags.images.optimize {
		cfg.Images.Optimize = true
	}
	if flags.images.maxWidth != 0 {
		cfg.Images.MaxWidth = flags.images.maxWidth
	}
	if flags.images.maxHeight != 0 {
		cfg.Images.MaxHeight = flags.images.maxHeight
	}

	if flags.noFrontmatter {
		cfg.Frontmatter.Enabled = false
	}
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// buildOptions translates the resolved config into converter options.
func buildOptions(cfg *config.Config, logger *slog.Logger, env *Environment) []epub2md.Option {
	opts := []epub2md.Option{
		epub2md.WithLogger(logger),
		epub2md.WithBackend(cfg.Converter.Backend),
		epub2md.WithPandoc(cfg.Converter.PandocPath, cfg.Converter.ExtraArgs...),
		epub2md.WithTimeout(cfg.Converter.TimeoutDuration()),
		epub2md.WithCleanOptions(epub2md.CleanOptions{
			RemoveBlockWrappers: cfg.Cleanup.RemoveDivBlocks,
			RemoveSpans:         cfg.Cleanup.RemoveSpans,
			FixHeaders:          cfg.Cleanup.FixHeaders,
			FixLinks:            cfg.Cleanup.FixLinks,
			NormalizeWhitespace: cfg.Cleanup.NormalizeWhitespace,
		}),
	}

	if cfg.Images.Extract {
		dir := cfg.Images.Dir
		if dir == "" {
			dir = epub2md.DefaultImagesDir
		}
		opts = append(opts, epub2md.WithImages(dir, epub2md.ImageOptions{
			Optimize:  cfg.Images.Optimize,
			MaxWidth:  cfg.Images.MaxWidth,
			MaxHeight: cfg.Images.MaxHeight,
		}))
	} else {
		opts = append(opts, epub2md.WithImages("", epub2md.ImageOptions{}))
	}

	if cfg.Frontmatter.Enabled {
		fields := make([]epub2md.CustomField, len(cfg.Frontmatter.CustomFields))
		for i, f := range cfg.Frontmatter.CustomFields {
			fields[i] = epub2md.CustomField{Key: f.Key, Value: f.Value}
		}
		opts = append(opts, epub2md.WithFrontmatter(&epub2md.FrontmatterConfig{
			CustomFields: fields,
			Now:          env.Now,
		}))
	} else {
		opts = append(opts, epub2md.WithFrontmatter(nil))
	}

	return opts
}
