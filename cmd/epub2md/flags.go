package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config   string
	quiet    bool
	verbose  bool
	logLevel string
	logJSON  bool
}

// converterFlags holds backend selection flags.
type converterFlags struct {
	backend    string
	pandocPath string
	timeout    string
}

// cleanupFlags disables individual cleanup passes.
type cleanupFlags struct {
	noDivs       bool
	noSpans      bool
	noHeaderFix  bool
	noLinkFix    bool
	noWhitespace bool
}

// imageFlags holds image extraction and optimization flags.
type imageFlags struct {
	disabled  bool
	optimize  bool
	maxWidth  int
	maxHeight int
}

// convertFlags holds all flags for the convert and batch commands.
type convertFlags struct {
	common        commonFlags
	converter     converterFlags
	cleanup       cleanupFlags
	images        imageFlags
	noFrontmatter bool
	output        string
	workers       int
	all           bool // convert only
	recursive     bool // batch only
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&f.logJSON, "log-json", false, "write logs as JSON")
}

// addConverterFlags adds backend flags to a FlagSet.
func addConverterFlags(fs *flag.FlagSet, f *converterFlags) {
	fs.StringVar(&f.backend, "converter", "", "converter backend: auto, pandoc, native")
	fs.StringVar(&f.pandocPath, "pandoc", "", "pandoc binary name or path")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-book converter timeout (e.g., 90s, 2m)")
}

// addCleanupFlags adds cleanup toggles to a FlagSet.
func addCleanupFlags(fs *flag.FlagSet, f *cleanupFlags) {
	fs.BoolVar(&f.noDivs, "no-divs", false, "keep fenced div markers")
	fs.BoolVar(&f.noSpans, "no-spans", false, "keep bracketed span attributes")
	fs.BoolVar(&f.noHeaderFix, "no-header-fix", false, "keep heading attributes")
	fs.BoolVar(&f.noLinkFix, "no-link-fix", false, "keep link attributes and anchors")
	fs.BoolVar(&f.noWhitespace, "no-whitespace", false, "skip whitespace normalization")
}

// addImageFlags adds image flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.BoolVar(&f.disabled, "no-images", false, "skip image extraction")
	fs.BoolVar(&f.optimize, "optimize-images", false, "downscale large JPEG and PNG images")
	fs.IntVar(&f.maxWidth, "max-width", 0, "max image width in pixels (default: 1200)")
	fs.IntVar(&f.maxHeight, "max-height", 0, "max image height in pixels (default: 1600)")
}

// registerConvertFlags registers every flag shared by convert and batch.
func registerConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.noFrontmatter, "no-frontmatter", false, "skip the YAML frontmatter block")

	addCommonFlags(fs, &f.common)
	addConverterFlags(fs, &f.converter)
	addCleanupFlags(fs, &f.cleanup)
	addImageFlags(fs, &f.images)
}

// newConvertFlagSet builds the flag set for the convert command.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	registerConvertFlags(fs, f)
	fs.BoolVarP(&f.all, "all", "a", false, "convert every .epub in the current directory")
	return fs
}

// newBatchFlagSet builds the flag set for the batch command.
func newBatchFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	registerConvertFlags(fs, f)
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "include subdirectories")
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// parseBatchFlags parses batch command flags and returns positional args.
func parseBatchFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newBatchFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printBatchUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// parseError marks flag errors as usage errors. Help requests pass through.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}
