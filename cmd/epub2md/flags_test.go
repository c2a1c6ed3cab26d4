package main

// Notes:
// - parse*Flags: we test interspersed positionals, shorthands, and that
//   bad flags become usage errors while --help passes through untouched.

import (
	"errors"
	"io"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestParseConvertFlags
// ---------------------------------------------------------------------------

func TestParseConvertFlags(t *testing.T) {
	t.Parallel()

	t.Run("flags and positionals interleaved", func(t *testing.T) {
		t.Parallel()

		f, args, err := parseConvertFlags([]string{
			"book.epub", "-o", "notes", "--converter", "native",
			"-w", "3", "-q", "--no-divs", "--no-images", "--max-width", "800",
			"notes.md", "--no-frontmatter", "-t", "30s", "-a",
		}, io.Discard)
		if err != nil {
			t.Fatalf("parseConvertFlags: %v", err)
		}

		if len(args) != 2 || args[0] != "book.epub" || args[1] != "notes.md" {
			t.Errorf("args = %v, want [book.epub notes.md]", args)
		}
		if f.output != "notes" || f.workers != 3 || !f.common.quiet || !f.all {
			t.Errorf("flags = %+v", f)
		}
		if f.converter.backend != "native" || f.converter.timeout != "30s" {
			t.Errorf("converter flags = %+v", f.converter)
		}
		if !f.cleanup.noDivs || f.cleanup.noSpans {
			t.Errorf("cleanup flags = %+v", f.cleanup)
		}
		if !f.images.disabled || f.images.maxWidth != 800 {
			t.Errorf("image flags = %+v", f.images)
		}
		if !f.noFrontmatter {
			t.Error("noFrontmatter = false, want true")
		}
	})

	t.Run("unknown flag is a usage error", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseConvertFlags([]string{"--page-size", "a4"}, io.Discard)
		if !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})

	t.Run("help passes through", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseConvertFlags([]string{"--help"}, io.Discard)
		if !errors.Is(err, flag.ErrHelp) {
			t.Errorf("error = %v, want flag.ErrHelp", err)
		}
		if errors.Is(err, ErrUsage) {
			t.Error("help should not be a usage error")
		}
	})

	t.Run("recursive is batch only", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseConvertFlags([]string{"-r"}, io.Discard)
		if !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestParseBatchFlags
// ---------------------------------------------------------------------------

func TestParseBatchFlags(t *testing.T) {
	t.Parallel()

	f, args, err := parseBatchFlags([]string{"-r", "shelf", "out", "--optimize-images"}, io.Discard)
	if err != nil {
		t.Fatalf("parseBatchFlags: %v", err)
	}
	if !f.recursive || !f.images.optimize {
		t.Errorf("flags = %+v", f)
	}
	if len(args) != 2 || args[0] != "shelf" || args[1] != "out" {
		t.Errorf("args = %v, want [shelf out]", args)
	}

	if _, _, err := parseBatchFlags([]string{"--all"}, io.Discard); !errors.Is(err, ErrUsage) {
		t.Errorf("--all error = %v, want ErrUsage", err)
	}
}
