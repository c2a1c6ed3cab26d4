package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: epub2md <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert EPUB files to Markdown")
	fmt.Fprintln(w, "  batch       Convert every EPUB in a directory tree")
	fmt.Fprintln(w, "  doctor      Check the conversion environment")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'epub2md help <command>' for details on a specific command.")
	fmt.Fprintln(w, "'epub2md book.epub' is short for 'epub2md convert book.epub'.")
}

// printConversionFlags prints the flags shared by convert and batch.
func printConversionFlags(w io.Writer) {
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (one subdirectory per book)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Converter:")
	fmt.Fprintln(w, "      --converter <s>       Backend: auto, pandoc, native (default: auto)")
	fmt.Fprintln(w, "      --pandoc <path>       Pandoc binary name or path")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-book timeout, e.g. 90s, 2m")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Cleanup:")
	fmt.Fprintln(w, "      --no-divs             Keep fenced div markers")
	fmt.Fprintln(w, "      --no-spans            Keep bracketed span attributes")
	fmt.Fprintln(w, "      --no-header-fix       Keep heading attributes")
	fmt.Fprintln(w, "      --no-link-fix         Keep link attributes and anchors")
	fmt.Fprintln(w, "      --no-whitespace       Skip whitespace normalization")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Images:")
	fmt.Fprintln(w, "      --no-images           Skip image extraction")
	fmt.Fprintln(w, "      --optimize-images     Downscale large JPEG and PNG images")
	fmt.Fprintln(w, "      --max-width <n>       Max width in pixels (default: 1200)")
	fmt.Fprintln(w, "      --max-height <n>      Max height in pixels (default: 1600)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Frontmatter:")
	fmt.Fprintln(w, "      --no-frontmatter      Skip the YAML frontmatter block")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-book details and debug logs")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-json            Write logs as JSON")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: epub2md convert <input.epub> [output.md] [flags]")
	fmt.Fprintln(w, "       epub2md convert --all [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert EPUB files to Markdown. book.epub becomes book/book.md")
	fmt.Fprintln(w, "with extracted images in book/images/.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input     EPUB file (optional with --all or config input.defaultDir)")
	fmt.Fprintln(w, "  output    Markdown file, or a directory to hold the book directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -a, --all                 Convert every .epub in the current directory")
	fmt.Fprintln(w)
	printConversionFlags(w)
}

// printBatchUsage prints usage for the batch command.
func printBatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: epub2md batch <input-dir> <output-dir> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert every EPUB in input-dir. rel/x.epub becomes output-dir/rel/x/x.md.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -r, --recursive           Include subdirectories")
	fmt.Fprintln(w)
	printConversionFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: epub2md doctor [--json] [--pandoc <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check pandoc, the temp directory, and CI/container detection.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Machine-readable output")
	fmt.Fprintln(w, "      --pandoc <path>       Pandoc binary name or path (default: pandoc)")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "batch":
		printBatchUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: epub2md version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: epub2md help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
