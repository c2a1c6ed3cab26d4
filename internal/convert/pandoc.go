package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/alnah/go-epub2md/internal/hints"
)

// Pandoc converts EPUB to Markdown by invoking the pandoc CLI.
type Pandoc struct {
	Path      string
	ExtraArgs []string
	Runner    CommandRunner
}

// NewPandoc creates a Pandoc converter. A nil runner uses ExecRunner.
func NewPandoc(path string, extraArgs []string, runner CommandRunner) *Pandoc {
	if runner == nil {
		runner = &ExecRunner{}
	}
	return &Pandoc{Path: path, ExtraArgs: extraArgs, Runner: runner}
}

func (p *Pandoc) Name() string { return BackendPandoc }

// Args builds the pandoc command line for req.
func (p *Pandoc) Args(req Request) []string {
	args := []string{req.EPUBPath, "-f", "epub", "-t", "markdown"}
	if req.ImagesDir != "" {
		args = append(args, "--extract-media="+req.ImagesDir)
	}
	return append(args, p.ExtraArgs...)
}

// Convert runs pandoc and returns its standard output.
func (p *Pandoc) Convert(ctx context.Context, req Request) (string, error) {
	stdout, stderr, err := p.Runner.Run(ctx, p.Path, p.Args(req)...)
	if err != nil {
		return "", classify(ctx, p.Path, stderr, err)
	}
	return stdout, nil
}

// Version returns the first line of `pandoc --version`.
func (p *Pandoc) Version(ctx context.Context) (string, error) {
	stdout, stderr, err := p.Runner.Run(ctx, p.Path, "--version")
	if err != nil {
		return "", classify(ctx, p.Path, stderr, err)
	}
	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSpace(first), nil
}

func classify(ctx context.Context, path, stderr string, err error) error {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s%s", ErrConverterNotFound, path, hints.ForPandocMissing())
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s timed out: %w%s", ErrConverterFailed, path, ctx.Err(), hints.ForTimeout())
	case ctx.Err() != nil:
		return ctx.Err()
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%w: %s: %w", ErrConverterFailed, msg, err)
	}
	return fmt.Errorf("%w: %w", ErrConverterFailed, err)
}
