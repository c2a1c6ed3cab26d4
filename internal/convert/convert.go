// Package convert turns an EPUB archive into raw Markdown. Two backends
// exist: pandoc, run as an external process, and a pure Go fallback built
// on goquery and html-to-markdown.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/alnah/go-epub2md/internal/logging"
)

// Sentinel errors for converter failures.
var (
	ErrConverterNotFound = errors.New("converter not found")
	ErrConverterFailed   = errors.New("converter failed")
	ErrUnknownBackend    = errors.New("unknown converter backend")
)

// Backend names.
const (
	BackendAuto   = "auto"
	BackendPandoc = "pandoc"
	BackendNative = "native"
)

// Request describes one conversion.
type Request struct {
	EPUBPath string
	// ImagesDir receives extracted images. Empty disables extraction.
	ImagesDir string
	// ImagesRef is how the images directory is referenced from the output
	// Markdown. Defaults to ImagesDir.
	ImagesRef string
}

func (r Request) imagesRef() string {
	if r.ImagesRef != "" {
		return r.ImagesRef
	}
	return r.ImagesDir
}

// Converter produces raw Markdown from an EPUB file.
type Converter interface {
	Name() string
	Convert(ctx context.Context, req Request) (string, error)
}

// LookPath is exec.LookPath; tests replace it.
var LookPath = exec.LookPath

// Options configures backend selection.
type Options struct {
	Backend    string
	PandocPath string
	ExtraArgs  []string
	Runner     CommandRunner
	Logger     *slog.Logger
}

// New returns the converter for opts.Backend. "auto" picks pandoc when the
// binary is on PATH and falls back to the native converter otherwise.
func New(opts Options) (Converter, error) {
	logger := logging.OrDiscard(opts.Logger)
	pandocPath := opts.PandocPath
	if pandocPath == "" {
		pandocPath = "pandoc"
	}

	switch strings.ToLower(opts.Backend) {
	case BackendPandoc:
		return NewPandoc(pandocPath, opts.ExtraArgs, opts.Runner), nil
	case BackendNative:
		return NewNative(logger), nil
	case BackendAuto, "":
		if _, err := LookPath(pandocPath); err == nil {
			logger.Debug("using pandoc converter", "path", pandocPath)
			return NewPandoc(pandocPath, opts.ExtraArgs, opts.Runner), nil
		}
		logger.Info("pandoc not found, using native converter", "path", pandocPath)
		return NewNative(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
