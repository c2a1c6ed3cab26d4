package epub2md

import (
	"errors"

	"github.com/alnah/go-epub2md/internal/convert"
	"github.com/alnah/go-epub2md/internal/media"
)

// Sentinel errors for library operations.
var (
	ErrInputNotFound = errors.New("input file not found")
	ErrNotEPUB       = errors.New("input is not an .epub file")
	ErrInvalidUTF8   = errors.New("converter output is not valid UTF-8")
	ErrWriteOutput   = errors.New("failed to write output")

	// Converter errors. The hint for a missing pandoc is part of the message.
	ErrConverterFailed   = convert.ErrConverterFailed
	ErrConverterNotFound = convert.ErrConverterNotFound
	ErrUnknownBackend    = convert.ErrUnknownBackend

	// Image option validation errors.
	ErrInvalidImageBounds = media.ErrInvalidBounds
)
