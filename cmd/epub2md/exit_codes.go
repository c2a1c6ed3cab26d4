package main

import (
	"errors"
	"os"

	epub2md "github.com/alnah/go-epub2md"
	"github.com/alnah/go-epub2md/internal/config"
	"github.com/alnah/go-epub2md/internal/logging"
)

// Exit codes for the epub2md CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Successful conversion
	ExitGeneral   = 1 // General/unexpected error, or a failed batch
	ExitUsage     = 2 // Invalid flags, config, or validation
	ExitIO        = 3 // File not found, permission denied, unreadable book
	ExitConverter = 4 // Converter backend missing or failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Batch failures always map to 1, whatever the individual causes
	if errors.Is(err, ErrConversionsFailed) {
		return ExitGeneral
	}

	// Converter errors (exit 4)
	if errors.Is(err, epub2md.ErrConverterNotFound) ||
		errors.Is(err, epub2md.ErrConverterFailed) {
		return ExitConverter
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, epub2md.ErrInputNotFound) ||
		errors.Is(err, epub2md.ErrNotEPUB) ||
		errors.Is(err, epub2md.ErrInvalidUTF8) ||
		errors.Is(err, epub2md.ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, epub2md.ErrInvalidImageBounds) ||
		errors.Is(err, epub2md.ErrUnknownBackend) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
