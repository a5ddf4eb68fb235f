package main

import (
	"errors"
	"os"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/config"
	"github.com/alnah/go-img2pdf/internal/fmtutil"
	"github.com/alnah/go-img2pdf/internal/urlutil"
)

// Exit codes for the img2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Run completed with at least one success (or empty input)
	ExitGeneral = 1 // General/unexpected error, or every item failed
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Destination unwritable, input file missing
	ExitCache   = 4 // Payload cache configured but unreachable
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Cache bootstrap errors (exit 4)
	if errors.Is(err, ErrCacheUnavailable) {
		return ExitCache
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadList) ||
		errors.Is(err, ErrReadCSV) ||
		errors.Is(err, ErrOpenBucket) ||
		errors.Is(err, ErrLogFile) ||
		errors.Is(err, img2pdf.ErrDestination) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, fmtutil.ErrInvalidSize) ||
		errors.Is(err, urlutil.ErrInvalidURL) ||
		errors.Is(err, img2pdf.ErrDuplicateItem) {
		return ExitUsage
	}

	return ExitGeneral
}
