package main

import (
	"errors"
	"os"

	md2docx "github.com/jinde/go-md2docx"
)

// Exit codes for md2docx CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, 3=I/O.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid command, flags, or input document
	ExitIO      = 3 // File not found, permission denied
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/validation errors (exit 2)
	if errors.Is(err, ErrNoCommand) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, md2docx.ErrEmptyMarkdown) ||
		errors.Is(err, md2docx.ErrInvalidFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
