package main

import (
	"fmt"
	"os"
	"testing"

	md2docx "github.com/jinde/go-md2docx"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"read markdown", ErrReadMarkdown, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"file not found", os.ErrNotExist, ExitIO},
		{"no command", ErrNoCommand, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"no input", ErrNoInput, ExitUsage},
		{"bad extension", ErrInvalidExtension, ExitUsage},
		{"bad timeout", ErrInvalidTimeout, ExitUsage},
		{"empty markdown", md2docx.ErrEmptyMarkdown, ExitUsage},
		{"invalid format", md2docx.ErrInvalidFormat, ExitUsage},
		{"wrapped sentinel", fmt.Errorf("context: %w", ErrReadMarkdown), ExitIO},
		{"unexpected", fmt.Errorf("boom"), ExitGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
