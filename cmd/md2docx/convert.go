package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	md2docx "github.com/jinde/go-md2docx"
	"github.com/jinde/go-md2docx/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrWriteOutput      = errors.New("failed to write output file")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
	ErrInvalidTimeout   = errors.New("invalid timeout")
)

// filePermissions is rw-r--r--: owner read+write, others read.
const filePermissions = 0o644

// runConvert orchestrates a single file conversion.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		printConvertUsage(env.Stderr)
		return ErrNoInput
	}

	inputPath := positional[0]
	if err := validateMarkdownExtension(inputPath); err != nil {
		return err
	}

	md, err := os.ReadFile(inputPath) // #nosec G304 -- input path is user-provided
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	outputPath := flags.output
	if outputPath == "" && len(positional) > 1 {
		outputPath = positional[1]
	}
	format := resolveFormat(flags.pdf, outputPath)
	if outputPath == "" {
		outputPath = derivedOutputPath(inputPath, format)
	}

	opts := []md2docx.Option{}
	if !flags.common.quiet {
		opts = append(opts, md2docx.WithWarningWriter(env.Stderr))
	}
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, flags.timeout)
		}
		opts = append(opts, md2docx.WithTimeout(d))
	}
	if flags.endpoint != "" {
		opts = append(opts, md2docx.WithDiagramEndpoint(flags.endpoint))
	}

	service := md2docx.New(loadConfig(flags.common, env), opts...)

	start := time.Now()
	out, err := service.Convert(ctx, md2docx.Input{
		Markdown: string(md),
		BaseDir:  filepath.Dir(inputPath),
		Format:   format,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, out, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", outputPath)
	}
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Converted in %s\n", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// loadConfig resolves and loads the fonts configuration. A missing or
// malformed file degrades to the built-in defaults with a warning; it never
// fails the run.
func loadConfig(common commonFlags, env *Environment) *config.Config {
	path := config.Resolve(common.config)
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil && !common.quiet {
		fmt.Fprintf(env.Stderr, "warning: %v, using defaults\n", err)
	}
	return cfg
}

// resolveFormat picks the output format: a .pdf output extension implies
// PDF even without the flag.
func resolveFormat(pdfFlag bool, outputPath string) string {
	if pdfFlag || strings.EqualFold(filepath.Ext(outputPath), ".pdf") {
		return md2docx.FormatPDF
	}
	return md2docx.FormatDocx
}

// derivedOutputPath swaps the input extension for the format's extension.
func derivedOutputPath(inputPath, format string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + "." + format
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	ext := filepath.Ext(path)
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}
