// Package md2docx converts Markdown documents to styled DOCX or PDF files.
//
// # Quick Start
//
// Create a Service and convert markdown to document bytes:
//
//	svc := md2docx.New(nil)
//	out, err := svc.Convert(ctx, md2docx.Input{
//	    Markdown: "# Hello\n\nSome **bold** text.",
//	    Format:   md2docx.FormatDocx,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hello.docx", out, 0644)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Block parsing: a single forward-only pass over the source lines emits
//     typed blocks (headings, paragraphs, list items, code fences, quotes,
//     images, tables, diagrams), tokenizing inline **bold** and `code` spans.
//  2. Diagram resolution: mermaid fenced blocks are rendered to images by a
//     Kroki-compatible service; failures downgrade the block to plain code.
//  3. Rendering: the block sequence is walked once by the selected backend
//     (OOXML word document or gofpdf flow layout), both applying the same
//     fonts configuration.
//
// Document generation completes fully in memory; callers decide where the
// bytes go.
//
// # Configuration
//
// Fonts, sizes, colors and page-break behaviour come from a config file
// loaded through internal/config; pass nil to use the built-in defaults.
// Per-service options tune the pipeline:
//
//	svc := md2docx.New(cfg,
//	    md2docx.WithTimeout(time.Minute),
//	    md2docx.WithDiagramEndpoint("https://kroki.example"),
//	    md2docx.WithWarningWriter(os.Stderr),
//	)
package md2docx
