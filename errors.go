package md2docx

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrInvalidFormat  = errors.New("invalid output format")
	ErrDocxGeneration = errors.New("DOCX generation failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Diagram resolution errors. Never fatal to a conversion: the service
	// downgrades the block and continues.
	ErrDiagramEncode  = errors.New("diagram source encoding failed")
	ErrDiagramRequest = errors.New("diagram service request failed")
	ErrDiagramStatus  = errors.New("diagram service returned non-success status")
	ErrDiagramEmpty   = errors.New("diagram service returned an empty image")
)
