package md2docx

import (
	"io"
	"strings"
	"time"
)

// Output format constants.
const (
	FormatDocx = "docx"
	FormatPDF  = "pdf"
)

// Span is a run of text within a block carrying one style attribute.
// Bold and Code are mutually exclusive; a span with neither is plain text.
// Concatenating the Text of all spans in a block reconstructs the source
// line with markup delimiters removed.
type Span struct {
	Text string
	Bold bool
	Code bool
}

// Block is one structural unit of the parsed document. The concrete types
// are Heading, Paragraph, ListItem, CodeBlock, Quote, Image, Table and
// Diagram. Every block is independently renderable: list items carry their
// own indent and ordering but numbering across a run is computed by the
// renderer.
type Block interface {
	block()
}

// Heading is a section heading, level 1 (largest) through 6.
type Heading struct {
	Level int
	Spans []Span
}

// Paragraph is a run of flowing text. Source lines separated by nothing but
// a newline are joined with single spaces.
type Paragraph struct {
	Spans []Span
}

// ListItem is a single bulleted or numbered list entry. Indent is a
// discrete level derived from leading whitespace, 0 for a top-level item.
type ListItem struct {
	Ordered bool
	Indent  int
	Spans   []Span
}

// CodeBlock is a fenced code block. Text holds the lines between the fences
// verbatim, newline-joined, with no inline tokenization applied.
type CodeBlock struct {
	Language string
	Text     string
}

// Quote is a blockquote line.
type Quote struct {
	Spans []Span
}

// Image is an image reference from ![alt](path) syntax.
type Image struct {
	Path string
	Alt  string
}

// Table is a pipe-delimited table. Every row in Rows has exactly
// len(Header) cells: short source rows are padded with empty cells and long
// rows are truncated by the parser.
type Table struct {
	Header []string
	Rows   [][]string
}

// Diagram is a code block whose language tag names the diagram keyword.
// ImagePath is empty until the resolver renders the source to an image.
type Diagram struct {
	Source    string
	ImagePath string
}

func (Heading) block()   {}
func (Paragraph) block() {}
func (ListItem) block()  {}
func (CodeBlock) block() {}
func (Quote) block()     {}
func (Image) block()     {}
func (Table) block()     {}
func (Diagram) block()   {}

// SpanText concatenates span text, reconstructing the line with markup
// stripped.
func SpanText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Input contains conversion parameters.
type Input struct {
	Markdown string // Markdown content (required)
	BaseDir  string // Directory for resolving relative image paths (optional)
	Format   string // FormatDocx or FormatPDF (default: FormatDocx)
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout  time.Duration
	endpoint string
}

// defaultTimeout bounds the diagram rendering call so one unresolvable
// diagram cannot hang a conversion.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the diagram resolution timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2docx: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithDiagramEndpoint overrides the diagram rendering service base URL.
func WithDiagramEndpoint(url string) Option {
	return func(s *Service) {
		s.cfg.endpoint = strings.TrimRight(url, "/")
	}
}

// WithWarningWriter directs degraded-condition notices (diagram failures,
// missing fonts, missing images) to w. By default they are discarded.
func WithWarningWriter(w io.Writer) Option {
	return func(s *Service) {
		s.warn = w
	}
}
