package md2docx

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/jinde/go-md2docx/internal/config"
	"github.com/jinde/go-md2docx/internal/fileutil"
)

// pdfEpoch pins the document dates so identical input produces
// byte-identical output. The zero time would make gofpdf stamp the wall
// clock.
var pdfEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// ptToMM converts a point size to millimeters.
func ptToMM(pt float64) float64 { return pt * 25.4 / 72 }

// pdfRenderer walks the block sequence once and drives a gofpdf document.
// Layout rules (heading sizes, page breaks, list numbering) come from the
// same styleResolver the word backend uses.
type pdfRenderer struct {
	pdf    *gofpdf.Fpdf
	cfg    *config.Config
	styles styleResolver

	bodyFont string
	codeFont string
	unicode  bool // bodyFont is an embedded UTF-8 font
	tr       func(string) string

	run     listRun
	emitted bool

	baseDir string
	warnf   func(format string, args ...any)
}

// renderPDF emits the PDF document for a block sequence.
func renderPDF(cfg *config.Config, blocks []Block, baseDir string, warnf func(string, ...any)) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(pdfEpoch)
	pdf.SetModificationDate(pdfEpoch)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 18)

	r := &pdfRenderer{
		pdf:     pdf,
		cfg:     cfg,
		styles:  styleResolver{cfg: cfg},
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		baseDir: baseDir,
		warnf:   warnf,
	}
	r.setupFonts()

	pdf.AddPage()
	for _, b := range blocks {
		r.emit(b)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// setupFonts probes the configured candidate paths and registers the first
// loadable TrueType under the configured family name, in every style so
// bold and italic markup cannot hit an unmapped face. When no candidate
// loads, the built-in Helvetica is used: non-Latin glyphs will not render
// correctly, a known degradation rather than an error.
func (r *pdfRenderer) setupFonts() {
	if path := probeFontPath(r.cfg.PDFFontPaths); path != "" {
		name := r.cfg.Fonts.Normal.PDFName
		for _, style := range []string{"", "B", "I", "BI"} {
			r.pdf.AddUTF8Font(name, style, path)
		}
		if !r.pdf.Err() {
			r.bodyFont = name
			r.unicode = true
		}
	}
	if r.bodyFont == "" {
		r.warnf("no embeddable font found, falling back to Helvetica")
		r.bodyFont = "Helvetica"
	}

	r.codeFont = r.cfg.Fonts.Code.PDFName
	if !isCorePDFFont(r.codeFont) {
		if !(r.unicode && strings.EqualFold(r.codeFont, r.bodyFont)) {
			r.codeFont = "Courier"
		}
	}
}

// probeFontPath returns the first candidate that exists and loads cleanly.
// Candidates are loaded into a scratch document first: a corrupt font file
// must not poison the real one.
func probeFontPath(paths []string) string {
	for _, p := range paths {
		if !strings.HasSuffix(strings.ToLower(p), ".ttf") {
			continue
		}
		if !fileutil.FileExists(p) {
			continue
		}
		scratch := gofpdf.New("P", "mm", "A4", "")
		scratch.AddUTF8Font("probe", "", p)
		if scratch.Err() {
			continue
		}
		return p
	}
	return ""
}

func isCorePDFFont(name string) bool {
	switch strings.ToLower(name) {
	case "courier", "helvetica", "times", "arial", "symbol", "zapfdingbats":
		return true
	}
	return false
}

func (r *pdfRenderer) emit(b Block) {
	if _, ok := b.(ListItem); !ok {
		r.run.interrupt()
	}

	switch blk := b.(type) {
	case Heading:
		r.heading(blk)
	case Paragraph:
		r.paragraph(blk.Spans)
	case ListItem:
		r.listItem(blk)
	case CodeBlock:
		r.codeBlock(blk.Text, blk.Language)
	case Quote:
		r.quote(blk.Spans)
	case Image:
		r.image(resolveAssetPath(r.baseDir, blk.Path))
	case Table:
		r.table(blk)
	case Diagram:
		r.image(blk.ImagePath)
	}

	r.emitted = true
}

// writeText writes s with the current font, translating through the
// cp1252 mapper when the active font is a built-in one.
func (r *pdfRenderer) writeText(lineHt float64, s string, coreFont bool) {
	if coreFont {
		s = r.tr(s)
	}
	r.pdf.Write(lineHt, s)
}

// writeSpans writes inline spans at the given base size, switching font
// and color per span and turning embedded newlines into line breaks.
func (r *pdfRenderer) writeSpans(spans []Span, size float64, baseStyle string, cr, cg, cb int) {
	lineHt := ptToMM(size) * 1.4
	for _, s := range spans {
		font, style, core := r.bodyFont, baseStyle, !r.unicode
		tr, tg, tb := cr, cg, cb
		switch {
		case s.Bold:
			// Headings are already bold; adding another B would name a
			// font style that does not exist.
			if !strings.Contains(style, "B") {
				style += "B"
			}
			tr, tg, tb = r.cfg.Fonts.Bold.Colors.Channels()
		case s.Code:
			font = r.codeFont
			core = isCorePDFFont(r.codeFont)
			tr, tg, tb = r.cfg.Fonts.Code.Colors.Channels()
		}
		r.pdf.SetFont(font, style, size)
		r.pdf.SetTextColor(tr, tg, tb)
		for i, line := range strings.Split(s.Text, "\n") {
			if i > 0 {
				r.pdf.Ln(lineHt)
			}
			r.writeText(lineHt, line, core)
		}
	}
	r.pdf.SetFont(r.bodyFont, "", size)
	r.pdf.SetTextColor(0, 0, 0)
}

func (r *pdfRenderer) heading(h Heading) {
	level := h.Level
	if level > 6 {
		level = 6
	}
	size := r.styles.headingSize(level)
	lineHt := ptToMM(size) * 1.3

	if r.styles.pageBreakBefore(level, !r.emitted) {
		r.pdf.AddPage()
	}

	hr, hg, hb := r.cfg.Fonts.Heading.Colors.Channels()
	r.pdf.Ln(2)
	r.writeSpans(h.Spans, size, "B", hr, hg, hb)
	r.pdf.Ln(lineHt)

	if r.styles.headingRule(level) {
		left, _, right, _ := r.pdf.GetMargins()
		pageW, _ := r.pdf.GetPageSize()
		y := r.pdf.GetY() + 0.5
		r.pdf.SetDrawColor(hr, hg, hb)
		r.pdf.SetLineWidth(0.4)
		r.pdf.Line(left, y, pageW-right, y)
		r.pdf.Ln(3)
	} else {
		r.pdf.Ln(1)
	}
}

func (r *pdfRenderer) paragraph(spans []Span) {
	size := r.cfg.Fonts.Normal.Size
	lineHt := ptToMM(size) * 1.4
	r.writeSpans(spans, size, "", 0, 0, 0)
	r.pdf.Ln(lineHt)
	r.pdf.Ln(1.5)
}

func (r *pdfRenderer) listItem(item ListItem) {
	ordinal := r.run.observe(item)
	size := r.cfg.Fonts.Normal.Size
	lineHt := ptToMM(size) * 1.4

	left, _, _, _ := r.pdf.GetMargins()
	indent := left + 4 + float64(item.Indent)*6
	r.pdf.SetLeftMargin(indent)
	r.pdf.SetX(indent)

	marker := "• "
	if item.Ordered {
		marker = fmt.Sprintf("%d. ", ordinal)
	}
	r.pdf.SetFont(r.bodyFont, "", size)
	r.pdf.SetTextColor(0, 0, 0)
	r.writeText(lineHt, marker, !r.unicode)
	r.writeSpans(item.Spans, size, "", 0, 0, 0)

	r.pdf.Ln(lineHt)
	r.pdf.SetLeftMargin(left)
	r.pdf.SetX(left)
}

func (r *pdfRenderer) quote(spans []Span) {
	size := r.cfg.Fonts.Normal.Size
	lineHt := ptToMM(size) * 1.4

	left, _, _, _ := r.pdf.GetMargins()
	indent := left + 8
	r.pdf.SetLeftMargin(indent)
	r.pdf.SetX(indent)
	r.writeSpans(spans, size, "I", 105, 105, 105)
	r.pdf.Ln(lineHt)
	r.pdf.SetLeftMargin(left)
	r.pdf.SetX(left)
	r.pdf.Ln(1.5)
}

func (r *pdfRenderer) codeBlock(text, lang string) {
	code := r.cfg.Fonts.Code
	text = strings.ReplaceAll(text, "\t", "    ")
	spans := codeSpansFor(text, lang, code.Highlight)
	lines := splitCodeLines(spans)

	lineHt := ptToMM(code.Size) * 1.4
	blockH := float64(len(lines))*lineHt + 4

	left, top, right, bottom := r.pdf.GetMargins()
	pageW, pageH := r.pdf.GetPageSize()
	contentW := pageW - left - right
	usableH := pageH - top - bottom

	// Keep the block on one page when it can fit on one.
	if blockH < usableH && r.pdf.GetY()+blockH > pageH-bottom {
		r.pdf.AddPage()
	}

	boxed := blockH < usableH
	if boxed {
		r.pdf.SetFillColor(245, 245, 245)
		r.pdf.SetDrawColor(0, 0, 0)
		r.pdf.SetLineWidth(0.2)
		r.pdf.Rect(left+4, r.pdf.GetY(), contentW-8, blockH, "FD")
		r.pdf.SetY(r.pdf.GetY() + 2)
	}

	coreCode := isCorePDFFont(r.codeFont)
	defaultR, defaultG, defaultB := code.Colors.Channels()
	for _, line := range lines {
		r.pdf.SetX(left + 6)
		for _, seg := range line {
			tr, tg, tb := defaultR, defaultG, defaultB
			if seg.Color != "" {
				tr, tg, tb = hexChannels(seg.Color)
			}
			r.pdf.SetFont(r.codeFont, "", code.Size)
			r.pdf.SetTextColor(tr, tg, tb)
			r.writeText(lineHt, seg.Text, coreCode)
		}
		r.pdf.Ln(lineHt)
	}
	if boxed {
		r.pdf.SetY(r.pdf.GetY() + 2)
	}

	r.pdf.SetFont(r.bodyFont, "", r.cfg.Fonts.Normal.Size)
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.Ln(2)
}

// splitCodeLines regroups colored code spans into per-line segments so the
// renderer can advance the cursor once per source line.
func splitCodeLines(spans []codeSpan) [][]codeSpan {
	lines := [][]codeSpan{nil}
	for _, s := range spans {
		parts := strings.Split(s.Text, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part == "" {
				continue
			}
			last := len(lines) - 1
			lines[last] = append(lines[last], codeSpan{Text: part, Color: s.Color})
		}
	}
	// A trailing newline leaves an empty last line; drop it.
	if len(lines) > 1 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// hexChannels parses an rrggbb triplet.
func hexChannels(hex string) (int, int, int) {
	var r, g, b int
	_, _ = fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return r, g, b
}

func (r *pdfRenderer) image(path string) {
	if path == "" || !fileutil.FileExists(path) {
		r.placeholder(path)
		return
	}

	// Pre-validate with the standard decoders: a corrupt file handed to
	// gofpdf would set its sticky error and spoil the whole document.
	f, err := os.Open(path) // #nosec G304 -- path comes from the document being converted
	if err != nil {
		r.placeholder(path)
		return
	}
	_, _, decodeErr := image.DecodeConfig(f)
	_ = f.Close()
	if decodeErr != nil {
		r.warnf("image %s: %v", path, decodeErr)
		r.placeholder(path)
		return
	}

	opt := gofpdf.ImageOptions{ReadDpi: true}
	info := r.pdf.RegisterImageOptions(path, opt)
	if info == nil || r.pdf.Err() {
		r.placeholder(path)
		return
	}

	left, _, right, _ := r.pdf.GetMargins()
	pageW, _ := r.pdf.GetPageSize()
	contentW := pageW - left - right
	dispW := info.Width()
	if dispW > contentW {
		dispW = contentW
	}
	r.pdf.ImageOptions(path, left, r.pdf.GetY(), dispW, 0, true, opt, 0, "")
	r.pdf.Ln(3)
}

func (r *pdfRenderer) placeholder(path string) {
	r.warnf("image not found: %s", path)
	r.paragraph([]Span{{Text: fmt.Sprintf("[image not found: %s]", path)}})
}

func (r *pdfRenderer) table(t Table) {
	if len(t.Header) == 0 {
		return
	}
	size := r.cfg.Fonts.Normal.Size
	left, _, right, _ := r.pdf.GetMargins()
	pageW, _ := r.pdf.GetPageSize()
	colW := (pageW - left - right) / float64(len(t.Header))
	rowH := ptToMM(size) * 2

	core := !r.unicode
	cell := func(text string, bold bool, fill bool) {
		style := ""
		if bold {
			style = "B"
		}
		r.pdf.SetFont(r.bodyFont, style, size)
		if core {
			text = r.tr(text)
		}
		r.pdf.CellFormat(colW, rowH, text, "1", 0, "L", fill, 0, "")
	}

	r.pdf.SetFillColor(217, 217, 217)
	r.pdf.SetTextColor(0, 0, 0)
	for _, h := range t.Header {
		cell(SpanText(Tokenize(h)), true, true)
	}
	r.pdf.Ln(rowH)

	for _, row := range t.Rows {
		for _, c := range row {
			cell(SpanText(Tokenize(c)), false, false)
		}
		r.pdf.Ln(rowH)
	}

	r.pdf.SetFont(r.bodyFont, "", size)
	r.pdf.Ln(2)
}
