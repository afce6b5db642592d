package md2docx

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/jinde/go-md2docx/internal/config"
	"github.com/jinde/go-md2docx/internal/fileutil"
)

// Image scaling constants. EMU (English Metric Units) is the OOXML drawing
// unit: 914400 per inch, 9525 per pixel at 96dpi.
const (
	emuPerPixel      = 9525
	maxImageWidthEMU = 6 * 914400
)

// docxRenderer walks the block sequence once and accumulates the
// document.xml body, embedded media and numbering instances.
type docxRenderer struct {
	cfg    *config.Config
	styles styleResolver

	body  strings.Builder
	media []docxMedia

	run           listRun
	orderedNumIDs map[int]int // listRun serial -> numId
	emitted       bool
	docPrID       int64

	baseDir string
	warnf   func(format string, args ...any)
}

// renderDocx emits the word-format document for a block sequence.
func renderDocx(cfg *config.Config, blocks []Block, baseDir string, warnf func(string, ...any)) ([]byte, error) {
	r := &docxRenderer{
		cfg:           cfg,
		styles:        styleResolver{cfg: cfg},
		orderedNumIDs: make(map[int]int),
		baseDir:       baseDir,
		warnf:         warnf,
	}

	for _, b := range blocks {
		r.emit(b)
	}

	return packageDocx(cfg, r.body.String(), r.media, len(r.orderedNumIDs))
}

func (r *docxRenderer) emit(b Block) {
	if _, ok := b.(ListItem); !ok {
		r.run.interrupt()
	}

	switch blk := b.(type) {
	case Heading:
		r.heading(blk)
	case Paragraph:
		r.paragraph(blk.Spans, "", "")
	case ListItem:
		r.listItem(blk)
	case CodeBlock:
		r.codeBlock(blk.Text, blk.Language)
	case Quote:
		r.paragraph(blk.Spans, `<w:ind w:left="720"/>`, `<w:i/>`)
	case Image:
		r.image(resolveAssetPath(r.baseDir, blk.Path), blk.Alt)
	case Table:
		r.table(blk)
	case Diagram:
		// Unresolved diagrams are downgraded before rendering; a resolved
		// one embeds like any other image.
		r.image(blk.ImagePath, diagramKeyword)
	}

	r.emitted = true
}

func (r *docxRenderer) heading(h Heading) {
	level := h.Level
	if level > 6 {
		level = 6
	}

	var pPr strings.Builder
	fmt.Fprintf(&pPr, `<w:pStyle w:val="Heading%d"/>`, level)
	if r.styles.pageBreakBefore(level, !r.emitted) {
		pPr.WriteString(`<w:pageBreakBefore/>`)
	}
	if r.styles.headingRule(level) {
		fmt.Fprintf(&pPr,
			`<w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="%s"/></w:pBdr>`,
			r.cfg.Fonts.Heading.Colors.Hex())
	}

	fmt.Fprintf(&r.body, `<w:p><w:pPr>%s</w:pPr>%s</w:p>`, pPr.String(), r.spansXML(h.Spans, ""))
}

func (r *docxRenderer) paragraph(spans []Span, pPr, extraRPr string) {
	if pPr != "" {
		fmt.Fprintf(&r.body, `<w:p><w:pPr>%s</w:pPr>%s</w:p>`, pPr, r.spansXML(spans, extraRPr))
		return
	}
	fmt.Fprintf(&r.body, `<w:p>%s</w:p>`, r.spansXML(spans, extraRPr))
}

func (r *docxRenderer) listItem(item ListItem) {
	ordinal := r.run.observe(item)

	numID := 1 // shared bullet instance
	if item.Ordered {
		serial := r.run.runSerial()
		if ordinal == 1 {
			r.orderedNumIDs[serial] = len(r.orderedNumIDs) + 2
		}
		numID = r.orderedNumIDs[serial]
	}

	pPr := fmt.Sprintf(`<w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%d"/></w:numPr>`, item.Indent, numID)
	fmt.Fprintf(&r.body, `<w:p><w:pPr>%s</w:pPr>%s</w:p>`, pPr, r.spansXML(item.Spans, ""))
}

// codeBlock renders a fenced block as a bordered single-cell table, the
// same framing the original word output used.
func (r *docxRenderer) codeBlock(text, lang string) {
	code := r.cfg.Fonts.Code
	text = strings.ReplaceAll(text, "\t", "    ")
	spans := codeSpansFor(text, lang, code.Highlight)

	var runs strings.Builder
	for _, s := range spans {
		color := s.Color
		if color == "" {
			color = code.Colors.Hex()
		}
		rPr := fmt.Sprintf(
			`<w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:color w:val="%s"/><w:sz w:val="%d"/></w:rPr>`,
			xmlEscape(code.DocxName), xmlEscape(code.DocxName), color, halfPoints(code.Size))
		runs.WriteString(runXML(s.Text, rPr))
	}

	fmt.Fprintf(&r.body,
		`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblInd w:w="400" w:type="dxa"/>%s</w:tblPr>`+
			`<w:tr><w:tc><w:tcPr><w:shd w:val="clear" w:color="auto" w:fill="F5F5F5"/></w:tcPr>`+
			`<w:p><w:pPr><w:spacing w:before="40" w:after="40"/></w:pPr>%s</w:p>`+
			`</w:tc></w:tr></w:tbl><w:p/>`,
		tableBordersXML, runs.String())
}

const tableBordersXML = `<w:tblBorders>` +
	`<w:top w:val="single" w:sz="4"/><w:left w:val="single" w:sz="4"/>` +
	`<w:bottom w:val="single" w:sz="4"/><w:right w:val="single" w:sz="4"/>` +
	`<w:insideH w:val="single" w:sz="4"/><w:insideV w:val="single" w:sz="4"/>` +
	`</w:tblBorders>`

func (r *docxRenderer) image(path, name string) {
	if path == "" || !fileutil.FileExists(path) {
		r.placeholder(path)
		return
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the document being converted
	if err != nil {
		r.placeholder(path)
		return
	}

	conf, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		r.warnf("image %s: %v", path, err)
		r.placeholder(path)
		return
	}

	cx := int64(conf.Width) * emuPerPixel
	cy := int64(conf.Height) * emuPerPixel
	if cx > maxImageWidthEMU {
		cy = cy * maxImageWidthEMU / cx
		cx = maxImageWidthEMU
	}

	relID := fmt.Sprintf("rId%d", len(r.media)+3)
	fileName := fmt.Sprintf("image%d.%s", len(r.media)+1, format)
	r.media = append(r.media, docxMedia{RelID: relID, Name: fileName, Data: data})

	r.docPrID++
	if name == "" {
		name = fileName
	}
	fmt.Fprintf(&r.body, `<w:p><w:r>%s</w:r></w:p>`,
		inlineImageXML(relID, r.docPrID, cx, cy, name))
}

func (r *docxRenderer) placeholder(path string) {
	r.warnf("image not found: %s", path)
	text := fmt.Sprintf("[image not found: %s]", path)
	r.paragraph([]Span{{Text: text}}, "", "")
}

func (r *docxRenderer) table(t Table) {
	var b strings.Builder
	fmt.Fprintf(&b, `<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/>%s</w:tblPr>`, tableBordersXML)

	b.WriteString(`<w:tr>`)
	for _, cell := range t.Header {
		fmt.Fprintf(&b,
			`<w:tc><w:tcPr><w:shd w:val="clear" w:color="auto" w:fill="D9D9D9"/></w:tcPr><w:p>%s</w:p></w:tc>`,
			r.spansXML(Tokenize(cell), `<w:b/>`))
	}
	b.WriteString(`</w:tr>`)

	for _, row := range t.Rows {
		b.WriteString(`<w:tr>`)
		for _, cell := range row {
			fmt.Fprintf(&b, `<w:tc><w:p>%s</w:p></w:tc>`, r.spansXML(Tokenize(cell), ""))
		}
		b.WriteString(`</w:tr>`)
	}

	b.WriteString(`</w:tbl><w:p/>`)
	r.body.WriteString(b.String())
}

// spansXML renders inline spans as runs. Bold spans get the bold color,
// code spans switch to the monospace font with the code color; extraRPr is
// appended to every run (quotes pass italic).
func (r *docxRenderer) spansXML(spans []Span, extraRPr string) string {
	code := r.cfg.Fonts.Code
	var b strings.Builder
	for _, s := range spans {
		var props strings.Builder
		switch {
		case s.Bold:
			fmt.Fprintf(&props, `<w:b/><w:color w:val="%s"/>`, r.cfg.Fonts.Bold.Colors.Hex())
		case s.Code:
			fmt.Fprintf(&props, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:color w:val="%s"/>`,
				xmlEscape(code.DocxName), xmlEscape(code.DocxName), code.Colors.Hex())
		}
		props.WriteString(extraRPr)

		rPr := ""
		if props.Len() > 0 {
			rPr = "<w:rPr>" + props.String() + "</w:rPr>"
		}
		b.WriteString(runXML(s.Text, rPr))
	}
	return b.String()
}

// runXML emits one run, turning embedded newlines into hard breaks.
func runXML(text, rPr string) string {
	var b strings.Builder
	b.WriteString("<w:r>")
	b.WriteString(rPr)
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString("<w:br/>")
		}
		fmt.Fprintf(&b, `<w:t xml:space="preserve">%s</w:t>`, xmlEscape(line))
	}
	b.WriteString("</w:r>")
	return b.String()
}

// resolveAssetPath resolves a document-relative path against the source
// directory.
func resolveAssetPath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
