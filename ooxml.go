package md2docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jinde/go-md2docx/internal/config"
)

// OOXML package part names.
const (
	partContentTypes = "[Content_Types].xml"
	partRootRels     = "_rels/.rels"
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
	partStyles       = "word/styles.xml"
	partNumbering    = "word/numbering.xml"
)

// zipEpoch pins part timestamps so identical input produces byte-identical
// archives. The zip format cannot represent dates before 1980.
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const contentTypesTemplate = xmlHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Default Extension="jpeg" ContentType="image/jpeg"/>` +
	`<Default Extension="jpg" ContentType="image/jpeg"/>` +
	`<Default Extension="gif" ContentType="image/gif"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`</Types>`

const rootRelsTemplate = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

// docxMedia is an embedded image part plus its relationship id.
type docxMedia struct {
	RelID string
	Name  string // file name under word/media/
	Data  []byte
}

// xmlEscape escapes text for use in XML content and attribute values.
func xmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

// halfPoints converts a point size to the half-point units OOXML uses.
func halfPoints(size float64) int {
	return int(size*2 + 0.5)
}

// documentRelsXML lists the parts document.xml references: styles,
// numbering and one relationship per embedded image.
func documentRelsXML(media []docxMedia) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	b.WriteString(`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>`)
	for _, m := range media {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/%s"/>`, m.RelID, m.Name)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// stylesXML builds word/styles.xml from the fonts configuration: the Normal
// base style plus Heading1 through Heading6 with configured fonts, sizes
// and color.
func stylesXML(cfg *config.Config) string {
	normal := cfg.Fonts.Normal
	heading := cfg.Fonts.Heading
	res := styleResolver{cfg: cfg}

	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)

	fmt.Fprintf(&b,
		`<w:docDefaults><w:rPrDefault><w:rPr>`+
			`<w:rFonts w:ascii="%s" w:hAnsi="%s" w:eastAsia="%s"/>`+
			`<w:sz w:val="%d"/><w:szCs w:val="%d"/>`+
			`</w:rPr></w:rPrDefault></w:docDefaults>`,
		xmlEscape(normal.Name), xmlEscape(normal.Name), xmlEscape(normal.EastAsia),
		halfPoints(normal.Size), halfPoints(normal.Size))

	fmt.Fprintf(&b,
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal">`+
			`<w:name w:val="Normal"/>`+
			`<w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s" w:eastAsia="%s"/><w:sz w:val="%d"/></w:rPr>`+
			`</w:style>`,
		xmlEscape(normal.Name), xmlEscape(normal.Name), xmlEscape(normal.EastAsia),
		halfPoints(normal.Size))

	for level := 1; level <= 6; level++ {
		fmt.Fprintf(&b,
			`<w:style w:type="paragraph" w:styleId="Heading%d">`+
				`<w:name w:val="heading %d"/><w:basedOn w:val="Normal"/>`+
				`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="%d"/></w:pPr>`+
				`<w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s" w:eastAsia="%s"/><w:b/>`+
				`<w:color w:val="%s"/><w:sz w:val="%d"/></w:rPr>`+
				`</w:style>`,
			level, level, level-1,
			xmlEscape(heading.Name), xmlEscape(heading.Name), xmlEscape(heading.EastAsia),
			heading.Colors.Hex(), halfPoints(res.headingSize(level)))
	}

	b.WriteString(`</w:styles>`)
	return b.String()
}

// numberingXML builds word/numbering.xml: one shared bullet definition and
// one numbering instance per ordered run, so each run restarts at 1.
func numberingXML(orderedRuns int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)

	// Abstract 0: bullets, identical glyph at every level.
	b.WriteString(`<w:abstractNum w:abstractNumId="0">`)
	for lvl := 0; lvl <= maxIndent; lvl++ {
		fmt.Fprintf(&b,
			`<w:lvl w:ilvl="%d"><w:start w:val="1"/><w:numFmt w:val="bullet"/>`+
				`<w:lvlText w:val="•"/><w:lvlJc w:val="left"/>`+
				`<w:pPr><w:ind w:left="%d" w:hanging="360"/></w:pPr></w:lvl>`,
			lvl, 720*(lvl+1))
	}
	b.WriteString(`</w:abstractNum>`)

	// Abstract 1: decimal numbering.
	b.WriteString(`<w:abstractNum w:abstractNumId="1">`)
	for lvl := 0; lvl <= maxIndent; lvl++ {
		fmt.Fprintf(&b,
			`<w:lvl w:ilvl="%d"><w:start w:val="1"/><w:numFmt w:val="decimal"/>`+
				`<w:lvlText w:val="%%%d."/><w:lvlJc w:val="left"/>`+
				`<w:pPr><w:ind w:left="%d" w:hanging="360"/></w:pPr></w:lvl>`,
			lvl, lvl+1, 720*(lvl+1))
	}
	b.WriteString(`</w:abstractNum>`)

	// numId 1 is the shared bullet instance.
	b.WriteString(`<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>`)

	// One decimal instance per ordered run, each forced to restart.
	for run := 0; run < orderedRuns; run++ {
		fmt.Fprintf(&b, `<w:num w:numId="%d"><w:abstractNumId w:val="1"/>`, run+2)
		for lvl := 0; lvl <= maxIndent; lvl++ {
			fmt.Fprintf(&b,
				`<w:lvlOverride w:ilvl="%d"><w:startOverride w:val="1"/></w:lvlOverride>`, lvl)
		}
		b.WriteString(`</w:num>`)
	}

	b.WriteString(`</w:numbering>`)
	return b.String()
}

// documentXML wraps the rendered body in the document root with an A4
// section: 210x297mm page, one-inch margins, in twentieths of a point.
func documentXML(body string) string {
	return xmlHeader +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">` +
		`<w:body>` + body +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>` +
		`</w:sectPr></w:body></w:document>`
}

// inlineImageXML is the drawing markup for an inline picture. cx and cy are
// display dimensions in EMU.
func inlineImageXML(relID string, docPrID, cx, cy int64, name string) string {
	return fmt.Sprintf(
		`<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
			`<wp:extent cx="%d" cy="%d"/>`+
			`<wp:docPr id="%d" name="%s"/>`+
			`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
			`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
			`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
			`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
			`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		cx, cy, docPrID, xmlEscape(name), docPrID, xmlEscape(name), relID, cx, cy)
}

// packageDocx assembles the OOXML zip container fully in memory.
func packageDocx(cfg *config.Config, body string, media []docxMedia, orderedRuns int) ([]byte, error) {
	parts := []struct {
		name string
		data []byte
	}{
		{partContentTypes, []byte(contentTypesTemplate)},
		{partRootRels, []byte(rootRelsTemplate)},
		{partDocument, []byte(documentXML(body))},
		{partDocumentRels, []byte(documentRelsXML(media))},
		{partStyles, []byte(stylesXML(cfg))},
		{partNumbering, []byte(numberingXML(orderedRuns))},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writePart := func(name string, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: zipEpoch,
		})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	for _, p := range parts {
		if err := writePart(p.name, p.data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDocxGeneration, p.name, err)
		}
	}
	for _, m := range media {
		if err := writePart("word/media/"+m.Name, m.Data); err != nil {
			return nil, fmt.Errorf("%w: media %s: %v", ErrDocxGeneration, m.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocxGeneration, err)
	}
	return buf.Bytes(), nil
}
