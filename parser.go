package md2docx

import (
	"regexp"
	"strings"
)

// Parser states. The parser is a single forward-only pass: one state value
// plus an accumulator per block-in-progress, nothing else.
const (
	stateOutside = iota
	stateCodeFence
	stateTable
)

const (
	codeFence = "```"

	// indentUnit is the leading-whitespace width of one list level, after
	// tabs are expanded to four spaces.
	indentUnit = 2
	maxIndent  = 8

	// diagramKeyword is the fence language tag routed to the diagram
	// resolver.
	diagramKeyword = "mermaid"
)

var (
	orderedItemPattern = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	imagePattern       = regexp.MustCompile(`^!\[(.*?)\]\((.*?)\)$`)
	tableSepCell       = regexp.MustCompile(`^:?-+:?$`)
)

type parser struct {
	blocks []Block
	state  int

	para []string

	fenceLang  string
	fenceLines []string
	inFence    bool

	tableLines []string
}

// Parse consumes a Markdown document line by line and returns its blocks in
// source order. Malformed content never fails: unpaired markers stay
// literal, uneven table rows are normalized, and an unterminated fence is
// closed at end of input with whatever accumulated.
func Parse(markdown string) []Block {
	p := &parser{}
	normalized := strings.ReplaceAll(markdown, "\r\n", "\n")
	for _, line := range strings.Split(normalized, "\n") {
		p.feed(line)
	}
	p.finish()
	return p.blocks
}

func (p *parser) feed(line string) {
	raw := strings.TrimRight(line, "\r")
	trimmed := strings.TrimSpace(raw)

	switch p.state {
	case stateCodeFence:
		if strings.HasPrefix(trimmed, codeFence) {
			p.flushFence()
			p.state = stateOutside
			return
		}
		// Raw lines accumulate verbatim: indentation matters inside a fence.
		p.fenceLines = append(p.fenceLines, raw)

	case stateTable:
		if strings.HasPrefix(trimmed, "|") {
			p.tableLines = append(p.tableLines, trimmed)
			return
		}
		p.flushTable()
		p.state = stateOutside
		p.outside(raw, trimmed)

	default:
		p.outside(raw, trimmed)
	}
}

func (p *parser) outside(raw, trimmed string) {
	switch {
	case strings.HasPrefix(trimmed, codeFence):
		p.flushPara()
		p.state = stateCodeFence
		p.inFence = true
		p.fenceLang = strings.TrimSpace(trimmed[len(codeFence):])
		p.fenceLines = nil

	case trimmed == "":
		p.flushPara()

	case strings.HasPrefix(trimmed, "|"):
		p.flushPara()
		p.state = stateTable
		p.tableLines = []string{trimmed}

	default:
		if level, text, ok := headingLine(trimmed); ok {
			p.flushPara()
			p.blocks = append(p.blocks, Heading{Level: level, Spans: Tokenize(text)})
			return
		}
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			p.flushPara()
			p.blocks = append(p.blocks, ListItem{
				Indent: indentLevel(raw),
				Spans:  Tokenize(trimmed[2:]),
			})
			return
		}
		if m := orderedItemPattern.FindStringSubmatch(trimmed); m != nil {
			p.flushPara()
			p.blocks = append(p.blocks, ListItem{
				Ordered: true,
				Indent:  indentLevel(raw),
				Spans:   Tokenize(m[2]),
			})
			return
		}
		if strings.HasPrefix(trimmed, ">") {
			p.flushPara()
			content := strings.TrimPrefix(strings.TrimPrefix(trimmed, ">"), " ")
			p.blocks = append(p.blocks, Quote{Spans: Tokenize(content)})
			return
		}
		if m := imagePattern.FindStringSubmatch(trimmed); m != nil {
			p.flushPara()
			p.blocks = append(p.blocks, Image{Alt: m[1], Path: m[2]})
			return
		}
		p.para = append(p.para, trimmed)
	}
}

func (p *parser) finish() {
	switch p.state {
	case stateCodeFence:
		// Unterminated fence: close with whatever accumulated.
		p.flushFence()
	case stateTable:
		p.flushTable()
	}
	p.flushPara()
}

// flushPara emits accumulated paragraph lines joined with single spaces.
func (p *parser) flushPara() {
	if len(p.para) == 0 {
		return
	}
	text := strings.Join(p.para, " ")
	p.para = nil
	p.blocks = append(p.blocks, Paragraph{Spans: Tokenize(text)})
}

func (p *parser) flushFence() {
	if !p.inFence {
		return
	}
	lang := p.fenceLang
	lines := p.fenceLines
	p.inFence = false
	p.fenceLang = ""
	p.fenceLines = nil

	if len(lines) == 0 {
		return
	}
	text := strings.Join(lines, "\n")
	if strings.EqualFold(lang, diagramKeyword) {
		p.blocks = append(p.blocks, Diagram{Source: text})
		return
	}
	p.blocks = append(p.blocks, CodeBlock{Language: lang, Text: text})
}

// flushTable closes the table in progress. The first line is the header;
// a dashes/colons rule on the second line is consumed and discarded; body
// rows are padded or truncated to the header column count.
func (p *parser) flushTable() {
	lines := p.tableLines
	p.tableLines = nil
	if len(lines) == 0 {
		return
	}

	header := splitTableRow(lines[0])
	if len(header) == 0 {
		return
	}

	body := lines[1:]
	if len(body) > 0 && isSeparatorRow(body[0]) {
		body = body[1:]
	}

	rows := make([][]string, 0, len(body))
	for _, line := range body {
		cells := splitTableRow(line)
		for len(cells) < len(header) {
			cells = append(cells, "")
		}
		rows = append(rows, cells[:len(header)])
	}

	p.blocks = append(p.blocks, Table{Header: header, Rows: rows})
}

// headingLine matches 1-6 leading '#' markers followed by a space.
func headingLine(trimmed string) (level int, text string, ok bool) {
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n < 1 || n > 6 || n >= len(trimmed) || trimmed[n] != ' ' {
		return 0, "", false
	}
	return n, strings.TrimSpace(trimmed[n:]), true
}

// indentLevel maps leading whitespace to a discrete list level.
func indentLevel(raw string) int {
	expanded := strings.ReplaceAll(raw, "\t", "    ")
	width := len(expanded) - len(strings.TrimLeft(expanded, " "))
	level := width / indentUnit
	if level > maxIndent {
		level = maxIndent
	}
	return level
}

// splitTableRow splits a pipe-delimited line into trimmed cells, dropping
// the empty boundary cells produced by leading/trailing pipes. Empty cells
// in the middle are preserved.
func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	cells := strings.Split(line, "|")
	if len(cells) > 0 && strings.HasPrefix(line, "|") {
		cells = cells[1:]
	}
	if len(cells) > 0 && strings.HasSuffix(line, "|") {
		cells = cells[:len(cells)-1]
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// isSeparatorRow reports whether every cell is a dashes/colons alignment
// rule.
func isSeparatorRow(line string) bool {
	cells := splitTableRow(line)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !tableSepCell.MatchString(c) {
			return false
		}
	}
	return true
}
