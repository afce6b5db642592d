package md2docx

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseHeadingAndParagraph(t *testing.T) {
	blocks := Parse("# Title\n\nSome **bold** and `code`.\n")

	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %#v", len(blocks), blocks)
	}

	h, ok := blocks[0].(Heading)
	if !ok {
		t.Fatalf("blocks[0] = %T, want Heading", blocks[0])
	}
	if h.Level != 1 || SpanText(h.Spans) != "Title" {
		t.Errorf("Heading = level %d text %q, want level 1 text Title", h.Level, SpanText(h.Spans))
	}

	p, ok := blocks[1].(Paragraph)
	if !ok {
		t.Fatalf("blocks[1] = %T, want Paragraph", blocks[1])
	}
	want := []Span{
		{Text: "Some "},
		{Text: "bold", Bold: true},
		{Text: " and "},
		{Text: "code", Code: true},
		{Text: "."},
	}
	if !reflect.DeepEqual(p.Spans, want) {
		t.Errorf("Paragraph spans = %v, want %v", p.Spans, want)
	}
}

func TestParseHeadingLevels(t *testing.T) {
	blocks := Parse("# a\n## b\n### c\n#### d\n##### e\n###### f\n####### g\n")

	if len(blocks) != 7 {
		t.Fatalf("got %d blocks, want 7", len(blocks))
	}
	for i := 0; i < 6; i++ {
		h, ok := blocks[i].(Heading)
		if !ok {
			t.Fatalf("blocks[%d] = %T, want Heading", i, blocks[i])
		}
		if h.Level != i+1 {
			t.Errorf("blocks[%d].Level = %d, want %d", i, h.Level, i+1)
		}
	}
	// Seven markers is not a heading.
	if _, ok := blocks[6].(Paragraph); !ok {
		t.Errorf("blocks[6] = %T, want Paragraph", blocks[6])
	}
}

func TestParseParagraphGrouping(t *testing.T) {
	blocks := Parse("line one\nline two\n\nsecond para\n\n\nthird para\n")

	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3: %#v", len(blocks), blocks)
	}
	wantTexts := []string{"line one line two", "second para", "third para"}
	for i, want := range wantTexts {
		p, ok := blocks[i].(Paragraph)
		if !ok {
			t.Fatalf("blocks[%d] = %T, want Paragraph", i, blocks[i])
		}
		if got := SpanText(p.Spans); got != want {
			t.Errorf("paragraph %d = %q, want %q", i, got, want)
		}
	}
}

func TestParseCodeFence(t *testing.T) {
	t.Run("raw text is preserved byte for byte", func(t *testing.T) {
		body := "func main() {\n\tx := \"**not bold**\"\n    y := `tick`\n}"
		blocks := Parse("```go\n" + body + "\n```\n")
		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		cb, ok := blocks[0].(CodeBlock)
		if !ok {
			t.Fatalf("blocks[0] = %T, want CodeBlock", blocks[0])
		}
		if cb.Language != "go" {
			t.Errorf("Language = %q, want go", cb.Language)
		}
		if cb.Text != body {
			t.Errorf("Text = %q, want %q", cb.Text, body)
		}
	})

	t.Run("no language tag", func(t *testing.T) {
		blocks := Parse("```\nplain\n```\n")
		cb := blocks[0].(CodeBlock)
		if cb.Language != "" {
			t.Errorf("Language = %q, want empty", cb.Language)
		}
	})

	t.Run("unterminated fence closes at EOF", func(t *testing.T) {
		blocks := Parse("```\ntrailing code")
		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		cb := blocks[0].(CodeBlock)
		if cb.Text != "trailing code" {
			t.Errorf("Text = %q, want %q", cb.Text, "trailing code")
		}
	})

	t.Run("empty fence emits nothing", func(t *testing.T) {
		blocks := Parse("```\n```\n")
		if len(blocks) != 0 {
			t.Errorf("got %d blocks, want 0", len(blocks))
		}
	})

	t.Run("mermaid fence becomes a diagram", func(t *testing.T) {
		blocks := Parse("```mermaid\ngraph TD;\nA-->B;\n```\n")
		d, ok := blocks[0].(Diagram)
		if !ok {
			t.Fatalf("blocks[0] = %T, want Diagram", blocks[0])
		}
		if d.Source != "graph TD;\nA-->B;" {
			t.Errorf("Source = %q", d.Source)
		}
		if d.ImagePath != "" {
			t.Errorf("ImagePath = %q, want empty before resolution", d.ImagePath)
		}
	})
}

func TestParseLists(t *testing.T) {
	t.Run("ordered then bulleted are separate runs", func(t *testing.T) {
		blocks := Parse("1. a\n2. b\n- c\n")
		if len(blocks) != 3 {
			t.Fatalf("got %d blocks, want 3", len(blocks))
		}
		for i, wantOrdered := range []bool{true, true, false} {
			li, ok := blocks[i].(ListItem)
			if !ok {
				t.Fatalf("blocks[%d] = %T, want ListItem", i, blocks[i])
			}
			if li.Ordered != wantOrdered {
				t.Errorf("blocks[%d].Ordered = %v, want %v", i, li.Ordered, wantOrdered)
			}
		}
	})

	t.Run("indent levels from leading whitespace", func(t *testing.T) {
		blocks := Parse("- top\n  - nested\n    - deeper\n")
		wantIndent := []int{0, 1, 2}
		for i, want := range wantIndent {
			li := blocks[i].(ListItem)
			if li.Indent != want {
				t.Errorf("item %d indent = %d, want %d", i, li.Indent, want)
			}
		}
	})

	t.Run("star bullets", func(t *testing.T) {
		blocks := Parse("* a\n")
		li, ok := blocks[0].(ListItem)
		if !ok || li.Ordered {
			t.Fatalf("blocks[0] = %#v, want unordered ListItem", blocks[0])
		}
	})

	t.Run("list item inline styling", func(t *testing.T) {
		blocks := Parse("- has **bold** text\n")
		li := blocks[0].(ListItem)
		if len(li.Spans) != 3 || !li.Spans[1].Bold {
			t.Errorf("Spans = %v, want bold middle span", li.Spans)
		}
	})
}

func TestParseQuote(t *testing.T) {
	blocks := Parse("> quoted text\n")
	q, ok := blocks[0].(Quote)
	if !ok {
		t.Fatalf("blocks[0] = %T, want Quote", blocks[0])
	}
	if SpanText(q.Spans) != "quoted text" {
		t.Errorf("quote text = %q", SpanText(q.Spans))
	}
}

func TestParseImage(t *testing.T) {
	blocks := Parse("![a diagram](img/arch.png)\n")
	img, ok := blocks[0].(Image)
	if !ok {
		t.Fatalf("blocks[0] = %T, want Image", blocks[0])
	}
	if img.Alt != "a diagram" || img.Path != "img/arch.png" {
		t.Errorf("Image = %+v", img)
	}
}

func TestParseTable(t *testing.T) {
	t.Run("header, separator, body", func(t *testing.T) {
		blocks := Parse("| A | B |\n|---|---|\n| 1 | 2 |\n| 3 | 4 |\n")
		tbl, ok := blocks[0].(Table)
		if !ok {
			t.Fatalf("blocks[0] = %T, want Table", blocks[0])
		}
		if !reflect.DeepEqual(tbl.Header, []string{"A", "B"}) {
			t.Errorf("Header = %v", tbl.Header)
		}
		want := [][]string{{"1", "2"}, {"3", "4"}}
		if !reflect.DeepEqual(tbl.Rows, want) {
			t.Errorf("Rows = %v, want %v", tbl.Rows, want)
		}
	})

	t.Run("short rows padded, long rows truncated", func(t *testing.T) {
		blocks := Parse("| A | B | C |\n|---|---|---|\n| 1 |\n| 1 | 2 | 3 | 4 |\n")
		tbl := blocks[0].(Table)
		for i, row := range tbl.Rows {
			if len(row) != len(tbl.Header) {
				t.Errorf("row %d has %d cells, want %d", i, len(row), len(tbl.Header))
			}
		}
		if tbl.Rows[0][1] != "" || tbl.Rows[0][2] != "" {
			t.Errorf("short row not padded: %v", tbl.Rows[0])
		}
		if !reflect.DeepEqual(tbl.Rows[1], []string{"1", "2", "3"}) {
			t.Errorf("long row not truncated: %v", tbl.Rows[1])
		}
	})

	t.Run("table closed by non-pipe line", func(t *testing.T) {
		blocks := Parse("| A |\n|---|\n| 1 |\nafter\n")
		if len(blocks) != 2 {
			t.Fatalf("got %d blocks, want 2", len(blocks))
		}
		if _, ok := blocks[0].(Table); !ok {
			t.Errorf("blocks[0] = %T, want Table", blocks[0])
		}
		p, ok := blocks[1].(Paragraph)
		if !ok || SpanText(p.Spans) != "after" {
			t.Errorf("blocks[1] = %#v, want paragraph 'after'", blocks[1])
		}
	})

	t.Run("table at EOF without trailing newline", func(t *testing.T) {
		blocks := Parse("| A |\n|---|\n| 1 |")
		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		tbl := blocks[0].(Table)
		if len(tbl.Rows) != 1 || tbl.Rows[0][0] != "1" {
			t.Errorf("Rows = %v", tbl.Rows)
		}
	})

	t.Run("separator required only on second line", func(t *testing.T) {
		blocks := Parse("| A |\n| 1 |\n| --- |\n")
		tbl := blocks[0].(Table)
		// No separator after the header: both lines are body rows except
		// a rule row later stays literal.
		if len(tbl.Rows) != 2 {
			t.Errorf("Rows = %v, want 2 rows", tbl.Rows)
		}
	})
}

func TestParseBlockOrder(t *testing.T) {
	src := strings.Join([]string{
		"# H",
		"",
		"para",
		"",
		"- item",
		"",
		"> quote",
		"",
		"![x](y.png)",
		"",
		"```",
		"code",
		"```",
		"",
		"| A |",
		"|---|",
		"| 1 |",
		"",
	}, "\n")
	blocks := Parse(src)

	wantTypes := []string{"Heading", "Paragraph", "ListItem", "Quote", "Image", "CodeBlock", "Table"}
	if len(blocks) != len(wantTypes) {
		t.Fatalf("got %d blocks, want %d: %#v", len(blocks), len(wantTypes), blocks)
	}
	for i, want := range wantTypes {
		got := strings.TrimPrefix(reflect.TypeOf(blocks[i]).String(), "md2docx.")
		if got != want {
			t.Errorf("blocks[%d] = %s, want %s", i, got, want)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	if blocks := Parse(""); len(blocks) != 0 {
		t.Errorf("Parse(\"\") = %v, want no blocks", blocks)
	}
	if blocks := Parse("\n\n\n"); len(blocks) != 0 {
		t.Errorf("Parse(blank lines) = %v, want no blocks", blocks)
	}
}
