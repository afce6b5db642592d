package md2docx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jinde/go-md2docx/internal/config"
)

func renderPDFOrDie(t *testing.T, cfg *config.Config, blocks []Block, baseDir string) []byte {
	t.Helper()
	out, err := renderPDF(cfg, blocks, baseDir, discardWarnf)
	if err != nil {
		t.Fatalf("renderPDF() error = %v", err)
	}
	return out
}

func TestRenderPDFHeader(t *testing.T) {
	out := renderPDFOrDie(t, config.Default(), Parse("# Title\n\nHello world.\n"), "")
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF, got %q", out[:min(8, len(out))])
	}
}

func TestRenderPDFAllBlockKinds(t *testing.T) {
	md := strings.Join([]string{
		"# Title",
		"",
		"A paragraph with **bold** and `code`.",
		"",
		"- bullet one",
		"- bullet two",
		"",
		"1. first",
		"2. second",
		"",
		"> a quoted line",
		"",
		"```go",
		"fmt.Println(\"hi\")",
		"```",
		"",
		"| A | B |",
		"| --- | --- |",
		"| 1 | 2 |",
		"",
	}, "\n")

	out := renderPDFOrDie(t, config.Default(), Parse(md), "")
	if len(out) == 0 {
		t.Fatal("renderPDF() returned empty output")
	}
}

func TestRenderPDFInlineStylesInStyledBlocks(t *testing.T) {
	t.Run("bold span inside heading", func(t *testing.T) {
		blocks := Parse("# Plain **bold** title\n")
		out := renderPDFOrDie(t, config.Default(), blocks, "")
		if !bytes.HasPrefix(out, []byte("%PDF")) {
			t.Error("bold inside a heading broke the document")
		}
	})

	t.Run("bold and code spans inside quote", func(t *testing.T) {
		blocks := Parse("> quoted **bold** and `code`\n")
		out := renderPDFOrDie(t, config.Default(), blocks, "")
		if !bytes.HasPrefix(out, []byte("%PDF")) {
			t.Error("inline styles inside a quote broke the document")
		}
	})
}

func TestRenderPDFDeterministic(t *testing.T) {
	md := "# A\n\np\n\n## B\n\n```\ncode\n```\n"
	first := renderPDFOrDie(t, config.Default(), Parse(md), "")
	second := renderPDFOrDie(t, config.Default(), Parse(md), "")
	if !bytes.Equal(first, second) {
		t.Error("identical input produced different PDF bytes")
	}
}

func TestRenderPDFImages(t *testing.T) {
	t.Run("embeds existing image", func(t *testing.T) {
		dir := t.TempDir()
		writeTestPNG(t, dir, 10, 10)

		plain := renderPDFOrDie(t, config.Default(), Parse("x\n"), "")
		withImage := renderPDFOrDie(t, config.Default(), Parse("![alt](test.png)\n"), dir)
		if len(withImage) <= len(plain) {
			t.Error("expected embedded image to grow the document")
		}
	})

	t.Run("missing image warns and continues", func(t *testing.T) {
		var warnings []string
		warnf := func(format string, args ...any) {
			warnings = append(warnings, format)
		}
		out, err := renderPDF(config.Default(), Parse("![alt](missing.png)\n"), t.TempDir(), warnf)
		if err != nil {
			t.Fatalf("renderPDF() error = %v", err)
		}
		if len(out) == 0 {
			t.Error("renderPDF() returned empty output")
		}
		found := false
		for _, w := range warnings {
			if strings.Contains(w, "image not found") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected an image-not-found warning, got %v", warnings)
		}
	})

	t.Run("corrupt image is skipped", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.png")
		if err := os.WriteFile(path, []byte("not a png"), 0600); err != nil {
			t.Fatal(err)
		}
		out, err := renderPDF(config.Default(), Parse("![alt](bad.png)\n"), dir, discardWarnf)
		if err != nil {
			t.Fatalf("renderPDF() error = %v", err)
		}
		if !bytes.HasPrefix(out, []byte("%PDF")) {
			t.Error("document was poisoned by a corrupt image")
		}
	})
}

func TestProbeFontPath(t *testing.T) {
	t.Run("rejects missing and non-ttf candidates", func(t *testing.T) {
		dir := t.TempDir()
		otf := filepath.Join(dir, "font.otf")
		if err := os.WriteFile(otf, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		paths := []string{filepath.Join(dir, "missing.ttf"), otf}
		if got := probeFontPath(paths); got != "" {
			t.Errorf("probeFontPath() = %q, want empty", got)
		}
	})

	t.Run("rejects corrupt ttf", func(t *testing.T) {
		dir := t.TempDir()
		bad := filepath.Join(dir, "bad.ttf")
		if err := os.WriteFile(bad, []byte("definitely not a font"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := probeFontPath([]string{bad}); got != "" {
			t.Errorf("probeFontPath() = %q, want empty", got)
		}
	})
}

func TestIsCorePDFFont(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Courier", true},
		{"helvetica", true},
		{"Times", true},
		{"BodyFont", false},
		{"Consolas", false},
	}
	for _, tt := range tests {
		if got := isCorePDFFont(tt.name); got != tt.want {
			t.Errorf("isCorePDFFont(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSplitCodeLines(t *testing.T) {
	t.Run("splits spans on newlines", func(t *testing.T) {
		spans := []codeSpan{
			{Text: "a\nb", Color: "ff0000"},
			{Text: "c\n", Color: ""},
		}
		lines := splitCodeLines(spans)
		if len(lines) != 2 {
			t.Fatalf("got %d lines, want 2", len(lines))
		}
		if len(lines[0]) != 1 || lines[0][0].Text != "a" || lines[0][0].Color != "ff0000" {
			t.Errorf("line 0 = %+v", lines[0])
		}
		if len(lines[1]) != 2 || lines[1][0].Text != "b" || lines[1][1].Text != "c" {
			t.Errorf("line 1 = %+v", lines[1])
		}
	})

	t.Run("keeps interior blank lines", func(t *testing.T) {
		lines := splitCodeLines([]codeSpan{{Text: "a\n\nb"}})
		if len(lines) != 3 {
			t.Fatalf("got %d lines, want 3", len(lines))
		}
		if len(lines[1]) != 0 {
			t.Errorf("middle line = %+v, want empty", lines[1])
		}
	})
}

func TestHexChannels(t *testing.T) {
	r, g, b := hexChannels("1f497d")
	if r != 31 || g != 73 || b != 125 {
		t.Errorf("hexChannels(1f497d) = %d,%d,%d", r, g, b)
	}
}
