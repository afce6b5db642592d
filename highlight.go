package md2docx

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightStyle is the chroma style applied to fenced code when
// fonts.code.highlight is enabled.
const highlightStyle = "github"

// codeSpan is a run of code text with an optional color override.
// Color is a hex triplet without '#'; empty means the configured code color.
type codeSpan struct {
	Text  string
	Color string
}

// highlightCode tokenizes source with the lexer for lang and returns
// colored spans. Returns ok=false when the language is unknown or
// tokenization fails, in which case the caller renders the block in the
// single configured code color.
func highlightCode(source, lang string) ([]codeSpan, bool) {
	if lang == "" {
		return nil, false
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return nil, false
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil, false
	}

	style := styles.Get(highlightStyle)
	var spans []codeSpan
	for _, tok := range iterator.Tokens() {
		if tok.Value == "" {
			continue
		}
		entry := style.Get(tok.Type)
		color := ""
		if entry.Colour.IsSet() {
			color = fmt.Sprintf("%02x%02x%02x", entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue())
		}
		spans = append(spans, codeSpan{Text: tok.Value, Color: color})
	}
	if len(spans) == 0 {
		return nil, false
	}
	return spans, true
}

// codeSpansFor returns the spans to render for a code block: highlighted
// when enabled and the language is known, otherwise one uncolored span.
func codeSpansFor(text, lang string, highlight bool) []codeSpan {
	if highlight {
		if spans, ok := highlightCode(text, lang); ok {
			return spans
		}
	}
	return []codeSpan{{Text: text}}
}
