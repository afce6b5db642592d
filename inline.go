package md2docx

import "strings"

// Inline delimiters recognized by the tokenizer.
const (
	boldDelim = "**"
	codeDelim = "`"
)

// Tokenize splits one logical line of text into styled spans.
//
// Recognized markers are **bold** and `code`. Delimiters must be paired on
// the same line; an unpaired delimiter is kept as literal text. Nesting is
// not supported: the first-opened delimiter wins for that run and the other
// marker inside it stays literal. Zero-length spans are never emitted, so
// adjacent delimiters ("****") vanish entirely.
//
// A literal "<br>" is normalized to a newline inside the span; renderers
// turn it into a hard line break.
func Tokenize(line string) []Span {
	line = strings.ReplaceAll(line, "<br>", "\n")

	var spans []Span
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(line); {
		rest := line[i:]
		switch {
		case strings.HasPrefix(rest, boldDelim):
			inner, width, ok := matchDelimited(rest, boldDelim)
			if !ok {
				plain.WriteString(boldDelim)
				i += len(boldDelim)
				continue
			}
			flush()
			if inner != "" {
				spans = append(spans, Span{Text: inner, Bold: true})
			}
			i += width
		case strings.HasPrefix(rest, codeDelim):
			inner, width, ok := matchDelimited(rest, codeDelim)
			if !ok {
				plain.WriteString(codeDelim)
				i += len(codeDelim)
				continue
			}
			flush()
			if inner != "" {
				spans = append(spans, Span{Text: inner, Code: true})
			}
			i += width
		default:
			plain.WriteByte(line[i])
			i++
		}
	}

	flush()
	return spans
}

// matchDelimited matches an opening delimiter at the start of s against the
// nearest closing occurrence. Returns the inner text and the total width
// consumed including both delimiters.
func matchDelimited(s, delim string) (inner string, width int, ok bool) {
	body := s[len(delim):]
	end := strings.Index(body, delim)
	if end < 0 {
		return "", 0, false
	}
	return body[:end], len(delim)*2 + end, true
}
