package katex

import "strings"

// EscapeScriptLiteral makes text safe to embed inside a single-quoted
// script string literal sent to the render engine. The function is total:
// every input maps to a defined output and escaping itself cannot fail.
//
// Backslashes are handled by run parity: an even-length run is a
// sequence of already-escaped pairs and is left alone; an odd-length run
// has an unescaped final backslash, which is doubled — and the character
// it would otherwise have escaped is then treated as unescaped too.
// Newlines become the two characters `\n`, carriage returns `\r`, and
// unescaped apostrophes are backslash-escaped.
func EscapeScriptLiteral(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		if text[i] == '\\' {
			run := 0
			for i+run < len(text) && text[i+run] == '\\' {
				run++
			}
			b.WriteString(strings.Repeat(`\`, run))
			if run%2 == 1 {
				b.WriteByte('\\')
			}
			i += run
			continue
		}

		switch text[i] {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\'':
			b.WriteString(`\'`)
		default:
			b.WriteByte(text[i])
		}
		i++
	}
	return b.String()
}
