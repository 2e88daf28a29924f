package llm

import "strings"

// Sanitize applies a fixed pre-pass to completion text before JSON parsing:
//
//   - control characters (U+0000..U+001F) are removed, except that inside
//     string literals a raw newline, carriage return or tab becomes its
//     escape sequence and outside them JSON whitespace is kept;
//   - a backslash inside a string that does not start a valid JSON escape
//     is escaped;
//   - U+2028 and U+2029 become newlines.
//
// It is not a JSON repair tool. Clean JSON without line or paragraph
// separators passes through unchanged.
func Sanitize(raw string) string {
	runes := []rune(raw)

	var b strings.Builder
	b.Grow(len(raw))

	inString := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\u2028' || r == '\u2029':
			if inString {
				b.WriteString(`\n`)
			} else {
				b.WriteByte('\n')
			}
		case inString && r == '\\':
			if n := escapeLength(runes[i+1:]); n > 0 {
				b.WriteRune(r)
				b.WriteString(string(runes[i+1 : i+1+n]))
				i += n
			} else {
				b.WriteString(`\\`)
			}
		case r == '"':
			inString = !inString
			b.WriteRune(r)
		case r < 0x20:
			if inString {
				switch r {
				case '\n':
					b.WriteString(`\n`)
				case '\r':
					b.WriteString(`\r`)
				case '\t':
					b.WriteString(`\t`)
				}
			} else if r == '\n' || r == '\r' || r == '\t' {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// escapeLength reports how many runes after a backslash form a valid JSON
// escape, or 0 if they do not.
func escapeLength(rest []rune) int {
	if len(rest) == 0 {
		return 0
	}
	switch rest[0] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return 1
	case 'u':
		if len(rest) < 5 {
			return 0
		}
		for _, h := range rest[1:5] {
			if !isHex(h) {
				return 0
			}
		}
		return 5
	}
	return 0
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
