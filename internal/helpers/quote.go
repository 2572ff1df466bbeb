package helpers

import "unicode/utf8"

const hexChars = "0123456789ABCDEF"

// Line and paragraph separators are escaped along with control characters so
// the result is also a valid JavaScript string.
func canPrintInJSON(c rune) bool {
	if c < 0x80 {
		return c >= 0x20 && c != '\\' && c != '"' && c != 0x7F
	}
	return c != utf8.RuneError && c != '\u2028' && c != '\u2029' && c != '\uFEFF'
}

func QuoteForJSON(text string) []byte {
	return AppendQuotedJSON(make([]byte, 0, len(text)+2), text)
}

// Invalid UTF-8 is written as U+FFFD so the output is always valid JSON
func AppendQuotedJSON(bytes []byte, text string) []byte {
	bytes = append(bytes, '"')
	start := 0

	for i, c := range text {
		if canPrintInJSON(c) {
			continue
		}
		bytes = append(bytes, text[start:i]...)
		start = i + utf8.RuneLen(c)
		if c == utf8.RuneError {
			// Both a literal U+FFFD and a bad byte land here
			_, width := utf8.DecodeRuneInString(text[i:])
			start = i + width
		}

		switch c {
		case '\b':
			bytes = append(bytes, "\\b"...)
		case '\f':
			bytes = append(bytes, "\\f"...)
		case '\n':
			bytes = append(bytes, "\\n"...)
		case '\r':
			bytes = append(bytes, "\\r"...)
		case '\t':
			bytes = append(bytes, "\\t"...)
		case '\\':
			bytes = append(bytes, "\\\\"...)
		case '"':
			bytes = append(bytes, "\\\""...)
		default:
			bytes = append(bytes, '\\', 'u', hexChars[c>>12], hexChars[(c>>8)&15], hexChars[(c>>4)&15], hexChars[c&15])
		}
	}

	bytes = append(bytes, text[start:]...)
	return append(bytes, '"')
}
