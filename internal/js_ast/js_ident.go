package js_ast

import (
	"unicode"
	"unicode/utf8"
)

func IsIdentifier(text string) bool {
	if len(text) == 0 {
		return false
	}
	for i, codePoint := range text {
		if i == 0 {
			if !IsIdentifierStart(codePoint) {
				return false
			}
		} else {
			if !IsIdentifierContinue(codePoint) {
				return false
			}
		}
	}
	return true
}

// Returns true if the text starts like an identifier or a keyword does
func StartsWithIdentifier(text string) bool {
	c, _ := utf8.DecodeRuneInString(text)
	return IsIdentifierStart(c) || c == '#' || c == '\\'
}

func IsIdentifierStart(codePoint rune) bool {
	switch {
	case codePoint >= 'a' && codePoint <= 'z', codePoint >= 'A' && codePoint <= 'Z',
		codePoint == '_', codePoint == '$':
		return true
	}

	// All ASCII identifier start code points are listed above
	if codePoint < 0x7F {
		return false
	}

	return unicode.IsLetter(codePoint) || unicode.Is(unicode.Nl, codePoint) ||
		unicode.Is(unicode.Other_ID_Start, codePoint)
}

func IsIdentifierContinue(codePoint rune) bool {
	if IsIdentifierStart(codePoint) || (codePoint >= '0' && codePoint <= '9') {
		return true
	}

	// All ASCII identifier continue code points are listed above
	if codePoint < 0x7F {
		return false
	}

	// ZWNJ and ZWJ are allowed in identifiers
	if codePoint == 0x200C || codePoint == 0x200D {
		return true
	}

	return unicode.In(codePoint, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, unicode.Other_ID_Continue)
}
