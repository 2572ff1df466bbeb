package helpers_test

import (
	"encoding/json"
	"testing"

	"github.com/evanw/esminify/internal/helpers"
	"github.com/evanw/esminify/internal/test"
)

func TestQuoteForJSON(t *testing.T) {
	check := func(text string, expected string) {
		t.Helper()
		test.AssertEqualWithDiff(t, string(helpers.QuoteForJSON(text)), expected)
	}

	check("", `""`)
	check("abc", `"abc"`)
	check("a\"b\\c", `"a\"b\\c"`)
	check("\b\f\n\r\t", `"\b\f\n\r\t"`)
	check("\x00\x1F\x7F", `"\u0000\u001F\u007F"`)
	check("x\u2028y\u2029z\uFEFF", `"x\u2028y\u2029z\uFEFF"`)
	check("\xFFa", `"\uFFFDa"`)
	check("\uFFFD", `"\uFFFD"`)

	// Everything else passes through as UTF-8
	check("漢字 𝒻", "\"漢字 𝒻\"")
}

func TestQuoteForJSONIsValidJSON(t *testing.T) {
	for _, text := range []string{"let x = '\u2028'", "a\x80b", "tab\tnew\nline", "\"quoted\""} {
		var decoded string
		test.AssertEqual(t, json.Unmarshal(helpers.QuoteForJSON(text), &decoded), nil)
	}
}
