package test

import (
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	text := Diff("a\nb\nc\n", "a\nx\nc\n", false)
	for _, line := range []string{"--- expected", "+++ observed", "-b", "+x", " a", " c"} {
		if !strings.Contains(text, line+"\n") {
			t.Fatalf("Missing %q in:\n%s", line, text)
		}
	}

	if Diff("same\n", "same\n", false) != "" {
		t.Fatal("Expected no diff for equal input")
	}
}
