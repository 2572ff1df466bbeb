package helpers_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/evanw/esminify/internal/helpers"
	"github.com/evanw/esminify/internal/test"
)

func TestInlineSourceMappingURL(t *testing.T) {
	check := func(sourceMap string) {
		t.Helper()
		comment := helpers.InlineSourceMappingURL(sourceMap)
		prefix := "//# sourceMappingURL=data:application/json;charset=utf-8;base64,"
		test.AssertEqual(t, strings.HasPrefix(comment, prefix), true)
		test.AssertEqual(t, strings.ContainsAny(comment, "\r\n"), false)

		decoded, err := base64.StdEncoding.DecodeString(comment[len(prefix):])
		test.AssertEqual(t, err, nil)
		test.AssertEqualWithDiff(t, string(decoded), sourceMap)
	}

	check("")
	check("{\n  \"version\": 3\n}\n")
	check("{\"sourcesContent\": [\"let \\u2028 = '漢字'\"]}")
}
