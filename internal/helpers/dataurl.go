package helpers

import (
	"encoding/base64"
)

// Builds the comment that embeds a whole source map in the generated code.
// Base64 keeps the comment on one line no matter what the map contains.
func InlineSourceMappingURL(sourceMap string) string {
	return "//# sourceMappingURL=data:application/json;charset=utf-8;base64," +
		base64.StdEncoding.EncodeToString([]byte(sourceMap))
}
