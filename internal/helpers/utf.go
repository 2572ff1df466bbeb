package helpers

// Returns the number of UTF-16 code units needed to encode the text. Source
// map columns are measured in these.
func UTF16Len(text string) int {
	n := 0
	for _, c := range text {
		if c > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
