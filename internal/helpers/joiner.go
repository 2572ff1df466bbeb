package helpers

// Collects string and byte slices and copies them into one buffer at the end,
// once the final length is known. Byte slices are not copied until then, so
// callers must not modify them after adding.
type Joiner struct {
	parts  []joinerPart
	length int
}

type joinerPart struct {
	text string
	data []byte
}

func (j *Joiner) AddString(data string) {
	j.parts = append(j.parts, joinerPart{text: data})
	j.length += len(data)
}

func (j *Joiner) AddBytes(data []byte) {
	j.parts = append(j.parts, joinerPart{data: data})
	j.length += len(data)
}

func (j *Joiner) Done() []byte {
	buffer := make([]byte, 0, j.length)
	for _, part := range j.parts {
		if part.data != nil {
			buffer = append(buffer, part.data...)
		} else {
			buffer = append(buffer, part.text...)
		}
	}
	return buffer
}
