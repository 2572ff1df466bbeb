package sourcemap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/evanw/esminify/internal/helpers"
)

type Mapping struct {
	GeneratedLine   int32 // 0-based
	GeneratedColumn int32 // 0-based count of UTF-16 code units

	SourceIndex    int32 // 0-based
	OriginalLine   int32 // 0-based
	OriginalColumn int32 // 0-based count of UTF-16 code units
	OriginalName   int32 // 0-based, or -1 if there is no name
}

type SourceMap struct {
	File           string
	Sources        []string
	SourcesContent []string
	Names          []string
	Mappings       []Mapping
}

var base64 = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/")

// A single base 64 digit can contain 6 bits of data. For the base 64 variable
// length quantities we use in the source map spec, the first bit is the sign,
// the next four bits are the actual value, and the 6th bit is the continuation
// bit. The continuation bit tells us whether there are more digits in this
// value following this digit.
//
//	Continuation
//	|    Sign
//	|    |
//	V    V
//	101011
func encodeVLQ(encoded []byte, value int) []byte {
	var vlq int
	if value < 0 {
		vlq = ((-value) << 1) | 1
	} else {
		vlq = value << 1
	}

	for {
		digit := vlq & 31
		vlq >>= 5

		// If there are still more digits in this value, we must make sure the
		// continuation bit is marked
		if vlq != 0 {
			digit |= 32
		}

		encoded = append(encoded, base64[digit])

		if vlq == 0 {
			break
		}
	}

	return encoded
}

// Returns the decoded value and the number of bytes consumed
func DecodeVLQ(encoded string) (int32, int, bool) {
	n := len(encoded)
	current := 0
	shift := 0
	var vlq int32

	for {
		if current >= n || shift > 30 {
			return 0, current, false
		}
		index := int32(bytes.IndexByte(base64, encoded[current]))
		if index < 0 {
			return 0, current, false
		}

		// Decode a single byte
		vlq |= (index & 31) << shift
		current++
		shift += 5

		// Stop if there's no continuation bit
		if (index & 32) == 0 {
			break
		}
	}

	// Recover the value
	value := vlq >> 1
	if (vlq & 1) != 0 {
		value = -value
	}
	return value, current, true
}

type MappingsError struct {
	Offset int
	Text   string
}

func (e *MappingsError) Error() string {
	return fmt.Sprintf("Bad \"mappings\" data in source map at character %d: %s", e.Offset, e.Text)
}

// Decodes the "mappings" field of a source map. Mappings with only a
// generated column carry no original location and are dropped.
func DecodeMappings(raw string, sourcesLen int, namesLen int) ([]Mapping, error) {
	var mappings mappingArray
	n := len(raw)
	var generatedLine int32
	var generatedColumn int32
	var sourceIndex int32
	var originalLine int32
	var originalColumn int32
	var originalName int32
	current := 0
	needSort := false

	fail := func(text string) ([]Mapping, error) {
		return nil, &MappingsError{Offset: current, Text: text}
	}

	for current < n {
		// Handle a line break
		if raw[current] == ';' {
			generatedLine++
			generatedColumn = 0
			current++
			continue
		}

		// Read the generated column
		generatedColumnDelta, i, ok := DecodeVLQ(raw[current:])
		if !ok {
			return fail("Missing generated column")
		}
		if generatedColumnDelta < 0 {
			// This would mess up binary search
			needSort = true
		}
		generatedColumn += generatedColumnDelta
		if generatedColumn < 0 {
			return fail(fmt.Sprintf("Invalid generated column value: %d", generatedColumn))
		}
		current += i

		if current == n {
			break
		}
		switch raw[current] {
		case ',':
			current++
			continue
		case ';':
			continue
		}

		// Read the original source
		sourceIndexDelta, i, ok := DecodeVLQ(raw[current:])
		if !ok {
			return fail("Missing source index")
		}
		sourceIndex += sourceIndexDelta
		if sourceIndex < 0 || int(sourceIndex) >= sourcesLen {
			return fail(fmt.Sprintf("Invalid source index value: %d", sourceIndex))
		}
		current += i

		// Read the original line
		originalLineDelta, i, ok := DecodeVLQ(raw[current:])
		if !ok {
			return fail("Missing original line")
		}
		originalLine += originalLineDelta
		if originalLine < 0 {
			return fail(fmt.Sprintf("Invalid original line value: %d", originalLine))
		}
		current += i

		// Read the original column
		originalColumnDelta, i, ok := DecodeVLQ(raw[current:])
		if !ok {
			return fail("Missing original column")
		}
		originalColumn += originalColumnDelta
		if originalColumn < 0 {
			return fail(fmt.Sprintf("Invalid original column value: %d", originalColumn))
		}
		current += i

		// Read the optional name index
		name := int32(-1)
		if current < n && raw[current] != ',' && raw[current] != ';' {
			originalNameDelta, i, ok := DecodeVLQ(raw[current:])
			if !ok {
				return fail("Missing original name")
			}
			originalName += originalNameDelta
			if originalName < 0 || int(originalName) >= namesLen {
				return fail(fmt.Sprintf("Invalid original name value: %d", originalName))
			}
			name = originalName
			current += i
		}

		// Handle the next character
		if current < n {
			if c := raw[current]; c == ',' {
				current++
			} else if c != ';' {
				return fail(fmt.Sprintf("Invalid character after mapping: %q", raw[current:current+1]))
			}
		}

		mappings = append(mappings, Mapping{
			GeneratedLine:   generatedLine,
			GeneratedColumn: generatedColumn,
			SourceIndex:     sourceIndex,
			OriginalLine:    originalLine,
			OriginalColumn:  originalColumn,
			OriginalName:    name,
		})
	}

	if needSort {
		// Lines can't be out of order by construction but columns can
		sort.Stable(mappings)
	}

	return mappings, nil
}

// This type is just so we can use Go's native sort function
type mappingArray []Mapping

func (a mappingArray) Len() int          { return len(a) }
func (a mappingArray) Swap(i int, j int) { a[i], a[j] = a[j], a[i] }

func (a mappingArray) Less(i int, j int) bool {
	ai := a[i]
	aj := a[j]
	return ai.GeneratedLine < aj.GeneratedLine || (ai.GeneratedLine == aj.GeneratedLine && ai.GeneratedColumn < aj.GeneratedColumn)
}

type jsonSourceMap struct {
	Version        *int      `json:"version"`
	File           string    `json:"file"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
	Sections       []any     `json:"sections"`
}

// Parses a version 3 source map document such as the one produced by the
// engine's code generator.
func Parse(data []byte) (*SourceMap, error) {
	var doc jsonSourceMap
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("Invalid source map: %w", err)
	}
	if doc.Sections != nil {
		return nil, errors.New("Source maps with \"sections\" are not supported")
	}
	if doc.Version == nil || *doc.Version != 3 {
		return nil, errors.New("Invalid source map: expected version 3")
	}

	mappings, err := DecodeMappings(doc.Mappings, len(doc.Sources), len(doc.Names))
	if err != nil {
		return nil, err
	}

	var sourcesContent []string
	if doc.SourcesContent != nil {
		sourcesContent = make([]string, len(doc.SourcesContent))
		for i, content := range doc.SourcesContent {
			if content != nil {
				sourcesContent[i] = *content
			}
		}
	}

	return &SourceMap{
		File:           doc.File,
		Sources:        doc.Sources,
		SourcesContent: sourcesContent,
		Names:          doc.Names,
		Mappings:       mappings,
	}, nil
}

// Source map state is relative to the previous mapping, except that the
// generated column resets at the start of every line.
type SourceMapState struct {
	GeneratedLine   int32
	GeneratedColumn int32
	SourceIndex     int32
	OriginalLine    int32
	OriginalColumn  int32
	OriginalName    int32
}

func appendMappingToBuffer(buffer []byte, prevState SourceMapState, currentState SourceMapState) []byte {
	// Put commas in between mappings on the same line
	if len(buffer) > 0 {
		if c := buffer[len(buffer)-1]; c != ';' {
			buffer = append(buffer, ',')
		}
	}

	// Record the mapping (note that the generated line is recorded using ';' elsewhere)
	buffer = encodeVLQ(buffer, int(currentState.GeneratedColumn-prevState.GeneratedColumn))
	buffer = encodeVLQ(buffer, int(currentState.SourceIndex-prevState.SourceIndex))
	buffer = encodeVLQ(buffer, int(currentState.OriginalLine-prevState.OriginalLine))
	buffer = encodeVLQ(buffer, int(currentState.OriginalColumn-prevState.OriginalColumn))
	if currentState.OriginalName >= 0 {
		buffer = encodeVLQ(buffer, int(currentState.OriginalName-prevState.OriginalName))
	}
	return buffer
}

// Encodes mappings sorted by generated position into the "mappings" format
func EncodeMappings(mappings []Mapping) []byte {
	var buffer []byte
	prevState := SourceMapState{}

	for _, m := range mappings {
		// Each generated line is separated by a semicolon
		for prevState.GeneratedLine < m.GeneratedLine {
			buffer = append(buffer, ';')
			prevState.GeneratedLine++
			prevState.GeneratedColumn = 0
		}

		currentState := SourceMapState{
			GeneratedLine:   m.GeneratedLine,
			GeneratedColumn: m.GeneratedColumn,
			SourceIndex:     m.SourceIndex,
			OriginalLine:    m.OriginalLine,
			OriginalColumn:  m.OriginalColumn,
			OriginalName:    m.OriginalName,
		}
		buffer = appendMappingToBuffer(buffer, prevState, currentState)

		// The name index is relative to the last mapping that had a name
		if currentState.OriginalName < 0 {
			currentState.OriginalName = prevState.OriginalName
		}
		prevState = currentState
	}

	return buffer
}

// Writes a version 3 source map document. The keys are always written in the
// same order so the output is deterministic.
func Encode(w io.Writer, sm *SourceMap) error {
	if sm == nil {
		return errors.New("Missing source map")
	}
	for i, m := range sm.Mappings {
		if i > 0 {
			prev := sm.Mappings[i-1]
			if m.GeneratedLine < prev.GeneratedLine || (m.GeneratedLine == prev.GeneratedLine && m.GeneratedColumn < prev.GeneratedColumn) {
				return fmt.Errorf("Mapping %d is out of order", i)
			}
		}
		if m.SourceIndex < 0 || int(m.SourceIndex) >= len(sm.Sources) {
			return fmt.Errorf("Mapping %d has an invalid source index: %d", i, m.SourceIndex)
		}
		if m.OriginalName >= int32(len(sm.Names)) {
			return fmt.Errorf("Mapping %d has an invalid name index: %d", i, m.OriginalName)
		}
	}

	j := helpers.Joiner{}
	j.AddString("{\n  \"version\": 3")

	if sm.File != "" {
		j.AddString(",\n  \"file\": ")
		j.AddBytes(helpers.QuoteForJSON(sm.File))
	}

	j.AddString(",\n  \"sources\": [")
	for i, source := range sm.Sources {
		if i > 0 {
			j.AddString(", ")
		}
		j.AddBytes(helpers.QuoteForJSON(source))
	}
	j.AddString("]")

	if sm.SourcesContent != nil {
		j.AddString(",\n  \"sourcesContent\": [")
		for i, content := range sm.SourcesContent {
			if i > 0 {
				j.AddString(",\n    ")
			} else {
				j.AddString("\n    ")
			}
			j.AddBytes(helpers.QuoteForJSON(content))
		}
		j.AddString("\n  ]")
	}

	j.AddString(",\n  \"mappings\": \"")
	j.AddBytes(EncodeMappings(sm.Mappings))
	j.AddString("\",\n  \"names\": [")
	for i, name := range sm.Names {
		if i > 0 {
			j.AddString(", ")
		}
		j.AddBytes(helpers.QuoteForJSON(name))
	}
	j.AddString("]\n}\n")

	_, err := w.Write(j.Done())
	return err
}
