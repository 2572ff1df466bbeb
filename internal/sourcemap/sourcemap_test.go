package sourcemap

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/evanw/esminify/internal/test"
)

func TestVLQ(t *testing.T) {
	expect := func(value int, encoded string) {
		t.Helper()
		t.Run(fmt.Sprintf("%d", value), func(t *testing.T) {
			t.Helper()
			test.AssertEqual(t, string(encodeVLQ(nil, value)), encoded)
			decoded, n, ok := DecodeVLQ(encoded + ",")
			test.AssertEqual(t, ok, true)
			test.AssertEqual(t, n, len(encoded))
			test.AssertEqual(t, int(decoded), value)
		})
	}

	expect(0, "A")
	expect(1, "C")
	expect(-1, "D")
	expect(15, "e")
	expect(-15, "f")
	expect(16, "gB")
	expect(123456, "gkxH")
	expect(-123456, "hkxH")
}

func TestDecodeVLQInvalid(t *testing.T) {
	_, _, ok := DecodeVLQ("")
	test.AssertEqual(t, ok, false)
	_, _, ok = DecodeVLQ("!")
	test.AssertEqual(t, ok, false)

	// A continuation bit with nothing after it
	_, _, ok = DecodeVLQ("g")
	test.AssertEqual(t, ok, false)
}

func TestDecodeMappings(t *testing.T) {
	mappings, err := DecodeMappings("AAAA,SAASA;;EACEA,C", 1, 1)
	test.AssertEqual(t, err, nil)
	test.AssertEqualWithDiff(t, fmt.Sprintf("%+v", mappings), fmt.Sprintf("%+v", []Mapping{
		{GeneratedLine: 0, GeneratedColumn: 0, SourceIndex: 0, OriginalLine: 0, OriginalColumn: 0, OriginalName: -1},
		{GeneratedLine: 0, GeneratedColumn: 9, SourceIndex: 0, OriginalLine: 0, OriginalColumn: 9, OriginalName: 0},
		{GeneratedLine: 2, GeneratedColumn: 2, SourceIndex: 0, OriginalLine: 1, OriginalColumn: 11, OriginalName: 0},
	}))
}

func TestDecodeMappingsErrors(t *testing.T) {
	expect := func(raw string, expected string) {
		t.Helper()
		t.Run(raw, func(t *testing.T) {
			t.Helper()
			_, err := DecodeMappings(raw, 1, 0)
			var mappingsErr *MappingsError
			test.AssertEqual(t, errors.As(err, &mappingsErr), true)
			test.AssertEqual(t, err.Error(), expected)
		})
	}

	expect("!", "Bad \"mappings\" data in source map at character 0: Missing generated column")
	expect("D", "Bad \"mappings\" data in source map at character 0: Invalid generated column value: -1")
	expect("AC", "Bad \"mappings\" data in source map at character 1: Invalid source index value: 1")
	expect("AAD", "Bad \"mappings\" data in source map at character 2: Invalid original line value: -1")
	expect("AAA", "Bad \"mappings\" data in source map at character 3: Missing original column")
	expect("AAAAA", "Bad \"mappings\" data in source map at character 4: Invalid original name value: 0")
}

func TestEncodeMappingsRoundTrip(t *testing.T) {
	mappings := []Mapping{
		{GeneratedLine: 0, GeneratedColumn: 0, OriginalLine: 0, OriginalColumn: 0, OriginalName: -1},
		{GeneratedLine: 0, GeneratedColumn: 9, OriginalLine: 0, OriginalColumn: 9, OriginalName: 0},
		{GeneratedLine: 0, GeneratedColumn: 15, OriginalLine: 3, OriginalColumn: 2, OriginalName: -1},
		{GeneratedLine: 2, GeneratedColumn: 2, OriginalLine: 1, OriginalColumn: 11, OriginalName: 1},
	}
	encoded := string(EncodeMappings(mappings))
	test.AssertEqual(t, encoded, "AAAA,SAASA,MAGP;;EAFSC")

	decoded, err := DecodeMappings(encoded, 1, 2)
	test.AssertEqual(t, err, nil)
	test.AssertEqualWithDiff(t, fmt.Sprintf("%+v", decoded), fmt.Sprintf("%+v", mappings))
}

func TestEncode(t *testing.T) {
	sm := SourceMap{
		Sources:        []string{"src/a.js"},
		SourcesContent: []string{"function foo() {\n  return \" \";\n}\n"},
		Names:          []string{"foo"},
		Mappings: []Mapping{
			{GeneratedLine: 0, GeneratedColumn: 0, OriginalLine: 0, OriginalColumn: 0, OriginalName: -1},
			{GeneratedLine: 0, GeneratedColumn: 9, OriginalLine: 0, OriginalColumn: 9, OriginalName: 0},
		},
	}

	buffer := bytes.Buffer{}
	test.AssertEqual(t, Encode(&buffer, &sm), nil)
	test.AssertEqualWithDiff(t, buffer.String(), `{
  "version": 3,
  "sources": ["src/a.js"],
  "sourcesContent": [
    "function foo() {\n  return \" \";\n}\n"
  ],
  "mappings": "AAAA,SAASA",
  "names": ["foo"]
}
`)

	// The encoded document must be readable again
	parsed, err := Parse(buffer.Bytes())
	test.AssertEqual(t, err, nil)
	test.AssertEqualWithDiff(t, fmt.Sprintf("%+v", *parsed), fmt.Sprintf("%+v", sm))
}

func TestEncodeInvalid(t *testing.T) {
	buffer := bytes.Buffer{}
	test.AssertEqual(t, Encode(&buffer, nil) != nil, true)

	outOfOrder := SourceMap{Sources: []string{"a.js"}, Mappings: []Mapping{
		{GeneratedLine: 1, OriginalName: -1},
		{GeneratedLine: 0, OriginalName: -1},
	}}
	test.AssertEqual(t, Encode(&buffer, &outOfOrder).Error(), "Mapping 1 is out of order")

	badSource := SourceMap{Mappings: []Mapping{{OriginalName: -1}}}
	test.AssertEqual(t, Encode(&buffer, &badSource).Error(), "Mapping 0 has an invalid source index: 0")
	test.AssertEqual(t, buffer.Len(), 0)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestEncodeWriteFailure(t *testing.T) {
	sm := SourceMap{Sources: []string{"a.js"}}
	test.AssertEqual(t, Encode(failingWriter{}, &sm).Error(), "disk full")
}

func TestParse(t *testing.T) {
	expectError := func(text string, expected string) {
		t.Helper()
		t.Run(text, func(t *testing.T) {
			t.Helper()
			_, err := Parse([]byte(text))
			test.AssertEqual(t, err != nil, true)
			test.AssertEqual(t, err.Error(), expected)
		})
	}

	expectError(`{"version": 2, "sources": [], "mappings": ""}`, "Invalid source map: expected version 3")
	expectError(`{"version": 3, "sections": []}`, "Source maps with \"sections\" are not supported")
	expectError(`{"version": 3, "sources": [], "mappings": "AAAA"}`,
		"Bad \"mappings\" data in source map at character 1: Invalid source index value: 0")

	sm, err := Parse([]byte(`{"version":3,"sources":["<stdin>"],"sourcesContent":[null],"mappings":";AAAA","names":[]}`))
	test.AssertEqual(t, err, nil)
	test.AssertEqual(t, len(sm.Mappings), 1)
	test.AssertEqual(t, sm.Mappings[0].GeneratedLine, int32(1))
	test.AssertEqual(t, sm.SourcesContent[0], "")
}
