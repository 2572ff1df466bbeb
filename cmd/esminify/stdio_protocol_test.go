package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketRoundTrip(t *testing.T) {
	value := map[string]interface{}{
		"command":     "transform",
		"filename":    "src/a.js",
		"code":        "foo()",
		"source_maps": true,
		"count":       -3,
		"raw":         []byte{1, 2, 3},
		"list":        []interface{}{nil, false, "x"},
	}

	bytes := encodePacket(packet{id: 7, isRequest: true, value: value})
	contents, rest, ok := readLengthPrefixedSlice(bytes)
	require.True(t, ok)
	assert.Empty(t, rest)

	decoded, ok := decodePacket(contents)
	require.True(t, ok)
	assert.Equal(t, uint32(7), decoded.id)
	assert.True(t, decoded.isRequest)
	assert.Equal(t, value, decoded.value)
}

func TestPacketResponseBit(t *testing.T) {
	bytes := encodePacket(packet{id: 3, value: "ok"})
	decoded, ok := decodePacket(bytes[4:])
	require.True(t, ok)
	assert.False(t, decoded.isRequest)
	assert.Equal(t, uint32(3), decoded.id)
}

func TestDecodePacketRejectsTruncatedInput(t *testing.T) {
	bytes := encodePacket(packet{id: 1, isRequest: true, value: map[string]interface{}{
		"command": "transform",
		"code":    "let x = 1",
	}})
	contents := bytes[4:]

	// Every strict prefix is malformed
	for i := 0; i < len(contents); i++ {
		_, ok := decodePacket(contents[:i])
		assert.False(t, ok, "prefix of length %d", i)
	}

	// So is trailing garbage
	_, ok := decodePacket(append(append([]byte{}, contents...), 0))
	assert.False(t, ok)

	// And an unknown value kind
	_, ok = decodePacket([]byte{0, 0, 0, 0, 99})
	assert.False(t, ok)
}

func TestDecodePacketRejectsHugeCounts(t *testing.T) {
	// An array claiming 2^32-1 items must not allocate that much
	_, ok := decodePacket([]byte{0, 0, 0, 0, kindArray, 0xFF, 0xFF, 0xFF, 0xFF})
	assert.False(t, ok)
}
