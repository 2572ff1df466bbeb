// This implements a simple long-running service over stdin/stdout. Each
// incoming request is a transform of one file. Requests are handled on their
// own goroutines so a slow file doesn't hold up the others.

package main

import (
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"github.com/evanw/esminify/pkg/api"
)

type outgoingPacket struct {
	bytes []byte
}

type serviceType struct {
	outgoingPackets    chan outgoingPacket
	keepAliveWaitGroup sync.WaitGroup
}

func runService(in io.Reader, out io.Writer) error {
	service := serviceType{
		outgoingPackets: make(chan outgoingPacket),
	}
	buffer := make([]byte, 16*1024)
	stream := []byte{}

	// Write responses on a single goroutine so they aren't interleaved
	writerDone := make(chan error, 1)
	go func() {
		var writeErr error
		for packet := range service.outgoingPackets {
			if writeErr != nil {
				continue
			}
			if _, err := out.Write(packet.bytes); err != nil {
				writeErr = err
			}
		}
		writerDone <- writeErr
	}()

	var readErr error
	for {
		n, err := in.Read(buffer)
		if n > 0 {
			stream = append(stream, buffer[:n]...)

			// Process all complete (i.e. not partial) packets
			bytes := stream
			for {
				packet, afterPacket, ok := readLengthPrefixedSlice(bytes)
				if !ok {
					break
				}
				bytes = afterPacket

				// Clone the input since slices into it may be used on another goroutine
				clone := append([]byte{}, packet...)
				service.keepAliveWaitGroup.Add(1)
				go service.handleIncomingPacket(clone)
			}

			// Move the remaining partial packet to the end to avoid reallocating
			stream = append(stream[:0], bytes...)
		}
		if err != nil {
			if err != io.EOF {
				readErr = err
			}
			break
		}
	}

	// Let in-flight requests finish before shutting down the writer
	service.keepAliveWaitGroup.Wait()
	close(service.outgoingPackets)
	if writeErr := <-writerDone; writeErr != nil {
		return writeErr
	}
	if len(stream) != 0 && readErr == nil {
		return fmt.Errorf("Unexpected end of input with %d bytes of a partial packet", len(stream))
	}
	return readErr
}

func (service *serviceType) handleIncomingPacket(bytes []byte) {
	defer service.keepAliveWaitGroup.Done()

	p, ok := decodePacket(bytes)
	if !ok {
		// Without an id there's nobody to respond to
		return
	}
	if !p.isRequest {
		return
	}

	service.outgoingPackets <- outgoingPacket{
		bytes: encodePacket(packet{
			id:    p.id,
			value: service.handleRequest(p.value),
		}),
	}
}

func (service *serviceType) handleRequest(value interface{}) (response interface{}) {
	// Catch panics in the code below so they get passed to the caller
	defer func() {
		if r := recover(); r != nil {
			response = map[string]interface{}{
				"error": fmt.Sprintf("Panic: %v\n\n%s", r, debug.Stack()),
			}
		}
	}()

	request, ok := value.(map[string]interface{})
	if !ok {
		return errorResponse("Expected the request to be a map")
	}

	command, _ := request["command"].(string)
	switch command {
	case "ping":
		return map[string]interface{}{}

	case "transform":
		return handleTransformRequest(request)

	default:
		return errorResponse(fmt.Sprintf("Invalid command: %q", command))
	}
}

func errorResponse(text string) map[string]interface{} {
	return map[string]interface{}{"error": text}
}

func handleTransformRequest(request map[string]interface{}) interface{} {
	filename, _ := request["filename"].(string)
	sourceMaps, _ := request["source_maps"].(bool)

	var code string
	switch c := request["code"].(type) {
	case string:
		code = c
	case []byte:
		code = string(c)
	default:
		return errorResponse("Expected \"code\" to be a string")
	}

	result := api.Transform(api.TransformOptions{
		Filename:   filename,
		Code:       code,
		SourceMaps: sourceMaps,
		LogLevel:   api.LogLevelSilent,
	})

	response := map[string]interface{}{
		"code": result.Code,
	}
	if result.Map != "" {
		response["map"] = result.Map
	}
	if result.Diagnostics != nil {
		response["diagnostics"] = encodeDiagnostics(result.Diagnostics)
	}
	return response
}

// Keys with nothing in them are left out, which matches the JSON encoding of
// the same result
func encodeDiagnostics(diagnostics []api.Diagnostic) []interface{} {
	values := make([]interface{}, 0, len(diagnostics))
	for _, d := range diagnostics {
		value := map[string]interface{}{
			"message": d.Message,
		}
		if len(d.CodeHighlights) > 0 {
			highlights := make([]interface{}, 0, len(d.CodeHighlights))
			for _, h := range d.CodeHighlights {
				highlight := map[string]interface{}{
					"loc": map[string]interface{}{
						"startLine": h.Loc.StartLine,
						"startCol":  h.Loc.StartCol,
						"endLine":   h.Loc.EndLine,
						"endCol":    h.Loc.EndCol,
					},
				}
				if h.Message != nil {
					highlight["message"] = *h.Message
				}
				highlights = append(highlights, highlight)
			}
			value["codeHighlights"] = highlights
		}
		if len(d.Hints) > 0 {
			hints := make([]interface{}, 0, len(d.Hints))
			for _, hint := range d.Hints {
				hints = append(hints, hint)
			}
			value["hints"] = hints
		}
		values = append(values, value)
	}
	return values
}
