// This API exposes the minifier to Go code. There is one call, Transform,
// which takes one file and returns either the minified code or a list of
// diagnostics explaining why the file couldn't be parsed.
//
// Each call is independent. Nothing is cached between calls and it's safe to
// call Transform from many goroutines at once.
//
// Example usage:
//
//	package main
//
//	import (
//	    "fmt"
//	    "os"
//
//	    "github.com/evanw/esminify/pkg/api"
//	)
//
//	func main() {
//	    result := api.Transform(api.TransformOptions{
//	        Filename:   "input.js",
//	        Code:       "let x = 1 + 2",
//	        SourceMaps: true,
//	    })
//
//	    if result.Diagnostics != nil {
//	        fmt.Fprintf(os.Stderr, "%d errors\n", len(result.Diagnostics))
//	        os.Exit(1)
//	    }
//
//	    fmt.Println(result.Code)
//	}
package api

type Engine uint8

const (
	EngineESBuild Engine = iota
	EngineTdewolff
)

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type LogLevel uint8

const (
	LogLevelSilent LogLevel = iota
	LogLevelVerbose
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

////////////////////////////////////////////////////////////////////////////////
// Transform API

type TransformOptions struct {
	// Used in diagnostics and as the source name in the source map. The file
	// system is never touched.
	Filename string `json:"filename"`

	Code       string `json:"code"`
	SourceMaps bool   `json:"source_maps"`

	Engine Engine `json:"-"`

	// Diagnostics are always returned. These control whether they are also
	// printed to stderr as they happen.
	LogLevel LogLevel    `json:"-"`
	Color    StderrColor `json:"-"`

	// Print how long each pass took. This is printed at the verbose log level.
	Timing bool `json:"-"`
}

// Exactly one of "Code" and "Diagnostics" is meaningful. On success
// "Diagnostics" is nil. On failure "Diagnostics" is non-nil and "Code" and
// "Map" are empty.
type TransformResult struct {
	Code        string       `json:"code"`
	Map         string       `json:"map,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

type Diagnostic struct {
	Message        string          `json:"message"`
	CodeHighlights []CodeHighlight `json:"codeHighlights,omitempty"`
	Hints          []string        `json:"hints,omitempty"`
}

type CodeHighlight struct {
	// This is nil for the main highlight of a diagnostic
	Message *string        `json:"message,omitempty"`
	Loc     SourceLocation `json:"loc"`
}

// Lines and columns are 1-based. Both columns are inclusive, so a one
// character range has the same start and end column.
type SourceLocation struct {
	StartLine int `json:"startLine"`
	StartCol  int `json:"startCol"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

func Transform(options TransformOptions) TransformResult {
	return transformImpl(options)
}
