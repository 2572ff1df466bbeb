package js_printer

import (
	"fmt"

	"github.com/evanw/esminify/internal/engine"
	"github.com/evanw/esminify/internal/helpers"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/sourcemap"
)

type Options struct {
	SourceMap bool
}

type PrintResult struct {
	JS []byte

	// This is nil when no source map was asked for, or when the engine can't
	// make one
	SourceMap *sourcemap.SourceMap
}

// Always prints minified code. Legal comments are kept inline.
func Print(tree *js_ast.AST, comments *js_ast.CommentTable, backend engine.Backend, options Options) (PrintResult, error) {
	if tree.Stage != js_ast.StageFixed {
		panic(fmt.Sprintf("Internal error: cannot print a tree at the %s stage", tree.Stage))
	}

	result, err := backend.Print(tree, comments, engine.PrintOptions{
		SourceMap:     options.SourceMap,
		LegalComments: comments.HasLegalComments(),
	})
	if err != nil {
		return PrintResult{}, err
	}

	if !options.SourceMap {
		return PrintResult{JS: result.Code}, nil
	}

	sm := result.SourceMap
	if sm != nil {
		sm.Mappings = clampMappings(result.Code, sm.Mappings)
	}
	return PrintResult{JS: result.Code, SourceMap: sm}, nil
}

// Drops mappings that point past the end of their generated line. These can
// show up when the engine's output was trimmed after the map was made.
func clampMappings(code []byte, mappings []sourcemap.Mapping) []sourcemap.Mapping {
	var lineLengths []int
	start := 0
	text := string(code)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lineLengths = append(lineLengths, helpers.UTF16Len(text[start:i]))
			start = i + 1
		}
	}
	lineLengths = append(lineLengths, helpers.UTF16Len(text[start:]))

	kept := mappings[:0]
	for _, m := range mappings {
		if int(m.GeneratedLine) < len(lineLengths) && int(m.GeneratedColumn) <= lineLengths[m.GeneratedLine] {
			kept = append(kept, m)
		}
	}
	return kept
}
