package js_parser

import (
	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/engine"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/js_lexer"
	"github.com/evanw/esminify/internal/logger"
)

// Every file is parsed the same way, so there's nothing here for callers to
// configure. The options exist so engines see the grammar spelled out.
type Options struct {
	parse config.ParseOptions
}

func OptionsFromDefaults() Options {
	return Options{parse: config.DefaultParseOptions()}
}

// Parses one file as an ECMAScript module. On failure the error is always an
// *engine.SyntaxError and nothing has been logged yet. The caller decides
// whether and where to report it.
func Parse(globals *js_ast.Globals, source logger.Source, frontend engine.Frontend, options Options) (js_ast.AST, js_ast.CommentTable, error) {
	result, err := frontend.Parse(source, options.parse)
	if err != nil {
		return js_ast.AST{}, js_ast.CommentTable{}, err
	}

	tree := js_ast.AST{
		Source:           source,
		Globals:          globals,
		TopLevelMark:     js_ast.RootMark,
		Stage:            js_ast.StageParsed,
		TopLevelBindings: result.TopLevelBindings,
		UnboundNames:     result.UnboundNames,
		Repr:             result.Repr,
	}

	return tree, js_lexer.ScanComments(source), nil
}
