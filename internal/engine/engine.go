package engine

// An engine is the external parser, minifier and code generator that the
// pipeline drives. The front-end turns source text into a tree and the
// back-end runs every pass over that tree. The tree's contents are private to
// the engine that parsed it, so a back-end is only ever handed trees from its
// own front-end.

import (
	"fmt"

	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/js_lexer"
	"github.com/evanw/esminify/internal/logger"
	"github.com/evanw/esminify/internal/sourcemap"
)

type Frontend interface {
	Name() string

	// Returns a *SyntaxError if the source doesn't parse. Nothing is written
	// to any log.
	Parse(source logger.Source, options config.ParseOptions) (ParseResult, error)
}

type ParseResult struct {
	Repr             interface{}
	TopLevelBindings []string
	UnboundNames     []string
}

type Backend interface {
	// Attaches scope identity to the tree, rooted at the tree's top-level mark
	Resolve(tree *js_ast.AST) error

	Minify(tree *js_ast.AST, options config.MinifyOptions, extra ExtraOptions) error

	// Renames anything that would otherwise be printed as one of these names
	RewriteReservedWords(tree *js_ast.AST, reserved map[string]bool) error

	// Makes every binding name unique in its scope after renaming
	Hygiene(tree *js_ast.AST, comments *js_ast.CommentTable) error

	// Inserts whatever the printer needs to print the tree correctly, such as
	// parentheses around expressions in statement position
	Fix(tree *js_ast.AST, comments *js_ast.CommentTable) error

	Print(tree *js_ast.AST, comments *js_ast.CommentTable, options PrintOptions) (PrintResult, error)
}

type Engine interface {
	Frontend
	Backend
}

type ExtraOptions struct {
	TopLevelMark js_ast.Mark
}

type PrintOptions struct {
	SourceMap bool

	// Legal comments are kept inline
	LegalComments bool
}

type PrintResult struct {
	Code []byte

	// Only present when asked for and when the engine supports it
	SourceMap *sourcemap.SourceMap
}

// This is the only kind of error a front-end returns. It holds the message
// the engine reported, already converted to byte ranges in the source.
type SyntaxError struct {
	Msg logger.Msg
}

func (e *SyntaxError) Error() string {
	if len(e.Msg.Spans) > 0 && e.Msg.Source != nil {
		tracker := logger.MakeLineColumnTracker(e.Msg.Source)
		pos := tracker.LookupCharPos(e.Msg.Spans[0].Range.Loc)
		return fmt.Sprintf("%s:%d:%d: %s", e.Msg.Source.PrettyPath, pos.Line, pos.Col, e.Msg.Text)
	}
	return e.Msg.Text
}

// Adds this error to the log
func (e *SyntaxError) Emit(log logger.Log) {
	log.AddMsg(e.Msg)
}

// Front-ends parse with every proposal on and then call this, which reports
// the first use of a proposal the options turn off
func CheckParseOptions(source *logger.Source, options config.ParseOptions) error {
	r, what, ok := js_lexer.FindDisabledSyntax(*source, options)
	if !ok {
		return nil
	}
	return &SyntaxError{Msg: logger.Msg{
		Kind:   logger.Error,
		Text:   fmt.Sprintf("%s is not enabled", what),
		Source: source,
		Spans:  []logger.Span{{Range: r}},
	}}
}

// Returns an error if the tree came from another engine
func CheckRepr[T any](tree *js_ast.AST, engineName string) (T, error) {
	repr, ok := tree.Repr.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("The %s engine cannot process a tree parsed by another engine", engineName)
	}
	return repr, nil
}
