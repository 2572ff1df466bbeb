package tdewolff_engine

// This engine uses tdewolff's parser and minifier. The minifier works on
// source text rather than on a tree, so minification produces new text and
// the passes after it re-parse that text to check what they are responsible
// for. It can't generate source maps.

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/minify/v2"
	jsmin "github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/parse/v2"

	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/engine"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/js_scope"
	"github.com/evanw/esminify/internal/logger"
)

const engineName = "tdewolff"

type repr struct {
	topLevelMark js_ast.Mark
	resolved     bool

	input js_scope.Names

	// The text after minification, and the scope of that text
	code            []byte
	minified        bool
	output          js_scope.Names
	reservedChecked bool
	hygieneChecked  bool
	fixed           bool
}

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (*Engine) Name() string {
	return engineName
}

func (*Engine) Parse(source logger.Source, options config.ParseOptions) (engine.ParseResult, error) {
	names, err := js_scope.Analyze([]byte(source.Contents))
	if err != nil {
		return engine.ParseResult{}, syntaxErrorFromParseError(&source, err)
	}
	if err := engine.CheckParseOptions(&source, options); err != nil {
		return engine.ParseResult{}, err
	}

	return engine.ParseResult{
		Repr:             &repr{input: names},
		TopLevelBindings: names.TopLevel,
		UnboundNames:     names.Unbound,
	}, nil
}

// The parser reports a 1-based line and a 1-based column counted in code
// points. The highlighted range covers the code point at that position.
func syntaxErrorFromParseError(source *logger.Source, err error) *engine.SyntaxError {
	msg := logger.Msg{
		Kind:   logger.Error,
		Text:   err.Error(),
		Source: source,
	}

	var parseErr *parse.Error
	if errors.As(err, &parseErr) {
		tracker := logger.MakeLineColumnTracker(source)
		start := tracker.OffsetOfRuneColumn(parseErr.Line, parseErr.Column)
		length := 0
		if rest := source.Contents[start:]; rest != "" && rest[0] != '\n' && rest[0] != '\r' {
			_, length = utf8.DecodeRuneInString(rest)
		}
		msg.Text = upperFirst(parseErr.Message)
		msg.Spans = []logger.Span{{Range: logger.Range{Loc: logger.Loc{Start: start}, Len: int32(length)}}}
	}

	return &engine.SyntaxError{Msg: msg}
}

func upperFirst(text string) string {
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

func checkRepr(tree *js_ast.AST) (*repr, error) {
	return engine.CheckRepr[*repr](tree, engineName)
}

func (*Engine) Resolve(tree *js_ast.AST) error {
	r, err := checkRepr(tree)
	if err != nil {
		return err
	}
	tree.CheckMark(tree.TopLevelMark)
	if !tree.Globals.IsTopLevel(tree.TopLevelMark) {
		return fmt.Errorf("Cannot resolve a tree whose top level is %s", tree.TopLevelMark)
	}
	r.topLevelMark = tree.TopLevelMark
	r.resolved = true
	return nil
}

func (*Engine) Minify(tree *js_ast.AST, options config.MinifyOptions, extra engine.ExtraOptions) error {
	r, err := checkRepr(tree)
	if err != nil {
		return err
	}
	if !r.resolved {
		return errors.New("Cannot minify a tree that hasn't been resolved")
	}
	if extra.TopLevelMark != r.topLevelMark {
		return fmt.Errorf("Minification was given %s but the tree was resolved with %s", extra.TopLevelMark, r.topLevelMark)
	}

	// This minifier always compresses and never renames top-level bindings
	minifier := &jsmin.Minifier{KeepVarNames: options.Mangle == nil}
	buffer := bytes.Buffer{}
	if err := minifier.Minify(minify.New(), &buffer, strings.NewReader(tree.Source.Contents), nil); err != nil {
		return fmt.Errorf("Failed to minify %q: %w", tree.Source.PrettyPath, err)
	}

	r.code = buffer.Bytes()
	r.minified = true
	return nil
}

// Re-parses the minified text. This also proves that the minifier didn't
// produce a binding the grammar reserves, since those don't parse.
func (r *repr) parseOutput() error {
	output, err := js_scope.Analyze(r.code)
	if err != nil {
		return fmt.Errorf("The minified code doesn't parse: %w", err)
	}
	r.output = output
	return nil
}

func (*Engine) RewriteReservedWords(tree *js_ast.AST, reserved map[string]bool) error {
	r, err := checkRepr(tree)
	if err != nil {
		return err
	}
	if !r.minified {
		return errors.New("Cannot rewrite reserved words before minification")
	}
	if err := r.parseOutput(); err != nil {
		return err
	}

	// A new top-level binding with a reserved name would shadow something the
	// program reads
	var shadowed []string
	for _, name := range r.output.TopLevel {
		if reserved[name] && !r.input.IsTopLevel(name) {
			shadowed = append(shadowed, name)
		}
	}
	if len(shadowed) > 0 {
		sort.Strings(shadowed)
		return fmt.Errorf("The minifier introduced top-level bindings for reserved names: %s", strings.Join(shadowed, ", "))
	}

	r.reservedChecked = true
	return nil
}

func (*Engine) Hygiene(tree *js_ast.AST, comments *js_ast.CommentTable) error {
	r, err := checkRepr(tree)
	if err != nil {
		return err
	}
	if !r.reservedChecked {
		return errors.New("Cannot run hygiene before rewriting reserved words")
	}

	// Renaming must never capture a free variable. Anything the output reads
	// without binding it must have been free in the input too.
	var captured []string
	for _, name := range r.output.Unbound {
		if !r.input.IsUnbound(name) {
			captured = append(captured, name)
		}
	}
	if len(captured) > 0 {
		sort.Strings(captured)
		return fmt.Errorf("The minifier introduced references to unbound names: %s", strings.Join(captured, ", "))
	}

	r.hygieneChecked = true
	return nil
}

func (*Engine) Fix(tree *js_ast.AST, comments *js_ast.CommentTable) error {
	r, err := checkRepr(tree)
	if err != nil {
		return err
	}
	if !r.hygieneChecked {
		return errors.New("Cannot run the fixer before hygiene")
	}

	// The output is a single line with no trailing whitespace
	r.code = bytes.TrimRight(r.code, " \t\r\n")
	r.fixed = true
	return nil
}

func (*Engine) Print(tree *js_ast.AST, comments *js_ast.CommentTable, options engine.PrintOptions) (engine.PrintResult, error) {
	r, err := checkRepr(tree)
	if err != nil {
		return engine.PrintResult{}, err
	}
	if !r.fixed {
		return engine.PrintResult{}, errors.New("Cannot print a tree that hasn't been fixed")
	}

	// There is no position information to build a source map from
	return engine.PrintResult{Code: r.code}, nil
}
