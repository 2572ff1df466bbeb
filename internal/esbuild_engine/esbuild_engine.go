package esbuild_engine

// This engine drives esbuild through its public transform API. That API runs
// parsing, minification, renaming and printing as a single call, so there is
// no tree to hand from one pass to the next. Minification runs the whole
// transform on the original source text, and the passes after it check the
// text it produced against the scope of the input.

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/engine"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/js_lexer"
	"github.com/evanw/esminify/internal/js_scope"
	"github.com/evanw/esminify/internal/logger"
	"github.com/evanw/esminify/internal/sourcemap"
)

const engineName = "esbuild"

type plan struct {
	topLevelMark js_ast.Mark
	resolved     bool

	// The scope of the input. This is nil when esbuild accepts syntax that
	// the scope analysis can't read, and then the scope checks are skipped.
	input *js_scope.Names

	// The transform output, and the scope of that output
	code            []byte
	sourceMap       []byte
	minified        bool
	wrapped         bool
	output          *js_scope.Names
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

func parseOptions(source logger.Source) api.TransformOptions {
	return api.TransformOptions{
		Sourcefile: source.PrettyPath,
		Loader:     api.LoaderJS,
		LogLevel:   api.LogLevelSilent,
		Target:     api.ESNext,
		Charset:    api.CharsetUTF8,

		// Every file is a module, so strict mode applies everywhere
		Format: api.FormatESModule,
	}
}

func (*Engine) Parse(source logger.Source, options config.ParseOptions) (engine.ParseResult, error) {
	// Parsing on its own isn't exposed, so this transforms without any
	// minification and throws away the output
	result := api.Transform(source.Contents, parseOptions(source))
	if len(result.Errors) > 0 {
		return engine.ParseResult{}, syntaxErrorFromMessage(&source, result.Errors[0])
	}
	if err := engine.CheckParseOptions(&source, options); err != nil {
		return engine.ParseResult{}, err
	}

	p := &plan{}
	parsed := engine.ParseResult{Repr: p}
	if names, err := js_scope.Analyze([]byte(source.Contents)); err == nil {
		p.input = &names
		parsed.TopLevelBindings = names.TopLevel
		parsed.UnboundNames = names.Unbound
	}
	return parsed, nil
}

func syntaxErrorFromMessage(source *logger.Source, msg api.Message) *engine.SyntaxError {
	tracker := logger.MakeLineColumnTracker(source)
	result := logger.Msg{
		Kind:   logger.Error,
		Text:   msg.Text,
		Source: source,
	}

	file := source.PrettyPath
	if msg.Location != nil {
		file = msg.Location.File
		result.Spans = append(result.Spans, logger.Span{Range: rangeOfLocation(&tracker, msg.Location)})
		if msg.Location.Suggestion != "" {
			result.Hints = append(result.Hints, fmt.Sprintf("Try replacing it with %q", msg.Location.Suggestion))
		}
	}

	// Notes that point somewhere in this file become labeled highlights and
	// the rest become hints
	for _, note := range msg.Notes {
		if note.Location != nil && note.Location.File == file {
			result.Spans = append(result.Spans, logger.Span{
				Range: rangeOfLocation(&tracker, note.Location),
				Label: note.Text,
			})
		} else if note.Text != "" {
			result.Hints = append(result.Hints, note.Text)
		}
	}

	return &engine.SyntaxError{Msg: result}
}

// The engine reports a 1-based line and a 0-based byte column
func rangeOfLocation(tracker *logger.LineColumnTracker, loc *api.Location) logger.Range {
	start := tracker.OffsetOf(loc.Line, loc.Column)
	return logger.Range{Loc: logger.Loc{Start: start}, Len: int32(loc.Length)}
}

func checkPlan(tree *js_ast.AST) (*plan, error) {
	return engine.CheckRepr[*plan](tree, engineName)
}

func (*Engine) Resolve(tree *js_ast.AST) error {
	p, err := checkPlan(tree)
	if err != nil {
		return err
	}
	tree.CheckMark(tree.TopLevelMark)
	if !tree.Globals.IsTopLevel(tree.TopLevelMark) {
		return fmt.Errorf("Cannot resolve a tree whose top level is %s", tree.TopLevelMark)
	}
	p.topLevelMark = tree.TopLevelMark
	p.resolved = true
	return nil
}

func transformOptions(source logger.Source, minify config.MinifyOptions) api.TransformOptions {
	result := api.TransformOptions{
		Sourcefile:       source.PrettyPath,
		Loader:           api.LoaderJS,
		LogLevel:         api.LogLevelSilent,
		Target:           api.ESNext,
		Charset:          api.CharsetUTF8,
		MinifyWhitespace: true,

		// esbuild keeps a legal comment where it was and drops every other
		// comment, so the output only has legal comments if the input did
		LegalComments: api.LegalCommentsInline,

		// Making the map is cheap next to the transform, and printing decides
		// whether to keep it
		Sourcemap:      api.SourceMapExternal,
		SourcesContent: api.SourcesContentInclude,
	}

	if minify.Compress != nil {
		result.MinifySyntax = true
		if !minify.Compress.KeepDebugger {
			result.Drop |= api.DropDebugger
		}
	}

	if minify.Mangle != nil {
		result.MinifyIdentifiers = true
		result.KeepNames = minify.Mangle.KeepFnNames

		// Top-level names are only renamed when the output is known to be a
		// module, otherwise they may be globals that other scripts read
		if minify.Mangle.TopLevel {
			result.Format = api.FormatESModule
		}
	}

	if minify.Wrap || minify.Enclose {
		result.Format = api.FormatIIFE
	}

	return result
}

func (*Engine) Minify(tree *js_ast.AST, options config.MinifyOptions, extra engine.ExtraOptions) error {
	p, err := checkPlan(tree)
	if err != nil {
		return err
	}
	if !p.resolved {
		return errors.New("Cannot minify a tree that hasn't been resolved")
	}
	if extra.TopLevelMark != p.topLevelMark {
		return fmt.Errorf("Minification was given %s but the tree was resolved with %s", extra.TopLevelMark, p.topLevelMark)
	}

	result := api.Transform(tree.Source.Contents, transformOptions(tree.Source, options))
	if len(result.Errors) > 0 {
		// The same text parsed a moment ago, so this isn't the user's fault
		return fmt.Errorf("Failed to minify %q: %s", tree.Source.PrettyPath, result.Errors[0].Text)
	}

	p.code = result.Code
	p.sourceMap = result.Map
	p.wrapped = options.Wrap || options.Enclose
	p.minified = true
	return nil
}

func (*Engine) RewriteReservedWords(tree *js_ast.AST, reserved map[string]bool) error {
	p, err := checkPlan(tree)
	if err != nil {
		return err
	}
	if !p.minified {
		return errors.New("Cannot rewrite reserved words before minification")
	}

	if p.input != nil {
		output, err := js_scope.Analyze(p.code)
		if err != nil {
			return fmt.Errorf("The minified code doesn't parse: %w", err)
		}
		p.output = &output

		// Every binding the renamer made up must be a plain identifier that
		// doesn't shadow anything the program reads
		var invalid []string
		for _, name := range output.Bindings() {
			if p.input.IsBound(name) {
				continue
			}
			if !js_ast.IsIdentifier(name) || js_lexer.IsReservedWord(name) || reserved[name] {
				invalid = append(invalid, name)
			}
		}
		if len(invalid) > 0 {
			return fmt.Errorf("The minifier introduced bindings for reserved names: %s", strings.Join(invalid, ", "))
		}
	}

	p.reservedChecked = true
	return nil
}

func (*Engine) Hygiene(tree *js_ast.AST, comments *js_ast.CommentTable) error {
	p, err := checkPlan(tree)
	if err != nil {
		return err
	}
	if !p.reservedChecked {
		return errors.New("Cannot run hygiene before rewriting reserved words")
	}

	// Renaming must never capture a free variable. Anything the output reads
	// without binding it must have been free in the input, unless it's one of
	// the built-ins that esbuild's own helpers call. Wrapping also turns
	// imports into calls to "require".
	if p.input != nil && p.output != nil {
		known := config.KnownGlobals()
		var captured []string
		for _, name := range p.output.Unbound {
			if p.input.IsUnbound(name) || known[name] || (p.wrapped && name == "require") {
				continue
			}
			captured = append(captured, name)
		}
		if len(captured) > 0 {
			sort.Strings(captured)
			return fmt.Errorf("The minifier introduced references to unbound names: %s", strings.Join(captured, ", "))
		}
	}

	p.hygieneChecked = true
	return nil
}

func (*Engine) Fix(tree *js_ast.AST, comments *js_ast.CommentTable) error {
	p, err := checkPlan(tree)
	if err != nil {
		return err
	}
	if !p.hygieneChecked {
		return errors.New("Cannot run the fixer before hygiene")
	}

	// Legal comments come from the input and nowhere else
	printed := js_lexer.ScanComments(logger.Source{PrettyPath: tree.Source.PrettyPath, Contents: string(p.code)})
	if printed.HasLegalComments() && !comments.HasLegalComments() {
		return fmt.Errorf("The minified code for %q has legal comments that the input doesn't", tree.Source.PrettyPath)
	}

	// The output never ends with a newline
	p.code = bytes.TrimRight(p.code, "\n")
	p.fixed = true
	return nil
}

func (*Engine) Print(tree *js_ast.AST, comments *js_ast.CommentTable, options engine.PrintOptions) (engine.PrintResult, error) {
	p, err := checkPlan(tree)
	if err != nil {
		return engine.PrintResult{}, err
	}
	if !p.fixed {
		return engine.PrintResult{}, errors.New("Cannot print a tree that hasn't been fixed")
	}

	// The fixer already made sure there are no legal comments to drop when
	// options.LegalComments is false
	printed := engine.PrintResult{Code: p.code}

	if options.SourceMap && len(p.sourceMap) > 0 {
		// A source map that can't be read is left out rather than failing the
		// whole request
		if sm, err := sourcemap.Parse(p.sourceMap); err == nil {
			printed.SourceMap = sm
		}
	}

	return printed, nil
}
