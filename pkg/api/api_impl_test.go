package api

import (
	"testing"

	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/engine"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/logger"
	"github.com/evanw/esminify/internal/test"
)

type panickingBackend struct{}

func (panickingBackend) Resolve(*js_ast.AST) error { return nil }
func (panickingBackend) Minify(*js_ast.AST, config.MinifyOptions, engine.ExtraOptions) error {
	return nil
}
func (panickingBackend) RewriteReservedWords(*js_ast.AST, map[string]bool) error { return nil }
func (panickingBackend) Hygiene(*js_ast.AST, *js_ast.CommentTable) error {
	panic("something broke")
}
func (panickingBackend) Fix(*js_ast.AST, *js_ast.CommentTable) error { return nil }
func (panickingBackend) Print(*js_ast.AST, *js_ast.CommentTable, engine.PrintOptions) (engine.PrintResult, error) {
	return engine.PrintResult{}, nil
}

func TestPanicInPass(t *testing.T) {
	tree := js_ast.AST{Globals: js_ast.NewGlobals(), Source: logger.Source{Contents: "foo()"}}
	comments := js_ast.CommentTable{}

	js, sm, err := minifyAndPrint(&tree, &comments, panickingBackend{}, nil, true)
	test.AssertEqual(t, js == nil, true)
	test.AssertEqual(t, sm == nil, true)
	test.AssertEqual(t, err.Error(), "something broke")
	test.AssertEqual(t, internalErrorText(err.Error()), "Internal error: something broke")
	test.AssertEqual(t, internalErrorText("Internal error: bad stage"), "Internal error: bad stage")
}

func TestDiagnosticsFromMsgs(t *testing.T) {
	source := logger.Source{PrettyPath: "a.js", Contents: "let a;\nlet a;"}
	tracker := logger.MakeLineColumnTracker(&source)

	diagnostics := diagnosticsFromMsgs(&tracker, []logger.Msg{
		{Kind: logger.Verbose, Text: "Timing information"},
		{
			Kind:   logger.Error,
			Text:   "Duplicate",
			Source: &source,
			Spans: []logger.Span{
				{Range: logger.Range{Loc: logger.Loc{Start: 11}, Len: 1}},
				{Range: logger.Range{Loc: logger.Loc{Start: 4}, Len: 1}, Label: "First here"},
			},
			Hints: []string{"Rename one"},
		},
		{Kind: logger.Error, Text: "Internal error: boom"},
	})

	test.AssertEqual(t, len(diagnostics), 2)
	test.AssertEqual(t, diagnostics[0].Message, "Duplicate")
	test.AssertEqual(t, len(diagnostics[0].CodeHighlights), 2)
	test.AssertEqual(t, diagnostics[0].CodeHighlights[0].Message == nil, true)
	test.AssertEqual(t, diagnostics[0].CodeHighlights[0].Loc, SourceLocation{StartLine: 2, StartCol: 5, EndLine: 2, EndCol: 5})
	test.AssertEqual(t, *diagnostics[0].CodeHighlights[1].Message, "First here")
	test.AssertEqual(t, diagnostics[0].CodeHighlights[1].Loc, SourceLocation{StartLine: 1, StartCol: 5, EndLine: 1, EndCol: 5})
	test.AssertEqual(t, len(diagnostics[0].Hints), 1)

	// No location means no highlights and no hints
	test.AssertEqual(t, diagnostics[1].Message, "Internal error: boom")
	test.AssertEqual(t, diagnostics[1].CodeHighlights == nil, true)
	test.AssertEqual(t, diagnostics[1].Hints == nil, true)
}

func TestDiagnosticsAreNeverNilOnFailure(t *testing.T) {
	source := logger.Source{}
	tracker := logger.MakeLineColumnTracker(&source)
	diagnostics := diagnosticsFromMsgs(&tracker, nil)
	test.AssertEqual(t, diagnostics != nil, true)
	test.AssertEqual(t, len(diagnostics), 0)
}
