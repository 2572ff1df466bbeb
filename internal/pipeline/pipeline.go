package pipeline

// The passes between parsing and printing. They always run in this order:
//
//   1. Scope marking
//   2. Minification
//   3. Reserved word rewriting
//   4. Hygiene
//   5. Fixer
//
// Each pass panics if the tree isn't at the stage the previous pass leaves it
// at. The passes themselves belong to the engine. This package decides the
// order and the options.

import (
	"fmt"

	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/engine"
	"github.com/evanw/esminify/internal/helpers"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/renamer"
)

type Options struct {
	// Optional. When present each pass is timed.
	Timer *helpers.Timer
}

type pass struct {
	name string
	run  func(*js_ast.AST, *js_ast.CommentTable, engine.Backend) error
}

var passes = []pass{
	{"Mark scopes", func(tree *js_ast.AST, _ *js_ast.CommentTable, backend engine.Backend) error {
		return MarkScopes(tree, backend)
	}},
	{"Minify", func(tree *js_ast.AST, _ *js_ast.CommentTable, backend engine.Backend) error {
		return Minify(tree, backend)
	}},
	{"Rewrite reserved words", func(tree *js_ast.AST, _ *js_ast.CommentTable, backend engine.Backend) error {
		return RewriteReservedWords(tree, backend)
	}},
	{"Hygiene", Hygiene},
	{"Fix", Fix},
}

func Run(tree *js_ast.AST, comments *js_ast.CommentTable, backend engine.Backend, options Options) error {
	timer := options.Timer
	timer.Begin("Transform")
	defer timer.End("Transform")

	for _, p := range passes {
		timer.Begin(p.name)
		err := p.run(tree, comments, backend)
		timer.End(p.name)
		if err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return nil
}

func MarkScopes(tree *js_ast.AST, backend engine.Backend) error {
	tree.AdvanceStage(js_ast.StageParsed, js_ast.StageMarked)
	if tree.Globals == nil {
		panic("Internal error: the tree has no globals")
	}
	tree.TopLevelMark = tree.Globals.FreshMark(js_ast.RootMark)
	return backend.Resolve(tree)
}

func Minify(tree *js_ast.AST, backend engine.Backend) error {
	tree.AdvanceStage(js_ast.StageMarked, js_ast.StageMinified)
	tree.CheckMark(tree.TopLevelMark)
	options := config.DefaultMinifyOptions()
	tree.MinifyOptions = &options
	return backend.Minify(tree, options, engine.ExtraOptions{TopLevelMark: tree.TopLevelMark})
}

func RewriteReservedWords(tree *js_ast.AST, backend engine.Backend) error {
	tree.AdvanceStage(js_ast.StageMinified, js_ast.StageReservedWords)
	tree.ReservedNames = renamer.ComputeReservedNames(tree)
	return backend.RewriteReservedWords(tree, tree.ReservedNames)
}

func Hygiene(tree *js_ast.AST, comments *js_ast.CommentTable, backend engine.Backend) error {
	tree.AdvanceStage(js_ast.StageReservedWords, js_ast.StageHygiene)
	return backend.Hygiene(tree, comments)
}

func Fix(tree *js_ast.AST, comments *js_ast.CommentTable, backend engine.Backend) error {
	tree.AdvanceStage(js_ast.StageHygiene, js_ast.StageFixed)
	return backend.Fix(tree, comments)
}
