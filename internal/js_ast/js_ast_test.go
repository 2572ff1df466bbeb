package js_ast

import (
	"fmt"
	"testing"

	"github.com/evanw/esminify/internal/logger"
	"github.com/evanw/esminify/internal/test"
)

func expectPanic(t *testing.T, expected string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("Expected a panic")
		}
		test.AssertEqualWithDiff(t, fmt.Sprint(r), expected)
	}()
	fn()
}

func TestFreshMark(t *testing.T) {
	globals := NewGlobals()
	a := globals.FreshMark(RootMark)
	b := globals.FreshMark(a)
	c := globals.FreshMark(RootMark)

	test.AssertEqual(t, a == b, false)
	test.AssertEqual(t, a == c, false)
	test.AssertEqual(t, a.IsRoot(), false)
	test.AssertEqual(t, globals.Parent(a), RootMark)
	test.AssertEqual(t, globals.Parent(b), a)
	test.AssertEqual(t, globals.IsTopLevel(a), true)
	test.AssertEqual(t, globals.IsTopLevel(b), false)
	test.AssertEqual(t, globals.IsTopLevel(c), true)
	test.AssertEqual(t, globals.IsTopLevel(RootMark), false)
}

func TestMarksFromAnotherRequest(t *testing.T) {
	first := NewGlobals()
	second := NewGlobals()
	mark := first.FreshMark(RootMark)

	// Both requests mint the same first mark number but the marks differ
	other := second.FreshMark(RootMark)
	test.AssertEqual(t, mark == other, false)
	test.AssertEqual(t, first.Owns(mark), true)
	test.AssertEqual(t, second.Owns(mark), false)
	test.AssertEqual(t, second.Owns(RootMark), true)

	expectPanic(t, "Internal error: mark(1) belongs to another request", func() {
		second.FreshMark(mark)
	})
	expectPanic(t, "Internal error: mark(1) belongs to another request", func() {
		second.Parent(mark)
	})

	tree := AST{Globals: second}
	tree.CheckMark(other)
	expectPanic(t, "Internal error: mark(1) belongs to another request", func() {
		tree.CheckMark(mark)
	})
}

func TestAdvanceStage(t *testing.T) {
	tree := AST{}
	tree.AdvanceStage(StageParsed, StageMarked)
	tree.AdvanceStage(StageMarked, StageMinified)
	test.AssertEqual(t, tree.Stage, StageMinified)

	expectPanic(t, "Internal error: cannot run the fixed pass on a tree at the minified stage (expected hygiene)", func() {
		tree.AdvanceStage(StageHygiene, StageFixed)
	})
	test.AssertEqual(t, tree.Stage, StageMinified)
}

func TestCommentTable(t *testing.T) {
	table := CommentTable{}
	first := Comment{Loc: logger.Loc{Start: 0}, Text: "/*! license */"}
	second := Comment{Loc: logger.Loc{Start: 20}, Text: "// note"}
	third := Comment{Loc: logger.Loc{Start: 10}, Text: "/* inline */"}

	table.AddLeading(logger.Loc{Start: 15}, first)
	table.AddLeading(logger.Loc{Start: 30}, second)
	table.AddTrailing(logger.Loc{Start: 18}, second)
	table.AddLeading(logger.Loc{Start: 15}, third)

	test.AssertEqual(t, table.Len(), 3)
	test.AssertEqual(t, len(table.Leading(logger.Loc{Start: 15})), 2)
	test.AssertEqual(t, len(table.Trailing(logger.Loc{Start: 18})), 1)
	test.AssertEqual(t, len(table.Trailing(logger.Loc{Start: 15})), 0)
	test.AssertEqual(t, table.HasLegalComments(), true)

	all := table.All()
	test.AssertEqual(t, len(all), 3)
	test.AssertEqual(t, all[0].Text, "/*! license */")
	test.AssertEqual(t, all[1].Text, "/* inline */")
	test.AssertEqual(t, all[2].Text, "// note")
}

func TestIsLegalComment(t *testing.T) {
	expect := func(text string, expected bool) {
		t.Helper()
		test.AssertEqual(t, Comment{Text: text}.IsLegal(), expected)
	}

	expect("/*! keep */", true)
	expect("//! keep", true)
	expect("/* @license MIT */", true)
	expect("// @preserve", true)
	expect("/* drop */", false)
	expect("// drop", false)
}

func TestIsIdentifier(t *testing.T) {
	expect := func(text string, expected bool) {
		t.Helper()
		test.AssertEqual(t, IsIdentifier(text), expected)
	}

	expect("foo", true)
	expect("$foo_1", true)
	expect("_", true)
	expect("1foo", false)
	expect("", false)
	expect("foo-bar", false)
	expect("été", true)
	expect("漢字", true)
}
