package js_lexer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/logger"
	"github.com/evanw/esminify/internal/test"
)

func commentsText(table js_ast.CommentTable) string {
	var sb strings.Builder
	for _, comment := range table.All() {
		sb.WriteString(fmt.Sprintf("%d: %s\n", comment.Loc.Start, comment.Text))
	}
	return sb.String()
}

func expectComments(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		table := ScanComments(test.SourceForTest(contents))
		test.AssertEqualWithDiff(t, commentsText(table), expected)
	})
}

func TestScanComments(t *testing.T) {
	expectComments(t, "foo()", "")
	expectComments(t, "/* a */ foo()", "0: /* a */\n")
	expectComments(t, "/*! a */ let x = 1; // b\nfoo()", "0: /*! a */\n20: // b\n")
	expectComments(t, "a(/* x */1,\n/* y\n*/2)", "2: /* x */\n12: /* y\n*/\n")
	expectComments(t, "`a${b /* c */}d` // e", "6: /* c */\n17: // e\n")
}

func TestScanCommentsRegExp(t *testing.T) {
	// A "//" inside a regular expression is not a comment
	expectComments(t, "let r = /[//]/; // real", "16: // real\n")
	expectComments(t, "function f() { return /[//]/ } // real", "31: // real\n")
	expectComments(t, "x = typeof /[//]/", "")

	// But a "/" after an expression is division
	expectComments(t, "a / b // c", "6: // c\n")
	expectComments(t, "f() / 2 /* c */", "8: /* c */\n")
	expectComments(t, "x[0] /= 2 // c", "10: // c\n")
	expectComments(t, "1 / 2 // c", "6: // c\n")
}

func TestScanCommentsAttachment(t *testing.T) {
	contents := "/*! a */ let x = 1; // b\nfoo() /* end */"
	table := ScanComments(test.SourceForTest(contents))

	// The first comment leads "let" and trails nothing
	leading := table.Leading(logger.Loc{Start: 9})
	test.AssertEqual(t, len(leading), 1)
	test.AssertEqual(t, leading[0].Text, "/*! a */")

	// The second comment trails ";" and leads "foo"
	trailing := table.Trailing(logger.Loc{Start: 19})
	test.AssertEqual(t, len(trailing), 1)
	test.AssertEqual(t, trailing[0].Text, "// b")
	leading = table.Leading(logger.Loc{Start: 25})
	test.AssertEqual(t, len(leading), 1)
	test.AssertEqual(t, leading[0].Text, "// b")

	// The last comment trails ")" and leads the end of the file
	trailing = table.Trailing(logger.Loc{Start: 30})
	test.AssertEqual(t, len(trailing), 1)
	test.AssertEqual(t, trailing[0].Text, "/* end */")
	leading = table.Leading(logger.Loc{Start: int32(len(contents))})
	test.AssertEqual(t, len(leading), 1)
	test.AssertEqual(t, leading[0].Text, "/* end */")

	test.AssertEqual(t, table.Len(), 3)
	test.AssertEqual(t, table.HasLegalComments(), true)
}

func TestIsReservedWord(t *testing.T) {
	test.AssertEqual(t, IsReservedWord("return"), true)
	test.AssertEqual(t, IsReservedWord("let"), true)
	test.AssertEqual(t, IsReservedWord("await"), true)
	test.AssertEqual(t, IsReservedWord("of"), false)
	test.AssertEqual(t, IsReservedWord("foo"), false)
}

func expectDisabledSyntax(t *testing.T, contents string, options config.ParseOptions, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		r, what, ok := FindDisabledSyntax(test.SourceForTest(contents), options)
		observed := ""
		if ok {
			observed = fmt.Sprintf("%s %q", what, contents[r.Loc.Start:r.End()])
		}
		test.AssertEqual(t, observed, expected)
	})
}

func TestFindDisabledSyntax(t *testing.T) {
	none := config.ParseOptions{}
	all := config.DefaultParseOptions()

	expectDisabledSyntax(t, "import('x')", none, "Dynamic \"import()\" \"import\"")
	expectDisabledSyntax(t, "a = 1; b = import ( 'x' )", none, "Dynamic \"import()\" \"import\"")
	expectDisabledSyntax(t, "x = import.meta.url", none, "\"import.meta\" \"import.meta\"")
	expectDisabledSyntax(t, "export * as ns from 'x'", none, "\"export * as\" \"export * as\"")
	expectDisabledSyntax(t, "export *  /* c */ as ns from 'x'", none, "\"export * as\" \"export *  /* c */ as\"")

	// None of these use a proposal
	expectDisabledSyntax(t, "import x from 'x'", none, "")
	expectDisabledSyntax(t, "export * from 'x'", none, "")
	expectDisabledSyntax(t, "a.import('x'); a?.import('x')", none, "")
	expectDisabledSyntax(t, "x = { import() { return 1 } }", none, "")
	expectDisabledSyntax(t, "class A { static import(a) {} }", none, "")
	expectDisabledSyntax(t, "s = '/import(x)/'; r = /import(x)/", none, "")

	// Nothing is disabled
	expectDisabledSyntax(t, "import('x'); import.meta; export * as ns from 'x'", all, "")
}
