package js_scope

import (
	"strings"
	"testing"

	"github.com/evanw/esminify/internal/test"
)

func analyzeForTest(t *testing.T, contents string) Names {
	t.Helper()
	names, err := Analyze([]byte(contents))
	if err != nil {
		t.Fatal(err)
	}
	return names
}

func TestAnalyzeTopLevel(t *testing.T) {
	names := analyzeForTest(t, "var a = b; let c; function d(e) { return e + f }")
	test.AssertEqual(t, strings.Join(names.TopLevel, ","), "a,c,d")
	test.AssertEqual(t, names.IsTopLevel("a"), true)
	test.AssertEqual(t, names.IsTopLevel("e"), false)

	test.AssertEqual(t, names.IsUnbound("b"), true)
	test.AssertEqual(t, names.IsUnbound("f"), true)
	test.AssertEqual(t, names.IsUnbound("e"), false)
}

func TestAnalyzeNestedBindings(t *testing.T) {
	names := analyzeForTest(t, `
		function outer(a) {
			let b = () => { const c = 1; return c };
			for (let d of a) {}
			try {} catch (e) {}
			class F { m(g) { var h } }
			return b
		}
	`)
	test.AssertEqual(t, strings.Join(names.Bindings(), ","), "F,a,b,c,d,e,g,h,outer")
	test.AssertEqual(t, names.IsBound("c"), true)
	test.AssertEqual(t, names.IsBound("m"), false)
	test.AssertEqual(t, strings.Join(names.TopLevel, ","), "outer")
}

func TestAnalyzeError(t *testing.T) {
	_, err := Analyze([]byte("function("))
	test.AssertEqual(t, err != nil, true)
}
