package renamer

import (
	"testing"

	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/test"
)

func TestComputeReservedNames(t *testing.T) {
	tree := js_ast.AST{
		TopLevelBindings: []string{"foo"},
		UnboundNames:     []string{"console", "myGlobal"},
	}
	names := ComputeReservedNames(&tree)

	test.AssertEqual(t, names["function"], true)
	test.AssertEqual(t, names["let"], true)
	test.AssertEqual(t, names["await"], true)
	test.AssertEqual(t, names["Object"], true)
	test.AssertEqual(t, names["console"], true)
	test.AssertEqual(t, names["myGlobal"], true)

	// Bindings of the file itself can be renamed
	test.AssertEqual(t, names["foo"], false)
	test.AssertEqual(t, names["a"], false)
}

func TestComputeReservedNamesIsPerTree(t *testing.T) {
	first := ComputeReservedNames(&js_ast.AST{UnboundNames: []string{"onlyInFirst"}})
	second := ComputeReservedNames(&js_ast.AST{})

	test.AssertEqual(t, first["onlyInFirst"], true)
	test.AssertEqual(t, second["onlyInFirst"], false)
}
