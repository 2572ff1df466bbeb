package renamer

import (
	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/js_lexer"
)

// Returns every name that renaming must never produce for this tree
func ComputeReservedNames(tree *js_ast.AST) map[string]bool {
	names := make(map[string]bool)

	// All keywords and strict mode reserved words are reserved names
	for k := range js_lexer.Keywords {
		names[k] = true
	}
	for k := range js_lexer.StrictModeReservedWords {
		names[k] = true
	}
	for k := range js_lexer.ModuleReservedWords {
		names[k] = true
	}

	// So are well-known globals, even if this file doesn't read them, since
	// code evaluated later might
	for k := range config.KnownGlobals() {
		names[k] = true
	}

	// All unbound symbols must be reserved names
	for _, name := range tree.UnboundNames {
		names[name] = true
	}

	return names
}
