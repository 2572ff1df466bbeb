package js_scope

// Scope analysis of JavaScript text. Engines that minify text rather than a
// tree use this to compare what a program binds and reads before and after
// minification. It uses tdewolff's parser, which records the variables each
// scope declares as it parses.

import (
	"sort"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

type Names struct {
	// Bindings of the top-level scope, in the order they were declared
	TopLevel []string

	// Names read without a binding in any enclosing scope
	Unbound []string

	topLevel map[string]bool
	unbound  map[string]bool
	bindings map[string]bool
}

// Returns the parser's error unchanged if the text doesn't parse
func Analyze(contents []byte) (Names, error) {
	tree, err := js.Parse(parse.NewInputBytes(contents), js.Options{})
	if err != nil {
		return Names{}, err
	}

	names := Names{
		TopLevel: varNames(tree.BlockStmt.Scope.Declared),
		Unbound:  varNames(tree.BlockStmt.Scope.Undeclared),
		bindings: make(map[string]bool),
	}
	names.topLevel = toSet(names.TopLevel)
	names.unbound = toSet(names.Unbound)
	js.Walk(bindingCollector{names.bindings}, tree)
	return names, nil
}

func (n *Names) IsTopLevel(name string) bool {
	return n.topLevel[name]
}

func (n *Names) IsUnbound(name string) bool {
	return n.unbound[name]
}

// Returns true if any scope binds this name
func (n *Names) IsBound(name string) bool {
	return n.bindings[name]
}

// Every name bound in any scope, sorted
func (n *Names) Bindings() []string {
	all := make([]string, 0, len(n.bindings))
	for name := range n.bindings {
		all = append(all, name)
	}
	sort.Strings(all)
	return all
}

func varNames(vars js.VarArray) []string {
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, string(v.Data))
	}
	return names
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

// Every function body, block and loop is a *js.BlockStmt with its own scope
type bindingCollector struct {
	names map[string]bool
}

func (c bindingCollector) Enter(n js.INode) js.IVisitor {
	if block, ok := n.(*js.BlockStmt); ok {
		for _, v := range block.Scope.Declared {
			c.names[string(v.Data)] = true
		}
	}
	return c
}

func (bindingCollector) Exit(js.INode) {}
