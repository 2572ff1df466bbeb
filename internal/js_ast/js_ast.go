package js_ast

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/logger"
)

// The pipeline moves a tree through these stages in order. Each stage checks
// that the tree is at the stage before it, so passes can't be reordered.
type Stage uint8

const (
	StageParsed Stage = iota
	StageMarked
	StageMinified
	StageReservedWords
	StageHygiene
	StageFixed
)

var stageNames = [...]string{
	StageParsed:        "parsed",
	StageMarked:        "marked",
	StageMinified:      "minified",
	StageReservedWords: "reserved words",
	StageHygiene:       "hygiene",
	StageFixed:         "fixed",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", s)
}

// Marks identify a scope. They are opaque and comparable, and every mark
// belongs to exactly one Globals. The zero value is the root mark, which
// belongs to every Globals.
type Mark struct {
	owner uint64
	id    uint32
}

var RootMark = Mark{}

func (m Mark) IsRoot() bool {
	return m.id == 0
}

func (m Mark) String() string {
	return fmt.Sprintf("mark(%d)", m.id)
}

var nextGlobalsID uint64

// This is the per-request context. Nothing in here is shared with any other
// request, so it doesn't need a lock as long as a request runs on a single
// goroutine.
type Globals struct {
	id      uint64
	parents []Mark // Indexed by mark id, the root mark is at index 0
}

func NewGlobals() *Globals {
	return &Globals{
		id:      atomic.AddUint64(&nextGlobalsID, 1),
		parents: []Mark{RootMark},
	}
}

func (g *Globals) Owns(m Mark) bool {
	if m.IsRoot() {
		return true
	}
	return m.owner == g.id && int(m.id) < len(g.parents)
}

func (g *Globals) FreshMark(parent Mark) Mark {
	if !g.Owns(parent) {
		panic(fmt.Sprintf("Internal error: %s belongs to another request", parent))
	}
	m := Mark{owner: g.id, id: uint32(len(g.parents))}
	g.parents = append(g.parents, parent)
	return m
}

func (g *Globals) Parent(m Mark) Mark {
	if !g.Owns(m) {
		panic(fmt.Sprintf("Internal error: %s belongs to another request", m))
	}
	return g.parents[m.id]
}

// Scope marking gives the top level of each file a fresh mark directly under
// the root mark
func (g *Globals) IsTopLevel(m Mark) bool {
	return !m.IsRoot() && g.Parent(m) == RootMark
}

type AST struct {
	Source  logger.Source
	Globals *Globals

	// Set by scope marking
	TopLevelMark Mark

	Stage Stage

	// Set by minification
	MinifyOptions *config.MinifyOptions

	// Set by reserved word rewriting. These names are never introduced by a
	// later pass.
	ReservedNames map[string]bool

	// Names bound in the top-level scope, in declaration order
	TopLevelBindings []string

	// Names that are read but never bound anywhere in the module
	UnboundNames []string

	// Whatever the engine that parsed this tree needs to keep around. No code
	// outside of that engine looks inside.
	Repr interface{}
}

// Panics unless the tree is currently at "expected". Passes run in a fixed
// order and running one out of order is a programming mistake, not a user
// error.
func (tree *AST) AdvanceStage(expected Stage, next Stage) {
	if tree.Stage != expected {
		panic(fmt.Sprintf("Internal error: cannot run the %s pass on a tree at the %s stage (expected %s)",
			next, tree.Stage, expected))
	}
	tree.Stage = next
}

// Panics if the mark isn't from this tree's request
func (tree *AST) CheckMark(m Mark) {
	if tree.Globals == nil || !tree.Globals.Owns(m) {
		panic(fmt.Sprintf("Internal error: %s belongs to another request", m))
	}
}

type Comment struct {
	Loc  logger.Loc
	Text string
}

// Legal comments are kept in minified output
func (c Comment) IsLegal() bool {
	text := c.Text
	if strings.HasPrefix(text, "/*!") || strings.HasPrefix(text, "//!") {
		return true
	}
	return strings.Contains(text, "@license") || strings.Contains(text, "@preserve")
}

// Comments are stored off to the side instead of in the tree. A comment is
// attached both to the end of the token before it ("trailing") and to the
// start of the token after it ("leading"). Comments at the start of the file
// have no trailing position. Comments at the end of the file are leading
// comments of the end of the file.
type CommentTable struct {
	leading  map[logger.Loc][]Comment
	trailing map[logger.Loc][]Comment
	count    int
}

func (table *CommentTable) AddLeading(loc logger.Loc, comment Comment) {
	if table.leading == nil {
		table.leading = make(map[logger.Loc][]Comment)
	}
	table.leading[loc] = append(table.leading[loc], comment)
	table.count++
}

func (table *CommentTable) AddTrailing(loc logger.Loc, comment Comment) {
	if table.trailing == nil {
		table.trailing = make(map[logger.Loc][]Comment)
	}
	table.trailing[loc] = append(table.trailing[loc], comment)
}

func (table *CommentTable) Leading(loc logger.Loc) []Comment {
	return table.leading[loc]
}

func (table *CommentTable) Trailing(loc logger.Loc) []Comment {
	return table.trailing[loc]
}

func (table *CommentTable) Len() int {
	return table.count
}

// Every comment once, in source order
func (table *CommentTable) All() []Comment {
	all := make([]Comment, 0, table.count)
	for _, comments := range table.leading {
		all = append(all, comments...)
	}
	sort.Slice(all, func(i int, j int) bool {
		return all[i].Loc.Start < all[j].Loc.Start
	})
	return all
}

func (table *CommentTable) HasLegalComments() bool {
	for _, comments := range table.leading {
		for _, comment := range comments {
			if comment.IsLegal() {
				return true
			}
		}
	}
	return false
}
