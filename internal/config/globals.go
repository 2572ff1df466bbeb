package config

import "sync"

var knownGlobalsOnce sync.Once
var knownGlobalsSet map[string]bool

var knownGlobals = []string{
	// These global identifiers should exist in all JavaScript environments
	"Array",
	"Boolean",
	"Function",
	"Math",
	"Number",
	"Object",
	"RegExp",
	"String",

	// These are always defined but can't be constant folded safely
	"globalThis",
	"undefined",
	"NaN",
	"Infinity",

	// Built-ins that minified code commonly refers to
	"BigInt",
	"Date",
	"Error",
	"EvalError",
	"JSON",
	"Map",
	"Promise",
	"Proxy",
	"RangeError",
	"ReferenceError",
	"Reflect",
	"Set",
	"Symbol",
	"SyntaxError",
	"TypeError",
	"URIError",
	"WeakMap",
	"WeakSet",
	"decodeURI",
	"decodeURIComponent",
	"encodeURI",
	"encodeURIComponent",
	"eval",
	"isFinite",
	"isNaN",
	"parseFloat",
	"parseInt",

	// Names with special meaning inside functions
	"arguments",
}

// Names that generated code must never bind, because doing so would shadow a
// global the program may read. The set is built once and shared by all
// requests, so callers must not modify it.
func KnownGlobals() map[string]bool {
	knownGlobalsOnce.Do(func() {
		knownGlobalsSet = make(map[string]bool, len(knownGlobals))
		for _, name := range knownGlobals {
			knownGlobalsSet[name] = true
		}
	})
	return knownGlobalsSet
}
