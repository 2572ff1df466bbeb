package config

// The grammar the parser accepts. This is fixed: every request is parsed as an
// ECMAScript module with the proposals below turned on.
type ParseOptions struct {
	// "import()"
	DynamicImport bool

	// "export * as ns from 'path'"
	ExportNamespaceFrom bool

	// "export v from 'path'". Engines that don't implement this proposal
	// report it as a syntax error instead.
	ExportDefaultFrom bool

	// "import.meta"
	ImportMeta bool
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		DynamicImport:       true,
		ExportNamespaceFrom: true,
		ExportDefaultFrom:   true,
		ImportMeta:          true,
	}
}

// A nil pointer means the corresponding sub-pass is disabled
type MinifyOptions struct {
	Compress *CompressOptions
	Mangle   *MangleOptions

	// Rename local bindings. This is separate from mangling so that an engine
	// can still make names unique without shortening them.
	Rename bool

	// Wrap the output in an IIFE
	Wrap bool

	// Enclose the output in a function with parameters bound to globals
	Enclose bool
}

type CompressOptions struct {
	// Keep "debugger" statements
	KeepDebugger bool
}

type MangleOptions struct {
	// Also rename bindings declared in the top-level scope
	TopLevel bool

	// Keep the "name" property of functions and classes intact
	KeepFnNames bool
}

func DefaultMinifyOptions() MinifyOptions {
	return MinifyOptions{
		Rename:   true,
		Compress: &CompressOptions{},
		Mangle:   &MangleOptions{},
	}
}
