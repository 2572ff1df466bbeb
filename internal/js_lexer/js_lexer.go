package js_lexer

// The parser itself belongs to the engine, so this package doesn't produce a
// token stream for anyone. It only knows enough about JavaScript tokens to
// find the comments and the optional grammar in a file that has already
// parsed successfully, and it owns the tables of names the language reserves.

import (
	"io"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"github.com/evanw/esminify/internal/config"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/logger"
)

var Keywords = map[string]bool{
	// Reserved words
	"break":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"enum":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"new":        true,
	"null":       true,
	"return":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
}

var StrictModeReservedWords = map[string]bool{
	"implements": true,
	"interface":  true,
	"let":        true,
	"package":    true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"static":     true,
	"yield":      true,
}

// Module code is always strict and "await" is reserved at the top level of a
// module, so these can never be used as binding names in the output either
var ModuleReservedWords = map[string]bool{
	"await":     true,
	"arguments": true,
	"eval":      true,
}

func IsReservedWord(name string) bool {
	return Keywords[name] || StrictModeReservedWords[name] || ModuleReservedWords[name]
}

// A "/" after one of these starts a regular expression even though the word
// looks like an identifier
var keywordsBeforeExpression = map[string]bool{
	"await":      true,
	"case":       true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"in":         true,
	"instanceof": true,
	"new":        true,
	"of":         true,
	"return":     true,
	"throw":      true,
	"typeof":     true,
	"void":       true,
	"yield":      true,
}

// Returns true if a "/" after this token is a division operator instead of
// the start of a regular expression literal
func isDivisionAfter(tt js.TokenType, text []byte) bool {
	switch tt {
	case js.StringToken, js.TemplateToken, js.TemplateEndToken, js.RegExpToken:
		return true
	}
	if len(text) == 0 {
		return false
	}
	switch text[len(text)-1] {
	case ')', ']', '}':
		return true
	}
	word := string(text)
	if js_ast.StartsWithIdentifier(word) {
		return !keywordsBeforeExpression[word]
	}

	// Numeric literals
	c := text[0]
	return (c >= '0' && c <= '9') || (c == '.' && len(text) > 1)
}

type token struct {
	kind js.TokenType
	text []byte
	loc  logger.Loc
}

func isTrivia(tt js.TokenType) bool {
	switch tt {
	case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
		return true
	}
	return false
}

// Lexes the whole file, including whitespace and comments. A "/" is read as
// division or as a regular expression depending on the token before it. The
// second return value is false if the lexer stopped before the end.
func tokenize(contents string) ([]token, bool) {
	lexer := js.NewLexer(parse.NewInputString(contents))

	var tokens []token
	var prevType js.TokenType
	var prevText []byte
	hasPrev := false
	offset := int32(0)

	for {
		tt, text := lexer.Next()
		if (tt == js.DivToken || tt == js.DivEqToken) && !(hasPrev && isDivisionAfter(prevType, prevText)) {
			tt, text = lexer.RegExp()
		}
		if tt == js.ErrorToken {
			return tokens, lexer.Err() == io.EOF
		}

		tokens = append(tokens, token{kind: tt, text: text, loc: logger.Loc{Start: offset}})
		offset += int32(len(text))

		if !isTrivia(tt) {
			prevType = tt
			prevText = text
			hasPrev = true
		}
	}
}

// Builds the comment table for a file. Each comment is a leading comment of
// the token after it and a trailing comment of the token before it. The
// source must have parsed successfully, otherwise the table may be partial.
func ScanComments(source logger.Source) js_ast.CommentTable {
	table := js_ast.CommentTable{}
	tokens, complete := tokenize(source.Contents)

	var pending []js_ast.Comment
	hasPrev := false
	prevEnd := logger.Loc{}

	for _, tok := range tokens {
		switch tok.kind {
		case js.WhitespaceToken, js.LineTerminatorToken:
			continue

		case js.CommentToken, js.CommentLineTerminatorToken:
			comment := js_ast.Comment{Loc: tok.loc, Text: string(tok.text)}
			if hasPrev {
				table.AddTrailing(prevEnd, comment)
			}
			pending = append(pending, comment)
			continue
		}

		for _, comment := range pending {
			table.AddLeading(tok.loc, comment)
		}
		pending = pending[:0]
		prevEnd = logger.Loc{Start: tok.loc.Start + int32(len(tok.text))}
		hasPrev = true
	}

	// Anything still pending leads the end of the file. A lexer error means
	// the file didn't really parse, and then there's nothing more to find.
	if complete {
		eof := logger.Loc{Start: int32(len(source.Contents))}
		for _, comment := range pending {
			table.AddLeading(eof, comment)
		}
	}
	return table
}

// Finds the first use of a proposal that the options turn off and returns
// its range and a name for it. The source must have parsed with every
// proposal turned on. There's nothing to find for "export v from" because
// no engine parses it in the first place.
func FindDisabledSyntax(source logger.Source, options config.ParseOptions) (logger.Range, string, bool) {
	tokens, _ := tokenize(source.Contents)
	significant := make([]token, 0, len(tokens))
	for _, tok := range tokens {
		if !isTrivia(tok.kind) {
			significant = append(significant, tok)
		}
	}

	kindAt := func(i int) js.TokenType {
		if i >= 0 && i < len(significant) {
			return significant[i].kind
		}
		return js.ErrorToken
	}

	for i, tok := range significant {
		switch tok.kind {
		case js.ImportToken:
			// "a.import" and "a?.import" are property accesses
			if prev := kindAt(i - 1); prev == js.DotToken || prev == js.OptChainToken {
				continue
			}
			switch kindAt(i + 1) {
			case js.DotToken:
				if !options.ImportMeta && kindAt(i+2) == js.MetaToken {
					return rangeOfTokens(tok, significant[i+2]), "\"import.meta\"", true
				}
			case js.OpenParenToken:
				if !options.DynamicImport && !isMethodParams(significant, i+1) {
					return rangeOfTokens(tok, tok), "Dynamic \"import()\"", true
				}
			}

		case js.ExportToken:
			if !options.ExportNamespaceFrom && kindAt(i+1) == js.MulToken && kindAt(i+2) == js.AsToken {
				return rangeOfTokens(tok, significant[i+2]), "\"export * as\"", true
			}
		}
	}

	return logger.Range{}, "", false
}

func rangeOfTokens(first token, last token) logger.Range {
	end := last.loc.Start + int32(len(last.text))
	return logger.Range{Loc: first.loc, Len: end - first.loc.Start}
}

// A method named "import" has a body right after its parameter list, which a
// call never does
func isMethodParams(tokens []token, open int) bool {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].kind {
		case js.OpenParenToken:
			depth++
		case js.CloseParenToken:
			depth--
			if depth == 0 {
				return i+1 < len(tokens) && tokens[i+1].kind == js.OpenBraceToken
			}
		}
	}
	return false
}
