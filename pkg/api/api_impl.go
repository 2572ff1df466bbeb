package api

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esminify/internal/engine"
	"github.com/evanw/esminify/internal/esbuild_engine"
	"github.com/evanw/esminify/internal/helpers"
	"github.com/evanw/esminify/internal/js_ast"
	"github.com/evanw/esminify/internal/js_parser"
	"github.com/evanw/esminify/internal/js_printer"
	"github.com/evanw/esminify/internal/logger"
	"github.com/evanw/esminify/internal/pipeline"
	"github.com/evanw/esminify/internal/sourcemap"
	"github.com/evanw/esminify/internal/tdewolff_engine"
)

func validateEngine(value Engine) engine.Engine {
	switch value {
	case EngineESBuild:
		return esbuild_engine.New()
	case EngineTdewolff:
		return tdewolff_engine.New()
	default:
		panic("Invalid engine")
	}
}

func validateColor(value StderrColor) logger.StderrColor {
	switch value {
	case ColorIfTerminal:
		return logger.ColorIfTerminal
	case ColorNever:
		return logger.ColorNever
	case ColorAlways:
		return logger.ColorAlways
	default:
		panic("Invalid color")
	}
}

func validateLogLevel(value LogLevel) logger.LogLevel {
	switch value {
	case LogLevelVerbose:
		return logger.LevelVerbose
	case LogLevelInfo:
		return logger.LevelInfo
	case LogLevelWarning:
		return logger.LevelWarning
	case LogLevelError:
		return logger.LevelError
	case LogLevelSilent:
		return logger.LevelSilent
	default:
		panic("Invalid log level")
	}
}

func newLog(options TransformOptions) logger.Log {
	if options.LogLevel == LogLevelSilent {
		return logger.NewDeferLog()
	}
	return logger.NewStderrLog(logger.StderrOptions{
		IncludeSource: true,
		Color:         validateColor(options.Color),
		LogLevel:      validateLogLevel(options.LogLevel),
	})
}

func transformImpl(options TransformOptions) TransformResult {
	// Everything below belongs to this call alone
	log := newLog(options)
	source := logger.Source{PrettyPath: options.Filename, Contents: options.Code}
	tracker := logger.MakeLineColumnTracker(&source)
	globals := js_ast.NewGlobals()
	eng := validateEngine(options.Engine)

	var timer *helpers.Timer
	if options.Timing {
		timer = &helpers.Timer{}
	}

	timer.Begin("Parse")
	tree, comments, err := js_parser.Parse(globals, source, eng, js_parser.OptionsFromDefaults())
	timer.End("Parse")
	if err != nil {
		var syntaxErr *engine.SyntaxError
		if errors.As(err, &syntaxErr) {
			syntaxErr.Emit(log)
		} else {
			log.AddMsg(logger.Msg{Kind: logger.Error, Text: err.Error(), Source: &source})
		}
		timer.Log(log)
		return TransformResult{Diagnostics: diagnosticsFromMsgs(&tracker, log.Done())}
	}

	js, sm, err := minifyAndPrint(&tree, &comments, eng, timer, options.SourceMaps)
	if err != nil {
		// The file parsed, so whatever went wrong isn't something the user can
		// fix in their code. It's still reported the same way so callers only
		// have one failure shape to handle.
		log.AddMsg(logger.Msg{Kind: logger.Error, Text: internalErrorText(err.Error())})
		timer.Log(log)
		return TransformResult{Diagnostics: diagnosticsFromMsgs(&tracker, log.Done())}
	}

	result := TransformResult{Code: string(js)}
	if options.SourceMaps && sm != nil {
		timer.Begin("Encode source map")
		result.Map = encodeSourceMap(options.Filename, sm)
		timer.End("Encode source map")
	}

	timer.Log(log)
	log.Done()
	return result
}

func internalErrorText(text string) string {
	if strings.HasPrefix(text, "Internal error") {
		return text
	}
	return "Internal error: " + text
}

// Passes and printing run inside the engine, so a bug there shows up as a
// panic. That's turned into an error for this call only.
func minifyAndPrint(
	tree *js_ast.AST,
	comments *js_ast.CommentTable,
	backend engine.Backend,
	timer *helpers.Timer,
	wantSourceMap bool,
) (js []byte, sm *sourcemap.SourceMap, err error) {
	defer func() {
		if r := recover(); r != nil {
			js = nil
			sm = nil
			err = fmt.Errorf("%v", r)
		}
	}()

	if err := pipeline.Run(tree, comments, backend, pipeline.Options{Timer: timer}); err != nil {
		return nil, nil, err
	}

	timer.Begin("Print")
	result, err := js_printer.Print(tree, comments, backend, js_printer.Options{SourceMap: wantSourceMap})
	timer.End("Print")
	if err != nil {
		return nil, nil, err
	}
	return result.JS, result.SourceMap, nil
}

// Returns an empty string if the source map couldn't be encoded
func encodeSourceMap(filename string, sm *sourcemap.SourceMap) string {
	if len(sm.Sources) == 1 {
		sm.Sources = []string{filename}
	}
	buffer := bytes.Buffer{}
	if err := sourcemap.Encode(&buffer, sm); err != nil {
		return ""
	}
	return buffer.String()
}

// Only errors become diagnostics. Anything else in the log was already
// printed if the log level asked for it.
func diagnosticsFromMsgs(tracker *logger.LineColumnTracker, msgs []logger.Msg) []Diagnostic {
	diagnostics := []Diagnostic{}
	for _, msg := range msgs {
		if msg.Kind != logger.Error {
			continue
		}
		diagnostic := Diagnostic{Message: msg.Text}
		for _, span := range msg.Spans {
			highlight := CodeHighlight{Loc: convertLocation(tracker.SourceLocation(span.Range))}
			if span.Label != "" {
				label := span.Label
				highlight.Message = &label
			}
			diagnostic.CodeHighlights = append(diagnostic.CodeHighlights, highlight)
		}
		if len(msg.Hints) > 0 {
			diagnostic.Hints = append([]string{}, msg.Hints...)
		}
		diagnostics = append(diagnostics, diagnostic)
	}
	return diagnostics
}

func convertLocation(loc logger.SourceLocation) SourceLocation {
	return SourceLocation{
		StartLine: loc.StartLine,
		StartCol:  loc.StartCol,
		EndLine:   loc.EndLine,
		EndCol:    loc.EndCol,
	}
}
