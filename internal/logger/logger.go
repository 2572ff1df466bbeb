package logger

// Logging is designed to look and feel like clang's error format. Each message
// contains the contents of the line with the error and a marker underneath the
// offending range. Messages are kept in the order they were added, which is
// the order in which the parser reported them.

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/width"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

type LogLevel int8

const (
	LevelNone LogLevel = iota
	LevelVerbose
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Info
	Verbose
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Verbose:
		return "verbose"
	default:
		panic("Internal error")
	}
}

type Msg struct {
	Kind   MsgKind
	Text   string
	Source *Source

	// The first span is the primary one. A span without a label is still a
	// highlight, it just has nothing to say about itself.
	Spans []Span

	// Suggested fixes, in the order the parser offered them
	Hints []string

	// Free-form lines printed after the message (used for timing output)
	Notes []string
}

type Span struct {
	Range Range
	Label string
}

type Loc struct {
	// This is the 0-based index of this location from the start of the file, in bytes
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

type Source struct {
	// This is used for error messages and source maps. It's whatever the caller
	// passed as the file name and is never used to touch the file system.
	PrettyPath string

	Contents string
}

// The source-map-style position of a byte offset. Lines are 1-based. Columns
// are 0-based and the column of an end offset is exclusive.
type CharPos struct {
	Line       int
	Col        int // In bytes
	ColDisplay int // In display columns (wide characters count twice)
}

// This is the coordinate system used in everything reported to the caller.
// Columns are 1-based and inclusive on both ends.
type SourceLocation struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Converts byte offsets into line and column numbers for one source file. It
// is created once per source file and is the only place positions are
// computed.
type LineColumnTracker struct {
	contents   string
	prettyPath string
	lineStarts []int32
}

func MakeLineColumnTracker(source *Source) LineColumnTracker {
	if source == nil {
		return LineColumnTracker{lineStarts: []int32{0}}
	}

	contents := source.Contents
	lineStarts := make([]int32, 1, 1+strings.Count(contents, "\n"))

	for i, c := range contents {
		switch c {
		case '\r':
			// Handle Windows-specific "\r\n" newlines
			if i+1 < len(contents) && contents[i+1] == '\n' {
				continue
			}
			lineStarts = append(lineStarts, int32(i+1))

		case '\n':
			lineStarts = append(lineStarts, int32(i+1))

		case '\u2028', '\u2029':
			lineStarts = append(lineStarts, int32(i+3)) // These take three bytes to encode in UTF-8
		}
	}

	return LineColumnTracker{
		contents:   contents,
		prettyPath: source.PrettyPath,
		lineStarts: lineStarts,
	}
}

// Returns the 0-based line index containing this byte offset
func (t *LineColumnTracker) lineIndex(offset int32) int {
	return sort.Search(len(t.lineStarts), func(i int) bool {
		return t.lineStarts[i] > offset
	}) - 1
}

func (t *LineColumnTracker) clamp(offset int32) int32 {
	if offset < 0 {
		return 0
	}
	if n := int32(len(t.contents)); offset > n {
		return n
	}
	return offset
}

func (t *LineColumnTracker) LookupCharPos(loc Loc) CharPos {
	offset := t.clamp(loc.Start)
	line := t.lineIndex(offset)
	lineStart := t.lineStarts[line]
	return CharPos{
		Line:       line + 1,
		Col:        int(offset - lineStart),
		ColDisplay: displayWidth(t.contents[lineStart:offset]),
	}
}

func (t *LineColumnTracker) SourceLocation(r Range) SourceLocation {
	start := t.LookupCharPos(r.Loc)
	end := t.LookupCharPos(Loc{Start: r.End()})

	// The lookup has 0-based columns and an exclusive end. The reported start
	// column is 1-based and inclusive, which is one more. The reported end
	// column is 1-based and inclusive too, and for the end the two corrections
	// cancel out.
	return SourceLocation{
		StartLine: start.Line,
		StartCol:  start.ColDisplay + 1,
		EndLine:   end.Line,
		EndCol:    end.ColDisplay,
	}
}

// Converts a 1-based line and a 0-based column in bytes back into a byte
// offset. Out-of-range values are clamped to the file.
func (t *LineColumnTracker) OffsetOf(line int, column int) int32 {
	if line < 1 {
		return 0
	}
	if line > len(t.lineStarts) {
		return int32(len(t.contents))
	}
	lineStart := t.lineStarts[line-1]
	lineEnd := t.lineEnd(line - 1)
	if column < 0 {
		column = 0
	}
	if offset := lineStart + int32(column); offset < lineEnd {
		return offset
	}
	return lineEnd
}

// Like OffsetOf, but for a 1-based column counted in code points
func (t *LineColumnTracker) OffsetOfRuneColumn(line int, column int) int32 {
	if line < 1 {
		return 0
	}
	if line > len(t.lineStarts) {
		return int32(len(t.contents))
	}
	lineStart := t.lineStarts[line-1]
	lineEnd := t.lineEnd(line - 1)
	count := 1
	for i := range t.contents[lineStart:lineEnd] {
		if count == column {
			return lineStart + int32(i)
		}
		count++
	}
	return lineEnd
}

// Returns the offset of the line terminator that ends this 0-based line
func (t *LineColumnTracker) lineEnd(line int) int32 {
	lineStart := t.lineStarts[line]
	for i, c := range t.contents[lineStart:] {
		switch c {
		case '\r', '\n', '\u2028', '\u2029':
			return lineStart + int32(i)
		}
	}
	return int32(len(t.contents))
}

func (t *LineColumnTracker) MsgLocationOrNil(r Range) *MsgLocation {
	if t.contents == "" && t.prettyPath == "" {
		return nil
	}

	pos := t.LookupCharPos(r.Loc)
	lineStart := t.lineStarts[pos.Line-1]
	return &MsgLocation{
		File:     t.prettyPath,
		Line:     pos.Line,
		Column:   pos.Col,
		Length:   int(r.Len),
		LineText: t.contents[lineStart:t.lineEnd(pos.Line-1)],
	}
}

func displayWidth(text string) int {
	n := 0
	for _, c := range text {
		switch {
		case c < 0x80:
			n++
		case unicode.Is(unicode.Mn, c), c == '\u200B', c == '\uFEFF':
			// Zero-width code points don't take up a column
		default:
			switch width.LookupRune(c).Kind() {
			case width.EastAsianWide, width.EastAsianFullwidth:
				n += 2
			default:
				n++
			}
		}
	}
	return n
}

type MsgLocation struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

func plural(prefix string, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, prefix)
	}
	return fmt.Sprintf("%d %ss", count, prefix)
}

func errorAndWarningSummary(errors int, warnings int) string {
	switch {
	case errors == 0:
		return plural("warning", warnings)
	case warnings == 0:
		return plural("error", errors)
	default:
		return fmt.Sprintf("%s and %s",
			plural("warning", warnings),
			plural("error", errors))
	}
}

type TerminalInfo struct {
	IsTTY           bool
	UseColorEscapes bool
	Width           int
	Height          int
}

func hasNoColorEnvironmentVariable() bool {
	// https://no-color.org/
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func NewStderrLog(options StderrOptions) Log {
	var mutex sync.Mutex
	var msgs []Msg
	terminalInfo := GetTerminalInfo(os.Stderr)
	errors := 0
	warnings := 0
	errorLimitWasHit := false

	switch options.Color {
	case ColorNever:
		terminalInfo.UseColorEscapes = false
	case ColorAlways:
		terminalInfo.UseColorEscapes = SupportsColorEscapes
	}

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)

			// Be silent if we're past the limit so we don't flood the terminal
			if errorLimitWasHit {
				return
			}

			switch msg.Kind {
			case Error:
				errors++
				if options.LogLevel <= LevelError {
					writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
				}
			case Warning:
				warnings++
				if options.LogLevel <= LevelWarning {
					writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
				}
			case Info:
				if options.LogLevel <= LevelInfo {
					writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
				}
			case Verbose:
				if options.LogLevel <= LevelVerbose {
					writeStringWithColor(os.Stderr, msg.String(options, terminalInfo))
				}
			}

			// Silence further output if we reached the error limit
			if options.ErrorLimit != 0 && errors >= options.ErrorLimit {
				errorLimitWasHit = true
				if options.LogLevel <= LevelError {
					writeStringWithColor(os.Stderr, fmt.Sprintf(
						"%s reached (disable error limit with --error-limit=0)\n", errorAndWarningSummary(errors, warnings)))
				}
			}
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return errors > 0
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()

			// Print out a summary if the error limit wasn't hit
			if !errorLimitWasHit && options.LogLevel <= LevelInfo && (warnings != 0 || errors != 0) {
				writeStringWithColor(os.Stderr, fmt.Sprintf("%s\n", errorAndWarningSummary(errors, warnings)))
			}

			return msgs
		},
	}
}

func PrintErrorToStderr(osArgs []string, text string) {
	PrintMessageToStderr(osArgs, Msg{Kind: Error, Text: text})
}

func PrintMessageToStderr(osArgs []string, msg Msg) {
	options := StderrOptions{IncludeSource: true}

	// Implement a mini argument parser so these options always work even if we
	// haven't yet gotten to the general-purpose argument parsing code
	for _, arg := range osArgs {
		switch arg {
		case "--color=false":
			options.Color = ColorNever
		case "--color=true":
			options.Color = ColorAlways
		case "--log-level=verbose":
			options.LogLevel = LevelVerbose
		case "--log-level=info":
			options.LogLevel = LevelInfo
		case "--log-level=warning":
			options.LogLevel = LevelWarning
		case "--log-level=error":
			options.LogLevel = LevelError
		case "--log-level=silent":
			options.LogLevel = LevelSilent
		}
	}

	log := NewStderrLog(options)
	log.AddMsg(msg)
	log.Done()
}

// This log only collects messages. It is what the parser reports into when
// nothing should be printed, and each request gets its own.
func NewDeferLog() Log {
	var msgs []Msg
	var mutex sync.Mutex
	var hasErrors bool

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			return msgs
		},
	}
}

type Colors struct {
	Reset     string
	Bold      string
	Dim       string
	Underline string

	Red     string
	Green   string
	Blue    string
	Cyan    string
	Magenta string
	Yellow  string
}

var TerminalColors = Colors{
	Reset:     "\033[0m",
	Bold:      "\033[1m",
	Dim:       "\033[37m",
	Underline: "\033[4m",

	Red:     "\033[31m",
	Green:   "\033[32m",
	Blue:    "\033[34m",
	Cyan:    "\033[36m",
	Magenta: "\033[35m",
	Yellow:  "\033[33m",
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type StderrOptions struct {
	IncludeSource bool
	ErrorLimit    int
	Color         StderrColor
	LogLevel      LogLevel
}

func (msg Msg) String(options StderrOptions, terminalInfo TerminalInfo) string {
	colors := Colors{}
	if terminalInfo.UseColorEscapes {
		colors = TerminalColors
	}

	kind := msg.Kind.String()
	kindColor := colors.Red
	switch msg.Kind {
	case Warning:
		kindColor = colors.Magenta
	case Info, Verbose:
		kindColor = colors.Cyan
	}

	var sb strings.Builder
	var tracker LineColumnTracker
	var location *MsgLocation
	if msg.Source != nil {
		tracker = MakeLineColumnTracker(msg.Source)
		if len(msg.Spans) > 0 {
			location = tracker.MsgLocationOrNil(msg.Spans[0].Range)
		}
	}

	switch {
	case location == nil:
		sb.WriteString(fmt.Sprintf("%s%s%s: %s%s%s%s\n",
			colors.Bold, kindColor, kind,
			colors.Reset, colors.Bold, msg.Text,
			colors.Reset))

	case !options.IncludeSource:
		sb.WriteString(fmt.Sprintf("%s%s: %s%s: %s%s%s\n",
			colors.Bold, location.File,
			kindColor, kind,
			colors.Reset+colors.Bold, msg.Text,
			colors.Reset))

	default:
		d := detailStruct(location, terminalInfo)
		sb.WriteString(fmt.Sprintf("%s%s:%d:%d: %s%s: %s%s%s\n%s%s%s%s%s%s\n%s%s%s%s%s\n",
			colors.Bold, d.Path,
			d.Line,
			d.Column,
			kindColor, kind,
			colors.Reset, colors.Bold, msg.Text,
			colors.Reset, d.SourceBefore, colors.Green, d.SourceMarked, colors.Reset, d.SourceAfter,
			colors.Green, d.Indent, d.Marker,
			colors.Reset, d.ContentAfter))
	}

	// Labeled secondary spans are printed like notes
	if len(msg.Spans) > 1 {
		for _, span := range msg.Spans[1:] {
			if span.Label == "" {
				continue
			}
			if spanLocation := tracker.MsgLocationOrNil(span.Range); spanLocation != nil {
				sb.WriteString(fmt.Sprintf("  %s%s:%d:%d: %snote:%s %s\n",
					colors.Bold, spanLocation.File, spanLocation.Line, spanLocation.Column,
					colors.Cyan, colors.Reset, span.Label))
			} else {
				sb.WriteString(fmt.Sprintf("  %snote:%s %s\n", colors.Cyan, colors.Reset, span.Label))
			}
		}
	}

	for _, hint := range msg.Hints {
		sb.WriteString(fmt.Sprintf("  %shint:%s %s\n", colors.Green, colors.Reset, hint))
	}

	for _, note := range msg.Notes {
		sb.WriteString(fmt.Sprintf("  %s\n", note))
	}

	return sb.String()
}

type MsgDetail struct {
	Path   string
	Line   int
	Column int

	// Source == SourceBefore + SourceMarked + SourceAfter
	Source       string
	SourceBefore string
	SourceMarked string
	SourceAfter  string

	Indent string
	Marker string

	ContentAfter string
}

func detailStruct(location *MsgLocation, terminalInfo TerminalInfo) MsgDetail {
	// Only highlight the first line of the line text
	loc := *location
	endOfFirstLine := len(loc.LineText)
	for i, c := range loc.LineText {
		if c == '\r' || c == '\n' || c == '\u2028' || c == '\u2029' {
			endOfFirstLine = i
			break
		}
	}
	firstLine := loc.LineText[:endOfFirstLine]
	afterFirstLine := loc.LineText[endOfFirstLine:]

	// Clamp values in range
	if loc.Line < 0 {
		loc.Line = 0
	}
	if loc.Column < 0 {
		loc.Column = 0
	}
	if loc.Length < 0 {
		loc.Length = 0
	}
	if loc.Column > endOfFirstLine {
		loc.Column = endOfFirstLine
	}
	if loc.Length > endOfFirstLine-loc.Column {
		loc.Length = endOfFirstLine - loc.Column
	}

	spacesPerTab := 2
	lineText := renderTabStops(firstLine, spacesPerTab)
	indent := strings.Repeat(" ", len(renderTabStops(firstLine[:loc.Column], spacesPerTab)))
	marker := "^"
	markerStart := len(indent)
	markerEnd := len(indent)

	// Extend markers to cover the full range of the error
	if loc.Length > 0 {
		markerEnd = len(renderTabStops(firstLine[:loc.Column+loc.Length], spacesPerTab))
	}

	// Clip the marker to the bounds of the line
	if markerStart > len(lineText) {
		markerStart = len(lineText)
	}
	if markerEnd > len(lineText) {
		markerEnd = len(lineText)
	}
	if markerEnd < markerStart {
		markerEnd = markerStart
	}

	// Trim the line to fit the terminal width
	width := terminalInfo.Width
	if width < 1 {
		width = 80
	}
	if loc.Column == endOfFirstLine {
		// If the marker is at the very end of the line, the marker will be a "^"
		// character that extends one column past the end of the line. In this case
		// we should reserve a column at the end so the marker doesn't wrap.
		width -= 1
	}
	if len(lineText) > width {
		// Try to center the error
		sliceStart := (markerStart + markerEnd - width) / 2
		if sliceStart > markerStart-width/5 {
			sliceStart = markerStart - width/5
		}
		if sliceStart < 0 {
			sliceStart = 0
		}
		if sliceStart > len(lineText)-width {
			sliceStart = len(lineText) - width
		}
		sliceEnd := sliceStart + width

		// Slice the line
		slicedLine := lineText[sliceStart:sliceEnd]
		markerStart -= sliceStart
		markerEnd -= sliceStart
		if markerStart < 0 {
			markerStart = 0
		}
		if markerEnd > len(slicedLine) {
			markerEnd = len(slicedLine)
		}

		// Truncate the ends with "..."
		if len(slicedLine) > 3 && sliceStart > 0 {
			slicedLine = "..." + slicedLine[3:]
			if markerStart < 3 {
				markerStart = 3
			}
		}
		if len(slicedLine) > 3 && sliceEnd < len(lineText) {
			slicedLine = slicedLine[:len(slicedLine)-3] + "..."
			if markerEnd > len(slicedLine)-3 {
				markerEnd = len(slicedLine) - 3
			}
			if markerEnd < markerStart {
				markerEnd = markerStart
			}
		}

		// Now we can compute the indent
		indent = strings.Repeat(" ", markerStart)
		lineText = slicedLine
	}

	// If marker is still multi-character after clipping, make the marker wider
	if markerEnd-markerStart > 1 {
		marker = strings.Repeat("~", markerEnd-markerStart)
	}

	return MsgDetail{
		Path:   loc.File,
		Line:   loc.Line,
		Column: loc.Column,

		Source:       lineText,
		SourceBefore: lineText[:markerStart],
		SourceMarked: lineText[markerStart:markerEnd],
		SourceAfter:  lineText[markerEnd:],

		Indent: indent,
		Marker: marker,

		ContentAfter: afterFirstLine,
	}
}

func renderTabStops(withTabs string, spacesPerTab int) string {
	if !strings.ContainsRune(withTabs, '\t') {
		return withTabs
	}

	withoutTabs := strings.Builder{}
	count := 0

	for _, c := range withTabs {
		if c == '\t' {
			spaces := spacesPerTab - count%spacesPerTab
			for i := 0; i < spaces; i++ {
				withoutTabs.WriteRune(' ')
				count++
			}
		} else {
			withoutTabs.WriteRune(c)
			count++
		}
	}

	return withoutTabs.String()
}

func (log Log) AddVerboseWithNotes(text string, notes []string) {
	log.AddMsg(Msg{
		Kind:  Verbose,
		Text:  text,
		Notes: notes,
	})
}
