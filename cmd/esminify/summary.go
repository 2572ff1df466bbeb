package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

type summaryStyles struct {
	success *color.Color
	count   *color.Color
}

func newSummaryStyles(enabled bool) *summaryStyles {
	s := &summaryStyles{
		success: color.New(color.FgGreen),
		count:   color.New(color.Bold),
	}
	if enabled {
		s.success.EnableColor()
		s.count.EnableColor()
	} else {
		s.success.DisableColor()
		s.count.DisableColor()
	}
	return s
}

// Follows the same rules as the diagnostics printer: an explicit --color
// wins, otherwise colors are used for a terminal unless NO_COLOR is set.
func summaryColorEnabled(w io.Writer, explicit bool, value bool) bool {
	if explicit {
		return value
	}
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func writeSummary(w io.Writer, styles *summaryStyles, files int, elapsed time.Duration) {
	fmt.Fprintf(w, "%s %s in %s\n",
		styles.success.Sprint("Minified"),
		styles.count.Sprintf("%d %s", files, pluralFiles(files)),
		elapsed.Round(time.Millisecond))
}
