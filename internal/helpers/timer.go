package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/evanw/esminify/internal/logger"
)

// Records nested pass timings for one call. A nil timer ignores everything so
// callers don't need to check whether timing was requested.
type Timer struct {
	open  []openTimer
	notes []string
}

type openTimer struct {
	name  string
	start time.Time
	index int
}

func (t *Timer) Begin(name string) {
	if t == nil {
		return
	}

	// Reserve the note now so outer passes are listed before inner ones
	t.open = append(t.open, openTimer{name: name, start: time.Now(), index: len(t.notes)})
	t.notes = append(t.notes, "")
}

func (t *Timer) End(name string) {
	if t == nil {
		return
	}

	last := len(t.open) - 1
	if last < 0 || t.open[last].name != name {
		panic("Internal error: mismatched timer " + name)
	}
	top := t.open[last]
	t.open = t.open[:last]
	t.notes[top.index] = fmt.Sprintf("%s%s: %dms",
		strings.Repeat("  ", len(t.open)), name, time.Since(top.start).Milliseconds())
}

func (t *Timer) Log(log logger.Log) {
	if t == nil {
		return
	}
	log.AddVerboseWithNotes("Timing information", t.notes)
}
