package test

import (
	"strings"

	"github.com/evanw/esminify/internal/logger"
	"github.com/pmezard/go-difflib/difflib"
)

// Returns a unified diff from "old" to "new". With color, removed lines are
// red and added lines are green.
func Diff(old string, new string, color bool) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(old),
		B:        difflib.SplitLines(new),
		FromFile: "expected",
		ToFile:   "observed",
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	if !color {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
			lines[i] = logger.TerminalColors.Dim + line + logger.TerminalColors.Reset
		case strings.HasPrefix(line, "-"):
			lines[i] = logger.TerminalColors.Red + line + logger.TerminalColors.Reset
		case strings.HasPrefix(line, "+"):
			lines[i] = logger.TerminalColors.Green + line + logger.TerminalColors.Reset
		}
	}
	return strings.Join(lines, "\n")
}
