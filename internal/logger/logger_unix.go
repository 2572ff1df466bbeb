//go:build !windows
// +build !windows

package logger

import (
	"os"

	"golang.org/x/term"
)

const SupportsColorEscapes = true

func GetTerminalInfo(file *os.File) (info TerminalInfo) {
	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	info.IsTTY = true
	info.UseColorEscapes = !hasNoColorEnvironmentVariable()
	if width, height, err := term.GetSize(fd); err == nil {
		info.Width = width
		info.Height = height
	}
	return
}

func writeStringWithColor(file *os.File, text string) {
	file.WriteString(text)
}
