//go:build windows
// +build windows

package logger

import (
	"os"

	"golang.org/x/sys/windows"
)

const SupportsColorEscapes = true

// Colors are only used when the console accepts ANSI escape sequences. That
// has to be turned on per console handle on Windows 10 and later.
func GetTerminalInfo(file *os.File) TerminalInfo {
	handle := windows.Handle(file.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return TerminalInfo{}
	}

	useEscapes := mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0
	if !useEscapes {
		useEscapes = windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
	}

	var info windows.ConsoleScreenBufferInfo
	windows.GetConsoleScreenBufferInfo(handle, &info)

	return TerminalInfo{
		IsTTY:           true,
		Width:           int(info.Window.Right-info.Window.Left) + 1,
		Height:          int(info.Window.Bottom-info.Window.Top) + 1,
		UseColorEscapes: useEscapes && !hasNoColorEnvironmentVariable(),
	}
}

func writeStringWithColor(file *os.File, text string) {
	file.WriteString(text)
}
