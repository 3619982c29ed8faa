// Package display renders schedules for the terminal: ANSI styles, aligned
// tables and the daily view.
//
// Styling follows NO_COLOR (https://no-color.org/) and is off when stdout
// is not a terminal or TERM is "dumb". FORCE_COLOR turns it back on.
package display

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Style is an ANSI SGR sequence applied to a span of text.
type Style string

const (
	styleReset Style = "\033[0m"

	StyleBold   Style = "\033[1m"
	StyleDim    Style = "\033[2m"
	StyleGray   Style = "\033[90m"
	StyleAccent Style = "\033[1;36m" // bold cyan, the next prayer
)

var enabled = detect(os.Getenv, os.Stdout)

// detect decides the initial styling state from the environment and out.
func detect(getenv func(string) string, out *os.File) bool {
	switch {
	case getenv("NO_COLOR") != "":
		return false
	case getenv("FORCE_COLOR") != "":
		return true
	case getenv("TERM") == "dumb":
		return false
	}
	return isTerminal(out)
}

// isTerminal reports whether f is connected to a terminal, including the
// Cygwin and MSYS pseudo terminals used on Windows.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SetEnabled overrides the detected state; --json forces it off.
func SetEnabled(b bool) { enabled = b }

// Enabled reports whether styling is active.
func Enabled() bool { return enabled }

// Render wraps text in s when styling is enabled.
func (s Style) Render(text string) string {
	if !enabled || text == "" {
		return text
	}
	return string(s) + text + string(styleReset)
}

func Bold(text string) string   { return StyleBold.Render(text) }
func Dim(text string) string    { return StyleDim.Render(text) }
func Gray(text string) string   { return StyleGray.Render(text) }
func Accent(text string) string { return StyleAccent.Render(text) }
