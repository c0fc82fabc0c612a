package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Terminal colours.
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6C7086")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
)

// styles holds the output styles for one writer.
type styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// stylesFor returns coloured styles when w is a terminal and plain ones
// otherwise.
func stylesFor(w io.Writer) styles {
	plain := lipgloss.NewStyle()
	s := styles{Title: plain, Muted: plain, Success: plain, Warning: plain, Error: plain}
	if !isTerminal(w) {
		return s
	}
	s.Title = plain.Bold(true).Foreground(colorPrimary)
	s.Muted = plain.Foreground(colorMuted)
	s.Success = plain.Foreground(colorSuccess)
	s.Warning = plain.Foreground(colorWarning)
	s.Error = plain.Bold(true).Foreground(colorError)
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
