package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// Colours for conversion states.
var (
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
	colourMuted   = lipgloss.Color("#6C7086")
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// stateLabel renders a conversion state, coloured on terminals.
func stateLabel(w io.Writer, state domain.ConversionState) string {
	label := string(state)
	if !isTerminal(w) {
		return label
	}

	style := lipgloss.NewStyle().Bold(true)
	switch state {
	case domain.StateConverted:
		style = style.Foreground(colourSuccess)
	case domain.StateConverting:
		style = style.Foreground(colourWarning)
	case domain.StateFailed:
		style = style.Foreground(colourError)
	default:
		style = style.Foreground(colourMuted)
	}
	return style.Render(label)
}

// heading renders a section title, underlined on terminals.
func heading(w io.Writer, title string) string {
	if !isTerminal(w) {
		return title
	}
	return lipgloss.NewStyle().Bold(true).Underline(true).Render(title)
}

// onOff renders a boolean setting.
func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
