package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FormatError renders a fatal error for the terminal. Messages carrying a
// "\n\n" separated detail section, such as flag parsing errors, are shown
// as a header with the detail below in a bordered box.
func FormatError(err error) string {
	msg := err.Error()
	parts := strings.SplitN(msg, "\n\n", 2)
	if len(parts) != 2 {
		return theme.Error.Render("Error: " + msg)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.bad).
		Render(parts[0])

	details := lipgloss.NewStyle().
		Foreground(colors.muted).
		Render(parts[1])

	return theme.ErrorBox.Render(fmt.Sprintf("%s\n\n%s", header, details))
}
