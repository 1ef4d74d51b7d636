// Package ui provides the terminal user interface for the mouse jiggler.
package ui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	muted, accent, good, caution, bad, track lipgloss.AdaptiveColor
}

var colors = palette{
	muted:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
	accent:  lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"},
	good:    lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"},
	caution: lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"},
	bad:     lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
	track:   lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"},
}

// Theme is the set of styles the views render with.
type Theme struct {
	Title, Countdown        lipgloss.Style
	Active, Inactive        lipgloss.Style
	Selected, Unselected    lipgloss.Style
	Value, Dirty            lipgloss.Style
	Help, Notice            lipgloss.Style
	Warning, Error          lipgloss.Style
	InputBox, ErrorBox      lipgloss.Style
	ProgressBar, BarPadding lipgloss.Style
}

func newTheme(c palette) Theme {
	pad := lipgloss.NewStyle().Padding(0, 1)
	fg := func(col lipgloss.AdaptiveColor) lipgloss.Style { return pad.Foreground(col) }
	boxed := func(col lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(col).Padding(0, 1)
	}

	return Theme{
		Title:      fg(c.accent).Bold(true),
		Countdown:  fg(c.accent).Bold(true),
		Active:     fg(c.good),
		Inactive:   fg(c.muted),
		Selected:   fg(c.accent).Bold(true),
		Unselected: pad,
		Value:      lipgloss.NewStyle().Bold(true),
		Dirty:      lipgloss.NewStyle().Foreground(c.caution),
		Help:       fg(c.muted),
		Notice:     fg(c.good),
		Warning:    fg(c.caution),
		Error:      fg(c.bad),
		InputBox:   boxed(c.accent),
		ErrorBox:   boxed(c.bad),

		ProgressBar: lipgloss.NewStyle().Background(c.track),
		BarPadding:  pad,
	}
}

var theme = newTheme(colors)
