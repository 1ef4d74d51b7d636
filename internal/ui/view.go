package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stigoleg/mouse-jiggler/internal/config"
	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
	"github.com/stigoleg/mouse-jiggler/internal/keepalive"
	"github.com/stigoleg/mouse-jiggler/internal/settings"
	"github.com/stigoleg/mouse-jiggler/internal/zen"
)

// progressWidth matches the width of the help line.
const progressWidth = 20

// Purple to green, sampled per filled cell.
var gradientColors = []string{
	"#7D56F4", "#6E5AF5", "#5F5FF7", "#5063F8", "#4168FA",
	"#326CFB", "#2371FD", "#1475FE", "#057AFF", "#007FF5",
	"#0085E6", "#008BD7", "#0091C8", "#0097B9", "#009DAA",
	"#00A39B", "#00A98C", "#00AF7D", "#00B56E", "#43BF6D",
}

// View renders the current state of the model to a string.
func View(m Model) string {
	if m.ShowHelp {
		return helpView()
	}

	switch m.State {
	case stateMenu:
		return menuView(m)
	case stateTimedInput:
		return timedInputView(m)
	case stateRunning:
		return runningView(m)
	case stateSettings:
		return settingsView(m)
	}

	return ""
}

func menuView(m Model) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Mouse Jiggler"))
	b.WriteString("\n\n")
	b.WriteString(theme.Inactive.Render(describeSettings(m.deps.Keeper.Settings())))
	b.WriteString("\n\n")

	for i, opt := range menuItems {
		if i == m.Selected {
			b.WriteString(theme.Selected.Render("> " + opt))
		} else {
			b.WriteString(theme.Unselected.Render("  " + opt))
		}
		b.WriteString("\n")
	}

	writeMessages(&b, m)
	b.WriteString("\n" + m.help.View(m.keys.ForState(stateMenu)))
	return b.String()
}

func timedInputView(m Model) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Enter Duration"))
	b.WriteString("\n\n")

	b.WriteString(theme.Unselected.Render("Enter duration in minutes or as 1h30m:"))
	b.WriteString("\n")
	input := m.Input
	if input == "" {
		input = " "
	}
	b.WriteString(theme.InputBox.Render(input))
	b.WriteString("\n")

	writeMessages(&b, m)
	b.WriteString("\n" + m.help.View(m.keys.ForState(stateTimedInput)))
	return b.String()
}

func runningView(m Model) string {
	var b strings.Builder
	st := m.deps.Keeper.Status()
	s := m.deps.Keeper.Settings()

	if st.Mode == keepalive.ModeZen {
		b.WriteString(theme.Title.Render("Zen Mode Active"))
		b.WriteString("\n\n")
		if m.ZenKnown && m.ZenState == zen.Jiggling {
			b.WriteString(theme.Active.Render("You are away, jiggling the pointer"))
		} else {
			b.WriteString(theme.Inactive.Render(
				fmt.Sprintf("Waiting for %s of inactivity", time.Duration(s.ZenModeIdleTimeSeconds)*time.Second)))
		}
	} else {
		b.WriteString(theme.Title.Render("Jiggling"))
		b.WriteString("\n\n")
		b.WriteString(theme.Active.Render(
			fmt.Sprintf("Moving the pointer every %d-%ds", s.MinIntervalSeconds, s.MaxIntervalSeconds)))
	}
	b.WriteString("\n")

	if m.Duration > 0 {
		remaining := m.TimeRemaining()
		b.WriteString(theme.Countdown.Render(formatRemaining(remaining)))
		b.WriteString("\n")
		b.WriteString(theme.BarPadding.Render(progressBar(remaining, m.Duration)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Inactive.Render(fmt.Sprintf("Cycles today: %d", m.CyclesToday)))
	b.WriteString("\n")

	if m.Failing || st.Health == jiggle.SimulationHealthFailed {
		b.WriteString("\n" + theme.Warning.Render(
			fmt.Sprintf("Pointer movement is failing via %s. Check input permissions.", st.Injector)))
		b.WriteString("\n")
	}

	writeMessages(&b, m)
	b.WriteString("\n" + m.help.View(m.keys.ForState(stateRunning)))
	return b.String()
}

func settingsView(m Model) string {
	var b strings.Builder

	title := "Settings"
	if m.Draft.Dirty {
		title += " " + theme.Dirty.Render("(modified)")
	}
	b.WriteString(theme.Title.Render(title))
	b.WriteString("\n\n")

	for i, f := range settingFields {
		line := fmt.Sprintf("%-18s %s", f.label, theme.Value.Render(fieldValue(f, &m.Draft)))
		if i == m.Field {
			b.WriteString(theme.Selected.Render("> " + line))
		} else {
			b.WriteString(theme.Unselected.Render("  " + line))
		}
		b.WriteString("\n")
	}

	writeMessages(&b, m)
	b.WriteString("\n" + m.help.View(m.keys.ForState(stateSettings)))
	return b.String()
}

func fieldValue(f settingField, s *settings.Settings) string {
	if f.flag != nil {
		if *f.flag(s) {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf("%d %s", *f.num(s), f.unit)
}

func writeMessages(b *strings.Builder, m Model) {
	if m.Notice != "" {
		b.WriteString("\n" + theme.Notice.Render(m.Notice) + "\n")
	}
	if m.ErrorMessage != "" {
		b.WriteString("\n" + theme.Error.Render(m.ErrorMessage) + "\n")
	}
}

func describeSettings(s settings.Settings) string {
	if s.ZenModeEnabled {
		return fmt.Sprintf("Zen mode: jiggle after %ds idle, every %d-%ds",
			s.ZenModeIdleTimeSeconds, s.MinIntervalSeconds, s.MaxIntervalSeconds)
	}
	return fmt.Sprintf("Jiggle every %d-%ds by up to %dpx",
		s.MinIntervalSeconds, s.MaxIntervalSeconds, s.JiggleDistance)
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d remaining", h, mins, secs)
	}
	return fmt.Sprintf("%d:%02d remaining", mins, secs)
}

func progressBar(remaining, total time.Duration) string {
	progress := 1.0 - float64(remaining)/float64(total)
	filled := min(int(progress*progressWidth), progressWidth)

	var bar strings.Builder
	for i := 0; i < progressWidth; i++ {
		if i >= filled {
			bar.WriteString(theme.ProgressBar.Render(" "))
			continue
		}
		idx := i * (len(gradientColors) - 1) / (progressWidth - 1)
		cell := theme.ProgressBar.Background(lipgloss.Color(gradientColors[idx]))
		bar.WriteString(cell.Render(" "))
	}
	return bar.String()
}

func helpView() string {
	var usage strings.Builder
	config.Usage(&usage)

	help := "Mouse Jiggler Help\n\n" + usage.String() + `
Examples:
  jiggler                   # Start with interactive TUI
  jiggler -d 2h30m          # Jiggle for 2 hours and 30 minutes
  jiggler -c 17:00          # Jiggle until 5 PM
  jiggler --zen=false       # Jiggle continuously instead of only when idle
  jiggler --headless        # Start jiggling without the TUI

Navigation:
  ↑/k, ↓/j  : Navigate menu
  Enter      : Select option
  ?          : Show this help
  q/Esc      : Quit/Back

Press 'q' or 'Esc' to close help`

	return theme.Help.Render(help)
}
