package ui

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the screens use.
type KeyMap struct {
	Quit       key.Binding
	ToggleHelp key.Binding
	Back       key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Timed input
	Submit    key.Binding
	Backspace key.Binding

	// Running
	Stop key.Binding

	// Settings editor
	Decrease key.Binding
	Increase key.Binding
	Toggle   key.Binding
	Save     key.Binding
	Reset    key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeys returns the default key bindings.
func DefaultKeys() KeyMap {
	return KeyMap{
		Quit:       bind("q", "quit", "q", "ctrl+c"),
		ToggleHelp: bind("?", "help", "?"),
		Back:       bind("esc", "back", "esc"),

		Up:     bind("↑/k", "up", "up", "k"),
		Down:   bind("↓/j", "down", "down", "j"),
		Select: bind("enter", "select", "enter", " "),

		Submit:    bind("enter", "start", "enter"),
		Backspace: bind("⌫", "delete", "backspace"),

		Stop: bind("s/enter", "stop", "s", "enter"),

		Decrease: bind("←/h", "decrease", "left", "h", "-"),
		Increase: bind("→/l", "increase", "right", "l", "+"),
		Toggle:   bind("space", "toggle", " ", "t"),
		Save:     bind("s/enter", "save", "s", "enter"),
		Reset:    bind("r", "defaults", "r"),
	}
}

func newHelp() help.Model {
	h := help.New()
	h.ShortSeparator = " • "
	return h
}

// screenKeys is the help.KeyMap for one screen.
type screenKeys [][]key.Binding

func (s screenKeys) ShortHelp() []key.Binding { return slices.Concat(s...) }

func (s screenKeys) FullHelp() [][]key.Binding { return s }

// ForState returns the bindings shown in the help line of a screen,
// grouped into help columns.
func (k KeyMap) ForState(s state) help.KeyMap {
	switch s {
	case stateMenu:
		return screenKeys{{k.Up, k.Down, k.Select}, {k.ToggleHelp, k.Quit}}
	case stateTimedInput:
		return screenKeys{{k.Submit, k.Backspace, k.Back}, {k.Quit}}
	case stateRunning:
		return screenKeys{{k.Stop, k.Quit}, {k.ToggleHelp}}
	case stateSettings:
		return screenKeys{{k.Up, k.Down}, {k.Decrease, k.Increase, k.Toggle}, {k.Save, k.Reset, k.Back}}
	default:
		return screenKeys{{k.ToggleHelp, k.Quit}}
	}
}
