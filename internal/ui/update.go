package ui

import (
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
	"github.com/stigoleg/mouse-jiggler/internal/settings"
	"github.com/stigoleg/mouse-jiggler/internal/util"
	"github.com/stigoleg/mouse-jiggler/internal/zen"
)

const (
	menuStart = iota
	menuTimed
	menuSettings
	menuQuit
)

var menuItems = []string{
	menuStart:    "Start jiggling",
	menuTimed:    "Jiggle for a duration",
	menuSettings: "Settings",
	menuQuit:     "Quit",
}

// maxInputLen limits the duration typed in the timed input screen.
const maxInputLen = 8

// Update handles messages and updates the model accordingly.
func Update(msg tea.Msg, m Model) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case zenStateMsg:
		m.ZenState, m.ZenKnown = zen.State(msg), true
		return m, waitZen(m.deps.Keeper.ZenStates())

	case engineEventMsg:
		return m.engineEvent(jiggle.Event(msg))

	case statsMsg:
		m.CyclesToday = msg.Cycles
		return m, nil

	case tickMsg:
		if m.State != stateRunning {
			return m, nil
		}
		if !m.deps.Keeper.IsRunning() {
			m.State = stateMenu
			m.Duration = 0
			m.ZenKnown = false
			m.Notice = "Timed session finished"
			return m, nil
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.key(msg)
	}
	return m, nil
}

func (m Model) engineEvent(ev jiggle.Event) (Model, tea.Cmd) {
	next := waitEngine(m.deps.Keeper.EngineEvents())
	switch ev.Kind {
	case jiggle.EventCycle:
		m.Failing = false
		if m.deps.History == nil {
			m.CyclesToday++
			return m, next
		}
		return m, tea.Batch(next, m.loadStats())
	case jiggle.EventCycleFailed:
		m.Failing = true
	}
	return m, next
}

func (m Model) key(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.State {
	case stateTimedInput:
		return m.timedInputKey(msg)
	case stateSettings:
		return m.settingsKey(msg)
	}

	if key.Matches(msg, m.keys.ToggleHelp) {
		m.ShowHelp = !m.ShowHelp
		return m, nil
	}
	if m.ShowHelp {
		if key.Matches(msg, m.keys.Back, m.keys.Quit) {
			m.ShowHelp = false
		}
		return m, nil
	}

	switch m.State {
	case stateMenu:
		return m.menuKey(msg)
	case stateRunning:
		return m.runningKey(msg)
	}
	return m, nil
}

func (m Model) menuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.Selected > 0 {
			m.Selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.Selected < len(menuItems)-1 {
			m.Selected++
		}
	case key.Matches(msg, m.keys.Select):
		return m.selectMenu()
	case key.Matches(msg, m.keys.Quit, m.keys.Back):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) selectMenu() (Model, tea.Cmd) {
	m.ErrorMessage = ""
	m.Notice = ""

	switch m.Selected {
	case menuStart:
		if err := m.deps.Keeper.Start(); err != nil {
			m.ErrorMessage = err.Error()
			return m, nil
		}
		m.State = stateRunning
		m.Duration = 0
		return m, tick()
	case menuTimed:
		m.State = stateTimedInput
		m.Input = ""
	case menuSettings:
		m.State = stateSettings
		m.Draft = m.deps.Keeper.Settings()
		m.Field = 0
	case menuQuit:
		m.deps.Keeper.Stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) runningKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Stop), key.Matches(msg, m.keys.Back):
		m.deps.Keeper.Stop()
		m.State = stateMenu
		m.Duration = 0
		m.ZenKnown = false
		m.ErrorMessage = ""
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) timedInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.Input == "" {
			m.ErrorMessage = "Please enter a duration"
			return m, nil
		}
		d, err := util.ParseDuration(m.Input)
		if err != nil {
			m.ErrorMessage = "Invalid duration"
			return m, nil
		}
		if d <= 0 {
			m.ErrorMessage = "Duration must be positive"
			return m, nil
		}
		if err := m.deps.Keeper.StartTimed(d); err != nil {
			m.ErrorMessage = err.Error()
			return m, nil
		}
		m.State = stateRunning
		m.Duration = d
		m.ErrorMessage = ""
		return m, tick()
	case key.Matches(msg, m.keys.Back):
		m.State = stateMenu
		m.ErrorMessage = ""
	case key.Matches(msg, m.keys.Backspace):
		if len(m.Input) > 0 {
			m.Input = m.Input[:len(m.Input)-1]
			m.ErrorMessage = ""
		}
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case msg.Type == tea.KeyRunes:
		for _, r := range msg.Runes {
			if len(m.Input) >= maxInputLen || !strings.ContainsRune("0123456789hms", r) {
				continue
			}
			m.Input += string(r)
			m.ErrorMessage = ""
		}
	}
	return m, nil
}

// settingField is one editable row of the settings screen.
type settingField struct {
	label string
	unit  string
	step  int
	min   int
	num   func(*settings.Settings) *int
	flag  func(*settings.Settings) *bool
}

var settingFields = []settingField{
	{label: "Minimum interval", unit: "s", step: 1, min: 1,
		num: func(s *settings.Settings) *int { return &s.MinIntervalSeconds }},
	{label: "Maximum interval", unit: "s", step: 1, min: 1,
		num: func(s *settings.Settings) *int { return &s.MaxIntervalSeconds }},
	{label: "Jiggle distance", unit: "px", step: 1, min: 0,
		num: func(s *settings.Settings) *int { return &s.JiggleDistance }},
	{label: "Zen mode",
		flag: func(s *settings.Settings) *bool { return &s.ZenModeEnabled }},
	{label: "Zen idle time", unit: "s", step: 5, min: 0,
		num: func(s *settings.Settings) *int { return &s.ZenModeIdleTimeSeconds }},
	{label: "Phantom keystroke",
		flag: func(s *settings.Settings) *bool { return &s.PhantomKeystrokeEnabled }},
	{label: "Start headless",
		flag: func(s *settings.Settings) *bool { return &s.StartMinimized }},
}

func (m Model) settingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := settingFields[m.Field]

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.Field > 0 {
			m.Field--
		}
	case key.Matches(msg, m.keys.Down):
		if m.Field < len(settingFields)-1 {
			m.Field++
		}
	case key.Matches(msg, m.keys.Decrease):
		m.adjust(f, -1)
	case key.Matches(msg, m.keys.Increase):
		m.adjust(f, 1)
	case key.Matches(msg, m.keys.Toggle):
		if f.flag != nil {
			m.adjust(f, 1)
		}
	case key.Matches(msg, m.keys.Reset):
		m.Draft = settings.Defaults()
		m.Draft.Dirty = true
		m.ErrorMessage = ""
	case key.Matches(msg, m.keys.Save):
		return m.saveSettings()
	case key.Matches(msg, m.keys.Back):
		if m.Draft.Dirty {
			m.Notice = "Changes discarded"
		}
		m.State = stateMenu
		m.ErrorMessage = ""
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

// adjust steps a numeric field by dir steps or flips a boolean field.
func (m *Model) adjust(f settingField, dir int) {
	if f.flag != nil {
		p := f.flag(&m.Draft)
		*p = !*p
	} else {
		p := f.num(&m.Draft)
		*p = max(*p+dir*f.step, f.min)
	}
	m.Draft.Dirty = true
	m.ErrorMessage = ""
}

func (m Model) saveSettings() (Model, tea.Cmd) {
	if err := m.Draft.Validate(); err != nil {
		m.ErrorMessage = err.Error()
		return m, nil
	}
	if err := m.deps.Keeper.ApplySettings(m.Draft); err != nil {
		m.ErrorMessage = err.Error()
		return m, nil
	}
	if m.deps.Settings != nil {
		m.deps.Settings.Save(&m.Draft)
	}
	log.Printf("ui: settings saved")

	m.Notice = "Settings saved"
	m.ErrorMessage = ""
	m.State = stateMenu
	return m, nil
}
