package ui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stigoleg/mouse-jiggler/internal/history"
	"github.com/stigoleg/mouse-jiggler/internal/jiggle"
	"github.com/stigoleg/mouse-jiggler/internal/keepalive"
	"github.com/stigoleg/mouse-jiggler/internal/settings"
	"github.com/stigoleg/mouse-jiggler/internal/zen"
)

// SettingsSaver persists edited settings.
type SettingsSaver interface {
	Save(s *settings.Settings)
}

// StatsSource reports recorded jiggle activity.
type StatsSource interface {
	Stats(ctx context.Context, since time.Time) (history.Stats, error)
}

// Deps are the collaborators the TUI drives.
type Deps struct {
	Keeper   *keepalive.Keeper
	Settings SettingsSaver
	// History is optional.
	History StatsSource
}

// Model holds the current state of the UI.
type Model struct {
	State        state
	Selected     int
	Input        string
	ErrorMessage string
	Notice       string
	ShowHelp     bool

	// Duration is the length of the current timed session, zero otherwise.
	Duration time.Duration

	// Draft is the settings being edited and Field the selected row.
	Draft settings.Settings
	Field int

	ZenState    zen.State
	ZenKnown    bool
	CyclesToday int
	Failing     bool

	deps Deps
	keys KeyMap
	help help.Model
	now  func() time.Time
}

// InitialModel returns the menu model.
func InitialModel(deps Deps) Model {
	return Model{
		State: stateMenu,
		deps:  deps,
		keys:  DefaultKeys(),
		help:  newHelp(),
		now:   time.Now,
	}
}

// InitialModelRunning returns a model that has already started the keeper,
// for d when positive and indefinitely otherwise. A start failure leaves
// the model on the menu with the error shown.
func InitialModelRunning(deps Deps, d time.Duration) Model {
	m := InitialModel(deps)
	var err error
	if d > 0 {
		err = deps.Keeper.StartTimed(d)
	} else {
		err = deps.Keeper.Start()
	}
	if err != nil {
		m.ErrorMessage = err.Error()
		return m
	}
	m.State = stateRunning
	m.Duration = d
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitZen(m.deps.Keeper.ZenStates()),
		waitEngine(m.deps.Keeper.EngineEvents()),
		m.loadStats(),
	}
	if m.State == stateRunning {
		cmds = append(cmds, tick())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := Update(msg, m)
	return newModel, cmd
}

// View implements tea.Model
func (m Model) View() string {
	return View(m)
}

// TimeRemaining returns the remaining duration for a timed session.
func (m Model) TimeRemaining() time.Duration {
	if m.State != stateRunning {
		return 0
	}
	return m.deps.Keeper.TimeRemaining()
}

type (
	// tickMsg is sent when the countdown timer ticks
	tickMsg time.Time
	// zenStateMsg carries a zen coordinator transition.
	zenStateMsg zen.State
	// engineEventMsg carries a jiggle engine notification.
	engineEventMsg jiggle.Event
	// statsMsg carries today's recorded activity.
	statsMsg history.Stats
)

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitZen(ch <-chan zen.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return zenStateMsg(s)
	}
}

func waitEngine(ch <-chan jiggle.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return engineEventMsg(ev)
	}
}

func (m Model) loadStats() tea.Cmd {
	src := m.deps.History
	if src == nil {
		return nil
	}
	now := m.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		st, err := src.Stats(ctx, midnight)
		if err != nil {
			log.Printf("ui: %v", err)
			return nil
		}
		return statsMsg(st)
	}
}
