package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/stigoleg/mouse-jiggler/internal/config"
	"github.com/stigoleg/mouse-jiggler/internal/history"
	"github.com/stigoleg/mouse-jiggler/internal/keepalive"
	"github.com/stigoleg/mouse-jiggler/internal/monitor"
	"github.com/stigoleg/mouse-jiggler/internal/platform"
	"github.com/stigoleg/mouse-jiggler/internal/settings"
	"github.com/stigoleg/mouse-jiggler/internal/ui"
)

const appVersion = "1.0.0"

// historyRetention is how long cycle history is kept.
const historyRetention = 30 * 24 * time.Hour

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseFlags()
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stdout)
		return 0
	}
	if err != nil {
		return fatal(err)
	}
	if cfg.ShowVersion {
		fmt.Printf("Mouse Jiggler Version: %s\n", appVersion)
		return 0
	}

	settingsPath := cfg.SettingsPath
	if settingsPath == "" {
		if settingsPath, err = settings.DefaultPath(); err != nil {
			return fatal(err)
		}
	}
	store := settings.NewStore(settingsPath)
	s := store.Load()
	cfg.Apply(&s)
	if err := s.Validate(); err != nil {
		return fatal(fmt.Errorf("invalid settings: %w", err))
	}

	headless := s.StartMinimized
	if !headless && !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		log.Printf("jiggler: stdout is not a terminal, running headless")
		headless = true
	}
	if !headless {
		f, err := tea.LogToFile(logPath(), "jiggler")
		if err != nil {
			return fatal(err)
		}
		defer f.Close()
	}
	log.Printf("jiggler: settings from %s", store.Path())

	cleanup := keepalive.NewCleanupManager(5 * time.Second)
	defer func() {
		if err := cleanup.Execute(); err != nil {
			log.Printf("jiggler: cleanup: %v", err)
		}
	}()

	inj, err := platform.NewInjector()
	if err != nil {
		if headless {
			return fatal(err)
		}
		// The TUI still starts and reports failing cycles.
		log.Printf("jiggler: %v", err)
		inj = platform.Unavailable(err)
	}
	cleanup.Register("injector", inj.Close)
	log.Printf("jiggler: injecting input via %s", inj.Name())

	mon := monitor.New()
	if c, ok := mon.(io.Closer); ok {
		cleanup.Register("monitor", c.Close)
	}

	var opts []keepalive.Option
	var hist *history.Store
	if !cfg.NoHistory {
		hist = openHistory()
	}
	if hist != nil {
		cleanup.Register("history", hist.Close)
		opts = append(opts, keepalive.WithSessions(hist))
	}

	keeper := keepalive.New(s, inj, mon, opts...)
	cleanup.Register("keeper", func() error {
		keeper.Stop()
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	if headless {
		return runHeadless(ctx, keeper, cfg.Duration)
	}

	deps := ui.Deps{Keeper: keeper, Settings: store}
	if hist != nil {
		deps.History = hist
	}
	return runTUI(ctx, deps, cfg.Duration)
}

func runTUI(ctx context.Context, deps ui.Deps, d time.Duration) int {
	model := ui.InitialModel(deps)
	if d > 0 {
		model = ui.InitialModelRunning(deps, d)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithoutSignalHandler())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			log.Printf("jiggler: received shutdown signal")
			deps.Keeper.Stop()
			p.Kill()
		case <-done:
		}
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Printf("jiggler: error running program: %v", err)
		return 1
	}
	return 0
}

func runHeadless(ctx context.Context, keeper *keepalive.Keeper, d time.Duration) int {
	var err error
	if d > 0 {
		err = keeper.StartTimed(d)
	} else {
		err = keeper.Start()
	}
	if err != nil {
		return fatal(err)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("jiggler: received shutdown signal")
			return 0
		case ev := <-keeper.EngineEvents():
			if ev.Err != nil {
				log.Printf("jiggler: %s: %v", ev.Kind, ev.Err)
			}
		case st := <-keeper.ZenStates():
			log.Printf("jiggler: zen %s", st)
		case <-ticker.C:
			if !keeper.IsRunning() {
				log.Printf("jiggler: timed session finished")
				return 0
			}
		}
	}
}

func openHistory() *history.Store {
	path, err := history.DefaultPath()
	if err != nil {
		log.Printf("jiggler: history disabled: %v", err)
		return nil
	}
	h, err := history.Open(path)
	if err != nil {
		log.Printf("jiggler: history disabled: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if n, err := h.Prune(ctx, time.Now().Add(-historyRetention)); err != nil {
		log.Printf("jiggler: %v", err)
	} else if n > 0 {
		log.Printf("jiggler: pruned %d old cycles", n)
	}
	return h
}

func logPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "debug.log"
	}
	dir = filepath.Join(dir, "mouse-jiggler")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "debug.log"
	}
	return filepath.Join(dir, "debug.log")
}

func fatal(err error) int {
	fmt.Fprintln(os.Stderr, ui.FormatError(err))
	return 1
}
