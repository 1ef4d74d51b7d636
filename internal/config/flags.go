// Package config parses command-line flags and layers them over the stored
// settings.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/stigoleg/mouse-jiggler/internal/settings"
	"github.com/stigoleg/mouse-jiggler/internal/util"
)

// Name is the program name used in usage output.
const Name = "jiggler"

// Config is the parsed command line.
type Config struct {
	// Duration is the timed session length from --duration or --clock, zero
	// for an indefinite session.
	Duration time.Duration
	// Clock is the wall-clock end time when --clock was given.
	Clock    time.Time

	Headless     bool
	SettingsPath string
	NoHistory    bool
	ShowVersion  bool

	values map[string]string
}

// FlagDoc describes one flag for usage output and generated docs.
type FlagDoc struct {
	Short string
	Long  string
	Arg   string
	Desc  string
}

type flagDef struct {
	FlagDoc
	boolean bool
}

var definitions = []flagDef{
	{FlagDoc{"", "--min", "<seconds>", "Minimum seconds between jiggles"}, false},
	{FlagDoc{"", "--max", "<seconds>", "Maximum seconds between jiggles"}, false},
	{FlagDoc{"", "--distance", "<pixels>", "Jiggle distance in pixels (0 keeps the pointer in place)"}, false},
	{FlagDoc{"", "--zen", "", "Only jiggle while the user is idle and no fullscreen window is focused"}, true},
	{FlagDoc{"", "--idle", "<seconds>", "Idle time before zen mode starts jiggling"}, false},
	{FlagDoc{"", "--phantom", "", "Pulse a neutral key (F15) after each jiggle"}, true},
	{FlagDoc{"-d", "--duration", "<string>", "Jiggle for a duration (e.g., \"2h30m\" or \"150\")"}, false},
	{FlagDoc{"-c", "--clock", "<string>", "Jiggle until a time of day (e.g., \"22:00\" or \"10:00PM\")"}, false},
	{FlagDoc{"", "--headless", "", "Start jiggling immediately without the terminal UI"}, true},
	{FlagDoc{"", "--config", "<path>", "Settings file (default: user config dir)"}, false},
	{FlagDoc{"", "--no-history", "", "Do not record jiggle history"}, true},
	{FlagDoc{"-v", "--version", "", "Show version information"}, true},
}

// Docs returns the supported flags, including help.
func Docs() []FlagDoc {
	docs := make([]FlagDoc, 0, len(definitions)+1)
	for _, d := range definitions {
		docs = append(docs, d.FlagDoc)
	}
	return append(docs, FlagDoc{Short: "-h", Long: "--help", Desc: "Show help message"})
}

// ParseFlags parses os.Args.
func ParseFlags() (*Config, error) {
	return ParseFlagsWithNow(os.Args[1:], time.Now())
}

// ParseFlagsWithNow parses args with a fixed notion of now, for --clock.
// flag.ErrHelp is returned when help was requested.
func ParseFlagsWithNow(args []string, now time.Time) (*Config, error) {
	flags := flag.NewFlagSet(Name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	values := make(map[string]*string, len(definitions))
	bools := make(map[string]*bool)
	for _, d := range definitions {
		long := d.Long[2:]
		if d.boolean {
			b := flags.Bool(long, false, d.Desc)
			if d.Short != "" {
				flags.BoolVar(b, d.Short[1:], false, d.Desc)
			}
			bools[long] = b
			continue
		}
		s := flags.String(long, "", d.Desc)
		if d.Short != "" {
			flags.StringVar(s, d.Short[1:], "", d.Desc)
		}
		values[long] = s
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}

	// Long and short spellings share storage, so record set flags under
	// their long name.
	set := make(map[string]string)
	flags.Visit(func(f *flag.Flag) {
		set[longName(f.Name)] = f.Value.String()
	})

	cfg := &Config{
		Headless:     *bools["headless"],
		NoHistory:    *bools["no-history"],
		ShowVersion:  *bools["version"],
		SettingsPath: *values["config"],
		values:       set,
	}

	_, hasDuration := set["duration"]
	_, hasClock := set["clock"]
	switch {
	case hasDuration && hasClock:
		return nil, errors.New("use either --duration or --clock, not both")
	case hasDuration:
		d, err := util.ParseDuration(*values["duration"])
		if err != nil {
			return nil, err
		}
		cfg.Duration = d
	case hasClock:
		d, err := util.UntilClock(*values["clock"], now)
		if err != nil {
			return nil, err
		}
		cfg.Duration = d
		cfg.Clock = now.Add(d)
	}

	// Validate numeric overrides up front so errors surface before the UI.
	for _, name := range []string{"min", "max", "distance", "idle"} {
		if v, ok := set[name]; ok {
			if _, err := strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("invalid value %q for --%s: must be a whole number", v, name)
			}
		}
	}
	return cfg, nil
}

func longName(name string) string {
	for _, d := range definitions {
		if d.Short != "" && d.Short[1:] == name {
			return d.Long[2:]
		}
	}
	return name
}

// Apply overrides s with every setting flag given on the command line.
// Flags that were not given leave s untouched.
func (c *Config) Apply(s *settings.Settings) {
	setInt := func(name string, dst *int) {
		if v, ok := c.values[name]; ok {
			*dst, _ = strconv.Atoi(v)
		}
	}
	setBool := func(name string, dst *bool) {
		if v, ok := c.values[name]; ok {
			*dst = v == "true"
		}
	}

	setInt("min", &s.MinIntervalSeconds)
	setInt("max", &s.MaxIntervalSeconds)
	setInt("distance", &s.JiggleDistance)
	setInt("idle", &s.ZenModeIdleTimeSeconds)
	setBool("zen", &s.ZenModeEnabled)
	setBool("phantom", &s.PhantomKeystrokeEnabled)
	setBool("headless", &s.StartMinimized)
}

// Usage writes a plain flag summary to w.
func Usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [flags]\n\nFlags:\n", Name)
	for _, d := range Docs() {
		names := d.Long
		if d.Short != "" {
			names = d.Short + ", " + d.Long
		}
		if d.Arg != "" {
			names += " " + d.Arg
		}
		fmt.Fprintf(w, "  %-28s %s\n", names, d.Desc)
	}
}
