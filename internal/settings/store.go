package settings

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	appDirName   = "mouse-jiggler"
	settingsFile = "settings.toml"
)

// DefaultPath returns the settings file under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, appDirName, settingsFile), nil
}

// Store loads and saves Settings at a fixed path.
type Store struct {
	path string
}

// NewStore returns a store for the given file.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. It never fails: a missing, unreadable,
// corrupt or invalid file yields Defaults. Fields absent from the file
// keep their default values.
func (s *Store) Load() Settings {
	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("settings: cannot open %s, using defaults: %v", s.path, err)
		}
		return Defaults()
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		log.Printf("settings: ignoring %s, using defaults: %v", s.path, err)
		return Defaults()
	}
	return cfg
}

// Decode reads settings from r over the defaults and validates them.
func Decode(r io.Reader) (Settings, error) {
	cfg := Defaults()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// Save writes cfg atomically. Failures are logged and otherwise ignored;
// a successful write clears cfg.Dirty.
func (s *Store) Save(cfg *Settings) {
	if err := s.write(*cfg); err != nil {
		log.Printf("settings: save to %s failed: %v", s.path, err)
		return
	}
	cfg.Dirty = false
}

func (s *Store) write(cfg Settings) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, settingsFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
