package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/escape-room-game/game/engine"
)

// Storage backends for sessions
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Settings are server defaults read from settings.yaml. Command line flags
// and environment variables override them.
type Settings struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	ConfigDir          string `yaml:"config_dir"`
	Storage            string `yaml:"storage"`
	SessionsDir        string `yaml:"sessions_dir"`
	SQLitePath         string `yaml:"sqlite_path"`
	HintLockoutSeconds int    `yaml:"hint_lockout_seconds"` // 0 keeps the engine's per-difficulty lockout
	SessionTTLHours    int    `yaml:"session_ttl_hours"`
	WatchConfigs       bool   `yaml:"watch_configs"`
	Debug              bool   `yaml:"debug"`
	NgrokDomain        string `yaml:"ngrok_domain"`
}

// DefaultSettings returns the built-in defaults
func DefaultSettings() Settings {
	return Settings{
		Host:               "localhost",
		Port:               8080,
		ConfigDir:          "configs",
		Storage:            StorageFile,
		SessionsDir:        "sessions",
		SQLitePath:         "sessions.db",
		SessionTTLHours:    24,
		WatchConfigs:       true,
	}
}

// LoadSettings reads path over the defaults. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, s.Validate()
}

// Validate checks value ranges
func (s Settings) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, s.Port)
	}
	switch s.Storage {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("%w: unknown storage %q (want %s or %s)", ErrInvalidConfig, s.Storage, StorageFile, StorageSQLite)
	}
	if s.HintLockoutSeconds < 0 {
		return fmt.Errorf("%w: hint_lockout_seconds cannot be negative", ErrInvalidConfig)
	}
	if s.SessionTTLHours <= 0 {
		return fmt.Errorf("%w: session_ttl_hours must be positive", ErrInvalidConfig)
	}
	return nil
}

// Lockout is the puzzle lockout as a duration. Zero means the engine
// defaults apply.
func (s Settings) Lockout() time.Duration {
	return time.Duration(s.HintLockoutSeconds) * time.Second
}

// EngineOptions turns the settings into options for every game engine
func (s Settings) EngineOptions() []engine.Option {
	if s.HintLockoutSeconds > 0 {
		return []engine.Option{engine.WithLockout(s.Lockout())}
	}
	return nil
}

// SessionTTL is how long an idle session is kept
func (s Settings) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLHours) * time.Hour
}
