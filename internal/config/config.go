// Package config loads runtime configuration from an optional YAML file and
// AGENDAD_* environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	// DataDir holds the snapshot and settings blobs (or the sqlite file).
	DataDir string `yaml:"data_dir"`
	// Backend selects the blob store: "file" or "sqlite".
	Backend string `yaml:"backend"`

	PollIntervalSeconds  int  `yaml:"poll_interval_seconds"`
	SchedulerBuffer      int  `yaml:"scheduler_buffer"`
	DesktopNotifications bool `yaml:"desktop_notifications"`
	WatchSnapshot        bool `yaml:"watch_snapshot"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".agendad")
	return Config{
		DataDir:              dataDir,
		Backend:              BackendFile,
		PollIntervalSeconds:  30,
		SchedulerBuffer:      64,
		DesktopNotifications: true,
		WatchSnapshot:        true,
		LogFile:              filepath.Join(dataDir, "agendad.log"),
		LogLevel:             "info",
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.Backend, validation.Required, validation.In(BackendFile, BackendSQLite)),
		validation.Field(&c.PollIntervalSeconds, validation.Min(1)),
		validation.Field(&c.SchedulerBuffer, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// PollInterval returns the scheduler cadence as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Load reads path on top of the defaults. A missing file is not an error;
// environment variables inside the file expand before parsing, and AGENDAD_*
// variables override the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			expanded := os.ExpandEnv(string(raw))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// FromEnv applies AGENDAD_* overrides on top of base.
func FromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("AGENDAD_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("AGENDAD_BACKEND")); v != "" {
		cfg.Backend = v
	}
	if v, ok := getEnvInt("AGENDAD_POLL_INTERVAL_SECONDS"); ok && v > 0 {
		cfg.PollIntervalSeconds = v
	}
	if v, ok := getEnvInt("AGENDAD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("AGENDAD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvBool("AGENDAD_WATCH_SNAPSHOT"); ok {
		cfg.WatchSnapshot = v
	}
	if v := strings.TrimSpace(os.Getenv("AGENDAD_LOG_FILE")); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv("AGENDAD_LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
