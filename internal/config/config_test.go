package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Backend != BackendFile {
		t.Fatalf("unexpected backend default: %+v", cfg)
	}
	if cfg.PollIntervalSeconds != 30 || cfg.SchedulerBuffer != 64 {
		t.Fatalf("unexpected scheduler defaults: %+v", cfg)
	}
	if !cfg.DesktopNotifications || !cfg.WatchSnapshot {
		t.Fatalf("unexpected feature defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PollIntervalSeconds != 30 {
		t.Fatalf("unexpected config from missing file: %+v", cfg)
	}
}

func TestLoadYAMLWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_AGENDA_HOME", "/srv/agenda")
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
data_dir: ${TEST_AGENDA_HOME}/data
backend: sqlite
poll_interval_seconds: 10
log_level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "/srv/agenda/data" {
		t.Errorf("DataDir = %q, env not expanded", cfg.DataDir)
	}
	if cfg.Backend != BackendSQLite || cfg.PollIntervalSeconds != 10 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.PollInterval() != 10*time.Second {
		t.Errorf("PollInterval() = %v", cfg.PollInterval())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AGENDAD_DATA_DIR", "/tmp/agenda")
	t.Setenv("AGENDAD_BACKEND", "sqlite")
	t.Setenv("AGENDAD_POLL_INTERVAL_SECONDS", "15")
	t.Setenv("AGENDAD_SCHEDULER_BUFFER", "128")
	t.Setenv("AGENDAD_DESKTOP_NOTIFICATIONS", "off")
	t.Setenv("AGENDAD_LOG_LEVEL", "WARN")

	cfg := FromEnv(Default())
	if cfg.DataDir != "/tmp/agenda" || cfg.Backend != "sqlite" {
		t.Fatalf("unexpected env overrides: %+v", cfg)
	}
	if cfg.PollIntervalSeconds != 15 || cfg.SchedulerBuffer != 128 {
		t.Fatalf("unexpected scheduler overrides: %+v", cfg)
	}
	if cfg.DesktopNotifications {
		t.Fatal("expected desktop notifications off from env")
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want lowercased", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: redis\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted an unknown backend")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: [file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted malformed yaml")
	}
}
