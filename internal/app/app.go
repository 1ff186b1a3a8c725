// Package app assembles the store, scheduler and TUI into a running program.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"agendad/internal/alarm"
	"agendad/internal/config"
	"agendad/internal/kv"
	"agendad/internal/notify"
	"agendad/internal/store"
	"agendad/internal/update"
)

// OpenBlob selects the persistence backend from configuration. The caller
// owns the returned store and must Close it.
func OpenBlob(cfg config.Config) (kv.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("app: create data dir: %w", err)
		}
		return kv.OpenSQLite(cfg.DataDir + "/agendad.db")
	default:
		return kv.NewFileStore(cfg.DataDir)
	}
}

// OpenStore opens the configured backend and loads the snapshot. Snapshot
// corruption is logged and survived with an empty collection.
func OpenStore(cfg config.Config, logger *slog.Logger) (*store.Store, kv.Store, error) {
	blob, err := OpenBlob(cfg)
	if err != nil {
		return nil, nil, err
	}
	s := store.New(blob)
	if err := s.Load(); err != nil {
		if !errors.Is(err, store.ErrDataCorruption) {
			blob.Close()
			return nil, nil, err
		}
		logger.Error("app: snapshot corrupted, starting empty", slog.Any("error", err))
	}
	return s, blob, nil
}

// NewLogger writes structured logs to the configured file. Logging to stderr
// would corrupt the TUI, so file logging is the only option.
func NewLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("app: open log file: %w", err)
	}
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, f.Close, nil
}

// Notifier builds the delivery chain: desktop notification when configured
// and available, terminal bell otherwise.
func Notifier(cfg config.Config) notify.Notifier {
	var chain notify.Chain
	if cfg.DesktopNotifications {
		chain = append(chain, notify.Desktop{})
	}
	chain = append(chain, notify.Bell{})
	return chain
}

// Run starts the full interactive application and blocks until the TUI
// exits or ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, version string) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("app: create data dir: %w", err)
	}

	logger, closeLog, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	s, blob, err := OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer blob.Close()

	checker := alarm.NewChecker(s, Notifier(cfg), logger)
	runner := alarm.NewRunner(checker, cfg.PollInterval(), cfg.SchedulerBuffer, logger)

	program := tea.NewProgram(
		update.NewModelWithRuntime(s, checker, runner, version),
		tea.WithAltScreen(),
	)
	s.OnChange(func() {
		go program.Send(update.RefreshMsg{})
	})

	if err := runner.Start(); err != nil {
		return err
	}
	logger.Info("app: started",
		slog.String("backend", cfg.Backend),
		slog.String("data_dir", cfg.DataDir),
		slog.Duration("poll_interval", cfg.PollInterval()),
	)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	g, _ := errgroup.WithContext(ctx)
	if fileBlob, ok := blob.(*kv.FileStore); ok && cfg.WatchSnapshot {
		snapshotPath := fileBlob.Path(store.SnapshotKey)
		g.Go(func() error {
			err := store.Watch(watchCtx, s, snapshotPath, logger, func() {
				runner.Wake()
				program.Send(update.RefreshMsg{})
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		_, runErr := program.Run()
		cancelWatch()
		runner.Stop()
		return runErr
	})

	err = g.Wait()
	logger.Info("app: stopped", slog.Uint64("dropped_alarms", runner.Dropped()))
	return err
}
