package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"agendad/internal/alarm"
	"agendad/internal/app"
	"agendad/internal/config"
	"agendad/internal/report"
	"agendad/internal/store"
	"agendad/internal/syncfile"
)

var version = "1.0.0"

func loadConfig(cmd *cli.Command) (config.Config, error) {
	return config.Load(cmd.String("config"))
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return app.Run(ctx, cfg, version)
}

// headlessStore opens the store for one-shot subcommands, logging to stderr
// instead of the TUI log file.
func headlessStore(cmd *cli.Command) (*store.Store, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, blob, err := app.OpenStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, blob.Close, nil
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("export requires a file path")
	}
	s, closeStore, err := headlessStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	f := syncfile.Export(s.Activities(), store.SnapshotVersion, time.Now())
	if err := syncfile.WriteFile(path, f); err != nil {
		return err
	}
	fmt.Printf("exported %d activities to %s\n", f.TotalActivities, path)
	return nil
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("import requires a file path")
	}
	strategy := store.MergeStrategy(cmd.String("strategy"))
	if !strategy.IsValid() {
		return fmt.Errorf("unknown strategy %q, want merge, replace or smart", strategy)
	}

	s, closeStore, err := headlessStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	f, err := syncfile.ReadFile(path)
	incoming := f.Activities
	switch {
	case errors.Is(err, syncfile.ErrForeignFile):
		if !cmd.Bool("force") {
			return fmt.Errorf("%s was not written by agendad, pass --force to import anyway", path)
		}
	case errors.Is(err, syncfile.ErrNoActivities):
		return err
	case err != nil:
		// Not a sync file shape; fall back to a plain activity list.
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return err
		}
		acts, quarantined, looseErr := syncfile.DecodeLoose(data, s.Settings().DefaultAlarmMinutes)
		if looseErr != nil {
			return err
		}
		for _, q := range quarantined {
			fmt.Fprintf(os.Stderr, "skipped invalid record %q: %s\n", q.Title, q.Reason)
		}
		incoming = acts
	}

	res, err := s.MergeImport(incoming, strategy)
	if err != nil {
		return err
	}
	fmt.Printf("import (%s): %d added, %d skipped, %d total\n", strategy, res.Added, res.Skipped, res.Total)
	return nil
}

func runDedup(ctx context.Context, cmd *cli.Command) error {
	s, closeStore, err := headlessStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if !cmd.Bool("apply") {
		for _, d := range s.FindDuplicates() {
			fmt.Printf("duplicate: %s (id %s, first seen as id %s)\n", d.Duplicate.Title, d.Duplicate.ID, d.Original.ID)
		}
		fmt.Printf("%d duplicates found, pass --apply to remove\n", s.CountDuplicates())
		return nil
	}
	removed, err := s.RemoveDuplicates()
	if err != nil {
		return err
	}
	fmt.Printf("removed %d duplicates\n", removed)
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, closeStore, err := headlessStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	fired := alarm.NewChecker(s, app.Notifier(cfg), logger).Check()
	for _, a := range fired {
		fmt.Printf("alarm fired: %s (%s %s)\n", a.Title, a.Date, a.Time)
	}
	if len(fired) == 0 {
		fmt.Println("no alarms due")
	}
	return nil
}

func runDraft(ctx context.Context, cmd *cli.Command) error {
	s, closeStore, err := headlessStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	selection := s.Upcoming(int(cmd.Int("limit")))
	if len(selection) == 0 {
		return errors.New("no upcoming activities to draft")
	}
	d := report.BuildEmailDraft(selection, time.Now())
	fmt.Printf("%s\n\n%s\n%s\n", d.Subject, d.Body, report.Mailto(d))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "agendad",
		Usage:   "Terminal scheduler for school activities with alarms, calendar, list and gantt views",
		Version: version,
		Action:  runTUI,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("AGENDAD_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "export",
				Usage:     "Write all activities to a sync file",
				ArgsUsage: "<path>",
				Action:    runExport,
			},
			{
				Name:      "import",
				Usage:     "Merge activities from a sync file",
				ArgsUsage: "<path>",
				Action:    runImport,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Merge strategy: merge, replace or smart",
						Value: string(store.StrategySmart),
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Import files not written by agendad",
					},
				},
			},
			{
				Name:   "dedup",
				Usage:  "List duplicate activities, or remove them with --apply",
				Action: runDedup,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "apply",
						Usage: "Remove duplicates instead of listing them",
					},
				},
			},
			{
				Name:   "check",
				Usage:  "Run one alarm sweep and deliver due notifications",
				Action: runCheck,
			},
			{
				Name:   "draft",
				Usage:  "Print an email draft of upcoming activities",
				Action: runDraft,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of activities, 0 for all",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "agendad: %v\n", err)
		os.Exit(1)
	}
}
