package update

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"agendad/internal/commands"
	"agendad/internal/model"
	"agendad/internal/store"
	"agendad/internal/syncfile"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.Type {
	case tea.KeyEsc:
		m.Palette = CommandPaletteState{}
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command cancelled"}
		return m
	case tea.KeyEnter:
		input := m.commandInput.Value()
		m.Palette = CommandPaletteState{}
		m.commandInput.Blur()
		m.commandInput.SetValue("")
		return m.executePaletteCommand(input)
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	_ = cmd
	m.Palette.Input = m.commandInput.Value()
	return m
}

// executePaletteCommand parses and runs one palette command. Handlers close
// over next so view state and store mutations land on the returned model.
func (m Model) executePaletteCommand(input string) Model {
	next := m

	cmd, err := commands.Parse(input)
	if err != nil {
		next.Status = StatusBar{Text: err.Error(), IsError: true}
		return next
	}

	handlers := commands.Handlers{
		Add:    next.addHandler(&next),
		Goto:   next.gotoHandler(&next),
		Filter: next.filterHandler(&next),
		Dedup:  next.dedupHandler(),
		Export: next.exportHandler(),
		Import: next.importHandler(&next),
		Snooze: next.snoozeHandler(),
		Alarms: next.alarmsHandler(),
	}

	result, err := commands.Execute(cmd, handlers)
	if err != nil {
		next.Status = StatusBar{Text: err.Error(), IsError: true}
		return next
	}
	next.Status = StatusBar{Text: result.Message}
	next.refreshAll()
	return next
}

func (m Model) addHandler(next *Model) func(commands.AddArgs) (commands.Result, error) {
	return func(args commands.AddArgs) (commands.Result, error) {
		date := args.Date
		if date == "" {
			date = model.DayString(m.now())
		}
		created, err := m.Store.Create(model.Activity{
			Title:        args.Title,
			Type:         args.Type,
			Date:         date,
			Time:         args.Time,
			Priority:     args.Priority,
			Color:        "#4CAF50",
			AlarmMinutes: m.Store.Settings().DefaultAlarmMinutes,
		})
		if err != nil {
			return commands.Result{}, err
		}
		if m.Runner != nil {
			m.Runner.Wake()
		}
		next.SelectedID = created.ID
		return commands.Result{Message: fmt.Sprintf("added %q on %s", created.Title, created.Date)}, nil
	}
}

func (m Model) gotoHandler(next *Model) func(commands.GotoArgs) (commands.Result, error) {
	return func(args commands.GotoArgs) (commands.Result, error) {
		switch args.View {
		case "dashboard":
			next.CurrentView = ViewDashboard
		case "calendar":
			next.CurrentView = ViewCalendar
		case "list":
			next.CurrentView = ViewList
		case "gantt":
			next.CurrentView = ViewGantt
		}
		if args.Date != "" {
			day, err := time.ParseInLocation(model.DateLayout, args.Date, m.now().Location())
			if err != nil {
				return commands.Result{}, err
			}
			next.Calendar.FocusDate = day
			next.Calendar.Cursor = 0
			return commands.Result{Message: fmt.Sprintf("calendar focused on %s", args.Date)}, nil
		}
		return commands.Result{Message: fmt.Sprintf("switched to %s", args.View)}, nil
	}
}

func (m Model) filterHandler(next *Model) func(commands.FilterArgs) (commands.Result, error) {
	return func(args commands.FilterArgs) (commands.Result, error) {
		next.List.Query.Type = args.Type
		next.List.Query.Search = args.Search
		next.List.Cursor = 0
		next.CurrentView = ViewList
		if args.Type == "" && args.Search == "" {
			return commands.Result{Message: "filter cleared"}, nil
		}
		return commands.Result{Message: fmt.Sprintf("filter set: %s", filterLine(next.List.Query))}, nil
	}
}

func (m Model) dedupHandler() func(commands.DedupArgs) (commands.Result, error) {
	return func(args commands.DedupArgs) (commands.Result, error) {
		if !args.Apply {
			n := m.Store.CountDuplicates()
			if n == 0 {
				return commands.Result{Message: "no duplicates found"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("%d duplicates found, run 'dedup apply' to remove", n)}, nil
		}
		removed, err := m.Store.RemoveDuplicates()
		if err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: fmt.Sprintf("removed %d duplicates", removed)}, nil
	}
}

func (m Model) exportHandler() func(commands.ExportArgs) (commands.Result, error) {
	return func(args commands.ExportArgs) (commands.Result, error) {
		f := syncfile.Export(m.Store.Activities(), store.SnapshotVersion, m.now())
		if err := syncfile.WriteFile(args.Path, f); err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: fmt.Sprintf("exported %d activities to %s", f.TotalActivities, args.Path)}, nil
	}
}

func (m Model) importHandler(next *Model) func(commands.ImportArgs) (commands.Result, error) {
	return func(args commands.ImportArgs) (commands.Result, error) {
		f, err := syncfile.ReadFile(args.Path)
		switch {
		case errors.Is(err, syncfile.ErrForeignFile):
			pending := args
			next.pendingImport = &pending
			return commands.Result{Message: fmt.Sprintf("%s was not written by this app, press y to import anyway", args.Path)}, nil
		case errors.Is(err, syncfile.ErrNoActivities):
			return commands.Result{}, err
		case err != nil:
			// Not a sync file shape; try a plain activity list.
			acts, quarantined, looseErr := readLoose(args.Path, m.Store.Settings().DefaultAlarmMinutes)
			if looseErr != nil {
				return commands.Result{}, err
			}
			res, mergeErr := m.Store.MergeImport(acts, args.Strategy)
			if mergeErr != nil {
				return commands.Result{}, mergeErr
			}
			if m.Runner != nil {
				m.Runner.Wake()
			}
			msg := mergeMessage(args.Strategy, res)
			if len(quarantined) > 0 {
				msg += fmt.Sprintf(", %d invalid records dropped", len(quarantined))
			}
			return commands.Result{Message: msg}, nil
		}
		res, err := m.Store.MergeImport(f.Activities, args.Strategy)
		if err != nil {
			return commands.Result{}, err
		}
		if m.Runner != nil {
			m.Runner.Wake()
		}
		return commands.Result{Message: mergeMessage(args.Strategy, res)}, nil
	}
}

func readLoose(path string, defaultAlarm int) ([]model.Activity, []syncfile.Quarantined, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return syncfile.DecodeLoose(data, defaultAlarm)
}

func (m Model) snoozeHandler() func(commands.SnoozeArgs) (commands.Result, error) {
	return func(args commands.SnoozeArgs) (commands.Result, error) {
		if err := m.snoozeActivity(args.ID); err != nil {
			return commands.Result{}, err
		}
		return commands.Result{Message: fmt.Sprintf("snoozed %s for 5 minutes", args.ID)}, nil
	}
}

func (m Model) alarmsHandler() func(commands.AlarmsArgs) (commands.Result, error) {
	return func(args commands.AlarmsArgs) (commands.Result, error) {
		settings := m.Store.Settings()
		msg := ""
		switch {
		case args.Enable != nil:
			settings.GlobalAlarmsEnabled = *args.Enable
			msg = "alarms disabled"
			if *args.Enable {
				msg = "alarms enabled"
			}
		case args.DefaultMinutes != nil:
			settings.DefaultAlarmMinutes = *args.DefaultMinutes
			msg = fmt.Sprintf("default alarm lead set to %d minutes", *args.DefaultMinutes)
		}
		if err := m.Store.SaveSettings(settings); err != nil {
			return commands.Result{}, err
		}
		if m.Runner != nil {
			m.Runner.Wake()
		}
		return commands.Result{Message: msg}, nil
	}
}

// confirmPendingImport runs an import that Decode flagged as foreign. The
// payload is trusted once the user confirms.
func (m Model) confirmPendingImport() Model {
	args := *m.pendingImport
	m.pendingImport = nil

	f, err := syncfile.ReadFile(args.Path)
	if err != nil && !errors.Is(err, syncfile.ErrForeignFile) {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	res, err := m.Store.MergeImport(f.Activities, args.Strategy)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	if m.Runner != nil {
		m.Runner.Wake()
	}
	m.Status = StatusBar{Text: mergeMessage(args.Strategy, res)}
	m.refreshAll()
	return m
}

func mergeMessage(strategy store.MergeStrategy, res store.MergeResult) string {
	return fmt.Sprintf("import (%s): %d added, %d skipped, %d total", strategy, res.Added, res.Skipped, res.Total)
}
