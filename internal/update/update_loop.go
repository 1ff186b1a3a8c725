package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"agendad/internal/alarm"
	"agendad/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Runner != nil {
		return waitForAlarmCmd(m.Runner.C())
	}
	return nil
}

// waitForAlarmCmd blocks on the runner's output channel and feeds fired
// alarms back into the message loop.
func waitForAlarmCmd(ch <-chan alarm.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmFiredMsg{Event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}
		if m.Editor.Active {
			return m.handleEditorKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Dashboard:
			m.CurrentView = ViewDashboard
			return m, nil
		case m.Keys.Calendar:
			m.CurrentView = ViewCalendar
			m.refreshAll()
			return m, nil
		case m.Keys.List:
			m.CurrentView = ViewList
			m.refreshAll()
			return m, nil
		case m.Keys.Gantt:
			m.CurrentView = ViewGantt
			m.refreshAll()
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "n":
			return m.openEditor(""), nil
		case "T":
			m.Theme = m.Theme.Toggle()
			m.Status = StatusBar{Text: "theme: " + string(m.Theme)}
			return m, nil
		case "s":
			return m.snoozeNewestBanner(), nil
		case "z":
			if len(m.Banners) > 0 {
				m.Banners = nil
				m.Status = StatusBar{Text: "alarms dismissed"}
			}
			return m, nil
		case "y":
			if m.pendingImport != nil {
				return m.confirmPendingImport(), nil
			}
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewList:
			return m.handleListKey(typed), nil
		case ViewCalendar:
			return m.handleCalendarKey(typed), nil
		case ViewGantt:
			return m.handleGanttKey(typed), nil
		}
		return m, nil

	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
			m.refreshAll()
		}
		return m, nil
	case RefreshMsg:
		m.refreshAll()
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case AlarmFiredMsg:
		m.Banners = append(m.Banners, Banner{
			ActivityID: typed.Event.Activity.ID,
			Title:      typed.Event.Activity.Title,
			Body:       typed.Event.Activity.Date,
			At:         typed.Event.At,
		})
		if len(m.Banners) > 5 {
			m.Banners = m.Banners[len(m.Banners)-5:]
		}
		m.Status = StatusBar{Text: fmt.Sprintf("alarm: %s", typed.Event.Activity.Title)}
		m.refreshAll()
		if m.Runner != nil {
			return m, waitForAlarmCmd(m.Runner.C())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) snoozeNewestBanner() Model {
	if len(m.Banners) == 0 {
		m.Status = StatusBar{Text: "no alarm to snooze"}
		return m
	}
	latest := m.Banners[len(m.Banners)-1]
	if err := m.snoozeActivity(latest.ActivityID); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Banners = m.Banners[:len(m.Banners)-1]
	m.Status = StatusBar{Text: fmt.Sprintf("snoozed %q for 5 minutes", latest.Title)}
	m.refreshAll()
	return m
}

func (m Model) snoozeActivity(id string) error {
	var err error
	if m.Checker != nil {
		err = m.Checker.Snooze(id)
	} else {
		err = m.Store.SnoozeAlarm(id)
	}
	if err != nil {
		return err
	}
	if m.Runner != nil {
		m.Runner.Wake()
	}
	return nil
}

func (m Model) View() string {
	status := m.Status.Text
	if m.Status.IsError && status != "" {
		status = "error: " + status
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewDashboard:
		leftPane = m.renderDashboardView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewCalendar:
		leftPane = m.renderMonthView()
		rightPane = m.renderAgendaView() + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewList:
		leftPane = m.renderListView()
		rightPane = m.renderDetailView() + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewGantt:
		leftPane = m.renderGanttView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	}
	if m.Editor.Active {
		rightPane = m.renderEditorView()
	}

	banner := ""
	if len(m.Banners) > 0 {
		items := make([]views.BannerItemData, len(m.Banners))
		for i, b := range m.Banners {
			items[i] = views.BannerItemData{Title: b.Title, Body: b.Body}
		}
		banner = views.RenderAlarmBanner(items)
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("agendad | view: %s | selected: %s", m.CurrentView, m.SelectedID),
		LeftPane:   leftPane,
		RightPane:  rightPane,
		StatusLine: status,
		Banner:     banner,
		Theme:      m.Theme,
		Footer: fmt.Sprintf("keys: %s dash | %s cal | %s list | %s gantt | n new | / cmd | %s help | %s quit",
			m.Keys.Dashboard, m.Keys.Calendar, m.Keys.List, m.Keys.Gantt, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}
