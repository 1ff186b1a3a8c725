package update

import (
	"github.com/charmbracelet/bubbles/key"

	"agendad/internal/views"
)

type helpKeyMap struct {
	bindings []key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding {
	return k.bindings
}

func (k helpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.bindings}
}

func globalBindings() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "calendar")),
		key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "list")),
		key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "gantt")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new activity")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command palette")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "snooze alarm")),
		key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "dismiss alarms")),
		key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "toggle theme")),
		key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func viewBindings(v View) []string {
	switch v {
	case ViewCalendar:
		return []string{
			"h/l prev/next day",
			"H/L prev/next month",
			"t today",
			"j/k agenda cursor",
			"e edit",
			"x delete",
		}
	case ViewList:
		return []string{
			"j/k move cursor",
			"e edit",
			"x delete",
			"c duplicate",
			"p cycle sort",
			"f cycle type filter",
		}
	case ViewGantt:
		return []string{
			"h/l shift week",
			"+/- zoom",
			"j/k move cursor",
			"e edit",
			"x delete",
		}
	default:
		return []string{
			"/dedup find duplicates",
			"/alarms on|off|minutes",
			"/export <path>",
			"/import <path> [strategy]",
		}
	}
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return "\n" + m.renderHelpView()
}

func (m Model) renderHelpView() string {
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    viewBindings(m.CurrentView),
		HelpView:    m.helpModel.View(helpKeyMap{bindings: globalBindings()}),
	})
}
