package update

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"agendad/internal/model"
	"agendad/internal/store"
	"agendad/internal/views"
)

func (m Model) handleListKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.List.Cursor > 0 {
			m.List.Cursor--
		}
	case "down", "j":
		if m.List.Cursor < len(m.List.Rows)-1 {
			m.List.Cursor++
		}
	case "e":
		if a, ok := m.currentListRow(); ok {
			return m.openEditor(a.ID)
		}
	case "x":
		return m.deleteSelected()
	case "c":
		return m.duplicateSelected()
	case "p":
		m.List.Query.Sort = nextSort(m.List.Query.Sort)
		m.Status = StatusBar{Text: fmt.Sprintf("sort: %s", sortName(m.List.Query.Sort))}
		m.refreshAll()
	case "f":
		m.List.Query.Type = nextTypeFilter(m.List.Query.Type)
		m.List.Cursor = 0
		m.Status = StatusBar{Text: "filter: " + filterName(m.List.Query.Type)}
		m.refreshAll()
	}
	m.syncSelection()
	return m
}

func (m Model) deleteSelected() Model {
	a, ok := m.selected()
	if !ok {
		m.Status = StatusBar{Text: "nothing selected"}
		return m
	}
	if err := m.Store.Delete(a.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.Status = StatusBar{Text: "already gone", IsError: false}
		} else {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("deleted %q", a.Title)}
	m.refreshAll()
	return m
}

func (m Model) duplicateSelected() Model {
	a, ok := m.selected()
	if !ok {
		m.Status = StatusBar{Text: "nothing selected"}
		return m
	}
	clone, err := m.Store.Duplicate(a.ID)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("duplicated as %q", clone.Title)}
	m.refreshAll()
	return m
}

func (m Model) renderListView() string {
	return views.RenderListPanel(views.ListPanelData{
		FilterLine: filterLine(m.List.Query),
		Rows:       m.listRowData(m.List.Rows, model.DayString(m.now()), m.SelectedID),
	})
}

func (m Model) renderDetailView() string {
	a, ok := m.currentListRow()
	if !ok {
		return "detail:\n(no selection)"
	}
	md := fmt.Sprintf("# %s\n\n- type: %s\n- date: %s", a.Title, typeLabels[a.Type], a.Date)
	if a.EndDate != "" {
		md += " to " + a.EndDate
	}
	if a.Time != "" {
		md += "\n- time: " + a.Time
	}
	md += "\n- priority: " + string(a.Priority)
	if a.AlarmMinutes > 0 {
		md += fmt.Sprintf("\n- alarm: %s before", model.AlarmLeadText(a.AlarmMinutes))
		if a.LastAlarmTriggeredDate != "" {
			md += " (last fired " + a.LastAlarmTriggeredDate + ")"
		}
	}
	if a.Description != "" {
		md += "\n\n" + a.Description
	}
	return "detail:\n" + views.RenderMarkdown(md, m.Theme)
}

func nextSort(s store.SortKey) store.SortKey {
	switch s {
	case store.SortByDate, "":
		return store.SortByPriority
	case store.SortByPriority:
		return store.SortByType
	case store.SortByType:
		return store.SortByTitle
	default:
		return store.SortByDate
	}
}

func sortName(s store.SortKey) string {
	if s == "" {
		return string(store.SortByDate)
	}
	return string(s)
}

func nextTypeFilter(t model.Type) model.Type {
	order := append([]model.Type{""}, model.Types()...)
	for i, candidate := range order {
		if candidate == t {
			return order[(i+1)%len(order)]
		}
	}
	return ""
}

func filterName(t model.Type) string {
	if t == "" {
		return "all"
	}
	return typeLabels[t]
}
