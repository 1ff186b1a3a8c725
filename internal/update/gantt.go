package update

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"agendad/internal/model"
	"agendad/internal/views"
)

func (m Model) handleGanttKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "h", "left":
		m.Gantt.Start = m.Gantt.Start.AddDate(0, 0, -7)
		m.refreshAll()
	case "l", "right":
		m.Gantt.Start = m.Gantt.Start.AddDate(0, 0, 7)
		m.refreshAll()
	case "+":
		m.Gantt.Days = zoomIn(m.Gantt.Days)
		m.refreshAll()
	case "-":
		m.Gantt.Days = zoomOut(m.Gantt.Days)
		m.refreshAll()
	case "up", "k":
		if m.Gantt.Cursor > 0 {
			m.Gantt.Cursor--
		}
	case "down", "j":
		if m.Gantt.Cursor < len(m.Gantt.Rows)-1 {
			m.Gantt.Cursor++
		}
	case "e":
		if a, ok := m.currentGanttRow(); ok {
			return m.openEditor(a.ID)
		}
	case "x":
		return m.deleteSelected()
	}
	m.syncSelection()
	return m
}

func zoomIn(days int) int {
	switch {
	case days > 28:
		return 28
	case days > 14:
		return 14
	default:
		return 7
	}
}

func zoomOut(days int) int {
	switch {
	case days < 14:
		return 14
	case days < 28:
		return 28
	default:
		return 56
	}
}

// ganttRange selects activities overlapping the visible window, earliest
// start first.
func (m Model) ganttRange() []model.Activity {
	loc := m.Gantt.Start.Location()
	windowEnd := m.Gantt.Start.AddDate(0, 0, m.Gantt.Days)
	var rows []model.Activity
	for _, a := range m.Store.Activities() {
		start, err := a.StartDay(loc)
		if err != nil {
			continue
		}
		end := start.AddDate(0, 0, a.SpanDays())
		if end.After(m.Gantt.Start) && start.Before(windowEnd) {
			rows = append(rows, a)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Title < rows[j].Title
	})
	return rows
}

func (m Model) renderGanttView() string {
	loc := m.Gantt.Start.Location()
	rows := make([]views.GanttRowData, len(m.Gantt.Rows))
	for i, a := range m.Gantt.Rows {
		start, err := a.StartDay(loc)
		if err != nil {
			continue
		}
		offset := model.DaysBetween(m.Gantt.Start, start)
		rows[i] = views.GanttRowData{
			Title:    a.Title,
			Offset:   offset,
			Span:     a.SpanDays(),
			Priority: string(a.Priority),
			Selected: i == m.Gantt.Cursor,
		}
	}
	return views.RenderGanttPanel(views.GanttPanelData{
		StartDate: model.DayString(m.Gantt.Start),
		Days:      m.Gantt.Days,
		Rows:      rows,
	})
}
