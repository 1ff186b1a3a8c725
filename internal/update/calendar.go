package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"agendad/internal/model"
	"agendad/internal/views"
)

func (m Model) handleCalendarKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "h", "left":
		m.shiftCalendarFocus(0, -1)
	case "l", "right":
		m.shiftCalendarFocus(0, 1)
	case "H":
		m.shiftCalendarFocus(-1, 0)
	case "L":
		m.shiftCalendarFocus(1, 0)
	case "t":
		m.Calendar.FocusDate = startOfDay(m.now())
		m.Calendar.Cursor = 0
		m.refreshAll()
	case "up", "k":
		if m.Calendar.Cursor > 0 {
			m.Calendar.Cursor--
		}
	case "down", "j":
		if m.Calendar.Cursor < len(m.Calendar.DayItems)-1 {
			m.Calendar.Cursor++
		}
	case "e":
		if a, ok := m.currentAgendaItem(); ok {
			return m.openEditor(a.ID)
		}
	case "x":
		return m.deleteSelected()
	}
	m.syncSelection()
	return m
}

func (m *Model) shiftCalendarFocus(months, days int) {
	m.Calendar.FocusDate = m.Calendar.FocusDate.AddDate(0, months, days)
	m.Calendar.Cursor = 0
	m.refreshAll()
	m.Status = StatusBar{Text: fmt.Sprintf("calendar focus: %s", model.DayString(m.Calendar.FocusDate))}
}

func (m Model) renderMonthView() string {
	focus := m.Calendar.FocusDate
	first := time.Date(focus.Year(), focus.Month(), 1, 0, 0, 0, 0, focus.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()
	today := startOfDay(m.now())

	counts := make(map[int]int, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		counts[day] = len(m.Store.OnDay(first.AddDate(0, 0, day-1)))
	}

	// Monday-first layout: leading blanks for the first week.
	lead := (int(first.Weekday()) + 6) % 7
	var weeks [][7]views.MonthCell
	week := [7]views.MonthCell{}
	col := lead
	for day := 1; day <= daysInMonth; day++ {
		date := first.AddDate(0, 0, day-1)
		week[col] = views.MonthCell{
			Day:     day,
			Today:   date.Equal(today),
			Focused: date.Equal(m.Calendar.FocusDate),
			Count:   counts[day],
		}
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]views.MonthCell{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}

	return views.RenderMonthGrid(views.MonthGridData{
		Title: focus.Format("January 2006"),
		Weeks: weeks,
	})
}

func (m Model) renderAgendaView() string {
	items := make([]views.AgendaItemData, len(m.Calendar.DayItems))
	for i, a := range m.Calendar.DayItems {
		alarmText := ""
		if a.AlarmMinutes > 0 {
			alarmText = model.AlarmLeadText(a.AlarmMinutes)
		}
		items[i] = views.AgendaItemData{
			ID:        a.ID,
			Title:     a.Title,
			TypeLabel: typeLabels[a.Type],
			Time:      a.Time,
			AlarmText: alarmText,
			Selected:  i == m.Calendar.Cursor,
		}
	}
	return views.RenderAgendaPanel(views.AgendaPanelData{
		Date:  model.DayString(m.Calendar.FocusDate),
		Items: items,
	})
}
