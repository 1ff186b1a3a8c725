package update

import (
	"agendad/internal/model"
	"agendad/internal/store"
	"agendad/internal/views"
)

func (m Model) renderDashboardView() string {
	stats := m.Store.Stats()
	settings := m.Store.Settings()
	today := model.DayString(m.now())

	rows := []views.StatRow{
		{Label: "total", Count: stats.Total},
		{Label: "today", Count: stats.Today},
		{Label: "upcoming", Count: stats.Upcoming},
		{Label: "with alarms", Count: stats.WithAlarms},
	}
	for _, t := range model.Types() {
		if n := stats.ByType[t]; n > 0 {
			rows = append(rows, views.StatRow{Label: typeLabels[t], Count: n})
		}
	}

	return views.RenderDashboardPanel(views.DashboardPanelData{
		Today:         m.listRowData(m.Store.OnDay(startOfDay(m.now())), today, ""),
		Upcoming:      m.listRowData(m.Store.Upcoming(5), today, ""),
		Stats:         rows,
		Duplicates:    stats.Duplicates,
		AlarmsEnabled: settings.GlobalAlarmsEnabled,
		DefaultLead:   model.AlarmLeadText(settings.DefaultAlarmMinutes),
		LastSave:      settings.LastSave,
	})
}

// listRowData converts activities into display rows, marking duplicates so
// the user spots them without running dedup.
func (m Model) listRowData(acts []model.Activity, today, selectedID string) []views.ListRowData {
	dupIDs := make(map[string]bool)
	for _, d := range m.Store.FindDuplicates() {
		dupIDs[d.Duplicate.ID] = true
	}
	rows := make([]views.ListRowData, len(acts))
	for i, a := range acts {
		rows[i] = views.ListRowData{
			ID:        a.ID,
			Title:     a.Title,
			TypeLabel: typeLabels[a.Type],
			Date:      a.Date,
			Time:      a.Time,
			Priority:  string(a.Priority),
			Badge:     dateBadge(a, today),
			Duplicate: dupIDs[a.ID],
			Alarm:     a.AlarmMinutes > 0,
			Selected:  selectedID != "" && a.ID == selectedID,
		}
	}
	return rows
}

func filterLine(q store.Query) string {
	line := ""
	if q.Type != "" {
		line = "type=" + string(q.Type)
	}
	if q.Search != "" {
		if line != "" {
			line += " "
		}
		line += "search=" + q.Search
	}
	if q.Sort != "" && q.Sort != store.SortByDate {
		if line != "" {
			line += " "
		}
		line += "sort=" + string(q.Sort)
	}
	return line
}
