package views

import (
	"fmt"
	"sort"
	"strings"
)

type ListRowData struct {
	ID        string
	Title     string
	TypeLabel string
	Date      string
	Time      string
	Priority  string
	Badge     string
	Duplicate bool
	Alarm     bool
	Selected  bool
}

type StatRow struct {
	Label string
	Count int
}

type DashboardPanelData struct {
	Today         []ListRowData
	Upcoming      []ListRowData
	Stats         []StatRow
	Duplicates    int
	AlarmsEnabled bool
	DefaultLead   string
	LastSave      string
}

func RenderDashboardPanel(data DashboardPanelData) string {
	var b strings.Builder
	b.WriteString("dashboard:\n")
	for _, st := range data.Stats {
		b.WriteString(fmt.Sprintf("%s: %d\n", st.Label, st.Count))
	}
	alarms := "off"
	if data.AlarmsEnabled {
		alarms = "on, default lead " + data.DefaultLead
	}
	b.WriteString(fmt.Sprintf("alarms: %s\n", alarms))
	if data.Duplicates > 0 {
		b.WriteString(fmt.Sprintf("duplicates: %d (run /dedup)\n", data.Duplicates))
	}
	if data.LastSave != "" {
		b.WriteString(fmt.Sprintf("last save: %s\n", data.LastSave))
	}

	b.WriteString("\ntoday:\n")
	writeRows(&b, data.Today, "(nothing scheduled today)")
	b.WriteString("\nupcoming:\n")
	writeRows(&b, data.Upcoming, "(no upcoming activities)")
	return strings.TrimSpace(b.String())
}

func writeRows(b *strings.Builder, rows []ListRowData, empty string) {
	if len(rows) == 0 {
		b.WriteString("  " + empty + "\n")
		return
	}
	for _, row := range rows {
		cursor := " "
		if row.Selected {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, rowBadge(row), row.Title))
		b.WriteString(fmt.Sprintf(" [%s] %s", row.TypeLabel, row.Date))
		if row.Time != "" {
			b.WriteString(" @" + row.Time)
		}
		if row.Alarm {
			b.WriteString(" (alarm)")
		}
		if row.Duplicate {
			b.WriteString(" DUPLICATE")
		}
		b.WriteString("\n")
	}
}

func rowBadge(row ListRowData) string {
	if row.Badge != "" {
		return "[" + row.Badge + "]"
	}
	switch row.Priority {
	case "high":
		return "[RED]"
	case "medium":
		return "[YELLOW]"
	default:
		return "[GREEN]"
	}
}

type ListPanelData struct {
	FilterLine string
	Rows       []ListRowData
}

func RenderListPanel(data ListPanelData) string {
	var b strings.Builder
	b.WriteString("activities:\n")
	b.WriteString("actions: [j/k]move [n]new [e]edit [x]delete [c]duplicate [p]sort\n")
	if data.FilterLine != "" {
		b.WriteString("filter: " + data.FilterLine + "\n")
	}
	writeRows(&b, data.Rows, "(no activities match)")
	return strings.TrimSpace(b.String())
}

type MonthCell struct {
	Day     int
	Today   bool
	Focused bool
	Count   int
}

type MonthGridData struct {
	Title string
	Weeks [][7]MonthCell
}

// RenderMonthGrid draws a month as a fixed-width grid. Each cell shows the
// day number, a dot per scheduled activity (capped at three), today in
// brackets and the focused day with an asterisk.
func RenderMonthGrid(data MonthGridData) string {
	var b strings.Builder
	b.WriteString(data.Title + "\n")
	b.WriteString(" Mo  Tu  We  Th  Fr  Sa  Su\n")
	for _, week := range data.Weeks {
		for _, cell := range week {
			b.WriteString(renderMonthCell(cell))
		}
		b.WriteString("\n")
		for _, cell := range week {
			marks := cell.Count
			if marks > 3 {
				marks = 3
			}
			b.WriteString(fmt.Sprintf(" %-3s", strings.Repeat(".", marks)))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderMonthCell(cell MonthCell) string {
	if cell.Day == 0 {
		return "    "
	}
	switch {
	case cell.Today:
		return fmt.Sprintf("[%2d]", cell.Day)
	case cell.Focused:
		return fmt.Sprintf("*%2d ", cell.Day)
	default:
		return fmt.Sprintf(" %2d ", cell.Day)
	}
}

type AgendaItemData struct {
	ID        string
	Title     string
	TypeLabel string
	Time      string
	AlarmText string
	Selected  bool
}

type AgendaPanelData struct {
	Date  string
	Items []AgendaItemData
}

func RenderAgendaPanel(data AgendaPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("agenda %s:\n", data.Date))
	b.WriteString("actions: [h/l]day [H/L]month [j/k]select [t]today\n")
	if len(data.Items) == 0 {
		b.WriteString("(nothing scheduled)")
		return b.String()
	}
	items := make([]AgendaItemData, len(data.Items))
	copy(items, data.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Time < items[j].Time })
	for _, item := range items {
		cursor := " "
		if item.Selected {
			cursor = ">"
		}
		when := item.Time
		if when == "" {
			when = "all-day"
		}
		b.WriteString(fmt.Sprintf("%s [%s] %s %s", cursor, strings.ToUpper(item.TypeLabel), when, item.Title))
		if item.AlarmText != "" {
			b.WriteString(" (alarm " + item.AlarmText + ")")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

type GanttRowData struct {
	Title    string
	Offset   int
	Span     int
	Priority string
	Selected bool
}

type GanttPanelData struct {
	StartDate string
	Days      int
	Rows      []GanttRowData
}

// RenderGanttPanel draws one bar per activity across a horizontal day axis.
// Bars are solid blocks; rows outside the visible range render as arrows at
// the clipped edge.
func RenderGanttPanel(data GanttPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("gantt from %s (%d days):\n", data.StartDate, data.Days))
	b.WriteString("actions: [h/l]shift week [j/k]select [+/-]zoom\n")
	if len(data.Rows) == 0 {
		b.WriteString("(no activities in range)")
		return b.String()
	}
	axis := make([]byte, data.Days)
	for i := range axis {
		if i%7 == 0 {
			axis[i] = '|'
		} else {
			axis[i] = '.'
		}
	}
	b.WriteString(fmt.Sprintf("%-22s %s\n", "", string(axis)))
	for _, row := range data.Rows {
		cursor := " "
		if row.Selected {
			cursor = ">"
		}
		title := row.Title
		if len(title) > 20 {
			title = title[:19] + "…"
		}
		b.WriteString(fmt.Sprintf("%s%-21s %s\n", cursor, title, ganttBar(row, data.Days)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func ganttBar(row GanttRowData, days int) string {
	cells := make([]rune, days)
	for i := range cells {
		cells[i] = ' '
	}
	start := row.Offset
	end := row.Offset + row.Span // exclusive
	if end <= 0 {
		cells[0] = '<'
		return string(cells)
	}
	if start >= days {
		cells[days-1] = '>'
		return string(cells)
	}
	if start < 0 {
		cells[0] = '<'
		start = 1
		if start > days {
			start = days
		}
	}
	if end > days {
		cells[days-1] = '>'
		end = days - 1
	}
	for i := start; i < end; i++ {
		cells[i] = barRune(row.Priority)
	}
	return string(cells)
}

func barRune(priority string) rune {
	switch priority {
	case "high":
		return '█'
	case "medium":
		return '▓'
	default:
		return '░'
	}
}

type EditorFieldData struct {
	Label   string
	View    string
	Focused bool
}

type EditorData struct {
	Title     string
	Fields    []EditorFieldData
	ErrorText string
}

func RenderEditor(data EditorData) string {
	var b strings.Builder
	b.WriteString(data.Title + ":\n")
	b.WriteString("keys: [tab] next field [enter] save [esc] cancel\n")
	for _, f := range data.Fields {
		marker := " "
		if f.Focused {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-12s %s\n", marker, f.Label+":", f.View))
	}
	if data.ErrorText != "" {
		b.WriteString("error: " + data.ErrorText + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

type BannerItemData struct {
	Title string
	Body  string
}

// RenderAlarmBanner stacks active alarm banners newest first.
func RenderAlarmBanner(items []BannerItemData) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i := len(items) - 1; i >= 0; i-- {
		b.WriteString(fmt.Sprintf("ALARM %s: %s\n", items[i].Title, firstLine(items[i].Body)))
	}
	b.WriteString("keys: [s]snooze 5m [z]dismiss")
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
