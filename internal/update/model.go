// Package update holds the TUI model and its message loop. Rendering is
// delegated to the views package; domain state lives in the store.
package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"agendad/internal/alarm"
	"agendad/internal/commands"
	"agendad/internal/model"
	"agendad/internal/store"
	"agendad/internal/views"
)

type View string

const (
	ViewDashboard View = "Dashboard"
	ViewCalendar  View = "Calendar"
	ViewList      View = "List"
	ViewGantt     View = "Gantt"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	Calendar  string
	List      string
	Gantt     string
	Help      string
	Quit      string
}

// Banner is one visible alarm notice, dismissed or snoozed by the user.
type Banner struct {
	ActivityID string
	Title      string
	Body       string
	At         time.Time
}

type ListState struct {
	Cursor int
	Query  store.Query
	Rows   []model.Activity
}

type CalendarState struct {
	FocusDate time.Time
	Cursor    int
	DayItems  []model.Activity
}

type GanttState struct {
	Start  time.Time
	Days   int
	Cursor int
	Rows   []model.Activity
}

// editor field order, used both for focus cycling and form building.
const (
	fieldTitle = iota
	fieldDate
	fieldEndDate
	fieldTime
	fieldType
	fieldPriority
	fieldColor
	fieldDescription
	fieldAlarm
	fieldCount
)

type EditorState struct {
	Active    bool
	EditingID string
	FieldIdx  int
	Err       string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentView View
	Store       *store.Store
	Checker     *alarm.Checker
	Runner      *alarm.Runner
	Version     string

	Keys        GlobalKeyMap
	Theme       views.Theme
	Status      StatusBar
	Banners     []Banner
	List        ListState
	Calendar    CalendarState
	Gantt       GanttState
	Editor      EditorState
	Palette     CommandPaletteState
	HelpVisible bool
	SelectedID  string
	Quitting    bool
	LastError   error

	pendingImport *commands.ImportArgs
	now           func() time.Time
	editorInputs  []textinput.Model
	commandInput  textinput.Model
	helpModel     help.Model
}

type RefreshMsg struct{}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type AlarmFiredMsg struct {
	Event alarm.Event
}

var editorLabels = [fieldCount]string{
	"title", "date", "end date", "time", "type", "priority", "color", "description", "alarm min",
}

func NewModel(s *store.Store) Model {
	m := Model{
		CurrentView: ViewDashboard,
		Store:       s,
		Theme:       views.ThemeDark,
		now:         time.Now,
		Keys: GlobalKeyMap{
			Dashboard: "1",
			Calendar:  "2",
			List:      "3",
			Gantt:     "4",
			Help:      "?",
			Quit:      "q",
		},
		Gantt: GanttState{Days: 28},
	}
	m.Calendar.FocusDate = startOfDay(m.now())
	m.Gantt.Start = startOfWeek(m.now())

	m.editorInputs = make([]textinput.Model, fieldCount)
	for i := range m.editorInputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		m.editorInputs[i] = in
	}
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.helpModel = help.New()

	m.refreshAll()
	return m
}

// NewModelWithRuntime wires the scheduler pieces in; the plain constructor
// stays wiring-free for tests.
func NewModelWithRuntime(s *store.Store, checker *alarm.Checker, runner *alarm.Runner, version string) Model {
	m := NewModel(s)
	m.Checker = checker
	m.Runner = runner
	m.Version = version
	return m
}

// WithNow pins the clock for deterministic rendering in tests.
func (m Model) WithNow(now func() time.Time) Model {
	m.now = now
	m.Calendar.FocusDate = startOfDay(now())
	m.Gantt.Start = startOfWeek(now())
	m.refreshAll()
	return m
}

// refreshAll rebuilds every derived slice from the store. Called after any
// mutation and on external refresh signals.
func (m *Model) refreshAll() {
	m.List.Rows = m.Store.List(m.List.Query)
	m.List.Cursor = clamp(m.List.Cursor, 0, len(m.List.Rows)-1)
	m.Calendar.DayItems = m.Store.OnDay(m.Calendar.FocusDate)
	m.Calendar.Cursor = clamp(m.Calendar.Cursor, 0, len(m.Calendar.DayItems)-1)
	m.Gantt.Rows = m.ganttRange()
	m.Gantt.Cursor = clamp(m.Gantt.Cursor, 0, len(m.Gantt.Rows)-1)
	m.syncSelection()
}

func (m *Model) syncSelection() {
	switch m.CurrentView {
	case ViewList:
		if a, ok := m.currentListRow(); ok {
			m.SelectedID = a.ID
		}
	case ViewCalendar:
		if a, ok := m.currentAgendaItem(); ok {
			m.SelectedID = a.ID
		}
	case ViewGantt:
		if a, ok := m.currentGanttRow(); ok {
			m.SelectedID = a.ID
		}
	}
}

func (m Model) currentListRow() (model.Activity, bool) {
	if len(m.List.Rows) == 0 || m.List.Cursor < 0 || m.List.Cursor >= len(m.List.Rows) {
		return model.Activity{}, false
	}
	return m.List.Rows[m.List.Cursor], true
}

func (m Model) currentAgendaItem() (model.Activity, bool) {
	if len(m.Calendar.DayItems) == 0 || m.Calendar.Cursor < 0 || m.Calendar.Cursor >= len(m.Calendar.DayItems) {
		return model.Activity{}, false
	}
	return m.Calendar.DayItems[m.Calendar.Cursor], true
}

func (m Model) currentGanttRow() (model.Activity, bool) {
	if len(m.Gantt.Rows) == 0 || m.Gantt.Cursor < 0 || m.Gantt.Cursor >= len(m.Gantt.Rows) {
		return model.Activity{}, false
	}
	return m.Gantt.Rows[m.Gantt.Cursor], true
}

// selected resolves the activity the current view points at.
func (m Model) selected() (model.Activity, bool) {
	switch m.CurrentView {
	case ViewCalendar:
		return m.currentAgendaItem()
	case ViewGantt:
		return m.currentGanttRow()
	default:
		return m.currentListRow()
	}
}

func isKnownView(v View) bool {
	switch v {
	case ViewDashboard, ViewCalendar, ViewList, ViewGantt:
		return true
	default:
		return false
	}
}
