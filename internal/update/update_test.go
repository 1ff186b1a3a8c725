package update

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"agendad/internal/alarm"
	"agendad/internal/kv"
	"agendad/internal/model"
	"agendad/internal/store"
	"agendad/internal/syncfile"
	"agendad/internal/views"
)

type memBlob struct {
	data map[string][]byte
}

func newMemBlob() *memBlob { return &memBlob{data: map[string][]byte{}} }

func (m *memBlob) Get(key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return v, nil
}

func (m *memBlob) Set(key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memBlob) Close() error { return nil }

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

// testModel seeds a fresh store with the two example activities dated
// 2024-03-01 and 2024-03-08.
func testModel(t *testing.T) Model {
	t.Helper()
	s := store.NewWithNow(newMemBlob(), fixedClock)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() = %v", err)
	}
	return NewModel(s).WithNow(fixedClock)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.Msg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestViewSwitching(t *testing.T) {
	m := testModel(t)
	if m.CurrentView != ViewDashboard {
		t.Fatalf("initial view = %s, want Dashboard", m.CurrentView)
	}

	cases := []struct {
		key  string
		want View
	}{
		{"2", ViewCalendar},
		{"3", ViewList},
		{"4", ViewGantt},
		{"1", ViewDashboard},
	}
	for _, tc := range cases {
		m = press(t, m, tc.key)
		if m.CurrentView != tc.want {
			t.Errorf("after %q view = %s, want %s", tc.key, m.CurrentView, tc.want)
		}
	}
}

func TestListCursorAndDelete(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "3")
	if len(m.List.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.List.Rows))
	}
	if m.List.Rows[0].Title != "School Community Day" {
		t.Fatalf("first row = %q, want date order", m.List.Rows[0].Title)
	}

	m = press(t, m, "j")
	if m.List.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.List.Cursor)
	}

	m = press(t, m, "x")
	if m.Store.Len() != 1 {
		t.Fatalf("Len() = %d after delete, want 1", m.Store.Len())
	}
	if !strings.Contains(m.Status.Text, "deleted") {
		t.Fatalf("status = %q, want deletion notice", m.Status.Text)
	}
	if m.List.Cursor != 0 {
		t.Fatalf("cursor = %d after delete, want clamped to 0", m.List.Cursor)
	}
}

func TestListDuplicate(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "3", "c")
	if m.Store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Store.Len())
	}
	if !strings.Contains(m.Status.Text, "(Copy)") {
		t.Fatalf("status = %q, want copy title", m.Status.Text)
	}
}

func TestListSortAndFilterCycle(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "3", "p")
	if m.List.Query.Sort != store.SortByPriority {
		t.Fatalf("sort = %q, want priority", m.List.Query.Sort)
	}
	if m.List.Rows[0].Priority != "high" {
		t.Fatalf("first row priority = %q, want high first", m.List.Rows[0].Priority)
	}

	m = press(t, m, "f")
	if m.List.Query.Type != "activity" {
		t.Fatalf("type filter = %q, want activity", m.List.Query.Type)
	}
	if len(m.List.Rows) != 1 {
		t.Fatalf("filtered rows = %d, want 1", len(m.List.Rows))
	}
}

func TestCalendarNavigation(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "2")
	if len(m.Calendar.DayItems) != 1 {
		t.Fatalf("day items = %d on seed day, want 1", len(m.Calendar.DayItems))
	}

	m = press(t, m, "l")
	if got := m.Calendar.FocusDate.Format("2006-01-02"); got != "2024-03-02" {
		t.Fatalf("focus = %s after l, want 2024-03-02", got)
	}
	m = press(t, m, "H")
	if got := m.Calendar.FocusDate.Format("2006-01-02"); got != "2024-02-02" {
		t.Fatalf("focus = %s after H, want 2024-02-02", got)
	}
	m = press(t, m, "t")
	if got := m.Calendar.FocusDate.Format("2006-01-02"); got != "2024-03-01" {
		t.Fatalf("focus = %s after t, want today", got)
	}
}

func TestGanttZoom(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "4")
	if m.Gantt.Days != 28 {
		t.Fatalf("days = %d, want 28", m.Gantt.Days)
	}
	m = press(t, m, "+")
	if m.Gantt.Days != 14 {
		t.Fatalf("days = %d after zoom in, want 14", m.Gantt.Days)
	}
	m = press(t, m, "-", "-")
	if m.Gantt.Days != 56 {
		t.Fatalf("days = %d after zoom out twice, want 56", m.Gantt.Days)
	}
	if len(m.Gantt.Rows) != 2 {
		t.Fatalf("rows = %d in 56-day window, want both seeds", len(m.Gantt.Rows))
	}
}

func TestThemeToggle(t *testing.T) {
	m := testModel(t)
	if m.Theme != views.ThemeDark {
		t.Fatalf("theme = %s, want dark default", m.Theme)
	}
	m = press(t, m, "T")
	if m.Theme != views.ThemeLight {
		t.Fatalf("theme = %s after toggle, want light", m.Theme)
	}
	m = press(t, m, "T")
	if m.Theme != views.ThemeDark {
		t.Fatalf("theme = %s after second toggle, want dark", m.Theme)
	}
}

func TestPaletteAdd(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "/", "add Science Quiz on:2024-03-10 at:10:30 type:reminder", "enter")
	if m.Palette.Active {
		t.Fatal("palette still active after enter")
	}
	if !strings.Contains(m.Status.Text, "added") {
		t.Fatalf("status = %q, want added notice", m.Status.Text)
	}
	if m.Store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Store.Len())
	}

	var found bool
	for _, a := range m.Store.Activities() {
		if a.Title == "Science Quiz" {
			found = true
			if a.Date != "2024-03-10" || a.Time != "10:30" || a.Type != "reminder" {
				t.Fatalf("added activity = %+v", a)
			}
			if a.AlarmMinutes != m.Store.Settings().DefaultAlarmMinutes {
				t.Fatalf("alarm minutes = %d, want settings default", a.AlarmMinutes)
			}
		}
	}
	if !found {
		t.Fatal("added activity not in store")
	}
}

func TestPaletteUnknownCommand(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "/", "frobnicate", "enter")
	if !m.Status.IsError {
		t.Fatalf("status = %+v, want error", m.Status)
	}
	if !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("status = %q, want unknown_command code", m.Status.Text)
	}
}

func TestPaletteEscCancels(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "/", "add half typed", "esc")
	if m.Palette.Active {
		t.Fatal("palette still active after esc")
	}
	if m.Store.Len() != 2 {
		t.Fatalf("Len() = %d, esc must not execute", m.Store.Len())
	}
}

func TestPaletteGotoDate(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "/", "goto 2024-04-15", "enter")
	if m.CurrentView != ViewCalendar {
		t.Fatalf("view = %s, want Calendar", m.CurrentView)
	}
	if got := m.Calendar.FocusDate.Format("2006-01-02"); got != "2024-04-15" {
		t.Fatalf("focus = %s, want 2024-04-15", got)
	}
}

func TestPaletteFilter(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "/", "filter meeting", "enter")
	if m.CurrentView != ViewList {
		t.Fatalf("view = %s, want List", m.CurrentView)
	}
	if len(m.List.Rows) != 1 || m.List.Rows[0].Title != "Teacher Council" {
		t.Fatalf("rows = %+v, want only the meeting", m.List.Rows)
	}

	m = press(t, m, "/", "filter all", "enter")
	if len(m.List.Rows) != 2 {
		t.Fatalf("rows = %d after filter all, want 2", len(m.List.Rows))
	}
}

func TestPaletteDedup(t *testing.T) {
	m := testModel(t)
	first := m.Store.Activities()[0]
	first.ID = ""
	if _, err := m.Store.Create(first); err != nil {
		t.Fatalf("Create() = %v", err)
	}

	m = press(t, m, "/", "dedup", "enter")
	if !strings.Contains(m.Status.Text, "1 duplicates found") {
		t.Fatalf("status = %q, want preview count", m.Status.Text)
	}
	if m.Store.Len() != 3 {
		t.Fatalf("Len() = %d, preview must not remove", m.Store.Len())
	}

	m = press(t, m, "/", "dedup apply", "enter")
	if !strings.Contains(m.Status.Text, "removed 1") {
		t.Fatalf("status = %q, want removal count", m.Status.Text)
	}
	if m.Store.Len() != 2 {
		t.Fatalf("Len() = %d after apply, want 2", m.Store.Len())
	}
}

func TestPaletteAlarms(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "/", "alarms off", "enter")
	if m.Store.Settings().GlobalAlarmsEnabled {
		t.Fatal("alarms still enabled after /alarms off")
	}
	m = press(t, m, "/", "alarms 30", "enter")
	if got := m.Store.Settings().DefaultAlarmMinutes; got != 30 {
		t.Fatalf("default lead = %d, want 30", got)
	}
}

func TestPaletteExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sync.json")

	m := testModel(t)
	m = press(t, m, "/", "export "+path, "enter")
	if !strings.Contains(m.Status.Text, "exported 2") {
		t.Fatalf("status = %q, want export notice", m.Status.Text)
	}

	other := store.NewWithNow(newMemBlob(), fixedClock)
	if err := other.Load(); err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if err := other.Delete("2"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}

	n := NewModel(other).WithNow(fixedClock)
	n = press(t, n, "/", "import "+path+" smart", "enter")
	if !strings.Contains(n.Status.Text, "1 added, 1 skipped") {
		t.Fatalf("status = %q, want merge summary", n.Status.Text)
	}
	if n.Store.Len() != 2 {
		t.Fatalf("Len() = %d after import, want 2", n.Store.Len())
	}
}

func TestPaletteImportForeignNeedsConfirm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "other.json")
	payload := `{"activities":[{"id":"x1","title":"Sports Day","type":"activity","date":"2024-03-20","priority":"low","color":"#FFC107","alarmMinutes":0}],"syncType":"someone-else"}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}
	if _, err := syncfile.ReadFile(path); !errors.Is(err, syncfile.ErrForeignFile) {
		t.Fatalf("ReadFile() err = %v, want ErrForeignFile", err)
	}

	m := testModel(t)
	m = press(t, m, "/", "import "+path, "enter")
	if m.Store.Len() != 2 {
		t.Fatalf("Len() = %d, foreign import must wait for confirm", m.Store.Len())
	}
	if m.pendingImport == nil {
		t.Fatal("pendingImport not set")
	}
	if !strings.Contains(m.Status.Text, "press y") {
		t.Fatalf("status = %q, want confirm prompt", m.Status.Text)
	}

	m = press(t, m, "y")
	if m.pendingImport != nil {
		t.Fatal("pendingImport not cleared")
	}
	if m.Store.Len() != 3 {
		t.Fatalf("Len() = %d after confirm, want 3", m.Store.Len())
	}
}

func TestPaletteImportBareArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.json")
	payload := `[{"title":"Sports Day","date":"2024-03-20","type":"activity"},{"title":"No Date","type":"meeting"}]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	m := testModel(t)
	m = press(t, m, "/", "import "+path, "enter")
	if m.Store.Len() != 3 {
		t.Fatalf("Len() = %d after loose import, want 3", m.Store.Len())
	}
	if !strings.Contains(m.Status.Text, "1 invalid records dropped") {
		t.Fatalf("status = %q, want quarantine notice", m.Status.Text)
	}

	var imported model.Activity
	for _, a := range m.Store.Activities() {
		if a.Title == "Sports Day" {
			imported = a
		}
	}
	if imported.ID == "" || imported.ID == "1" || imported.ID == "2" {
		t.Fatalf("imported id = %q, want a regenerated one", imported.ID)
	}
	if imported.AlarmMinutes != m.Store.Settings().DefaultAlarmMinutes {
		t.Fatalf("AlarmMinutes = %d, want backfilled default", imported.AlarmMinutes)
	}
}

func TestAlarmBannerSnoozeAndDismiss(t *testing.T) {
	m := testModel(t)
	a, err := m.Store.Get("1")
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}

	next, _ := m.Update(AlarmFiredMsg{Event: alarmEvent(a)})
	m = next.(Model)
	if len(m.Banners) != 1 {
		t.Fatalf("banners = %d, want 1", len(m.Banners))
	}
	if !strings.Contains(m.Status.Text, a.Title) {
		t.Fatalf("status = %q, want alarm title", m.Status.Text)
	}

	m = press(t, m, "s")
	if len(m.Banners) != 0 {
		t.Fatalf("banners = %d after snooze, want 0", len(m.Banners))
	}
	snoozed, _ := m.Store.Get("1")
	if snoozed.AlarmMinutes != 5 {
		t.Fatalf("AlarmMinutes = %d after snooze, want 5", snoozed.AlarmMinutes)
	}
	if snoozed.LastAlarmTriggeredDate != "" {
		t.Fatalf("LastAlarmTriggeredDate = %q after snooze, want cleared", snoozed.LastAlarmTriggeredDate)
	}

	next, _ = m.Update(AlarmFiredMsg{Event: alarmEvent(a)})
	m = next.(Model)
	m = press(t, m, "z")
	if len(m.Banners) != 0 {
		t.Fatalf("banners = %d after dismiss, want 0", len(m.Banners))
	}
}

func TestEditorCreateAndValidation(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "n")
	if !m.Editor.Active {
		t.Fatal("editor not active after n")
	}
	if got := m.editorInputs[fieldDate].Value(); got != "2024-03-01" {
		t.Fatalf("date prefill = %q, want today", got)
	}
	if got := m.editorInputs[fieldAlarm].Value(); got != "15" {
		t.Fatalf("alarm prefill = %q, want settings default", got)
	}

	// Empty title must be rejected without closing the form.
	m = press(t, m, "enter")
	if !m.Editor.Active || m.Editor.Err == "" {
		t.Fatalf("editor = %+v, want validation error", m.Editor)
	}

	m = press(t, m, "Parent Evening", "enter")
	if m.Editor.Active {
		t.Fatal("editor still active after save")
	}
	if m.Store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Store.Len())
	}
	if !strings.Contains(m.Status.Text, "Parent Evening") {
		t.Fatalf("status = %q, want save notice", m.Status.Text)
	}
}

func TestEditorEditExisting(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "3", "e")
	if !m.Editor.Active || m.Editor.EditingID != "1" {
		t.Fatalf("editor = %+v, want editing seed 1", m.Editor)
	}
	if got := m.editorInputs[fieldTitle].Value(); got != "School Community Day" {
		t.Fatalf("title prefill = %q", got)
	}

	m.editorInputs[fieldTitle].SetValue("Community Day")
	m = press(t, m, "enter")
	updated, err := m.Store.Get("1")
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if updated.Title != "Community Day" {
		t.Fatalf("title = %q after edit, want Community Day", updated.Title)
	}
}

func TestEditorFieldCycling(t *testing.T) {
	m := testModel(t)
	m = press(t, m, "n", "tab", "tab")
	if m.Editor.FieldIdx != fieldEndDate {
		t.Fatalf("field = %d after two tabs, want end date", m.Editor.FieldIdx)
	}
	m = press(t, m, "esc")
	if m.Editor.Active {
		t.Fatal("editor still active after esc")
	}
}

func TestViewRendersEveryScreen(t *testing.T) {
	m := testModel(t)
	for _, key := range []string{"1", "2", "3", "4"} {
		m = press(t, m, key)
		out := m.View()
		if out == "" {
			t.Fatalf("View() empty for key %q", key)
		}
		if !strings.Contains(out, "agendad") {
			t.Fatalf("View() missing header for key %q", key)
		}
	}

	m = press(t, m, "?")
	if !strings.Contains(m.View(), "help:") {
		t.Fatal("View() missing help panel")
	}

	m = press(t, m, "n")
	if !strings.Contains(m.View(), "new activity") {
		t.Fatal("View() missing editor form")
	}
}

func alarmEvent(a model.Activity) alarm.Event {
	return alarm.Event{Activity: a, At: fixedClock()}
}
