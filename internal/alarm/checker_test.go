package alarm

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"agendad/internal/kv"
	"agendad/internal/model"
	"agendad/internal/notify"
	"agendad/internal/store"
)

type memBlob struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet error
}

func newMemBlob() *memBlob {
	return &memBlob{data: map[string][]byte{}}
}

func (m *memBlob) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return v, nil
}

func (m *memBlob) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = value
	return nil
}

func (m *memBlob) Close() error { return nil }

type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (c *captureNotifier) Notify(n notify.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clockAt(t *testing.T, s string) func() time.Time {
	t.Helper()
	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad clock %q: %v", s, err)
	}
	return func() time.Time { return at }
}

// timedActivity starts 2024-03-01 at 10:00 with a 15-minute lead, so the
// alarm instant is 09:45.
func timedActivity() model.Activity {
	return model.Activity{
		ID:           "a1",
		Title:        "Staff Meeting",
		Type:         model.TypeMeeting,
		Date:         "2024-03-01",
		Time:         "10:00",
		Priority:     model.PriorityHigh,
		Color:        "#2196F3",
		AlarmMinutes: 15,
	}
}

func checkerAt(t *testing.T, blob *memBlob, when string, acts ...model.Activity) (*Checker, *store.Store, *captureNotifier) {
	t.Helper()
	now := clockAt(t, when)
	s := store.NewWithNow(blob, now)
	if err := s.Load(); err != nil && !errors.Is(err, store.ErrDataCorruption) {
		t.Fatalf("Load() error = %v", err)
	}
	for _, a := range acts {
		if _, err := s.Create(a); err != nil {
			t.Fatalf("Create(%s) error = %v", a.ID, err)
		}
	}
	sink := &captureNotifier{}
	c := NewChecker(s, sink, discardLogger()).WithClock(now, time.UTC)
	return c, s, sink
}

func TestCheckFiresInsideWindow(t *testing.T) {
	blob := newMemBlob()
	c, s, sink := checkerAt(t, blob, "2024-03-01T09:45:10Z", timedActivity())

	fired := c.Check()
	if len(fired) != 1 {
		t.Fatalf("fired = %d, want 1 (10s past the alarm instant)", len(fired))
	}
	if sink.count() != 1 {
		t.Errorf("notifications = %d, want 1", sink.count())
	}
	got, err := s.Get("a1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.AlarmTriggered || got.LastAlarmTriggeredDate != "2024-03-01" {
		t.Errorf("fired state = (%v, %q), want (true, 2024-03-01)",
			got.AlarmTriggered, got.LastAlarmTriggeredDate)
	}
}

func TestCheckTooEarlyStaysSilent(t *testing.T) {
	// 09:44:00 is a minute before the 09:45 alarm instant.
	c, _, sink := checkerAt(t, newMemBlob(), "2024-03-01T09:44:00Z", timedActivity())

	if fired := c.Check(); len(fired) != 0 {
		t.Fatalf("fired = %d, want 0", len(fired))
	}
	if sink.count() != 0 {
		t.Errorf("notifications = %d, want 0", sink.count())
	}
}

func TestCheckNeverFiresRetroactively(t *testing.T) {
	// 75s past the alarm instant, beyond the 30s window. A missed alarm
	// stays missed.
	c, _, sink := checkerAt(t, newMemBlob(), "2024-03-01T09:46:15Z", timedActivity())

	if fired := c.Check(); len(fired) != 0 {
		t.Fatalf("fired = %d, want 0 for an alarm missed beyond the window", len(fired))
	}
	if sink.count() != 0 {
		t.Errorf("notifications = %d, want 0", sink.count())
	}
}

func TestCheckFiresOncePerDay(t *testing.T) {
	c, _, sink := checkerAt(t, newMemBlob(), "2024-03-01T09:45:10Z", timedActivity())

	if fired := c.Check(); len(fired) != 1 {
		t.Fatalf("first pass fired = %d, want 1", len(fired))
	}
	if fired := c.Check(); len(fired) != 0 {
		t.Fatalf("second pass fired = %d, want 0", len(fired))
	}
	if sink.count() != 1 {
		t.Errorf("notifications = %d, want 1", sink.count())
	}
}

func TestCheckAllDayActivityUsesMidnight(t *testing.T) {
	a := timedActivity()
	a.Time = ""
	a.AlarmMinutes = 30
	// Midnight minus 30m lead puts the alarm instant at 23:30 the day before.
	c, _, _ := checkerAt(t, newMemBlob(), "2024-02-29T23:30:15Z", a)

	if fired := c.Check(); len(fired) != 1 {
		t.Fatalf("fired = %d, want 1 at 23:30:15 the previous day", len(fired))
	}
}

func TestCheckSkipsDisabledAlarm(t *testing.T) {
	a := timedActivity()
	a.AlarmMinutes = 0
	c, _, sink := checkerAt(t, newMemBlob(), "2024-03-01T10:00:05Z", a)

	if fired := c.Check(); len(fired) != 0 {
		t.Fatalf("fired = %d, want 0 for a disabled alarm", len(fired))
	}
	if sink.count() != 0 {
		t.Errorf("notifications = %d, want 0", sink.count())
	}
}

func TestCheckGloballyDisabled(t *testing.T) {
	c, s, sink := checkerAt(t, newMemBlob(), "2024-03-01T09:45:10Z", timedActivity())
	if err := s.SaveSettings(model.AlarmSettings{DefaultAlarmMinutes: 15, GlobalAlarmsEnabled: false}); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	if fired := c.Check(); len(fired) != 0 {
		t.Fatalf("fired = %d, want 0 with alarms globally off", len(fired))
	}
	if sink.count() != 0 {
		t.Errorf("notifications = %d, want 0", sink.count())
	}
}

func TestCheckNotifiesEvenWhenPersistFails(t *testing.T) {
	blob := newMemBlob()
	c, s, sink := checkerAt(t, blob, "2024-03-01T09:45:10Z", timedActivity())
	blob.failSet = errors.New("disk full")

	fired := c.Check()
	if len(fired) != 1 {
		t.Fatalf("fired = %d, want 1 despite the failed save", len(fired))
	}
	if sink.count() != 1 {
		t.Errorf("notifications = %d, want 1", sink.count())
	}
	// In-memory state still records the firing, so the alarm does not repeat
	// within this process.
	got, _ := s.Get("a1")
	if got.LastAlarmTriggeredDate != "2024-03-01" {
		t.Errorf("in-memory fired day = %q, want 2024-03-01", got.LastAlarmTriggeredDate)
	}
}

func TestSnoozeRearmsForNextPass(t *testing.T) {
	c, s, sink := checkerAt(t, newMemBlob(), "2024-03-01T09:45:10Z", timedActivity())
	if fired := c.Check(); len(fired) != 1 {
		t.Fatalf("setup fire failed")
	}

	if err := c.Snooze("a1"); err != nil {
		t.Fatalf("Snooze() error = %v", err)
	}
	got, _ := s.Get("a1")
	if got.AlarmMinutes != 5 || got.LastAlarmTriggeredDate != "" {
		t.Fatalf("snoozed state = (%d, %q), want (5, cleared)", got.AlarmMinutes, got.LastAlarmTriggeredDate)
	}

	// The snoozed alarm instant is 09:55; a pass at 09:55:05 fires again.
	late := NewChecker(s, sink, discardLogger()).
		WithClock(clockAt(t, "2024-03-01T09:55:05Z"), time.UTC)
	if fired := late.Check(); len(fired) != 1 {
		t.Fatalf("post-snooze fired = %d, want 1", len(fired))
	}
	if sink.count() != 2 {
		t.Errorf("notifications = %d, want 2", sink.count())
	}
}

func TestCheckNotificationContent(t *testing.T) {
	a := timedActivity()
	a.Description = "Agenda in the shared drive"
	c, _, sink := checkerAt(t, newMemBlob(), "2024-03-01T09:45:10Z", a)

	c.Check()
	if sink.count() != 1 {
		t.Fatalf("notifications = %d, want 1", sink.count())
	}
	n := sink.sent[0]
	if n.Title != "Staff Meeting" {
		t.Errorf("title = %q", n.Title)
	}
	if n.Level != notify.LevelAlarm {
		t.Errorf("level = %q, want alarm", n.Level)
	}
	if n.ActivityID != "a1" {
		t.Errorf("activity id = %q, want a1", n.ActivityID)
	}
	want := "Starts in 15 minutes at 10:00\nAgenda in the shared drive"
	if n.Body != want {
		t.Errorf("body = %q, want %q", n.Body, want)
	}
}
