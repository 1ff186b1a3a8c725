// Package store owns the authoritative in-memory activity collection and its
// persistence as a single snapshot blob. Every mutation re-serializes the
// whole collection; there is no per-record persistence.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"agendad/internal/kv"
	"agendad/internal/model"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrDataCorruption = errors.New("store: snapshot corrupted")
	ErrPersistence    = errors.New("store: persistence failed")
)

const (
	// SnapshotKey names the blob holding the activity snapshot; external
	// watchers resolve the on-disk path from it.
	SnapshotKey = "activities"
	settingsKey = "alarm_settings"

	// SnapshotVersion tags every persisted snapshot so future format changes
	// can be detected at load time.
	SnapshotVersion = "1.0"
)

// Snapshot is the persisted blob shape: the full collection plus metadata.
type Snapshot struct {
	Activities []model.Activity `json:"activities"`
	LastSave   string           `json:"lastSave"`
	Version    string           `json:"version"`
}

// Store is the single source of truth for activities. A mutex guards the
// collection and settings; the UI loop, the alarm scheduler, and the snapshot
// watcher all touch the store from their own goroutines.
type Store struct {
	blob kv.Store
	now  func() time.Time

	mu         sync.Mutex
	activities []model.Activity
	settings   model.AlarmSettings
	onChange   func()
}

func New(blob kv.Store) *Store {
	return NewWithNow(blob, time.Now)
}

func NewWithNow(blob kv.Store, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		blob:     blob,
		now:      now,
		settings: model.DefaultAlarmSettings(),
	}
}

// OnChange registers a callback fired after every state change, so observers
// can request a re-render. At most one callback is kept. The callback runs
// with the store lock held and must not call back into the store.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Store) emit() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Load reads the persisted snapshot. A missing blob seeds two example
// activities and persists them. A malformed blob resets the collection to
// empty and reports ErrDataCorruption; the caller logs it and carries on.
// Alarm bookkeeping fields absent from older snapshots decode to their zero
// values, which are exactly the documented defaults; fired-day guards written
// by the original web app in toDateString form are normalized so they still
// match today's civil day.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadSettings()

	data, err := s.blob.Get(SnapshotKey)
	if errors.Is(err, kv.ErrNotFound) {
		s.activities = seedActivities(s.now())
		if saveErr := s.save(); saveErr != nil {
			return saveErr
		}
		s.emit()
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.activities = nil
		s.emit()
		return fmt.Errorf("%w: %v", ErrDataCorruption, err)
	}
	s.activities = snap.Activities
	for i := range s.activities {
		if s.activities[i].AlarmMinutes < 0 {
			s.activities[i].AlarmMinutes = 0
		}
		s.activities[i].LastAlarmTriggeredDate = model.NormalizeDay(s.activities[i].LastAlarmTriggeredDate)
	}
	s.emit()
	return nil
}

// Save serializes the full collection. The in-memory collection is kept
// regardless of the outcome; a write failure surfaces as ErrPersistence.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save requires s.mu held.
func (s *Store) save() error {
	snap := Snapshot{
		Activities: s.activities,
		LastSave:   s.now().Format(time.RFC3339),
		Version:    SnapshotVersion,
	}
	if snap.Activities == nil {
		snap.Activities = []model.Activity{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.blob.Set(SnapshotKey, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Activities returns a copy of the collection in insertion order.
func (s *Store) Activities() []model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activities)
}

func (s *Store) Get(id string) (model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.activities[i], nil
	}
	return model.Activity{}, ErrNotFound
}

// indexOf requires s.mu held.
func (s *Store) indexOf(id string) int {
	for i, a := range s.activities {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Create appends a new activity. A blank id is assigned from the current
// timestamp; if that id is already taken (two creations within the same
// millisecond, or an import race) a random one is used instead.
func (s *Store) Create(a model.Activity) (model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = model.NewID(s.now())
	}
	if s.indexOf(a.ID) >= 0 {
		a.ID = uuid.NewString()
	}
	if err := a.Validate(); err != nil {
		return model.Activity{}, err
	}
	s.activities = append(s.activities, a)
	if err := s.save(); err != nil {
		return a, err
	}
	s.emit()
	return a, nil
}

// Update replaces the record with the given id. Updating a missing id is a
// no-op reported as ErrNotFound.
func (s *Store) Update(id string, a model.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	a.ID = id
	if err := a.Validate(); err != nil {
		return err
	}
	s.activities[i] = a
	if err := s.save(); err != nil {
		return err
	}
	s.emit()
	return nil
}

// Delete removes the record with the given id. Deleting a missing id is a
// no-op reported as ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.activities = append(s.activities[:i], s.activities[i+1:]...)
	if err := s.save(); err != nil {
		return err
	}
	s.emit()
	return nil
}

// Duplicate clones a record under a new id with a "(Copy)" title suffix.
func (s *Store) Duplicate(id string) (model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Activity{}, ErrNotFound
	}
	src := s.activities[i]
	clone := src
	clone.ID = model.NewID(s.now())
	if s.indexOf(clone.ID) >= 0 {
		clone.ID = uuid.NewString()
	}
	clone.Title = src.Title + " (Copy)"
	s.activities = append(s.activities, clone)
	if err := s.save(); err != nil {
		return clone, err
	}
	s.emit()
	return clone, nil
}

// MarkAlarmFired records that an activity's alarm fired on the given civil
// day. It mutates memory only; the scheduler persists afterwards, best
// effort, so a storage failure never blocks the notification.
func (s *Store) MarkAlarmFired(id, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.activities[i].AlarmTriggered = true
	s.activities[i].LastAlarmTriggeredDate = day
	s.emit()
	return nil
}

// SnoozeAlarm re-arms an activity's alarm with a 5-minute lead and clears the
// daily-trigger guard, so the next scheduler tick evaluates it afresh.
func (s *Store) SnoozeAlarm(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.activities[i].AlarmMinutes = 5
	s.activities[i].LastAlarmTriggeredDate = ""
	err := s.save()
	s.emit()
	return err
}

// Settings returns the current global alarm preferences.
func (s *Store) Settings() model.AlarmSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SaveSettings persists new alarm preferences.
func (s *Store) SaveSettings(settings model.AlarmSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings.LastSave = s.now().Format(time.RFC3339)
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.blob.Set(settingsKey, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.settings = settings
	s.emit()
	return nil
}

// loadSettings falls back to defaults on a missing or malformed blob; bad
// preferences are never worth failing startup over. Requires s.mu held.
func (s *Store) loadSettings() {
	s.settings = model.DefaultAlarmSettings()
	data, err := s.blob.Get(settingsKey)
	if err != nil {
		return
	}
	// GlobalAlarmsEnabled defaults to true when the field is absent, so the
	// raw decode goes through pointers before coercing.
	var raw struct {
		DefaultAlarmMinutes *int   `json:"defaultAlarmMinutes"`
		GlobalAlarmsEnabled *bool  `json:"globalAlarmsEnabled"`
		LastSave            string `json:"lastSave"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return
	}
	if raw.DefaultAlarmMinutes != nil && *raw.DefaultAlarmMinutes >= 0 {
		s.settings.DefaultAlarmMinutes = *raw.DefaultAlarmMinutes
	}
	if raw.GlobalAlarmsEnabled != nil {
		s.settings.GlobalAlarmsEnabled = *raw.GlobalAlarmsEnabled
	}
	s.settings.LastSave = raw.LastSave
}

func seedActivities(now time.Time) []model.Activity {
	return []model.Activity{
		{
			ID:           "1",
			Title:        "School Community Day",
			Type:         model.TypeActivity,
			Date:         model.DayString(now),
			Priority:     model.PriorityHigh,
			Color:        "#4CAF50",
			Description:  "Integration activity for all classes",
			AlarmMinutes: 5,
		},
		{
			ID:           "2",
			Title:        "Teacher Council",
			Type:         model.TypeMeeting,
			Date:         model.DayString(now.AddDate(0, 0, 7)),
			Priority:     model.PriorityMedium,
			Color:        "#2196F3",
			Description:  "Monthly council meeting",
			AlarmMinutes: 15,
		},
	}
}
