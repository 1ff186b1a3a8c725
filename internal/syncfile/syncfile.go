// Package syncfile reads and writes the human-portable import/export format:
// the snapshot shape extended with export metadata and a marker identifying
// files produced by this program.
package syncfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"agendad/internal/model"
)

// Marker tags files written by this program. Foreign files can still be
// imported, but only after the caller confirms.
const Marker = "agendad"

var (
	// ErrForeignFile reports a decodable file whose marker does not match.
	// The decoded payload is still returned so the caller can offer an
	// "import anyway" confirmation.
	ErrForeignFile = errors.New("syncfile: file was not produced by this program")

	ErrNoActivities = errors.New("syncfile: file contains no activities")
)

// File is the on-disk import/export shape.
type File struct {
	Activities      []model.Activity `json:"activities"`
	LastSave        string           `json:"lastSave,omitempty"`
	Version         string           `json:"version,omitempty"`
	ExportDate      string           `json:"exportDate"`
	TotalActivities int              `json:"totalActivities"`
	SyncType        string           `json:"syncType"`
}

// Export builds a sync file from the current collection.
func Export(activities []model.Activity, version string, now time.Time) File {
	if activities == nil {
		activities = []model.Activity{}
	}
	return File{
		Activities:      activities,
		LastSave:        now.Format(time.RFC3339),
		Version:         version,
		ExportDate:      now.Format(time.RFC3339),
		TotalActivities: len(activities),
		SyncType:        Marker,
	}
}

// Encode renders a sync file as indented JSON, matching what export has
// always produced so files stay diffable.
func Encode(f File) ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("syncfile: encode: %w", err)
	}
	return data, nil
}

// WriteFile writes an export to path.
func WriteFile(path string, f File) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("syncfile: write %s: %w", path, err)
	}
	return nil
}

// Decode parses a sync file. A wrong marker yields ErrForeignFile together
// with the decoded payload; an empty collection yields ErrNoActivities.
// Fired-day guards exported by the original web app in toDateString form are
// normalized to the civil-day format.
func Decode(data []byte) (File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("syncfile: malformed file: %w", err)
	}
	if len(f.Activities) == 0 {
		return f, ErrNoActivities
	}
	for i := range f.Activities {
		f.Activities[i].LastAlarmTriggeredDate = model.NormalizeDay(f.Activities[i].LastAlarmTriggeredDate)
	}
	if f.SyncType != Marker {
		return f, ErrForeignFile
	}
	return f, nil
}

// looseActivity decodes plain exports from other tools, where alarm fields
// may be absent rather than zero.
type looseActivity struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Type         model.Type     `json:"type"`
	Date         string         `json:"date"`
	EndDate      string         `json:"endDate"`
	Time         string         `json:"time"`
	Priority     model.Priority `json:"priority"`
	Color        string         `json:"color"`
	Description  string         `json:"description"`
	AlarmMinutes *int           `json:"alarmMinutes"`
}

func (l looseActivity) validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Title, validation.Required),
		validation.Field(&l.Date, validation.Required, validation.Date(model.DateLayout)),
		validation.Field(&l.Type, validation.Required),
	)
}

// Quarantined pairs a rejected incoming record with the reason, so the
// caller can report what an import dropped.
type Quarantined struct {
	Title  string
	Reason string
}

// DecodeLoose parses a plain activity list: either a bare JSON array or an
// object with an "activities" key. Every record gets a fresh id, so imported
// ids can never collide with existing ones, and a missing alarm lead is
// backfilled with defaultAlarm. Records failing boundary validation are
// quarantined, not fatal; invalid enum values fall back to defaults.
func DecodeLoose(data []byte, defaultAlarm int) ([]model.Activity, []Quarantined, error) {
	var loose []looseActivity
	if err := json.Unmarshal(data, &loose); err != nil {
		var wrapped struct {
			Activities []looseActivity `json:"activities"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, nil, fmt.Errorf("syncfile: malformed import: %w", err)
		}
		loose = wrapped.Activities
	}
	if len(loose) == 0 {
		return nil, nil, ErrNoActivities
	}

	var out []model.Activity
	var rejected []Quarantined
	for _, l := range loose {
		if err := l.validate(); err != nil {
			rejected = append(rejected, Quarantined{Title: l.Title, Reason: err.Error()})
			continue
		}
		a := model.Activity{
			ID:          uuid.NewString(),
			Title:       l.Title,
			Type:        l.Type,
			Date:        l.Date,
			EndDate:     l.EndDate,
			Time:        l.Time,
			Priority:    l.Priority,
			Color:       l.Color,
			Description: l.Description,
		}
		if !a.Type.IsValid() {
			a.Type = model.TypeActivity
		}
		if !a.Priority.IsValid() {
			a.Priority = model.PriorityMedium
		}
		if l.AlarmMinutes != nil && *l.AlarmMinutes >= 0 {
			a.AlarmMinutes = *l.AlarmMinutes
		} else {
			a.AlarmMinutes = defaultAlarm
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil, rejected, ErrNoActivities
	}
	return out, rejected, nil
}

// ReadFile loads and decodes a sync file from path.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("syncfile: read %s: %w", path, err)
	}
	return Decode(data)
}
