package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidType     = errors.New("model: invalid activity type")
	ErrInvalidPriority = errors.New("model: invalid activity priority")
	ErrInvalidDate     = errors.New("model: invalid date")
	ErrInvalidTime     = errors.New("model: invalid time")
)

// DateLayout is the civil-date wire format: no timezone, local calendar only.
const DateLayout = "2006-01-02"

// TimeLayout is the optional time-of-day wire format.
const TimeLayout = "15:04"

type Type string

const (
	TypeActivity      Type = "activity"
	TypeMeeting       Type = "meeting"
	TypeCommemoration Type = "commemoration"
	TypeReminder      Type = "reminder"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeActivity, TypeMeeting, TypeCommemoration, TypeReminder:
		return true
	default:
		return false
	}
}

// Types lists all activity types in display order.
func Types() []Type {
	return []Type{TypeActivity, TypeMeeting, TypeCommemoration, TypeReminder}
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Weight orders priorities for sorting, highest first.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Activity is the sole schedulable record: a dated event with optional
// time-of-day, optional end date, and alarm configuration. Field names match
// the persisted JSON snapshot, so older snapshots load without migration.
type Activity struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        Type     `json:"type"`
	Date        string   `json:"date"`
	EndDate     string   `json:"endDate,omitempty"`
	Time        string   `json:"time,omitempty"`
	Priority    Priority `json:"priority"`
	Color       string   `json:"color"`
	Description string   `json:"description,omitempty"`

	// Alarm bookkeeping. AlarmMinutes == 0 disables the alarm entirely;
	// LastAlarmTriggeredDate holds the civil day the alarm last fired and
	// guards against firing more than once per day.
	AlarmMinutes           int    `json:"alarmMinutes"`
	AlarmTriggered         bool   `json:"alarmTriggered"`
	LastAlarmTriggeredDate string `json:"lastAlarmTriggeredDate"`
}

func (a Activity) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("model: activity id is required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return errors.New("model: activity title is required")
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, a.Type)
	}
	if !a.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, a.Priority)
	}
	start, err := time.Parse(DateLayout, a.Date)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, a.Date)
	}
	if a.EndDate != "" {
		end, endErr := time.Parse(DateLayout, a.EndDate)
		if endErr != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, a.EndDate)
		}
		if end.Before(start) {
			return errors.New("model: end date precedes start date")
		}
	}
	if a.Time != "" {
		if _, timeErr := time.Parse(TimeLayout, a.Time); timeErr != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTime, a.Time)
		}
	}
	if a.AlarmMinutes < 0 {
		return errors.New("model: alarm minutes must be >= 0")
	}
	return nil
}

// DedupKey is the semantic-equality basis for duplicate detection and smart
// merge: two records with the same key describe the same real-world activity
// regardless of id.
func (a Activity) DedupKey() string {
	return strings.ToLower(a.Title) + "_" + a.Date + "_" + string(a.Type)
}

// StartDay returns the activity's date at local midnight in loc.
func (a Activity) StartDay(loc *time.Location) (time.Time, error) {
	return civilDate(a.Date, loc)
}

// EventInstant returns the moment the activity begins: the date at the
// configured time-of-day, or at midnight for all-day activities. The instant
// is built as a wall-clock time in loc, so "10:00" stays 10:00 on the wall
// even when a DST shift makes that day 23 or 25 hours long.
func (a Activity) EventInstant(loc *time.Location) (time.Time, error) {
	day, err := time.Parse(DateLayout, a.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, a.Date)
	}
	y, m, d := day.Date()
	if a.Time == "" {
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	tod, err := time.Parse(TimeLayout, a.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, a.Time)
	}
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, loc), nil
}

// SpanDays returns how many consecutive days the activity covers, endDate
// inclusive. Single-day activities span 1. The count is pure calendar
// arithmetic, independent of timezone and DST.
func (a Activity) SpanDays() int {
	if a.EndDate == "" {
		return 1
	}
	start, err := time.Parse(DateLayout, a.Date)
	if err != nil {
		return 1
	}
	end, err := time.Parse(DateLayout, a.EndDate)
	if err != nil || end.Before(start) {
		return 1
	}
	return int(end.Sub(start)/(24*time.Hour)) + 1
}

func civilDate(s string, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	y, m, d := parsed.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// DaysBetween returns the number of civil days from the day containing `from`
// to the day containing `to`. Both instants are reduced to calendar dates
// first, so a DST-shortened day still counts as one day.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

// DayString formats t as the civil-day string used by LastAlarmTriggeredDate.
func DayString(t time.Time) string {
	return t.Format(DateLayout)
}

// legacyDayLayout is the JavaScript Date.toDateString() shape found in
// snapshots written by the original web app ("Fri Mar 01 2024").
const legacyDayLayout = "Mon Jan 02 2006"

// NormalizeDay coerces a fired-day guard value to DateLayout. Legacy
// toDateString values are converted; anything else passes through unchanged,
// so current-format values and blanks are untouched.
func NormalizeDay(s string) string {
	if s == "" {
		return s
	}
	if _, err := time.Parse(DateLayout, s); err == nil {
		return s
	}
	if t, err := time.Parse(legacyDayLayout, s); err == nil {
		return DayString(t)
	}
	return s
}

// NewID derives a record id from the creation instant.
func NewID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// AlarmLeadText renders an alarm lead time for notifications and list badges.
func AlarmLeadText(minutes int) string {
	switch {
	case minutes <= 0:
		return "now"
	case minutes < 60:
		return fmt.Sprintf("in %d minutes", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("in %d hours", minutes/60)
	default:
		return "tomorrow"
	}
}
