package update

import (
	"time"

	"agendad/internal/model"
)

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

var typeLabels = map[model.Type]string{
	model.TypeActivity:      "activity",
	model.TypeMeeting:       "meeting",
	model.TypeCommemoration: "commemoration",
	model.TypeReminder:      "reminder",
}

// dateBadge buckets an activity's span relative to today.
func dateBadge(a model.Activity, today string) string {
	end := a.EndDate
	if end == "" {
		end = a.Date
	}
	switch {
	case end < today:
		return "PAST"
	case a.Date <= today && today <= end:
		return "TODAY"
	default:
		return "UPCOMING"
	}
}
