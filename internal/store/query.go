package store

import (
	"sort"
	"strings"
	"time"

	"agendad/internal/model"
)

// SortKey orders a query result.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByPriority SortKey = "priority"
	SortByType     SortKey = "type"
	SortByTitle    SortKey = "title"
)

// Query filters and orders the collection for the list view and the command
// palette. Zero values mean "no filter".
type Query struct {
	Type   model.Type
	Search string
	Sort   SortKey
}

// List returns activities matching the query. Search matches title and
// description, case-insensitive. Relative order of equal keys follows
// insertion order.
func (s *Store) List(q Query) []model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	var out []model.Activity
	for _, a := range s.activities {
		if q.Type != "" && a.Type != q.Type {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.Description), needle) {
			continue
		}
		out = append(out, a)
	}
	switch q.Sort {
	case SortByPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Weight() > out[j].Priority.Weight()
		})
	case SortByType:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Type < out[j].Type
		})
	case SortByTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Date != out[j].Date {
				return out[i].Date < out[j].Date
			}
			return out[i].Time < out[j].Time
		})
	}
	return out
}

// Upcoming returns the next n activities starting today or later, soonest
// first. n <= 0 returns all of them.
func (s *Store) Upcoming(n int) []model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := model.DayString(s.now())
	var out []model.Activity
	for _, a := range s.activities {
		day := a.Date
		if a.EndDate != "" && a.EndDate > day {
			day = a.EndDate
		}
		if day >= today {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// OnDay returns activities whose date span covers the given civil day.
func (s *Store) OnDay(day time.Time) []model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	str := model.DayString(day)
	var out []model.Activity
	for _, a := range s.activities {
		end := a.EndDate
		if end == "" {
			end = a.Date
		}
		if a.Date <= str && str <= end {
			out = append(out, a)
		}
	}
	return out
}

// Stats summarizes the collection for the dashboard.
type Stats struct {
	Total      int
	ByType     map[model.Type]int
	ByPriority map[model.Priority]int
	Today      int
	Upcoming   int
	WithAlarms int
	Duplicates int
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := model.DayString(s.now())
	st := Stats{
		ByType:     make(map[model.Type]int),
		ByPriority: make(map[model.Priority]int),
	}
	for _, a := range s.activities {
		st.Total++
		st.ByType[a.Type]++
		st.ByPriority[a.Priority]++
		end := a.EndDate
		if end == "" {
			end = a.Date
		}
		if a.Date <= today && today <= end {
			st.Today++
		}
		if end >= today {
			st.Upcoming++
		}
		if a.AlarmMinutes > 0 {
			st.WithAlarms++
		}
	}
	st.Duplicates = len(s.findDuplicates())
	return st
}
