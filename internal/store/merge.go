package store

import (
	"errors"

	"agendad/internal/model"
)

// MergeStrategy selects how an imported collection is combined with the
// current one.
type MergeStrategy string

const (
	// StrategyMerge concatenates incoming after current with no filtering;
	// duplicate keys accumulate until the user runs dedup.
	StrategyMerge MergeStrategy = "merge"
	// StrategyReplace discards the current collection entirely.
	StrategyReplace MergeStrategy = "replace"
	// StrategySmart appends only incoming records whose key is absent from
	// the current collection. Incoming records are not filtered against each
	// other, and pre-existing duplicates inside current are preserved.
	StrategySmart MergeStrategy = "smart"
)

var ErrInvalidStrategy = errors.New("store: invalid merge strategy")

func (m MergeStrategy) IsValid() bool {
	switch m {
	case StrategyMerge, StrategyReplace, StrategySmart:
		return true
	}
	return false
}

// MergeResult reports the outcome of an import.
type MergeResult struct {
	Added   int
	Skipped int
	Total   int
}

// Merge combines two collections without mutating either. It returns the
// merged collection and the number of incoming records skipped as duplicates.
// Records never merge field-wise; an incoming record either enters whole or
// is dropped whole.
func Merge(current, incoming []model.Activity, strategy MergeStrategy) ([]model.Activity, int, error) {
	switch strategy {
	case StrategyReplace:
		out := make([]model.Activity, len(incoming))
		copy(out, incoming)
		return out, 0, nil
	case StrategyMerge:
		out := make([]model.Activity, 0, len(current)+len(incoming))
		out = append(out, current...)
		out = append(out, incoming...)
		return out, 0, nil
	case StrategySmart:
		// Incoming is filtered against the current collection only.
		seen := make(map[string]struct{}, len(current))
		for _, a := range current {
			seen[a.DedupKey()] = struct{}{}
		}
		out := make([]model.Activity, len(current), len(current)+len(incoming))
		copy(out, current)
		skipped := 0
		for _, a := range incoming {
			if _, dup := seen[a.DedupKey()]; dup {
				skipped++
				continue
			}
			out = append(out, a)
		}
		return out, skipped, nil
	default:
		return nil, 0, ErrInvalidStrategy
	}
}

// MergeImport applies an imported collection to the store and persists the
// result.
func (s *Store) MergeImport(incoming []model.Activity, strategy MergeStrategy) (MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged, skipped, err := Merge(s.activities, incoming, strategy)
	if err != nil {
		return MergeResult{}, err
	}
	added := len(merged) - len(s.activities)
	if strategy == StrategyReplace {
		added = len(merged)
	}
	s.activities = merged
	res := MergeResult{Added: added, Skipped: skipped, Total: len(merged)}
	if err := s.save(); err != nil {
		return res, err
	}
	s.emit()
	return res, nil
}

// Duplicate pairs a later record with the earlier one sharing its dedup key.
type Duplicate struct {
	Key       string
	Original  model.Activity
	Duplicate model.Activity
}

// FindDuplicates reports every record whose dedup key was already claimed by
// an earlier record. Three records sharing a key yield two pairs, both
// pointing at the first.
func (s *Store) FindDuplicates() []Duplicate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findDuplicates()
}

// findDuplicates requires s.mu held.
func (s *Store) findDuplicates() []Duplicate {
	first := make(map[string]model.Activity)
	var dups []Duplicate
	for _, a := range s.activities {
		key := a.DedupKey()
		orig, ok := first[key]
		if !ok {
			first[key] = a
			continue
		}
		dups = append(dups, Duplicate{Key: key, Original: orig, Duplicate: a})
	}
	return dups
}

func (s *Store) CountDuplicates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findDuplicates())
}

// RemoveDuplicates keeps the first occurrence of each dedup key and drops the
// rest, returning how many were removed. Running it twice removes nothing the
// second time.
func (s *Store) RemoveDuplicates() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(s.activities))
	kept := s.activities[:0]
	removed := 0
	for _, a := range s.activities {
		key := a.DedupKey()
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, a)
	}
	if removed == 0 {
		return 0, nil
	}
	s.activities = kept
	if err := s.save(); err != nil {
		return removed, err
	}
	s.emit()
	return removed, nil
}
