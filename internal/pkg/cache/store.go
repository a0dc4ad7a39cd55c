package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
)

const DefaultMaxPeriods = 24

type entry[T any] struct {
	coverage Coverage
	periods  map[string][]T
}

// Store keeps records per owner key grouped in "YYYY-MM" periods together
// with the coverage window they were fetched for.
type Store[T any] struct {
	mu         sync.RWMutex
	entries    map[string]*entry[T]
	dateOf     func(T) string
	keyOf      func(T) string
	maxPeriods int
}

func NewStore[T any](dateOf, keyOf func(T) string, maxPeriods int) *Store[T] {
	if maxPeriods <= 0 {
		maxPeriods = DefaultMaxPeriods
	}
	return &Store[T]{
		entries:    make(map[string]*entry[T]),
		dateOf:     dateOf,
		keyOf:      keyOf,
		maxPeriods: maxPeriods,
	}
}

func (s *Store[T]) Coverage(owner string) Coverage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[owner]; ok {
		return e.coverage
	}
	return Coverage{}
}

// Range returns the owner's records dated within [from, to], oldest period first.
func (s *Store[T]) Range(owner string, from, to time.Time) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[owner]
	if !ok {
		return nil
	}

	f, t := timeutil.FormatDate(from), timeutil.FormatDate(to)
	var out []T
	for _, period := range sortedPeriods(e.periods) {
		if period < timeutil.PeriodKey(f) || period > timeutil.PeriodKey(t) {
			continue
		}
		for _, r := range e.periods[period] {
			if d := s.dateOf(r); d >= f && d <= t {
				out = append(out, r)
			}
		}
	}
	return out
}

// Apply merges a completed fetch into the owner's records and advances coverage.
func (s *Store[T]) Apply(owner string, plan Plan, fresh []T) {
	if !plan.ShouldFetch {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[owner]
	if !ok {
		e = &entry[T]{periods: make(map[string][]T)}
		s.entries[owner] = e
	}

	var held []T
	for _, period := range sortedPeriods(e.periods) {
		held = append(held, e.periods[period]...)
	}

	merged := MergeByRange(held, fresh, timeutil.FormatDate(plan.From), timeutil.FormatDate(plan.To), s.dateOf, s.keyOf)

	e.periods = make(map[string][]T)
	for _, r := range merged {
		p := timeutil.PeriodKey(s.dateOf(r))
		e.periods[p] = append(e.periods[p], r)
	}
	e.coverage = e.coverage.Apply(plan)
}

// Prune drops periods older than the previous calendar year and keeps at most
// maxPeriods per owner. It returns the number of periods dropped.
func (s *Store[T]) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	dropped := 0

	for owner, e := range s.entries {
		periods := sortedPeriods(e.periods)
		keepFrom := cutoff
		for i, p := range periods {
			start, err := time.Parse("2006-01", p)
			if err != nil || start.Before(cutoff) || len(periods)-i > s.maxPeriods {
				delete(e.periods, p)
				dropped++
				continue
			}
			if start.After(keepFrom) && len(periods)-i == s.maxPeriods && i > 0 {
				keepFrom = start
			}
		}

		if !e.coverage.Empty() && e.coverage.From.Before(keepFrom) {
			e.coverage.From = keepFrom
			if e.coverage.From.After(e.coverage.To) {
				e.coverage = Coverage{}
			}
		}
		if len(e.periods) == 0 && e.coverage.Empty() {
			delete(s.entries, owner)
		}
	}
	return dropped
}

func (s *Store[T]) Reset(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, owner)
}

func sortedPeriods[T any](periods map[string][]T) []string {
	keys := make([]string, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
