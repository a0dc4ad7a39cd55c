package cache

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
)

// Coverage is the window of dates already fetched for one staff member.
// The zero value covers nothing.
type Coverage struct {
	From time.Time
	To   time.Time
}

func (c Coverage) Empty() bool {
	return c.From.IsZero() || c.To.IsZero()
}

// Plan describes the fetch needed to serve a requested range.
type Plan struct {
	ShouldFetch bool
	From        time.Time
	To          time.Time
	// SingleDay patches one date without moving the coverage window.
	SingleDay bool
}

// Plan decides what to fetch for [start, end]. The end is capped to today.
// An already covered range is extended with one day of overlap so late
// punches on the last covered day are picked up.
func (c Coverage) Plan(start, end, today time.Time, force bool) Plan {
	start = timeutil.TruncateDay(start)
	end = timeutil.TruncateDay(end)
	today = timeutil.TruncateDay(today)
	if end.After(today) {
		end = today
	}
	if end.Before(start) {
		return Plan{}
	}

	if start.Equal(end) {
		return Plan{ShouldFetch: true, From: start, To: end, SingleDay: true}
	}

	if force || c.Empty() {
		return Plan{ShouldFetch: true, From: start, To: end}
	}

	if start.Before(c.From) {
		to := end
		if to.Before(c.From) {
			to = c.From
		}
		return Plan{ShouldFetch: true, From: start, To: to}
	}

	if end.After(c.To) {
		return Plan{ShouldFetch: true, From: c.To.AddDate(0, 0, -1), To: end}
	}

	return Plan{}
}

// Apply extends the window with a completed fetch.
func (c Coverage) Apply(p Plan) Coverage {
	if !p.ShouldFetch || p.SingleDay {
		return c
	}
	if c.Empty() {
		return Coverage{From: p.From, To: p.To}
	}
	if p.To.Before(c.From.AddDate(0, 0, -1)) || p.From.After(c.To.AddDate(0, 0, 1)) {
		return c
	}
	if p.From.Before(c.From) {
		c.From = p.From
	}
	if p.To.After(c.To) {
		c.To = p.To
	}
	return c
}

func (c Coverage) Contains(start, end time.Time) bool {
	if c.Empty() {
		return false
	}
	return !timeutil.TruncateDay(start).Before(c.From) && !timeutil.TruncateDay(end).After(c.To)
}
