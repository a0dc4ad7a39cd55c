package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
)

type timedPunch struct {
	attendance.Punch
	secs int
}

func (t timedPunch) dayKey() string {
	return t.StaffID + "|" + t.Date
}

// toTimed parses every punch and returns them sorted by (date, time).
// Ties keep their input order.
func toTimed(punches []attendance.Punch) ([]timedPunch, error) {
	out := make([]timedPunch, len(punches))
	for i, p := range punches {
		if _, err := timeutil.ParseDate(p.Date); err != nil {
			return nil, fmt.Errorf("punch %d: %w", i, err)
		}
		secs, err := timeutil.ParseClock(p.Time)
		if err != nil {
			return nil, fmt.Errorf("punch %d: %w", i, err)
		}
		p.Time = timeutil.FormatSeconds(secs)
		out[i] = timedPunch{Punch: p, secs: secs}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].secs < out[j].secs
	})
	return out, nil
}

func fromTimed(ts []timedPunch) []attendance.Punch {
	out := make([]attendance.Punch, len(ts))
	for i, t := range ts {
		out[i] = t.Punch
	}
	return out
}

// SortPunches returns a copy ordered by (date, time).
func SortPunches(punches []attendance.Punch) ([]attendance.Punch, error) {
	ts, err := toTimed(punches)
	if err != nil {
		return nil, err
	}
	return fromTimed(ts), nil
}

func withinThreshold(a, b int, threshold time.Duration) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return time.Duration(d)*time.Second <= threshold
}

func removed(p attendance.Punch, reason attendance.RemovalReason) attendance.RemovedPunch {
	return attendance.RemovedPunch{Punch: p, Reason: reason}
}
