package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/roster"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
)

// DefaultWeekend is Friday and Saturday.
var DefaultWeekend = []time.Weekday{time.Friday, time.Saturday}

type ProcessInput struct {
	Staff   staff.Staff
	Start   time.Time
	End     time.Time
	Roster  roster.DutyRoster
	Policy  policy.AttendancePolicy
	Weekend []time.Weekday
}

type dayState struct {
	record    attendance.ProcessedAttendance
	lastBreak map[attendance.Role]int
}

// ProcessAttendance aggregates a clean punch stream into one record per date
// in [Start, End]. The first CHECK_IN and the last CHECK_OUT of a day win.
// Break entries always alternate starting with (OUT): an entry that arrives
// out of turn is preceded by a placeholder flagged Missing.
func ProcessAttendance(punches []attendance.Punch, in ProcessInput) ([]attendance.ProcessedAttendance, error) {
	dates, err := timeutil.DateRange(in.Start, in.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrInvalidDateRange, err)
	}

	sorted, err := toTimed(punches)
	if err != nil {
		return nil, err
	}
	if in.Staff.ID != "" {
		own := sorted[:0]
		for _, p := range sorted {
			if p.StaffID == "" || p.StaffID == in.Staff.ID {
				own = append(own, p)
			}
		}
		sorted = own
	}

	firsts, err := firstPunchByDate(fromTimed(sorted))
	if err != nil {
		return nil, err
	}

	threshold := in.Policy.Threshold()
	grace := in.Policy.Late.GracePeriodMinutes
	days := make(map[string]*dayState)

	for _, p := range sorted {
		st, ok := days[p.Date]
		if !ok {
			st = &dayState{lastBreak: make(map[attendance.Role]int)}
			days[p.Date] = st
		}
		rec := &st.record

		switch p.Role {
		case attendance.RoleCheckIn:
			if rec.FirstCheckIn != "" {
				continue
			}
			rec.FirstCheckIn = p.Time
			sched := ResolveSchedule(in.Staff, p.Date, firsts[p.Date], in.Roster)
			late, err := lateMinutes(p.Time, sched.In, grace)
			if err != nil {
				return nil, err
			}
			rec.LateMinutes = late

		case attendance.RoleCheckOut:
			rec.LastCheckOut = p.Time

		case attendance.RoleBreakIn, attendance.RoleBreakOut:
			if last, ok := st.lastBreak[p.Role]; ok && withinThreshold(p.secs, last, threshold) {
				continue
			}
			st.lastBreak[p.Role] = p.secs
			appendBreak(rec, p.Role, p.Time)
		}
	}

	weekend := in.Weekend
	if len(weekend) == 0 {
		weekend = DefaultWeekend
	}

	out := make([]attendance.ProcessedAttendance, 0, len(dates))
	for _, date := range dates {
		var rec attendance.ProcessedAttendance
		if st, ok := days[date]; ok {
			rec = st.record
		}
		if err := finalizeDay(&rec, date, firsts[date], in, weekend); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func appendBreak(rec *attendance.ProcessedAttendance, role attendance.Role, clock string) {
	entry := attendance.BreakInEntry
	if role == attendance.RoleBreakOut {
		entry = attendance.BreakOutEntry
	}

	expected := attendance.BreakOutEntry
	if n := len(rec.Breaks); n > 0 && rec.Breaks[n-1].Type == attendance.BreakOutEntry {
		expected = attendance.BreakInEntry
	}
	if entry != expected {
		rec.Breaks = append(rec.Breaks, attendance.BreakEntry{Type: expected, Missing: true})
	}

	rec.Breaks = append(rec.Breaks, attendance.BreakEntry{Time: clock, Type: entry})
	if role == attendance.RoleBreakOut {
		rec.LastBreakTimes.BreakOut = clock
	} else {
		rec.LastBreakTimes.BreakIn = clock
	}
}

func finalizeDay(rec *attendance.ProcessedAttendance, date, firstPunch string, in ProcessInput, weekend []time.Weekday) error {
	t, err := timeutil.ParseDate(date)
	if err != nil {
		return err
	}

	rec.StaffID = in.Staff.ID
	rec.Date = date
	rec.Day = t.Weekday().String()
	rec.ScheduledIn = ResolveSchedule(in.Staff, date, firstPunch, in.Roster).In
	rec.IsHoliday = in.Roster.IsHoliday(date)
	for _, wd := range weekend {
		if t.Weekday() == wd {
			rec.IsWeekend = true
		}
	}
	if rec.Breaks == nil {
		rec.Breaks = []attendance.BreakEntry{}
	}

	workday := !rec.IsWeekend && !rec.IsHoliday
	switch in.Policy.Punch.MissingPunchPolicy {
	case policy.MissingPunchIgnore:
	case policy.MissingPunchAutoFill:
		if workday && rec.Present() {
			if rec.FirstCheckIn == "" {
				rec.FirstCheckIn = rec.ScheduledIn
			}
			if rec.LastCheckOut == "" {
				out, err := ScheduledOut(rec.ScheduledIn)
				if err != nil {
					return err
				}
				rec.LastCheckOut = out
			}
		}
		rec.MissingCheckIn = workday && rec.FirstCheckIn == ""
		rec.MissingCheckOut = workday && rec.LastCheckOut == ""
	default:
		rec.MissingCheckIn = workday && rec.FirstCheckIn == ""
		rec.MissingCheckOut = workday && rec.LastCheckOut == ""
	}

	outs, ins := 0, 0
	for _, b := range rec.Breaks {
		if b.Type == attendance.BreakOutEntry {
			outs++
		} else {
			ins++
		}
	}
	if outs != ins {
		rec.Breaks[len(rec.Breaks)-1].Missing = true
	}

	return applyBreakPolicy(rec, in.Policy)
}

func applyBreakPolicy(rec *attendance.ProcessedAttendance, p policy.AttendancePolicy) error {
	total := 0
	for i := 0; i+1 < len(rec.Breaks); i++ {
		o, n := rec.Breaks[i], rec.Breaks[i+1]
		if o.Type != attendance.BreakOutEntry || n.Type != attendance.BreakInEntry || o.Missing || n.Missing {
			continue
		}
		start, err := timeutil.ParseClock(o.Time)
		if err != nil {
			return err
		}
		end, err := timeutil.ParseClock(n.Time)
		if err != nil {
			return err
		}
		if end > start {
			total += (end - start) / 60
		}
		i++
	}

	rec.BreakMinutes = total
	if p.Break.MaxMinutes > 0 && total > p.Break.MaxMinutes {
		rec.ExcessBreakMinutes = total - p.Break.MaxMinutes
	}
	rec.LateFine = float64(rec.LateMinutes) * p.Late.FinePerMinute
	if p.Break.ApplyFineForExcess {
		rec.BreakFine = float64(rec.ExcessBreakMinutes) * p.Late.FinePerMinute
	}
	return nil
}

// lateMinutes is max(0, actual - (scheduled + grace)) in whole minutes.
func lateMinutes(actual, scheduled string, grace int) (int, error) {
	a, err := timeutil.ToMinutes(actual)
	if err != nil {
		return 0, err
	}
	s, err := timeutil.ToMinutes(scheduled)
	if err != nil {
		return 0, err
	}
	if late := a - (s + grace); late > 0 {
		return late, nil
	}
	return 0, nil
}
