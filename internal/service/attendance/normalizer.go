package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/roster"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
)

const (
	shiftLengthMinutes   = 6 * 60
	earlyHeuristicWindow = 30 * 60
	halfDaySeconds       = timeutil.SecondsInDay / 2
)

type ScheduleSource string

const (
	ScheduleSpecialDuty    ScheduleSource = "special_duty"
	ScheduleEarlyOverride  ScheduleSource = "early_override"
	ScheduleEarlyHeuristic ScheduleSource = "early_heuristic"
	ScheduleTypeDefault    ScheduleSource = "type_default"
	ScheduleDefault        ScheduleSource = "default"
	ScheduleFallback       ScheduleSource = "fallback"
)

// Schedule is the resolved shift window of one staff member on one date.
type Schedule struct {
	In     string
	Out    string
	Source ScheduleSource
	Name   string
}

// NormalizeWindows are the tolerances around the shift edges, in minutes.
type NormalizeWindows struct {
	Grace int
	Early int
	Late  int
}

// DefaultWindows matches the documented 08:00 example: 07:50 is an arrival, 07:00 is not.
func DefaultWindows() NormalizeWindows {
	return NormalizeWindows{Grace: 10, Early: 20, Late: 20}
}

// ResolveSchedule picks the scheduled in-time for staff on date.
//
// Precedence: special duty, EarlyDuty override, near-early heuristic for
// Admin and Labor staff based on the day's first punch, type default, then
// DefaultSchedule. A roster without any usable entry yields the built-in
// fallback instead of an error.
func ResolveSchedule(s staff.Staff, date, firstPunch string, r roster.DutyRoster) Schedule {
	if duty, ok := r.SpecialDutyOn(date); ok {
		if in, ok := normalizedDuty(duty.Time); ok {
			return newSchedule(in, ScheduleSpecialDuty, duty.Name)
		}
	}

	early, hasEarly := dutyTime(r, roster.DutyEarly)

	if hasEarly && r.IsEarlyDuty(s.ID, date) {
		return newSchedule(early, ScheduleEarlyOverride, roster.DutyEarly)
	}

	if hasEarly && firstPunch != "" && (s.Type == staff.TypeAdmin || s.Type == staff.TypeLabor) {
		if near(firstPunch, early, earlyHeuristicWindow) {
			return newSchedule(early, ScheduleEarlyHeuristic, roster.DutyEarly)
		}
	}

	if s.Type == staff.TypeAcademic {
		if in, ok := dutyTime(r, roster.DutyAcademic); ok {
			return newSchedule(in, ScheduleTypeDefault, roster.DutyAcademic)
		}
	}

	if in, ok := dutyTime(r, roster.DutyDefault); ok {
		return newSchedule(in, ScheduleDefault, roster.DutyDefault)
	}

	return newSchedule(roster.FallbackTime, ScheduleFallback, roster.DutyDefault)
}

// ScheduledOut is the scheduled in-time plus six hours, wrapping at midnight.
func ScheduledOut(in string) (string, error) {
	return timeutil.AddMinutesWrapped(in, shiftLengthMinutes)
}

// NormalizeRole reclassifies a punch by its distance to the shift edges.
// Break roles are never reclassified.
func NormalizeRole(clock string, sched Schedule, role attendance.Role, w NormalizeWindows) (attendance.Role, error) {
	if role.IsBreak() {
		return role, nil
	}

	at, err := timeutil.ParseClock(clock)
	if err != nil {
		return role, err
	}
	in, err := timeutil.ParseClock(sched.In)
	if err != nil {
		return role, err
	}
	out, err := timeutil.ParseClock(sched.Out)
	if err != nil {
		return role, err
	}

	// Check-in is measured linearly on the punch's own date.
	if d := at - in; d >= -w.Early*60 && d <= w.Grace*60 {
		return attendance.RoleCheckIn, nil
	}
	// Scheduled out may wrap past midnight.
	if d := circularDiff(at, out); d >= -w.Grace*60 && d <= w.Late*60 {
		return attendance.RoleCheckOut, nil
	}
	return role, nil
}

// NormalizePunches applies NormalizeRole to every punch using each day's resolved schedule.
func NormalizePunches(punches []attendance.Punch, s staff.Staff, r roster.DutyRoster, w NormalizeWindows) ([]attendance.Punch, error) {
	firsts, err := firstPunchByDate(punches)
	if err != nil {
		return nil, err
	}

	schedules := make(map[string]Schedule, len(firsts))
	out := make([]attendance.Punch, len(punches))
	for i, p := range punches {
		sched, ok := schedules[p.Date]
		if !ok {
			sched = ResolveSchedule(s, p.Date, firsts[p.Date], r)
			schedules[p.Date] = sched
		}

		role, err := NormalizeRole(p.Time, sched, p.Role, w)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize punch %s %s: %w", p.Date, p.Time, err)
		}
		p.Role = role
		out[i] = p
	}
	return out, nil
}

func firstPunchByDate(punches []attendance.Punch) (map[string]string, error) {
	firsts := make(map[string]string)
	firstSecs := make(map[string]int)
	for _, p := range punches {
		secs, err := timeutil.ParseClock(p.Time)
		if err != nil {
			return nil, err
		}
		if cur, ok := firstSecs[p.Date]; !ok || secs < cur {
			firstSecs[p.Date] = secs
			firsts[p.Date] = timeutil.FormatSeconds(secs)
		}
	}
	return firsts, nil
}

func newSchedule(in string, source ScheduleSource, name string) Schedule {
	out, err := ScheduledOut(in)
	if err != nil {
		out = in
	}
	return Schedule{In: in, Out: out, Source: source, Name: name}
}

func dutyTime(r roster.DutyRoster, dutyType string) (string, bool) {
	t, ok := r.DutyTime(dutyType)
	if !ok {
		return "", false
	}
	return normalizedDuty(t)
}

func normalizedDuty(t string) (string, bool) {
	n, err := timeutil.NormalizeClock(t)
	if err != nil {
		return "", false
	}
	return n, true
}

func near(a, b string, windowSecs int) bool {
	as, err := timeutil.ParseClock(a)
	if err != nil {
		return false
	}
	bs, err := timeutil.ParseClock(b)
	if err != nil {
		return false
	}
	d := circularDiff(as, bs)
	return d >= -windowSecs && d <= windowSecs
}

// circularDiff returns a-b in seconds folded into (-12h, 12h].
func circularDiff(a, b int) int {
	d := (a - b) % timeutil.SecondsInDay
	if d > halfDaySeconds {
		d -= timeutil.SecondsInDay
	} else if d <= -halfDaySeconds {
		d += timeutil.SecondsInDay
	}
	return d
}
