package attendance

import (
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
)

var leaveCategories = []attendance.LeaveCategory{
	attendance.LeaveSickForm,
	attendance.LeaveSickMC,
	attendance.LeaveFRL,
	attendance.LeaveAnnual,
	attendance.LeaveHajju,
	attendance.LeaveUmra,
	attendance.LeaveNoPay,
	attendance.LeaveSpecial,
}

// Summarize tallies processed days and leave records against the policy limits.
// A workday without punches and without leave counts as an absence.
func Summarize(staffID string, days []attendance.ProcessedAttendance, leaves []attendance.LeaveRecord, limits policy.LeaveLimits) attendance.Summary {
	s := attendance.Summary{
		StaffID: staffID,
		Leaves:  make(map[attendance.LeaveCategory]attendance.LeaveUsage),
	}
	if len(days) > 0 {
		s.StartDate = days[0].Date
		s.EndDate = days[len(days)-1].Date
	}

	onLeave := make(map[string]attendance.LeaveCategory)
	for _, l := range leaves {
		if l.StaffID != "" && l.StaffID != staffID {
			continue
		}
		if s.StartDate != "" && (l.Date < s.StartDate || l.Date > s.EndDate) {
			continue
		}
		if _, dup := onLeave[l.Date]; dup {
			continue
		}
		onLeave[l.Date] = l.Category
	}

	used := make(map[attendance.LeaveCategory]int)
	for _, d := range days {
		workday := !d.IsWeekend && !d.IsHoliday
		if workday {
			s.WorkingDays++
		}

		switch {
		case d.Present():
			s.DaysAttended++
			if d.LateMinutes > 0 {
				s.LateDays++
				s.TotalLateMinutes += d.LateMinutes
			}
			if d.MissingCheckIn || d.MissingCheckOut {
				s.MissingPunches++
			}
		case onLeave[d.Date] != "":
			used[onLeave[d.Date]]++
		case workday:
			s.Absents++
		}

		s.TotalLateFine += d.LateFine
		s.TotalBreakFine += d.BreakFine
	}

	for _, c := range leaveCategories {
		s.Leaves[c] = usage(used[c], limitFor(limits, c))
	}
	s.Leaves[attendance.LeaveAbsent] = usage(s.Absents, limits.Absents)
	s.Leaves[attendance.LeaveDaysPresent] = usage(s.DaysAttended, limits.DaysAttended)
	return s
}

func usage(used int, limit *int) attendance.LeaveUsage {
	u := attendance.LeaveUsage{Used: used, Limit: limit}
	if limit != nil && used > *limit {
		u.Exceeded = true
	}
	return u
}

func limitFor(l policy.LeaveLimits, c attendance.LeaveCategory) *int {
	switch c {
	case attendance.LeaveSickForm:
		return l.SickForm
	case attendance.LeaveSickMC:
		return l.SickMC
	case attendance.LeaveFRL:
		return l.FRL
	case attendance.LeaveAnnual:
		return l.Annual
	case attendance.LeaveHajju:
		return l.Hajju
	case attendance.LeaveUmra:
		return l.Umra
	case attendance.LeaveNoPay:
		return l.NoPay
	case attendance.LeaveSpecial:
		return l.Special
	}
	return nil
}
