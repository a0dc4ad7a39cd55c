package attendance

import (
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/roster"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster() roster.DutyRoster {
	return roster.DutyRoster{
		DutyTimes: []roster.DutyTime{
			{Type: roster.DutyDefault, Time: "08:00"},
			{Type: roster.DutyEarly, Time: "07:00"},
			{Type: roster.DutyAcademic, Time: "08:30"},
		},
		DailyOverrides: []roster.DailyOverride{
			{Date: "2024-03-05", EarlyDuty: []string{testStaff}},
		},
		SpecialDuties: []roster.SpecialDuty{
			{Name: "Exam Week", Time: "09:00", From: "2024-03-11", To: "2024-03-15"},
		},
		PublicHolidays: []roster.Holiday{
			{Name: "Founders Day", Date: "2024-03-07"},
		},
	}
}

func TestResolveSchedule(t *testing.T) {
	admin := staff.Staff{ID: testStaff, Type: staff.TypeAdmin}
	academic := staff.Staff{ID: "S100", Type: staff.TypeAcademic}

	tests := []struct {
		name       string
		staff      staff.Staff
		date       string
		firstPunch string
		roster     roster.DutyRoster
		wantIn     string
		wantSource ScheduleSource
	}{
		{"special duty wins over override", admin, "2024-03-12", "07:00:00", withOverride(testRoster(), "2024-03-12"), "09:00:00", ScheduleSpecialDuty},
		{"early duty override", admin, "2024-03-05", "08:00:00", testRoster(), "07:00:00", ScheduleEarlyOverride},
		{"admin near early duty", admin, "2024-03-04", "07:10:00", testRoster(), "07:00:00", ScheduleEarlyHeuristic},
		{"admin far from early duty", admin, "2024-03-04", "07:45:00", testRoster(), "08:00:00", ScheduleDefault},
		{"academic ignores heuristic", academic, "2024-03-04", "07:05:00", testRoster(), "08:30:00", ScheduleTypeDefault},
		{"no punches uses default", admin, "2024-03-04", "", testRoster(), "08:00:00", ScheduleDefault},
		{"empty roster falls back", admin, "2024-03-04", "08:00:00", roster.DutyRoster{}, roster.FallbackTime, ScheduleFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := ResolveSchedule(tt.staff, tt.date, tt.firstPunch, tt.roster)
			assert.Equal(t, tt.wantIn, sched.In)
			assert.Equal(t, tt.wantSource, sched.Source)
		})
	}
}

func withOverride(r roster.DutyRoster, date string) roster.DutyRoster {
	r.DailyOverrides = append(r.DailyOverrides, roster.DailyOverride{Date: date, EarlyDuty: []string{testStaff}})
	return r
}

func TestScheduledOut(t *testing.T) {
	out, err := ScheduledOut("08:00:00")
	require.NoError(t, err)
	assert.Equal(t, "14:00:00", out)

	out, err = ScheduledOut("22:00:00")
	require.NoError(t, err)
	assert.Equal(t, "04:00:00", out)
}

func TestNormalizeRole(t *testing.T) {
	sched := newSchedule("08:00:00", ScheduleDefault, roster.DutyDefault)
	w := NormalizeWindows{Grace: 10, Early: 20, Late: 20}

	tests := []struct {
		name  string
		clock string
		role  attendance.Role
		want  attendance.Role
	}{
		{"early arrival becomes check in", "07:50:00", attendance.RoleUnknown, attendance.RoleCheckIn},
		{"outside early window stays unknown", "07:00:00", attendance.RoleUnknown, attendance.RoleUnknown},
		{"within grace becomes check in", "08:10:00", attendance.RoleCheckOut, attendance.RoleCheckIn},
		{"after grace keeps role", "08:11:00", attendance.RoleCheckOut, attendance.RoleCheckOut},
		{"near shift end becomes check out", "14:15:00", attendance.RoleUnknown, attendance.RoleCheckOut},
		{"break punches never move", "07:55:00", attendance.RoleBreakIn, attendance.RoleBreakIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRole(tt.clock, sched, tt.role, w)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRole_ShiftAfterMidnight(t *testing.T) {
	sched := newSchedule("00:05:00", ScheduleSpecialDuty, "Night")

	got, err := NormalizeRole("23:55:00", sched, attendance.RoleUnknown, DefaultWindows())
	require.NoError(t, err)
	assert.Equal(t, attendance.RoleUnknown, got, "evening punch is not an arrival for the same date")

	got, err = NormalizeRole("00:00:00", sched, attendance.RoleUnknown, DefaultWindows())
	require.NoError(t, err)
	assert.Equal(t, attendance.RoleCheckIn, got)
}

func TestNormalizeRole_CheckOutWrapsMidnight(t *testing.T) {
	sched := newSchedule("20:00:00", ScheduleSpecialDuty, "Night")

	got, err := NormalizeRole("02:10:00", sched, attendance.RoleUnknown, DefaultWindows())
	require.NoError(t, err)
	assert.Equal(t, attendance.RoleCheckOut, got)

	got, err = NormalizeRole("01:55:00", sched, attendance.RoleUnknown, DefaultWindows())
	require.NoError(t, err)
	assert.Equal(t, attendance.RoleCheckOut, got)
}

func TestNormalizePunches(t *testing.T) {
	s := staff.Staff{ID: testStaff, Type: staff.TypeAcademic}
	in := []attendance.Punch{
		p("2024-03-04", "08:20", attendance.RoleUnknown),
		p("2024-03-04", "14:35", attendance.RoleUnknown),
		p("2024-03-04", "12:00", attendance.RoleBreakOut),
	}

	out, err := NormalizePunches(in, s, testRoster(), DefaultWindows())
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, attendance.RoleCheckIn, out[0].Role)
	assert.Equal(t, attendance.RoleCheckOut, out[1].Role)
	assert.Equal(t, attendance.RoleBreakOut, out[2].Role)
	assert.Equal(t, attendance.RoleUnknown, in[0].Role, "input must not be mutated")
}
