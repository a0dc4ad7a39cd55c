package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noisyDay() []attendance.Punch {
	return []attendance.Punch{
		p("2024-03-04", "07:50:00", attendance.RoleUnknown),
		p("2024-03-04", "07:50:20", attendance.RoleCheckIn),
		p("2024-03-04", "12:00:00", attendance.RoleBreakOut),
		p("2024-03-04", "12:00:30", attendance.RoleBreakIn),
		p("2024-03-04", "13:00:00", attendance.RoleBreakOut),
		p("2024-03-04", "13:05:00", attendance.RoleBreakOut),
		p("2024-03-04", "13:40:00", attendance.RoleBreakIn),
		p("2024-03-04", "17:00:00", attendance.RoleCheckOut),
	}
}

func cleanInput() CleanInput {
	return CleanInput{Staff: labor(), Roster: testRoster(), Policy: policy.Default()}
}

func TestEngine_Clean(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	res, err := engine.Clean(noisyDay(), nil, cleanInput())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"07:50:00 CHECK_IN",
		"13:00:00 BREAK_OUT",
		"13:40:00 BREAK_IN",
		"17:00:00 CHECK_OUT",
	}, clocks(res.Cleaned))
	assert.Len(t, res.DeviceLogs, 8)
	assert.Empty(t, res.CorrectionLogs)
	assert.Len(t, res.FinePairs, 1)

	reasons := map[attendance.RemovalReason]int{}
	for _, r := range res.Removed {
		reasons[r.Reason]++
	}
	assert.Equal(t, map[attendance.RemovalReason]int{
		attendance.ReasonDuplicate:    1,
		attendance.ReasonCancellation: 2,
		attendance.ReasonNoise:        1,
	}, reasons)
	assert.Equal(t, len(res.DeviceLogs), len(res.Cleaned)+len(res.Removed))
}

func TestEngine_Clean_SkipCancellation(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	in := cleanInput()
	in.SkipCancellation = true

	res, err := engine.Clean(noisyDay(), nil, in)
	require.NoError(t, err)

	assert.Len(t, res.Cleaned, 6)
	assert.Empty(t, res.FinePairs)
}

func TestEngine_Clean_CorrectionsAreNotNormalized(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	corrections := []attendance.CorrectionRequest{
		{ID: "c1", StaffID: testStaff, Date: "2024-03-04", Type: attendance.CorrectionCheckOut, RequestedTime: "08:05"},
	}

	res, err := engine.Clean(nil, corrections, cleanInput())
	require.NoError(t, err)

	require.Len(t, res.Cleaned, 1)
	assert.Equal(t, attendance.RoleCheckOut, res.Cleaned[0].Role)
	assert.Equal(t, attendance.SourceCorrection, res.Cleaned[0].Source)
}

func TestEngine_Reconcile_PendingCorrectionFillsCheckIn(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	res, err := engine.Reconcile(ReconcileInput{
		CleanInput: cleanInput(),
		Start:      mustDate(t, "2024-03-04"),
		End:        mustDate(t, "2024-03-04"),
		Corrections: []attendance.CorrectionRequest{
			{ID: "c1", StaffID: testStaff, Date: "2024-03-04", Type: attendance.CorrectionCheckIn, RequestedTime: "07:55", Status: attendance.CorrectionPending},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Days, 1)
	assert.Equal(t, "07:55:00", res.Days[0].FirstCheckIn)
	assert.False(t, res.Days[0].MissingCheckIn)
	assert.True(t, res.Days[0].MissingCheckOut)
}

func TestEngine_Reconcile_NoisyDay(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	res, err := engine.Reconcile(ReconcileInput{
		CleanInput: cleanInput(),
		Start:      mustDate(t, "2024-03-04"),
		End:        mustDate(t, "2024-03-05"),
		Device:     noisyDay(),
	})
	require.NoError(t, err)

	require.Len(t, res.Days, 2)
	day := res.Days[0]
	assert.Equal(t, "07:50:00", day.FirstCheckIn)
	assert.Equal(t, "17:00:00", day.LastCheckOut)
	assert.Equal(t, 0, day.LateMinutes)
	assert.Equal(t, 40, day.BreakMinutes)
	assert.Len(t, day.Breaks, 2)
}

func TestEngine_Reconcile_ShiftAfterMidnightLateness(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	in := cleanInput()
	in.Roster.SpecialDuties = []roster.SpecialDuty{
		{Name: "Night Audit", Time: "00:05", From: "2024-03-04", To: "2024-03-04"},
	}

	res, err := engine.Reconcile(ReconcileInput{
		CleanInput: in,
		Start:      mustDate(t, "2024-03-04"),
		End:        mustDate(t, "2024-03-04"),
		Device:     []attendance.Punch{p("2024-03-04", "23:55:00", attendance.RoleUnknown)},
	})
	require.NoError(t, err)
	require.Len(t, res.Days, 1)
	assert.Empty(t, res.Days[0].FirstCheckIn)
	assert.Equal(t, 0, res.Days[0].LateMinutes)

	res, err = engine.Reconcile(ReconcileInput{
		CleanInput: in,
		Start:      mustDate(t, "2024-03-04"),
		End:        mustDate(t, "2024-03-04"),
		Device: []attendance.Punch{
			p("2024-03-04", "00:00:00", attendance.RoleUnknown),
			p("2024-03-04", "23:55:00", attendance.RoleUnknown),
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Days, 1)
	assert.Equal(t, "00:00:00", res.Days[0].FirstCheckIn)
	assert.LessOrEqual(t, res.Days[0].LateMinutes, 5)
}

func TestEngine_Reconcile_InvalidRange(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	_, err := engine.Reconcile(ReconcileInput{
		CleanInput: cleanInput(),
		Start:      mustDate(t, "2024-03-05"),
		End:        mustDate(t, "2024-03-04"),
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidDateRange)
}

func TestEngine_Threshold(t *testing.T) {
	pol := policy.Default()
	pol.Punch.DuplicateThreshold = 30 * time.Second

	assert.Equal(t, 30*time.Second, NewEngine(DefaultOptions()).Threshold(pol))
	assert.Equal(t, policy.DefaultDuplicateThreshold, NewEngine(DefaultOptions()).Threshold(policy.AttendancePolicy{}))

	opts := DefaultOptions()
	opts.DuplicateThreshold = 10 * time.Second
	assert.Equal(t, 10*time.Second, NewEngine(opts).Threshold(pol))
}

func TestNewEngine_FillsDefaults(t *testing.T) {
	engine := NewEngine(Options{})
	opts := engine.Options()

	assert.Equal(t, BreakSequenceStrict, opts.BreakMode)
	assert.Equal(t, DefaultWindows(), opts.Windows)
	assert.Equal(t, NormalizeWindows{Grace: 10, Early: 20, Late: 20}, opts.Windows)
	assert.Equal(t, "v2", opts.WorkCodes.Version)
	assert.Equal(t, time.UTC, opts.Location)
	assert.Equal(t, DefaultWeekend, opts.Weekend)
	assert.False(t, opts.EnableCancellation)
}
