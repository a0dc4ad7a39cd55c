package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-03-04 08:00:00 UTC
const mondayEight int64 = 1709539200

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStaffRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO staff (id, name, staff_type, join_date, active) VALUES
			('S001', 'Aminath', 'Labor', '2020-01-15', TRUE),
			('S002', 'Hassan', 'Admin', NULL, FALSE),
			('S003', 'Mariyam', 'Academic', NULL, TRUE)
	`)
	require.NoError(t, err)

	repo := postgresql.NewStaffRepository(setup.DB)

	s, err := repo.GetByID(ctx, "S001")
	require.NoError(t, err)
	assert.Equal(t, "Aminath", s.Name)
	assert.Equal(t, staff.TypeLabor, s.Type)
	require.NotNil(t, s.JoinDate)
	assert.Equal(t, "2020-01-15", s.JoinDate.Format("2006-01-02"))

	_, err = repo.GetByID(ctx, "S404")
	assert.ErrorIs(t, err, staff.ErrStaffNotFound)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "S001", active[0].ID)
	assert.Equal(t, "S003", active[1].ID)
}

func TestPunchRepository_ListByStaff(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO attendance_logs (id, staff_id, timestamp, work_code) VALUES
			('d1', 'S001', $1, 0),
			('d2', 'S001', $2, 1),
			('d3', 'S001', $3, 0),
			('d4', 'S002', $1, 0)
	`, mondayEight, mondayEight+9*3600, mondayEight+2*24*3600)
	require.NoError(t, err)

	repo := postgresql.NewPunchRepository(setup.DB)

	records, err := repo.ListByStaff(ctx, "S001", date("2024-03-04"), date("2024-03-04"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "d1", records[0].ID)
	assert.Equal(t, 1, records[1].WorkCode)
}

func TestCorrectionRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewCorrectionRepository(setup.DB)

	created, err := repo.Create(ctx, attendance.CorrectionRequest{
		ID:            "c1",
		StaffID:       "S001",
		Date:          "2024-03-04",
		Type:          attendance.CorrectionCheckIn,
		RequestedTime: "07:55:00",
		Reason:        "forgot to punch",
		CreatedAt:     time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.CorrectionPending, created.EffectiveStatus())

	list, err := repo.List(ctx, "S001", date("2024-03-01"), date("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-03-04", list[0].Date)
	assert.Equal(t, attendance.CorrectionCheckIn, list[0].Type)
	assert.Nil(t, list[0].ReviewedBy)

	reviewer := "HR01"
	reviewedAt := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	created.Status = attendance.CorrectionApproved
	created.ReviewedBy = &reviewer
	created.ReviewedAt = &reviewedAt
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, attendance.CorrectionApproved, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, "HR01", *got.ReviewedBy)

	require.NoError(t, repo.Delete(ctx, "c1"))
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), attendance.ErrCorrectionNotFound)

	_, err = repo.GetByID(ctx, "c1")
	assert.ErrorIs(t, err, attendance.ErrCorrectionNotFound)
}

func TestLeaveRepository_OnlyApproved(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO leave_records (staff_id, date, category, status) VALUES
			('S001', '2024-03-05', 'annual_leave', 'approved'),
			('S001', '2024-03-06', 'sl_mc', 'pending')
	`)
	require.NoError(t, err)

	records, err := postgresql.NewLeaveRepository(setup.DB).ListByStaff(ctx, "S001", date("2024-03-01"), date("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, attendance.LeaveAnnual, records[0].Category)
	assert.Equal(t, "2024-03-05", records[0].Date)
}

func TestProcessedRepository_UpsertWithinTransaction(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewProcessedRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	day := attendance.ProcessedAttendance{
		StaffID:      "S001",
		Date:         "2024-03-04",
		Day:          "Monday",
		ScheduledIn:  "08:00:00",
		FirstCheckIn: "08:15:00",
		LastCheckOut: "17:00:00",
		Breaks:       []attendance.BreakEntry{{Time: "12:00:00", Type: attendance.BreakOutEntry}},
		LateMinutes:  15,
		LateFine:     30,
	}

	require.NoError(t, tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		return repo.Upsert(txCtx, []attendance.ProcessedAttendance{day})
	}))

	day.LateMinutes = 5
	rollback := errors.New("rollback")
	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := repo.Upsert(txCtx, []attendance.ProcessedAttendance{day}); err != nil {
			return err
		}
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	days, err := repo.ListByStaff(ctx, "S001", date("2024-03-04"), date("2024-03-04"))
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 15, days[0].LateMinutes)
	require.Len(t, days[0].Breaks, 1)
	assert.Equal(t, attendance.BreakOutEntry, days[0].Breaks[0].Type)
}
