package cron

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()

	var ran []string
	s.AddJob("ok", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "ok")
		return nil
	})
	s.AddJob("fails", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "fails")
		return errors.New("boom")
	})
	s.AddJob("panics", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "panics")
		panic("unexpected")
	})

	failed := s.RunOnce(context.Background())

	assert.Equal(t, []string{"ok", "fails", "panics"}, ran)
	assert.Equal(t, []string{"fails", "panics"}, failed)
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()

	var calls atomic.Int32
	done := make(chan struct{})
	var once sync.Once
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		once.Do(func() { close(done) })
		return nil
	})
	s.AddJob("disabled", 0, func(ctx context.Context) error {
		t.Error("job with zero interval must not run")
		return nil
	})

	s.Start()
	s.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()

	assert.Equal(t, int32(1), calls.Load())
}

type stubAttendanceService struct {
	attendance.AttendanceService
	refreshed []time.Time
	pruneAt   time.Time
	err       error
}

func (s *stubAttendanceService) RefreshDay(ctx context.Context, date time.Time) (int, error) {
	s.refreshed = append(s.refreshed, date)
	return 3, s.err
}

func (s *stubAttendanceService) PruneCache(now time.Time) int {
	s.pruneAt = now
	return 2
}

func TestAttendanceJobs(t *testing.T) {
	svc := &stubAttendanceService{}
	jobs := NewAttendanceJobs(svc, nil, 0, 0)
	now := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return now }

	s := NewScheduler()
	jobs.RegisterJobs(s)

	registered := s.Jobs()
	require.Len(t, registered, 2)
	assert.Equal(t, "refresh_processed_attendance", registered[0].Name)
	assert.Equal(t, time.Hour, registered[0].Interval)
	assert.Equal(t, "prune_attendance_cache", registered[1].Name)
	assert.Equal(t, 24*time.Hour, registered[1].Interval)

	assert.Empty(t, s.RunOnce(context.Background()))
	require.Len(t, svc.refreshed, 1)
	assert.Equal(t, "2024-03-09", svc.refreshed[0].Format("2006-01-02"))
	assert.Equal(t, now, svc.pruneAt)

	svc.err = errors.New("database down")
	assert.Equal(t, []string{"refresh_processed_attendance"}, s.RunOnce(context.Background()))
}

func TestAttendanceJobs_RefreshUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)

	svc := &stubAttendanceService{}
	jobs := NewAttendanceJobs(svc, loc, 0, 0)
	// 00:30 on 2024-03-10 at UTC+7; the UTC calendar would give 2024-03-08.
	jobs.now = func() time.Time { return time.Date(2024, 3, 9, 17, 30, 0, 0, time.UTC) }

	require.NoError(t, jobs.RefreshProcessedAttendance(context.Background()))
	require.Len(t, svc.refreshed, 1)
	assert.Equal(t, "2024-03-09", svc.refreshed[0].Format("2006-01-02"))
	assert.Equal(t, loc, svc.refreshed[0].Location())
}
