package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// AttendanceJobs keeps the processed attendance table and the punch cache current
type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	refreshInterval   time.Duration
	pruneInterval     time.Duration
	location          *time.Location
	now               func() time.Time
}

// NewAttendanceJobs builds the jobs. loc is the zone whose calendar days are
// refreshed; nil means UTC.
func NewAttendanceJobs(attendanceService attendance.AttendanceService, loc *time.Location, refreshInterval, pruneInterval time.Duration) *AttendanceJobs {
	if refreshInterval <= 0 {
		refreshInterval = time.Hour
	}
	if pruneInterval <= 0 {
		pruneInterval = 24 * time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceJobs{
		attendanceService: attendanceService,
		refreshInterval:   refreshInterval,
		pruneInterval:     pruneInterval,
		location:          loc,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("refresh_processed_attendance", j.refreshInterval, j.RefreshProcessedAttendance)
	scheduler.AddJob("prune_attendance_cache", j.pruneInterval, j.PruneAttendanceCache)
}

// RefreshProcessedAttendance reconciles yesterday for every active staff member.
// Late device uploads and newly reviewed corrections land on the previous day.
func (j *AttendanceJobs) RefreshProcessedAttendance(ctx context.Context) error {
	yesterday := j.now().In(j.location).AddDate(0, 0, -1)

	count, err := j.attendanceService.RefreshDay(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to refresh processed attendance: %w", err)
	}

	slog.Info("Cron: Processed attendance refreshed", "date", yesterday.Format("2006-01-02"), "staff_count", count)
	return nil
}

func (j *AttendanceJobs) PruneAttendanceCache(ctx context.Context) error {
	dropped := j.attendanceService.PruneCache(j.now())
	slog.Info("Cron: Attendance cache pruned", "periods_dropped", dropped)
	return nil
}
