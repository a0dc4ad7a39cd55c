package attendance

import (
	"context"
	"time"
)

// AttendanceService defines reconciliation operations over stored and supplied punches
type AttendanceService interface {
	// Process reconciles the punches and corrections carried by the request
	Process(ctx context.Context, req ProcessRequest) (StaffAttendanceResponse, error)

	// GetStaffAttendance loads, cleans and aggregates one staff member's range
	GetStaffAttendance(ctx context.Context, req StaffAttendanceRequest) (StaffAttendanceResponse, error)

	// GetCleanedPunches returns the cleaned punch stream with its removal report
	GetCleanedPunches(ctx context.Context, req StaffAttendanceRequest) (CleanedPunches, error)

	GetSummary(ctx context.Context, req StaffAttendanceRequest) (Summary, error)

	// ProcessBatch runs one pipeline per staff member concurrently
	ProcessBatch(ctx context.Context, req BatchAttendanceRequest) (BatchAttendanceResponse, error)

	// RefreshDay re-reconciles every active staff member for date and stores the result
	RefreshDay(ctx context.Context, date time.Time) (int, error)

	PruneCache(now time.Time) int

	// InvalidateCorrections drops cached corrections so the next read refetches them
	InvalidateCorrections(staffID string)
}

// CorrectionService manages correction request lifecycles
type CorrectionService interface {
	List(ctx context.Context, filter CorrectionFilter) ([]CorrectionRequest, error)
	Create(ctx context.Context, req CreateCorrectionRequest) (CorrectionRequest, error)
	Approve(ctx context.Context, req ReviewCorrectionRequest) (CorrectionRequest, error)
	Reject(ctx context.Context, req ReviewCorrectionRequest) (CorrectionRequest, error)
	Delete(ctx context.Context, id string) error
}
