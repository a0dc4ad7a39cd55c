package attendance

import (
	"context"
	"time"
)

// PunchRepository reads raw device logs. Dates are inclusive calendar days.
type PunchRepository interface {
	ListByStaff(ctx context.Context, staffID string, from, to time.Time) ([]DeviceRecord, error)
}

type CorrectionRepository interface {
	// List returns correction requests for a staff member within [from, to]
	List(ctx context.Context, staffID string, from, to time.Time) ([]CorrectionRequest, error)

	GetByID(ctx context.Context, id string) (CorrectionRequest, error)
	Create(ctx context.Context, correction CorrectionRequest) (CorrectionRequest, error)

	// Update persists status and review fields
	Update(ctx context.Context, correction CorrectionRequest) error
	Delete(ctx context.Context, id string) error
}

type LeaveRepository interface {
	ListByStaff(ctx context.Context, staffID string, from, to time.Time) ([]LeaveRecord, error)
}

// ProcessedRepository is the cache boundary for reconciled days, keyed by staff and date.
type ProcessedRepository interface {
	Upsert(ctx context.Context, days []ProcessedAttendance) error
	ListByStaff(ctx context.Context, staffID string, from, to time.Time) ([]ProcessedAttendance, error)
}
