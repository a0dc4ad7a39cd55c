package attendance

import (
	"errors"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
)

// Attendance domain errors
var (
	// Input errors
	ErrInvalidTimestamp = timeutil.ErrInvalidTimestamp
	ErrInvalidDateRange = errors.New("end date must not be before start date")
	ErrInvalidRole      = errors.New("invalid punch role")

	// Correction errors
	ErrCorrectionNotFound        = errors.New("correction request not found")
	ErrCorrectionAlreadyReviewed = errors.New("correction request has already been approved or rejected")
	ErrUnknownCorrectionType     = errors.New("unknown correction type")
)
