package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Input errors
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, "Invalid date range", nil)
	case errors.Is(err, attendance.ErrInvalidTimestamp):
		BadRequest(w, "Invalid punch timestamp", nil)
	case errors.Is(err, attendance.ErrInvalidRole):
		BadRequest(w, "Invalid punch role", nil)
	case errors.Is(err, attendance.ErrUnknownCorrectionType):
		BadRequest(w, "Unknown correction type", nil)

	// Correction errors
	case errors.Is(err, attendance.ErrCorrectionNotFound):
		NotFound(w, "Correction request not found")
	case errors.Is(err, attendance.ErrCorrectionAlreadyReviewed):
		Conflict(w, "Correction request already reviewed")

	// Staff errors
	case errors.Is(err, staff.ErrStaffNotFound):
		NotFound(w, "Staff not found")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
