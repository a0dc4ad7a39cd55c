package attendance

import (
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// RECONCILIATION DTOs
// ========================================

// ProcessRequest reconciles caller-supplied punches without touching storage.
type ProcessRequest struct {
	StaffID          string              `json:"staff_id"`
	StaffType        string              `json:"staff_type"`
	StartDate        string              `json:"start_date"`
	EndDate          string              `json:"end_date"`
	DeviceRecords    []DeviceRecord      `json:"device_records"`
	Punches          []Punch             `json:"punches"`
	Corrections      []CorrectionRequest `json:"corrections"`
	SkipCancellation bool                `json:"skip_cancellation"`
}

func (r *ProcessRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	}

	if r.StaffType != "" && !validator.IsInSlice(r.StaffType, []string{"Admin", "Academic", "Labor", "Unknown"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_type",
			Message: "staff_type must be one of: Admin, Academic, Labor, Unknown",
		})
	}

	errs = append(errs, validateRange(r.StartDate, r.EndDate)...)

	for _, p := range r.Punches {
		if p.StaffID != "" && p.StaffID != r.StaffID {
			errs = append(errs, validator.ValidationError{
				Field:   "punches",
				Message: "all punches must belong to staff_id",
			})
			break
		}
	}

	for _, p := range r.Punches {
		if _, err := ParseRole(string(p.Role)); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "punches",
				Message: err.Error(),
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StaffAttendanceRequest struct {
	StaffID   string `json:"staff_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Force     bool   `json:"force"`
}

func (r *StaffAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	}

	errs = append(errs, validateRange(r.StartDate, r.EndDate)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BatchAttendanceRequest struct {
	StaffIDs  []string `json:"staff_ids"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Force     bool     `json:"force"`
}

func (r *BatchAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	for _, id := range r.StaffIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "staff_ids",
				Message: "staff_ids must not contain empty values",
			})
			break
		}
	}

	errs = append(errs, validateRange(r.StartDate, r.EndDate)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CleanedPunches struct {
	DeviceLogs     []Punch        `json:"device_logs"`
	CorrectionLogs []Punch        `json:"correction_logs"`
	Cleaned        []Punch        `json:"cleaned"`
	Removed        []RemovedPunch `json:"removed"`
	FinePairs      []PunchPair    `json:"fine_pairs"`
}

type StaffAttendanceResponse struct {
	StaffID   string                `json:"staff_id"`
	StaffName string                `json:"staff_name,omitempty"`
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Days      []ProcessedAttendance `json:"days"`
	Removed   []RemovedPunch        `json:"removed,omitempty"`
	FinePairs []PunchPair           `json:"fine_pairs,omitempty"`
}

type BatchAttendanceResponse struct {
	StartDate string                    `json:"start_date"`
	EndDate   string                    `json:"end_date"`
	Results   []StaffAttendanceResponse `json:"results"`
}

// ========================================
// CORRECTION DTOs
// ========================================

type CreateCorrectionRequest struct {
	StaffID           string  `json:"staff_id"`
	Date              string  `json:"date"`
	Type              string  `json:"correction_type"`
	RequestedTime     string  `json:"requested_time"`
	RequestedWorkCode *int    `json:"requested_work_code,omitempty"`
	Reason            string  `json:"reason"`
	OriginalPunchID   *string `json:"original_punch_id,omitempty"`
}

var CorrectionTypeValues = []string{
	string(CorrectionCheckIn),
	string(CorrectionCheckOut),
	string(CorrectionBreakIn),
	string(CorrectionBreakOut),
	string(CorrectionOvertimeIn),
	string(CorrectionOvertimeOut),
	string(CorrectionWrongWorkcode),
}

func (r *CreateCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	}

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if !validator.IsInSlice(r.Type, CorrectionTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "correction_type",
			Message: "correction_type must be one of: " + strings.Join(CorrectionTypeValues, ", "),
		})
	}

	if !validator.IsValidClockTime(r.RequestedTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_time",
			Message: "requested_time must be in HH:mm or HH:mm:ss format",
		})
	}

	if r.RequestedWorkCode != nil && (*r.RequestedWorkCode < 0 || *r.RequestedWorkCode > 5) {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_work_code",
			Message: "requested_work_code must be between 0 and 5",
		})
	}

	if len(strings.TrimSpace(r.Reason)) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReviewCorrectionRequest struct {
	ID         string `json:"id"`
	ReviewedBy string `json:"reviewed_by"`
}

func (r *ReviewCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if validator.IsEmpty(r.ReviewedBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "reviewed_by",
			Message: "reviewed_by is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CorrectionFilter struct {
	StaffID   string  `json:"staff_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Status    *string `json:"status,omitempty"`
}

func (f *CorrectionFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	}

	errs = append(errs, validateRange(f.StartDate, f.EndDate)...)

	if f.Status != nil {
		validStatuses := []string{string(CorrectionPending), string(CorrectionApproved), string(CorrectionRejected)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: pending, approved, rejected",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateRange(start, end string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	startDate, startValid := validator.IsValidDate(start)
	if !startValid {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	endDate, endValid := validator.IsValidDate(end)
	if !endValid {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startValid && endValid && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	return errs
}
