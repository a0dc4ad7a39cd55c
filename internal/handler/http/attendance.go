package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Process(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetStaffAttendance(w http.ResponseWriter, r *http.Request)
	GetCleanedPunches(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Process implements AttendanceHandler.
func (h *attendanceHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	var req attendance.ProcessRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode process request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Process(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	force, ok := parseForce(w, r)
	if !ok {
		return
	}

	req := attendance.BatchAttendanceRequest{
		StaffIDs:  validator.SplitList(r.URL.Query().Get("staff_ids")),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		Force:     force,
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ProcessBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetStaffAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetStaffAttendance(w http.ResponseWriter, r *http.Request) {
	req, ok := staffRequest(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetStaffAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetCleanedPunches implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetCleanedPunches(w http.ResponseWriter, r *http.Request) {
	req, ok := staffRequest(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetCleanedPunches(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	req, ok := staffRequest(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// staffRequest builds a validated request from the staffID path parameter and
// the start_date, end_date and force query parameters.
func staffRequest(w http.ResponseWriter, r *http.Request) (attendance.StaffAttendanceRequest, bool) {
	force, ok := parseForce(w, r)
	if !ok {
		return attendance.StaffAttendanceRequest{}, false
	}

	req := attendance.StaffAttendanceRequest{
		StaffID:   chi.URLParam(r, "staffID"),
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		Force:     force,
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return attendance.StaffAttendanceRequest{}, false
	}
	return req, true
}

func parseForce(w http.ResponseWriter, r *http.Request) (bool, bool) {
	f := r.URL.Query().Get("force")
	if f == "" {
		return false, true
	}
	force, err := strconv.ParseBool(f)
	if err != nil {
		response.BadRequest(w, "Invalid force parameter", map[string]string{"force": "force must be true or false"})
		return false, false
	}
	return force, true
}
