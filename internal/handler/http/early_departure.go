package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// RequestEarlyDeparture implements AttendanceHandler.
func (h *attendanceHandlerImpl) RequestEarlyDeparture(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateEarlyDepartureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.RequestEarlyDeparture(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Early departure request submitted", result)
}

// ListEarlyDepartures implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListEarlyDepartures(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := attendance.EarlyDepartureFilter{}

	if teacherID := query.Get("teacher_id"); teacherID != "" {
		filter.TeacherID = &teacherID
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if date := query.Get("date"); date != "" {
		filter.Date = &date
	}

	results, err := h.attendanceService.ListEarlyDepartures(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// GetEarlyDeparture implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEarlyDeparture(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetEarlyDeparture(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ApproveEarlyDeparture implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApproveEarlyDeparture(w http.ResponseWriter, r *http.Request) {
	req := attendance.ResolveEarlyDepartureRequest{
		ID:       chi.URLParam(r, "id"),
		Approved: true,
	}

	result, err := h.attendanceService.ResolveEarlyDeparture(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Early departure request approved", result)
}

// RejectEarlyDeparture implements AttendanceHandler.
func (h *attendanceHandlerImpl) RejectEarlyDeparture(w http.ResponseWriter, r *http.Request) {
	var req attendance.ResolveEarlyDepartureRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.Approved = false

	result, err := h.attendanceService.ResolveEarlyDeparture(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Early departure request rejected", result)
}
