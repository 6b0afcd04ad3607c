package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/handler/http/response"
)

type ReportHandler interface {
	GetStats(w http.ResponseWriter, r *http.Request)
	GetMonthlyReport(w http.ResponseWriter, r *http.Request)
	ExportMonthlyReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetStats handles GET /attendance/stats
func (h *reportHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := report.StatsFilter{}

	if teacherID := query.Get("teacher_id"); teacherID != "" {
		filter.TeacherID = &teacherID
	}
	if from := query.Get("date_from"); from != "" {
		filter.DateFrom = &from
	}
	if to := query.Get("date_to"); to != "" {
		filter.DateTo = &to
	}

	result, err := h.reportService.GetStats(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonthlyReport handles GET /attendance/reports/monthly
func (h *reportHandlerImpl) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	req, ok := parseMonthlyReportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetMonthlyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthlyReport handles GET /attendance/reports/monthly/export
func (h *reportHandlerImpl) ExportMonthlyReport(w http.ResponseWriter, r *http.Request) {
	req, ok := parseMonthlyReportRequest(w, r)
	if !ok {
		return
	}

	file, err := h.reportService.ExportMonthlyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}

func parseMonthlyReportRequest(w http.ResponseWriter, r *http.Request) (report.MonthlyReportRequest, bool) {
	query := r.URL.Query()

	month, err := strconv.Atoi(query.Get("month"))
	if err != nil {
		response.BadRequest(w, "invalid month parameter", nil)
		return report.MonthlyReportRequest{}, false
	}

	year, err := strconv.Atoi(query.Get("year"))
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return report.MonthlyReportRequest{}, false
	}

	return report.MonthlyReportRequest{
		TeacherID: query.Get("teacher_id"),
		Month:     month,
		Year:      year,
	}, true
}
