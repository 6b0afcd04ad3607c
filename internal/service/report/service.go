package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/session"
)

const dateLayout = "2006-01-02"

// RecordSource is the slice of the attendance store the aggregator reads from.
type RecordSource interface {
	ListRange(ctx context.Context, schoolID string, teacherID *string, from, to *time.Time) ([]attendance.Record, error)
}

type ReportServiceImpl struct {
	records RecordSource
	now     func() time.Time
}

type Option func(*ReportServiceImpl)

func WithClock(now func() time.Time) Option {
	return func(s *ReportServiceImpl) { s.now = now }
}

func NewReportService(records RecordSource, opts ...Option) *ReportServiceImpl {
	s := &ReportServiceImpl{
		records: records,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scopeTeacher resolves whose records the caller may read. A nil result means
// the whole school.
func scopeTeacher(id session.Identity, requested *string) (*string, error) {
	if requested != nil && *requested != "" {
		if *requested == id.TeacherID || id.Can(user.PermissionReportsView) {
			return requested, nil
		}
		return nil, user.ErrInsufficientPermissions
	}

	if id.Can(user.PermissionReportsView) {
		return nil, nil
	}
	if id.IsTeacher() {
		own := id.TeacherID
		return &own, nil
	}
	return nil, user.ErrInsufficientPermissions
}

// GetStats implements report.ReportService.
func (s *ReportServiceImpl) GetStats(ctx context.Context, filter report.StatsFilter) (report.StatsResponse, error) {
	if err := filter.Validate(); err != nil {
		return report.StatsResponse{}, err
	}

	id, err := session.FromContext(ctx)
	if err != nil {
		return report.StatsResponse{}, err
	}

	teacherID, err := scopeTeacher(id, filter.TeacherID)
	if err != nil {
		return report.StatsResponse{}, err
	}

	var from, to *time.Time
	if filter.DateFrom != nil && *filter.DateFrom != "" {
		d, _ := time.Parse(dateLayout, *filter.DateFrom)
		from = &d
	}
	if filter.DateTo != nil && *filter.DateTo != "" {
		d, _ := time.Parse(dateLayout, *filter.DateTo)
		to = &d
	}

	records, err := s.records.ListRange(ctx, id.SchoolID, teacherID, from, to)
	if err != nil {
		return report.StatsResponse{}, fmt.Errorf("failed to load attendance for stats: %w", err)
	}

	return report.StatsResponse{
		TeacherID: teacherID,
		DateFrom:  filter.DateFrom,
		DateTo:    filter.DateTo,
		Summary:   Summarize(records),
	}, nil
}

// GetMonthlyReport implements report.ReportService.
func (s *ReportServiceImpl) GetMonthlyReport(ctx context.Context, req report.MonthlyReportRequest) (report.MonthlyReport, error) {
	if err := req.Validate(s.now()); err != nil {
		return report.MonthlyReport{}, err
	}

	id, err := session.FromContext(ctx)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	// A monthly report is always about one teacher
	requested := &req.TeacherID
	if req.TeacherID == "" {
		if !id.IsTeacher() {
			return report.MonthlyReport{}, user.ErrTeacherProfileRequired
		}
		requested = &id.TeacherID
	}
	teacherID, err := scopeTeacher(id, requested)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	first, last := req.Period()
	records, err := s.records.ListRange(ctx, id.SchoolID, teacherID, &first, &last)
	if err != nil {
		return report.MonthlyReport{}, fmt.Errorf("failed to load attendance for monthly report: %w", err)
	}

	details := make([]report.DailyDetail, 0, len(records))
	for _, rec := range records {
		details = append(details, mapDailyDetail(rec))
	}

	slog.Debug("Monthly report generated",
		"teacher_id", *teacherID,
		"school_id", id.SchoolID,
		"month", req.Month,
		"year", req.Year,
		"days", len(details),
	)

	return report.MonthlyReport{
		TeacherID:    *teacherID,
		Month:        req.Month,
		Year:         req.Year,
		PeriodStart:  first.Format(dateLayout),
		PeriodEnd:    last.Format(dateLayout),
		GeneratedAt:  s.now().UTC().Format(time.RFC3339),
		Summary:      Summarize(records),
		DailyDetails: details,
	}, nil
}

// ExportMonthlyReport implements report.ReportService.
func (s *ReportServiceImpl) ExportMonthlyReport(ctx context.Context, req report.MonthlyReportRequest) (report.ExportFile, error) {
	monthly, err := s.GetMonthlyReport(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	content, err := renderWorkbook(monthly)
	if err != nil {
		slog.Error("Failed to render monthly report workbook", "teacher_id", monthly.TeacherID, "error", err)
		return report.ExportFile{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	return report.ExportFile{
		Filename:    fmt.Sprintf("attendance_%s_%04d-%02d.xlsx", monthly.TeacherID, monthly.Year, monthly.Month),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

func mapDailyDetail(rec attendance.Record) report.DailyDetail {
	return report.DailyDetail{
		Date:             rec.Date.Format(dateLayout),
		DayOfWeek:        rec.Date.Weekday().String(),
		Status:           string(rec.Status),
		CheckInTime:      timePtrToString(rec.CheckInTime),
		CheckOutTime:     timePtrToString(rec.CheckOutTime),
		IsLate:           rec.IsLate,
		LateMinutes:      rec.LateMinutes,
		IsEarlyDeparture: rec.IsEarlyDeparture,
		EarlyMinutes:     rec.EarlyMinutes,
		IsManualOverride: rec.IsManualOverride,
	}
}
