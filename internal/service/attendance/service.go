package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/school"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/sse"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	attendance.EarlyDepartureRepository
	school.ConfigRepository

	hub     *sse.Hub
	metrics *metrics.Recorder
	now     func() time.Time
}

type Option func(*AttendanceServiceImpl)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(a *AttendanceServiceImpl) { a.now = now }
}

// WithEventHub publishes early departure events to hub
func WithEventHub(hub *sse.Hub) Option {
	return func(a *AttendanceServiceImpl) { a.hub = hub }
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(a *AttendanceServiceImpl) { a.metrics = rec }
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	earlyDepartureRepo attendance.EarlyDepartureRepository,
	configRepo school.ConfigRepository,
	opts ...Option,
) *AttendanceServiceImpl {
	a := &AttendanceServiceImpl{
		tx:                       tx,
		AttendanceRepository:     attendanceRepo,
		EarlyDepartureRepository: earlyDepartureRepo,
		ConfigRepository:         configRepo,
		now:                      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// loadConfig reads the school's config and resolves its time zone.
func (a *AttendanceServiceImpl) loadConfig(ctx context.Context, schoolID string) (school.AttendanceConfig, *time.Location, error) {
	cfg, err := a.ConfigRepository.GetAttendanceConfig(ctx, schoolID)
	if err != nil {
		return school.AttendanceConfig{}, nil, fmt.Errorf("failed to load attendance config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return school.AttendanceConfig{}, nil, err
	}
	return cfg, loc, nil
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	id, err := session.Teacher(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	cfg, loc, err := a.loadConfig(ctx, id.SchoolID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now().UTC()
	result, err := evaluateCheckIn(nowUTC, cfg)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	today := localDay(nowUTC, loc)

	expectedIn, expectedOut := cfg.TeacherCheckInTime, cfg.TeacherCheckOutTime
	record := attendance.Record{
		TeacherID: id.TeacherID,
		SchoolID:  id.SchoolID,
		Date:      today,

		CheckInTime: &nowUTC,

		// Snapshot so later config edits do not rewrite history
		ExpectedCheckInTime:  &expectedIn,
		ExpectedCheckOutTime: &expectedOut,

		Status:      result.Status,
		IsLate:      result.IsLate,
		LateMinutes: result.LateMinutes,
		Notes:       req.Notes,
	}

	var saved attendance.Record
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := a.AttendanceRepository.GetByTeacherAndDateForUpdate(ctx, id.TeacherID, today, id.SchoolID)
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}
		if existing != nil && existing.HasCheckedIn() {
			return attendance.ErrAlreadyCheckedIn
		}
		// A supervisor already decided this day; keep their status
		if existing != nil && existing.IsManualOverride {
			record.Status = existing.Status
		}

		saved, err = a.AttendanceRepository.UpsertCheckIn(ctx, record)
		return err
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-in: %w", err)
	}

	a.metrics.CheckIn(string(saved.Status))
	slog.Info("Teacher checked in",
		"teacher_id", saved.TeacherID,
		"school_id", saved.SchoolID,
		"date", saved.Date.Format(dateLayout),
		"status", saved.Status,
		"late_minutes", saved.LateMinutes,
	)

	return mapRecordToResponse(saved), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	id, err := session.Teacher(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	cfg, loc, err := a.loadConfig(ctx, id.SchoolID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now().UTC()
	today := localDay(nowUTC, loc)

	var saved attendance.Record
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := a.AttendanceRepository.GetByTeacherAndDateForUpdate(ctx, id.TeacherID, today, id.SchoolID)
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}
		if record == nil || !record.HasCheckedIn() {
			return attendance.ErrNotCheckedInYet
		}
		if record.HasCheckedOut() {
			return attendance.ErrAlreadyCheckedOut
		}
		if nowUTC.Before(*record.CheckInTime) {
			return attendance.ErrCheckOutBeforeCheckIn
		}

		expectedOut := cfg.TeacherCheckOutTime
		if record.ExpectedCheckOutTime != nil && *record.ExpectedCheckOutTime != "" {
			expectedOut = *record.ExpectedCheckOutTime
		}
		result, err := evaluateCheckOut(nowUTC, expectedOut, cfg.EarlyDepartureThresholdMinutes, loc)
		if err != nil {
			return err
		}

		// Status stays as is: EXCUSED from an approval or an override must survive check-out
		record.CheckOutTime = &nowUTC
		record.IsEarlyDeparture = result.IsEarlyDeparture
		record.EarlyMinutes = result.EarlyMinutes
		if req.Notes != nil {
			record.Notes = req.Notes
		}

		saved, err = a.AttendanceRepository.Update(ctx, *record)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNotCheckedInYet),
			errors.Is(err, attendance.ErrAlreadyCheckedOut),
			errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to record check-out: %w", err)
	}

	a.metrics.CheckOut(saved.IsEarlyDeparture)
	slog.Info("Teacher checked out",
		"teacher_id", saved.TeacherID,
		"school_id", saved.SchoolID,
		"date", saved.Date.Format(dateLayout),
		"early_departure", saved.IsEarlyDeparture,
		"early_minutes", saved.EarlyMinutes,
	)

	return mapRecordToResponse(saved), nil
}

// GetTodayAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetTodayAttendance(ctx context.Context) (attendance.TodayAttendanceResponse, error) {
	id, err := session.Teacher(ctx)
	if err != nil {
		return attendance.TodayAttendanceResponse{}, err
	}

	_, loc, err := a.loadConfig(ctx, id.SchoolID)
	if err != nil {
		return attendance.TodayAttendanceResponse{}, err
	}

	today := localDay(a.now(), loc)
	resp := attendance.TodayAttendanceResponse{
		Date:       today.Format(dateLayout),
		CanCheckIn: true,
	}

	record, err := a.AttendanceRepository.GetByTeacherAndDate(ctx, id.TeacherID, today, id.SchoolID)
	if err != nil {
		return attendance.TodayAttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil {
		return resp, nil
	}

	mapped := mapRecordToResponse(*record)
	resp.Attendance = &mapped
	resp.HasCheckedIn = record.HasCheckedIn()
	resp.HasCheckedOut = record.HasCheckedOut()
	resp.CanCheckIn = !resp.HasCheckedIn
	resp.CanCheckOut = resp.HasCheckedIn && !resp.HasCheckedOut

	pending, err := a.EarlyDepartureRepository.GetPendingByAttendanceID(ctx, record.ID, id.SchoolID)
	if err != nil {
		return attendance.TodayAttendanceResponse{}, fmt.Errorf("failed to get pending early departure: %w", err)
	}
	if pending != nil {
		mappedReq := mapEarlyDepartureToResponse(*pending)
		resp.PendingRequest = &mappedReq
	}

	return resp, nil
}

// ManualOverride implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ManualOverride(ctx context.Context, req attendance.ManualOverrideRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	id, err := session.FromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !id.Can(user.PermissionAttendanceOverride) {
		return attendance.AttendanceResponse{}, user.ErrInsufficientPermissions
	}

	nowUTC := a.now().UTC()
	reason := req.Reason

	var saved attendance.Record
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := a.AttendanceRepository.GetByIDForUpdate(ctx, req.ID, id.SchoolID)
		if err != nil {
			return err
		}

		// Computed fields are kept for audit
		record.Status = attendance.Status(req.Status)
		record.IsManualOverride = true
		record.ManualReason = &reason
		record.OverrideBy = &id.UserID
		record.OverrideAt = &nowUTC

		saved, err = a.AttendanceRepository.Update(ctx, record)
		return err
	})
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrRecordNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to override attendance: %w", err)
	}

	a.metrics.Override(string(saved.Status))
	slog.Info("Attendance manually overridden",
		"attendance_id", saved.ID,
		"teacher_id", saved.TeacherID,
		"status", saved.Status,
		"override_by", id.UserID,
	)

	return mapRecordToResponse(saved), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, attendanceID string) (attendance.AttendanceResponse, error) {
	id, err := session.FromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record, err := a.AttendanceRepository.GetByID(ctx, attendanceID, id.SchoolID)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrRecordNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	// Other teachers' records look missing to a plain teacher
	if !id.Can(user.PermissionAttendanceViewAll) && record.TeacherID != id.TeacherID {
		return attendance.AttendanceResponse{}, attendance.ErrRecordNotFound
	}

	return mapRecordToResponse(record), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	id, err := session.FromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if !id.Can(user.PermissionAttendanceViewAll) {
		if !id.IsTeacher() {
			return attendance.ListAttendanceResponse{}, user.ErrInsufficientPermissions
		}
		filter.TeacherID = &id.TeacherID
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter, id.SchoolID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapRecordToResponse(rec))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}
