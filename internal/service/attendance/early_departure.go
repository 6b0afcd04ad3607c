package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/validator"
)

const (
	EventEarlyDepartureRequested = "early_departure.requested"
	EventEarlyDepartureResolved  = "early_departure.resolved"
)

// RequestEarlyDeparture implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RequestEarlyDeparture(ctx context.Context, req attendance.CreateEarlyDepartureRequest) (attendance.EarlyDepartureResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EarlyDepartureResponse{}, err
	}

	id, err := session.Teacher(ctx)
	if err != nil {
		return attendance.EarlyDepartureResponse{}, err
	}

	_, loc, err := a.loadConfig(ctx, id.SchoolID)
	if err != nil {
		return attendance.EarlyDepartureResponse{}, err
	}

	nowUTC := a.now().UTC()
	today := localDay(nowUTC, loc)

	planned, err := parsePlannedCheckOut(req.PlannedCheckOutTime, nowUTC, loc)
	if err != nil {
		return attendance.EarlyDepartureResponse{}, validator.ValidationErrors{{
			Field:   "planned_check_out_time",
			Message: err.Error(),
		}}
	}

	var created attendance.EarlyDepartureRequest
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Locking the day's record serializes concurrent requests from the same teacher
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
		if planned.Before(*record.CheckInTime) {
			return validator.ValidationErrors{{
				Field:   "planned_check_out_time",
				Message: "planned check-out time cannot be before check-in time",
			}}
		}

		pending, err := a.EarlyDepartureRepository.GetPendingByAttendanceID(ctx, record.ID, id.SchoolID)
		if err != nil {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending != nil {
			return attendance.ErrDuplicatePendingRequest
		}

		created, err = a.EarlyDepartureRepository.Create(ctx, attendance.EarlyDepartureRequest{
			AttendanceID:        record.ID,
			TeacherID:           id.TeacherID,
			SchoolID:            id.SchoolID,
			PlannedCheckOutTime: planned.UTC(),
			Reason:              strings.TrimSpace(req.Reason),
			Status:              attendance.EarlyDeparturePending,
		})
		return err
	})
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.Is(err, attendance.ErrNotCheckedInYet),
			errors.Is(err, attendance.ErrAlreadyCheckedOut),
			errors.Is(err, attendance.ErrDuplicatePendingRequest),
			errors.As(err, &verrs):
			return attendance.EarlyDepartureResponse{}, err
		}
		return attendance.EarlyDepartureResponse{}, fmt.Errorf("failed to create early departure request: %w", err)
	}

	resp := mapEarlyDepartureToResponse(created)
	a.metrics.EarlyDeparture("requested")
	a.hub.Publish(sse.Event{Topic: id.SchoolID, Event: EventEarlyDepartureRequested, Data: resp})
	slog.Info("Early departure requested",
		"request_id", created.ID,
		"attendance_id", created.AttendanceID,
		"teacher_id", created.TeacherID,
	)

	return resp, nil
}

// ResolveEarlyDeparture implements attendance.AttendanceService.
// Approval marks the owning record EXCUSED in the same transaction, unless a
// supervisor already overrode that record's status.
func (a *AttendanceServiceImpl) ResolveEarlyDeparture(ctx context.Context, req attendance.ResolveEarlyDepartureRequest) (attendance.EarlyDepartureResponse, error) {
	id, err := session.FromContext(ctx)
	if err != nil {
		return attendance.EarlyDepartureResponse{}, err
	}
	if !id.Can(user.PermissionAttendanceApprove) {
		return attendance.EarlyDepartureResponse{}, user.ErrInsufficientPermissions
	}

	nowUTC := a.now().UTC()

	var resolved attendance.EarlyDepartureRequest
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := a.EarlyDepartureRepository.GetByIDForUpdate(ctx, req.ID, id.SchoolID)
		if err != nil {
			return err
		}
		if !request.IsPending() {
			return attendance.ErrRequestAlreadyResolved
		}

		request.ApprovedBy = &id.UserID
		request.ApprovedAt = &nowUTC
		if req.Approved {
			request.Status = attendance.EarlyDepartureApproved
		} else {
			if req.RejectionReason == nil || validator.IsEmpty(*req.RejectionReason) {
				return attendance.ErrMissingRejectionReason
			}
			reason := strings.TrimSpace(*req.RejectionReason)
			request.Status = attendance.EarlyDepartureRejected
			request.RejectionReason = &reason
		}

		resolved, err = a.EarlyDepartureRepository.Update(ctx, request)
		if err != nil {
			return err
		}

		if !req.Approved {
			return nil
		}

		record, err := a.AttendanceRepository.GetByIDForUpdate(ctx, request.AttendanceID, id.SchoolID)
		if err != nil {
			return fmt.Errorf("failed to get attendance for request: %w", err)
		}
		if record.IsManualOverride {
			return nil
		}
		record.Status = attendance.StatusExcused
		if _, err := a.AttendanceRepository.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to excuse attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrRequestNotFound),
			errors.Is(err, attendance.ErrRequestAlreadyResolved),
			errors.Is(err, attendance.ErrMissingRejectionReason):
			return attendance.EarlyDepartureResponse{}, err
		}
		return attendance.EarlyDepartureResponse{}, fmt.Errorf("failed to resolve early departure request: %w", err)
	}

	resp := mapEarlyDepartureToResponse(resolved)
	a.metrics.EarlyDeparture(strings.ToLower(string(resolved.Status)))
	a.hub.Publish(sse.Event{Topic: id.SchoolID, Event: EventEarlyDepartureResolved, Data: resp})
	slog.Info("Early departure resolved",
		"request_id", resolved.ID,
		"attendance_id", resolved.AttendanceID,
		"status", resolved.Status,
		"resolved_by", id.UserID,
	)

	return resp, nil
}

// GetEarlyDeparture implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetEarlyDeparture(ctx context.Context, requestID string) (attendance.EarlyDepartureResponse, error) {
	id, err := session.FromContext(ctx)
	if err != nil {
		return attendance.EarlyDepartureResponse{}, err
	}

	request, err := a.EarlyDepartureRepository.GetByID(ctx, requestID, id.SchoolID)
	if err != nil {
		if errors.Is(err, attendance.ErrRequestNotFound) {
			return attendance.EarlyDepartureResponse{}, attendance.ErrRequestNotFound
		}
		return attendance.EarlyDepartureResponse{}, fmt.Errorf("failed to get early departure request: %w", err)
	}

	if !id.Can(user.PermissionAttendanceApprove) && request.TeacherID != id.TeacherID {
		return attendance.EarlyDepartureResponse{}, attendance.ErrRequestNotFound
	}

	return mapEarlyDepartureToResponse(request), nil
}

// ListEarlyDepartures implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListEarlyDepartures(ctx context.Context, filter attendance.EarlyDepartureFilter) ([]attendance.EarlyDepartureResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	id, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !id.Can(user.PermissionAttendanceApprove) {
		if !id.IsTeacher() {
			return nil, user.ErrInsufficientPermissions
		}
		filter.TeacherID = &id.TeacherID
	}

	requests, err := a.EarlyDepartureRepository.List(ctx, filter, id.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list early departure requests: %w", err)
	}

	responses := make([]attendance.EarlyDepartureResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, mapEarlyDepartureToResponse(r))
	}
	return responses, nil
}
