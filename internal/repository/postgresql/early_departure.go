package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const pendingRequestIndex = "uq_early_departure_requests_pending"

const earlyDepartureColumns = `
	e.id, e.attendance_id, e.teacher_id, e.school_id, e.planned_check_out_time, e.reason,
	e.status, e.approved_by, e.approved_at, e.rejection_reason, e.created_at, e.updated_at`

type earlyDepartureRepository struct {
	db *database.DB
}

func NewEarlyDepartureRepository(db *database.DB) attendance.EarlyDepartureRepository {
	return &earlyDepartureRepository{db: db}
}

func scanEarlyDeparture(row pgx.Row) (attendance.EarlyDepartureRequest, error) {
	var req attendance.EarlyDepartureRequest
	var status string
	err := row.Scan(
		&req.ID, &req.AttendanceID, &req.TeacherID, &req.SchoolID, &req.PlannedCheckOutTime, &req.Reason,
		&status, &req.ApprovedBy, &req.ApprovedAt, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
	)
	req.Status = attendance.EarlyDepartureStatus(status)
	return req, err
}

// Create implements attendance.EarlyDepartureRepository.
func (r *earlyDepartureRepository) Create(ctx context.Context, request attendance.EarlyDepartureRequest) (attendance.EarlyDepartureRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.EarlyDepartureRequest{}, fmt.Errorf("failed to generate request id: %w", err)
	}

	query := `
		INSERT INTO early_departure_requests AS e (
			id, attendance_id, teacher_id, school_id, planned_check_out_time, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + earlyDepartureColumns

	saved, err := scanEarlyDeparture(q.QueryRow(ctx, query,
		id.String(),
		request.AttendanceID,
		request.TeacherID,
		request.SchoolID,
		request.PlannedCheckOutTime,
		request.Reason,
		string(attendance.EarlyDeparturePending),
	))
	if err != nil {
		if database.IsUniqueViolation(err, pendingRequestIndex) {
			return attendance.EarlyDepartureRequest{}, attendance.ErrDuplicatePendingRequest
		}
		return attendance.EarlyDepartureRequest{}, database.Wrap("failed to create early departure request", err)
	}

	return saved, nil
}

// GetByID implements attendance.EarlyDepartureRepository.
func (r *earlyDepartureRepository) GetByID(ctx context.Context, id string, schoolID string) (attendance.EarlyDepartureRequest, error) {
	return r.getByID(ctx, id, schoolID, "")
}

// GetByIDForUpdate implements attendance.EarlyDepartureRepository.
func (r *earlyDepartureRepository) GetByIDForUpdate(ctx context.Context, id string, schoolID string) (attendance.EarlyDepartureRequest, error) {
	return r.getByID(ctx, id, schoolID, " FOR UPDATE")
}

func (r *earlyDepartureRepository) getByID(ctx context.Context, id string, schoolID string, lock string) (attendance.EarlyDepartureRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.EarlyDepartureRequest{}, attendance.ErrRequestNotFound
	}

	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + earlyDepartureColumns + `
		FROM early_departure_requests e
		WHERE e.id = $1 AND e.school_id = $2` + lock

	req, err := scanEarlyDeparture(q.QueryRow(ctx, query, id, schoolID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.EarlyDepartureRequest{}, attendance.ErrRequestNotFound
		}
		return attendance.EarlyDepartureRequest{}, database.Wrap("failed to get early departure request", err)
	}

	return req, nil
}

// GetPendingByAttendanceID implements attendance.EarlyDepartureRepository.
func (r *earlyDepartureRepository) GetPendingByAttendanceID(ctx context.Context, attendanceID string, schoolID string) (*attendance.EarlyDepartureRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + earlyDepartureColumns + `
		FROM early_departure_requests e
		WHERE e.attendance_id = $1 AND e.school_id = $2 AND e.status = 'PENDING'
		LIMIT 1`

	req, err := scanEarlyDeparture(q.QueryRow(ctx, query, attendanceID, schoolID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, database.Wrap("failed to get pending early departure request", err)
	}

	return &req, nil
}

// Update implements attendance.EarlyDepartureRepository.
func (r *earlyDepartureRepository) Update(ctx context.Context, request attendance.EarlyDepartureRequest) (attendance.EarlyDepartureRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE early_departure_requests AS e SET
			status = $3,
			approved_by = $4,
			approved_at = $5,
			rejection_reason = $6,
			updated_at = NOW()
		WHERE e.id = $1 AND e.school_id = $2
		RETURNING ` + earlyDepartureColumns

	saved, err := scanEarlyDeparture(q.QueryRow(ctx, query,
		request.ID,
		request.SchoolID,
		string(request.Status),
		request.ApprovedBy,
		request.ApprovedAt,
		request.RejectionReason,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.EarlyDepartureRequest{}, attendance.ErrRequestNotFound
		}
		return attendance.EarlyDepartureRequest{}, database.Wrap("failed to update early departure request", err)
	}

	return saved, nil
}

// List implements attendance.EarlyDepartureRepository.
func (r *earlyDepartureRepository) List(ctx context.Context, filter attendance.EarlyDepartureFilter, schoolID string) ([]attendance.EarlyDepartureRequest, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"e.school_id = $1"}
	args := []interface{}{schoolID}
	argIdx := 2

	if filter.TeacherID != nil && *filter.TeacherID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("e.teacher_id = $%d", argIdx))
		args = append(args, *filter.TeacherID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("e.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.date = $%d", argIdx))
		args = append(args, *filter.Date)
	}

	query := `SELECT ` + earlyDepartureColumns + `
		FROM early_departure_requests e
		JOIN attendance_records a ON a.id = e.attendance_id
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY e.created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Wrap("failed to list early departure requests", err)
	}
	defer rows.Close()

	var requests []attendance.EarlyDepartureRequest
	for rows.Next() {
		req, err := scanEarlyDeparture(rows)
		if err != nil {
			return nil, database.Wrap("failed to scan early departure request", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Wrap("failed to iterate early departure requests", err)
	}

	return requests, nil
}
