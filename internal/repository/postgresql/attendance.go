package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, teacher_id, school_id, date, check_in_time, check_out_time,
	expected_check_in_time, expected_check_out_time, status,
	is_late, late_minutes, is_early_departure, early_minutes,
	is_manual_override, manual_reason, override_by, override_at,
	notes, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	var status string
	err := row.Scan(
		&rec.ID, &rec.TeacherID, &rec.SchoolID, &rec.Date, &rec.CheckInTime, &rec.CheckOutTime,
		&rec.ExpectedCheckInTime, &rec.ExpectedCheckOutTime, &status,
		&rec.IsLate, &rec.LateMinutes, &rec.IsEarlyDeparture, &rec.EarlyMinutes,
		&rec.IsManualOverride, &rec.ManualReason, &rec.OverrideBy, &rec.OverrideAt,
		&rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	rec.Status = attendance.Status(status)
	return rec, err
}

// UpsertCheckIn implements attendance.AttendanceRepository.
// The conflict branch only fires for rows without a check-in, so the loser of
// two concurrent check-ins gets no row back.
func (a *attendanceRepository) UpsertCheckIn(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	query := `
		INSERT INTO attendance_records (
			id, teacher_id, school_id, date, check_in_time,
			expected_check_in_time, expected_check_out_time,
			status, is_late, late_minutes, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (teacher_id, date) DO UPDATE SET
			check_in_time = EXCLUDED.check_in_time,
			expected_check_in_time = EXCLUDED.expected_check_in_time,
			expected_check_out_time = EXCLUDED.expected_check_out_time,
			status = EXCLUDED.status,
			is_late = EXCLUDED.is_late,
			late_minutes = EXCLUDED.late_minutes,
			notes = COALESCE(EXCLUDED.notes, attendance_records.notes),
			updated_at = NOW()
		WHERE attendance_records.check_in_time IS NULL
		  AND attendance_records.school_id = EXCLUDED.school_id
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		id.String(),
		record.TeacherID,
		record.SchoolID,
		record.Date,
		record.CheckInTime,
		record.ExpectedCheckInTime,
		record.ExpectedCheckOutTime,
		string(record.Status),
		record.IsLate,
		record.LateMinutes,
		record.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, database.Wrap("failed to upsert check-in", err)
	}

	return saved, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, schoolID string) (attendance.Record, error) {
	return a.getByID(ctx, id, schoolID, "")
}

// GetByIDForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByIDForUpdate(ctx context.Context, id string, schoolID string) (attendance.Record, error) {
	return a.getByID(ctx, id, schoolID, " FOR UPDATE")
}

func (a *attendanceRepository) getByID(ctx context.Context, id string, schoolID string, lock string) (attendance.Record, error) {
	// A malformed id cannot match any row
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}

	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE id = $1 AND school_id = $2` + lock

	rec, err := scanAttendance(q.QueryRow(ctx, query, id, schoolID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, database.Wrap("failed to get attendance by ID", err)
	}

	return rec, nil
}

// GetByTeacherAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByTeacherAndDate(ctx context.Context, teacherID string, date time.Time, schoolID string) (*attendance.Record, error) {
	return a.getByTeacherAndDate(ctx, teacherID, date, schoolID, "")
}

// GetByTeacherAndDateForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByTeacherAndDateForUpdate(ctx context.Context, teacherID string, date time.Time, schoolID string) (*attendance.Record, error) {
	return a.getByTeacherAndDate(ctx, teacherID, date, schoolID, " FOR UPDATE")
}

func (a *attendanceRepository) getByTeacherAndDate(ctx context.Context, teacherID string, date time.Time, schoolID string, lock string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE teacher_id = $1
		  AND date = $2
		  AND school_id = $3
		LIMIT 1` + lock

	rec, err := scanAttendance(q.QueryRow(ctx, query, teacherID, date.Format("2006-01-02"), schoolID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No record for that day yet
		}
		return nil, database.Wrap("failed to get attendance by teacher and date", err)
	}

	return &rec, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			check_out_time = $3,
			status = $4,
			is_early_departure = $5,
			early_minutes = $6,
			is_manual_override = $7,
			manual_reason = $8,
			override_by = $9,
			override_at = $10,
			notes = $11,
			updated_at = NOW()
		WHERE id = $1 AND school_id = $2
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		record.ID,
		record.SchoolID,
		record.CheckOutTime,
		string(record.Status),
		record.IsEarlyDeparture,
		record.EarlyMinutes,
		record.IsManualOverride,
		record.ManualReason,
		record.OverrideBy,
		record.OverrideAt,
		record.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, database.Wrap("failed to update attendance", err)
	}

	return saved, nil
}

var attendanceSortColumns = map[string]string{
	"date":           "date",
	"check_in_time":  "check_in_time",
	"check_out_time": "check_out_time",
	"status":         "status",
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter, schoolID string) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	whereClauses := []string{"school_id = $1"}
	args := []interface{}{schoolID}
	argIdx := 2

	if filter.TeacherID != nil && *filter.TeacherID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("teacher_id = $%d", argIdx))
		args = append(args, *filter.TeacherID)
		argIdx++
	}

	if filter.Date != nil && *filter.Date != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("date = $%d", argIdx))
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	where := strings.Join(whereClauses, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendance_records WHERE " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, database.Wrap("failed to count attendance", err)
	}

	sortColumn, ok := attendanceSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "date"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s
		FROM attendance_records
		WHERE %s
		ORDER BY %s %s NULLS LAST, teacher_id ASC
		LIMIT $%d OFFSET $%d`,
		attendanceColumns, where, sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, database.Wrap("failed to list attendance", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, database.Wrap("failed to scan attendance", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, database.Wrap("failed to iterate attendance", err)
	}

	return records, total, nil
}

// ListRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListRange(ctx context.Context, schoolID string, teacherID *string, from, to *time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	whereClauses := []string{"school_id = $1"}
	args := []interface{}{schoolID}
	argIdx := 2

	if teacherID != nil && *teacherID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("teacher_id = $%d", argIdx))
		args = append(args, *teacherID)
		argIdx++
	}
	if from != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date >= $%d", argIdx))
		args = append(args, from.Format("2006-01-02"))
		argIdx++
	}
	if to != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date <= $%d", argIdx))
		args = append(args, to.Format("2006-01-02"))
	}

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY date ASC, teacher_id ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Wrap("failed to list attendance range", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, database.Wrap("failed to scan attendance", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Wrap("failed to iterate attendance range", err)
	}

	return records, nil
}
