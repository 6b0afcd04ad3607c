package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All lookups take schoolID so one school can never read another's rows.
type AttendanceRepository interface {
	// UpsertCheckIn creates the day's record, or fills the check-in fields of a
	// placeholder row that has no check-in yet. It returns ErrAlreadyCheckedIn
	// when a row with a check-in already exists for (teacher, date).
	UpsertCheckIn(ctx context.Context, record Record) (Record, error)

	// GetByID retrieves a record by ID with school isolation
	GetByID(ctx context.Context, id string, schoolID string) (Record, error)

	// GetByIDForUpdate is GetByID that also locks the row for the current transaction
	GetByIDForUpdate(ctx context.Context, id string, schoolID string) (Record, error)

	// GetByTeacherAndDate returns nil, nil when the teacher has no record for date
	GetByTeacherAndDate(ctx context.Context, teacherID string, date time.Time, schoolID string) (*Record, error)

	// GetByTeacherAndDateForUpdate is GetByTeacherAndDate that also locks the row
	GetByTeacherAndDateForUpdate(ctx context.Context, teacherID string, date time.Time, schoolID string) (*Record, error)

	// Update persists the mutable fields of record and returns the stored row
	Update(ctx context.Context, record Record) (Record, error)

	// List retrieves records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter, schoolID string) ([]Record, int64, error)

	// ListRange returns every record in [from, to] ordered by date then teacher.
	// Nil bounds and a nil teacherID are unrestricted.
	ListRange(ctx context.Context, schoolID string, teacherID *string, from, to *time.Time) ([]Record, error)
}

// EarlyDepartureRepository defines data access methods for early departure requests.
type EarlyDepartureRepository interface {
	// Create inserts a PENDING request. It returns ErrDuplicatePendingRequest when
	// the store already holds a pending request for the same attendance record.
	Create(ctx context.Context, request EarlyDepartureRequest) (EarlyDepartureRequest, error)

	GetByID(ctx context.Context, id string, schoolID string) (EarlyDepartureRequest, error)
	GetByIDForUpdate(ctx context.Context, id string, schoolID string) (EarlyDepartureRequest, error)

	// GetPendingByAttendanceID returns nil, nil when nothing is pending
	GetPendingByAttendanceID(ctx context.Context, attendanceID string, schoolID string) (*EarlyDepartureRequest, error)

	Update(ctx context.Context, request EarlyDepartureRequest) (EarlyDepartureRequest, error)

	List(ctx context.Context, filter EarlyDepartureFilter, schoolID string) ([]EarlyDepartureRequest, error)
}
