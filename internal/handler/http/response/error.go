package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/school"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity errors
	case errors.Is(err, session.ErrNoIdentity),
		errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing access token")
	case errors.Is(err, user.ErrSchoolIDRequired):
		Forbidden(w, "Token is not bound to a school")
	case errors.Is(err, user.ErrTeacherProfileRequired):
		Forbidden(w, "A teacher profile is required for this action")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// School configuration errors
	case errors.Is(err, school.ErrConfigNotFound):
		NotFound(w, "Attendance is not configured for this school")
	case errors.Is(err, school.ErrInvalidConfig):
		logError(err)
		InternalServerError(w, "School attendance configuration is invalid")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNotCheckedInYet),
		errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		Conflict(w, err.Error())

	// Early departure errors
	case errors.Is(err, attendance.ErrRequestNotFound):
		NotFound(w, "Early departure request not found")
	case errors.Is(err, attendance.ErrDuplicatePendingRequest),
		errors.Is(err, attendance.ErrRequestAlreadyResolved):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrMissingRejectionReason):
		ValidationError(w, map[string]string{"reason": err.Error()})

	// Report errors
	case errors.Is(err, report.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrReportGenerationFailed):
		logError(err)
		InternalServerError(w, "Failed to generate report")

	// Default
	default:
		logError(err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func logError(err error) {
	var dbErr *database.Error
	if errors.As(err, &dbErr) {
		slog.Error("Storage failure", "op", dbErr.Op, "error", dbErr.Err)
		return
	}
	slog.Error("Unhandled error", "error", err)
}
