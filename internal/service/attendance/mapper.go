package attendance

import (
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
)

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

func mapRecordToResponse(rec attendance.Record) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:                   rec.ID,
		TeacherID:            rec.TeacherID,
		SchoolID:             rec.SchoolID,
		Date:                 rec.Date.Format(dateLayout),
		CheckInTime:          timePtrToString(rec.CheckInTime),
		CheckOutTime:         timePtrToString(rec.CheckOutTime),
		ExpectedCheckInTime:  rec.ExpectedCheckInTime,
		ExpectedCheckOutTime: rec.ExpectedCheckOutTime,
		Status:               string(rec.Status),
		IsLate:               rec.IsLate,
		LateMinutes:          rec.LateMinutes,
		IsEarlyDeparture:     rec.IsEarlyDeparture,
		EarlyMinutes:         rec.EarlyMinutes,
		IsManualOverride:     rec.IsManualOverride,
		ManualReason:         rec.ManualReason,
		OverrideBy:           rec.OverrideBy,
		OverrideAt:           timePtrToString(rec.OverrideAt),
		Notes:                rec.Notes,
		CreatedAt:            rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            rec.UpdatedAt.Format(time.RFC3339),
	}
}

func mapEarlyDepartureToResponse(req attendance.EarlyDepartureRequest) attendance.EarlyDepartureResponse {
	return attendance.EarlyDepartureResponse{
		ID:                  req.ID,
		AttendanceID:        req.AttendanceID,
		TeacherID:           req.TeacherID,
		PlannedCheckOutTime: req.PlannedCheckOutTime.Format(time.RFC3339),
		Reason:              req.Reason,
		Status:              string(req.Status),
		ApprovedBy:          req.ApprovedBy,
		ApprovedAt:          timePtrToString(req.ApprovedAt),
		RejectionReason:     req.RejectionReason,
		CreatedAt:           req.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           req.UpdatedAt.Format(time.RFC3339),
	}
}
