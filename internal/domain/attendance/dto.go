package attendance

import (
	"strings"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/validator"
)

const maxNotesLength = 500

// ========================================
// CHECK-IN / CHECK-OUT DTOs
// ========================================

type CheckInRequest struct {
	Notes *string `json:"notes,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	return validateNotes(r.Notes)
}

type CheckOutRequest struct {
	Notes *string `json:"notes,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	return validateNotes(r.Notes)
}

func validateNotes(notes *string) error {
	if notes != nil && !validator.MaxLength(*notes, maxNotesLength) {
		return validator.ValidationErrors{{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		}}
	}
	return nil
}

type AttendanceResponse struct {
	ID                   string  `json:"id"`
	TeacherID            string  `json:"teacher_id"`
	SchoolID             string  `json:"school_id"`
	Date                 string  `json:"date"`
	CheckInTime          *string `json:"check_in_time,omitempty"`
	CheckOutTime         *string `json:"check_out_time,omitempty"`
	ExpectedCheckInTime  *string `json:"expected_check_in_time,omitempty"`
	ExpectedCheckOutTime *string `json:"expected_check_out_time,omitempty"`
	Status               string  `json:"status"`
	IsLate               bool    `json:"is_late"`
	LateMinutes          int     `json:"late_minutes"`
	IsEarlyDeparture     bool    `json:"is_early_departure"`
	EarlyMinutes         int     `json:"early_minutes"`
	IsManualOverride     bool    `json:"is_manual_override"`
	ManualReason         *string `json:"manual_reason,omitempty"`
	OverrideBy           *string `json:"override_by,omitempty"`
	OverrideAt           *string `json:"override_at,omitempty"`
	Notes                *string `json:"notes,omitempty"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

// TodayAttendanceResponse describes where the caller stands in today's cycle
type TodayAttendanceResponse struct {
	Date           string                  `json:"date"`
	HasCheckedIn   bool                    `json:"has_checked_in"`
	HasCheckedOut  bool                    `json:"has_checked_out"`
	CanCheckIn     bool                    `json:"can_check_in"`
	CanCheckOut    bool                    `json:"can_check_out"`
	Attendance     *AttendanceResponse     `json:"attendance,omitempty"`
	PendingRequest *EarlyDepartureResponse `json:"pending_request,omitempty"`
}

// ========================================
// MANUAL OVERRIDE DTOs
// ========================================

// ManualOverrideRequest lets a supervisor force the status of a record
type ManualOverrideRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (r *ManualOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "attendance id is required",
		})
	}

	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	if !Status(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: PRESENT, LATE, ABSENT, SICK, LEAVE, EXCUSED",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "override reason is required",
		})
	} else if !validator.MaxLength(r.Reason, maxNotesLength) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// EARLY DEPARTURE DTOs
// ========================================

type CreateEarlyDepartureRequest struct {
	// PlannedCheckOutTime is either "HH:MM" (today, school time) or an RFC3339 timestamp
	PlannedCheckOutTime string `json:"planned_check_out_time"`
	Reason              string `json:"reason"`
}

func (r *CreateEarlyDepartureRequest) Validate() error {
	var errs validator.ValidationErrors

	r.PlannedCheckOutTime = strings.TrimSpace(r.PlannedCheckOutTime)
	if validator.IsEmpty(r.PlannedCheckOutTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "planned_check_out_time",
			Message: "planned_check_out_time is required",
		})
	} else if _, ok := validator.IsValidDateTime(r.PlannedCheckOutTime); !ok && !validator.IsValidClock(r.PlannedCheckOutTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "planned_check_out_time",
			Message: "planned_check_out_time must be HH:MM or an RFC3339 timestamp",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	} else if !validator.MaxLength(r.Reason, maxNotesLength) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ResolveEarlyDepartureRequest approves or rejects a pending request
type ResolveEarlyDepartureRequest struct {
	ID              string  `json:"-"`
	Approved        bool    `json:"-"`
	RejectionReason *string `json:"reason,omitempty"`
}

type EarlyDepartureResponse struct {
	ID                  string  `json:"id"`
	AttendanceID        string  `json:"attendance_id"`
	TeacherID           string  `json:"teacher_id"`
	PlannedCheckOutTime string  `json:"planned_check_out_time"`
	Reason              string  `json:"reason"`
	Status              string  `json:"status"`
	ApprovedBy          *string `json:"approved_by,omitempty"`
	ApprovedAt          *string `json:"approved_at,omitempty"`
	RejectionReason     *string `json:"rejection_reason,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

type EarlyDepartureFilter struct {
	TeacherID *string `json:"teacher_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	Date      *string `json:"date,omitempty"` // YYYY-MM-DD of the owning attendance record
}

func (f *EarlyDepartureFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil {
		upper := strings.ToUpper(*f.Status)
		f.Status = &upper
		if !EarlyDepartureStatus(upper).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: PENDING, APPROVED, REJECTED",
			})
		}
	}

	if f.Date != nil && *f.Date != "" {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// LISTING DTOs
// ========================================

type AttendanceFilter struct {
	// Search & Filter
	TeacherID *string `json:"teacher_id,omitempty"`
	Date      *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, check_in_time, check_out_time, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil {
		upper := strings.ToUpper(*f.Status)
		f.Status = &upper
		if !Status(upper).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: PRESENT, LATE, ABSENT, SICK, LEAVE, EXCUSED",
			})
		}
	}

	if f.Date != nil && *f.Date != "" {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	// Sort validation
	if f.SortBy != "" {
		validSortFields := []string{"date", "check_in_time", "check_out_time", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, check_in_time, check_out_time, status",
			})
		}
	} else {
		f.SortBy = "date" // Default sort
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}
