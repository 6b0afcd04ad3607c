package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusLate    Status = "LATE"
	StatusAbsent  Status = "ABSENT"
	StatusSick    Status = "SICK"
	StatusLeave   Status = "LEAVE"
	StatusExcused Status = "EXCUSED"
)

// AllStatuses returns every attendance status in display order
func AllStatuses() []Status {
	return []Status{
		StatusPresent,
		StatusLate,
		StatusAbsent,
		StatusSick,
		StatusLeave,
		StatusExcused,
	}
}

func (s Status) IsValid() bool {
	for _, v := range AllStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// Record is one teacher's attendance for one school-local calendar day.
type Record struct {
	ID        string
	TeacherID string
	SchoolID  string
	Date      time.Time

	CheckInTime  *time.Time
	CheckOutTime *time.Time

	// Snapshot of the school configuration taken at check-in ("HH:MM").
	ExpectedCheckInTime  *string
	ExpectedCheckOutTime *string

	Status           Status
	IsLate           bool
	LateMinutes      int
	IsEarlyDeparture bool
	EarlyMinutes     int

	IsManualOverride bool
	ManualReason     *string
	OverrideBy       *string
	OverrideAt       *time.Time

	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Record) HasCheckedIn() bool {
	return r.CheckInTime != nil
}

func (r Record) HasCheckedOut() bool {
	return r.CheckOutTime != nil
}

type EarlyDepartureStatus string

const (
	EarlyDeparturePending  EarlyDepartureStatus = "PENDING"
	EarlyDepartureApproved EarlyDepartureStatus = "APPROVED"
	EarlyDepartureRejected EarlyDepartureStatus = "REJECTED"
)

func (s EarlyDepartureStatus) IsValid() bool {
	switch s {
	case EarlyDeparturePending, EarlyDepartureApproved, EarlyDepartureRejected:
		return true
	}
	return false
}

// EarlyDepartureRequest asks permission to leave before the expected check-out time.
type EarlyDepartureRequest struct {
	ID                  string
	AttendanceID        string
	TeacherID           string
	SchoolID            string
	PlannedCheckOutTime time.Time
	Reason              string

	Status          EarlyDepartureStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r EarlyDepartureRequest) IsPending() bool {
	return r.Status == EarlyDeparturePending
}
