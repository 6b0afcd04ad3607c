package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn      = errors.New("you have already checked in today")
	ErrAlreadyCheckedOut     = errors.New("you have already checked out today")
	ErrNotCheckedInYet       = errors.New("you have not checked in yet")
	ErrCheckOutBeforeCheckIn = errors.New("check-out time cannot be before check-in time")

	// Early departure workflow errors
	ErrDuplicatePendingRequest = errors.New("an early departure request is already pending for today")
	ErrRequestAlreadyResolved  = errors.New("early departure request has already been approved or rejected")
	ErrMissingRejectionReason  = errors.New("rejection reason is required")

	// Lookup errors
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrRequestNotFound = errors.New("early departure request not found")

	ErrInvalidStatus = errors.New("invalid attendance status")
)
