package attendance

import (
	"context"
)

// AttendanceService defines the daily check-in/check-out cycle and the early
// departure workflow. Teacher and school identity come from the session in ctx.
type AttendanceService interface {
	// CheckIn records today's arrival and classifies it as PRESENT or LATE
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut records today's departure and flags early departures
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// GetTodayAttendance returns the caller's record for today, if any
	GetTodayAttendance(ctx context.Context) (TodayAttendanceResponse, error)

	// ManualOverride forces the status of a record (supervisor)
	ManualOverride(ctx context.Context, req ManualOverrideRequest) (AttendanceResponse, error)

	// GetAttendance retrieves a single record by ID
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// ListAttendance retrieves records with filters (supervisor)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// RequestEarlyDeparture opens a PENDING request against today's record
	RequestEarlyDeparture(ctx context.Context, req CreateEarlyDepartureRequest) (EarlyDepartureResponse, error)

	// ResolveEarlyDeparture approves or rejects a PENDING request (supervisor)
	ResolveEarlyDeparture(ctx context.Context, req ResolveEarlyDepartureRequest) (EarlyDepartureResponse, error)

	// GetEarlyDeparture retrieves a single request by ID
	GetEarlyDeparture(ctx context.Context, id string) (EarlyDepartureResponse, error)

	// ListEarlyDepartures retrieves requests for the supervisor inbox
	ListEarlyDepartures(ctx context.Context, filter EarlyDepartureFilter) ([]EarlyDepartureResponse, error)
}
