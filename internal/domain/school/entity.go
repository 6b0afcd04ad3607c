package school

import (
	"fmt"
	"time"
)

// AttendanceConfig holds the teacher working hours configured per school.
// The attendance engine reads it at action time and never caches it.
type AttendanceConfig struct {
	SchoolID                       string
	TeacherCheckInTime             string // HH:MM
	TeacherCheckOutTime            string // HH:MM
	GracePeriodMinutes             int
	EarlyDepartureThresholdMinutes int
	Timezone                       string // IANA name, empty means UTC
	CreatedAt                      time.Time
	UpdatedAt                      time.Time
}

// Location resolves Timezone. Empty means UTC; an unknown zone is ErrInvalidConfig.
func (c AttendanceConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.Timezone)
	}
	return loc, nil
}
