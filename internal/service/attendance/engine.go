package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/school"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// localDay truncates now to midnight of the school's calendar day.
// Truncate(24h) would cut at UTC midnight, not local midnight.
func localDay(now time.Time, loc *time.Location) time.Time {
	l := now.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// atClock places an "HH:MM" wall-clock time on day.
func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad clock time %q", school.ErrInvalidConfig, clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func wholeMinutes(d time.Duration) int {
	return int(math.Floor(d.Minutes()))
}

type checkInResult struct {
	Status      attendance.Status
	IsLate      bool
	LateMinutes int
}

// evaluateCheckIn classifies an arrival. Lateness counts from the expected
// time itself; the grace period only decides whether the teacher is late.
func evaluateCheckIn(now time.Time, cfg school.AttendanceConfig) (checkInResult, error) {
	loc, err := cfg.Location()
	if err != nil {
		return checkInResult{}, err
	}
	expected, err := atClock(localDay(now, loc), cfg.TeacherCheckInTime)
	if err != nil {
		return checkInResult{}, err
	}

	diff := wholeMinutes(now.Sub(expected))
	if diff > cfg.GracePeriodMinutes {
		return checkInResult{Status: attendance.StatusLate, IsLate: true, LateMinutes: diff}, nil
	}
	return checkInResult{Status: attendance.StatusPresent}, nil
}

type checkOutResult struct {
	IsEarlyDeparture bool
	EarlyMinutes     int
}

// evaluateCheckOut flags a departure more than thresholdMinutes before expectedOut.
func evaluateCheckOut(now time.Time, expectedOut string, thresholdMinutes int, loc *time.Location) (checkOutResult, error) {
	expected, err := atClock(localDay(now, loc), expectedOut)
	if err != nil {
		return checkOutResult{}, err
	}

	diff := wholeMinutes(expected.Sub(now))
	if diff > thresholdMinutes {
		return checkOutResult{IsEarlyDeparture: true, EarlyMinutes: diff}, nil
	}
	return checkOutResult{}, nil
}

// parsePlannedCheckOut accepts "HH:MM" on today's school day or an RFC3339
// timestamp that falls on that same day.
func parsePlannedCheckOut(value string, now time.Time, loc *time.Location) (time.Time, error) {
	day := localDay(now, loc)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		if !localDay(t, loc).Equal(day) {
			return time.Time{}, fmt.Errorf("planned check-out time must be on %s", day.Format(dateLayout))
		}
		return t, nil
	}
	t, err := time.Parse(clockLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid planned check-out time %q", value)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
