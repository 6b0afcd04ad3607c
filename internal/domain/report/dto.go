package report

import (
	"fmt"
	"iter"
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/validator"
)

// ========================================
// STATS
// ========================================

type StatsFilter struct {
	TeacherID *string `json:"teacher_id,omitempty"`
	DateFrom  *string `json:"date_from,omitempty"` // YYYY-MM-DD
	DateTo    *string `json:"date_to,omitempty"`   // YYYY-MM-DD
}

func (f *StatsFilter) Validate() error {
	var errs validator.ValidationErrors

	var from, to time.Time
	var hasFrom, hasTo bool
	if f.DateFrom != nil && *f.DateFrom != "" {
		if from, hasFrom = validator.IsValidDate(*f.DateFrom); !hasFrom {
			errs = append(errs, validator.ValidationError{
				Field:   "date_from",
				Message: "date_from must be in YYYY-MM-DD format",
			})
		}
	}
	if f.DateTo != nil && *f.DateTo != "" {
		if to, hasTo = validator.IsValidDate(*f.DateTo); !hasTo {
			errs = append(errs, validator.ValidationError{
				Field:   "date_to",
				Message: "date_to must be in YYYY-MM-DD format",
			})
		}
	}
	if hasFrom && hasTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "date_to",
			Message: ErrInvalidDateRange.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Summary is the fold of a set of attendance records. MonthlyReport and Stats
// both produce it, so the same records always yield the same numbers.
type Summary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Sick    int `json:"sick"`
	Leave   int `json:"leave"`
	Excused int `json:"excused"`

	AttendanceRate  int `json:"attendance_rate"`  // percent
	PunctualityRate int `json:"punctuality_rate"` // percent

	TotalLateMinutes     int `json:"total_late_minutes"`
	TotalEarlyDepartures int `json:"total_early_departures"`
	TotalEarlyMinutes    int `json:"total_early_minutes"`
}

type StatsResponse struct {
	TeacherID *string `json:"teacher_id,omitempty"`
	DateFrom  *string `json:"date_from,omitempty"`
	DateTo    *string `json:"date_to,omitempty"`
	Summary
}

// ========================================
// MONTHLY REPORT
// ========================================

type MonthlyReportRequest struct {
	TeacherID string `json:"teacher_id"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
}

// Validate checks the month and bounds the year to [2000, next year] relative to now.
func (r *MonthlyReportRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := now.Year()
	if r.Year < 2000 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2000 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period returns the first and last calendar day of the requested month.
func (r MonthlyReportRequest) Period() (first, last time.Time) {
	first = time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last
}

type DailyDetail struct {
	Date             string  `json:"date"`
	DayOfWeek        string  `json:"day_of_week"`
	Status           string  `json:"status"`
	CheckInTime      *string `json:"check_in_time"`
	CheckOutTime     *string `json:"check_out_time"`
	IsLate           bool    `json:"is_late"`
	LateMinutes      int     `json:"late_minutes"`
	IsEarlyDeparture bool    `json:"is_early_departure"`
	EarlyMinutes     int     `json:"early_minutes"`
	IsManualOverride bool    `json:"is_manual_override"`
}

type MonthlyReport struct {
	TeacherID   string `json:"teacher_id"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	GeneratedAt string `json:"generated_at"`

	Summary      Summary       `json:"summary"`
	DailyDetails []DailyDetail `json:"daily_details"` // ordered by date ascending
}

// Days iterates the daily details in date order. Every call starts over.
func (m MonthlyReport) Days() iter.Seq[DailyDetail] {
	return func(yield func(DailyDetail) bool) {
		for _, d := range m.DailyDetails {
			if !yield(d) {
				return
			}
		}
	}
}

// ExportFile is a rendered report ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
