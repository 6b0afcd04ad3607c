package report

import (
	"math"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/report"
)

// Summarize folds records into counts and rates. Stats and the monthly report
// both go through here.
func Summarize(records []attendance.Record) report.Summary {
	var s report.Summary

	for _, rec := range records {
		s.Total++
		switch rec.Status {
		case attendance.StatusPresent:
			s.Present++
		case attendance.StatusLate:
			s.Late++
		case attendance.StatusAbsent:
			s.Absent++
		case attendance.StatusSick:
			s.Sick++
		case attendance.StatusLeave:
			s.Leave++
		case attendance.StatusExcused:
			s.Excused++
		}

		s.TotalLateMinutes += rec.LateMinutes
		// An overridden day is no longer counted as an early departure
		if rec.IsEarlyDeparture && !rec.IsManualOverride {
			s.TotalEarlyDepartures++
			s.TotalEarlyMinutes += rec.EarlyMinutes
		}
	}

	s.AttendanceRate = percent(s.Present+s.Late, s.Total)
	s.PunctualityRate = percent(s.Present, s.Present+s.Late)
	return s
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
