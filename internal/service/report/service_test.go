package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testSchool = "school-1"

type fakeSource struct {
	records []attendance.Record

	gotTeacher *string
	gotFrom    *time.Time
	gotTo      *time.Time
}

func (f *fakeSource) ListRange(_ context.Context, schoolID string, teacherID *string, from, to *time.Time) ([]attendance.Record, error) {
	f.gotTeacher, f.gotFrom, f.gotTo = teacherID, from, to

	var out []attendance.Record
	for _, rec := range f.records {
		if rec.SchoolID != schoolID || (teacherID != nil && rec.TeacherID != *teacherID) {
			continue
		}
		if from != nil && rec.Date.Before(*from) {
			continue
		}
		if to != nil && rec.Date.After(*to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func rec(teacherID string, d int, status attendance.Status) attendance.Record {
	return attendance.Record{
		TeacherID: teacherID,
		SchoolID:  testSchool,
		Date:      time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
}

func ctxFor(role user.Role, teacherID string) context.Context {
	return session.NewContext(context.Background(), session.Identity{
		UserID:    "user-1",
		TeacherID: teacherID,
		SchoolID:  testSchool,
		Role:      role,
	})
}

func strPtr(s string) *string { return &s }

func TestSummarize_Rates(t *testing.T) {
	var records []attendance.Record
	for d := 1; d <= 6; d++ {
		records = append(records, rec("t1", d, attendance.StatusPresent))
	}
	late := rec("t1", 7, attendance.StatusLate)
	late.IsLate, late.LateMinutes = true, 20
	records = append(records, late)
	late = rec("t1", 8, attendance.StatusLate)
	late.IsLate, late.LateMinutes = true, 35
	records = append(records, late)
	records = append(records, rec("t1", 9, attendance.StatusAbsent), rec("t1", 10, attendance.StatusAbsent))

	s := Summarize(records)

	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 6, s.Present)
	assert.Equal(t, 2, s.Late)
	assert.Equal(t, 2, s.Absent)
	assert.Equal(t, 80, s.AttendanceRate)
	assert.Equal(t, 75, s.PunctualityRate)
	assert.Equal(t, 55, s.TotalLateMinutes)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, report.Summary{}, s)
}

func TestSummarize_OnlyAbsences(t *testing.T) {
	s := Summarize([]attendance.Record{rec("t1", 1, attendance.StatusAbsent), rec("t1", 2, attendance.StatusSick)})
	assert.Equal(t, 0, s.AttendanceRate)
	assert.Equal(t, 0, s.PunctualityRate)
}

func TestSummarize_EarlyDepartures(t *testing.T) {
	early := rec("t1", 1, attendance.StatusPresent)
	early.IsEarlyDeparture, early.EarlyMinutes = true, 20

	overridden := rec("t1", 2, attendance.StatusExcused)
	overridden.IsEarlyDeparture, overridden.EarlyMinutes = true, 90
	overridden.IsManualOverride = true

	s := Summarize([]attendance.Record{early, overridden})
	assert.Equal(t, 1, s.TotalEarlyDepartures)
	assert.Equal(t, 20, s.TotalEarlyMinutes)
	assert.Equal(t, 1, s.Excused)
}

func TestSummarize_CountsAddUpToTotal(t *testing.T) {
	statuses := []attendance.Status{
		attendance.StatusPresent, attendance.StatusLate, attendance.StatusAbsent,
		attendance.StatusSick, attendance.StatusLeave, attendance.StatusExcused,
	}
	var records []attendance.Record
	for i := 0; i < 25; i++ {
		records = append(records, rec("t1", i%28+1, statuses[i%len(statuses)]))
	}

	s := Summarize(records)
	assert.Equal(t, s.Total, s.Present+s.Late+s.Absent+s.Sick+s.Leave+s.Excused)
	assert.Equal(t, 25, s.Total)
}

func TestGetStats_Scope(t *testing.T) {
	src := &fakeSource{records: []attendance.Record{
		rec("t1", 3, attendance.StatusPresent),
		rec("t2", 3, attendance.StatusLate),
		rec("t1", 4, attendance.StatusAbsent),
	}}
	svc := NewReportService(src)

	stats, err := svc.GetStats(ctxFor(user.RoleTeacher, "t1"), report.StatsFilter{})
	require.NoError(t, err)
	require.NotNil(t, stats.TeacherID)
	assert.Equal(t, "t1", *stats.TeacherID)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 50, stats.AttendanceRate)

	_, err = svc.GetStats(ctxFor(user.RoleTeacher, "t1"), report.StatsFilter{TeacherID: strPtr("t2")})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	stats, err = svc.GetStats(ctxFor(user.RoleSupervisor, "t9"), report.StatsFilter{})
	require.NoError(t, err)
	assert.Nil(t, stats.TeacherID)
	assert.Equal(t, 3, stats.Total)

	stats, err = svc.GetStats(ctxFor(user.RoleAdmin, ""), report.StatsFilter{TeacherID: strPtr("t2")})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Late)
}

func TestGetStats_DateRange(t *testing.T) {
	src := &fakeSource{records: []attendance.Record{
		rec("t1", 1, attendance.StatusPresent),
		rec("t1", 5, attendance.StatusPresent),
		rec("t1", 9, attendance.StatusPresent),
	}}
	svc := NewReportService(src)

	stats, err := svc.GetStats(ctxFor(user.RoleTeacher, "t1"), report.StatsFilter{
		DateFrom: strPtr("2025-03-02"),
		DateTo:   strPtr("2025-03-09"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	require.NotNil(t, src.gotFrom)
	assert.Equal(t, "2025-03-02", src.gotFrom.Format(dateLayout))

	_, err = svc.GetStats(ctxFor(user.RoleTeacher, "t1"), report.StatsFilter{
		DateFrom: strPtr("2025-03-09"),
		DateTo:   strPtr("2025-03-02"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date_to")
}

func TestGetMonthlyReport(t *testing.T) {
	late := rec("t1", 4, attendance.StatusLate)
	late.IsLate, late.LateMinutes = true, 12
	checkIn := time.Date(2025, time.March, 4, 7, 27, 0, 0, time.UTC)
	late.CheckInTime = &checkIn

	src := &fakeSource{records: []attendance.Record{
		rec("t1", 3, attendance.StatusPresent),
		late,
		rec("t2", 3, attendance.StatusAbsent),
		{TeacherID: "t1", SchoolID: testSchool, Date: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), Status: attendance.StatusPresent},
	}}
	generated := time.Date(2025, time.April, 2, 8, 0, 0, 0, time.UTC)
	svc := NewReportService(src, WithClock(func() time.Time { return generated }))

	m, err := svc.GetMonthlyReport(ctxFor(user.RoleTeacher, "t1"), report.MonthlyReportRequest{Month: 3, Year: 2025})
	require.NoError(t, err)

	assert.Equal(t, "t1", m.TeacherID)
	assert.Equal(t, "2025-03-01", m.PeriodStart)
	assert.Equal(t, "2025-03-31", m.PeriodEnd)
	assert.Equal(t, generated.Format(time.RFC3339), m.GeneratedAt)
	assert.Equal(t, 2, m.Summary.Total)
	require.Len(t, m.DailyDetails, 2)
	assert.Equal(t, "2025-03-04", m.DailyDetails[1].Date)
	assert.Equal(t, "Tuesday", m.DailyDetails[1].DayOfWeek)
	assert.Equal(t, 12, m.DailyDetails[1].LateMinutes)
	assert.Nil(t, m.DailyDetails[0].CheckInTime)

	// Days can be walked more than once
	for range 2 {
		count := 0
		for d := range m.Days() {
			assert.NotEmpty(t, d.Date)
			count++
		}
		assert.Equal(t, m.Summary.Total, count)
	}
}

func TestGetMonthlyReport_Scope(t *testing.T) {
	svc := NewReportService(&fakeSource{})

	_, err := svc.GetMonthlyReport(ctxFor(user.RoleTeacher, "t1"), report.MonthlyReportRequest{TeacherID: "t2", Month: 3, Year: 2025})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = svc.GetMonthlyReport(ctxFor(user.RoleAdmin, ""), report.MonthlyReportRequest{Month: 3, Year: 2025})
	assert.ErrorIs(t, err, user.ErrTeacherProfileRequired)

	m, err := svc.GetMonthlyReport(ctxFor(user.RolePrincipal, "p1"), report.MonthlyReportRequest{TeacherID: "t2", Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, "t2", m.TeacherID)
	assert.Empty(t, m.DailyDetails)

	_, err = svc.GetMonthlyReport(ctxFor(user.RoleTeacher, "t1"), report.MonthlyReportRequest{Month: 13, Year: 2025})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month")
}

func TestGetMonthlyReport_YearBoundFollowsClock(t *testing.T) {
	src := &fakeSource{}
	svc := NewReportService(src, WithClock(func() time.Time {
		return time.Date(2030, time.January, 5, 0, 0, 0, 0, time.UTC)
	}))

	_, err := svc.GetMonthlyReport(ctxFor(user.RoleTeacher, "t1"), report.MonthlyReportRequest{Month: 6, Year: 2031})
	require.NoError(t, err)

	_, err = svc.GetMonthlyReport(ctxFor(user.RoleTeacher, "t1"), report.MonthlyReportRequest{Month: 6, Year: 2032})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2031")
}

func TestExportMonthlyReport(t *testing.T) {
	early := rec("t1", 5, attendance.StatusPresent)
	early.IsEarlyDeparture, early.EarlyMinutes = true, 20

	src := &fakeSource{records: []attendance.Record{
		rec("t1", 3, attendance.StatusPresent),
		early,
	}}
	svc := NewReportService(src)

	file, err := svc.ExportMonthlyReport(ctxFor(user.RoleSupervisor, "s1"), report.MonthlyReportRequest{TeacherID: "t1", Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, "attendance_t1_2025-03.xlsx", file.Filename)
	assert.Equal(t, xlsxContentType, file.ContentType)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{summarySheet, dailySheet}, wb.GetSheetList())

	total, err := wb.GetCellValue(summarySheet, "B6")
	require.NoError(t, err)
	assert.Equal(t, "2", total)

	rows, err := wb.GetRows(dailySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2025-03-05", rows[2][0])
	assert.Equal(t, "Yes", rows[2][7])
	assert.Equal(t, "20", rows[2][8])
}
