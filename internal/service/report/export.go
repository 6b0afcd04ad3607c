package report

import (
	"bytes"
	"fmt"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet = "Summary"
	dailySheet   = "Daily"
)

var dailyHeaders = []string{
	"Date", "Day", "Status", "Check In", "Check Out",
	"Late", "Late Minutes", "Early Departure", "Early Minutes", "Manual Override",
}

// renderWorkbook lays the monthly report out as two sheets: totals and one row per day.
func renderWorkbook(m report.MonthlyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(dailySheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeSummary(f, m, headerStyle); err != nil {
		return nil, err
	}
	if err := writeDaily(f, m, headerStyle); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, m report.MonthlyReport, headerStyle int) error {
	s := m.Summary
	rows := [][]any{
		{"Teacher", m.TeacherID},
		{"Period", fmt.Sprintf("%s to %s", m.PeriodStart, m.PeriodEnd)},
		{"Generated At", m.GeneratedAt},
		{},
		{"Metric", "Value"},
		{"Total Days", s.Total},
		{"Present", s.Present},
		{"Late", s.Late},
		{"Absent", s.Absent},
		{"Sick", s.Sick},
		{"Leave", s.Leave},
		{"Excused", s.Excused},
		{"Attendance Rate (%)", s.AttendanceRate},
		{"Punctuality Rate (%)", s.PunctualityRate},
		{"Total Late Minutes", s.TotalLateMinutes},
		{"Early Departures", s.TotalEarlyDepartures},
		{"Total Early Minutes", s.TotalEarlyMinutes},
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(summarySheet, "A5", "B5", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "B", 24)
}

func writeDaily(f *excelize.File, m report.MonthlyReport, headerStyle int) error {
	if err := f.SetSheetRow(dailySheet, "A1", &dailyHeaders); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(dailyHeaders))
	if err := f.SetCellStyle(dailySheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	row := 2
	for d := range m.Days() {
		values := []any{
			d.Date,
			d.DayOfWeek,
			d.Status,
			valueOrDash(d.CheckInTime),
			valueOrDash(d.CheckOutTime),
			yesNo(d.IsLate),
			d.LateMinutes,
			yesNo(d.IsEarlyDeparture),
			d.EarlyMinutes,
			yesNo(d.IsManualOverride),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(dailySheet, cell, &values); err != nil {
			return err
		}
		row++
	}

	return f.SetColWidth(dailySheet, "A", lastCol, 18)
}

func valueOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
