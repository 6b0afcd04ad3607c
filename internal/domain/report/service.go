package report

import "context"

// ReportService folds attendance records into dashboard statistics and monthly reports.
// Teachers only see their own numbers; reports.view unlocks every teacher in the school.
type ReportService interface {
	GetStats(ctx context.Context, filter StatsFilter) (StatsResponse, error)

	GetMonthlyReport(ctx context.Context, req MonthlyReportRequest) (MonthlyReport, error)

	// ExportMonthlyReport renders GetMonthlyReport as an XLSX workbook
	ExportMonthlyReport(ctx context.Context, req MonthlyReportRequest) (ExportFile, error)
}
