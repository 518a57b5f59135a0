package report

import "time"

// EventReportGenerated is the Kafka event type for a newly archived report.
const EventReportGenerated = "report.generated"

// ReportGenerated announces an archived weekly report. Consumers fetch the
// PDF from the archive by WeekStart.
type ReportGenerated struct {
	ID          string    `json:"id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Filename    string    `json:"filename"`
	SizeBytes   int       `json:"size_bytes"`
	GeneratedAt time.Time `json:"generated_at"`
}
