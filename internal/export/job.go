// Package export renders report results into downloadable artifacts.
package export

import (
	"fmt"
	"time"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat defaults to xlsx.
func ParseFormat(s string) Format {
	if Format(s) == FormatPDF {
		return FormatPDF
	}
	return FormatXLSX
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is an asynchronous export request.
type Job struct {
	ID          string          `json:"id"`
	Status      JobStatus       `json:"status"`
	Format      Format          `json:"format"`
	Grouping    report.Grouping `json:"grouping"`
	Filter      report.Filter   `json:"filter"`
	RequestedBy string          `json:"requested_by"`
	FileName    string          `json:"file_name,omitempty"`
	Error       string          `json:"error,omitempty"`
	Attempts    int             `json:"attempts"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FileName names an artifact after its generation time.
func FileName(f Format, at time.Time) string {
	return fmt.Sprintf("channel_bookings_%s.%s", at.Format("20060102_150405"), f)
}
