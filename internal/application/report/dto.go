package report

import (
	"time"

	"github.com/shopdesk/backend/internal/application/printing"
)

// Export formats
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// RangeRequest selects the reporting period by preset or explicit dates
type RangeRequest struct {
	Preset string     `form:"preset" binding:"omitempty,oneof=today yesterday this_week last_7_days this_month last_month this_year custom"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
}

// ExportRequest selects a report and its output format
type ExportRequest struct {
	RangeRequest
	Kind   string `form:"type" binding:"required,oneof=sales products suppliers employees"`
	Format string `form:"format" binding:"omitempty,oneof=pdf xlsx"`
}

// Export is a generated report file. ArchiveKey is set when the file was
// stored in the archive.
type Export struct {
	printing.Document
	ArchiveKey string
}
