package printing

import (
	"time"

	"github.com/shopdesk/backend/internal/domain/report"
)

// Content types of generated documents
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Document is a generated file ready for download or attachment
type Document struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ReportKind selects the report template
type ReportKind string

const (
	ReportSales    ReportKind = "sales"
	ReportProducts ReportKind = "products"
	ReportSupplier ReportKind = "suppliers"
	ReportEmployee ReportKind = "employees"
)

// ReportPDFRequest describes a report to render as PDF
type ReportPDFRequest struct {
	Kind  ReportKind
	Title string
	Range report.DateRange
	// Body is the matching report value, e.g. *report.SalesReport for ReportSales
	Body        any
	GeneratedAt time.Time
}
