package report

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/shopdesk/backend/internal/application/printing"
	"github.com/shopdesk/backend/internal/domain/report"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/export"
	"github.com/shopdesk/backend/internal/infrastructure/storage"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PDFRenderer renders report documents as PDF.
// *printing.DocumentService satisfies it.
type PDFRenderer interface {
	ReportPDF(ctx context.Context, req printing.ReportPDFRequest) (*printing.Document, error)
}

// SideEffectRecorder counts failed best-effort side effects
type SideEffectRecorder interface {
	SideEffectFailed(kind string)
}

var reportTitles = map[printing.ReportKind]string{
	printing.ReportSales:    "Sales Report",
	printing.ReportProducts: "Product Report",
	printing.ReportSupplier: "Supplier Report",
	printing.ReportEmployee: "Employee Report",
}

// ExportService renders reports and catalog lists to downloadable files and
// archives them when storage is configured
type ExportService struct {
	reports *ReportService
	pdf     PDFRenderer
	excel   *export.ExcelExporter
	archive storage.Archive
	metrics SideEffectRecorder
	logger  *zap.Logger
}

// NewExportService creates a new ExportService. archive and metrics may be nil.
func NewExportService(
	reports *ReportService,
	pdf PDFRenderer,
	excel *export.ExcelExporter,
	archive storage.Archive,
	metrics SideEffectRecorder,
	logger *zap.Logger,
) *ExportService {
	if archive == nil {
		archive = storage.NopArchive{}
	}
	return &ExportService{
		reports: reports,
		pdf:     pdf,
		excel:   excel,
		archive: archive,
		metrics: metrics,
		logger:  logger,
	}
}

// Export computes the requested report and renders it as PDF or Excel
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (_ *Export, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export",
		"kind", req.Kind,
		"format", req.Format,
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	kind := printing.ReportKind(strings.ToLower(req.Kind))
	title, ok := reportTitles[kind]
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown report type %q", req.Kind))
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatXLSX {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown export format %q", req.Format))
	}

	body, err := s.compute(ctx, kind, req.RangeRequest)
	if err != nil {
		return nil, err
	}
	rng, err := s.reports.Range(req.RangeRequest)
	if err != nil {
		return nil, err
	}

	var doc *printing.Document
	if format == FormatPDF {
		doc, err = s.pdf.ReportPDF(ctx, printing.ReportPDFRequest{
			Kind:        kind,
			Title:       title,
			Range:       rng,
			Body:        body,
			GeneratedAt: s.reports.now().In(s.reports.loc),
		})
		if err != nil {
			return nil, err
		}
	} else {
		data, err := s.workbook(kind, body)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s workbook: %w", kind, err)
		}
		doc = &printing.Document{
			Data:        data,
			ContentType: printing.ContentTypeXLSX,
			Filename:    fmt.Sprintf("%s-report-%s.xlsx", kind, rng.From.Format("20060102")),
		}
	}

	result := &Export{Document: *doc}
	result.ArchiveKey = s.store(ctx, string(kind), format, doc)
	s.logger.Info("Report exported",
		zap.String("kind", string(kind)),
		zap.String("format", format),
		zap.Int("bytes", len(doc.Data)),
		zap.String("archive_key", result.ArchiveKey))
	return result, nil
}

// ExportProducts writes the product list as an Excel workbook
func (s *ExportService) ExportProducts(ctx context.Context) (*Export, error) {
	products, _, err := s.reports.repos.Products.FindAll(ctx, allRows("name"))
	if err != nil {
		return nil, err
	}
	return s.list(ctx, "products", func() ([]byte, error) { return s.excel.Products(products) })
}

// ExportSuppliers writes the supplier list as an Excel workbook
func (s *ExportService) ExportSuppliers(ctx context.Context) (*Export, error) {
	suppliers, _, err := s.reports.repos.Suppliers.FindAll(ctx, allRows("name"))
	if err != nil {
		return nil, err
	}
	return s.list(ctx, "suppliers", func() ([]byte, error) { return s.excel.Suppliers(suppliers) })
}

func (s *ExportService) list(ctx context.Context, name string, build func() ([]byte, error)) (*Export, error) {
	data, err := build()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s workbook: %w", name, err)
	}
	doc := printing.Document{
		Data:        data,
		ContentType: printing.ContentTypeXLSX,
		Filename:    fmt.Sprintf("%s-%s.xlsx", name, s.reports.now().In(s.reports.loc).Format("20060102")),
	}
	result := &Export{Document: doc}
	result.ArchiveKey = s.store(ctx, name, FormatXLSX, &doc)
	return result, nil
}

func (s *ExportService) compute(ctx context.Context, kind printing.ReportKind, req RangeRequest) (any, error) {
	switch kind {
	case printing.ReportSales:
		return s.reports.SalesReport(ctx, req)
	case printing.ReportProducts:
		return s.reports.ProductReport(ctx, req)
	case printing.ReportSupplier:
		return s.reports.SupplierReport(ctx, req)
	default:
		return s.reports.EmployeeReport(ctx, req)
	}
}

func (s *ExportService) workbook(kind printing.ReportKind, body any) ([]byte, error) {
	switch r := body.(type) {
	case *report.SalesReport:
		return s.excel.SalesReport(r)
	case *report.ProductReport:
		return s.excel.ProductReport(r)
	case *report.SupplierReport:
		return s.excel.SupplierReport(r)
	case *report.EmployeeReport:
		return s.excel.EmployeeReport(r)
	}
	return nil, fmt.Errorf("unsupported report body %T for %s", body, kind)
}

// store archives doc and returns its key; failures are logged and counted
func (s *ExportService) store(ctx context.Context, kind, format string, doc *printing.Document) string {
	if !s.archive.Enabled() {
		return ""
	}
	key := storage.ExportKey(kind, format, s.reports.now())
	stored, err := s.archive.Put(ctx, key, doc.ContentType, doc.Data)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SideEffectFailed("archive")
		}
		s.logger.Warn("Failed to archive export", zap.String("key", path.Base(key)), zap.Error(err))
		return ""
	}
	return stored
}
