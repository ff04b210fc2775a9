package printing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	infra "github.com/shopdesk/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

const renderTimeout = 45 * time.Second

var reportTemplates = map[ReportKind]string{
	ReportSales:    infra.TemplateSalesReport,
	ReportProducts: infra.TemplateProductReport,
	ReportSupplier: infra.TemplateSupplierReport,
	ReportEmployee: infra.TemplateEmployeeReport,
}

// DocumentService renders receipts, report PDFs and email bodies
type DocumentService struct {
	templateEngine *infra.TemplateEngine
	pdfRenderer    infra.PDFRenderer
	store          infra.StoreInfo
	logger         *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	templateEngine *infra.TemplateEngine,
	pdfRenderer infra.PDFRenderer,
	store infra.StoreInfo,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		templateEngine: templateEngine,
		pdfRenderer:    pdfRenderer,
		store:          store,
		logger:         logger,
	}
}

// Store returns the shop identity printed on documents
func (s *DocumentService) Store() infra.StoreInfo {
	return s.store
}

// ReceiptPDF renders an 80mm receipt for a sale
func (s *DocumentService) ReceiptPDF(ctx context.Context, sale *trade.Sale, cashierName, customerName string) (*Document, error) {
	html, err := s.templateEngine.Render(infra.TemplateReceipt, infra.ReceiptData{
		Store:        s.store,
		Sale:         sale,
		CashierName:  cashierName,
		CustomerName: customerName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt html: %w", err)
	}

	pdf, err := s.pdfRenderer.Render(ctx, &infra.RenderRequest{
		HTML:    html,
		Title:   "Receipt " + sale.ReceiptNumber,
		Paper:   infra.PaperReceipt,
		Margins: infra.Margins{Top: 4, Right: 4, Bottom: 4, Left: 4},
		Timeout: renderTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt pdf: %w", err)
	}

	s.logger.Debug("Receipt rendered",
		zap.String("receipt_number", sale.ReceiptNumber),
		zap.Int("bytes", len(pdf)))
	return &Document{
		Data:        pdf,
		ContentType: ContentTypePDF,
		Filename:    sale.ReceiptNumber + ".pdf",
	}, nil
}

// ReportPDF renders one of the report templates on A4 paper
func (s *DocumentService) ReportPDF(ctx context.Context, req ReportPDFRequest) (*Document, error) {
	name, ok := reportTemplates[req.Kind]
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unknown report type %q", req.Kind))
	}
	generatedAt := req.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	html, err := s.templateEngine.Render(name, infra.ReportDocument{
		Title:       req.Title,
		Store:       s.store,
		GeneratedAt: generatedAt,
		Range:       req.Range,
		Body:        req.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render %s report html: %w", req.Kind, err)
	}

	pdf, err := s.pdfRenderer.Render(ctx, &infra.RenderRequest{
		HTML:       html,
		Title:      req.Title,
		Paper:      infra.PaperA4,
		Landscape:  req.Kind == ReportSupplier,
		Margins:    infra.Margins{Top: 12, Right: 10, Bottom: 14, Left: 10},
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
		Timeout:    renderTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render %s report pdf: %w", req.Kind, err)
	}

	return &Document{
		Data:        pdf,
		ContentType: ContentTypePDF,
		Filename:    fmt.Sprintf("%s-report-%s.pdf", req.Kind, req.Range.From.Format("20060102")),
	}, nil
}

// PurchaseRequestEmail renders the HTML body of a status notification
func (s *DocumentService) PurchaseRequestEmail(pr *trade.PurchaseRequest, message string, hasReceipt bool) (string, error) {
	return s.templateEngine.Render(infra.TemplatePurchaseRequestEmail, infra.PurchaseRequestEmail{
		Store:       s.store,
		Request:     pr,
		StatusLabel: pr.Status.Label(),
		Message:     message,
		HasReceipt:  hasReceipt,
	})
}

// AccountEmail renders the welcome or password reset body
func (s *DocumentService) AccountEmail(fullName, username, password string, reset bool) (string, error) {
	return s.templateEngine.Render(infra.TemplateAccountEmail, infra.AccountEmail{
		Store:    s.store,
		FullName: strings.TrimSpace(fullName),
		Username: username,
		Password: password,
		Reset:    reset,
	})
}
