package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/report"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	infra "github.com/shopdesk/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRenderer struct {
	requests []*infra.RenderRequest
	err      error
}

func (f *fakeRenderer) Render(_ context.Context, req *infra.RenderRequest) ([]byte, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func (f *fakeRenderer) Close() error { return nil }

func newTestService(t *testing.T, renderer infra.PDFRenderer) *DocumentService {
	t.Helper()
	engine, err := infra.NewTemplateEngine("KES", time.UTC)
	require.NoError(t, err)
	return NewDocumentService(engine, renderer, infra.StoreInfo{
		Name:    "Corner Shop",
		Address: "Moi Avenue 12",
		Phone:   "+254700000000",
	}, zap.NewNop())
}

func newTestSale(t *testing.T) *trade.Sale {
	t.Helper()
	sale, err := trade.NewSale(trade.SaleParams{
		PaymentMethod: trade.PaymentMethodCash,
		Lines: []trade.SaleLine{
			{ProductID: uuid.New(), ProductName: "Milk 500ml", SKU: "MLK-500", Quantity: 2, UnitPrice: decimal.NewFromInt(60)},
			{ProductID: uuid.New(), ProductName: "Bread", SKU: "BRD-400", Quantity: 1, UnitPrice: decimal.NewFromInt(55)},
		},
		AmountPaid: decimal.NewFromInt(200),
		SoldAt:     time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return sale
}

func TestDocumentService_ReceiptPDF(t *testing.T) {
	renderer := &fakeRenderer{}
	svc := newTestService(t, renderer)
	sale := newTestSale(t)

	doc, err := svc.ReceiptPDF(context.Background(), sale, "Jane Cashier", "")
	require.NoError(t, err)

	assert.Equal(t, ContentTypePDF, doc.ContentType)
	assert.Equal(t, sale.ReceiptNumber+".pdf", doc.Filename)
	assert.NotEmpty(t, doc.Data)

	require.Len(t, renderer.requests, 1)
	req := renderer.requests[0]
	assert.Equal(t, infra.PaperReceipt, req.Paper)
	assert.Contains(t, req.HTML, "Corner Shop")
	assert.Contains(t, req.HTML, sale.ReceiptNumber)
	assert.Contains(t, req.HTML, "Milk 500ml")
}

func TestDocumentService_ReceiptPDFRenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("chrome crashed")}
	svc := newTestService(t, renderer)

	_, err := svc.ReceiptPDF(context.Background(), newTestSale(t), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome crashed")
}

func TestDocumentService_ReportPDF(t *testing.T) {
	renderer := &fakeRenderer{}
	svc := newTestService(t, renderer)
	sale := newTestSale(t)
	rng := report.DateRange{
		From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	body := &report.SalesReport{
		Range:       rng,
		Summary:     report.SummarizeSales([]trade.Sale{*sale}),
		Daily:       report.DailyRevenue(rng, []trade.Sale{*sale}),
		ByMethod:    report.RevenueByMethod([]trade.Sale{*sale}),
		TopProducts: report.RankProducts([]trade.Sale{*sale}, 5),
	}

	doc, err := svc.ReportPDF(context.Background(), ReportPDFRequest{
		Kind:  ReportSales,
		Title: "Sales report",
		Range: rng,
		Body:  body,
	})
	require.NoError(t, err)
	assert.Equal(t, "sales-report-20260301.pdf", doc.Filename)

	require.Len(t, renderer.requests, 1)
	assert.Equal(t, infra.PaperA4, renderer.requests[0].Paper)
	assert.NotEmpty(t, renderer.requests[0].FooterHTML)
}

func TestDocumentService_ReportPDFUnknownKind(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})

	_, err := svc.ReportPDF(context.Background(), ReportPDFRequest{Kind: "payroll"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_INPUT", shared.CodeOf(err))
}

func TestDocumentService_AccountEmail(t *testing.T) {
	svc := newTestService(t, &fakeRenderer{})

	html, err := svc.AccountEmail("Mary Wanjiku", "mary", "s3cret-Pass", true)
	require.NoError(t, err)
	assert.Contains(t, html, "mary")
	assert.Contains(t, html, "s3cret-Pass")
}
