package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/printing"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	channelPOS             = "pos"
	channelPurchaseRequest = "purchase_request"

	// dailySummaryLimit caps the sales read for one cashier-day
	dailySummaryLimit = 5000
)

// ReceiptRenderer renders a sale receipt as PDF.
// *printing.DocumentService satisfies it.
type ReceiptRenderer interface {
	ReceiptPDF(ctx context.Context, sale *trade.Sale, cashierName, customerName string) (*printing.Document, error)
}

// SaleService handles point-of-sale checkout and sale records
type SaleService struct {
	txScope      appshared.TransactionScope
	saleRepo     trade.SaleRepository
	userRepo     identity.UserRepository
	customerRepo partner.CustomerRepository
	receipts     ReceiptRenderer
	publisher    shared.EventPublisher
	metrics      appshared.BusinessMetrics
	logger       *zap.Logger
}

// NewSaleService creates a new SaleService. publisher and metrics may be nil.
func NewSaleService(
	txScope appshared.TransactionScope,
	saleRepo trade.SaleRepository,
	userRepo identity.UserRepository,
	customerRepo partner.CustomerRepository,
	receipts ReceiptRenderer,
	publisher shared.EventPublisher,
	metrics appshared.BusinessMetrics,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		txScope:      txScope,
		saleRepo:     saleRepo,
		userRepo:     userRepo,
		customerRepo: customerRepo,
		receipts:     receipts,
		publisher:    publisher,
		metrics:      appshared.MetricsOrNop(metrics),
		logger:       logger,
	}
}

// Checkout records a POS sale. Products are priced at their current selling
// price; stock is deducted and the sale persisted in one transaction.
func (s *SaleService) Checkout(ctx context.Context, cashierID uuid.UUID, req CheckoutRequest) (_ *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "checkout",
		"cashier_id", cashierID.String(),
		"payment_method", req.PaymentMethod,
		"item_count", len(req.Items),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	method := trade.PaymentMethod(strings.ToLower(req.PaymentMethod))
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", req.PaymentMethod))
	}
	checkoutID := strings.TrimSpace(req.MpesaCheckoutRequestID)
	if checkoutID != "" && method != trade.PaymentMethodMpesa {
		return nil, shared.NewDomainError("INVALID_INPUT", "An Mpesa checkout request can only be used with the mpesa payment method")
	}
	if req.CustomerID != nil {
		if err := s.checkCustomer(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	var sale *trade.Sale
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		products, lines, err := resolveLines(ctx, repos.Products(), req.Items, true)
		if err != nil {
			return err
		}

		var payment *trade.MpesaTransaction
		if checkoutID != "" {
			if payment, err = confirmedPayment(ctx, repos.Mpesa(), checkoutID); err != nil {
				return err
			}
		}

		params := trade.SaleParams{
			CashierID:     &cashierID,
			CustomerID:    req.CustomerID,
			PaymentMethod: method,
			Lines:         lines,
			Discount:      req.Discount,
			TaxRate:       req.TaxRate,
			AmountPaid:    req.AmountPaid,
		}
		if payment != nil {
			params.MpesaReceipt = payment.ReceiptNumber
			if params.AmountPaid.IsZero() {
				params.AmountPaid = payment.Amount
			}
		}
		sale, err = trade.NewSale(params)
		if err != nil {
			return err
		}

		if err := deductStock(ctx, repos, products, sale.Items, catalog.MovementSale, sale.ReceiptNumber, &cashierID); err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return err
		}
		if payment != nil {
			if err := payment.LinkToSale(sale.ID); err != nil {
				return err
			}
			return repos.Mpesa().Save(ctx, payment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SaleCompleted(string(sale.PaymentMethod), channelPOS, sale.Total)
	for range sale.Items {
		s.metrics.StockMoved(string(catalog.MovementSale))
	}
	s.logger.Info("Sale completed",
		zap.String("receipt_number", sale.ReceiptNumber),
		zap.String("cashier_id", cashierID.String()),
		zap.String("payment_method", string(sale.PaymentMethod)),
		zap.String("total", sale.Total.StringFixed(2)))
	s.publishEvents(ctx, sale)
	telemetry.AddEvent(span, "sale.completed", "receipt_number", sale.ReceiptNumber)

	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByID retrieves a sale with its items
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByReceiptNumber retrieves a sale by its receipt number
func (s *SaleService) GetByReceiptNumber(ctx context.Context, receipt string) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByReceiptNumber(ctx, strings.ToUpper(strings.TrimSpace(receipt)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
		}
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// List retrieves sales page by page, newest first
func (s *SaleService) List(ctx context.Context, f SaleListFilter) (*shared.Paginated[SaleResponse], error) {
	filter := listFilter(f.Page, f.PageSize, f.From, f.To)
	filter.OrderBy = "sold_at"
	if f.CashierID != nil {
		filter = filter.With("cashier_id", *f.CashierID)
	}
	if f.CustomerID != nil {
		filter = filter.With("customer_id", *f.CustomerID)
	}
	if f.PaymentMethod != "" {
		filter = filter.With("payment_method", f.PaymentMethod)
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}

	sales, total, err := s.saleRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToSaleResponses(sales), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Void marks a sale voided and puts its items back in stock
func (s *SaleService) Void(ctx context.Context, id, actorID uuid.UUID, req VoidSaleRequest) (*SaleResponse, error) {
	var sale *trade.Sale
	var missing []uuid.UUID
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
			}
			return err
		}
		if err := sale.Void(req.Reason); err != nil {
			return err
		}
		missing, err = restoreStock(ctx, repos, sale.Items, sale.ReceiptNumber, &actorID)
		if err != nil {
			return err
		}
		return repos.Sales().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SaleVoided()
	if len(missing) > 0 {
		s.logger.Warn("Voided sale references deleted products, stock not restored for them",
			zap.String("receipt_number", sale.ReceiptNumber),
			zap.Int("missing_products", len(missing)))
	}
	s.logger.Info("Sale voided",
		zap.String("receipt_number", sale.ReceiptNumber),
		zap.String("actor_id", actorID.String()),
		zap.String("reason", sale.VoidReason))

	resp := ToSaleResponse(sale)
	return &resp, nil
}

// Receipt renders the sale receipt as PDF
func (s *SaleService) Receipt(ctx context.Context, id uuid.UUID) (*printing.Document, error) {
	sale, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.receipts.ReceiptPDF(ctx, sale, s.cashierName(ctx, sale), s.customerName(ctx, sale))
}

// DailySummary totals a cashier's sales for the calendar day of date, in
// date's location
func (s *SaleService) DailySummary(ctx context.Context, cashierID uuid.UUID, date time.Time) (*DailySummaryResponse, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.AddDate(0, 0, 1)

	filter := shared.DefaultFilter()
	filter.PageSize = dailySummaryLimit
	filter.OrderBy = "sold_at"
	filter.From = &from
	filter.To = &to
	filter = filter.With("cashier_id", cashierID)

	sales, total, err := s.saleRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total > int64(len(sales)) {
		s.logger.Warn("Daily summary truncated",
			zap.String("cashier_id", cashierID.String()),
			zap.Int64("total", total),
			zap.Int("read", len(sales)))
	}

	summary := &DailySummaryResponse{
		Date:      from.Format("2006-01-02"),
		CashierID: cashierID,
		Revenue:   decimal.Zero,
		Discount:  decimal.Zero,
		Tax:       decimal.Zero,
		ByMethod:  make(map[string]decimal.Decimal),
	}
	for _, sale := range sales {
		if sale.Status == trade.SaleStatusVoided {
			summary.Voided++
			continue
		}
		summary.SaleCount++
		summary.ItemsSold += sale.ItemCount()
		summary.Revenue = summary.Revenue.Add(sale.Total)
		summary.Discount = summary.Discount.Add(sale.Discount)
		summary.Tax = summary.Tax.Add(sale.Tax)
		method := string(sale.PaymentMethod)
		summary.ByMethod[method] = summary.ByMethod[method].Add(sale.Total)
	}
	return summary, nil
}

func (s *SaleService) find(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
		}
		return nil, err
	}
	return sale, nil
}

func (s *SaleService) checkCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		}
		return err
	}
	return nil
}

func (s *SaleService) cashierName(ctx context.Context, sale *trade.Sale) string {
	if sale.CashierID == nil {
		return ""
	}
	user, err := s.userRepo.FindByID(ctx, *sale.CashierID)
	if err != nil {
		return ""
	}
	return user.FullName
}

func (s *SaleService) customerName(ctx context.Context, sale *trade.Sale) string {
	if sale.CustomerID == nil {
		return ""
	}
	customer, err := s.customerRepo.FindByID(ctx, *sale.CustomerID)
	if err != nil {
		return ""
	}
	return customer.Name
}

func (s *SaleService) publishEvents(ctx context.Context, sale *trade.Sale) {
	events := sale.GetDomainEvents()
	sale.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish sale events", zap.Error(err))
	}
}

// confirmedPayment loads a successful, unlinked Mpesa transaction
func confirmedPayment(ctx context.Context, repo trade.MpesaRepository, checkoutID string) (*trade.MpesaTransaction, error) {
	payment, err := repo.FindByCheckoutRequestID(ctx, checkoutID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("MPESA_TRANSACTION_NOT_FOUND", "Mpesa transaction not found")
		}
		return nil, err
	}
	if payment.Status != trade.MpesaStatusSuccess {
		return nil, shared.NewDomainError("PAYMENT_NOT_CONFIRMED",
			fmt.Sprintf("Mpesa payment %s is %s", checkoutID, payment.Status))
	}
	if payment.SaleID != nil {
		return nil, shared.NewDomainError("ALREADY_LINKED", "Mpesa transaction is already linked to a sale")
	}
	return payment, nil
}
