package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/printing"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tradeFixture struct {
	products  *MockProductRepository
	movements *MockStockMovementRepository
	sales     *MockSaleRepository
	requests  *MockPurchaseRequestRepository
	mpesa     *MockMpesaRepository
	carts     *MockCartRepository
	customers *MockCustomerRepository
	users     *MockUserRepository
	receipts  *MockReceiptRenderer
	publisher *MockEventPublisher
	scope     *appshared.NoOpTransactionScope
}

func newTradeFixture() *tradeFixture {
	f := &tradeFixture{
		products:  new(MockProductRepository),
		movements: new(MockStockMovementRepository),
		sales:     new(MockSaleRepository),
		requests:  new(MockPurchaseRequestRepository),
		mpesa:     new(MockMpesaRepository),
		carts:     new(MockCartRepository),
		customers: new(MockCustomerRepository),
		users:     new(MockUserRepository),
		receipts:  new(MockReceiptRenderer),
		publisher: new(MockEventPublisher),
	}
	f.scope = &appshared.NoOpTransactionScope{Repos: &appshared.StaticRepositories{
		ProductRepo:         f.products,
		StockMovementRepo:   f.movements,
		SaleRepo:            f.sales,
		PurchaseRequestRepo: f.requests,
		MpesaRepo:           f.mpesa,
		CartRepo:            f.carts,
	}}
	return f
}

func (f *tradeFixture) saleService() *SaleService {
	return NewSaleService(f.scope, f.sales, f.users, f.customers, f.receipts, f.publisher, nil, zap.NewNop())
}

// expectStockWrites accepts product saves and movement inserts
func (f *tradeFixture) expectStockWrites() {
	f.products.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)
	f.movements.On("Create", mock.Anything, mock.AnythingOfType("*catalog.StockMovement")).Return(nil)
}

func TestSaleService_CheckoutDeductsStock(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)
	bread := newStockedProduct("BRD-400", 5, 55)
	cashierID := uuid.New()

	f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)
	f.products.On("FindByID", mock.Anything, bread.ID).Return(bread, nil)
	f.expectStockWrites()
	var created *trade.Sale
	f.sales.On("Create", mock.Anything, mock.AnythingOfType("*trade.Sale")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*trade.Sale) }).
		Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.saleService().Checkout(ctx, cashierID, CheckoutRequest{
		Items: []LineItemRequest{
			{ProductID: milk.ID, Quantity: 2},
			{ProductID: bread.ID, Quantity: 1},
			{ProductID: milk.ID, Quantity: 1},
		},
		PaymentMethod: "cash",
		AmountPaid:    decimal.NewFromInt(300),
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(235).Equal(resp.Total), "total = 3*60 + 55")
	assert.True(t, decimal.NewFromInt(65).Equal(resp.Change))
	assert.Len(t, resp.Items, 2, "repeated products are merged into one line")
	assert.Regexp(t, `^RCPT-\d{8}-[0-9A-F]{6}$`, resp.ReceiptNumber)
	assert.Equal(t, 7, milk.StockQuantity)
	assert.Equal(t, 4, bread.StockQuantity)

	require.NotNil(t, created)
	assert.Equal(t, cashierID, *created.CashierID)
	f.movements.AssertNumberOfCalls(t, "Create", 2)
	f.sales.AssertNumberOfCalls(t, "Create", 1)
	f.publisher.AssertExpectations(t)
}

func TestSaleService_CheckoutRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient stock", func(t *testing.T) {
		f := newTradeFixture()
		milk := newStockedProduct("MLK-500", 1, 60)
		f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)

		_, err := f.saleService().Checkout(ctx, uuid.New(), CheckoutRequest{
			Items:         []LineItemRequest{{ProductID: milk.ID, Quantity: 2}},
			PaymentMethod: "cash",
			AmountPaid:    decimal.NewFromInt(500),
		})
		require.Error(t, err)
		assert.Equal(t, "INSUFFICIENT_STOCK", shared.CodeOf(err))
		assert.Equal(t, 1, milk.StockQuantity)
		f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("inactive product", func(t *testing.T) {
		f := newTradeFixture()
		milk := newStockedProduct("MLK-500", 10, 60)
		milk.ToggleActive()
		f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)

		_, err := f.saleService().Checkout(ctx, uuid.New(), CheckoutRequest{
			Items:         []LineItemRequest{{ProductID: milk.ID, Quantity: 1}},
			PaymentMethod: "card",
		})
		require.Error(t, err)
		assert.Equal(t, "PRODUCT_INACTIVE", shared.CodeOf(err))
	})

	t.Run("cash below total", func(t *testing.T) {
		f := newTradeFixture()
		milk := newStockedProduct("MLK-500", 10, 60)
		f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)

		_, err := f.saleService().Checkout(ctx, uuid.New(), CheckoutRequest{
			Items:         []LineItemRequest{{ProductID: milk.ID, Quantity: 2}},
			PaymentMethod: "cash",
			AmountPaid:    decimal.NewFromInt(100),
		})
		require.Error(t, err)
		assert.Equal(t, "INSUFFICIENT_PAYMENT", shared.CodeOf(err))
		assert.Equal(t, 10, milk.StockQuantity)
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newTradeFixture()
		customerID := uuid.New()
		f.customers.On("FindByID", mock.Anything, customerID).Return(nil, shared.ErrNotFound)

		_, err := f.saleService().Checkout(ctx, uuid.New(), CheckoutRequest{
			Items:         []LineItemRequest{{ProductID: uuid.New(), Quantity: 1}},
			PaymentMethod: "cash",
			CustomerID:    &customerID,
		})
		require.Error(t, err)
		assert.Equal(t, "CUSTOMER_NOT_FOUND", shared.CodeOf(err))
	})
}

func TestSaleService_CheckoutWithMpesaPayment(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)

	payment, err := trade.NewMpesaTransaction("29115-34620561-1", "ws_CO_191220191020363925", "254708374149", decimal.NewFromInt(120))
	require.NoError(t, err)
	payment.ApplyResult(0, "The service request is processed successfully.", "NLJ7RT61SV", decimal.NewFromInt(120), "", nil)

	f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)
	f.expectStockWrites()
	f.mpesa.On("FindByCheckoutRequestID", mock.Anything, payment.CheckoutRequestID).Return(payment, nil)
	f.mpesa.On("Save", mock.Anything, payment).Return(nil)
	f.sales.On("Create", mock.Anything, mock.AnythingOfType("*trade.Sale")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.saleService().Checkout(ctx, uuid.New(), CheckoutRequest{
		Items:                  []LineItemRequest{{ProductID: milk.ID, Quantity: 2}},
		PaymentMethod:          "mpesa",
		MpesaCheckoutRequestID: payment.CheckoutRequestID,
	})
	require.NoError(t, err)

	assert.Equal(t, "NLJ7RT61SV", resp.MpesaReceipt)
	require.NotNil(t, payment.SaleID)
	assert.Equal(t, resp.ID, *payment.SaleID)
	f.mpesa.AssertExpectations(t)
}

func TestSaleService_CheckoutWithUnconfirmedMpesaPayment(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)

	payment, err := trade.NewMpesaTransaction("", "ws_CO_PENDING", "254708374149", decimal.NewFromInt(60))
	require.NoError(t, err)
	f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)
	f.mpesa.On("FindByCheckoutRequestID", mock.Anything, "ws_CO_PENDING").Return(payment, nil)

	_, err = f.saleService().Checkout(ctx, uuid.New(), CheckoutRequest{
		Items:                  []LineItemRequest{{ProductID: milk.ID, Quantity: 1}},
		PaymentMethod:          "mpesa",
		MpesaCheckoutRequestID: "ws_CO_PENDING",
	})
	require.Error(t, err)
	assert.Equal(t, "PAYMENT_NOT_CONFIRMED", shared.CodeOf(err))
	assert.Equal(t, 10, milk.StockQuantity)
}

func newCompletedSale(t *testing.T, product *catalog.Product, qty int, method trade.PaymentMethod, soldAt time.Time) *trade.Sale {
	t.Helper()
	sale, err := trade.NewSale(trade.SaleParams{
		PaymentMethod: method,
		Lines: []trade.SaleLine{{
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Quantity:    qty,
			UnitPrice:   product.SellingPrice,
		}},
		AmountPaid: product.SellingPrice.Mul(decimal.NewFromInt(int64(qty))),
		SoldAt:     soldAt,
	})
	require.NoError(t, err)
	sale.ClearDomainEvents()
	return sale
}

func TestSaleService_VoidRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 5, 60)
	sale := newCompletedSale(t, milk, 3, trade.PaymentMethodCash, time.Now())
	adminID := uuid.New()

	f.sales.On("FindByID", mock.Anything, sale.ID).Return(sale, nil)
	f.sales.On("SaveWithLock", mock.Anything, sale).Return(nil)
	f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)
	var movement *catalog.StockMovement
	f.products.On("Save", mock.Anything, milk).Return(nil)
	f.movements.On("Create", mock.Anything, mock.AnythingOfType("*catalog.StockMovement")).
		Run(func(args mock.Arguments) { movement = args.Get(1).(*catalog.StockMovement) }).
		Return(nil)

	svc := f.saleService()
	resp, err := svc.Void(ctx, sale.ID, adminID, VoidSaleRequest{Reason: "Customer returned goods"})
	require.NoError(t, err)

	assert.Equal(t, string(trade.SaleStatusVoided), resp.Status)
	assert.NotNil(t, resp.VoidedAt)
	assert.Equal(t, 8, milk.StockQuantity)
	require.NotNil(t, movement)
	assert.Equal(t, catalog.MovementSaleVoid, movement.Reason)
	assert.Equal(t, 3, movement.Change)

	_, err = svc.Void(ctx, sale.ID, adminID, VoidSaleRequest{Reason: "again"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE", shared.CodeOf(err))
}

func TestSaleService_DailySummary(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	cashierID := uuid.New()
	day := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	milk := newStockedProduct("MLK-500", 100, 60)

	cash := newCompletedSale(t, milk, 2, trade.PaymentMethodCash, day)
	card := newCompletedSale(t, milk, 1, trade.PaymentMethodCard, day)
	voided := newCompletedSale(t, milk, 5, trade.PaymentMethodCash, day)
	require.NoError(t, voided.Void("wrong item"))

	f.sales.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["cashier_id"] == cashierID &&
			filter.From.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) &&
			filter.To.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	})).Return([]trade.Sale{*cash, *card, *voided}, int64(3), nil)

	summary, err := f.saleService().DailySummary(ctx, cashierID, day)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-14", summary.Date)
	assert.Equal(t, 2, summary.SaleCount)
	assert.Equal(t, 1, summary.Voided)
	assert.Equal(t, 3, summary.ItemsSold)
	assert.True(t, decimal.NewFromInt(180).Equal(summary.Revenue))
	assert.True(t, decimal.NewFromInt(120).Equal(summary.ByMethod["cash"]))
	assert.True(t, decimal.NewFromInt(60).Equal(summary.ByMethod["card"]))
}

func TestSaleService_Receipt(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)
	sale := newCompletedSale(t, milk, 1, trade.PaymentMethodCash, time.Now())
	cashierID := uuid.New()
	sale.CashierID = &cashierID

	cashier := &identity.User{FullName: "Jane Wambui"}
	f.sales.On("FindByID", mock.Anything, sale.ID).Return(sale, nil)
	f.users.On("FindByID", mock.Anything, cashierID).Return(cashier, nil)
	doc := &printing.Document{Data: []byte("%PDF"), ContentType: printing.ContentTypePDF, Filename: sale.ReceiptNumber + ".pdf"}
	f.receipts.On("ReceiptPDF", mock.Anything, sale, "Jane Wambui", "").Return(doc, nil)

	got, err := f.saleService().Receipt(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestSaleService_GetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	id := uuid.New()
	f.sales.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.saleService().GetByID(ctx, id)
	require.Error(t, err)
	assert.Equal(t, "SALE_NOT_FOUND", shared.CodeOf(err))
}
