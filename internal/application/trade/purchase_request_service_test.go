package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (f *tradeFixture) requestService() *PurchaseRequestService {
	return NewPurchaseRequestService(f.scope, f.requests, f.customers, f.publisher, nil, zap.NewNop())
}

func lineFor(p *catalog.Product, qty int) trade.SaleLine {
	return trade.SaleLine{
		ProductID:   p.ID,
		ProductName: p.Name,
		SKU:         p.SKU,
		Quantity:    qty,
		UnitPrice:   p.SellingPrice,
	}
}

// newRequestAt builds a purchase request and walks it forward to status
func newRequestAt(t *testing.T, status trade.PurchaseRequestStatus, lines ...trade.SaleLine) *trade.PurchaseRequest {
	t.Helper()
	pr, err := trade.NewPurchaseRequest(uuid.New(), "Amina Otieno", "amina@example.com", "", lines)
	require.NoError(t, err)
	for _, next := range []trade.PurchaseRequestStatus{
		trade.PurchaseRequestStatusApproved,
		trade.PurchaseRequestStatusProcessing,
		trade.PurchaseRequestStatusShipped,
		trade.PurchaseRequestStatusDelivered,
	} {
		if pr.Status == status {
			break
		}
		require.NoError(t, pr.TransitionTo(next, trade.TransitionOptions{}))
	}
	require.Equal(t, status, pr.Status)
	pr.ClearDomainEvents()
	return pr
}

func TestPurchaseRequestService_CompleteCreatesOneSale(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)
	bread := newStockedProduct("BRD-400", 4, 55)
	pr := newRequestAt(t, trade.PurchaseRequestStatusDelivered, lineFor(milk, 3), lineFor(bread, 2))
	actorID := uuid.New()

	f.requests.On("FindByID", mock.Anything, pr.ID).Return(pr, nil)
	f.requests.On("SaveWithLock", mock.Anything, pr).Return(nil)
	f.sales.On("CountByPurchaseRequest", mock.Anything, pr.ID).Return(int64(0), nil)
	f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)
	f.products.On("FindByID", mock.Anything, bread.ID).Return(bread, nil)
	f.expectStockWrites()
	var created []*trade.Sale
	f.sales.On("Create", mock.Anything, mock.AnythingOfType("*trade.Sale")).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(*trade.Sale)) }).
		Return(nil)
	var published []shared.DomainEvent
	f.publisher.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(1).([]shared.DomainEvent) }).
		Return(nil)

	result, err := f.requestService().UpdateStatus(ctx, pr.ID, actorID, UpdateStatusRequest{Status: "completed"})
	require.NoError(t, err)

	require.Len(t, created, 1, "exactly one sale per completed request")
	sale := created[0]
	assert.True(t, pr.ItemsTotal().Equal(sale.Total), "sale total equals the sum of request items")
	assert.True(t, decimal.NewFromInt(290).Equal(sale.Total))
	assert.Equal(t, pr.ID, *sale.PurchaseRequestID)
	assert.Equal(t, pr.CustomerID, *sale.CustomerID)
	assert.Len(t, sale.Items, 2)

	assert.Equal(t, string(trade.PurchaseRequestStatusCompleted), result.Request.Status)
	require.NotNil(t, result.Request.SaleID)
	assert.Equal(t, sale.ID, *result.Request.SaleID)
	assert.NotNil(t, result.Request.CompletedAt)
	require.NotNil(t, result.Sale)
	assert.Equal(t, sale.ReceiptNumber, result.Sale.ReceiptNumber)

	assert.Equal(t, 7, milk.StockQuantity)
	assert.Equal(t, 2, bread.StockQuantity)
	f.movements.AssertNumberOfCalls(t, "Create", 2)

	types := make([]string, len(published))
	for i, e := range published {
		types[i] = e.EventType()
	}
	assert.ElementsMatch(t, []string{trade.EventTypePurchaseRequestStatusChanged, trade.EventTypeSaleCompleted}, types)
}

func TestPurchaseRequestService_CompletePaymentMethodIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)
	pr := newRequestAt(t, trade.PurchaseRequestStatusDelivered, lineFor(milk, 1))

	f.requests.On("FindByID", mock.Anything, pr.ID).Return(pr, nil)
	f.requests.On("SaveWithLock", mock.Anything, pr).Return(nil)
	f.sales.On("CountByPurchaseRequest", mock.Anything, pr.ID).Return(int64(0), nil)
	f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)
	f.expectStockWrites()
	var sale *trade.Sale
	f.sales.On("Create", mock.Anything, mock.AnythingOfType("*trade.Sale")).
		Run(func(args mock.Arguments) { sale = args.Get(1).(*trade.Sale) }).
		Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	result, err := f.requestService().UpdateStatus(ctx, pr.ID, uuid.New(), UpdateStatusRequest{Status: "completed", PaymentMethod: "MPESA"})
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Equal(t, trade.PaymentMethodMpesa, sale.PaymentMethod)
	assert.Equal(t, "mpesa", result.Sale.PaymentMethod)
}

func TestPurchaseRequestService_CompleteWithStockShortfall(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)
	bread := newStockedProduct("BRD-400", 1, 55)
	pr := newRequestAt(t, trade.PurchaseRequestStatusDelivered, lineFor(milk, 3), lineFor(bread, 2))

	f.requests.On("FindByID", mock.Anything, pr.ID).Return(pr, nil)
	f.sales.On("CountByPurchaseRequest", mock.Anything, pr.ID).Return(int64(0), nil)
	f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)
	f.products.On("FindByID", mock.Anything, bread.ID).Return(bread, nil)
	f.expectStockWrites()

	_, err := f.requestService().UpdateStatus(ctx, pr.ID, uuid.New(), UpdateStatusRequest{Status: "COMPLETED"})
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_STOCK", shared.CodeOf(err))

	assert.Equal(t, trade.PurchaseRequestStatusDelivered, pr.Status)
	assert.Nil(t, pr.SaleID)
	f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.requests.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPurchaseRequestService_CompleteTwiceRejected(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)
	pr := newRequestAt(t, trade.PurchaseRequestStatusDelivered, lineFor(milk, 1))

	f.requests.On("FindByID", mock.Anything, pr.ID).Return(pr, nil)
	f.sales.On("CountByPurchaseRequest", mock.Anything, pr.ID).Return(int64(1), nil)

	_, err := f.requestService().UpdateStatus(ctx, pr.ID, uuid.New(), UpdateStatusRequest{Status: "COMPLETED"})
	require.Error(t, err)
	assert.Equal(t, "ALREADY_EXISTS", shared.CodeOf(err))
	assert.Equal(t, 10, milk.StockQuantity)
}

func TestPurchaseRequestService_UpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	milk := newStockedProduct("MLK-500", 10, 60)

	tests := []struct {
		name     string
		from     trade.PurchaseRequestStatus
		req      UpdateStatusRequest
		wantCode string
	}{
		{"skip ahead", trade.PurchaseRequestStatusPending, UpdateStatusRequest{Status: "SHIPPED"}, "INVALID_STATE"},
		{"unknown status", trade.PurchaseRequestStatusPending, UpdateStatusRequest{Status: "LOST"}, "INVALID_STATUS"},
		{"cancel without reason", trade.PurchaseRequestStatusApproved, UpdateStatusRequest{Status: "CANCELLED"}, "INVALID_REASON"},
		{"cancel after shipping", trade.PurchaseRequestStatusShipped, UpdateStatusRequest{Status: "CANCELLED", Reason: "late"}, "INVALID_STATE"},
		{"complete before delivery", trade.PurchaseRequestStatusProcessing, UpdateStatusRequest{Status: "COMPLETED"}, "INVALID_STATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTradeFixture()
			pr := newRequestAt(t, tt.from, lineFor(milk, 1))
			f.requests.On("FindByID", mock.Anything, pr.ID).Return(pr, nil)

			_, err := f.requestService().UpdateStatus(ctx, pr.ID, uuid.New(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, shared.CodeOf(err))
			assert.Equal(t, tt.from, pr.Status)
			f.requests.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
			f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestPurchaseRequestService_ApproveAndCancelStampTimes(t *testing.T) {
	ctx := context.Background()
	milk := newStockedProduct("MLK-500", 10, 60)

	t.Run("approve", func(t *testing.T) {
		f := newTradeFixture()
		pr := newRequestAt(t, trade.PurchaseRequestStatusPending, lineFor(milk, 1))
		f.requests.On("FindByID", mock.Anything, pr.ID).Return(pr, nil)
		f.requests.On("SaveWithLock", mock.Anything, pr).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.requestService().UpdateStatus(ctx, pr.ID, uuid.New(), UpdateStatusRequest{Status: "approved"})
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", result.Request.Status)
		assert.NotNil(t, result.Request.ApprovedAt)
		assert.Nil(t, result.Sale)
		assert.Len(t, result.Request.History, 2)
	})

	t.Run("cancel", func(t *testing.T) {
		f := newTradeFixture()
		pr := newRequestAt(t, trade.PurchaseRequestStatusProcessing, lineFor(milk, 1))
		f.requests.On("FindByID", mock.Anything, pr.ID).Return(pr, nil)
		f.requests.On("SaveWithLock", mock.Anything, pr).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		result, err := f.requestService().UpdateStatus(ctx, pr.ID, uuid.New(),
			UpdateStatusRequest{Status: "CANCELLED", Reason: "Customer changed their mind"})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", result.Request.Status)
		assert.NotNil(t, result.Request.CancelledAt)
		assert.Equal(t, "Customer changed their mind", result.Request.CancelReason)
	})
}

func TestPurchaseRequestService_ConcurrentModification(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)
	pr := newRequestAt(t, trade.PurchaseRequestStatusPending, lineFor(milk, 1))

	f.requests.On("FindByID", mock.Anything, pr.ID).Return(pr, nil)
	f.requests.On("SaveWithLock", mock.Anything, pr).
		Return(shared.NewDomainError("CONCURRENT_MODIFICATION", "The purchase request has been modified by another user"))

	_, err := f.requestService().UpdateStatus(ctx, pr.ID, uuid.New(), UpdateStatusRequest{Status: "APPROVED"})
	require.Error(t, err)
	assert.Equal(t, "CONCURRENT_MODIFICATION", shared.CodeOf(err))
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPurchaseRequestService_CreateFromCart(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	milk := newStockedProduct("MLK-500", 10, 60)
	bread := newStockedProduct("BRD-400", 10, 55)
	customer, err := partner.NewCustomer("Amina Otieno", "amina@example.com", "0712345678", "")
	require.NoError(t, err)

	cart := partner.NewCustomerCart(customer.ID)
	_, err = cart.AddItem(milk.ID, 2, milk.SellingPrice, milk.StockQuantity)
	require.NoError(t, err)
	_, err = cart.AddItem(bread.ID, 1, bread.SellingPrice, bread.StockQuantity)
	require.NoError(t, err)

	f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	f.carts.On("FindByCustomer", mock.Anything, customer.ID).Return(cart, nil)
	f.carts.On("ClearItems", mock.Anything, cart.ID).Return(nil)
	f.products.On("FindByID", mock.Anything, milk.ID).Return(milk, nil)
	f.products.On("FindByID", mock.Anything, bread.ID).Return(bread, nil)
	f.requests.On("Create", mock.Anything, mock.AnythingOfType("*trade.PurchaseRequest")).Return(nil)

	resp, err := f.requestService().Create(ctx, CreatePurchaseRequestRequest{CustomerID: customer.ID, FromCart: true})
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "amina@example.com", resp.ContactEmail)
	assert.Equal(t, "Amina Otieno", resp.ContactName)
	assert.True(t, decimal.NewFromInt(175).Equal(resp.Total))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 10, milk.StockQuantity, "stock is only deducted on completion")
	f.carts.AssertExpectations(t)
}

func TestPurchaseRequestService_CreateFromEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newTradeFixture()
	customer, err := partner.NewCustomer("Amina Otieno", "amina@example.com", "", "")
	require.NoError(t, err)

	f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
	f.carts.On("FindByCustomer", mock.Anything, customer.ID).Return(nil, shared.ErrNotFound)

	_, err = f.requestService().Create(ctx, CreatePurchaseRequestRequest{CustomerID: customer.ID, FromCart: true})
	require.Error(t, err)
	assert.Equal(t, "CART_EMPTY", shared.CodeOf(err))
	f.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
