package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSale(t *testing.T, soldAt time.Time, prID *uuid.UUID) *trade.Sale {
	t.Helper()
	sale, err := trade.NewSale(trade.SaleParams{
		PurchaseRequestID: prID,
		PaymentMethod:     trade.PaymentMethodCash,
		Lines: []trade.SaleLine{
			{ProductID: uuid.New(), ProductName: "Milk", SKU: "MILK-1", Quantity: 2, UnitPrice: decimal.NewFromInt(60), CostPrice: decimal.NewFromInt(45)},
			{ProductID: uuid.New(), ProductName: "Bread", SKU: "BREAD-1", Quantity: 1, UnitPrice: decimal.NewFromInt(55), CostPrice: decimal.NewFromInt(40)},
		},
		AmountPaid: decimal.NewFromInt(200),
		SoldAt:     soldAt,
	})
	require.NoError(t, err)
	return sale
}

func TestGormSaleRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSaleRepository(db)

	day := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	first := newTestSale(t, day, nil)
	second := newTestSale(t, day.AddDate(0, 0, 1), nil)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("loads items", func(t *testing.T) {
		found, err := repo.FindByReceiptNumber(ctx, first.ReceiptNumber)
		require.NoError(t, err)
		require.Len(t, found.Items, 2)
		assert.True(t, found.Total.Equal(decimal.NewFromInt(175)))
		assert.True(t, found.ItemsTotal().Equal(found.Subtotal))
	})

	t.Run("completed sales in a half-open window", func(t *testing.T) {
		from := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
		sales, err := repo.FindCompletedBetween(ctx, from, from.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, first.ID, sales[0].ID)
	})

	t.Run("void with version check", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, second.ID)
		require.NoError(t, err)

		require.NoError(t, second.Void("wrong item"))
		require.NoError(t, repo.SaveWithLock(ctx, second))
		assert.Equal(t, 2, second.Version)

		require.NoError(t, stale.Void("duplicate"))
		err = repo.SaveWithLock(ctx, stale)
		assert.Equal(t, "CONCURRENT_MODIFICATION", shared.CodeOf(err))

		list, total, err := repo.FindAll(ctx, shared.DefaultFilter().With("status", string(trade.SaleStatusVoided)))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "wrong item", list[0].VoidReason)

		from := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
		sales, err := repo.FindCompletedBetween(ctx, from, from.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Empty(t, sales)
	})
}

func TestGormPurchaseRequestRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPurchaseRequestRepository(db)
	sales := NewGormSaleRepository(db)

	pr, err := trade.NewPurchaseRequest(uuid.New(), "Amina", "amina@example.test", "", []trade.SaleLine{
		{ProductID: uuid.New(), ProductName: "Rice 2kg", SKU: "RICE-2", Quantity: 3, UnitPrice: decimal.NewFromInt(250)},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, pr))

	pending, err := repo.CountByStatus(ctx, trade.PurchaseRequestStatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	require.NoError(t, pr.TransitionTo(trade.PurchaseRequestStatusApproved, trade.TransitionOptions{}))
	require.NoError(t, repo.SaveWithLock(ctx, pr))

	loaded, err := repo.FindByID(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseRequestStatusApproved, loaded.Status)
	assert.NotNil(t, loaded.ApprovedAt)
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.Total.Equal(decimal.NewFromInt(750)))

	sale := newTestSale(t, time.Now(), &pr.ID)
	require.NoError(t, sales.Create(ctx, sale))
	count, err := sales.CountByPurchaseRequest(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	list, total, err := repo.FindAll(ctx, shared.DefaultFilter().With("status", string(trade.PurchaseRequestStatusApproved)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, pr.RequestNumber, list[0].RequestNumber)
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	products := NewGormProductRepository(db)

	product := createProduct(t, products, "SOAP-1", 5, 1, nil)
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		p, err := repos.Products().FindByID(ctx, product.ID)
		if err != nil {
			return err
		}
		if err := p.DeductStock(3); err != nil {
			return err
		}
		if err := repos.Products().Save(ctx, p); err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, newTestSale(t, time.Now(), nil)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.StockQuantity)

	_, total, err := NewGormSaleRepository(db).FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormMpesaRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormMpesaRepository(db)

	tx, err := trade.NewMpesaTransaction("m-1", "ws_CO_123", "254700000000", decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tx))

	tx.ApplyResult(0, "The service request is processed successfully.", "QKX12345", decimal.Zero, "", nil)
	require.NoError(t, repo.Save(ctx, tx))

	found, err := repo.FindByCheckoutRequestID(ctx, "ws_CO_123")
	require.NoError(t, err)
	assert.Equal(t, 0, found.ResultCode)
	assert.Equal(t, trade.MpesaStatusSuccess, found.Status)

	byReceipt, err := repo.FindByReceiptNumber(ctx, "QKX12345")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, byReceipt.ID)

	_, err = repo.FindByCheckoutRequestID(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
