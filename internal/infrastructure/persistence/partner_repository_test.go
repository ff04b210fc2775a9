package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSupplierRepository_InvoicesAndTotals(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSupplierRepository(db)

	supplier, err := partner.NewSupplier("Kenya Dairies", "Jane", "orders@dairies.test", "0700000000", "Nairobi")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, supplier))

	exists, err := repo.ExistsByName(ctx, "kenya dairies", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	invoiced, paid, err := repo.Totals(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, invoiced.IsZero())
	assert.True(t, paid.IsZero())

	issued := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv1, err := partner.NewSupplierInvoice(supplier.ID, "inv-001", decimal.NewFromInt(1000), issued, nil, "")
	require.NoError(t, err)
	require.NoError(t, repo.SaveInvoice(ctx, inv1))
	inv2, err := partner.NewSupplierInvoice(supplier.ID, "INV-002", decimal.NewFromInt(500), issued.AddDate(0, 0, 1), nil, "")
	require.NoError(t, err)
	require.NoError(t, repo.SaveInvoice(ctx, inv2))

	exists, err = repo.ExistsInvoiceNumber(ctx, supplier.ID, "Inv-001")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsInvoiceNumber(ctx, uuid.New(), "INV-001")
	require.NoError(t, err)
	assert.False(t, exists)

	payment, err := partner.NewSupplierPayment(inv1, decimal.NewFromInt(400), "cash", "", issued.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.NoError(t, repo.CreatePayment(ctx, payment))
	require.NoError(t, repo.SaveInvoice(ctx, inv1))

	invoiced, paid, err = repo.Totals(ctx, supplier.ID)
	require.NoError(t, err)
	assert.True(t, invoiced.Equal(decimal.NewFromInt(1500)), "invoiced %s", invoiced)
	assert.True(t, paid.Equal(decimal.NewFromInt(400)), "paid %s", paid)

	invoices, err := repo.FindInvoices(ctx, supplier.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "INV-002", invoices[0].InvoiceNumber)

	payments, err := repo.FindPayments(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestGormSupplierRepository_SaveInvoiceWithLock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSupplierRepository(db)

	supplier, err := partner.NewSupplier("Mombasa Millers", "Ali", "sales@millers.test", "0711000000", "Mombasa")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, supplier))
	invoice, err := partner.NewSupplierInvoice(supplier.ID, "MM-100", decimal.NewFromInt(100), time.Now(), nil, "")
	require.NoError(t, err)
	require.NoError(t, repo.SaveInvoice(ctx, invoice))

	first, err := repo.FindInvoiceByID(ctx, invoice.ID)
	require.NoError(t, err)
	second, err := repo.FindInvoiceByID(ctx, invoice.ID)
	require.NoError(t, err)

	require.NoError(t, first.ApplyPayment(decimal.NewFromInt(80)))
	require.NoError(t, repo.SaveInvoiceWithLock(ctx, first))

	require.NoError(t, second.ApplyPayment(decimal.NewFromInt(80)))
	err = repo.SaveInvoiceWithLock(ctx, second)
	assert.Equal(t, "CONCURRENT_MODIFICATION", shared.CodeOf(err))

	stored, err := repo.FindInvoiceByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.Equal(decimal.NewFromInt(80)), "paid %s", stored.PaidAmount)
	assert.Equal(t, partner.InvoiceStatusPartial, stored.Status)
	assert.Equal(t, first.Version, stored.Version)

	// a reload sees the new version and can pay the rest
	require.NoError(t, stored.ApplyPayment(decimal.NewFromInt(20)))
	require.NoError(t, repo.SaveInvoiceWithLock(ctx, stored))
	paid, err := repo.FindInvoiceByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, partner.InvoiceStatusPaid, paid.Status)
}

func TestGormSupplierRepository_FindSupplies(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSupplierRepository(db)

	supplier, err := partner.NewSupplier("Bakers Ltd", "", "", "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, supplier))

	productID := uuid.New()
	march := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{march, march.AddDate(0, 1, 0)} {
		s, err := partner.NewSupplierProductSupply(supplier.ID, productID, 10, decimal.NewFromInt(20), at, nil, "")
		require.NoError(t, err)
		require.NoError(t, repo.CreateSupply(ctx, s))
	}

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	supplies, err := repo.FindSupplies(ctx, &supplier.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, supplies, 1)
	assert.True(t, supplies[0].TotalCost.Equal(decimal.NewFromInt(200)))

	all, err := repo.FindSupplies(ctx, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGormCartRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	carts := NewGormCartRepository(db)
	wishlist := NewGormWishlistRepository(db)

	customer, err := partner.NewCustomer("Amina", "amina@example.test", "", "")
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, customer))

	_, err = carts.FindByCustomer(ctx, customer.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	cart := partner.NewCustomerCart(customer.ID)
	require.NoError(t, carts.Create(ctx, cart))

	productID := uuid.New()
	item, err := cart.AddItem(productID, 2, decimal.NewFromInt(120), 10)
	require.NoError(t, err)
	require.NoError(t, carts.SaveItem(ctx, item))

	loaded, err := carts.FindByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	assert.True(t, loaded.Total().Equal(decimal.NewFromInt(240)))

	require.NoError(t, wishlist.Create(ctx, partner.NewWishlistItem(customer.ID, productID)))
	exists, err := wishlist.Exists(ctx, customer.ID, productID)
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("deleting the customer cascades", func(t *testing.T) {
		require.NoError(t, customers.Delete(ctx, customer.ID))

		_, err := carts.FindByCustomer(ctx, customer.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		items, err := wishlist.FindByCustomer(ctx, customer.ID)
		require.NoError(t, err)
		assert.Empty(t, items)

		var lines int64
		require.NoError(t, db.Model(&partner.CartItem{}).Count(&lines).Error)
		assert.Zero(t, lines)
	})
}
