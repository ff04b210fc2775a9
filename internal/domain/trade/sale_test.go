package trade

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []SaleLine {
	return []SaleLine{
		{ProductID: uuid.New(), ProductName: "Milk", SKU: "MILK", Quantity: 2, UnitPrice: decimal.NewFromInt(55), CostPrice: decimal.NewFromInt(40)},
		{ProductID: uuid.New(), ProductName: "Bread", SKU: "BREAD", Quantity: 1, UnitPrice: decimal.NewFromInt(60), CostPrice: decimal.NewFromInt(45)},
	}
}

func TestNewSale(t *testing.T) {
	t.Run("computes totals and change", func(t *testing.T) {
		sale, err := NewSale(SaleParams{
			PaymentMethod: PaymentMethodCash,
			Lines:         sampleLines(),
			Discount:      decimal.NewFromInt(10),
			TaxRate:       decimal.RequireFromString("0.16"),
			AmountPaid:    decimal.NewFromInt(200),
		})
		require.NoError(t, err)

		assert.True(t, sale.Subtotal.Equal(decimal.NewFromInt(170)))
		assert.True(t, sale.Tax.Equal(decimal.NewFromInt(25).Add(decimal.RequireFromString("0.6"))))
		assert.True(t, sale.Total.Equal(decimal.RequireFromString("185.6")))
		assert.True(t, sale.Change.Equal(decimal.RequireFromString("14.4")))
		assert.Equal(t, 3, sale.ItemCount())
		assert.True(t, sale.ItemsTotal().Equal(sale.Subtotal))
		assert.True(t, strings.HasPrefix(sale.ReceiptNumber, "RCPT-"))
		assert.Len(t, sale.ReceiptNumber, len("RCPT-20240101-ABCDEF"))
		for _, item := range sale.Items {
			assert.Equal(t, sale.ID, item.SaleID)
		}
		require.Len(t, sale.GetDomainEvents(), 1)
	})

	t.Run("rejects underpayment in cash", func(t *testing.T) {
		_, err := NewSale(SaleParams{
			PaymentMethod: PaymentMethodCash,
			Lines:         sampleLines(),
			AmountPaid:    decimal.NewFromInt(100),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "less than total")
	})

	t.Run("non-cash with zero paid settles exactly", func(t *testing.T) {
		sale, err := NewSale(SaleParams{PaymentMethod: PaymentMethodMpesa, Lines: sampleLines()})
		require.NoError(t, err)
		assert.True(t, sale.AmountPaid.Equal(sale.Total))
		assert.True(t, sale.Change.IsZero())
	})

	t.Run("rejects empty and invalid input", func(t *testing.T) {
		_, err := NewSale(SaleParams{PaymentMethod: PaymentMethodCash})
		assert.Error(t, err)
		_, err = NewSale(SaleParams{PaymentMethod: "cheque", Lines: sampleLines()})
		assert.Error(t, err)
		_, err = NewSale(SaleParams{PaymentMethod: PaymentMethodCard, Lines: sampleLines(), Discount: decimal.NewFromInt(1000)})
		assert.Error(t, err)
	})
}

func TestSale_Void(t *testing.T) {
	sale, err := NewSale(SaleParams{PaymentMethod: PaymentMethodCard, Lines: sampleLines()})
	require.NoError(t, err)

	assert.Error(t, sale.Void(" "))
	require.NoError(t, sale.Void("Customer returned goods"))
	assert.Equal(t, SaleStatusVoided, sale.Status)
	assert.NotNil(t, sale.VoidedAt)
	assert.Error(t, sale.Void("again"))
}

func TestSaleItem_Profit(t *testing.T) {
	item := SaleItem{Quantity: 3, CostPrice: decimal.NewFromInt(40), LineTotal: decimal.NewFromInt(165)}
	assert.True(t, item.Profit().Equal(decimal.NewFromInt(45)))
}
