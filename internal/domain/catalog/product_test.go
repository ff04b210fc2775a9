package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("sku-001", "Milk 500ml", "pcs", decimal.NewFromInt(40), decimal.NewFromInt(55))
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("normalizes SKU and defaults", func(t *testing.T) {
		p := newTestProduct(t)
		assert.Equal(t, "SKU-001", p.SKU)
		assert.True(t, p.IsActive)
		assert.Equal(t, 0, p.StockQuantity)
		require.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("defaults unit", func(t *testing.T) {
		p, err := NewProduct("A1", "Bread", "", decimal.Zero, decimal.NewFromInt(60))
		require.NoError(t, err)
		assert.Equal(t, "pcs", p.Unit)
	})

	t.Run("rejects invalid SKU characters", func(t *testing.T) {
		_, err := NewProduct("SKU 1", "Bread", "pcs", decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("A2", "Bread", "pcs", decimal.NewFromInt(-1), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestProduct_ToggleActive(t *testing.T) {
	p := newTestProduct(t)
	p.ClearDomainEvents()
	p.UpdatedAt = time.Now().Add(-time.Hour)
	before := p.UpdatedAt

	p.ToggleActive()

	assert.False(t, p.IsActive)
	assert.True(t, p.UpdatedAt.After(before))
	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*ProductStatusChangedEvent)
	require.True(t, ok)
	assert.False(t, changed.IsActive)

	p.ToggleActive()
	assert.True(t, p.IsActive)
}

func TestProduct_Stock(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.SetReorderLevel(5))

	require.NoError(t, p.AddStock(10))
	assert.Equal(t, 10, p.StockQuantity)
	assert.False(t, p.IsLowStock())

	require.NoError(t, p.DeductStock(6))
	assert.Equal(t, 4, p.StockQuantity)
	assert.True(t, p.IsLowStock())

	err := p.DeductStock(5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.Equal(t, 4, p.StockQuantity)

	assert.Error(t, p.AdjustStock(0))
	assert.Error(t, p.AddStock(-1))
	assert.True(t, p.StockValue().Equal(decimal.NewFromInt(160)))
}

func TestProduct_CanSell(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddStock(3))

	assert.True(t, p.CanSell(3))
	assert.False(t, p.CanSell(4))
	p.ToggleActive()
	assert.False(t, p.CanSell(1))
}
