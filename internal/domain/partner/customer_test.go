package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer("Wanjiru", "Wanjiru@Mail.com", "0711", "")
	require.NoError(t, err)
	assert.Equal(t, "wanjiru@mail.com", c.Email)

	_, err = NewCustomer("Wanjiru", "", "", "")
	assert.Error(t, err)
}

func TestCustomerCart(t *testing.T) {
	cart := NewCustomerCart(uuid.New())
	productA := uuid.New()
	productB := uuid.New()
	price := decimal.NewFromInt(100)

	t.Run("merges quantities for the same product", func(t *testing.T) {
		_, err := cart.AddItem(productA, 2, price, 10)
		require.NoError(t, err)
		item, err := cart.AddItem(productA, 3, price, 10)
		require.NoError(t, err)

		assert.Equal(t, 5, item.Quantity)
		assert.Len(t, cart.Items, 1)
	})

	t.Run("rejects quantity beyond stock", func(t *testing.T) {
		_, err := cart.AddItem(productA, 6, price, 10)
		assert.Error(t, err)
		_, err = cart.AddItem(productB, 2, price, 1)
		assert.Error(t, err)
	})

	t.Run("computes totals", func(t *testing.T) {
		_, err := cart.AddItem(productB, 1, decimal.NewFromInt(50), 4)
		require.NoError(t, err)
		assert.True(t, cart.Total().Equal(decimal.NewFromInt(550)))
		assert.Equal(t, 6, cart.ItemCount())
	})

	t.Run("updates and removes items", func(t *testing.T) {
		_, err := cart.UpdateItem(productB, 4, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, cart.FindItem(productB).Quantity)

		removed, err := cart.RemoveItem(productB)
		require.NoError(t, err)
		assert.Equal(t, productB, removed.ProductID)
		assert.Nil(t, cart.FindItem(productB))

		_, err = cart.RemoveItem(productB)
		assert.Error(t, err)
	})

	t.Run("clears", func(t *testing.T) {
		cart.Clear()
		assert.Empty(t, cart.Items)
		assert.True(t, cart.Total().IsZero())
	})
}
