package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	t.Run("creates active category", func(t *testing.T) {
		c, err := NewCategory(" Beverages ", "Drinks")
		require.NoError(t, err)
		assert.Equal(t, "Beverages", c.Name)
		assert.True(t, c.IsActive)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCategory("", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})
}

func TestCategory_ToggleActive(t *testing.T) {
	c, err := NewCategory("Snacks", "")
	require.NoError(t, err)

	c.ToggleActive()
	assert.False(t, c.IsActive)
	c.ToggleActive()
	assert.True(t, c.IsActive)
	assert.Equal(t, 3, c.Version)
}
