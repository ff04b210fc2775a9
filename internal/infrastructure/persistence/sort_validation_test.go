package persistence

import (
	"testing"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder(" asc "))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder("; DROP TABLE products"))
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "name", ValidateSortField("name", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password_hash", UserSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", ProductSortFields, "created_at"))
}

func TestFilterValue(t *testing.T) {
	f := shared.DefaultFilter().With("active", true)
	v, ok := filterValue[bool](f, "active")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = filterValue[string](f, "active")
	assert.False(t, ok)
	_, ok = filterValue[bool](shared.Filter{}, "active")
	assert.False(t, ok)
}

func TestNotFoundOr(t *testing.T) {
	assert.NoError(t, notFoundOr(nil))
	assert.ErrorIs(t, notFoundOr(gorm.ErrRecordNotFound), shared.ErrNotFound)
	assert.Equal(t, "%milk%", likePattern(" Milk "))
}
