package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()
	category, err := catalog.NewCategory("Beverages", "")
	require.NoError(t, err)

	t.Run("rejected while active products reference it", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		products := new(MockProductRepository)
		svc := NewCategoryService(categories, products, zap.NewNop())

		categories.On("FindByID", ctx, category.ID).Return(category, nil)
		products.On("CountActiveByCategory", ctx, category.ID).Return(int64(3), nil)

		err := svc.Delete(ctx, category.ID)
		require.Error(t, err)
		assert.Equal(t, "CATEGORY_HAS_PRODUCTS", shared.CodeOf(err))
		assert.Contains(t, err.Error(), "3 active product")
		categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deleted when unused", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		products := new(MockProductRepository)
		svc := NewCategoryService(categories, products, zap.NewNop())

		categories.On("FindByID", ctx, category.ID).Return(category, nil)
		products.On("CountActiveByCategory", ctx, category.ID).Return(int64(0), nil)
		categories.On("Delete", ctx, category.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, category.ID))
		categories.AssertExpectations(t)
	})

	t.Run("unknown category", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		svc := NewCategoryService(categories, new(MockProductRepository), zap.NewNop())
		id := uuid.New()
		categories.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		err := svc.Delete(ctx, id)
		assert.Equal(t, "CATEGORY_NOT_FOUND", shared.CodeOf(err))
	})
}

func TestCategoryService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	categories := new(MockCategoryRepository)
	svc := NewCategoryService(categories, new(MockProductRepository), zap.NewNop())
	categories.On("ExistsByName", ctx, "snacks", (*uuid.UUID)(nil)).Return(true, nil)

	_, err := svc.Create(ctx, CreateCategoryRequest{Name: "snacks"})
	assert.Equal(t, "ALREADY_EXISTS", shared.CodeOf(err))
	categories.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCategoryService_ToggleActive(t *testing.T) {
	ctx := context.Background()
	categories := new(MockCategoryRepository)
	svc := NewCategoryService(categories, new(MockProductRepository), zap.NewNop())
	category, err := catalog.NewCategory("Dairy", "")
	require.NoError(t, err)

	categories.On("FindByID", ctx, category.ID).Return(category, nil)
	categories.On("Save", ctx, category).Return(nil)

	resp, err := svc.ToggleActive(ctx, category.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
}
