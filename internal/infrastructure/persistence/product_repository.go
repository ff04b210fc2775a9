package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &product, nil
}

// FindByIDs finds products by a list of IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	var products []catalog.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindBySKU finds a product by SKU, case-insensitively
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("sku = ?", catalog.NormalizeSKU(sku)).
		First(&product).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &product, nil
}

// FindByBarcode finds a product by barcode
func (r *GormProductRepository) FindByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &product, nil
}

// FindAll finds products matching the filter.
// Supported filters: category_id, supplier_id (uuid.UUID), is_active, low_stock (bool).
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR barcode LIKE ?", p, p, p)
	}
	if categoryID, ok := filterValue[uuid.UUID](filter, "category_id"); ok {
		query = query.Where("category_id = ?", categoryID)
	}
	if supplierID, ok := filterValue[uuid.UUID](filter, "supplier_id"); ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if active, ok := filterValue[bool](filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	if low, ok := filterValue[bool](filter, "low_stock"); ok && low {
		query = query.Where("stock_quantity <= reorder_level")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []catalog.Product
	if err := paginate(query, filter, ProductSortFields, "name").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindLowStock returns active products at or below their reorder level
func (r *GormProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock_quantity <= reorder_level", true).
		Order("stock_quantity ASC, name ASC").
		Find(&products).Error
	return products, err
}

// Save creates or updates a product. Updates never write stock_quantity
// directly; a pending stock change is applied as a relative update that
// fails with INSUFFICIENT_STOCK instead of going below zero.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(product).
			Select("*").
			Omit("stock_quantity", "created_at").
			Updates(product)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.Create(product).Error; err != nil {
				return err
			}
			product.StockPersisted(product.StockQuantity)
			return nil
		}

		delta := product.PendingStockChange()
		if delta == 0 {
			return nil
		}
		result = tx.Model(&catalog.Product{}).
			Where("id = ? AND stock_quantity + ? >= 0", product.ID, delta).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient stock for %s", product.SKU))
		}
		var stored int
		if err := tx.Model(&catalog.Product{}).
			Select("stock_quantity").
			Where("id = ?", product.ID).
			Row().Scan(&stored); err != nil {
			return err
		}
		product.StockPersisted(stored)
		return nil
	})
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsBySKU checks whether another product already uses the SKU
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("sku = ?", catalog.NormalizeSKU(sku))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActiveByCategory counts active products referencing the category
func (r *GormProductRepository) CountActiveByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Count(&count).Error
	return count, err
}

// Count counts all products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Count(&count).Error
	return count, err
}

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a stock movement
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *catalog.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByProduct returns the latest movements of a product
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]catalog.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	var movements []catalog.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}

var (
	_ catalog.ProductRepository       = (*GormProductRepository)(nil)
	_ catalog.StockMovementRepository = (*GormStockMovementRepository)(nil)
)
