package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create inserts a sale with its items
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// SaveWithLock saves header fields with optimistic locking (version check)
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current trade.Sale
		if err := tx.Select("id", "version").First(&current, "id = ?", sale.ID).Error; err != nil {
			return notFoundOr(err)
		}
		if current.Version != sale.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The sale has been modified by another user")
		}

		nextVersion := sale.Version + 1
		now := time.Now()
		result := tx.Model(&trade.Sale{}).
			Where("id = ? AND version = ?", sale.ID, sale.Version).
			Updates(map[string]any{
				"status":      sale.Status,
				"voided_at":   sale.VoidedAt,
				"void_reason": sale.VoidReason,
				"customer_id": sale.CustomerID,
				"version":     nextVersion,
				"updated_at":  now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The sale has been modified by another user")
		}
		sale.Version = nextVersion
		sale.UpdatedAt = now
		return nil
	})
}

// FindByID finds a sale with items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).Preload("Items").First(&sale, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &sale, nil
}

// FindByReceiptNumber finds a sale by receipt number
func (r *GormSaleRepository) FindByReceiptNumber(ctx context.Context, receipt string) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("receipt_number = ?", receipt).
		First(&sale).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &sale, nil
}

// FindAll lists sales. Supported filters: cashier_id, customer_id (uuid.UUID),
// payment_method, status (string); From/To apply to sold_at.
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.Sale{})
	if filter.Search != "" {
		query = query.Where("LOWER(receipt_number) LIKE ?", likePattern(filter.Search))
	}
	if cashierID, ok := filterValue[uuid.UUID](filter, "cashier_id"); ok {
		query = query.Where("cashier_id = ?", cashierID)
	}
	if customerID, ok := filterValue[uuid.UUID](filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	if method, ok := filterValue[string](filter, "payment_method"); ok && method != "" {
		query = query.Where("payment_method = ?", method)
	}
	if status, ok := filterValue[string](filter, "status"); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	query = dateBetween(query, "sold_at", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sales []trade.Sale
	if err := paginate(query, filter, SaleSortFields, "sold_at").Preload("Items").Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// FindCompletedBetween returns completed sales with items sold in [from, to)
func (r *GormSaleRepository) FindCompletedBetween(ctx context.Context, from, to time.Time) ([]trade.Sale, error) {
	var sales []trade.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND sold_at >= ? AND sold_at < ?", trade.SaleStatusCompleted, from, to).
		Order("sold_at ASC").
		Find(&sales).Error
	return sales, err
}

// CountByPurchaseRequest counts sales synthesized from a purchase request
func (r *GormSaleRepository) CountByPurchaseRequest(ctx context.Context, purchaseRequestID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&trade.Sale{}).
		Where("purchase_request_id = ?", purchaseRequestID).
		Count(&count).Error
	return count, err
}

var _ trade.SaleRepository = (*GormSaleRepository)(nil)
