package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormPurchaseRequestRepository implements PurchaseRequestRepository using GORM
type GormPurchaseRequestRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRequestRepository creates a new GormPurchaseRequestRepository
func NewGormPurchaseRequestRepository(db *gorm.DB) *GormPurchaseRequestRepository {
	return &GormPurchaseRequestRepository{db: db}
}

// Create inserts a purchase request with its items
func (r *GormPurchaseRequestRepository) Create(ctx context.Context, pr *trade.PurchaseRequest) error {
	return r.db.WithContext(ctx).Create(pr).Error
}

// SaveWithLock saves the request with optimistic locking (version check).
// Items are immutable after creation and are not rewritten.
func (r *GormPurchaseRequestRepository) SaveWithLock(ctx context.Context, pr *trade.PurchaseRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current trade.PurchaseRequest
		if err := tx.Select("id", "version").First(&current, "id = ?", pr.ID).Error; err != nil {
			return notFoundOr(err)
		}
		if current.Version != pr.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The purchase request has been modified by another user")
		}

		nextVersion := pr.Version + 1
		now := time.Now()
		result := tx.Model(&trade.PurchaseRequest{}).
			Where("id = ? AND version = ?", pr.ID, pr.Version).
			Updates(map[string]any{
				"status":        pr.Status,
				"notes":         pr.Notes,
				"approved_at":   pr.ApprovedAt,
				"completed_at":  pr.CompletedAt,
				"cancelled_at":  pr.CancelledAt,
				"cancel_reason": pr.CancelReason,
				"sale_id":       pr.SaleID,
				"version":       nextVersion,
				"updated_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The purchase request has been modified by another user")
		}
		pr.Version = nextVersion
		pr.UpdatedAt = now
		return nil
	})
}

// FindByID finds a purchase request with items
func (r *GormPurchaseRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseRequest, error) {
	var pr trade.PurchaseRequest
	if err := r.db.WithContext(ctx).Preload("Items").First(&pr, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &pr, nil
}

// FindAll lists purchase requests. Supported filters: status (string),
// customer_id (uuid.UUID); From/To apply to created_at.
func (r *GormPurchaseRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.PurchaseRequest{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(request_number) LIKE ? OR LOWER(contact_name) LIKE ?", p, p)
	}
	if status, ok := filterValue[string](filter, "status"); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID, ok := filterValue[uuid.UUID](filter, "customer_id"); ok {
		query = query.Where("customer_id = ?", customerID)
	}
	query = dateBetween(query, "created_at", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var requests []trade.PurchaseRequest
	if err := paginate(query, filter, PurchaseRequestSortFields, "created_at").Preload("Items").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// CountByStatus counts requests in a status
func (r *GormPurchaseRequestRepository) CountByStatus(ctx context.Context, status trade.PurchaseRequestStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&trade.PurchaseRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

var _ trade.PurchaseRequestRepository = (*GormPurchaseRequestRepository)(nil)
