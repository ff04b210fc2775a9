package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormMpesaRepository implements MpesaRepository using GORM
type GormMpesaRepository struct {
	db *gorm.DB
}

// NewGormMpesaRepository creates a new GormMpesaRepository
func NewGormMpesaRepository(db *gorm.DB) *GormMpesaRepository {
	return &GormMpesaRepository{db: db}
}

// Save creates or updates a transaction
func (r *GormMpesaRepository) Save(ctx context.Context, tx *trade.MpesaTransaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// FindByID finds a transaction by its ID
func (r *GormMpesaRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.MpesaTransaction, error) {
	var tx trade.MpesaTransaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &tx, nil
}

// FindByCheckoutRequestID finds a transaction by the gateway checkout request id
func (r *GormMpesaRepository) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*trade.MpesaTransaction, error) {
	var tx trade.MpesaTransaction
	if err := r.db.WithContext(ctx).
		Where("checkout_request_id = ?", checkoutRequestID).
		First(&tx).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &tx, nil
}

// FindByReceiptNumber finds a transaction by its Mpesa receipt
func (r *GormMpesaRepository) FindByReceiptNumber(ctx context.Context, receipt string) (*trade.MpesaTransaction, error) {
	var tx trade.MpesaTransaction
	if err := r.db.WithContext(ctx).Where("receipt_number = ?", receipt).First(&tx).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &tx, nil
}

// FindAll lists transactions. Supported filters: status, phone (string);
// From/To apply to created_at.
func (r *GormMpesaRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.MpesaTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.MpesaTransaction{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(receipt_number) LIKE ? OR phone_number LIKE ?", p, p)
	}
	if status, ok := filterValue[string](filter, "status"); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if phone, ok := filterValue[string](filter, "phone"); ok && phone != "" {
		query = query.Where("phone_number = ?", phone)
	}
	query = dateBetween(query, "created_at", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []trade.MpesaTransaction
	if err := paginate(query, filter, MpesaSortFields, "created_at").Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

var _ trade.MpesaRepository = (*GormMpesaRepository)(nil)
