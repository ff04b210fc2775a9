package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	// SaveWithLock updates header fields with an optimistic version check
	SaveWithLock(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByReceiptNumber(ctx context.Context, receipt string) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, int64, error)
	// FindCompletedBetween returns completed sales with items sold in [from, to)
	FindCompletedBetween(ctx context.Context, from, to time.Time) ([]Sale, error)
	CountByPurchaseRequest(ctx context.Context, purchaseRequestID uuid.UUID) (int64, error)
}

// PurchaseRequestRepository defines the interface for purchase request persistence
type PurchaseRequestRepository interface {
	Create(ctx context.Context, pr *PurchaseRequest) error
	// SaveWithLock updates the request with an optimistic version check
	SaveWithLock(ctx context.Context, pr *PurchaseRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseRequest, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseRequest, int64, error)
	CountByStatus(ctx context.Context, status PurchaseRequestStatus) (int64, error)
}

// MpesaRepository defines the interface for mobile-money transaction persistence
type MpesaRepository interface {
	Save(ctx context.Context, tx *MpesaTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*MpesaTransaction, error)
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*MpesaTransaction, error)
	FindByReceiptNumber(ctx context.Context, receipt string) (*MpesaTransaction, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]MpesaTransaction, int64, error)
}
