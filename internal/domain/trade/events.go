package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopdesk/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeSale            = "Sale"
	AggregateTypePurchaseRequest = "PurchaseRequest"
)

// Event type constants
const (
	EventTypeSaleCompleted                = "SaleCompleted"
	EventTypePurchaseRequestStatusChanged = "PurchaseRequestStatusChanged"
)

// SaleCompletedEvent is raised when a sale is recorded
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	ReceiptNumber string          `json:"receipt_number"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(sale *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, sale.ID),
		SaleID:          sale.ID,
		ReceiptNumber:   sale.ReceiptNumber,
		PaymentMethod:   sale.PaymentMethod,
		Total:           sale.Total,
		ItemCount:       sale.ItemCount(),
	}
}

// PurchaseRequestStatusChangedEvent is raised on every purchase request transition
type PurchaseRequestStatusChangedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID             `json:"request_id"`
	RequestNumber string                `json:"request_number"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	ContactName   string                `json:"contact_name"`
	ContactEmail  string                `json:"contact_email"`
	FromStatus    PurchaseRequestStatus `json:"from_status"`
	ToStatus      PurchaseRequestStatus `json:"to_status"`
	Total         decimal.Decimal       `json:"total"`
	Reason        string                `json:"reason,omitempty"`
	SaleID        *uuid.UUID            `json:"sale_id,omitempty"`
	ActorID       *uuid.UUID            `json:"actor_id,omitempty"`
}

// NewPurchaseRequestStatusChangedEvent creates a new PurchaseRequestStatusChangedEvent
func NewPurchaseRequestStatusChangedEvent(pr *PurchaseRequest, from PurchaseRequestStatus, opts TransitionOptions) *PurchaseRequestStatusChangedEvent {
	return &PurchaseRequestStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseRequestStatusChanged, AggregateTypePurchaseRequest, pr.ID),
		RequestID:       pr.ID,
		RequestNumber:   pr.RequestNumber,
		CustomerID:      pr.CustomerID,
		ContactName:     pr.ContactName,
		ContactEmail:    pr.ContactEmail,
		FromStatus:      from,
		ToStatus:        pr.Status,
		Total:           pr.Total,
		Reason:          opts.Reason,
		SaleID:          pr.SaleID,
		ActorID:         opts.ActorID,
	}
}
