package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseRequestStatus is the fulfillment state of a purchase request
type PurchaseRequestStatus string

const (
	PurchaseRequestStatusPending    PurchaseRequestStatus = "PENDING"
	PurchaseRequestStatusApproved   PurchaseRequestStatus = "APPROVED"
	PurchaseRequestStatusProcessing PurchaseRequestStatus = "PROCESSING"
	PurchaseRequestStatusShipped    PurchaseRequestStatus = "SHIPPED"
	PurchaseRequestStatusDelivered  PurchaseRequestStatus = "DELIVERED"
	PurchaseRequestStatusCompleted  PurchaseRequestStatus = "COMPLETED"
	PurchaseRequestStatusCancelled  PurchaseRequestStatus = "CANCELLED"
)

// AllPurchaseRequestStatuses lists statuses in lifecycle order
var AllPurchaseRequestStatuses = []PurchaseRequestStatus{
	PurchaseRequestStatusPending,
	PurchaseRequestStatusApproved,
	PurchaseRequestStatusProcessing,
	PurchaseRequestStatusShipped,
	PurchaseRequestStatusDelivered,
	PurchaseRequestStatusCompleted,
	PurchaseRequestStatusCancelled,
}

// ParsePurchaseRequestStatus parses a status string case-insensitively
func ParsePurchaseRequestStatus(s string) (PurchaseRequestStatus, error) {
	status := PurchaseRequestStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown purchase request status %q", s))
	}
	return status, nil
}

// IsValid reports whether the status is known
func (s PurchaseRequestStatus) IsValid() bool {
	for _, st := range AllPurchaseRequestStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s PurchaseRequestStatus) IsTerminal() bool {
	return s == PurchaseRequestStatusCompleted || s == PurchaseRequestStatusCancelled
}

// Label returns a human-readable status name
func (s PurchaseRequestStatus) Label() string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// CanTransitionTo checks if the status can transition to the target status.
// Forward steps move one stage at a time; cancellation is allowed until
// the request has shipped.
func (s PurchaseRequestStatus) CanTransitionTo(target PurchaseRequestStatus) bool {
	switch s {
	case PurchaseRequestStatusPending:
		return target == PurchaseRequestStatusApproved || target == PurchaseRequestStatusCancelled
	case PurchaseRequestStatusApproved:
		return target == PurchaseRequestStatusProcessing || target == PurchaseRequestStatusCancelled
	case PurchaseRequestStatusProcessing:
		return target == PurchaseRequestStatusShipped || target == PurchaseRequestStatusCancelled
	case PurchaseRequestStatusShipped:
		return target == PurchaseRequestStatusDelivered
	case PurchaseRequestStatusDelivered:
		return target == PurchaseRequestStatusCompleted
	case PurchaseRequestStatusCompleted, PurchaseRequestStatusCancelled:
		return false
	}
	return false
}

// PurchaseRequest is a customer-initiated order awaiting fulfillment
type PurchaseRequest struct {
	shared.BaseAggregateRoot
	RequestNumber string                `gorm:"type:varchar(40);not null;uniqueIndex"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	ContactName   string                `gorm:"type:varchar(200);not null"`
	ContactEmail  string                `gorm:"type:varchar(200);not null"`
	Status        PurchaseRequestStatus `gorm:"type:varchar(20);not null;index"`
	Notes         string                `gorm:"type:text"`
	Total         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	ApprovedAt    *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  string                `gorm:"type:text"`
	SaleID        *uuid.UUID            `gorm:"type:uuid"`
	Items         []PurchaseRequestItem `gorm:"foreignKey:PurchaseRequestID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseRequest) TableName() string {
	return "purchase_requests"
}

// PurchaseRequestItem is a requested product line
type PurchaseRequestItem struct {
	shared.BaseEntity
	PurchaseRequestID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName       string          `gorm:"type:varchar(200);not null"`
	SKU               string          `gorm:"column:sku;type:varchar(50);not null"`
	Quantity          int             `gorm:"not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseRequestItem) TableName() string {
	return "purchase_request_items"
}

// NewPurchaseRequest creates a pending request from lines priced at the time of request
func NewPurchaseRequest(customerID uuid.UUID, contactName, contactEmail, notes string, lines []SaleLine) (*PurchaseRequest, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	contactEmail = strings.ToLower(strings.TrimSpace(contactEmail))
	if contactEmail == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Contact email cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Purchase request must have at least one item")
	}

	pr := &PurchaseRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		ContactName:       strings.TrimSpace(contactName),
		ContactEmail:      contactEmail,
		Status:            PurchaseRequestStatusPending,
		Notes:             strings.TrimSpace(notes),
	}
	pr.RequestNumber = "PR-" + pr.CreatedAt.Format("20060102") + "-" + shortCode()

	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity for %s must be positive", line.SKU))
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		pr.Items = append(pr.Items, PurchaseRequestItem{
			BaseEntity:        shared.NewBaseEntity(),
			PurchaseRequestID: pr.ID,
			ProductID:         line.ProductID,
			ProductName:       line.ProductName,
			SKU:               line.SKU,
			Quantity:          line.Quantity,
			UnitPrice:         line.UnitPrice.Round(2),
			LineTotal:         lineTotal,
		})
		total = total.Add(lineTotal)
	}
	pr.Total = total
	return pr, nil
}

// TransitionOptions carries data required by specific transitions
type TransitionOptions struct {
	// Reason is required when cancelling
	Reason string
	// SaleID is required when completing
	SaleID *uuid.UUID
	// ActorID is the staff member performing the transition
	ActorID *uuid.UUID
}

// TransitionTo moves the request to target, stamping approval, completion
// or cancellation times, and records a status-changed event.
func (pr *PurchaseRequest) TransitionTo(target PurchaseRequestStatus, opts TransitionOptions) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown purchase request status %q", target))
	}
	if !pr.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change purchase request from %s to %s", pr.Status, target))
	}

	now := time.Now()
	switch target {
	case PurchaseRequestStatusApproved:
		pr.ApprovedAt = &now
	case PurchaseRequestStatusCompleted:
		if opts.SaleID == nil || *opts.SaleID == uuid.Nil {
			return shared.NewDomainError("SALE_REQUIRED", "Completing a purchase request requires a sale")
		}
		pr.CompletedAt = &now
		pr.SaleID = opts.SaleID
	case PurchaseRequestStatusCancelled:
		reason := strings.TrimSpace(opts.Reason)
		if reason == "" {
			return shared.NewDomainError("INVALID_REASON", "Cancellation reason cannot be empty")
		}
		pr.CancelledAt = &now
		pr.CancelReason = reason
	}

	from := pr.Status
	pr.Status = target
	pr.UpdatedAt = now

	pr.AddDomainEvent(NewPurchaseRequestStatusChangedEvent(pr, from, opts))
	return nil
}

// SaleLines converts the request items into sale inputs
func (pr *PurchaseRequest) SaleLines() []SaleLine {
	lines := make([]SaleLine, 0, len(pr.Items))
	for _, item := range pr.Items {
		lines = append(lines, SaleLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return lines
}

// ItemsTotal returns the sum of line totals
func (pr *PurchaseRequest) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range pr.Items {
		total = total.Add(item.LineTotal)
	}
	return total
}
