package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// MovementReason classifies a stock movement
type MovementReason string

const (
	MovementSale       MovementReason = "sale"
	MovementSaleVoid   MovementReason = "sale_void"
	MovementSupply     MovementReason = "supply"
	MovementAdjustment MovementReason = "adjustment"
	MovementPurchase   MovementReason = "purchase_request"
)

// StockMovement is an append-only record of a stock change
type StockMovement struct {
	shared.BaseEntity
	ProductID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Change       int            `gorm:"not null"`
	BalanceAfter int            `gorm:"not null"`
	Reason       MovementReason `gorm:"type:varchar(30);not null"`
	Reference    string         `gorm:"type:varchar(100)"`
	Note         string         `gorm:"type:text"`
	UserID       *uuid.UUID     `gorm:"type:uuid"`
	OccurredAt   time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records a movement against the product's current balance
func NewStockMovement(product *Product, change int, reason MovementReason, reference, note string, userID *uuid.UUID) *StockMovement {
	return &StockMovement{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    product.ID,
		Change:       change,
		BalanceAfter: product.StockQuantity,
		Reason:       reason,
		Reference:    strings.TrimSpace(reference),
		Note:         strings.TrimSpace(note),
		UserID:       userID,
		OccurredAt:   time.Now(),
	}
}
