package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was settled
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodMpesa PaymentMethod = "mpesa"
	PaymentMethodCard  PaymentMethod = "card"
)

// IsValid reports whether the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMpesa, PaymentMethodCard:
		return true
	}
	return false
}

// SaleStatus is the state of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusVoided    SaleStatus = "voided"
)

// Sale is a finalized, paid transaction with line items
type Sale struct {
	shared.BaseAggregateRoot
	ReceiptNumber     string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	CashierID         *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerID        *uuid.UUID      `gorm:"type:uuid;index"`
	PurchaseRequestID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	PaymentMethod     PaymentMethod   `gorm:"type:varchar(20);not null"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Tax               decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AmountPaid        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Change            decimal.Decimal `gorm:"column:change_due;type:decimal(18,2);not null;default:0"`
	MpesaReceipt      string          `gorm:"type:varchar(30)"`
	Status            SaleStatus      `gorm:"type:varchar(20);not null;default:'completed';index"`
	SoldAt            time.Time       `gorm:"not null;index"`
	VoidedAt          *time.Time
	VoidReason        string     `gorm:"type:text"`
	Items             []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is a line of a sale with a snapshot of product data
type SaleItem struct {
	shared.BaseEntity
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	SKU         string          `gorm:"column:sku;type:varchar(50);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// Profit returns line total minus cost
func (i SaleItem) Profit() decimal.Decimal {
	return i.LineTotal.Sub(i.CostPrice.Mul(decimal.NewFromInt(int64(i.Quantity))))
}

// SaleLine is the input for one sale item
type SaleLine struct {
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	CostPrice   decimal.Decimal
}

// SaleParams groups the inputs to NewSale
type SaleParams struct {
	CashierID         *uuid.UUID
	CustomerID        *uuid.UUID
	PurchaseRequestID *uuid.UUID
	PaymentMethod     PaymentMethod
	Lines             []SaleLine
	Discount          decimal.Decimal
	TaxRate           decimal.Decimal
	AmountPaid        decimal.Decimal
	MpesaReceipt      string
	SoldAt            time.Time
}

// NewSale builds a completed sale. Subtotal is the sum of line totals,
// total = subtotal - discount + tax where tax = (subtotal - discount) * rate.
// A zero amount paid on a non-cash sale is treated as exact payment.
func NewSale(p SaleParams) (*Sale, error) {
	if !p.PaymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", p.PaymentMethod))
	}
	if len(p.Lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Sale must have at least one item")
	}
	if p.Discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CashierID:         p.CashierID,
		CustomerID:        p.CustomerID,
		PurchaseRequestID: p.PurchaseRequestID,
		PaymentMethod:     p.PaymentMethod,
		MpesaReceipt:      strings.TrimSpace(p.MpesaReceipt),
		Status:            SaleStatusCompleted,
		SoldAt:            p.SoldAt,
	}
	if sale.SoldAt.IsZero() {
		sale.SoldAt = time.Now()
	}
	sale.ReceiptNumber = GenerateReceiptNumber(sale.SoldAt)

	subtotal := decimal.Zero
	for _, line := range p.Lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity for %s must be positive", line.SKU))
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Price for %s cannot be negative", line.SKU))
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		sale.Items = append(sale.Items, SaleItem{
			BaseEntity:  shared.NewBaseEntity(),
			SaleID:      sale.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			SKU:         line.SKU,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.Round(2),
			CostPrice:   line.CostPrice.Round(2),
			LineTotal:   lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	if p.Discount.GreaterThan(subtotal) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed subtotal")
	}

	taxable := subtotal.Sub(p.Discount)
	sale.Subtotal = subtotal
	sale.Discount = p.Discount.Round(2)
	sale.Tax = taxable.Mul(p.TaxRate).Round(2)
	sale.Total = taxable.Add(sale.Tax).Round(2)

	paid := p.AmountPaid
	if paid.IsZero() && p.PaymentMethod != PaymentMethodCash {
		paid = sale.Total
	}
	if paid.LessThan(sale.Total) {
		return nil, shared.NewDomainError("INSUFFICIENT_PAYMENT",
			fmt.Sprintf("Amount paid %s is less than total %s", paid.StringFixed(2), sale.Total.StringFixed(2)))
	}
	sale.AmountPaid = paid.Round(2)
	sale.Change = sale.AmountPaid.Sub(sale.Total)

	sale.AddDomainEvent(NewSaleCompletedEvent(sale))
	return sale, nil
}

// Void marks the sale voided; stock restoration is done by the caller
func (s *Sale) Void(reason string) error {
	if s.Status == SaleStatusVoided {
		return shared.NewDomainError("INVALID_STATE", "Sale is already voided")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason cannot be empty")
	}
	now := time.Now()
	s.Status = SaleStatusVoided
	s.VoidedAt = &now
	s.VoidReason = reason
	s.UpdatedAt = now
	return nil
}

// ItemCount returns the number of units sold
func (s *Sale) ItemCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// ItemsTotal returns the sum of line totals
func (s *Sale) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal)
	}
	return total
}

// GenerateReceiptNumber returns RCPT-YYYYMMDD-XXXXXX
func GenerateReceiptNumber(at time.Time) string {
	return "RCPT-" + at.Format("20060102") + "-" + shortCode()
}

func shortCode() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:6])
}
