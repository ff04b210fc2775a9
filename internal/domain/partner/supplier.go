package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Supplier is a vendor that supplies products to the shop
type Supplier struct {
	shared.BaseAggregateRoot
	Name          string `gorm:"type:varchar(200);not null"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Email         string `gorm:"type:varchar(200);index"`
	Phone         string `gorm:"type:varchar(50)"`
	Address       string `gorm:"type:text"`
	IsActive      bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new active supplier
func NewSupplier(name, contactPerson, email, phone, address string) (*Supplier, error) {
	s := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		IsActive:          true,
	}
	if err := s.Update(name, contactPerson, email, phone, address); err != nil {
		return nil, err
	}
	s.Version = 1
	return s, nil
}

// Update replaces the supplier's contact details
func (s *Supplier) Update(name, contactPerson, email, phone, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	s.Name = name
	s.ContactPerson = strings.TrimSpace(contactPerson)
	s.Email = email
	s.Phone = strings.TrimSpace(phone)
	s.Address = strings.TrimSpace(address)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// ToggleActive flips the active flag
func (s *Supplier) ToggleActive() {
	s.IsActive = !s.IsActive
	s.Touch()
	s.IncrementVersion()
}

// SupplierProductSupply records a delivery of a product from a supplier
type SupplierProductSupply struct {
	shared.BaseEntity
	SupplierID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int             `gorm:"not null"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalCost  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SuppliedAt time.Time       `gorm:"not null;index"`
	ReceivedBy *uuid.UUID      `gorm:"type:uuid"`
	Note       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierProductSupply) TableName() string {
	return "supplier_product_supplies"
}

// NewSupplierProductSupply creates a supply record
func NewSupplierProductSupply(supplierID, productID uuid.UUID, quantity int, unitCost decimal.Decimal, suppliedAt time.Time, receivedBy *uuid.UUID, note string) (*SupplierProductSupply, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Supplied quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit cost cannot be negative")
	}
	if suppliedAt.IsZero() {
		suppliedAt = time.Now()
	}
	return &SupplierProductSupply{
		BaseEntity: shared.NewBaseEntity(),
		SupplierID: supplierID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitCost:   unitCost.Round(2),
		TotalCost:  unitCost.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
		SuppliedAt: suppliedAt,
		ReceivedBy: receivedBy,
		Note:       strings.TrimSpace(note),
	}, nil
}

// InvoiceStatus is the payment state of a supplier invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// SupplierInvoice is an amount owed to a supplier
type SupplierInvoice struct {
	shared.BaseAggregateRoot
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_supplier_number,priority:1"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_supplier_number,priority:2"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IssuedAt      time.Time       `gorm:"not null"`
	DueDate       *time.Time
	Status        InvoiceStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Note          string        `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SupplierInvoice) TableName() string {
	return "supplier_invoices"
}

// NewSupplierInvoice creates an unpaid invoice
func NewSupplierInvoice(supplierID uuid.UUID, number string, amount decimal.Decimal, issuedAt time.Time, dueDate *time.Time, note string) (*SupplierInvoice, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	return &SupplierInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		InvoiceNumber:     number,
		Amount:            amount.Round(2),
		PaidAmount:        decimal.Zero,
		IssuedAt:          issuedAt,
		DueDate:           dueDate,
		Status:            InvoiceStatusUnpaid,
		Note:              strings.TrimSpace(note),
	}, nil
}

// Balance returns the outstanding amount
func (i *SupplierInvoice) Balance() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// ApplyPayment reduces the balance; the amount may not exceed it
func (i *SupplierInvoice) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(i.Balance()) {
		return shared.NewDomainError("INSUFFICIENT_BALANCE", "Payment exceeds outstanding invoice balance of "+i.Balance().StringFixed(2))
	}
	i.PaidAmount = i.PaidAmount.Add(amount)
	if i.Balance().IsZero() {
		i.Status = InvoiceStatusPaid
	} else {
		i.Status = InvoiceStatusPartial
	}
	i.Touch()
	i.IncrementVersion()
	return nil
}

// IsOverdue reports whether an unpaid invoice is past its due date
func (i *SupplierInvoice) IsOverdue(now time.Time) bool {
	return i.Status != InvoiceStatusPaid && i.DueDate != nil && now.After(*i.DueDate)
}

// SupplierPayment records money paid to a supplier against an invoice
type SupplierPayment struct {
	shared.BaseEntity
	SupplierID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method     string          `gorm:"type:varchar(30);not null"`
	Reference  string          `gorm:"type:varchar(100)"`
	PaidAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierPayment) TableName() string {
	return "supplier_payments"
}

// NewSupplierPayment creates a payment record for an invoice
func NewSupplierPayment(invoice *SupplierInvoice, amount decimal.Decimal, method, reference string, paidAt time.Time) (*SupplierPayment, error) {
	if err := invoice.ApplyPayment(amount); err != nil {
		return nil, err
	}
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		method = "bank"
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &SupplierPayment{
		BaseEntity: shared.NewBaseEntity(),
		SupplierID: invoice.SupplierID,
		InvoiceID:  invoice.ID,
		Amount:     amount.Round(2),
		Method:     method,
		Reference:  strings.TrimSpace(reference),
		PaidAt:     paidAt,
	}, nil
}
