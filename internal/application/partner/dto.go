package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Supplier DTOs
// =============================================================================

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Phone         string `json:"phone" binding:"max=50"`
	Address       string `json:"address" binding:"max=500"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest = CreateSupplierRequest

// SupplierListFilter filters the supplier list
type SupplierListFilter struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// RecordSupplyRequest records goods received from a supplier
type RecordSupplyRequest struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,min=1"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	SuppliedAt *time.Time      `json:"supplied_at"`
	Note       string          `json:"note" binding:"max=1000"`
}

// SupplyResponse represents a supply record
type SupplyResponse struct {
	ID         uuid.UUID       `json:"id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	SuppliedAt time.Time       `json:"supplied_at"`
	ReceivedBy *uuid.UUID      `json:"received_by,omitempty"`
	Note       string          `json:"note"`
}

// ToSupplyResponse converts a supply record
func ToSupplyResponse(s *partner.SupplierProductSupply) SupplyResponse {
	return SupplyResponse{
		ID:         s.ID,
		SupplierID: s.SupplierID,
		ProductID:  s.ProductID,
		Quantity:   s.Quantity,
		UnitCost:   s.UnitCost,
		TotalCost:  s.TotalCost,
		SuppliedAt: s.SuppliedAt,
		ReceivedBy: s.ReceivedBy,
		Note:       s.Note,
	}
}

// CreateInvoiceRequest records an invoice received from a supplier
type CreateInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"required,max=50"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	IssuedAt      *time.Time      `json:"issued_at"`
	DueDate       *time.Time      `json:"due_date"`
	Note          string          `json:"note" binding:"max=1000"`
}

// InvoiceResponse represents a supplier invoice
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Balance       decimal.Decimal `json:"balance"`
	IssuedAt      time.Time       `json:"issued_at"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Status        string          `json:"status"`
	IsOverdue     bool            `json:"is_overdue"`
	Note          string          `json:"note"`
}

// ToInvoiceResponse converts a supplier invoice
func ToInvoiceResponse(i *partner.SupplierInvoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            i.ID,
		SupplierID:    i.SupplierID,
		InvoiceNumber: i.InvoiceNumber,
		Amount:        i.Amount,
		PaidAmount:    i.PaidAmount,
		Balance:       i.Balance(),
		IssuedAt:      i.IssuedAt,
		DueDate:       i.DueDate,
		Status:        string(i.Status),
		IsOverdue:     i.IsOverdue(time.Now()),
		Note:          i.Note,
	}
}

// RecordSupplierPaymentRequest pays (part of) an invoice
type RecordSupplierPaymentRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"omitempty,oneof=cash mpesa bank cheque"`
	Reference string          `json:"reference" binding:"max=100"`
	PaidAt    *time.Time      `json:"paid_at"`
}

// SupplierPaymentResponse represents a payment to a supplier
type SupplierPaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference"`
	PaidAt     time.Time       `json:"paid_at"`
}

// ToSupplierPaymentResponse converts a supplier payment
func ToSupplierPaymentResponse(p *partner.SupplierPayment) SupplierPaymentResponse {
	return SupplierPaymentResponse{
		ID:         p.ID,
		SupplierID: p.SupplierID,
		InvoiceID:  p.InvoiceID,
		Amount:     p.Amount,
		Method:     p.Method,
		Reference:  p.Reference,
		PaidAt:     p.PaidAt,
	}
}

// SupplierBalanceResponse summarizes what is owed to a supplier
type SupplierBalanceResponse struct {
	SupplierID  uuid.UUID       `json:"supplier_id"`
	Invoiced    decimal.Decimal `json:"invoiced"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Email   string `json:"email" binding:"required,email,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest = CreateCustomerRequest

// CustomerListFilter filters the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// =============================================================================
// Cart and wishlist DTOs
// =============================================================================

// CartItemRequest adds or updates a cart line
type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CartItemResponse is one cart line with product details
type CartItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	InStock     bool            `json:"in_stock"`
}

// CartResponse is a customer's cart
type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	CustomerID uuid.UUID          `json:"customer_id"`
	Items      []CartItemResponse `json:"items"`
	ItemCount  int                `json:"item_count"`
	Total      decimal.Decimal    `json:"total"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// WishlistItemResponse is one wishlist entry with product details
type WishlistItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	InStock      bool            `json:"in_stock"`
	AddedAt      time.Time       `json:"added_at"`
}

// MoveToCartRequest moves a wishlist product into the cart
type MoveToCartRequest struct {
	Quantity int `json:"quantity" binding:"omitempty,min=1"`
}
