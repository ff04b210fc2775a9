package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Sale DTOs
// =============================================================================

// LineItemRequest is a product and quantity to sell or request
type LineItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest represents a point-of-sale checkout
type CheckoutRequest struct {
	Items                  []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount               decimal.Decimal   `json:"discount"`
	TaxRate                decimal.Decimal   `json:"tax_rate"`
	PaymentMethod          string            `json:"payment_method" binding:"required,oneof=cash mpesa card"`
	AmountPaid             decimal.Decimal   `json:"amount_paid"`
	CustomerID             *uuid.UUID        `json:"customer_id"`
	MpesaCheckoutRequestID string            `json:"mpesa_checkout_request_id" binding:"max=100"`
}

// VoidSaleRequest represents a request to void a sale
type VoidSaleRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SaleListFilter filters the sale list
type SaleListFilter struct {
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	CashierID     *uuid.UUID `form:"-"`
	CustomerID    *uuid.UUID `form:"-"`
	PaymentMethod string     `form:"payment_method" binding:"omitempty,oneof=cash mpesa card"`
	Status        string     `form:"status" binding:"omitempty,oneof=completed voided"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID                uuid.UUID          `json:"id"`
	ReceiptNumber     string             `json:"receipt_number"`
	CashierID         *uuid.UUID         `json:"cashier_id,omitempty"`
	CustomerID        *uuid.UUID         `json:"customer_id,omitempty"`
	PurchaseRequestID *uuid.UUID         `json:"purchase_request_id,omitempty"`
	PaymentMethod     string             `json:"payment_method"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	Discount          decimal.Decimal    `json:"discount"`
	Tax               decimal.Decimal    `json:"tax"`
	Total             decimal.Decimal    `json:"total"`
	AmountPaid        decimal.Decimal    `json:"amount_paid"`
	Change            decimal.Decimal    `json:"change"`
	MpesaReceipt      string             `json:"mpesa_receipt,omitempty"`
	Status            string             `json:"status"`
	SoldAt            time.Time          `json:"sold_at"`
	VoidedAt          *time.Time         `json:"voided_at,omitempty"`
	VoidReason        string             `json:"void_reason,omitempty"`
	Items             []SaleItemResponse `json:"items,omitempty"`
	ItemCount         int                `json:"item_count"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return SaleResponse{
		ID:                s.ID,
		ReceiptNumber:     s.ReceiptNumber,
		CashierID:         s.CashierID,
		CustomerID:        s.CustomerID,
		PurchaseRequestID: s.PurchaseRequestID,
		PaymentMethod:     string(s.PaymentMethod),
		Subtotal:          s.Subtotal,
		Discount:          s.Discount,
		Tax:               s.Tax,
		Total:             s.Total,
		AmountPaid:        s.AmountPaid,
		Change:            s.Change,
		MpesaReceipt:      s.MpesaReceipt,
		Status:            string(s.Status),
		SoldAt:            s.SoldAt,
		VoidedAt:          s.VoidedAt,
		VoidReason:        s.VoidReason,
		Items:             items,
		ItemCount:         s.ItemCount(),
	}
}

// ToSaleResponses converts a slice of sales
func ToSaleResponses(sales []trade.Sale) []SaleResponse {
	out := make([]SaleResponse, len(sales))
	for i := range sales {
		out[i] = ToSaleResponse(&sales[i])
	}
	return out
}

// DailySummaryResponse is a cashier's takings for one day
type DailySummaryResponse struct {
	Date      string                     `json:"date"`
	CashierID uuid.UUID                  `json:"cashier_id"`
	SaleCount int                        `json:"sale_count"`
	ItemsSold int                        `json:"items_sold"`
	Revenue   decimal.Decimal            `json:"revenue"`
	Discount  decimal.Decimal            `json:"discount"`
	Tax       decimal.Decimal            `json:"tax"`
	ByMethod  map[string]decimal.Decimal `json:"by_method"`
	Voided    int                        `json:"voided"`
}

// =============================================================================
// Purchase Request DTOs
// =============================================================================

// CreatePurchaseRequestRequest represents a customer's purchase request.
// With FromCart set, Items is ignored and the customer's cart is used and cleared.
type CreatePurchaseRequestRequest struct {
	CustomerID   uuid.UUID         `json:"customer_id" binding:"required"`
	ContactName  string            `json:"contact_name" binding:"max=200"`
	ContactEmail string            `json:"contact_email" binding:"omitempty,email,max=200"`
	Notes        string            `json:"notes" binding:"max=2000"`
	Items        []LineItemRequest `json:"items" binding:"omitempty,dive"`
	FromCart     bool              `json:"from_cart"`
}

// UpdateStatusRequest moves a purchase request to another status.
// PaymentMethod applies to the sale created on completion and defaults to cash.
type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	Reason        string `json:"reason" binding:"max=500"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=cash mpesa card"`
}

// PurchaseRequestListFilter filters the purchase request list
type PurchaseRequestListFilter struct {
	Status     string     `form:"status"`
	CustomerID *uuid.UUID `form:"-"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PurchaseRequestItemResponse represents a requested line
type PurchaseRequestItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// StatusHistoryEntry is one stamped point of a request's lifecycle
type StatusHistoryEntry struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// PurchaseRequestResponse represents a purchase request in API responses
type PurchaseRequestResponse struct {
	ID            uuid.UUID                     `json:"id"`
	RequestNumber string                        `json:"request_number"`
	CustomerID    uuid.UUID                     `json:"customer_id"`
	ContactName   string                        `json:"contact_name"`
	ContactEmail  string                        `json:"contact_email"`
	Status        string                        `json:"status"`
	StatusLabel   string                        `json:"status_label"`
	Notes         string                        `json:"notes,omitempty"`
	Total         decimal.Decimal               `json:"total"`
	ApprovedAt    *time.Time                    `json:"approved_at,omitempty"`
	CompletedAt   *time.Time                    `json:"completed_at,omitempty"`
	CancelledAt   *time.Time                    `json:"cancelled_at,omitempty"`
	CancelReason  string                        `json:"cancel_reason,omitempty"`
	SaleID        *uuid.UUID                    `json:"sale_id,omitempty"`
	Items         []PurchaseRequestItemResponse `json:"items"`
	History       []StatusHistoryEntry          `json:"history"`
	Version       int                           `json:"version"`
	CreatedAt     time.Time                     `json:"created_at"`
	UpdatedAt     time.Time                     `json:"updated_at"`
}

// ToPurchaseRequestResponse converts a domain PurchaseRequest to PurchaseRequestResponse
func ToPurchaseRequestResponse(pr *trade.PurchaseRequest) PurchaseRequestResponse {
	items := make([]PurchaseRequestItemResponse, len(pr.Items))
	for i, item := range pr.Items {
		items[i] = PurchaseRequestItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}

	history := []StatusHistoryEntry{{Status: string(trade.PurchaseRequestStatusPending), At: pr.CreatedAt}}
	if pr.ApprovedAt != nil {
		history = append(history, StatusHistoryEntry{Status: string(trade.PurchaseRequestStatusApproved), At: *pr.ApprovedAt})
	}
	if pr.CompletedAt != nil {
		history = append(history, StatusHistoryEntry{Status: string(trade.PurchaseRequestStatusCompleted), At: *pr.CompletedAt})
	}
	if pr.CancelledAt != nil {
		history = append(history, StatusHistoryEntry{Status: string(trade.PurchaseRequestStatusCancelled), At: *pr.CancelledAt})
	}

	return PurchaseRequestResponse{
		ID:            pr.ID,
		RequestNumber: pr.RequestNumber,
		CustomerID:    pr.CustomerID,
		ContactName:   pr.ContactName,
		ContactEmail:  pr.ContactEmail,
		Status:        string(pr.Status),
		StatusLabel:   pr.Status.Label(),
		Notes:         pr.Notes,
		Total:         pr.Total,
		ApprovedAt:    pr.ApprovedAt,
		CompletedAt:   pr.CompletedAt,
		CancelledAt:   pr.CancelledAt,
		CancelReason:  pr.CancelReason,
		SaleID:        pr.SaleID,
		Items:         items,
		History:       history,
		Version:       pr.Version,
		CreatedAt:     pr.CreatedAt,
		UpdatedAt:     pr.UpdatedAt,
	}
}

// ToPurchaseRequestResponses converts a slice of purchase requests
func ToPurchaseRequestResponses(prs []trade.PurchaseRequest) []PurchaseRequestResponse {
	out := make([]PurchaseRequestResponse, len(prs))
	for i := range prs {
		out[i] = ToPurchaseRequestResponse(&prs[i])
	}
	return out
}

// StatusChangeResult is returned by UpdateStatus
type StatusChangeResult struct {
	Request PurchaseRequestResponse `json:"request"`
	// Sale is set when the request was completed
	Sale *SaleResponse `json:"sale,omitempty"`
}

// =============================================================================
// Mpesa DTOs
// =============================================================================

// MpesaCallbackRequest is the STK push result payload posted by the provider
type MpesaCallbackRequest struct {
	Body struct {
		StkCallback MpesaSTKCallback `json:"stkCallback" binding:"required"`
	} `json:"Body" binding:"required"`
}

// MpesaSTKCallback is the result body of an STK push
type MpesaSTKCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID" binding:"required"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  *struct {
		Item []MpesaMetadataItem `json:"Item"`
	} `json:"CallbackMetadata,omitempty"`
}

// MpesaMetadataItem is a name/value pair of the callback metadata
type MpesaMetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}

// MpesaListFilter filters the transaction list
type MpesaListFilter struct {
	Status   string     `form:"status" binding:"omitempty,oneof=pending success failed"`
	Phone    string     `form:"phone"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// LinkSaleRequest links a transaction to a sale
type LinkSaleRequest struct {
	SaleID uuid.UUID `json:"sale_id" binding:"required"`
}

// MpesaTransactionResponse represents a transaction in API responses
type MpesaTransactionResponse struct {
	ID                uuid.UUID       `json:"id"`
	MerchantRequestID string          `json:"merchant_request_id"`
	CheckoutRequestID string          `json:"checkout_request_id"`
	PhoneNumber       string          `json:"phone_number"`
	Amount            decimal.Decimal `json:"amount"`
	ReceiptNumber     string          `json:"receipt_number,omitempty"`
	ResultCode        int             `json:"result_code"`
	ResultDesc        string          `json:"result_desc"`
	Status            string          `json:"status"`
	TransactionDate   *time.Time      `json:"transaction_date,omitempty"`
	SaleID            *uuid.UUID      `json:"sale_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToMpesaTransactionResponse converts a domain MpesaTransaction
func ToMpesaTransactionResponse(t *trade.MpesaTransaction) MpesaTransactionResponse {
	return MpesaTransactionResponse{
		ID:                t.ID,
		MerchantRequestID: t.MerchantRequestID,
		CheckoutRequestID: t.CheckoutRequestID,
		PhoneNumber:       t.PhoneNumber,
		Amount:            t.Amount,
		ReceiptNumber:     t.ReceiptNumber,
		ResultCode:        t.ResultCode,
		ResultDesc:        t.ResultDesc,
		Status:            string(t.Status),
		TransactionDate:   t.TransactionDate,
		SaleID:            t.SaleID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}
