package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MpesaStatus is the outcome of a mobile-money payment
type MpesaStatus string

const (
	MpesaStatusPending MpesaStatus = "pending"
	MpesaStatusSuccess MpesaStatus = "success"
	MpesaStatusFailed  MpesaStatus = "failed"
)

// MpesaTransaction records a mobile-money payment reported by the provider callback
type MpesaTransaction struct {
	shared.BaseAggregateRoot
	MerchantRequestID string          `gorm:"type:varchar(100);index"`
	CheckoutRequestID string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	PhoneNumber       string          `gorm:"type:varchar(20);index"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ReceiptNumber     string          `gorm:"type:varchar(30);index"`
	ResultCode        int             `gorm:"not null"`
	ResultDesc        string          `gorm:"type:text"`
	Status            MpesaStatus     `gorm:"type:varchar(20);not null;index"`
	TransactionDate   *time.Time
	SaleID            *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (MpesaTransaction) TableName() string {
	return "mpesa_transactions"
}

// NewMpesaTransaction creates a pending transaction for a checkout request
func NewMpesaTransaction(merchantRequestID, checkoutRequestID, phone string, amount decimal.Decimal) (*MpesaTransaction, error) {
	checkoutRequestID = strings.TrimSpace(checkoutRequestID)
	if checkoutRequestID == "" {
		return nil, shared.NewDomainError("INVALID_CHECKOUT_REQUEST", "Checkout request ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	return &MpesaTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MerchantRequestID: strings.TrimSpace(merchantRequestID),
		CheckoutRequestID: checkoutRequestID,
		PhoneNumber:       strings.TrimSpace(phone),
		Amount:            amount,
		ResultCode:        -1,
		Status:            MpesaStatusPending,
	}, nil
}

// ApplyResult records the provider's result. Result code 0 means success.
func (t *MpesaTransaction) ApplyResult(resultCode int, resultDesc, receipt string, amount decimal.Decimal, phone string, txDate *time.Time) {
	t.ResultCode = resultCode
	t.ResultDesc = strings.TrimSpace(resultDesc)
	if resultCode == 0 {
		t.Status = MpesaStatusSuccess
	} else {
		t.Status = MpesaStatusFailed
	}
	if receipt = strings.TrimSpace(receipt); receipt != "" {
		t.ReceiptNumber = receipt
	}
	if amount.IsPositive() {
		t.Amount = amount
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		t.PhoneNumber = phone
	}
	if txDate != nil {
		t.TransactionDate = txDate
	}
	t.Touch()
	t.IncrementVersion()
}

// LinkToSale attaches a successful transaction to a sale
func (t *MpesaTransaction) LinkToSale(saleID uuid.UUID) error {
	if t.Status != MpesaStatusSuccess {
		return shared.NewDomainError("INVALID_STATE", "Only successful transactions can be linked to a sale")
	}
	if t.SaleID != nil && *t.SaleID != saleID {
		return shared.NewDomainError("ALREADY_LINKED", "Transaction is already linked to another sale")
	}
	t.SaleID = &saleID
	t.Touch()
	t.IncrementVersion()
	return nil
}

// ParseMpesaTimestamp parses the provider's yyyyMMddHHmmss transaction date
func ParseMpesaTimestamp(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("20060102150405", value, time.UTC)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TIMESTAMP", "Transaction date must be in yyyyMMddHHmmss format")
	}
	return &t, nil
}
