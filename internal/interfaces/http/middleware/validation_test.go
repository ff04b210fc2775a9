package middleware

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	SKU      string          `json:"sku" binding:"required,max=5"`
	Email    string          `json:"email" binding:"omitempty,email"`
	Method   string          `json:"payment_method" binding:"omitempty,oneof=cash mpesa card"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Quantity int             `form:"qty" binding:"min=1"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(&sampleRequest{
		SKU:      "TOO-LONG-SKU",
		Email:    "not-an-email",
		Method:   "cheque",
		Quantity: 0,
	})
	require.Error(t, err)

	messages := make(map[string]string)
	for _, d := range ValidationDetails(err) {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at most 5 characters", messages["sku"])
	assert.Equal(t, "Invalid email format", messages["email"])
	assert.Equal(t, "Must be one of: cash mpesa card", messages["payment_method"])
	assert.Equal(t, "This field is required", messages["amount"])
	assert.Equal(t, "Must be at least 1", messages["qty"])
}

func TestValidationDetails_DecimalAccepted(t *testing.T) {
	SetupValidator()

	err := binding.Validator.ValidateStruct(&sampleRequest{
		SKU:      "A-1",
		Amount:   decimal.RequireFromString("12.50"),
		Quantity: 2,
	})
	assert.NoError(t, err)
}

func TestValidationDetails_OtherErrors(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("unexpected EOF")))
}
