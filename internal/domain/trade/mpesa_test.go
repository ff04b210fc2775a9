package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMpesaTransaction_ApplyResult(t *testing.T) {
	tx, err := NewMpesaTransaction("m-1", "ws_CO_1", "254700000000", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, MpesaStatusPending, tx.Status)

	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tx.ApplyResult(0, "Processed", "QK12ABC", decimal.Zero, "", &when)
	assert.Equal(t, MpesaStatusSuccess, tx.Status)
	assert.Equal(t, "QK12ABC", tx.ReceiptNumber)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(100)))

	failed, _ := NewMpesaTransaction("m-2", "ws_CO_2", "", decimal.Zero)
	failed.ApplyResult(1032, "Cancelled by user", "", decimal.Zero, "", nil)
	assert.Equal(t, MpesaStatusFailed, failed.Status)
	assert.Error(t, failed.LinkToSale(uuid.New()))
}

func TestMpesaTransaction_LinkToSale(t *testing.T) {
	tx, _ := NewMpesaTransaction("m", "c", "", decimal.NewFromInt(5))
	tx.ApplyResult(0, "ok", "R1", decimal.Zero, "", nil)

	saleID := uuid.New()
	require.NoError(t, tx.LinkToSale(saleID))
	require.NoError(t, tx.LinkToSale(saleID))
	assert.Error(t, tx.LinkToSale(uuid.New()))
}

func TestParseMpesaTimestamp(t *testing.T) {
	ts, err := ParseMpesaTimestamp("20240301103000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), *ts)

	ts, err = ParseMpesaTimestamp("")
	assert.NoError(t, err)
	assert.Nil(t, ts)

	_, err = ParseMpesaTimestamp("yesterday")
	assert.Error(t, err)
}
