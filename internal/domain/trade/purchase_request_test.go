package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPurchaseRequest(t *testing.T) *PurchaseRequest {
	t.Helper()
	pr, err := NewPurchaseRequest(uuid.New(), "Akinyi", "Akinyi@Mail.com", "", sampleLines())
	require.NoError(t, err)
	return pr
}

func TestNewPurchaseRequest(t *testing.T) {
	pr := newTestPurchaseRequest(t)

	assert.Equal(t, PurchaseRequestStatusPending, pr.Status)
	assert.Equal(t, "akinyi@mail.com", pr.ContactEmail)
	assert.True(t, pr.Total.Equal(decimal.NewFromInt(170)))
	assert.True(t, pr.Total.Equal(pr.ItemsTotal()))
	assert.Regexp(t, `^PR-\d{8}-[0-9A-F]{6}$`, pr.RequestNumber)

	_, err := NewPurchaseRequest(uuid.New(), "x", "x@y.co", "", nil)
	assert.Error(t, err)
}

func TestParsePurchaseRequestStatus(t *testing.T) {
	s, err := ParsePurchaseRequestStatus(" completed ")
	require.NoError(t, err)
	assert.Equal(t, PurchaseRequestStatusCompleted, s)
	assert.Equal(t, "Completed", s.Label())

	_, err = ParsePurchaseRequestStatus("lost")
	assert.Error(t, err)
}

func TestPurchaseRequestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to PurchaseRequestStatus
		allowed  bool
	}{
		{PurchaseRequestStatusPending, PurchaseRequestStatusApproved, true},
		{PurchaseRequestStatusPending, PurchaseRequestStatusProcessing, false},
		{PurchaseRequestStatusPending, PurchaseRequestStatusCancelled, true},
		{PurchaseRequestStatusApproved, PurchaseRequestStatusProcessing, true},
		{PurchaseRequestStatusApproved, PurchaseRequestStatusCancelled, true},
		{PurchaseRequestStatusProcessing, PurchaseRequestStatusShipped, true},
		{PurchaseRequestStatusProcessing, PurchaseRequestStatusCancelled, true},
		{PurchaseRequestStatusShipped, PurchaseRequestStatusCancelled, false},
		{PurchaseRequestStatusShipped, PurchaseRequestStatusDelivered, true},
		{PurchaseRequestStatusDelivered, PurchaseRequestStatusCompleted, true},
		{PurchaseRequestStatusCompleted, PurchaseRequestStatusCancelled, false},
		{PurchaseRequestStatusCancelled, PurchaseRequestStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPurchaseRequest_TransitionTo(t *testing.T) {
	t.Run("stamps approval and emits event", func(t *testing.T) {
		pr := newTestPurchaseRequest(t)
		require.NoError(t, pr.TransitionTo(PurchaseRequestStatusApproved, TransitionOptions{}))

		assert.NotNil(t, pr.ApprovedAt)
		events := pr.GetDomainEvents()
		require.Len(t, events, 1)
		changed := events[0].(*PurchaseRequestStatusChangedEvent)
		assert.Equal(t, PurchaseRequestStatusPending, changed.FromStatus)
		assert.Equal(t, PurchaseRequestStatusApproved, changed.ToStatus)
	})

	t.Run("completion requires a sale", func(t *testing.T) {
		pr := newTestPurchaseRequest(t)
		pr.Status = PurchaseRequestStatusDelivered

		err := pr.TransitionTo(PurchaseRequestStatusCompleted, TransitionOptions{})
		require.Error(t, err)
		assert.Equal(t, PurchaseRequestStatusDelivered, pr.Status)

		saleID := uuid.New()
		require.NoError(t, pr.TransitionTo(PurchaseRequestStatusCompleted, TransitionOptions{SaleID: &saleID}))
		assert.NotNil(t, pr.CompletedAt)
		assert.Equal(t, saleID, *pr.SaleID)
	})

	t.Run("cancellation requires reason", func(t *testing.T) {
		pr := newTestPurchaseRequest(t)
		assert.Error(t, pr.TransitionTo(PurchaseRequestStatusCancelled, TransitionOptions{}))
		require.NoError(t, pr.TransitionTo(PurchaseRequestStatusCancelled, TransitionOptions{Reason: "Out of stock"}))
		assert.NotNil(t, pr.CancelledAt)
		assert.True(t, pr.Status.IsTerminal())
	})

	t.Run("rejects skipping stages", func(t *testing.T) {
		pr := newTestPurchaseRequest(t)
		err := pr.TransitionTo(PurchaseRequestStatusShipped, TransitionOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot change purchase request")
	})
}
