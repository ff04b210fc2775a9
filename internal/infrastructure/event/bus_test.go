package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	created := &testHandler{eventTypes: []string{"ProductCreated"}}
	all := &testHandler{}
	bus.Subscribe(created)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(), newTestEvent("ProductCreated"), newTestEvent("SaleCompleted"))

	assert.NoError(t, err)
	assert.Len(t, created.handled, 1)
	assert.Len(t, all.handled, 2)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &testHandler{eventTypes: []string{"A"}}
	bus.Subscribe(h, "B")

	_ = bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B"))

	assert.Len(t, h.handled, 1)
	assert.Equal(t, "B", h.handled[0].EventType())
}

func TestInMemoryEventBus_IsolatesFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &testHandler{eventTypes: []string{"X"}, err: errors.New("smtp down")}
	panicking := &testHandler{eventTypes: []string{"X"}, panicWith: "boom"}
	healthy := &testHandler{eventTypes: []string{"X"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("X"))

	assert.NoError(t, err)
	assert.Len(t, healthy.handled, 1)
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}
