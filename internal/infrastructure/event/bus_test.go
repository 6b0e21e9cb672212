package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func testQuoteEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	rfq, err := quoting.NewRFQ(
		"RFQ-2026-0001",
		shared.PartyID("buyer-1"),
		nil,
		"Steel Pipes",
		decimal.NewFromInt(10),
		"Riyadh",
	)
	require.NoError(t, err)

	quote, err := quoting.NewQuote("QT-2026-0001", rfq, shared.PartyID("seller-1"), quoting.QuoteTerms{
		UnitPrice:  decimal.NewFromInt(100),
		Quantity:   decimal.NewFromInt(10),
		Currency:   valueobject.DefaultCurrency,
		ValidUntil: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	events := quote.GetDomainEvents()
	require.Len(t, events, 1)
	return events[0]
}

func TestEventBusDeliversToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{quoting.EventTypeQuoteCreated}}
	bus.Subscribe(handler)

	event := testQuoteEvent(t)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, handler.received, 1)
	assert.Equal(t, event.EventID(), handler.received[0].EventID())
}

func TestEventBusSkipsUnrelatedHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{quoting.EventTypeQuoteAccepted}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), testQuoteEvent(t))

	require.NoError(t, err)
	assert.Empty(t, handler.received)
}

func TestEventBusHandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{quoting.EventTypeQuoteCreated}, err: errors.New("boom")}
	healthy := &recordingHandler{types: []string{quoting.EventTypeQuoteCreated}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), testQuoteEvent(t))

	require.NoError(t, err)
	assert.Len(t, healthy.received, 1)
}

func TestEventBusRecoversFromHandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := &recordingHandler{types: []string{quoting.EventTypeQuoteCreated}, panics: true}
	healthy := &recordingHandler{types: []string{quoting.EventTypeQuoteCreated}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), testQuoteEvent(t))
	})
	assert.Len(t, healthy.received, 1)
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{quoting.EventTypeQuoteCreated}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), testQuoteEvent(t))

	require.NoError(t, err)
	assert.Empty(t, handler.received)
}

func TestEventBusExplicitEventTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{quoting.EventTypeQuoteAccepted}}
	bus.Subscribe(handler, quoting.EventTypeQuoteCreated)

	err := bus.Publish(context.Background(), testQuoteEvent(t))

	require.NoError(t, err)
	assert.Len(t, handler.received, 1)
}
