package event

import (
	"testing"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializerRoundTripsQuoteEvent(t *testing.T) {
	serializer := NewEventSerializer()
	original := testQuoteEvent(t)

	payload, err := serializer.Serialize(original)
	require.NoError(t, err)

	restored, err := serializer.Deserialize(original.EventType(), payload)
	require.NoError(t, err)

	created, ok := restored.(*quoting.QuoteCreatedEvent)
	require.True(t, ok, "expected a typed QuoteCreatedEvent, got %T", restored)
	assert.Equal(t, original.EventID(), created.EventID())
	assert.Equal(t, original.AggregateID(), created.AggregateID())
	assert.Equal(t, "QT-2026-0001", created.QuoteNumber)
}

func TestSerializerRejectsUnknownEventType(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Deserialize("quoting.quote.vaporized", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestSerializerRejectsMalformedPayload(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Deserialize(quoting.EventTypeQuoteCreated, []byte(`{not json`))

	require.Error(t, err)
}

func TestSerializerRegistersAllLifecycleEvents(t *testing.T) {
	serializer := NewEventSerializer()

	for _, eventType := range []string{
		quoting.EventTypeQuoteCreated,
		quoting.EventTypeQuoteSent,
		quoting.EventTypeQuoteRevised,
		quoting.EventTypeQuoteAccepted,
		quoting.EventTypeQuoteRejected,
		quoting.EventTypeQuoteExpired,
		trade.EventTypeOrderCreated,
		trade.EventTypeOrderConfirmed,
		trade.EventTypeOrderShipped,
		trade.EventTypeOrderDelivered,
		trade.EventTypeOrderClosed,
		trade.EventTypeOrderCancelled,
		billing.EventTypeInvoiceIssued,
		billing.EventTypeInvoicePaid,
		billing.EventTypeInvoiceOverdue,
	} {
		assert.True(t, serializer.IsRegistered(eventType), "event type %s not registered", eventType)
	}
}
