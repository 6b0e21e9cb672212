package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
)

// EventSerializer converts domain events to and from the JSON payloads
// stored in the outbox. Deserialization needs a registered constructor per
// event type so the typed event reaches handlers, not a raw map.
type EventSerializer struct {
	mu      sync.RWMutex
	factory map[string]func() shared.DomainEvent
}

// NewEventSerializer creates a serializer with every lifecycle event
// registered
func NewEventSerializer() *EventSerializer {
	s := &EventSerializer{factory: make(map[string]func() shared.DomainEvent)}
	s.registerLifecycleEvents()
	return s
}

// Register registers a constructor for an event type
func (s *EventSerializer) Register(eventType string, newEvent func() shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factory[eventType] = newEvent
}

// Serialize serializes a domain event to JSON bytes
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize reconstructs a typed domain event from JSON bytes
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	newEvent, ok := s.factory[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	event := newEvent()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s event: %w", eventType, err)
	}
	return event, nil
}

// IsRegistered checks if an event type is registered
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factory[eventType]
	return ok
}

func (s *EventSerializer) registerLifecycleEvents() {
	s.factory[quoting.EventTypeQuoteCreated] = func() shared.DomainEvent { return &quoting.QuoteCreatedEvent{} }
	s.factory[quoting.EventTypeQuoteSent] = func() shared.DomainEvent { return &quoting.QuoteSentEvent{} }
	s.factory[quoting.EventTypeQuoteRevised] = func() shared.DomainEvent { return &quoting.QuoteRevisedEvent{} }
	s.factory[quoting.EventTypeQuoteAccepted] = func() shared.DomainEvent { return &quoting.QuoteAcceptedEvent{} }
	s.factory[quoting.EventTypeQuoteRejected] = func() shared.DomainEvent { return &quoting.QuoteRejectedEvent{} }
	s.factory[quoting.EventTypeQuoteExpired] = func() shared.DomainEvent { return &quoting.QuoteExpiredEvent{} }
	s.factory[trade.EventTypeOrderCreated] = func() shared.DomainEvent { return &trade.OrderCreatedEvent{} }
	s.factory[trade.EventTypeOrderConfirmed] = func() shared.DomainEvent { return &trade.OrderConfirmedEvent{} }
	s.factory[trade.EventTypeOrderShipped] = func() shared.DomainEvent { return &trade.OrderShippedEvent{} }
	s.factory[trade.EventTypeOrderDelivered] = func() shared.DomainEvent { return &trade.OrderDeliveredEvent{} }
	s.factory[trade.EventTypeOrderClosed] = func() shared.DomainEvent { return &trade.OrderClosedEvent{} }
	s.factory[trade.EventTypeOrderCancelled] = func() shared.DomainEvent { return &trade.OrderCancelledEvent{} }
	s.factory[billing.EventTypeInvoiceIssued] = func() shared.DomainEvent { return &billing.InvoiceIssuedEvent{} }
	s.factory[billing.EventTypeInvoicePaid] = func() shared.DomainEvent { return &billing.InvoicePaidEvent{} }
	s.factory[billing.EventTypeInvoiceOverdue] = func() shared.DomainEvent { return &billing.InvoiceOverdueEvent{} }
}
