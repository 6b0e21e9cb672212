package notification

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// EventHandler fans lifecycle events out to the notification sink. Delivery
// is best effort: a failed notification is logged and dropped, never
// retried against the triggering transaction.
type EventHandler struct {
	notifier shared.Notifier
	logger   *zap.Logger
}

// NewEventHandler creates a new notification event handler
func NewEventHandler(notifier shared.Notifier, logger *zap.Logger) *EventHandler {
	return &EventHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *EventHandler) EventTypes() []string {
	return []string{
		quoting.EventTypeQuoteSent,
		trade.EventTypeOrderCreated,
		trade.EventTypeOrderConfirmed,
		trade.EventTypeOrderShipped,
		billing.EventTypeInvoiceIssued,
	}
}

// Handle routes the event to the right recipient and notification kind
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *quoting.QuoteSentEvent:
		h.notify(ctx, e.BuyerID, shared.NotificationQuoteSent, e.QuoteNumber, map[string]string{
			"total_price": e.TotalPrice.String(),
			"valid_until": e.ValidUntil.Format("2006-01-02"),
		})
	case *trade.OrderCreatedEvent:
		h.notify(ctx, e.SellerID, shared.NotificationOrderCreated, e.OrderNumber, map[string]string{
			"total_amount": e.TotalAmount.String(),
		})
	case *trade.OrderConfirmedEvent:
		h.notify(ctx, e.BuyerID, shared.NotificationOrderConfirmed, e.OrderNumber, nil)
	case *trade.OrderShippedEvent:
		h.notify(ctx, e.BuyerID, shared.NotificationOrderShipped, e.OrderNumber, map[string]string{
			"carrier":         e.Carrier,
			"tracking_number": e.TrackingNumber,
		})
	case *billing.InvoiceIssuedEvent:
		h.notify(ctx, e.BuyerID, shared.NotificationInvoiceIssued, e.InvoiceNumber, map[string]string{
			"total_amount": e.TotalAmount.String(),
			"due_date":     e.DueDate.Format("2006-01-02"),
		})
	default:
		h.logger.Debug("no notification mapping for event",
			zap.String("event_type", event.EventType()))
	}
	return nil
}

func (h *EventHandler) notify(ctx context.Context, recipient shared.PartyID, kind, entityRef string, metadata map[string]string) {
	if err := h.notifier.Notify(ctx, recipient, kind, entityRef, metadata); err != nil {
		h.logger.Warn("notification delivery failed",
			zap.String("recipient", recipient.String()),
			zap.String("kind", kind),
			zap.String("entity", entityRef),
			zap.Error(err))
	}
}
