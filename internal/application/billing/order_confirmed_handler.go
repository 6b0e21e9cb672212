package billing

import (
	"context"
	"fmt"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderConfirmedHandler generates the invoice when a credit order is
// confirmed, so the payment clock starts at confirmation rather than
// delivery.
type OrderConfirmedHandler struct {
	invoiceService *InvoiceService
	invoiceRepo    billing.InvoiceRepository
	logger         *zap.Logger
}

// NewOrderConfirmedHandler creates a new handler for order confirmed events
func NewOrderConfirmedHandler(
	invoiceService *InvoiceService,
	invoiceRepo billing.InvoiceRepository,
	logger *zap.Logger,
) *OrderConfirmedHandler {
	return &OrderConfirmedHandler{
		invoiceService: invoiceService,
		invoiceRepo:    invoiceRepo,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderConfirmedHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderConfirmed}
}

// Handle processes an OrderConfirmedEvent for credit orders
func (h *OrderConfirmedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	confirmedEvent, ok := event.(*trade.OrderConfirmedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypeOrderConfirmed),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderConfirmed, event.EventType())
	}

	if confirmedEvent.PaymentMethod != trade.PaymentMethodCredit {
		return nil
	}

	orderID := confirmedEvent.AggregateID()

	exists, err := h.invoiceRepo.ExistsByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to check existing invoice: %w", err)
	}
	if exists {
		h.logger.Warn("invoice already exists for order, skipping",
			zap.String("order_number", confirmedEvent.OrderNumber))
		return nil
	}

	if _, err := h.invoiceService.GenerateForOrder(ctx, orderID); err != nil {
		h.logger.Error("failed to generate invoice for credit order",
			zap.String("order_number", confirmedEvent.OrderNumber),
			zap.Error(err))
		return err
	}

	h.logger.Info("invoice generated for confirmed credit order",
		zap.String("order_number", confirmedEvent.OrderNumber))
	return nil
}
