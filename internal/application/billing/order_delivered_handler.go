package billing

import (
	"context"
	"fmt"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderDeliveredHandler generates the invoice when a non-credit order is
// delivered. Credit orders are invoiced at confirmation instead.
type OrderDeliveredHandler struct {
	invoiceService *InvoiceService
	invoiceRepo    billing.InvoiceRepository
	logger         *zap.Logger
}

// NewOrderDeliveredHandler creates a new handler for order delivered events
func NewOrderDeliveredHandler(
	invoiceService *InvoiceService,
	invoiceRepo billing.InvoiceRepository,
	logger *zap.Logger,
) *OrderDeliveredHandler {
	return &OrderDeliveredHandler{
		invoiceService: invoiceService,
		invoiceRepo:    invoiceRepo,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderDeliveredHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderDelivered}
}

// Handle processes an OrderDeliveredEvent by generating the invoice
func (h *OrderDeliveredHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	deliveredEvent, ok := event.(*trade.OrderDeliveredEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypeOrderDelivered),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderDelivered, event.EventType())
	}

	if deliveredEvent.PaymentMethod == trade.PaymentMethodCredit {
		// already invoiced at confirmation
		return nil
	}

	orderID := deliveredEvent.AggregateID()

	// idempotency check before doing any work
	exists, err := h.invoiceRepo.ExistsByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to check existing invoice: %w", err)
	}
	if exists {
		h.logger.Warn("invoice already exists for order, skipping",
			zap.String("order_number", deliveredEvent.OrderNumber))
		return nil
	}

	if _, err := h.invoiceService.GenerateForOrder(ctx, orderID); err != nil {
		h.logger.Error("failed to generate invoice for delivered order",
			zap.String("order_number", deliveredEvent.OrderNumber),
			zap.Error(err))
		return err
	}

	h.logger.Info("invoice generated for delivered order",
		zap.String("order_number", deliveredEvent.OrderNumber))
	return nil
}
