package rating

import (
	"context"
	"fmt"

	"github.com/b2bmarket/backend/internal/domain/rating"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderClosedHandler records the seller's SLA outcome when an order closes.
// Recording is best effort and observes the order; it never blocks or
// mutates the fulfillment flow.
type OrderClosedHandler struct {
	performanceRepo rating.SellerPerformanceRepository
	logger          *zap.Logger
}

// NewOrderClosedHandler creates a new handler for order closed events
func NewOrderClosedHandler(
	performanceRepo rating.SellerPerformanceRepository,
	logger *zap.Logger,
) *OrderClosedHandler {
	return &OrderClosedHandler{
		performanceRepo: performanceRepo,
		logger:          logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderClosedHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderClosed}
}

// Handle processes an OrderClosedEvent by recording seller performance
func (h *OrderClosedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	closedEvent, ok := event.(*trade.OrderClosedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypeOrderClosed),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderClosed, event.EventType())
	}

	orderID := closedEvent.AggregateID()

	// idempotency: one performance row per order
	exists, err := h.performanceRepo.ExistsByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to check existing performance record: %w", err)
	}
	if exists {
		h.logger.Warn("performance record already exists for order, skipping",
			zap.String("order_number", closedEvent.OrderNumber))
		return nil
	}

	record := rating.NewSellerPerformance(
		closedEvent.SellerID,
		orderID,
		closedEvent.OrderNumber,
		closedEvent.ConfirmedOnTime,
		closedEvent.ShippedOnTime,
		closedEvent.DaysToConfirm,
		closedEvent.DaysToShip,
		closedEvent.DaysToDeliver,
	)
	if err := h.performanceRepo.Save(ctx, record); err != nil {
		h.logger.Error("failed to record seller performance",
			zap.String("order_number", closedEvent.OrderNumber),
			zap.Error(err))
		return err
	}

	h.logger.Info("seller performance recorded",
		zap.String("order_number", closedEvent.OrderNumber),
		zap.String("seller_id", closedEvent.SellerID.String()),
		zap.Bool("confirmed_on_time", closedEvent.ConfirmedOnTime),
		zap.Bool("shipped_on_time", closedEvent.ShippedOnTime))
	return nil
}
