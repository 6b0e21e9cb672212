package trade

import (
	"context"
	"time"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles order creation and the fulfillment lifecycle
type OrderService struct {
	orderRepo trade.OrderRepository
	quoteRepo quoting.QuoteRepository
	auditRepo trade.OrderAuditRepository
	scope     TransactionScope
	parties   PartyDirectory
	sequences shared.SequenceAllocator
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	quoteRepo quoting.QuoteRepository,
	auditRepo trade.OrderAuditRepository,
	scope TransactionScope,
	parties PartyDirectory,
	sequences shared.SequenceAllocator,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		quoteRepo: quoteRepo,
		auditRepo: auditRepo,
		scope:     scope,
		parties:   parties,
		sequences: sequences,
		logger:    logger,
	}
}

// AcceptQuote converts an accepted quote into an order. The quote flip, RFQ
// freeze, order insert and all trail rows commit in one transaction; the
// quote's state is re-checked inside it so two concurrent accepts cannot
// both succeed.
func (s *OrderService) AcceptQuote(ctx context.Context, buyers shared.IdentitySet, req AcceptQuoteRequest) (*OrderResponse, error) {
	// callers that do not state a payment method get the standard flow
	paymentMethod := trade.PaymentMethodBankTransfer
	if req.PaymentMethod != "" {
		paymentMethod = trade.PaymentMethod(req.PaymentMethod)
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewValidationError("Invalid payment method: " + req.PaymentMethod)
	}

	// cheap pre-checks before opening a transaction; everything is
	// re-validated inside
	quote, err := s.quoteRepo.FindByID(ctx, req.QuoteID)
	if err != nil {
		return nil, err
	}
	if !buyers.Owns(quote.BuyerID) {
		return nil, shared.NewUnauthorizedError("Not authorized to accept this quote")
	}
	buyerID := quote.BuyerID

	if paymentMethod == trade.PaymentMethodCredit {
		eligible, err := s.parties.IsCreditEligible(ctx, buyerID)
		if err != nil {
			return nil, err
		}
		if !eligible {
			return nil, shared.NewConflictError("Buyer is not eligible for credit orders")
		}
	}

	orderNumber, err := s.sequences.Next(ctx, shared.SequenceKindOrder, shared.PlatformScope, time.Now().Year())
	if err != nil {
		return nil, err
	}

	var order *trade.Order
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		now := time.Now()

		quote, err := repos.Quotes().FindByID(ctx, req.QuoteID)
		if err != nil {
			return err
		}
		if !buyers.Owns(quote.BuyerID) {
			return shared.NewUnauthorizedError("Not authorized to accept this quote")
		}

		exists, err := repos.Orders().ExistsByQuote(ctx, quote.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("An order already exists for this quote")
		}

		rfq, err := repos.RFQs().FindByID(ctx, quote.RFQID)
		if err != nil {
			return err
		}

		order, err = trade.NewOrder(orderNumber, trade.OrderSource{
			QuoteID:         quote.ID,
			QuoteNumber:     quote.QuoteNumber,
			RFQID:           quote.RFQID,
			BuyerID:         quote.BuyerID,
			SellerID:        quote.SellerID,
			Items:           quote.Items,
			TotalAmount:     quote.TotalPrice,
			Currency:        quote.Currency,
			DeliveryTerms:   quote.DeliveryTerms,
			DeliveryDays:    quote.DeliveryDays,
			ShippingAddress: req.ShippingAddress,
		}, paymentMethod, now)
		if err != nil {
			return err
		}

		quoteFrom := quote.Status
		if err := quote.Accept(buyerID, order.ID, now); err != nil {
			return err
		}
		rfqFrom := rfq.Status
		if err := rfq.Accept(quote.ID, order.ID); err != nil {
			return err
		}

		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		if err := repos.Quotes().SaveWithLock(ctx, quote); err != nil {
			return err
		}
		if err := repos.RFQs().SaveWithLock(ctx, rfq); err != nil {
			return err
		}

		orderRef := valueobject.Metadata{"order_number": order.OrderNumber}
		if err := repos.QuoteEvents().Append(ctx, quoting.NewQuoteEvent(
			quote, quoting.QuoteEventAccepted, buyerID, shared.ActorTypeBuyer, quoteFrom, orderRef)); err != nil {
			return err
		}
		if err := repos.RFQEvents().Append(ctx, quoting.NewRFQEvent(
			rfq, quoting.RFQEventAccepted, buyerID, shared.ActorTypeBuyer, rfqFrom, orderRef)); err != nil {
			return err
		}
		if err := repos.OrderAudits().Append(ctx, trade.NewOrderAudit(
			order, trade.OrderAuditCreated, buyerID, shared.ActorTypeBuyer, order.Status, nil)); err != nil {
			return err
		}

		events := append(quote.GetDomainEvents(), order.GetDomainEvents()...)
		if err := repos.AppendOutbox(ctx, events...); err != nil {
			return err
		}
		quote.ClearDomainEvents()
		order.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote accepted",
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("order_number", order.OrderNumber))

	response := ToOrderResponse(order)
	return &response, nil
}

// ConfirmOrder records the seller accepting the order
func (s *OrderService) ConfirmOrder(ctx context.Context, sellers shared.IdentitySet, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, trade.OrderAuditConfirmed, nil,
		func(order *trade.Order, now time.Time) error {
			if !sellers.Owns(order.SellerID) {
				return shared.NewUnauthorizedError("Not authorized to confirm this order")
			}
			return order.Confirm(now)
		}, sellerActor(sellers))
}

// RejectOrder is the seller declining a pending order
func (s *OrderService) RejectOrder(ctx context.Context, sellers shared.IdentitySet, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	metadata := valueobject.Metadata{"reason": req.Reason}
	return s.transition(ctx, orderID, trade.OrderAuditRejected, metadata,
		func(order *trade.Order, now time.Time) error {
			if !sellers.Owns(order.SellerID) {
				return shared.NewUnauthorizedError("Not authorized to reject this order")
			}
			return order.Reject(req.Reason, now)
		}, sellerActor(sellers))
}

// StartProcessing moves a confirmed order into fulfillment
func (s *OrderService) StartProcessing(ctx context.Context, sellers shared.IdentitySet, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, trade.OrderAuditProcessing, nil,
		func(order *trade.Order, now time.Time) error {
			if !sellers.Owns(order.SellerID) {
				return shared.NewUnauthorizedError("Not authorized to process this order")
			}
			return order.StartProcessing(now)
		}, sellerActor(sellers))
}

// ShipOrder records the shipment leaving the seller
func (s *OrderService) ShipOrder(ctx context.Context, sellers shared.IdentitySet, orderID uuid.UUID, req ShipOrderRequest) (*OrderResponse, error) {
	metadata := valueobject.Metadata{"carrier": req.Carrier}
	if req.TrackingNumber != "" {
		metadata["tracking_number"] = req.TrackingNumber
	}
	return s.transition(ctx, orderID, trade.OrderAuditShipped, metadata,
		func(order *trade.Order, now time.Time) error {
			if !sellers.Owns(order.SellerID) {
				return shared.NewUnauthorizedError("Not authorized to ship this order")
			}
			return order.Ship(req.Carrier, req.TrackingNumber, now)
		}, sellerActor(sellers))
}

// MarkDelivered records delivery of the shipment. Either side may confirm
// it; the trail records who did.
func (s *OrderService) MarkDelivered(ctx context.Context, identity shared.IdentitySet, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, trade.OrderAuditDelivered, nil,
		func(order *trade.Order, now time.Time) error {
			if !identity.Owns(order.BuyerID) && !identity.Owns(order.SellerID) {
				return shared.NewUnauthorizedError("Not authorized to confirm delivery of this order")
			}
			return order.MarkDelivered(identity.Primary(), now)
		}, actorOf(identity))
}

// CloseOrder completes a delivered order
func (s *OrderService) CloseOrder(ctx context.Context, identity shared.IdentitySet, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, trade.OrderAuditClosed, nil,
		func(order *trade.Order, now time.Time) error {
			if !identity.Owns(order.BuyerID) && !identity.Owns(order.SellerID) {
				return shared.NewUnauthorizedError("Not authorized to close this order")
			}
			return order.Close(now)
		}, actorOf(identity))
}

// CancelOrder aborts an order before shipment. Buyer and seller may both
// cancel while the state machine allows it.
func (s *OrderService) CancelOrder(ctx context.Context, identity shared.IdentitySet, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	metadata := valueobject.Metadata{"reason": req.Reason}
	return s.transition(ctx, orderID, trade.OrderAuditCancelled, metadata,
		func(order *trade.Order, now time.Time) error {
			if !identity.Owns(order.BuyerID) && !identity.Owns(order.SellerID) {
				return shared.NewUnauthorizedError("Not authorized to cancel this order")
			}
			return order.Cancel(req.Reason, now)
		}, actorOf(identity))
}

// GetOrder retrieves an order visible to the caller
func (s *OrderService) GetOrder(ctx context.Context, identity shared.IdentitySet, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.findVisible(ctx, identity, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrderAudit returns the order's audit trail
func (s *OrderService) GetOrderAudit(ctx context.Context, identity shared.IdentitySet, orderID uuid.UUID) ([]OrderAuditResponse, error) {
	order, err := s.findVisible(ctx, identity, orderID)
	if err != nil {
		return nil, err
	}

	audits, err := s.auditRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderAuditResponse, 0, len(audits))
	for _, audit := range audits {
		responses = append(responses, OrderAuditResponse{
			Action:     audit.Action,
			Actor:      audit.Actor,
			ActorType:  audit.ActorType,
			FromStatus: audit.FromStatus,
			ToStatus:   audit.ToStatus,
			Metadata:   audit.Metadata,
			CreatedAt:  audit.CreatedAt,
		})
	}
	return responses, nil
}

// ListOrdersForBuyer lists the buyer's orders
func (s *OrderService) ListOrdersForBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	page, err := s.orderRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, err
	}
	return mapOrderPage(page), nil
}

// ListOrdersForSeller lists orders owned by any of the caller's seller aliases
func (s *OrderService) ListOrdersForSeller(ctx context.Context, sellers shared.IdentitySet, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	page, err := s.orderRepo.FindBySellers(ctx, identityList(sellers), filter)
	if err != nil {
		return nil, err
	}
	return mapOrderPage(page), nil
}

// GetOrderStats summarizes the seller's order book by status
func (s *OrderService) GetOrderStats(ctx context.Context, sellers shared.IdentitySet) (*OrderStatsResponse, error) {
	counts, err := s.orderRepo.CountByStatusForSellers(ctx, identityList(sellers))
	if err != nil {
		return nil, err
	}

	stats := &OrderStatsResponse{Counts: counts}
	for _, count := range counts {
		stats.Total += count
	}
	return stats, nil
}

// actorResolver yields the audit identity once the order is loaded, so the
// trail distinguishes a seller cancelling from a buyer cancelling
type actorResolver func(order *trade.Order) (shared.PartyID, shared.ActorType)

func sellerActor(sellers shared.IdentitySet) actorResolver {
	return func(*trade.Order) (shared.PartyID, shared.ActorType) {
		return sellers.Primary(), shared.ActorTypeSeller
	}
}

func actorOf(identity shared.IdentitySet) actorResolver {
	return func(order *trade.Order) (shared.PartyID, shared.ActorType) {
		if identity.Owns(order.SellerID) {
			return identity.Primary(), shared.ActorTypeSeller
		}
		return identity.Primary(), shared.ActorTypeBuyer
	}
}

// transition runs the load / mutate / save-with-outbox / audit sequence
// shared by all simple order transitions
func (s *OrderService) transition(
	ctx context.Context,
	orderID uuid.UUID,
	action trade.OrderAuditAction,
	metadata valueobject.Metadata,
	mutate func(order *trade.Order, now time.Time) error,
	resolveActor actorResolver,
) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	fromStatus := order.Status
	actor, actorType := resolveActor(order)
	if err := mutate(order, time.Now()); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLockAndEvents(ctx, order, order.GetDomainEvents()); err != nil {
		return nil, err
	}
	order.ClearDomainEvents()

	audit := trade.NewOrderAudit(order, action, actor, actorType, fromStatus, metadata)
	if err := s.auditRepo.Append(ctx, audit); err != nil {
		s.logger.Error("failed to append order audit",
			zap.String("order_number", order.OrderNumber),
			zap.String("action", string(action)),
			zap.Error(err))
	}

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) findVisible(ctx context.Context, identity shared.IdentitySet, orderID uuid.UUID) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !identity.Owns(order.BuyerID) && !identity.Owns(order.SellerID) {
		return nil, shared.NewUnauthorizedError("Not authorized to view this order")
	}
	return order, nil
}

func identityList(identity shared.IdentitySet) []shared.PartyID {
	ids := make([]shared.PartyID, 0, len(identity))
	for id := range identity {
		ids = append(ids, id)
	}
	return ids
}

func mapOrderPage(page *shared.Paginated[trade.Order]) *shared.Paginated[OrderResponse] {
	items := make([]OrderResponse, 0, len(page.Items))
	for _, order := range page.Items {
		items = append(items, ToOrderResponse(&order))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out
}
