package billing

import (
	"context"
	"errors"
	"time"

	apptrade "github.com/b2bmarket/backend/internal/application/trade"
	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService handles invoice generation and settlement
type InvoiceService struct {
	invoiceRepo   billing.InvoiceRepository
	invoiceEvents billing.InvoiceEventRepository
	paymentRepo   billing.PaymentRepository
	orderRepo     trade.OrderRepository
	parties       apptrade.PartyDirectory
	sequences     shared.SequenceAllocator
	logger        *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	invoiceEvents billing.InvoiceEventRepository,
	paymentRepo billing.PaymentRepository,
	orderRepo trade.OrderRepository,
	parties apptrade.PartyDirectory,
	sequences shared.SequenceAllocator,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		invoiceEvents: invoiceEvents,
		paymentRepo:   paymentRepo,
		orderRepo:     orderRepo,
		parties:       parties,
		sequences:     sequences,
		logger:        logger,
	}
}

// GenerateForOrder creates and issues the invoice for an order that reached
// its billing trigger: delivery for upfront payment methods, confirmation
// for credit orders. The call is idempotent; if the order is already
// invoiced the existing invoice is returned.
func (s *InvoiceService) GenerateForOrder(ctx context.Context, orderID uuid.UUID) (*InvoiceResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	existing, err := s.invoiceRepo.FindByOrder(ctx, order.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return s.respond(ctx, existing)
	}

	if order.PaymentMethod == trade.PaymentMethodCredit {
		if order.Status != trade.OrderStatusConfirmed && order.Status != trade.OrderStatusProcessing &&
			order.Status != trade.OrderStatusShipped && order.Status != trade.OrderStatusDelivered {
			return nil, shared.NewConflictError("Credit order is not confirmed yet")
		}
	} else if order.Status != trade.OrderStatusDelivered && order.Status != trade.OrderStatusClosed {
		return nil, shared.NewConflictError("Order is not delivered yet")
	}

	number, err := s.sequences.Next(ctx, shared.SequenceKindInvoice, shared.PlatformScope, time.Now().Year())
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(number, billing.InvoiceSource{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		SellerID:    order.SellerID,
		BuyerID:     order.BuyerID,
		SellerName:  s.displayName(ctx, order.SellerID),
		BuyerName:   s.displayName(ctx, order.BuyerID),
		Items:       order.Items,
		Subtotal:    order.TotalAmount,
		Currency:    order.Currency,
	}, valueobject.DefaultPaymentTerms)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := invoice.Issue(shared.SystemActor, now); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithEvents(ctx, invoice, invoice.GetDomainEvents()); err != nil {
		return nil, err
	}
	invoice.ClearDomainEvents()

	s.appendEvent(ctx, invoice, billing.InvoiceEventCreated, shared.SystemActor, shared.ActorTypeSystem, billing.InvoiceStatusDraft, nil)

	// payments sometimes land before the invoice exists, pick them up now
	if moved, err := s.paymentRepo.AssignToInvoice(ctx, order.ID, invoice.ID); err != nil {
		s.logger.Warn("failed to reassociate payments",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
	} else if moved > 0 {
		s.logger.Info("reassociated orphan payments",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Int64("count", moved))
		s.trySettle(ctx, invoice)
	}

	return s.respond(ctx, invoice)
}

// CancelInvoice voids a draft invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, sellers shared.IdentitySet, invoiceID uuid.UUID, req CancelInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !sellers.Owns(invoice.SellerID) {
		return nil, shared.NewUnauthorizedError("Not authorized to cancel this invoice")
	}

	fromStatus := invoice.Status
	if err := invoice.Cancel(req.Reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	s.appendEvent(ctx, invoice, billing.InvoiceEventCancelled, sellers.Primary(), shared.ActorTypeSeller, fromStatus,
		valueobject.Metadata{"reason": req.Reason})

	return s.respond(ctx, invoice)
}

// RecordPayment registers money received against an order and settles the
// invoice when confirmed payments cover the total. A payment arriving
// before the order is invoiced is acknowledged without an invoice and
// parked until generation adopts it.
func (s *InvoiceService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentRecordedResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}

	status := billing.PaymentStatusPending
	if req.Confirmed {
		status = billing.PaymentStatusConfirmed
	}
	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	payment := &billing.Payment{
		ID:         uuid.New(),
		OrderID:    req.OrderID,
		Reference:  req.Reference,
		Amount:     req.Amount,
		Currency:   valueobject.Currency(req.Currency),
		Status:     status,
		ReceivedAt: receivedAt,
		CreatedAt:  time.Now(),
	}

	ack := &PaymentRecordedResponse{
		PaymentID: payment.ID,
		OrderID:   req.OrderID,
		Reference: req.Reference,
		Status:    status,
	}

	invoice, err := s.invoiceRepo.FindByOrder(ctx, req.OrderID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		// no invoice yet, keep the payment parked against the order
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return nil, err
		}
		s.logger.Info("payment recorded before invoice",
			zap.String("order_id", req.OrderID.String()),
			zap.String("reference", req.Reference))
		return ack, nil
	}

	payment.InvoiceID = &invoice.ID
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	s.trySettle(ctx, invoice)
	ack.Invoice, err = s.respond(ctx, invoice)
	if err != nil {
		return nil, err
	}
	return ack, nil
}

// ProcessOverdueInvoices sweeps issued invoices past their due date. The
// sweep is idempotent; already overdue invoices are excluded by the query.
func (s *InvoiceService) ProcessOverdueInvoices(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	now := time.Now()
	invoices, err := s.invoiceRepo.FindIssuedDueBefore(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	flagged := 0
	for _, invoice := range invoices {
		fromStatus := invoice.Status
		if err := invoice.MarkOverdue(now); err != nil {
			continue
		}
		if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, invoice.GetDomainEvents()); err != nil {
			s.logger.Warn("failed to mark invoice overdue",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			continue
		}
		invoice.ClearDomainEvents()
		s.appendEvent(ctx, invoice, billing.InvoiceEventOverdue, shared.SystemActor, shared.ActorTypeSystem, fromStatus, nil)
		flagged++
	}

	if flagged > 0 {
		s.logger.Info("flagged overdue invoices", zap.Int("count", flagged))
	}
	return flagged, nil
}

// GetInvoice retrieves an invoice visible to the caller. Buyers never see
// drafts.
func (s *InvoiceService) GetInvoice(ctx context.Context, identity shared.IdentitySet, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if identity.Owns(invoice.SellerID) {
		return s.respond(ctx, invoice)
	}
	if identity.Owns(invoice.BuyerID) {
		if !invoice.VisibleToBuyer() {
			return nil, shared.NewNotFoundError("Invoice not found")
		}
		return s.respond(ctx, invoice)
	}
	return nil, shared.NewUnauthorizedError("Not authorized to view this invoice")
}

// GetInvoiceForOrder retrieves the invoice of an order visible to the caller
func (s *InvoiceService) GetInvoiceForOrder(ctx context.Context, identity shared.IdentitySet, orderID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, identity, invoice.ID)
}

// GetInvoiceHistory returns the invoice activity log
func (s *InvoiceService) GetInvoiceHistory(ctx context.Context, identity shared.IdentitySet, invoiceID uuid.UUID) ([]InvoiceEventResponse, error) {
	if _, err := s.GetInvoice(ctx, identity, invoiceID); err != nil {
		return nil, err
	}

	events, err := s.invoiceEvents.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, InvoiceEventResponse{
			EventType:  event.EventType,
			Actor:      event.Actor,
			ActorType:  event.ActorType,
			FromStatus: event.FromStatus,
			ToStatus:   event.ToStatus,
			CreatedAt:  event.CreatedAt,
		})
	}
	return responses, nil
}

// ListInvoicesForSeller lists invoices owned by any of the caller's aliases
func (s *InvoiceService) ListInvoicesForSeller(ctx context.Context, sellers shared.IdentitySet, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	ids := make([]shared.PartyID, 0, len(sellers))
	for id := range sellers {
		ids = append(ids, id)
	}
	page, err := s.invoiceRepo.FindBySellers(ctx, ids, filter)
	if err != nil {
		return nil, err
	}
	return s.mapPage(ctx, page), nil
}

// ListInvoicesForBuyer lists the buyer's invoices, drafts excluded by the
// repository
func (s *InvoiceService) ListInvoicesForBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	page, err := s.invoiceRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, err
	}
	return s.mapPage(ctx, page), nil
}

// trySettle marks the invoice paid once confirmed payments cover the total.
// Settlement failure is not an error for the caller recording a payment.
func (s *InvoiceService) trySettle(ctx context.Context, invoice *billing.Invoice) {
	confirmed, err := s.paymentRepo.SumConfirmedByInvoice(ctx, invoice.ID)
	if err != nil {
		s.logger.Warn("failed to sum confirmed payments",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
		return
	}

	fromStatus := invoice.Status
	if err := invoice.MarkPaid(confirmed, time.Now()); err != nil {
		return
	}
	if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, invoice.GetDomainEvents()); err != nil {
		s.logger.Error("failed to settle invoice",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
		return
	}
	invoice.ClearDomainEvents()
	s.appendEvent(ctx, invoice, billing.InvoiceEventPaid, shared.SystemActor, shared.ActorTypeSystem, fromStatus, nil)
}

func (s *InvoiceService) respond(ctx context.Context, invoice *billing.Invoice) (*InvoiceResponse, error) {
	paid, err := s.paymentRepo.SumConfirmedByInvoice(ctx, invoice.ID)
	if err != nil {
		paid = decimal.Zero
	}
	response := ToInvoiceResponse(invoice, paid)
	return &response, nil
}

func (s *InvoiceService) mapPage(ctx context.Context, page *shared.Paginated[billing.Invoice]) *shared.Paginated[InvoiceResponse] {
	items := make([]InvoiceResponse, 0, len(page.Items))
	for i := range page.Items {
		invoice := &page.Items[i]
		paid, err := s.paymentRepo.SumConfirmedByInvoice(ctx, invoice.ID)
		if err != nil {
			paid = decimal.Zero
		}
		items = append(items, ToInvoiceResponse(invoice, paid))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out
}

func (s *InvoiceService) displayName(ctx context.Context, id shared.PartyID) string {
	name, err := s.parties.DisplayName(ctx, id)
	if err != nil || name == "" {
		return id.String()
	}
	return name
}

func (s *InvoiceService) appendEvent(ctx context.Context, invoice *billing.Invoice, eventType billing.InvoiceEventType, actor shared.PartyID, actorType shared.ActorType, fromStatus billing.InvoiceStatus, metadata valueobject.Metadata) {
	event := billing.NewInvoiceEvent(invoice, eventType, actor, actorType, fromStatus, metadata)
	if err := s.invoiceEvents.Append(ctx, event); err != nil {
		s.logger.Error("failed to append invoice event",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}
