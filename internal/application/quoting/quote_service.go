package quoting

import (
	"context"
	"errors"
	"time"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuoteService handles the RFQ and quote lifecycle
type QuoteService struct {
	quoteRepo    quoting.QuoteRepository
	rfqRepo      quoting.RFQRepository
	revisionRepo quoting.QuoteRevisionRepository
	quoteEvents  quoting.QuoteEventRepository
	rfqEvents    quoting.RFQEventRepository
	sequences    shared.SequenceAllocator
	logger       *zap.Logger
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	quoteRepo quoting.QuoteRepository,
	rfqRepo quoting.RFQRepository,
	revisionRepo quoting.QuoteRevisionRepository,
	quoteEvents quoting.QuoteEventRepository,
	rfqEvents quoting.RFQEventRepository,
	sequences shared.SequenceAllocator,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:    quoteRepo,
		rfqRepo:      rfqRepo,
		revisionRepo: revisionRepo,
		quoteEvents:  quoteEvents,
		rfqEvents:    rfqEvents,
		sequences:    sequences,
		logger:       logger,
	}
}

// CreateRFQ registers a buyer's request for pricing
func (s *QuoteService) CreateRFQ(ctx context.Context, buyerID shared.PartyID, req CreateRFQRequest) (*RFQResponse, error) {
	number, err := s.sequences.Next(ctx, shared.SequenceKindRFQ, shared.PlatformScope, time.Now().Year())
	if err != nil {
		return nil, err
	}

	rfq, err := quoting.NewRFQ(number, buyerID, req.SellerID, req.ItemName, req.Quantity, req.DeliveryLocation)
	if err != nil {
		return nil, err
	}
	rfq.SKU = req.SKU

	if err := s.rfqRepo.Save(ctx, rfq); err != nil {
		return nil, err
	}
	s.appendRFQEvent(ctx, rfq, quoting.RFQEventCreated, buyerID, shared.ActorTypeBuyer, rfq.Status, nil)

	response := ToRFQResponse(rfq)
	return &response, nil
}

// GetRFQ retrieves an RFQ visible to the caller. Buyers see their own RFQs;
// sellers see open RFQs and RFQs bound to them.
func (s *QuoteService) GetRFQ(ctx context.Context, identity shared.IdentitySet, rfqID uuid.UUID) (*RFQResponse, error) {
	rfq, err := s.rfqRepo.FindByID(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if !identity.Owns(rfq.BuyerID) && !rfq.AllowsSeller(identity) {
		return nil, shared.NewUnauthorizedError("Not authorized to view this RFQ")
	}
	response := ToRFQResponse(rfq)
	return &response, nil
}

// ListRFQsForBuyer lists the buyer's own RFQs
func (s *QuoteService) ListRFQsForBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[RFQResponse], error) {
	page, err := s.rfqRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, err
	}
	return mapPage(page, func(r quoting.RFQ) RFQResponse { return ToRFQResponse(&r) }), nil
}

// ListOpenRFQsForSeller lists the RFQs the seller may quote on: open
// marketplace RFQs plus those bound to one of the seller's aliases.
func (s *QuoteService) ListOpenRFQsForSeller(ctx context.Context, sellers shared.IdentitySet, filter shared.Filter) (*shared.Paginated[RFQResponse], error) {
	ids := make([]shared.PartyID, 0, len(sellers))
	for id := range sellers {
		ids = append(ids, id)
	}
	page, err := s.rfqRepo.FindOpenForSellers(ctx, ids, filter)
	if err != nil {
		return nil, err
	}
	return mapPage(page, func(r quoting.RFQ) RFQResponse { return ToRFQResponse(&r) }), nil
}

// CreateDraft drafts a quote against an RFQ. At most one draft may exist
// per RFQ at a time, whoever authored it; a second create is rejected
// rather than silently merged.
func (s *QuoteService) CreateDraft(ctx context.Context, sellers shared.IdentitySet, req CreateQuoteRequest) (*QuoteResponse, error) {
	rfq, err := s.rfqRepo.FindByID(ctx, req.RFQID)
	if err != nil {
		return nil, err
	}
	if !rfq.AllowsSeller(sellers) {
		return nil, shared.NewUnauthorizedError("RFQ is assigned to a different seller")
	}
	if !rfq.CanReceiveQuote() {
		return nil, shared.NewConflictError("RFQ is " + rfq.Status.String() + " and no longer accepts quotes")
	}

	sellerID := s.resolveSeller(rfq, sellers)

	existing, err := s.quoteRepo.FindDraftByRFQ(ctx, req.RFQID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewConflictError("A draft quote already exists for this RFQ")
	}

	terms, err := req.Terms.ToDomain()
	if err != nil {
		return nil, err
	}

	number, err := s.sequences.Next(ctx, shared.SequenceKindQuote, shared.PlatformScope, time.Now().Year())
	if err != nil {
		return nil, err
	}

	quote, err := quoting.NewQuote(number, rfq, sellerID, terms)
	if err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithEvents(ctx, quote, quote.GetDomainEvents()); err != nil {
		return nil, err
	}
	quote.ClearDomainEvents()

	s.appendQuoteEvent(ctx, quote, quoting.QuoteEventCreated, sellerID, shared.ActorTypeSeller, quote.Status, nil)
	s.appendRevision(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// UpdateQuote applies new terms to a quote the caller owns
func (s *QuoteService) UpdateQuote(ctx context.Context, sellers shared.IdentitySet, quoteID uuid.UUID, req UpdateQuoteRequest) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !sellers.Owns(quote.SellerID) {
		return nil, shared.NewUnauthorizedError("Not authorized to modify this quote")
	}

	terms, err := req.Terms.ToDomain()
	if err != nil {
		return nil, err
	}

	fromStatus := quote.Status
	if err := quote.Update(terms); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithLockAndEvents(ctx, quote, quote.GetDomainEvents()); err != nil {
		return nil, err
	}
	quote.ClearDomainEvents()

	s.appendQuoteEvent(ctx, quote, quoting.QuoteEventUpdated, quote.SellerID, shared.ActorTypeSeller, fromStatus, nil)
	s.appendRevision(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// SendQuote transmits a quote to the buyer and marks the RFQ quoted
func (s *QuoteService) SendQuote(ctx context.Context, sellers shared.IdentitySet, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !sellers.Owns(quote.SellerID) {
		return nil, shared.NewUnauthorizedError("Not authorized to send this quote")
	}

	fromStatus := quote.Status
	if err := quote.Send(time.Now()); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithLockAndEvents(ctx, quote, quote.GetDomainEvents()); err != nil {
		return nil, err
	}
	quote.ClearDomainEvents()

	s.appendQuoteEvent(ctx, quote, quoting.QuoteEventSent, quote.SellerID, shared.ActorTypeSeller, fromStatus, nil)

	if rfq, err := s.rfqRepo.FindByID(ctx, quote.RFQID); err == nil {
		rfqFrom := rfq.Status
		if err := rfq.MarkQuoted(); err == nil {
			if err := s.rfqRepo.SaveWithLock(ctx, rfq); err != nil {
				s.logger.Warn("failed to mark RFQ quoted",
					zap.String("rfq_id", rfq.ID.String()),
					zap.Error(err))
			} else {
				s.appendRFQEvent(ctx, rfq, quoting.RFQEventQuoted, quote.SellerID, shared.ActorTypeSeller, rfqFrom, nil)
			}
		}
	}

	response := ToQuoteResponse(quote)
	return &response, nil
}

// RejectQuote declines a quote on the buyer's behalf. Rejection is terminal
// for both the quote and its RFQ.
func (s *QuoteService) RejectQuote(ctx context.Context, buyers shared.IdentitySet, quoteID uuid.UUID, req RejectQuoteRequest) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !buyers.Owns(quote.BuyerID) {
		return nil, shared.NewUnauthorizedError("Not authorized to reject this quote")
	}

	fromStatus := quote.Status
	if err := quote.Reject(req.Reason, time.Now()); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithLockAndEvents(ctx, quote, quote.GetDomainEvents()); err != nil {
		return nil, err
	}
	quote.ClearDomainEvents()

	metadata := valueobject.Metadata{}
	if req.Reason != "" {
		metadata["reason"] = req.Reason
	}
	s.appendQuoteEvent(ctx, quote, quoting.QuoteEventRejected, quote.BuyerID, shared.ActorTypeBuyer, fromStatus, metadata)

	if rfq, err := s.rfqRepo.FindByID(ctx, quote.RFQID); err == nil {
		rfqFrom := rfq.Status
		if err := rfq.Reject(); err == nil {
			if err := s.rfqRepo.SaveWithLock(ctx, rfq); err != nil {
				s.logger.Warn("failed to reject RFQ",
					zap.String("rfq_id", rfq.ID.String()),
					zap.Error(err))
			} else {
				s.appendRFQEvent(ctx, rfq, quoting.RFQEventRejected, quote.BuyerID, shared.ActorTypeBuyer, rfqFrom, metadata)
			}
		}
	}

	response := ToQuoteResponse(quote)
	return &response, nil
}

// ExpireQuotes sweeps live quotes whose validity window has passed. The
// sweep is idempotent: quotes already expired are skipped by the query and
// a concurrent sweep loses the optimistic lock instead of double-expiring.
func (s *QuoteService) ExpireQuotes(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	now := time.Now()
	quotes, err := s.quoteRepo.FindExpired(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, quote := range quotes {
		fromStatus := quote.Status
		if err := quote.Expire(now); err != nil {
			continue
		}
		if err := s.quoteRepo.SaveWithLockAndEvents(ctx, quote, quote.GetDomainEvents()); err != nil {
			s.logger.Warn("failed to expire quote",
				zap.String("quote_number", quote.QuoteNumber),
				zap.Error(err))
			continue
		}
		quote.ClearDomainEvents()
		s.appendQuoteEvent(ctx, quote, quoting.QuoteEventExpired, shared.SystemActor, shared.ActorTypeSystem, fromStatus, nil)
		expired++
	}

	if expired > 0 {
		s.logger.Info("expired quotes", zap.Int("count", expired))
	}
	return expired, nil
}

// GetQuote retrieves a quote visible to the caller
func (s *QuoteService) GetQuote(ctx context.Context, identity shared.IdentitySet, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.findVisible(ctx, identity, quoteID)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}

// GetQuoteHistory returns the revision snapshots and activity log of a quote
func (s *QuoteService) GetQuoteHistory(ctx context.Context, identity shared.IdentitySet, quoteID uuid.UUID) (*QuoteHistoryResponse, error) {
	quote, err := s.findVisible(ctx, identity, quoteID)
	if err != nil {
		return nil, err
	}

	revisions, err := s.revisionRepo.FindByQuote(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	events, err := s.quoteEvents.FindByQuote(ctx, quote.ID)
	if err != nil {
		return nil, err
	}

	history := &QuoteHistoryResponse{
		QuoteID:   quote.ID,
		Revisions: make([]QuoteRevisionResponse, 0, len(revisions)),
		Events:    make([]QuoteEventResponse, 0, len(events)),
	}
	for _, rev := range revisions {
		history.Revisions = append(history.Revisions, QuoteRevisionResponse{
			Version:       rev.Revision,
			UnitPrice:     rev.UnitPrice,
			Quantity:      rev.Quantity,
			Discount:      rev.Discount,
			TotalPrice:    rev.TotalPrice,
			Currency:      rev.Currency,
			DeliveryTerms: rev.DeliveryTerms,
			DeliveryDays:  rev.DeliveryDays,
			ValidUntil:    rev.ValidUntil,
			IsLatest:      rev.IsLatest,
			CreatedAt:     rev.CreatedAt,
		})
	}
	for _, event := range events {
		history.Events = append(history.Events, QuoteEventResponse{
			EventType:  event.EventType,
			Actor:      event.Actor,
			ActorType:  event.ActorType,
			FromStatus: event.FromStatus,
			ToStatus:   event.ToStatus,
			Version:    event.Revision,
			CreatedAt:  event.CreatedAt,
		})
	}
	return history, nil
}

// ListQuotesForRFQ lists the quotes submitted against one RFQ. The buyer
// sees every quote that has been sent; a seller sees only their own,
// drafts included.
func (s *QuoteService) ListQuotesForRFQ(ctx context.Context, identity shared.IdentitySet, rfqID uuid.UUID) ([]QuoteResponse, error) {
	rfq, err := s.rfqRepo.FindByID(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if !identity.Owns(rfq.BuyerID) && !rfq.AllowsSeller(identity) {
		return nil, shared.NewUnauthorizedError("Not authorized to view quotes for this RFQ")
	}

	quotes, err := s.quoteRepo.FindByRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}

	responses := make([]QuoteResponse, 0, len(quotes))
	for _, quote := range quotes {
		switch {
		case identity.Owns(quote.SellerID):
		case identity.Owns(quote.BuyerID) && quote.Status != quoting.QuoteStatusDraft:
		default:
			continue
		}
		responses = append(responses, ToQuoteResponse(quote))
	}
	return responses, nil
}

// ListQuotesForSeller lists quotes owned by any of the caller's seller aliases
func (s *QuoteService) ListQuotesForSeller(ctx context.Context, sellers shared.IdentitySet, filter shared.Filter) (*shared.Paginated[QuoteResponse], error) {
	page, err := s.quoteRepo.FindBySellers(ctx, identityList(sellers), filter)
	if err != nil {
		return nil, err
	}
	return mapPage(page, func(q quoting.Quote) QuoteResponse { return ToQuoteResponse(&q) }), nil
}

// ListQuotesForBuyer lists quotes addressed to the buyer. Drafts are seller
// working documents and are filtered out by the repository.
func (s *QuoteService) ListQuotesForBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[QuoteResponse], error) {
	page, err := s.quoteRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, err
	}
	return mapPage(page, func(q quoting.Quote) QuoteResponse { return ToQuoteResponse(&q) }), nil
}

func (s *QuoteService) findVisible(ctx context.Context, identity shared.IdentitySet, quoteID uuid.UUID) (*quoting.Quote, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if identity.Owns(quote.SellerID) {
		return quote, nil
	}
	if identity.Owns(quote.BuyerID) {
		if quote.Status == quoting.QuoteStatusDraft {
			return nil, shared.NewNotFoundError("Quote not found")
		}
		return quote, nil
	}
	return nil, shared.NewUnauthorizedError("Not authorized to view this quote")
}

// resolveSeller picks the identity to record as the quote's seller: the
// RFQ's bound seller when there is one, otherwise the caller's primary alias.
func (s *QuoteService) resolveSeller(rfq *quoting.RFQ, sellers shared.IdentitySet) shared.PartyID {
	if rfq.SellerID != nil {
		return *rfq.SellerID
	}
	return sellers.Primary()
}

// appendQuoteEvent writes an activity log row. Log failures are logged and
// swallowed so a missing trail row never rolls back a committed transition.
func (s *QuoteService) appendQuoteEvent(ctx context.Context, quote *quoting.Quote, eventType quoting.QuoteEventType, actor shared.PartyID, actorType shared.ActorType, fromStatus quoting.QuoteStatus, metadata valueobject.Metadata) {
	event := quoting.NewQuoteEvent(quote, eventType, actor, actorType, fromStatus, metadata)
	if err := s.quoteEvents.Append(ctx, event); err != nil {
		s.logger.Error("failed to append quote event",
			zap.String("quote_number", quote.QuoteNumber),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

func (s *QuoteService) appendRFQEvent(ctx context.Context, rfq *quoting.RFQ, eventType quoting.RFQEventType, actor shared.PartyID, actorType shared.ActorType, fromStatus quoting.RFQStatus, metadata valueobject.Metadata) {
	event := quoting.NewRFQEvent(rfq, eventType, actor, actorType, fromStatus, metadata)
	if err := s.rfqEvents.Append(ctx, event); err != nil {
		s.logger.Error("failed to append RFQ event",
			zap.String("rfq_number", rfq.RFQNumber),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

func (s *QuoteService) appendRevision(ctx context.Context, quote *quoting.Quote) {
	if err := s.revisionRepo.Append(ctx, quoting.NewQuoteRevision(quote)); err != nil {
		s.logger.Error("failed to append quote revision",
			zap.String("quote_number", quote.QuoteNumber),
			zap.Int("revision", quote.Revision),
			zap.Error(err))
	}
}

func identityList(identity shared.IdentitySet) []shared.PartyID {
	ids := make([]shared.PartyID, 0, len(identity))
	for id := range identity {
		ids = append(ids, id)
	}
	return ids
}

func mapPage[T any, R any](page *shared.Paginated[T], convert func(T) R) *shared.Paginated[R] {
	items := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out
}
