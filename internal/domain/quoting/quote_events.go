package quoting

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the quoting domain
const (
	EventTypeQuoteCreated  = "quoting.quote.created"
	EventTypeQuoteSent     = "quoting.quote.sent"
	EventTypeQuoteRevised  = "quoting.quote.revised"
	EventTypeQuoteAccepted = "quoting.quote.accepted"
	EventTypeQuoteRejected = "quoting.quote.rejected"
	EventTypeQuoteExpired  = "quoting.quote.expired"
)

// QuoteCreatedEvent is emitted when a seller drafts a quote against an RFQ
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string          `json:"quote_number"`
	RFQID       uuid.UUID       `json:"rfq_id"`
	SellerID    shared.PartyID  `json:"seller_id"`
	BuyerID     shared.PartyID  `json:"buyer_id"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// NewQuoteCreatedEvent creates a new quote created event
func NewQuoteCreatedEvent(quote *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteCreated, "Quote", quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		RFQID:           quote.RFQID,
		SellerID:        quote.SellerID,
		BuyerID:         quote.BuyerID,
		TotalPrice:      quote.TotalPrice,
	}
}

// QuoteSentEvent is emitted when a quote is transmitted to the buyer
type QuoteSentEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string          `json:"quote_number"`
	RFQID       uuid.UUID       `json:"rfq_id"`
	SellerID    shared.PartyID  `json:"seller_id"`
	BuyerID     shared.PartyID  `json:"buyer_id"`
	Revision    int             `json:"revision"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ValidUntil  time.Time       `json:"valid_until"`
}

// NewQuoteSentEvent creates a new quote sent event
func NewQuoteSentEvent(quote *Quote) *QuoteSentEvent {
	return &QuoteSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteSent, "Quote", quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		RFQID:           quote.RFQID,
		SellerID:        quote.SellerID,
		BuyerID:         quote.BuyerID,
		Revision:        quote.Revision,
		TotalPrice:      quote.TotalPrice,
		ValidUntil:      quote.ValidUntil,
	}
}

// QuoteRevisedEvent is emitted when a sent quote is edited by the seller
type QuoteRevisedEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string          `json:"quote_number"`
	BuyerID     shared.PartyID  `json:"buyer_id"`
	Revision    int             `json:"revision"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// NewQuoteRevisedEvent creates a new quote revised event
func NewQuoteRevisedEvent(quote *Quote) *QuoteRevisedEvent {
	return &QuoteRevisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteRevised, "Quote", quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		BuyerID:         quote.BuyerID,
		Revision:        quote.Revision,
		TotalPrice:      quote.TotalPrice,
	}
}

// QuoteAcceptedEvent is emitted when the buyer accepts a quote
type QuoteAcceptedEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string          `json:"quote_number"`
	RFQID       uuid.UUID       `json:"rfq_id"`
	SellerID    shared.PartyID  `json:"seller_id"`
	BuyerID     shared.PartyID  `json:"buyer_id"`
	OrderID     uuid.UUID       `json:"order_id"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// NewQuoteAcceptedEvent creates a new quote accepted event
func NewQuoteAcceptedEvent(quote *Quote) *QuoteAcceptedEvent {
	event := &QuoteAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteAccepted, "Quote", quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		RFQID:           quote.RFQID,
		SellerID:        quote.SellerID,
		BuyerID:         quote.BuyerID,
		TotalPrice:      quote.TotalPrice,
	}
	if quote.OrderID != nil {
		event.OrderID = *quote.OrderID
	}
	return event
}

// QuoteRejectedEvent is emitted when the buyer rejects a quote
type QuoteRejectedEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string         `json:"quote_number"`
	SellerID    shared.PartyID `json:"seller_id"`
	BuyerID     shared.PartyID `json:"buyer_id"`
	Reason      string         `json:"reason,omitempty"`
}

// NewQuoteRejectedEvent creates a new quote rejected event
func NewQuoteRejectedEvent(quote *Quote) *QuoteRejectedEvent {
	return &QuoteRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteRejected, "Quote", quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		SellerID:        quote.SellerID,
		BuyerID:         quote.BuyerID,
		Reason:          quote.RejectionReason,
	}
}

// QuoteExpiredEvent is emitted when a quote passes its validity window
type QuoteExpiredEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string         `json:"quote_number"`
	SellerID    shared.PartyID `json:"seller_id"`
	BuyerID     shared.PartyID `json:"buyer_id"`
	ValidUntil  time.Time      `json:"valid_until"`
}

// NewQuoteExpiredEvent creates a new quote expired event
func NewQuoteExpiredEvent(quote *Quote) *QuoteExpiredEvent {
	return &QuoteExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteExpired, "Quote", quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		SellerID:        quote.SellerID,
		BuyerID:         quote.BuyerID,
		ValidUntil:      quote.ValidUntil,
	}
}
