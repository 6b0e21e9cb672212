package quoting

import (
	"fmt"
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusRevised  QuoteStatus = "REVISED"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusRevised,
		QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that permit no further transition
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected || s == QuoteStatusExpired
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusSent || target == QuoteStatusExpired
	case QuoteStatusSent:
		return target == QuoteStatusRevised || target == QuoteStatusAccepted ||
			target == QuoteStatusRejected || target == QuoteStatusExpired
	case QuoteStatusRevised:
		return target == QuoteStatusSent || target == QuoteStatusAccepted ||
			target == QuoteStatusRejected || target == QuoteStatusExpired
	default:
		return false
	}
}

// QuoteTerms carries the commercial terms of a quote revision
type QuoteTerms struct {
	UnitPrice     decimal.Decimal
	Quantity      decimal.Decimal
	Discount      valueobject.Discount
	Currency      valueobject.Currency
	DeliveryTerms string
	DeliveryDays  int
	ValidUntil    time.Time
	Items         valueobject.LineItems
}

func (t QuoteTerms) validate() error {
	if t.UnitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}
	if t.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Quantity must be positive")
	}
	if t.ValidUntil.IsZero() {
		return shared.NewValidationError("Quote validity date is required")
	}
	if t.DeliveryDays < 0 {
		return shared.NewValidationError("Delivery days cannot be negative")
	}
	return nil
}

// Quote is a seller's priced offer against an RFQ. Revision counts the
// business versions of the quote: every edit bumps it, and once the quote
// has been sent an edit also moves the status to REVISED so the buyer can
// see the terms changed under them.
type Quote struct {
	shared.BaseAggregateRoot
	QuoteNumber     string                `gorm:"uniqueIndex;size:50"`
	RFQID           uuid.UUID             `gorm:"type:uuid;index"`
	SellerID        shared.PartyID        `gorm:"index;size:64"`
	BuyerID         shared.PartyID        `gorm:"index;size:64"`
	UnitPrice       decimal.Decimal       `gorm:"type:decimal(20,4)"`
	Quantity        decimal.Decimal       `gorm:"type:decimal(20,4)"`
	Discount        valueobject.Discount  `gorm:"type:jsonb"`
	TotalPrice      decimal.Decimal       `gorm:"type:decimal(20,4)"`
	Currency        valueobject.Currency  `gorm:"size:8"`
	DeliveryTerms   string
	DeliveryDays    int
	ValidUntil      time.Time             `gorm:"index"`
	Items           valueobject.LineItems `gorm:"type:jsonb"`
	Revision        int                   `gorm:"not null;default:1"`
	Status          QuoteStatus           `gorm:"index;size:32"`
	SentAt          *time.Time
	AcceptedAt      *time.Time
	AcceptedBy      shared.PartyID `gorm:"size:64"`
	OrderID         *uuid.UUID     `gorm:"type:uuid"`
	RejectedAt      *time.Time
	RejectionReason string
	ExpiredAt       *time.Time
}

// NewQuote creates a draft quote for the given RFQ
func NewQuote(quoteNumber string, rfq *RFQ, sellerID shared.PartyID, terms QuoteTerms) (*Quote, error) {
	if quoteNumber == "" {
		return nil, shared.NewValidationError("Quote number cannot be empty")
	}
	if sellerID.IsZero() {
		return nil, shared.NewValidationError("Seller ID cannot be empty")
	}
	if err := terms.validate(); err != nil {
		return nil, err
	}

	quote := &Quote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		QuoteNumber:       quoteNumber,
		RFQID:             rfq.ID,
		SellerID:          sellerID,
		BuyerID:           rfq.BuyerID,
		Revision:          1,
		Status:            QuoteStatusDraft,
	}
	quote.applyTerms(terms, rfq)
	quote.AddDomainEvent(NewQuoteCreatedEvent(quote))
	return quote, nil
}

func (q *Quote) applyTerms(terms QuoteTerms, rfq *RFQ) {
	q.UnitPrice = terms.UnitPrice
	q.Quantity = terms.Quantity
	q.Discount = terms.Discount
	q.Currency = terms.Currency
	if q.Currency == "" {
		q.Currency = valueobject.DefaultCurrency
	}
	q.DeliveryTerms = terms.DeliveryTerms
	q.DeliveryDays = terms.DeliveryDays
	q.ValidUntil = terms.ValidUntil
	q.Items = terms.Items
	if len(q.Items) == 0 && rfq != nil {
		// RFQs carry a single implicit item; snapshot it so the quote and
		// everything downstream is self-contained.
		q.Items = valueobject.LineItems{
			valueobject.NewLineItem(rfq.ItemName, rfq.SKU, terms.UnitPrice, terms.Quantity),
		}
	}
	q.TotalPrice = q.Discount.Apply(q.UnitPrice.Mul(q.Quantity))
}

// IsExpired reports whether the quote's validity window has passed
func (q *Quote) IsExpired(now time.Time) bool {
	return q.ValidUntil.Before(now)
}

// Update applies new terms to the quote. While the quote is a draft the edit
// stays a draft; after the quote has been sent the edit moves it to REVISED.
// Either way Revision increments so the full history can be replayed.
func (q *Quote) Update(terms QuoteTerms) error {
	if err := terms.validate(); err != nil {
		return err
	}

	switch q.Status {
	case QuoteStatusDraft:
		q.applyTerms(terms, nil)
		q.Revision++
	case QuoteStatusSent, QuoteStatusRevised:
		q.applyTerms(terms, nil)
		q.Revision++
		q.Status = QuoteStatusRevised
		q.AddDomainEvent(NewQuoteRevisedEvent(q))
	default:
		return shared.NewConflictError(fmt.Sprintf("Cannot update quote in %s status", q.Status))
	}

	q.UpdatedAt = time.Now()
	return nil
}

// Send transmits the quote to the buyer
func (q *Quote) Send(now time.Time) error {
	if q.Status != QuoteStatusDraft && q.Status != QuoteStatusRevised {
		return shared.NewConflictError(fmt.Sprintf("Cannot send quote in %s status", q.Status))
	}
	if q.IsExpired(now) {
		return shared.NewConflictError("Cannot send expired quote")
	}

	q.Status = QuoteStatusSent
	q.SentAt = &now
	q.UpdatedAt = now
	q.AddDomainEvent(NewQuoteSentEvent(q))
	return nil
}

// Accept marks the quote accepted by the buyer and links the created order
func (q *Quote) Accept(buyerID shared.PartyID, orderID uuid.UUID, now time.Time) error {
	if q.Status == QuoteStatusAccepted {
		return shared.NewConflictError("Quote has already been accepted")
	}
	if q.Status != QuoteStatusSent && q.Status != QuoteStatusRevised {
		return shared.NewConflictError(fmt.Sprintf("Cannot accept quote in %s status", q.Status))
	}
	if q.IsExpired(now) {
		return shared.NewConflictError("Cannot accept expired quote")
	}

	q.Status = QuoteStatusAccepted
	q.AcceptedAt = &now
	q.AcceptedBy = buyerID
	q.OrderID = &orderID
	q.UpdatedAt = now
	q.AddDomainEvent(NewQuoteAcceptedEvent(q))
	return nil
}

// Reject marks the quote rejected by the buyer
func (q *Quote) Reject(reason string, now time.Time) error {
	if q.Status != QuoteStatusSent && q.Status != QuoteStatusRevised {
		return shared.NewConflictError(fmt.Sprintf("Cannot reject quote in %s status", q.Status))
	}

	q.Status = QuoteStatusRejected
	q.RejectedAt = &now
	q.RejectionReason = reason
	q.UpdatedAt = now
	q.AddDomainEvent(NewQuoteRejectedEvent(q))
	return nil
}

// Expire marks the quote expired after its validity window passed
func (q *Quote) Expire(now time.Time) error {
	if q.Status.IsTerminal() {
		return shared.NewConflictError(fmt.Sprintf("Cannot expire quote in %s status", q.Status))
	}

	q.Status = QuoteStatusExpired
	q.ExpiredAt = &now
	q.UpdatedAt = now
	q.AddDomainEvent(NewQuoteExpiredEvent(q))
	return nil
}
