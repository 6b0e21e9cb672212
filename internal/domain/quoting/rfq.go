package quoting

import (
	"fmt"
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RFQStatus represents the status of a request-for-quote
type RFQStatus string

const (
	RFQStatusPending     RFQStatus = "PENDING"
	RFQStatusUnderReview RFQStatus = "UNDER_REVIEW"
	RFQStatusQuoted      RFQStatus = "QUOTED"
	RFQStatusAccepted    RFQStatus = "ACCEPTED"
	RFQStatusRejected    RFQStatus = "REJECTED"
	RFQStatusExpired     RFQStatus = "EXPIRED"
	RFQStatusCancelled   RFQStatus = "CANCELLED"
)

// IsValid checks if the status is a valid RFQStatus
func (s RFQStatus) IsValid() bool {
	switch s {
	case RFQStatusPending, RFQStatusUnderReview, RFQStatusQuoted,
		RFQStatusAccepted, RFQStatusRejected, RFQStatusExpired, RFQStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RFQStatus
func (s RFQStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the RFQ can no longer receive quotes
func (s RFQStatus) IsTerminal() bool {
	return s == RFQStatusAccepted || s == RFQStatusRejected || s == RFQStatusCancelled
}

// RFQ is a buyer's request for pricing. An RFQ with no bound seller is an open
// marketplace request that any seller may quote against.
type RFQ struct {
	shared.BaseAggregateRoot
	RFQNumber        string          `gorm:"uniqueIndex;size:50"`
	BuyerID          shared.PartyID  `gorm:"index;size:64"`
	SellerID         *shared.PartyID `gorm:"index;size:64"` // nil = open marketplace RFQ
	CatalogItemID    *uuid.UUID      `gorm:"type:uuid"`
	ItemName         string
	SKU              string
	Quantity         decimal.Decimal `gorm:"type:decimal(20,4)"`
	DeliveryLocation string
	Status           RFQStatus `gorm:"index;size:32"`
	AcceptedQuoteID  *uuid.UUID `gorm:"type:uuid"`
	AcceptedOrderID  *uuid.UUID `gorm:"type:uuid"`
}

// NewRFQ creates a new request-for-quote
func NewRFQ(rfqNumber string, buyerID shared.PartyID, sellerID *shared.PartyID, itemName string, quantity decimal.Decimal, deliveryLocation string) (*RFQ, error) {
	if rfqNumber == "" {
		return nil, shared.NewValidationError("RFQ number cannot be empty")
	}
	if buyerID.IsZero() {
		return nil, shared.NewValidationError("Buyer ID cannot be empty")
	}
	if itemName == "" {
		return nil, shared.NewValidationError("Item name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Quantity must be positive")
	}

	return &RFQ{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RFQNumber:         rfqNumber,
		BuyerID:           buyerID,
		SellerID:          sellerID,
		ItemName:          itemName,
		Quantity:          quantity,
		DeliveryLocation:  deliveryLocation,
		Status:            RFQStatusPending,
	}, nil
}

// IsOpen returns true if the RFQ is not bound to a specific seller
func (r *RFQ) IsOpen() bool {
	return r.SellerID == nil
}

// AllowsSeller reports whether the given seller may quote this RFQ.
// Open RFQs accept any seller; bound RFQs accept only alias holders of
// the bound seller.
func (r *RFQ) AllowsSeller(sellers shared.IdentitySet) bool {
	if r.IsOpen() {
		return true
	}
	return sellers.Owns(*r.SellerID)
}

// CanReceiveQuote returns true while quote creation against the RFQ is allowed
func (r *RFQ) CanReceiveQuote() bool {
	return !r.Status.IsTerminal()
}

// MarkQuoted records that a quote has been sent against this RFQ
func (r *RFQ) MarkQuoted() error {
	if r.Status.IsTerminal() {
		return shared.NewConflictError(fmt.Sprintf("Cannot quote RFQ in %s status", r.Status))
	}
	r.Status = RFQStatusQuoted
	r.UpdatedAt = time.Now()
	return nil
}

// Accept freezes the RFQ after a quote was accepted and an order created
func (r *RFQ) Accept(quoteID, orderID uuid.UUID) error {
	if r.Status != RFQStatusQuoted {
		return shared.NewConflictError(fmt.Sprintf("Cannot accept RFQ in %s status", r.Status))
	}
	r.Status = RFQStatusAccepted
	r.AcceptedQuoteID = &quoteID
	r.AcceptedOrderID = &orderID
	r.UpdatedAt = time.Now()
	return nil
}

// Reject marks the RFQ rejected. Rejection is terminal: the buyer must raise
// a new RFQ to request another quote.
func (r *RFQ) Reject() error {
	if r.Status.IsTerminal() {
		return shared.NewConflictError(fmt.Sprintf("Cannot reject RFQ in %s status", r.Status))
	}
	r.Status = RFQStatusRejected
	r.UpdatedAt = time.Now()
	return nil
}
