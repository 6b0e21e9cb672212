package quoting

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== RFQ DTOs ====================

// CreateRFQRequest represents a buyer's request for pricing
type CreateRFQRequest struct {
	SellerID         *shared.PartyID `json:"seller_id"` // omit for an open marketplace RFQ
	ItemName         string          `json:"item_name" binding:"required,min=1,max=200"`
	SKU              string          `json:"sku" binding:"max=50"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	DeliveryLocation string          `json:"delivery_location" binding:"max=500"`
}

// RFQResponse represents an RFQ in API responses
type RFQResponse struct {
	ID               uuid.UUID          `json:"id"`
	RFQNumber        string             `json:"rfq_number"`
	BuyerID          shared.PartyID     `json:"buyer_id"`
	SellerID         *shared.PartyID    `json:"seller_id,omitempty"`
	ItemName         string             `json:"item_name"`
	SKU              string             `json:"sku,omitempty"`
	Quantity         decimal.Decimal    `json:"quantity"`
	DeliveryLocation string             `json:"delivery_location,omitempty"`
	Status           quoting.RFQStatus  `json:"status"`
	AcceptedQuoteID  *uuid.UUID         `json:"accepted_quote_id,omitempty"`
	AcceptedOrderID  *uuid.UUID         `json:"accepted_order_id,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ToRFQResponse converts an RFQ to its response representation
func ToRFQResponse(rfq *quoting.RFQ) RFQResponse {
	return RFQResponse{
		ID:               rfq.ID,
		RFQNumber:        rfq.RFQNumber,
		BuyerID:          rfq.BuyerID,
		SellerID:         rfq.SellerID,
		ItemName:         rfq.ItemName,
		SKU:              rfq.SKU,
		Quantity:         rfq.Quantity,
		DeliveryLocation: rfq.DeliveryLocation,
		Status:           rfq.Status,
		AcceptedQuoteID:  rfq.AcceptedQuoteID,
		AcceptedOrderID:  rfq.AcceptedOrderID,
		CreatedAt:        rfq.CreatedAt,
		UpdatedAt:        rfq.UpdatedAt,
	}
}

// ==================== Quote DTOs ====================

// QuoteTermsInput carries the commercial terms of a quote draft or revision
type QuoteTermsInput struct {
	UnitPrice     decimal.Decimal  `json:"unit_price" binding:"required"`
	Quantity      decimal.Decimal  `json:"quantity" binding:"required"`
	DiscountType  string           `json:"discount_type" binding:"omitempty,oneof=FLAT PERCENT"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	Currency      string           `json:"currency" binding:"omitempty,len=3"`
	DeliveryTerms string           `json:"delivery_terms" binding:"max=200"`
	DeliveryDays  int              `json:"delivery_days" binding:"min=0"`
	ValidUntil    time.Time        `json:"valid_until" binding:"required"`
}

// ToDomain converts the input to domain quote terms
func (in QuoteTermsInput) ToDomain() (quoting.QuoteTerms, error) {
	discount := valueobject.NoDiscount()
	if in.DiscountValue != nil {
		var err error
		switch valueobject.DiscountType(in.DiscountType) {
		case valueobject.DiscountTypePercent:
			discount, err = valueobject.NewPercentDiscount(*in.DiscountValue)
		default:
			discount, err = valueobject.NewFlatDiscount(*in.DiscountValue)
		}
		if err != nil {
			return quoting.QuoteTerms{}, shared.NewValidationError(err.Error())
		}
	}

	return quoting.QuoteTerms{
		UnitPrice:     in.UnitPrice,
		Quantity:      in.Quantity,
		Discount:      discount,
		Currency:      valueobject.Currency(in.Currency),
		DeliveryTerms: in.DeliveryTerms,
		DeliveryDays:  in.DeliveryDays,
		ValidUntil:    in.ValidUntil,
	}, nil
}

// CreateQuoteRequest represents a seller drafting a quote against an RFQ
type CreateQuoteRequest struct {
	RFQID uuid.UUID       `json:"rfq_id" binding:"required"`
	Terms QuoteTermsInput `json:"terms" binding:"required"`
}

// UpdateQuoteRequest represents a seller editing a quote
type UpdateQuoteRequest struct {
	Terms QuoteTermsInput `json:"terms" binding:"required"`
}

// RejectQuoteRequest represents a buyer declining a quote
type RejectQuoteRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// QuoteResponse represents a quote in API responses
type QuoteResponse struct {
	ID              uuid.UUID             `json:"id"`
	QuoteNumber     string                `json:"quote_number"`
	RFQID           uuid.UUID             `json:"rfq_id"`
	SellerID        shared.PartyID        `json:"seller_id"`
	BuyerID         shared.PartyID        `json:"buyer_id"`
	UnitPrice       decimal.Decimal       `json:"unit_price"`
	Quantity        decimal.Decimal       `json:"quantity"`
	Discount        valueobject.Discount  `json:"discount"`
	TotalPrice      decimal.Decimal       `json:"total_price"`
	Currency        valueobject.Currency  `json:"currency"`
	DeliveryTerms   string                `json:"delivery_terms,omitempty"`
	DeliveryDays    int                   `json:"delivery_days"`
	ValidUntil      time.Time             `json:"valid_until"`
	Items           valueobject.LineItems `json:"items"`
	Version         int                   `json:"version"`
	Status          quoting.QuoteStatus   `json:"status"`
	SentAt          *time.Time            `json:"sent_at,omitempty"`
	AcceptedAt      *time.Time            `json:"accepted_at,omitempty"`
	OrderID         *uuid.UUID            `json:"order_id,omitempty"`
	RejectedAt      *time.Time            `json:"rejected_at,omitempty"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	ExpiredAt       *time.Time            `json:"expired_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ToQuoteResponse converts a quote to its response representation
func ToQuoteResponse(quote *quoting.Quote) QuoteResponse {
	return QuoteResponse{
		ID:              quote.ID,
		QuoteNumber:     quote.QuoteNumber,
		RFQID:           quote.RFQID,
		SellerID:        quote.SellerID,
		BuyerID:         quote.BuyerID,
		UnitPrice:       quote.UnitPrice,
		Quantity:        quote.Quantity,
		Discount:        quote.Discount,
		TotalPrice:      quote.TotalPrice,
		Currency:        quote.Currency,
		DeliveryTerms:   quote.DeliveryTerms,
		DeliveryDays:    quote.DeliveryDays,
		ValidUntil:      quote.ValidUntil,
		Items:           quote.Items,
		Version:         quote.Revision,
		Status:          quote.Status,
		SentAt:          quote.SentAt,
		AcceptedAt:      quote.AcceptedAt,
		OrderID:         quote.OrderID,
		RejectedAt:      quote.RejectedAt,
		RejectionReason: quote.RejectionReason,
		ExpiredAt:       quote.ExpiredAt,
		CreatedAt:       quote.CreatedAt,
		UpdatedAt:       quote.UpdatedAt,
	}
}

// QuoteRevisionResponse represents one historical revision of a quote
type QuoteRevisionResponse struct {
	Version       int                  `json:"version"`
	UnitPrice     decimal.Decimal      `json:"unit_price"`
	Quantity      decimal.Decimal      `json:"quantity"`
	Discount      valueobject.Discount `json:"discount"`
	TotalPrice    decimal.Decimal      `json:"total_price"`
	Currency      valueobject.Currency `json:"currency"`
	DeliveryTerms string               `json:"delivery_terms,omitempty"`
	DeliveryDays  int                  `json:"delivery_days"`
	ValidUntil    time.Time            `json:"valid_until"`
	IsLatest      bool                 `json:"is_latest"`
	CreatedAt     time.Time            `json:"created_at"`
}

// QuoteEventResponse represents one row of the quote activity log
type QuoteEventResponse struct {
	EventType  quoting.QuoteEventType `json:"event_type"`
	Actor      shared.PartyID         `json:"actor"`
	ActorType  shared.ActorType       `json:"actor_type"`
	FromStatus quoting.QuoteStatus    `json:"from_status"`
	ToStatus   quoting.QuoteStatus    `json:"to_status"`
	Version    int                    `json:"version"`
	CreatedAt  time.Time              `json:"created_at"`
}

// QuoteHistoryResponse bundles the revision snapshots and activity log
type QuoteHistoryResponse struct {
	QuoteID   uuid.UUID               `json:"quote_id"`
	Revisions []QuoteRevisionResponse `json:"revisions"`
	Events    []QuoteEventResponse    `json:"events"`
}

// QuoteListFilter represents filter options for quote listings
type QuoteListFilter struct {
	Status   *quoting.QuoteStatus `form:"status"`
	Page     int                  `form:"page" binding:"omitempty,min=1"`
	PageSize int                  `form:"page_size" binding:"omitempty,min=1,max=100"`
}
