package trade

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AcceptQuoteRequest represents a buyer accepting a quote. PaymentMethod is
// optional and defaults to the standard bank-transfer flow.
type AcceptQuoteRequest struct {
	QuoteID         uuid.UUID `json:"quote_id" binding:"required"`
	PaymentMethod   string    `json:"payment_method" binding:"omitempty,oneof=BANK_TRANSFER COD CREDIT"`
	ShippingAddress string    `json:"shipping_address" binding:"required,min=1,max=500"`
}

// ShipOrderRequest represents the seller dispatching an order
type ShipOrderRequest struct {
	Carrier        string `json:"carrier" binding:"required,min=1,max=100"`
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
}

// CancelOrderRequest represents cancelling or rejecting an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                   uuid.UUID             `json:"id"`
	OrderNumber          string                `json:"order_number"`
	QuoteID              uuid.UUID             `json:"quote_id"`
	QuoteNumber          string                `json:"quote_number"`
	RFQID                uuid.UUID             `json:"rfq_id"`
	BuyerID              shared.PartyID        `json:"buyer_id"`
	SellerID             shared.PartyID        `json:"seller_id"`
	Items                valueobject.LineItems `json:"items"`
	TotalAmount          decimal.Decimal       `json:"total_amount"`
	Currency             valueobject.Currency  `json:"currency"`
	DeliveryTerms        string                `json:"delivery_terms,omitempty"`
	DeliveryDays         int                   `json:"delivery_days"`
	ShippingAddress      string                `json:"shipping_address"`
	PaymentMethod        trade.PaymentMethod   `json:"payment_method"`
	Status               trade.OrderStatus     `json:"status"`
	ConfirmationDeadline time.Time             `json:"confirmation_deadline"`
	ShippingDeadline     time.Time             `json:"shipping_deadline"`
	ConfirmedAt          *time.Time            `json:"confirmed_at,omitempty"`
	ShippedAt            *time.Time            `json:"shipped_at,omitempty"`
	Carrier              string                `json:"carrier,omitempty"`
	TrackingNumber       string                `json:"tracking_number,omitempty"`
	DeliveredAt          *time.Time            `json:"delivered_at,omitempty"`
	ClosedAt             *time.Time            `json:"closed_at,omitempty"`
	CancelledAt          *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason         string                `json:"cancel_reason,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// ToOrderResponse converts an order to its response representation
func ToOrderResponse(order *trade.Order) OrderResponse {
	return OrderResponse{
		ID:                   order.ID,
		OrderNumber:          order.OrderNumber,
		QuoteID:              order.QuoteID,
		QuoteNumber:          order.QuoteNumber,
		RFQID:                order.RFQID,
		BuyerID:              order.BuyerID,
		SellerID:             order.SellerID,
		Items:                order.Items,
		TotalAmount:          order.TotalAmount,
		Currency:             order.Currency,
		DeliveryTerms:        order.DeliveryTerms,
		DeliveryDays:         order.DeliveryDays,
		ShippingAddress:      order.ShippingAddress,
		PaymentMethod:        order.PaymentMethod,
		Status:               order.Status,
		ConfirmationDeadline: order.ConfirmationDeadline,
		ShippingDeadline:     order.ShippingDeadline,
		ConfirmedAt:          order.ConfirmedAt,
		ShippedAt:            order.ShippedAt,
		Carrier:              order.Carrier,
		TrackingNumber:       order.TrackingNumber,
		DeliveredAt:          order.DeliveredAt,
		ClosedAt:             order.ClosedAt,
		CancelledAt:          order.CancelledAt,
		CancelReason:         order.CancelReason,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
}

// OrderAuditResponse represents one row of the order audit trail
type OrderAuditResponse struct {
	Action     trade.OrderAuditAction `json:"action"`
	Actor      shared.PartyID         `json:"actor"`
	ActorType  shared.ActorType       `json:"actor_type"`
	FromStatus trade.OrderStatus      `json:"from_status"`
	ToStatus   trade.OrderStatus      `json:"to_status"`
	Metadata   valueobject.Metadata   `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// OrderStatsResponse summarizes a seller's order book by status
type OrderStatsResponse struct {
	Counts map[trade.OrderStatus]int64 `json:"counts"`
	Total  int64                       `json:"total"`
}

// OrderListFilter represents filter options for order listings
type OrderListFilter struct {
	Status   *trade.OrderStatus `form:"status"`
	Page     int                `form:"page" binding:"omitempty,min=1"`
	PageSize int                `form:"page_size" binding:"omitempty,min=1,max=100"`
}
