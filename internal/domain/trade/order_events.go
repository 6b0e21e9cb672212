package trade

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the trade domain
const (
	EventTypeOrderCreated   = "trade.order.created"
	EventTypeOrderConfirmed = "trade.order.confirmed"
	EventTypeOrderShipped   = "trade.order.shipped"
	EventTypeOrderDelivered = "trade.order.delivered"
	EventTypeOrderClosed    = "trade.order.closed"
	EventTypeOrderCancelled = "trade.order.cancelled"
)

// OrderCreatedEvent is emitted when a quote acceptance creates an order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	QuoteID       uuid.UUID       `json:"quote_id"`
	RFQID         uuid.UUID       `json:"rfq_id"`
	BuyerID       shared.PartyID  `json:"buyer_id"`
	SellerID      shared.PartyID  `json:"seller_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

// NewOrderCreatedEvent creates a new order created event
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, "Order", order.ID),
		OrderNumber:     order.OrderNumber,
		QuoteID:         order.QuoteID,
		RFQID:           order.RFQID,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		TotalAmount:     order.TotalAmount,
		PaymentMethod:   order.PaymentMethod,
	}
}

// OrderConfirmedEvent is emitted when the seller confirms an order. Credit
// orders trigger invoice generation off this event.
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string                `json:"order_number"`
	BuyerID       shared.PartyID        `json:"buyer_id"`
	SellerID      shared.PartyID        `json:"seller_id"`
	PaymentMethod PaymentMethod         `json:"payment_method"`
	Items         valueobject.LineItems `json:"items"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Currency      valueobject.Currency  `json:"currency"`
}

// NewOrderConfirmedEvent creates a new order confirmed event
func NewOrderConfirmedEvent(order *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, "Order", order.ID),
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		PaymentMethod:   order.PaymentMethod,
		Items:           order.Items,
		TotalAmount:     order.TotalAmount,
		Currency:        order.Currency,
	}
}

// OrderShippedEvent is emitted when the shipment leaves the seller
type OrderShippedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string         `json:"order_number"`
	BuyerID        shared.PartyID `json:"buyer_id"`
	Carrier        string         `json:"carrier"`
	TrackingNumber string         `json:"tracking_number,omitempty"`
}

// NewOrderShippedEvent creates a new order shipped event
func NewOrderShippedEvent(order *Order) *OrderShippedEvent {
	return &OrderShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipped, "Order", order.ID),
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		Carrier:         order.Carrier,
		TrackingNumber:  order.TrackingNumber,
	}
}

// OrderDeliveredEvent is emitted on delivery confirmation. Non-credit orders
// trigger invoice generation off this event.
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string                `json:"order_number"`
	BuyerID       shared.PartyID        `json:"buyer_id"`
	SellerID      shared.PartyID        `json:"seller_id"`
	PaymentMethod PaymentMethod         `json:"payment_method"`
	Items         valueobject.LineItems `json:"items"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Currency      valueobject.Currency  `json:"currency"`
	DeliveredAt   time.Time             `json:"delivered_at"`
}

// NewOrderDeliveredEvent creates a new order delivered event
func NewOrderDeliveredEvent(order *Order) *OrderDeliveredEvent {
	event := &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, "Order", order.ID),
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		PaymentMethod:   order.PaymentMethod,
		Items:           order.Items,
		TotalAmount:     order.TotalAmount,
		Currency:        order.Currency,
	}
	if order.DeliveredAt != nil {
		event.DeliveredAt = *order.DeliveredAt
	}
	return event
}

// OrderClosedEvent carries the SLA outcome for the seller performance record
type OrderClosedEvent struct {
	shared.BaseDomainEvent
	OrderNumber     string         `json:"order_number"`
	SellerID        shared.PartyID `json:"seller_id"`
	ConfirmedOnTime bool           `json:"confirmed_on_time"`
	ShippedOnTime   bool           `json:"shipped_on_time"`
	DaysToConfirm   int            `json:"days_to_confirm"`
	DaysToShip      int            `json:"days_to_ship"`
	DaysToDeliver   int            `json:"days_to_deliver"`
}

// NewOrderClosedEvent creates a new order closed event
func NewOrderClosedEvent(order *Order) *OrderClosedEvent {
	return &OrderClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderClosed, "Order", order.ID),
		OrderNumber:     order.OrderNumber,
		SellerID:        order.SellerID,
		ConfirmedOnTime: order.ConfirmedOnTime(),
		ShippedOnTime:   order.ShippedOnTime(),
		DaysToConfirm:   order.DaysToConfirm,
		DaysToShip:      order.DaysToShip,
		DaysToDeliver:   order.DaysToDeliver,
	}
}

// OrderCancelledEvent is emitted when an order is cancelled or rejected
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string         `json:"order_number"`
	BuyerID     shared.PartyID `json:"buyer_id"`
	SellerID    shared.PartyID `json:"seller_id"`
	Reason      string         `json:"reason,omitempty"`
}

// NewOrderCancelledEvent creates a new order cancelled event
func NewOrderCancelledEvent(order *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, "Order", order.ID),
		OrderNumber:     order.OrderNumber,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		Reason:          order.CancelReason,
	}
}
