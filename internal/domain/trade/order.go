package trade

import (
	"fmt"
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPendingConfirmation OrderStatus = "PENDING_CONFIRMATION"
	OrderStatusConfirmed           OrderStatus = "CONFIRMED"
	OrderStatusProcessing          OrderStatus = "PROCESSING"
	OrderStatusShipped             OrderStatus = "SHIPPED"
	OrderStatusDelivered           OrderStatus = "DELIVERED"
	OrderStatusClosed              OrderStatus = "CLOSED"
	OrderStatusCancelled           OrderStatus = "CANCELLED"
	OrderStatusFailed              OrderStatus = "FAILED"
	OrderStatusRefunded            OrderStatus = "REFUNDED"
)

// orderTransitions is the single source of truth for the fulfillment state
// machine. Every transition method checks this table before mutating.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingConfirmation: {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:           {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:          {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:             {OrderStatusDelivered},
	OrderStatusDelivered:           {OrderStatusClosed},
	OrderStatusClosed:              {},
	OrderStatusCancelled:           {},
	OrderStatusFailed:              {},
	OrderStatusRefunded:            {},
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that permit no further transition
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0 && s.IsValid()
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// PaymentMethod is how the buyer pays for the order
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCOD          PaymentMethod = "COD"
	PaymentMethodCredit       PaymentMethod = "CREDIT"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCOD, PaymentMethodCredit:
		return true
	}
	return false
}

const (
	confirmationSLA = 24 * time.Hour
	// sellers get the quoted delivery window plus two days of handling
	// slack before the shipping deadline is considered missed
	shippingSlackDays = 2
)

// OrderSource carries the frozen commercial terms an order is created from.
// Values are copied from the accepted quote, never referenced, so later
// quote or catalog changes cannot alter a placed order.
type OrderSource struct {
	QuoteID         uuid.UUID
	QuoteNumber     string
	RFQID           uuid.UUID
	BuyerID         shared.PartyID
	SellerID        shared.PartyID
	Items           valueobject.LineItems
	TotalAmount     decimal.Decimal
	Currency        valueobject.Currency
	DeliveryTerms   string
	DeliveryDays    int
	ShippingAddress string
}

// Order is the fulfillment aggregate created when a buyer accepts a quote
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber         string                `gorm:"uniqueIndex;size:50"`
	QuoteID             uuid.UUID             `gorm:"type:uuid;uniqueIndex"`
	QuoteNumber         string                `gorm:"size:50"`
	RFQID               uuid.UUID             `gorm:"type:uuid;index"`
	BuyerID             shared.PartyID        `gorm:"index;size:64"`
	SellerID            shared.PartyID        `gorm:"index;size:64"`
	Items               valueobject.LineItems `gorm:"type:jsonb"`
	TotalAmount         decimal.Decimal       `gorm:"type:decimal(20,4)"`
	Currency            valueobject.Currency  `gorm:"size:8"`
	DeliveryTerms       string
	DeliveryDays        int
	ShippingAddress     string
	PaymentMethod       PaymentMethod `gorm:"size:32"`
	Status              OrderStatus   `gorm:"index;size:32"`
	ConfirmationDeadline time.Time
	ShippingDeadline    time.Time
	ConfirmedAt         *time.Time
	DaysToConfirm       int
	ProcessingAt        *time.Time
	ShippedAt           *time.Time
	Carrier             string
	TrackingNumber      string
	DaysToShip          int
	DeliveredAt         *time.Time
	DeliveryConfirmedBy shared.PartyID `gorm:"size:64"`
	DaysToDeliver       int
	ClosedAt            *time.Time
	CancelledAt         *time.Time
	CancelReason        string
}

// NewOrder creates an order from an accepted quote's frozen terms
func NewOrder(orderNumber string, src OrderSource, paymentMethod PaymentMethod, now time.Time) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewValidationError("Order number cannot be empty")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid payment method: %s", paymentMethod))
	}
	if src.TotalAmount.IsNegative() {
		return nil, shared.NewValidationError("Order total cannot be negative")
	}

	order := &Order{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		OrderNumber:          orderNumber,
		QuoteID:              src.QuoteID,
		QuoteNumber:          src.QuoteNumber,
		RFQID:                src.RFQID,
		BuyerID:              src.BuyerID,
		SellerID:             src.SellerID,
		Items:                src.Items,
		TotalAmount:          src.TotalAmount,
		Currency:             src.Currency,
		DeliveryTerms:        src.DeliveryTerms,
		DeliveryDays:         src.DeliveryDays,
		ShippingAddress:      src.ShippingAddress,
		PaymentMethod:        paymentMethod,
		Status:               OrderStatusPendingConfirmation,
		ConfirmationDeadline: now.Add(confirmationSLA),
		ShippingDeadline:     now.AddDate(0, 0, src.DeliveryDays+shippingSlackDays),
	}
	order.AddDomainEvent(NewOrderCreatedEvent(order))
	return order, nil
}

func (o *Order) transition(target OrderStatus, action string) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewConflictError(fmt.Sprintf("Cannot %s order in %s status", action, o.Status))
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

func daysSince(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// Confirm records the seller accepting the order
func (o *Order) Confirm(now time.Time) error {
	if err := o.transition(OrderStatusConfirmed, "confirm"); err != nil {
		return err
	}
	o.ConfirmedAt = &now
	o.DaysToConfirm = daysSince(o.CreatedAt, now)
	o.AddDomainEvent(NewOrderConfirmedEvent(o))
	return nil
}

// Reject is the seller declining a pending order. It lands in CANCELLED with
// the reason recorded; there is no separate rejected state.
func (o *Order) Reject(reason string, now time.Time) error {
	if o.Status != OrderStatusPendingConfirmation {
		return shared.NewConflictError(fmt.Sprintf("Cannot reject order in %s status", o.Status))
	}
	return o.cancel(reason, now)
}

// StartProcessing moves a confirmed order into fulfillment
func (o *Order) StartProcessing(now time.Time) error {
	if err := o.transition(OrderStatusProcessing, "process"); err != nil {
		return err
	}
	o.ProcessingAt = &now
	return nil
}

// Ship records the shipment leaving the seller
func (o *Order) Ship(carrier, trackingNumber string, now time.Time) error {
	if carrier == "" {
		return shared.NewValidationError("Carrier is required to ship an order")
	}
	if err := o.transition(OrderStatusShipped, "ship"); err != nil {
		return err
	}
	o.ShippedAt = &now
	o.Carrier = carrier
	o.TrackingNumber = trackingNumber
	o.DaysToShip = daysSince(o.CreatedAt, now)
	o.AddDomainEvent(NewOrderShippedEvent(o))
	return nil
}

// MarkDelivered records receipt of the goods
func (o *Order) MarkDelivered(confirmedBy shared.PartyID, now time.Time) error {
	if err := o.transition(OrderStatusDelivered, "deliver"); err != nil {
		return err
	}
	o.DeliveredAt = &now
	o.DeliveryConfirmedBy = confirmedBy
	o.DaysToDeliver = daysSince(o.CreatedAt, now)
	o.AddDomainEvent(NewOrderDeliveredEvent(o))
	return nil
}

// Close completes the order after delivery
func (o *Order) Close(now time.Time) error {
	if err := o.transition(OrderStatusClosed, "close"); err != nil {
		return err
	}
	o.ClosedAt = &now
	o.AddDomainEvent(NewOrderClosedEvent(o))
	return nil
}

// Cancel aborts the order before shipment
func (o *Order) Cancel(reason string, now time.Time) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewConflictError(fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	return o.cancel(reason, now)
}

func (o *Order) cancel(reason string, now time.Time) error {
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return nil
}

// ConfirmedOnTime reports whether the seller confirmed within the SLA window.
// Deadlines are advisory: missing one never blocks the transition, it only
// feeds the seller's performance record.
func (o *Order) ConfirmedOnTime() bool {
	return o.ConfirmedAt != nil && !o.ConfirmedAt.After(o.ConfirmationDeadline)
}

// ShippedOnTime reports whether the shipment left within the SLA window
func (o *Order) ShippedOnTime() bool {
	return o.ShippedAt != nil && !o.ShippedAt.After(o.ShippingDeadline)
}
