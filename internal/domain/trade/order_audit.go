package trade

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// OrderAuditAction classifies rows in the order audit trail
type OrderAuditAction string

const (
	OrderAuditCreated    OrderAuditAction = "ORDER_CREATED"
	OrderAuditConfirmed  OrderAuditAction = "ORDER_CONFIRMED"
	OrderAuditRejected   OrderAuditAction = "ORDER_REJECTED"
	OrderAuditProcessing OrderAuditAction = "ORDER_PROCESSING"
	OrderAuditShipped    OrderAuditAction = "ORDER_SHIPPED"
	OrderAuditDelivered  OrderAuditAction = "ORDER_DELIVERED"
	OrderAuditClosed     OrderAuditAction = "ORDER_CLOSED"
	OrderAuditCancelled  OrderAuditAction = "ORDER_CANCELLED"
)

// OrderAudit is an append-only trail row recording who moved the order and
// between which states. Rows are written once and never updated or deleted.
type OrderAudit struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID            `gorm:"type:uuid;index"`
	Action     OrderAuditAction     `gorm:"size:32"`
	Actor      shared.PartyID       `gorm:"size:64"`
	ActorType  shared.ActorType     `gorm:"size:16"`
	FromStatus OrderStatus          `gorm:"size:32"`
	ToStatus   OrderStatus          `gorm:"size:32"`
	Metadata   valueobject.Metadata `gorm:"type:jsonb"`
	CreatedAt  time.Time            `gorm:"index"`
}

// NewOrderAudit captures the order's current state as a trail row
func NewOrderAudit(order *Order, action OrderAuditAction, actor shared.PartyID, actorType shared.ActorType, fromStatus OrderStatus, metadata valueobject.Metadata) *OrderAudit {
	return &OrderAudit{
		ID:         uuid.New(),
		OrderID:    order.ID,
		Action:     action,
		Actor:      actor,
		ActorType:  actorType,
		FromStatus: fromStatus,
		ToStatus:   order.Status,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
}
