package billing

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceEventType classifies rows in the invoice activity log
type InvoiceEventType string

const (
	InvoiceEventCreated   InvoiceEventType = "INVOICE_CREATED"
	InvoiceEventIssued    InvoiceEventType = "INVOICE_ISSUED"
	InvoiceEventPaid      InvoiceEventType = "INVOICE_PAID"
	InvoiceEventOverdue   InvoiceEventType = "INVOICE_OVERDUE"
	InvoiceEventCancelled InvoiceEventType = "INVOICE_CANCELLED"
)

// InvoiceEvent is an append-only activity log row for an invoice
type InvoiceEvent struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey"`
	InvoiceID  uuid.UUID            `gorm:"type:uuid;index"`
	EventType  InvoiceEventType     `gorm:"size:32"`
	Actor      shared.PartyID       `gorm:"size:64"`
	ActorType  shared.ActorType     `gorm:"size:16"`
	FromStatus InvoiceStatus        `gorm:"size:32"`
	ToStatus   InvoiceStatus        `gorm:"size:32"`
	Metadata   valueobject.Metadata `gorm:"type:jsonb"`
	CreatedAt  time.Time            `gorm:"index"`
}

// NewInvoiceEvent captures the invoice's current state as a log row
func NewInvoiceEvent(invoice *Invoice, eventType InvoiceEventType, actor shared.PartyID, actorType shared.ActorType, fromStatus InvoiceStatus, metadata valueobject.Metadata) *InvoiceEvent {
	return &InvoiceEvent{
		ID:         uuid.New(),
		InvoiceID:  invoice.ID,
		EventType:  eventType,
		Actor:      actor,
		ActorType:  actorType,
		FromStatus: fromStatus,
		ToStatus:   invoice.Status,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
}
