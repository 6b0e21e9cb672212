package quoting

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// QuoteEventType classifies rows in the quote activity log
type QuoteEventType string

const (
	QuoteEventCreated  QuoteEventType = "QUOTE_CREATED"
	QuoteEventUpdated  QuoteEventType = "QUOTE_UPDATED"
	QuoteEventSent     QuoteEventType = "QUOTE_SENT"
	QuoteEventAccepted QuoteEventType = "QUOTE_ACCEPTED"
	QuoteEventRejected QuoteEventType = "QUOTE_REJECTED"
	QuoteEventExpired  QuoteEventType = "QUOTE_EXPIRED"
)

// QuoteEvent is an append-only activity log row for a quote. Rows are written
// once and never updated or deleted.
type QuoteEvent struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey"`
	QuoteID    uuid.UUID            `gorm:"type:uuid;index"`
	EventType  QuoteEventType       `gorm:"size:32"`
	Actor      shared.PartyID       `gorm:"size:64"`
	ActorType  shared.ActorType     `gorm:"size:16"`
	FromStatus QuoteStatus          `gorm:"size:32"`
	ToStatus   QuoteStatus          `gorm:"size:32"`
	Revision   int
	Metadata   valueobject.Metadata `gorm:"type:jsonb"`
	CreatedAt  time.Time            `gorm:"index"`
}

// NewQuoteEvent captures the quote's current state as a log row
func NewQuoteEvent(quote *Quote, eventType QuoteEventType, actor shared.PartyID, actorType shared.ActorType, fromStatus QuoteStatus, metadata valueobject.Metadata) *QuoteEvent {
	return &QuoteEvent{
		ID:         uuid.New(),
		QuoteID:    quote.ID,
		EventType:  eventType,
		Actor:      actor,
		ActorType:  actorType,
		FromStatus: fromStatus,
		ToStatus:   quote.Status,
		Revision:   quote.Revision,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
}

// RFQEventType classifies rows in the RFQ activity log
type RFQEventType string

const (
	RFQEventCreated  RFQEventType = "RFQ_CREATED"
	RFQEventQuoted   RFQEventType = "RFQ_QUOTED"
	RFQEventAccepted RFQEventType = "RFQ_ACCEPTED"
	RFQEventRejected RFQEventType = "RFQ_REJECTED"
)

// RFQEvent is an append-only activity log row for an RFQ
type RFQEvent struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey"`
	RFQID      uuid.UUID            `gorm:"type:uuid;index"`
	EventType  RFQEventType         `gorm:"size:32"`
	Actor      shared.PartyID       `gorm:"size:64"`
	ActorType  shared.ActorType     `gorm:"size:16"`
	FromStatus RFQStatus            `gorm:"size:32"`
	ToStatus   RFQStatus            `gorm:"size:32"`
	Metadata   valueobject.Metadata `gorm:"type:jsonb"`
	CreatedAt  time.Time            `gorm:"index"`
}

// NewRFQEvent captures the RFQ's current state as a log row
func NewRFQEvent(rfq *RFQ, eventType RFQEventType, actor shared.PartyID, actorType shared.ActorType, fromStatus RFQStatus, metadata valueobject.Metadata) *RFQEvent {
	return &RFQEvent{
		ID:         uuid.New(),
		RFQID:      rfq.ID,
		EventType:  eventType,
		Actor:      actor,
		ActorType:  actorType,
		FromStatus: fromStatus,
		ToStatus:   rfq.Status,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
}
