package quoting

import (
	"context"
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RFQRepository defines the RFQ persistence interface
type RFQRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RFQ, error)
	FindByBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[RFQ], error)
	FindOpenForSellers(ctx context.Context, sellers []shared.PartyID, filter shared.Filter) (*shared.Paginated[RFQ], error)
	Save(ctx context.Context, rfq *RFQ) error
	SaveWithLock(ctx context.Context, rfq *RFQ) error
}

// QuoteRepository defines the quote persistence interface
type QuoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	FindByRFQ(ctx context.Context, rfqID uuid.UUID) ([]*Quote, error)
	// FindDraftByRFQ returns the live draft against the RFQ, or
	// shared.ErrNotFound when there is none. At most one draft may exist
	// per RFQ at a time, regardless of seller.
	FindDraftByRFQ(ctx context.Context, rfqID uuid.UUID) (*Quote, error)
	FindBySellers(ctx context.Context, sellers []shared.PartyID, filter shared.Filter) (*shared.Paginated[Quote], error)
	FindByBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[Quote], error)
	// FindExpired returns live quotes whose validity window passed before now
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*Quote, error)
	Save(ctx context.Context, quote *Quote) error
	SaveWithLock(ctx context.Context, quote *Quote) error
	// SaveWithLockAndEvents persists the quote under optimistic lock and
	// writes the given domain events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, quote *Quote, events []shared.DomainEvent) error
	// SaveWithEvents persists a new quote and writes the given domain events
	// to the outbox in the same transaction
	SaveWithEvents(ctx context.Context, quote *Quote, events []shared.DomainEvent) error
}

// QuoteRevisionRepository stores immutable per-revision snapshots
type QuoteRevisionRepository interface {
	// Append inserts the snapshot and clears the latest flag on prior rows
	Append(ctx context.Context, revision *QuoteRevision) error
	FindByQuote(ctx context.Context, quoteID uuid.UUID) ([]*QuoteRevision, error)
}

// QuoteEventRepository stores the append-only quote activity log
type QuoteEventRepository interface {
	Append(ctx context.Context, event *QuoteEvent) error
	FindByQuote(ctx context.Context, quoteID uuid.UUID) ([]*QuoteEvent, error)
}

// RFQEventRepository stores the append-only RFQ activity log
type RFQEventRepository interface {
	Append(ctx context.Context, event *RFQEvent) error
	FindByRFQ(ctx context.Context, rfqID uuid.UUID) ([]*RFQEvent, error)
}
