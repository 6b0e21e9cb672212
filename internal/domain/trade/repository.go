package trade

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the order persistence interface
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByQuote(ctx context.Context, quoteID uuid.UUID) (*Order, error)
	// ExistsByQuote reports whether any order was already created from the
	// quote, regardless of its status
	ExistsByQuote(ctx context.Context, quoteID uuid.UUID) (bool, error)
	FindByBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[Order], error)
	FindBySellers(ctx context.Context, sellers []shared.PartyID, filter shared.Filter) (*shared.Paginated[Order], error)
	CountByStatusForSellers(ctx context.Context, sellers []shared.PartyID) (map[OrderStatus]int64, error)
	Save(ctx context.Context, order *Order) error
	SaveWithLock(ctx context.Context, order *Order) error
	// SaveWithLockAndEvents persists the order under optimistic lock and
	// writes the given domain events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, order *Order, events []shared.DomainEvent) error
}

// OrderAuditRepository stores the append-only order audit trail
type OrderAuditRepository interface {
	Append(ctx context.Context, audit *OrderAudit) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderAudit, error)
}
