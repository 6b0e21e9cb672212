package billing

import (
	"context"
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines the invoice persistence interface
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Invoice, error)
	ExistsByOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	FindBySellers(ctx context.Context, sellers []shared.PartyID, filter shared.Filter) (*shared.Paginated[Invoice], error)
	FindByBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[Invoice], error)
	// FindIssuedDueBefore returns issued invoices whose due date passed
	// before the given time
	FindIssuedDueBefore(ctx context.Context, now time.Time, limit int) ([]*Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	// SaveWithLockAndEvents persists the invoice under optimistic lock and
	// writes the given domain events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, invoice *Invoice, events []shared.DomainEvent) error
	// SaveWithEvents persists a new invoice and writes the given domain
	// events to the outbox in the same transaction
	SaveWithEvents(ctx context.Context, invoice *Invoice, events []shared.DomainEvent) error
}

// InvoiceEventRepository stores the append-only invoice activity log
type InvoiceEventRepository interface {
	Append(ctx context.Context, event *InvoiceEvent) error
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*InvoiceEvent, error)
}

// PaymentRepository reads and reassociates treasury payment records
type PaymentRepository interface {
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)
	// SumConfirmedByInvoice totals the confirmed payments linked to the invoice
	SumConfirmedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	// AssignToInvoice links payments recorded against the order before the
	// invoice existed, returning how many rows were updated
	AssignToInvoice(ctx context.Context, orderID, invoiceID uuid.UUID) (int64, error)
	Save(ctx context.Context, payment *Payment) error
}
