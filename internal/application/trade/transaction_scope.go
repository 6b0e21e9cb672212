package trade

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories touched
// by quote acceptance. When a function is executed within a scope, all
// repository operations share one database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying
// transaction, including the outbox writer.
type TransactionalRepositories interface {
	Quotes() quoting.QuoteRepository
	RFQs() quoting.RFQRepository
	Orders() trade.OrderRepository
	QuoteEvents() quoting.QuoteEventRepository
	RFQEvents() quoting.RFQEventRepository
	OrderAudits() trade.OrderAuditRepository
	Invoices() billing.InvoiceRepository
	// AppendOutbox stages domain events for publication once the
	// transaction commits
	AppendOutbox(ctx context.Context, events ...shared.DomainEvent) error
}

// NoOpTransactionScope runs the function against plain repositories without
// a real transaction. Useful in tests.
type NoOpTransactionScope struct {
	QuoteRepo      quoting.QuoteRepository
	RFQRepo        quoting.RFQRepository
	OrderRepo      trade.OrderRepository
	QuoteEventRepo quoting.QuoteEventRepository
	RFQEventRepo   quoting.RFQEventRepository
	AuditRepo      trade.OrderAuditRepository
	InvoiceRepo    billing.InvoiceRepository
	OutboxAppend   func(ctx context.Context, events ...shared.DomainEvent) error
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Quotes returns the quote repository
func (s *NoOpTransactionScope) Quotes() quoting.QuoteRepository { return s.QuoteRepo }

// RFQs returns the RFQ repository
func (s *NoOpTransactionScope) RFQs() quoting.RFQRepository { return s.RFQRepo }

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() trade.OrderRepository { return s.OrderRepo }

// QuoteEvents returns the quote activity log repository
func (s *NoOpTransactionScope) QuoteEvents() quoting.QuoteEventRepository { return s.QuoteEventRepo }

// RFQEvents returns the RFQ activity log repository
func (s *NoOpTransactionScope) RFQEvents() quoting.RFQEventRepository { return s.RFQEventRepo }

// OrderAudits returns the order audit trail repository
func (s *NoOpTransactionScope) OrderAudits() trade.OrderAuditRepository { return s.AuditRepo }

// Invoices returns the invoice repository
func (s *NoOpTransactionScope) Invoices() billing.InvoiceRepository { return s.InvoiceRepo }

// AppendOutbox stages domain events via the configured function
func (s *NoOpTransactionScope) AppendOutbox(ctx context.Context, events ...shared.DomainEvent) error {
	if s.OutboxAppend == nil {
		return nil
	}
	return s.OutboxAppend(ctx, events...)
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
