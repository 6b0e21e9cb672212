package persistence

import (
	"context"

	apptrade "github.com/b2bmarket/backend/internal/application/trade"
	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements apptrade.TransactionScope over a GORM
// transaction. Every repository handed to the callback is bound to the same
// transaction, including the outbox writer, so quote acceptance commits the
// quote, RFQ, order, trail rows and staged events as one unit.
type GormTransactionScope struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormTransactionScope creates a new GORM-backed transaction scope
func NewGormTransactionScope(db *gorm.DB, outboxSaver shared.OutboxEventSaver) *GormTransactionScope {
	return &GormTransactionScope{db: db, outboxSaver: outboxSaver}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepositories{tx: tx, outboxSaver: s.outboxSaver})
	})
}

type txRepositories struct {
	tx          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

func (r *txRepositories) Quotes() quoting.QuoteRepository {
	return NewGormQuoteRepository(r.tx, r.outboxSaver)
}

func (r *txRepositories) RFQs() quoting.RFQRepository {
	return NewGormRFQRepository(r.tx)
}

func (r *txRepositories) Orders() trade.OrderRepository {
	return NewGormOrderRepository(r.tx, r.outboxSaver)
}

func (r *txRepositories) QuoteEvents() quoting.QuoteEventRepository {
	return NewGormQuoteEventRepository(r.tx)
}

func (r *txRepositories) RFQEvents() quoting.RFQEventRepository {
	return NewGormRFQEventRepository(r.tx)
}

func (r *txRepositories) OrderAudits() trade.OrderAuditRepository {
	return NewGormOrderAuditRepository(r.tx)
}

func (r *txRepositories) Invoices() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx, r.outboxSaver)
}

// AppendOutbox stages domain events in the transaction's outbox
func (r *txRepositories) AppendOutbox(ctx context.Context, events ...shared.DomainEvent) error {
	if r.outboxSaver == nil || len(events) == 0 {
		return nil
	}
	return r.outboxSaver.SaveEvents(ctx, r.tx, events...)
}

var _ apptrade.TransactionScope = (*GormTransactionScope)(nil)
var _ apptrade.TransactionalRepositories = (*txRepositories)(nil)
