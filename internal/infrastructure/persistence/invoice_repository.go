package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB, outboxSaver shared.OutboxEventSaver) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db, outboxSaver: outboxSaver}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByOrder finds the invoice for an order
func (r *GormInvoiceRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// ExistsByOrder reports whether an invoice already exists for the order
func (r *GormInvoiceRepository) ExistsByOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindBySellers finds invoices billed by any of the seller identities
func (r *GormInvoiceRepository) FindBySellers(ctx context.Context, sellers []shared.PartyID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	query := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("seller_id IN ?", sellers)
	query = applyInvoiceStatusFilter(query, filter)
	return findPaginated[billing.Invoice](query, filter, InvoiceSortFields, "created_at")
}

// FindByBuyer finds invoices addressed to the buyer. Drafts are internal to
// the seller and never appear here.
func (r *GormInvoiceRepository) FindByBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	query := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("buyer_id = ? AND status <> ?", buyerID, billing.InvoiceStatusDraft)
	query = applyInvoiceStatusFilter(query, filter)
	return findPaginated[billing.Invoice](query, filter, InvoiceSortFields, "created_at")
}

// FindIssuedDueBefore returns issued invoices whose due date passed before
// the given time
func (r *GormInvoiceRepository) FindIssuedDueBefore(ctx context.Context, now time.Time, limit int) ([]*billing.Invoice, error) {
	var invoices []*billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", billing.InvoiceStatusIssued, now).
		Order("due_date ASC").
		Limit(limit).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	return saveWithVersionCheck(r.db.WithContext(ctx), invoice)
}

// SaveWithLockAndEvents saves under optimistic lock and writes the domain
// events to the outbox in the same transaction
func (r *GormInvoiceRepository) SaveWithLockAndEvents(ctx context.Context, invoice *billing.Invoice, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveWithVersionCheck(tx, invoice); err != nil {
			return err
		}
		return r.saveOutbox(ctx, tx, events)
	})
}

// SaveWithEvents persists a new invoice and writes the domain events to the
// outbox in the same transaction
func (r *GormInvoiceRepository) SaveWithEvents(ctx context.Context, invoice *billing.Invoice, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(invoice).Error; err != nil {
			return err
		}
		return r.saveOutbox(ctx, tx, events)
	})
}

func (r *GormInvoiceRepository) saveOutbox(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver == nil || len(events) == 0 {
		return nil
	}
	if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
		return fmt.Errorf("failed to save events to outbox: %w", err)
	}
	return nil
}

func applyInvoiceStatusFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
