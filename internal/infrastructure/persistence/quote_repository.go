package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuoteRepository implements quoting.QuoteRepository using GORM
type GormQuoteRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB, outboxSaver shared.OutboxEventSaver) *GormQuoteRepository {
	return &GormQuoteRepository{db: db, outboxSaver: outboxSaver}
}

// FindByID finds a quote by its ID
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*quoting.Quote, error) {
	var quote quoting.Quote
	if err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// FindByRFQ finds all quotes submitted against an RFQ
func (r *GormQuoteRepository) FindByRFQ(ctx context.Context, rfqID uuid.UUID) ([]*quoting.Quote, error) {
	var quotes []*quoting.Quote
	if err := r.db.WithContext(ctx).
		Where("rfq_id = ?", rfqID).
		Order("created_at ASC").
		Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// FindDraftByRFQ returns the live draft against the RFQ, whoever authored it
func (r *GormQuoteRepository) FindDraftByRFQ(ctx context.Context, rfqID uuid.UUID) (*quoting.Quote, error) {
	var quote quoting.Quote
	if err := r.db.WithContext(ctx).
		Where("rfq_id = ? AND status = ?", rfqID, quoting.QuoteStatusDraft).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// FindBySellers finds quotes authored by any of the seller identities
func (r *GormQuoteRepository) FindBySellers(ctx context.Context, sellers []shared.PartyID, filter shared.Filter) (*shared.Paginated[quoting.Quote], error) {
	query := r.db.WithContext(ctx).
		Model(&quoting.Quote{}).
		Where("seller_id IN ?", sellers)
	query = applyQuoteStatusFilter(query, filter)
	return findPaginated[quoting.Quote](query, filter, QuoteSortFields, "created_at")
}

// FindByBuyer finds quotes visible to the buyer. Drafts belong to the seller
// and never appear here.
func (r *GormQuoteRepository) FindByBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[quoting.Quote], error) {
	query := r.db.WithContext(ctx).
		Model(&quoting.Quote{}).
		Where("buyer_id = ? AND status <> ?", buyerID, quoting.QuoteStatusDraft)
	query = applyQuoteStatusFilter(query, filter)
	return findPaginated[quoting.Quote](query, filter, QuoteSortFields, "created_at")
}

// FindExpired returns live quotes whose validity window passed before now
func (r *GormQuoteRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]*quoting.Quote, error) {
	var quotes []*quoting.Quote
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND valid_until < ?", []quoting.QuoteStatus{
			quoting.QuoteStatusDraft,
			quoting.QuoteStatusSent,
			quoting.QuoteStatusRevised,
		}, now).
		Order("valid_until ASC").
		Limit(limit).
		Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// Save creates or updates a quote
func (r *GormQuoteRepository) Save(ctx context.Context, quote *quoting.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormQuoteRepository) SaveWithLock(ctx context.Context, quote *quoting.Quote) error {
	return saveWithVersionCheck(r.db.WithContext(ctx), quote)
}

// SaveWithLockAndEvents saves under optimistic lock and writes the domain
// events to the outbox in the same transaction
func (r *GormQuoteRepository) SaveWithLockAndEvents(ctx context.Context, quote *quoting.Quote, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveWithVersionCheck(tx, quote); err != nil {
			return err
		}
		return r.saveOutbox(ctx, tx, events)
	})
}

// SaveWithEvents persists a new quote and writes the domain events to the
// outbox in the same transaction
func (r *GormQuoteRepository) SaveWithEvents(ctx context.Context, quote *quoting.Quote, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(quote).Error; err != nil {
			return err
		}
		return r.saveOutbox(ctx, tx, events)
	})
}

func (r *GormQuoteRepository) saveOutbox(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver == nil || len(events) == 0 {
		return nil
	}
	if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
		return fmt.Errorf("failed to save events to outbox: %w", err)
	}
	return nil
}

func applyQuoteStatusFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if rfqID, ok := filter.Filters["rfq_id"]; ok {
		query = query.Where("rfq_id = ?", rfqID)
	}
	return query
}

var _ quoting.QuoteRepository = (*GormQuoteRepository)(nil)
