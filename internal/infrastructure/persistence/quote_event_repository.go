package persistence

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuoteEventRepository implements quoting.QuoteEventRepository using GORM.
// The table is append-only; rows are never updated or deleted.
type GormQuoteEventRepository struct {
	db *gorm.DB
}

// NewGormQuoteEventRepository creates a new GormQuoteEventRepository
func NewGormQuoteEventRepository(db *gorm.DB) *GormQuoteEventRepository {
	return &GormQuoteEventRepository{db: db}
}

// Append inserts an activity log entry
func (r *GormQuoteEventRepository) Append(ctx context.Context, event *quoting.QuoteEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByQuote returns the activity log of a quote, oldest first
func (r *GormQuoteEventRepository) FindByQuote(ctx context.Context, quoteID uuid.UUID) ([]*quoting.QuoteEvent, error) {
	var events []*quoting.QuoteEvent
	if err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// GormRFQEventRepository implements quoting.RFQEventRepository using GORM
type GormRFQEventRepository struct {
	db *gorm.DB
}

// NewGormRFQEventRepository creates a new GormRFQEventRepository
func NewGormRFQEventRepository(db *gorm.DB) *GormRFQEventRepository {
	return &GormRFQEventRepository{db: db}
}

// Append inserts an activity log entry
func (r *GormRFQEventRepository) Append(ctx context.Context, event *quoting.RFQEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByRFQ returns the activity log of an RFQ, oldest first
func (r *GormRFQEventRepository) FindByRFQ(ctx context.Context, rfqID uuid.UUID) ([]*quoting.RFQEvent, error) {
	var events []*quoting.RFQEvent
	if err := r.db.WithContext(ctx).
		Where("rfq_id = ?", rfqID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

var _ quoting.QuoteEventRepository = (*GormQuoteEventRepository)(nil)
var _ quoting.RFQEventRepository = (*GormRFQEventRepository)(nil)
