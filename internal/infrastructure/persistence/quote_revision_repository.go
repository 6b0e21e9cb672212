package persistence

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuoteRevisionRepository implements quoting.QuoteRevisionRepository using GORM
type GormQuoteRevisionRepository struct {
	db *gorm.DB
}

// NewGormQuoteRevisionRepository creates a new GormQuoteRevisionRepository
func NewGormQuoteRevisionRepository(db *gorm.DB) *GormQuoteRevisionRepository {
	return &GormQuoteRevisionRepository{db: db}
}

// Append inserts the snapshot and clears the latest flag on prior rows
func (r *GormQuoteRevisionRepository) Append(ctx context.Context, revision *quoting.QuoteRevision) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&quoting.QuoteRevision{}).
			Where("quote_id = ? AND is_latest = ?", revision.QuoteID, true).
			Update("is_latest", false).Error; err != nil {
			return err
		}
		return tx.Create(revision).Error
	})
}

// FindByQuote returns the revision history of a quote, oldest first
func (r *GormQuoteRevisionRepository) FindByQuote(ctx context.Context, quoteID uuid.UUID) ([]*quoting.QuoteRevision, error) {
	var revisions []*quoting.QuoteRevision
	if err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("revision ASC").
		Find(&revisions).Error; err != nil {
		return nil, err
	}
	return revisions, nil
}

var _ quoting.QuoteRevisionRepository = (*GormQuoteRevisionRepository)(nil)
