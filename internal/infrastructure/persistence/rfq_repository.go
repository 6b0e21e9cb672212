package persistence

import (
	"context"
	"errors"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRFQRepository implements quoting.RFQRepository using GORM
type GormRFQRepository struct {
	db *gorm.DB
}

// NewGormRFQRepository creates a new GormRFQRepository
func NewGormRFQRepository(db *gorm.DB) *GormRFQRepository {
	return &GormRFQRepository{db: db}
}

// FindByID finds an RFQ by its ID
func (r *GormRFQRepository) FindByID(ctx context.Context, id uuid.UUID) (*quoting.RFQ, error) {
	var rfq quoting.RFQ
	if err := r.db.WithContext(ctx).First(&rfq, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rfq, nil
}

// FindByBuyer finds RFQs created by the buyer
func (r *GormRFQRepository) FindByBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[quoting.RFQ], error) {
	query := r.db.WithContext(ctx).
		Model(&quoting.RFQ{}).
		Where("buyer_id = ?", buyerID)
	query = applyRFQStatusFilter(query, filter)
	return findPaginated[quoting.RFQ](query, filter, RFQSortFields, "created_at")
}

// FindOpenForSellers finds RFQs the given seller identities may quote on:
// RFQs addressed to one of them plus RFQs open to any seller.
func (r *GormRFQRepository) FindOpenForSellers(ctx context.Context, sellers []shared.PartyID, filter shared.Filter) (*shared.Paginated[quoting.RFQ], error) {
	query := r.db.WithContext(ctx).
		Model(&quoting.RFQ{}).
		Where("seller_id IS NULL OR seller_id IN ?", sellers)
	query = applyRFQStatusFilter(query, filter)
	return findPaginated[quoting.RFQ](query, filter, RFQSortFields, "created_at")
}

// Save creates or updates an RFQ
func (r *GormRFQRepository) Save(ctx context.Context, rfq *quoting.RFQ) error {
	return r.db.WithContext(ctx).Save(rfq).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormRFQRepository) SaveWithLock(ctx context.Context, rfq *quoting.RFQ) error {
	return saveWithVersionCheck(r.db.WithContext(ctx), rfq)
}

func applyRFQStatusFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}

var _ quoting.RFQRepository = (*GormRFQRepository)(nil)
