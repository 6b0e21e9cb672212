package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB, outboxSaver shared.OutboxEventSaver) *GormOrderRepository {
	return &GormOrderRepository{db: db, outboxSaver: outboxSaver}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByQuote finds the order created from a quote
func (r *GormOrderRepository) FindByQuote(ctx context.Context, quoteID uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).First(&order, "quote_id = ?", quoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ExistsByQuote reports whether any order was already created from the quote
func (r *GormOrderRepository) ExistsByQuote(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("quote_id = ?", quoteID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByBuyer finds orders placed by the buyer
func (r *GormOrderRepository) FindByBuyer(ctx context.Context, buyerID shared.PartyID, filter shared.Filter) (*shared.Paginated[trade.Order], error) {
	query := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("buyer_id = ?", buyerID)
	query = applyOrderStatusFilter(query, filter)
	return findPaginated[trade.Order](query, filter, OrderSortFields, "created_at")
}

// FindBySellers finds orders fulfilled by any of the seller identities
func (r *GormOrderRepository) FindBySellers(ctx context.Context, sellers []shared.PartyID, filter shared.Filter) (*shared.Paginated[trade.Order], error) {
	query := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("seller_id IN ?", sellers)
	query = applyOrderStatusFilter(query, filter)
	return findPaginated[trade.Order](query, filter, OrderSortFields, "created_at")
}

// CountByStatusForSellers counts the seller's orders grouped by status
func (r *GormOrderRepository) CountByStatusForSellers(ctx context.Context, sellers []shared.PartyID) (map[trade.OrderStatus]int64, error) {
	type statusCount struct {
		Status trade.OrderStatus
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Select("status, COUNT(*) AS count").
		Where("seller_id IN ?", sellers).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[trade.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	return saveWithVersionCheck(r.db.WithContext(ctx), order)
}

// SaveWithLockAndEvents saves under optimistic lock and writes the domain
// events to the outbox in the same transaction
func (r *GormOrderRepository) SaveWithLockAndEvents(ctx context.Context, order *trade.Order, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveWithVersionCheck(tx, order); err != nil {
			return err
		}
		if r.outboxSaver == nil || len(events) == 0 {
			return nil
		}
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
		return nil
	})
}

func applyOrderStatusFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
