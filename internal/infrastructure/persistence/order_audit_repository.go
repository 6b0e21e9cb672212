package persistence

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderAuditRepository implements trade.OrderAuditRepository using GORM.
// The audit trail is append-only.
type GormOrderAuditRepository struct {
	db *gorm.DB
}

// NewGormOrderAuditRepository creates a new GormOrderAuditRepository
func NewGormOrderAuditRepository(db *gorm.DB) *GormOrderAuditRepository {
	return &GormOrderAuditRepository{db: db}
}

// Append inserts an audit trail entry
func (r *GormOrderAuditRepository) Append(ctx context.Context, audit *trade.OrderAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

// FindByOrder returns the audit trail of an order, oldest first
func (r *GormOrderAuditRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*trade.OrderAudit, error) {
	var entries []*trade.OrderAudit
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var _ trade.OrderAuditRepository = (*GormOrderAuditRepository)(nil)
