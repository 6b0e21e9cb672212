package persistence

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceEventRepository implements billing.InvoiceEventRepository using
// GORM. The table is append-only.
type GormInvoiceEventRepository struct {
	db *gorm.DB
}

// NewGormInvoiceEventRepository creates a new GormInvoiceEventRepository
func NewGormInvoiceEventRepository(db *gorm.DB) *GormInvoiceEventRepository {
	return &GormInvoiceEventRepository{db: db}
}

// Append inserts an activity log entry
func (r *GormInvoiceEventRepository) Append(ctx context.Context, event *billing.InvoiceEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByInvoice returns the activity log of an invoice, oldest first
func (r *GormInvoiceEventRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*billing.InvoiceEvent, error) {
	var events []*billing.InvoiceEvent
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

var _ billing.InvoiceEventRepository = (*GormInvoiceEventRepository)(nil)
