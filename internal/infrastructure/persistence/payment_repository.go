package persistence

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByInvoice finds payments linked to an invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*billing.Payment, error) {
	var payments []*billing.Payment
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("received_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByOrder finds payments recorded against an order
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]*billing.Payment, error) {
	var payments []*billing.Payment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("received_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SumConfirmedByInvoice totals the confirmed payments linked to the invoice
func (r *GormPaymentRepository) SumConfirmedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("invoice_id = ? AND status = ?", invoiceID, billing.PaymentStatusConfirmed).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// AssignToInvoice links payments recorded against the order before the
// invoice existed, returning how many rows were updated
func (r *GormPaymentRepository) AssignToInvoice(ctx context.Context, orderID, invoiceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Where("order_id = ? AND invoice_id IS NULL", orderID).
		Update("invoice_id", invoiceID)
	return result.RowsAffected, result.Error
}

// Save creates or updates a payment record
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
