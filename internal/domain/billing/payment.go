package billing

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a recorded payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
)

// Payment is a read model of money received against an order. Payments are
// recorded by the treasury integration and may arrive before the invoice
// exists; InvoiceID stays nil until the invoice is created and the payment
// is reassociated.
type Payment struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID            `gorm:"type:uuid;index"`
	InvoiceID  *uuid.UUID           `gorm:"type:uuid;index"`
	Reference  string               `gorm:"size:64"`
	Amount     decimal.Decimal      `gorm:"type:decimal(20,4)"`
	Currency   valueobject.Currency `gorm:"size:8"`
	Status     PaymentStatus        `gorm:"size:16"`
	ReceivedAt time.Time
	CreatedAt  time.Time
}

// IsConfirmed reports whether the payment counts toward settlement
func (p *Payment) IsConfirmed() bool {
	return p.Status == PaymentStatusConfirmed
}
