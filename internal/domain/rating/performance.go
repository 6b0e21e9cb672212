package rating

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SellerPerformance records the SLA outcome of a single closed order. One
// row per order; the unique index makes recording idempotent when the same
// closure event is delivered twice.
type SellerPerformance struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SellerID        shared.PartyID `gorm:"index;size:64"`
	OrderID         uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	OrderNumber     string         `gorm:"size:50"`
	ConfirmedOnTime bool
	ShippedOnTime   bool
	DaysToConfirm   int
	DaysToShip      int
	DaysToDeliver   int
	RecordedAt      time.Time
}

// NewSellerPerformance creates a performance record for a closed order
func NewSellerPerformance(sellerID shared.PartyID, orderID uuid.UUID, orderNumber string, confirmedOnTime, shippedOnTime bool, daysToConfirm, daysToShip, daysToDeliver int) *SellerPerformance {
	return &SellerPerformance{
		ID:              uuid.New(),
		SellerID:        sellerID,
		OrderID:         orderID,
		OrderNumber:     orderNumber,
		ConfirmedOnTime: confirmedOnTime,
		ShippedOnTime:   shippedOnTime,
		DaysToConfirm:   daysToConfirm,
		DaysToShip:      daysToShip,
		DaysToDeliver:   daysToDeliver,
		RecordedAt:      time.Now(),
	}
}

// PerformanceSummary aggregates a seller's record across closed orders
type PerformanceSummary struct {
	SellerID           shared.PartyID `json:"seller_id"`
	OrdersClosed       int64          `json:"orders_closed"`
	ConfirmedOnTimePct float64        `json:"confirmed_on_time_pct"`
	ShippedOnTimePct   float64        `json:"shipped_on_time_pct"`
	AvgDaysToDeliver   float64        `json:"avg_days_to_deliver"`
}
