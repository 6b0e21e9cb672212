package persistence

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/rating"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSellerPerformanceRepository implements rating.SellerPerformanceRepository using GORM
type GormSellerPerformanceRepository struct {
	db *gorm.DB
}

// NewGormSellerPerformanceRepository creates a new GormSellerPerformanceRepository
func NewGormSellerPerformanceRepository(db *gorm.DB) *GormSellerPerformanceRepository {
	return &GormSellerPerformanceRepository{db: db}
}

// Save persists a performance record
func (r *GormSellerPerformanceRepository) Save(ctx context.Context, record *rating.SellerPerformance) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// ExistsByOrder reports whether a record was already captured for the order
func (r *GormSellerPerformanceRepository) ExistsByOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&rating.SellerPerformance{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindBySeller finds performance records for a seller
func (r *GormSellerPerformanceRepository) FindBySeller(ctx context.Context, sellerID shared.PartyID, filter shared.Filter) (*shared.Paginated[rating.SellerPerformance], error) {
	query := r.db.WithContext(ctx).
		Model(&rating.SellerPerformance{}).
		Where("seller_id = ?", sellerID)
	return findPaginated[rating.SellerPerformance](query, filter, PerformanceSortFields, "recorded_at")
}

// Summarize aggregates the seller's closed-order history into a summary
func (r *GormSellerPerformanceRepository) Summarize(ctx context.Context, sellerID shared.PartyID) (*rating.PerformanceSummary, error) {
	var row struct {
		OrdersClosed     int64
		ConfirmedOnTime  int64
		ShippedOnTime    int64
		AvgDaysToDeliver float64
	}
	if err := r.db.WithContext(ctx).
		Model(&rating.SellerPerformance{}).
		Select(
			"COUNT(*) AS orders_closed, "+
				"COALESCE(SUM(CASE WHEN confirmed_on_time THEN 1 ELSE 0 END), 0) AS confirmed_on_time, "+
				"COALESCE(SUM(CASE WHEN shipped_on_time THEN 1 ELSE 0 END), 0) AS shipped_on_time, "+
				"COALESCE(AVG(days_to_deliver), 0) AS avg_days_to_deliver").
		Where("seller_id = ?", sellerID).
		Scan(&row).Error; err != nil {
		return nil, err
	}

	summary := &rating.PerformanceSummary{
		SellerID:         sellerID,
		OrdersClosed:     row.OrdersClosed,
		AvgDaysToDeliver: row.AvgDaysToDeliver,
	}
	if row.OrdersClosed > 0 {
		summary.ConfirmedOnTimePct = float64(row.ConfirmedOnTime) / float64(row.OrdersClosed) * 100
		summary.ShippedOnTimePct = float64(row.ShippedOnTime) / float64(row.OrdersClosed) * 100
	}
	return summary, nil
}

var _ rating.SellerPerformanceRepository = (*GormSellerPerformanceRepository)(nil)
