package rating

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/rating"
	"github.com/b2bmarket/backend/internal/domain/shared"
)

// RatingService exposes seller performance read APIs
type RatingService struct {
	performanceRepo rating.SellerPerformanceRepository
}

// NewRatingService creates a new RatingService
func NewRatingService(performanceRepo rating.SellerPerformanceRepository) *RatingService {
	return &RatingService{performanceRepo: performanceRepo}
}

// GetSellerSummary aggregates the seller's SLA record across closed orders
func (s *RatingService) GetSellerSummary(ctx context.Context, sellerID shared.PartyID) (*rating.PerformanceSummary, error) {
	return s.performanceRepo.Summarize(ctx, sellerID)
}

// ListSellerRecords lists per-order performance records for a seller
func (s *RatingService) ListSellerRecords(ctx context.Context, sellerID shared.PartyID, filter shared.Filter) (*shared.Paginated[rating.SellerPerformance], error) {
	return s.performanceRepo.FindBySeller(ctx, sellerID, filter)
}
