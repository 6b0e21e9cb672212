package rating

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SellerPerformanceRepository defines the performance record persistence interface
type SellerPerformanceRepository interface {
	Save(ctx context.Context, record *SellerPerformance) error
	ExistsByOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	FindBySeller(ctx context.Context, sellerID shared.PartyID, filter shared.Filter) (*shared.Paginated[SellerPerformance], error)
	Summarize(ctx context.Context, sellerID shared.PartyID) (*PerformanceSummary, error)
}
