package trade

import (
	"context"

	"github.com/b2bmarket/backend/internal/domain/shared"
)

// PartyDirectory answers identity questions about marketplace parties. The
// directory lives outside this service; callers see only the queries the
// trade flow needs.
type PartyDirectory interface {
	// DisplayName returns the party's legal name for document snapshots
	DisplayName(ctx context.Context, id shared.PartyID) (string, error)
	// IsCreditEligible reports whether the buyer may place credit orders
	IsCreditEligible(ctx context.Context, id shared.PartyID) (bool, error)
}
