package quoting

import (
	"testing"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRFQ(t *testing.T) {
	rfq, err := NewRFQ("RFQ-2026-0100", "buyer-1", nil, "Copper Wire", decimal.NewFromInt(50), "Jeddah")
	require.NoError(t, err)

	assert.Equal(t, RFQStatusPending, rfq.Status)
	assert.True(t, rfq.IsOpen())
	assert.Equal(t, shared.PartyID("buyer-1"), rfq.BuyerID)
}

func TestNewRFQValidation(t *testing.T) {
	tests := []struct {
		name     string
		number   string
		buyer    shared.PartyID
		item     string
		quantity decimal.Decimal
	}{
		{"empty number", "", "buyer-1", "Copper Wire", decimal.NewFromInt(1)},
		{"empty buyer", "RFQ-2026-0101", "", "Copper Wire", decimal.NewFromInt(1)},
		{"empty item", "RFQ-2026-0101", "buyer-1", "", decimal.NewFromInt(1)},
		{"zero quantity", "RFQ-2026-0101", "buyer-1", "Copper Wire", decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRFQ(tt.number, tt.buyer, nil, tt.item, tt.quantity, "")
			require.Error(t, err)
			assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
		})
	}
}

func TestRFQAllowsSeller(t *testing.T) {
	boundSeller := shared.PartyID("seller-1")

	open, err := NewRFQ("RFQ-2026-0102", "buyer-1", nil, "Copper Wire", decimal.NewFromInt(5), "")
	require.NoError(t, err)
	bound, err := NewRFQ("RFQ-2026-0103", "buyer-1", &boundSeller, "Copper Wire", decimal.NewFromInt(5), "")
	require.NoError(t, err)

	anySeller := shared.NewIdentitySet("seller-9")
	rightSeller := shared.NewIdentitySet("seller-1", "seller-1-alias")

	assert.True(t, open.AllowsSeller(anySeller))
	assert.False(t, bound.AllowsSeller(anySeller))
	assert.True(t, bound.AllowsSeller(rightSeller))
}

func TestRFQMarkQuoted(t *testing.T) {
	rfq, err := NewRFQ("RFQ-2026-0104", "buyer-1", nil, "Copper Wire", decimal.NewFromInt(5), "")
	require.NoError(t, err)

	require.NoError(t, rfq.MarkQuoted())
	assert.Equal(t, RFQStatusQuoted, rfq.Status)

	// quoting again after a second quote is sent stays QUOTED
	require.NoError(t, rfq.MarkQuoted())
	assert.Equal(t, RFQStatusQuoted, rfq.Status)
}

func TestRFQAccept(t *testing.T) {
	rfq, err := NewRFQ("RFQ-2026-0105", "buyer-1", nil, "Copper Wire", decimal.NewFromInt(5), "")
	require.NoError(t, err)
	require.NoError(t, rfq.MarkQuoted())

	quoteID, orderID := uuid.New(), uuid.New()
	require.NoError(t, rfq.Accept(quoteID, orderID))

	assert.Equal(t, RFQStatusAccepted, rfq.Status)
	require.NotNil(t, rfq.AcceptedQuoteID)
	assert.Equal(t, quoteID, *rfq.AcceptedQuoteID)
	require.NotNil(t, rfq.AcceptedOrderID)
	assert.Equal(t, orderID, *rfq.AcceptedOrderID)
	assert.False(t, rfq.CanReceiveQuote())
}

func TestRFQAcceptBeforeQuoted(t *testing.T) {
	rfq, err := NewRFQ("RFQ-2026-0106", "buyer-1", nil, "Copper Wire", decimal.NewFromInt(5), "")
	require.NoError(t, err)

	err = rfq.Accept(uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
}

func TestRFQRejectTerminal(t *testing.T) {
	rfq, err := NewRFQ("RFQ-2026-0107", "buyer-1", nil, "Copper Wire", decimal.NewFromInt(5), "")
	require.NoError(t, err)

	require.NoError(t, rfq.Reject())
	assert.Equal(t, RFQStatusRejected, rfq.Status)
	assert.False(t, rfq.CanReceiveQuote())

	err = rfq.MarkQuoted()
	require.Error(t, err)
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
}
