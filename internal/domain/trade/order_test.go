package trade

import (
	"testing"
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource() OrderSource {
	return OrderSource{
		QuoteID:         uuid.New(),
		QuoteNumber:     "QT-2026-0001",
		RFQID:           uuid.New(),
		BuyerID:         "buyer-1",
		SellerID:        "seller-1",
		Items:           valueobject.LineItems{valueobject.NewLineItem("Steel Pipe 2in", "SP-2", decimal.NewFromInt(100), decimal.NewFromInt(10))},
		TotalAmount:     decimal.NewFromInt(1000),
		Currency:        valueobject.USD,
		DeliveryTerms:   "DAP Riyadh",
		DeliveryDays:    5,
		ShippingAddress: "Industrial Area, Riyadh",
	}
}

func testOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder("ORD-2026-0001", testSource(), PaymentMethodBankTransfer, time.Now())
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func TestNewOrder(t *testing.T) {
	now := time.Now()
	order, err := NewOrder("ORD-2026-0001", testSource(), PaymentMethodBankTransfer, now)
	require.NoError(t, err)

	assert.Equal(t, OrderStatusPendingConfirmation, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, now.Add(24*time.Hour), order.ConfirmationDeadline)
	assert.Equal(t, now.AddDate(0, 0, 7), order.ShippingDeadline)
	assert.Len(t, order.GetDomainEvents(), 1)
}

func TestNewOrderInvalidPaymentMethod(t *testing.T) {
	_, err := NewOrder("ORD-2026-0002", testSource(), PaymentMethod("CHEQUE"), time.Now())
	require.Error(t, err)
	assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
}

func TestOrderHappyPath(t *testing.T) {
	order := testOrder(t)
	now := time.Now()

	require.NoError(t, order.Confirm(now))
	assert.Equal(t, OrderStatusConfirmed, order.Status)
	assert.NotNil(t, order.ConfirmedAt)

	require.NoError(t, order.StartProcessing(now))
	assert.Equal(t, OrderStatusProcessing, order.Status)

	require.NoError(t, order.Ship("DHL", "TRK-123", now))
	assert.Equal(t, OrderStatusShipped, order.Status)
	assert.Equal(t, "DHL", order.Carrier)

	require.NoError(t, order.MarkDelivered("buyer-1", now))
	assert.Equal(t, OrderStatusDelivered, order.Status)
	assert.Equal(t, shared.PartyID("buyer-1"), order.DeliveryConfirmedBy)

	require.NoError(t, order.Close(now))
	assert.Equal(t, OrderStatusClosed, order.Status)
	assert.True(t, order.Status.IsTerminal())
	assert.Len(t, order.GetDomainEvents(), 4)
}

func TestOrderShipRequiresCarrier(t *testing.T) {
	order := testOrder(t)
	now := time.Now()
	require.NoError(t, order.Confirm(now))
	require.NoError(t, order.StartProcessing(now))

	err := order.Ship("", "TRK-123", now)
	require.Error(t, err)
	assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	assert.Equal(t, OrderStatusProcessing, order.Status)
}

func TestOrderSkipTransitions(t *testing.T) {
	now := time.Now()

	t.Run("ship before confirm", func(t *testing.T) {
		order := testOrder(t)
		err := order.Ship("DHL", "", now)
		require.Error(t, err)
		assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
	})

	t.Run("deliver before ship", func(t *testing.T) {
		order := testOrder(t)
		require.NoError(t, order.Confirm(now))
		err := order.MarkDelivered("buyer-1", now)
		require.Error(t, err)
		assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
	})

	t.Run("close before deliver", func(t *testing.T) {
		order := testOrder(t)
		err := order.Close(now)
		require.Error(t, err)
		assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
	})
}

func TestOrderCancelWindows(t *testing.T) {
	now := time.Now()

	t.Run("cancel pending", func(t *testing.T) {
		order := testOrder(t)
		require.NoError(t, order.Cancel("changed my mind", now))
		assert.Equal(t, OrderStatusCancelled, order.Status)
		assert.Equal(t, "changed my mind", order.CancelReason)
	})

	t.Run("cancel confirmed", func(t *testing.T) {
		order := testOrder(t)
		require.NoError(t, order.Confirm(now))
		require.NoError(t, order.Cancel("stock issue", now))
		assert.Equal(t, OrderStatusCancelled, order.Status)
	})

	t.Run("cancel processing", func(t *testing.T) {
		order := testOrder(t)
		require.NoError(t, order.Confirm(now))
		require.NoError(t, order.StartProcessing(now))
		require.NoError(t, order.Cancel("stock issue", now))
		assert.Equal(t, OrderStatusCancelled, order.Status)
	})

	t.Run("cancel shipped", func(t *testing.T) {
		order := testOrder(t)
		require.NoError(t, order.Confirm(now))
		require.NoError(t, order.StartProcessing(now))
		require.NoError(t, order.Ship("DHL", "", now))
		err := order.Cancel("too late", now)
		require.Error(t, err)
		assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
	})
}

func TestOrderReject(t *testing.T) {
	order := testOrder(t)
	now := time.Now()

	require.NoError(t, order.Reject("cannot fulfill", now))
	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.Equal(t, "cannot fulfill", order.CancelReason)

	confirmed := testOrder(t)
	require.NoError(t, confirmed.Confirm(now))
	err := confirmed.Reject("too late", now)
	require.Error(t, err)
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
}

func TestOrderSLAOutcome(t *testing.T) {
	order := testOrder(t)

	require.NoError(t, order.Confirm(order.CreatedAt.Add(2*time.Hour)))
	assert.True(t, order.ConfirmedOnTime())

	require.NoError(t, order.StartProcessing(order.CreatedAt.Add(3*time.Hour)))
	require.NoError(t, order.Ship("DHL", "", order.CreatedAt.AddDate(0, 0, 10)))
	assert.False(t, order.ShippedOnTime())
	assert.Equal(t, 10, order.DaysToShip)
}

func TestOrderLateConfirmationStillAllowed(t *testing.T) {
	order := testOrder(t)

	// the deadline is advisory, confirming after it still succeeds
	late := order.ConfirmationDeadline.Add(48 * time.Hour)
	require.NoError(t, order.Confirm(late))
	assert.Equal(t, OrderStatusConfirmed, order.Status)
	assert.False(t, order.ConfirmedOnTime())
}

func TestOrderStatusTransitionTable(t *testing.T) {
	all := []OrderStatus{
		OrderStatusPendingConfirmation, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusClosed,
		OrderStatusCancelled, OrderStatusFailed, OrderStatusRefunded,
	}

	allowed := map[OrderStatus]map[OrderStatus]bool{
		OrderStatusPendingConfirmation: {OrderStatusConfirmed: true, OrderStatusCancelled: true},
		OrderStatusConfirmed:           {OrderStatusProcessing: true, OrderStatusCancelled: true},
		OrderStatusProcessing:          {OrderStatusShipped: true, OrderStatusCancelled: true},
		OrderStatusShipped:             {OrderStatusDelivered: true},
		OrderStatusDelivered:           {OrderStatusClosed: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}
