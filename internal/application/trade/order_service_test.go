package trade_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	apptrade "github.com/b2bmarket/backend/internal/application/trade"
	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"github.com/b2bmarket/backend/internal/infrastructure/cache"
	"github.com/b2bmarket/backend/internal/infrastructure/event"
	"github.com/b2bmarket/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSequences struct {
	counter atomic.Int64
}

func (f *fakeSequences) Next(_ context.Context, kind shared.SequenceKind, _ string, year int) (string, error) {
	return fmt.Sprintf("%s-%04d-%04d", kind.Prefix(), year, f.counter.Add(1)), nil
}

type orderFixture struct {
	svc       *apptrade.OrderService
	quotes    *persistence.GormQuoteRepository
	rfqs      *persistence.GormRFQRepository
	audits    *persistence.GormOrderAuditRepository
	outbox    *event.GormOutboxRepository
	directory *cache.StaticPartyDirectory
}

func setupOrderService(t *testing.T) orderFixture {
	t.Helper()
	db, err := persistence.NewTestDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	serializer := event.NewEventSerializer()
	publisher := event.NewOutboxPublisher(serializer)
	outbox := event.NewGormOutboxRepository(db.DB)

	quotes := persistence.NewGormQuoteRepository(db.DB, publisher)
	rfqs := persistence.NewGormRFQRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB, publisher)
	audits := persistence.NewGormOrderAuditRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB, publisher)

	directory := cache.NewStaticPartyDirectory()
	svc := apptrade.NewOrderService(orders, quotes, audits, scope, directory, &fakeSequences{}, zap.NewNop())
	return orderFixture{svc: svc, quotes: quotes, rfqs: rfqs, audits: audits, outbox: outbox, directory: directory}
}

// seedSentQuote walks a quote to SENT against a QUOTED open RFQ, the state
// quote acceptance starts from
func seedSentQuote(t *testing.T, f orderFixture, buyerID, sellerID shared.PartyID) *quoting.Quote {
	t.Helper()
	ctx := context.Background()

	rfq, err := quoting.NewRFQ("RFQ-2026-0001", buyerID, nil, "Steel Pipes", decimal.NewFromInt(10), "Riyadh")
	require.NoError(t, err)
	require.NoError(t, f.rfqs.Save(ctx, rfq))

	quote, err := quoting.NewQuote("QT-2026-0001", rfq, sellerID, quoting.QuoteTerms{
		UnitPrice:  decimal.NewFromInt(100),
		Quantity:   decimal.NewFromInt(10),
		ValidUntil: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, quote.Send(time.Now()))
	quote.ClearDomainEvents()
	require.NoError(t, f.quotes.Save(ctx, quote))

	require.NoError(t, rfq.MarkQuoted())
	require.NoError(t, f.rfqs.Save(ctx, rfq))
	return quote
}

func acceptRequest(quote *quoting.Quote) apptrade.AcceptQuoteRequest {
	return apptrade.AcceptQuoteRequest{
		QuoteID:         quote.ID,
		PaymentMethod:   string(trade.PaymentMethodBankTransfer),
		ShippingAddress: "Industrial Area, Riyadh",
	}
}

func TestAcceptQuoteCreatesOrderAtomically(t *testing.T) {
	f := setupOrderService(t)
	ctx := context.Background()

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")
	buyer := shared.NewIdentitySet("buyer-1")

	order, err := f.svc.AcceptQuote(ctx, buyer, acceptRequest(quote))
	require.NoError(t, err)

	assert.Equal(t, trade.OrderStatusPendingConfirmation, order.Status)
	assert.Contains(t, order.OrderNumber, "ORD-")
	assert.Equal(t, quote.QuoteNumber, order.QuoteNumber)
	assert.True(t, order.TotalAmount.Equal(quote.TotalPrice))

	accepted, err := f.quotes.FindByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, quoting.QuoteStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.OrderID)
	assert.Equal(t, order.ID, *accepted.OrderID)

	rfq, err := f.rfqs.FindByID(ctx, quote.RFQID)
	require.NoError(t, err)
	assert.Equal(t, quoting.RFQStatusAccepted, rfq.Status)
	require.NotNil(t, rfq.AcceptedOrderID)
	assert.Equal(t, order.ID, *rfq.AcceptedOrderID)

	// acceptance stages the quote and order events in the same transaction
	pending, err := f.outbox.FindPending(ctx, 10)
	require.NoError(t, err)
	types := make(map[string]bool, len(pending))
	for _, entry := range pending {
		types[entry.EventType] = true
	}
	assert.True(t, types[quoting.EventTypeQuoteAccepted])
	assert.True(t, types[trade.EventTypeOrderCreated])

	audits, err := f.svc.GetOrderAudit(ctx, buyer, order.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, trade.OrderAuditCreated, audits[0].Action)
}

func TestAcceptQuoteTwiceConflicts(t *testing.T) {
	f := setupOrderService(t)
	ctx := context.Background()

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")
	buyer := shared.NewIdentitySet("buyer-1")

	_, err := f.svc.AcceptQuote(ctx, buyer, acceptRequest(quote))
	require.NoError(t, err)

	_, err = f.svc.AcceptQuote(ctx, buyer, acceptRequest(quote))
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
}

func TestAcceptQuoteByStrangerIsUnauthorized(t *testing.T) {
	f := setupOrderService(t)

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")

	_, err := f.svc.AcceptQuote(context.Background(), shared.NewIdentitySet("buyer-2"), acceptRequest(quote))
	assert.Equal(t, shared.CodeUnauthorized, shared.ErrorCode(err))
}

func TestAcceptQuoteOnCreditChecksEligibility(t *testing.T) {
	f := setupOrderService(t)
	ctx := context.Background()

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")
	buyer := shared.NewIdentitySet("buyer-1")

	req := acceptRequest(quote)
	req.PaymentMethod = string(trade.PaymentMethodCredit)

	_, err := f.svc.AcceptQuote(ctx, buyer, req)
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))

	f.directory.Register("buyer-1", cache.Party{DisplayName: "Alpha Trading", CreditEligible: true})
	order, err := f.svc.AcceptQuote(ctx, buyer, req)
	require.NoError(t, err)
	assert.Equal(t, trade.PaymentMethodCredit, order.PaymentMethod)
}

func TestAcceptQuoteDefaultsToBankTransfer(t *testing.T) {
	f := setupOrderService(t)
	ctx := context.Background()

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")
	buyer := shared.NewIdentitySet("buyer-1")

	req := acceptRequest(quote)
	req.PaymentMethod = ""

	order, err := f.svc.AcceptQuote(ctx, buyer, req)
	require.NoError(t, err)
	assert.Equal(t, trade.PaymentMethodBankTransfer, order.PaymentMethod)
}

func TestOrderLifecycleThroughClose(t *testing.T) {
	f := setupOrderService(t)
	ctx := context.Background()

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")
	buyer := shared.NewIdentitySet("buyer-1")
	seller := shared.NewIdentitySet("seller-1")

	order, err := f.svc.AcceptQuote(ctx, buyer, acceptRequest(quote))
	require.NoError(t, err)

	confirmed, err := f.svc.ConfirmOrder(ctx, seller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	processing, err := f.svc.StartProcessing(ctx, seller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusProcessing, processing.Status)

	shipped, err := f.svc.ShipOrder(ctx, seller, order.ID, apptrade.ShipOrderRequest{
		Carrier:        "SMSA",
		TrackingNumber: "SM123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusShipped, shipped.Status)
	assert.Equal(t, "SMSA", shipped.Carrier)

	delivered, err := f.svc.MarkDelivered(ctx, buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusDelivered, delivered.Status)

	closed, err := f.svc.CloseOrder(ctx, buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	audits, err := f.svc.GetOrderAudit(ctx, buyer, order.ID)
	require.NoError(t, err)
	assert.Len(t, audits, 6)

	stats, err := f.svc.GetOrderStats(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.Counts[trade.OrderStatusClosed])
}

func TestConfirmOrderByBuyerIsUnauthorized(t *testing.T) {
	f := setupOrderService(t)
	ctx := context.Background()

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")
	buyer := shared.NewIdentitySet("buyer-1")

	order, err := f.svc.AcceptQuote(ctx, buyer, acceptRequest(quote))
	require.NoError(t, err)

	_, err = f.svc.ConfirmOrder(ctx, buyer, order.ID)
	assert.Equal(t, shared.CodeUnauthorized, shared.ErrorCode(err))
}

func TestMarkDeliveredBySellerIsAllowed(t *testing.T) {
	f := setupOrderService(t)
	ctx := context.Background()

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")
	buyer := shared.NewIdentitySet("buyer-1")
	seller := shared.NewIdentitySet("seller-1")

	order, err := f.svc.AcceptQuote(ctx, buyer, acceptRequest(quote))
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(ctx, seller, order.ID)
	require.NoError(t, err)
	_, err = f.svc.StartProcessing(ctx, seller, order.ID)
	require.NoError(t, err)
	_, err = f.svc.ShipOrder(ctx, seller, order.ID, apptrade.ShipOrderRequest{Carrier: "SMSA"})
	require.NoError(t, err)

	_, err = f.svc.MarkDelivered(ctx, shared.NewIdentitySet("someone-else"), order.ID)
	assert.Equal(t, shared.CodeUnauthorized, shared.ErrorCode(err))

	delivered, err := f.svc.MarkDelivered(ctx, seller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusDelivered, delivered.Status)

	audits, err := f.svc.GetOrderAudit(ctx, seller, order.ID)
	require.NoError(t, err)
	var deliveredAudit *apptrade.OrderAuditResponse
	for i := range audits {
		if audits[i].Action == trade.OrderAuditDelivered {
			deliveredAudit = &audits[i]
		}
	}
	require.NotNil(t, deliveredAudit)
	assert.Equal(t, shared.ActorTypeSeller, deliveredAudit.ActorType)
}

func TestCancelAfterShipmentConflicts(t *testing.T) {
	f := setupOrderService(t)
	ctx := context.Background()

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")
	buyer := shared.NewIdentitySet("buyer-1")
	seller := shared.NewIdentitySet("seller-1")

	order, err := f.svc.AcceptQuote(ctx, buyer, acceptRequest(quote))
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(ctx, seller, order.ID)
	require.NoError(t, err)
	_, err = f.svc.StartProcessing(ctx, seller, order.ID)
	require.NoError(t, err)
	_, err = f.svc.ShipOrder(ctx, seller, order.ID, apptrade.ShipOrderRequest{Carrier: "SMSA"})
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(ctx, buyer, order.ID, apptrade.CancelOrderRequest{Reason: "changed my mind"})
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
}

func TestRejectOrderLandsInCancelled(t *testing.T) {
	f := setupOrderService(t)
	ctx := context.Background()

	quote := seedSentQuote(t, f, "buyer-1", "seller-1")
	buyer := shared.NewIdentitySet("buyer-1")
	seller := shared.NewIdentitySet("seller-1")

	order, err := f.svc.AcceptQuote(ctx, buyer, acceptRequest(quote))
	require.NoError(t, err)

	rejected, err := f.svc.RejectOrder(ctx, seller, order.ID, apptrade.CancelOrderRequest{Reason: "out of stock"})
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusCancelled, rejected.Status)
	assert.Equal(t, "out of stock", rejected.CancelReason)

	// terminal, the seller cannot confirm afterwards
	_, err = f.svc.ConfirmOrder(ctx, seller, order.ID)
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
}
