package quoting_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	appquoting "github.com/b2bmarket/backend/internal/application/quoting"
	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSequences hands out deterministic document numbers without a database
type fakeSequences struct {
	counter atomic.Int64
}

func (f *fakeSequences) Next(_ context.Context, kind shared.SequenceKind, _ string, year int) (string, error) {
	return fmt.Sprintf("%s-%04d-%04d", kind.Prefix(), year, f.counter.Add(1)), nil
}

type quoteFixture struct {
	svc    *appquoting.QuoteService
	quotes *persistence.GormQuoteRepository
	rfqs   *persistence.GormRFQRepository
}

func setupQuoteService(t *testing.T) quoteFixture {
	t.Helper()
	db, err := persistence.NewTestDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	quotes := persistence.NewGormQuoteRepository(db.DB, nil)
	rfqs := persistence.NewGormRFQRepository(db.DB)
	revisions := persistence.NewGormQuoteRevisionRepository(db.DB)
	quoteEvents := persistence.NewGormQuoteEventRepository(db.DB)
	rfqEvents := persistence.NewGormRFQEventRepository(db.DB)

	svc := appquoting.NewQuoteService(quotes, rfqs, revisions, quoteEvents, rfqEvents, &fakeSequences{}, zap.NewNop())
	return quoteFixture{svc: svc, quotes: quotes, rfqs: rfqs}
}

func validTerms() appquoting.QuoteTermsInput {
	return appquoting.QuoteTermsInput{
		UnitPrice:  decimal.NewFromInt(100),
		Quantity:   decimal.NewFromInt(10),
		ValidUntil: time.Now().Add(72 * time.Hour),
	}
}

func createRFQ(t *testing.T, f quoteFixture, buyerID shared.PartyID, sellerID *shared.PartyID) *appquoting.RFQResponse {
	t.Helper()
	rfq, err := f.svc.CreateRFQ(context.Background(), buyerID, appquoting.CreateRFQRequest{
		SellerID:         sellerID,
		ItemName:         "Steel Pipes",
		Quantity:         decimal.NewFromInt(10),
		DeliveryLocation: "Riyadh",
	})
	require.NoError(t, err)
	return rfq
}

func TestCreateRFQAssignsNumberAndStartsPending(t *testing.T) {
	f := setupQuoteService(t)

	rfq := createRFQ(t, f, "buyer-1", nil)
	assert.Contains(t, rfq.RFQNumber, "RFQ-")
	assert.Equal(t, quoting.RFQStatusPending, rfq.Status)
	assert.Nil(t, rfq.SellerID)
}

func TestGetRFQBoundToAnotherSellerIsHidden(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	bound := shared.PartyID("seller-1")
	rfq := createRFQ(t, f, "buyer-1", &bound)

	_, err := f.svc.GetRFQ(ctx, shared.NewIdentitySet("seller-1"), rfq.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetRFQ(ctx, shared.NewIdentitySet("seller-2"), rfq.ID)
	assert.Equal(t, shared.CodeUnauthorized, shared.ErrorCode(err))
}

func TestCreateDraftRejectsSecondDraftForSameRFQ(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)
	seller := shared.NewIdentitySet("seller-1")

	quote, err := f.svc.CreateDraft(ctx, seller, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)
	assert.Equal(t, quoting.QuoteStatusDraft, quote.Status)
	assert.Equal(t, 1, quote.Version)

	_, err = f.svc.CreateDraft(ctx, seller, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
}

func TestCreateDraftRejectsDraftFromAnotherSeller(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)

	_, err := f.svc.CreateDraft(ctx, shared.NewIdentitySet("seller-1"), appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)

	// the draft lock on the RFQ holds across sellers, not per seller
	_, err = f.svc.CreateDraft(ctx, shared.NewIdentitySet("seller-2"), appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))

	page, err := f.quotes.FindByRFQ(ctx, rfq.ID)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestCreateDraftOnBoundRFQRequiresTheBoundSeller(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	bound := shared.PartyID("seller-1")
	rfq := createRFQ(t, f, "buyer-1", &bound)

	_, err := f.svc.CreateDraft(ctx, shared.NewIdentitySet("seller-2"), appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	assert.Equal(t, shared.CodeUnauthorized, shared.ErrorCode(err))
}

func TestSendQuoteMarksRFQQuoted(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)
	seller := shared.NewIdentitySet("seller-1")

	draft, err := f.svc.CreateDraft(ctx, seller, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)

	sent, err := f.svc.SendQuote(ctx, seller, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, quoting.QuoteStatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	reloaded, err := f.rfqs.FindByID(ctx, rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, quoting.RFQStatusQuoted, reloaded.Status)
}

func TestBuyerCannotSeeDraftQuote(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)
	seller := shared.NewIdentitySet("seller-1")
	buyer := shared.NewIdentitySet("buyer-1")

	draft, err := f.svc.CreateDraft(ctx, seller, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)

	_, err = f.svc.GetQuote(ctx, buyer, draft.ID)
	assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))

	_, err = f.svc.SendQuote(ctx, seller, draft.ID)
	require.NoError(t, err)

	visible, err := f.svc.GetQuote(ctx, buyer, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, quoting.QuoteStatusSent, visible.Status)
}

func TestUpdateAfterSendMovesQuoteToRevised(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)
	seller := shared.NewIdentitySet("seller-1")

	draft, err := f.svc.CreateDraft(ctx, seller, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)
	_, err = f.svc.SendQuote(ctx, seller, draft.ID)
	require.NoError(t, err)

	terms := validTerms()
	terms.UnitPrice = decimal.NewFromInt(95)
	updated, err := f.svc.UpdateQuote(ctx, seller, draft.ID, appquoting.UpdateQuoteRequest{Terms: terms})
	require.NoError(t, err)
	assert.Equal(t, quoting.QuoteStatusRevised, updated.Status)
	assert.Equal(t, 2, updated.Version)
	assert.True(t, updated.TotalPrice.Equal(decimal.NewFromInt(950)))

	history, err := f.svc.GetQuoteHistory(ctx, seller, draft.ID)
	require.NoError(t, err)
	require.Len(t, history.Revisions, 2)
	assert.False(t, history.Revisions[0].IsLatest)
	assert.True(t, history.Revisions[1].IsLatest)
	assert.NotEmpty(t, history.Events)
}

func TestRejectQuoteClosesTheRFQ(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)
	seller := shared.NewIdentitySet("seller-1")
	buyer := shared.NewIdentitySet("buyer-1")

	draft, err := f.svc.CreateDraft(ctx, seller, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)
	_, err = f.svc.SendQuote(ctx, seller, draft.ID)
	require.NoError(t, err)

	rejected, err := f.svc.RejectQuote(ctx, buyer, draft.ID, appquoting.RejectQuoteRequest{Reason: "price too high"})
	require.NoError(t, err)
	assert.Equal(t, quoting.QuoteStatusRejected, rejected.Status)
	assert.Equal(t, "price too high", rejected.RejectionReason)

	reloaded, err := f.rfqs.FindByID(ctx, rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, quoting.RFQStatusRejected, reloaded.Status)

	// rejection is terminal, no more quoting against this RFQ
	_, err = f.svc.CreateDraft(ctx, shared.NewIdentitySet("seller-2"), appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
}

func TestRejectQuoteByStrangerIsUnauthorized(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)
	seller := shared.NewIdentitySet("seller-1")

	draft, err := f.svc.CreateDraft(ctx, seller, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)
	_, err = f.svc.SendQuote(ctx, seller, draft.ID)
	require.NoError(t, err)

	_, err = f.svc.RejectQuote(ctx, shared.NewIdentitySet("buyer-2"), draft.ID, appquoting.RejectQuoteRequest{})
	assert.Equal(t, shared.CodeUnauthorized, shared.ErrorCode(err))
}

func TestExpireQuotesSweepIsIdempotent(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)
	seller := shared.NewIdentitySet("seller-1")

	draft, err := f.svc.CreateDraft(ctx, seller, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)
	_, err = f.svc.SendQuote(ctx, seller, draft.ID)
	require.NoError(t, err)

	// age the quote past its validity window
	stale, err := f.quotes.FindByID(ctx, draft.ID)
	require.NoError(t, err)
	stale.ValidUntil = time.Now().Add(-time.Hour)
	require.NoError(t, f.quotes.Save(ctx, stale))

	expired, err := f.svc.ExpireQuotes(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	reloaded, err := f.svc.GetQuote(ctx, seller, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, quoting.QuoteStatusExpired, reloaded.Status)

	again, err := f.svc.ExpireQuotes(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestListQuotesForRFQScopesVisibility(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)
	sellerOne := shared.NewIdentitySet("seller-1")
	sellerTwo := shared.NewIdentitySet("seller-2")

	first, err := f.svc.CreateDraft(ctx, sellerOne, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)
	_, err = f.svc.SendQuote(ctx, sellerOne, first.ID)
	require.NoError(t, err)

	// sending released the draft lock, a rival seller may now draft
	draft, err := f.svc.CreateDraft(ctx, sellerTwo, appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)

	buyerView, err := f.svc.ListQuotesForRFQ(ctx, shared.NewIdentitySet("buyer-1"), rfq.ID)
	require.NoError(t, err)
	require.Len(t, buyerView, 1)
	assert.Equal(t, first.ID, buyerView[0].ID)

	rivalView, err := f.svc.ListQuotesForRFQ(ctx, sellerTwo, rfq.ID)
	require.NoError(t, err)
	require.Len(t, rivalView, 1)
	assert.Equal(t, draft.ID, rivalView[0].ID)
}

func TestSellerListingsAreScopedToAliases(t *testing.T) {
	f := setupQuoteService(t)
	ctx := context.Background()

	rfq := createRFQ(t, f, "buyer-1", nil)
	other := createRFQ(t, f, "buyer-2", nil)
	_, err := f.svc.CreateDraft(ctx, shared.NewIdentitySet("seller-1"), appquoting.CreateQuoteRequest{RFQID: rfq.ID, Terms: validTerms()})
	require.NoError(t, err)
	_, err = f.svc.CreateDraft(ctx, shared.NewIdentitySet("seller-2"), appquoting.CreateQuoteRequest{RFQID: other.ID, Terms: validTerms()})
	require.NoError(t, err)

	page, err := f.svc.ListQuotesForSeller(ctx, shared.NewIdentitySet("seller-1", "seller-1-legacy"), shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, shared.PartyID("seller-1"), page.Items[0].SellerID)
}
