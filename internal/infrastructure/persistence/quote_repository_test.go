package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/b2bmarket/backend/internal/domain/quoting"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQuoteRepos(t *testing.T) (*GormQuoteRepository, *GormRFQRepository, *GormQuoteRevisionRepository) {
	t.Helper()
	db, err := NewTestDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewGormQuoteRepository(db.DB, nil),
		NewGormRFQRepository(db.DB),
		NewGormQuoteRevisionRepository(db.DB)
}

func seedRFQ(t *testing.T, repo *GormRFQRepository, buyerID shared.PartyID) *quoting.RFQ {
	t.Helper()
	rfq, err := quoting.NewRFQ("RFQ-2026-0001", buyerID, nil, "Steel Pipes", decimal.NewFromInt(10), "Riyadh")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), rfq))
	return rfq
}

func seedQuote(t *testing.T, repo *GormQuoteRepository, rfq *quoting.RFQ, number string, sellerID shared.PartyID, validUntil time.Time) *quoting.Quote {
	t.Helper()
	quote, err := quoting.NewQuote(number, rfq, sellerID, quoting.QuoteTerms{
		UnitPrice:  decimal.NewFromInt(100),
		Quantity:   decimal.NewFromInt(10),
		Currency:   valueobject.DefaultCurrency,
		ValidUntil: validUntil,
	})
	require.NoError(t, err)
	quote.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), quote))
	return quote
}

func TestQuoteRepositoryFindDraftByRFQ(t *testing.T) {
	quotes, rfqs, _ := setupQuoteRepos(t)
	ctx := context.Background()

	rfq := seedRFQ(t, rfqs, "buyer-1")
	other, err := quoting.NewRFQ("RFQ-2026-0002", "buyer-2", nil, "Copper Wire", decimal.NewFromInt(5), "Jeddah")
	require.NoError(t, err)
	require.NoError(t, rfqs.Save(ctx, other))
	draft := seedQuote(t, quotes, rfq, "QT-2026-0001", "seller-1", time.Now().Add(72*time.Hour))

	found, err := quotes.FindDraftByRFQ(ctx, rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, found.ID)

	_, err = quotes.FindDraftByRFQ(ctx, other.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// once the draft is sent, the RFQ has no live draft anymore
	require.NoError(t, draft.Send(time.Now()))
	require.NoError(t, quotes.Save(ctx, draft))
	_, err = quotes.FindDraftByRFQ(ctx, rfq.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestQuoteRepositoryBuyerNeverSeesDrafts(t *testing.T) {
	quotes, rfqs, _ := setupQuoteRepos(t)
	ctx := context.Background()

	rfq := seedRFQ(t, rfqs, "buyer-1")
	seedQuote(t, quotes, rfq, "QT-2026-0001", "seller-1", time.Now().Add(72*time.Hour))

	sent := seedQuote(t, quotes, rfq, "QT-2026-0002", "seller-2", time.Now().Add(72*time.Hour))
	require.NoError(t, sent.Send(time.Now()))
	require.NoError(t, quotes.Save(ctx, sent))

	page, err := quotes.FindByBuyer(ctx, "buyer-1", shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "QT-2026-0002", page.Items[0].QuoteNumber)
}

func TestQuoteRepositoryFindExpired(t *testing.T) {
	quotes, rfqs, _ := setupQuoteRepos(t)
	ctx := context.Background()
	now := time.Now()

	rfq := seedRFQ(t, rfqs, "buyer-1")

	stale := seedQuote(t, quotes, rfq, "QT-2026-0001", "seller-1", now.Add(-time.Hour))
	seedQuote(t, quotes, rfq, "QT-2026-0002", "seller-2", now.Add(72*time.Hour))

	accepted := seedQuote(t, quotes, rfq, "QT-2026-0003", "seller-3", now.Add(-time.Hour))
	accepted.Status = quoting.QuoteStatusAccepted
	require.NoError(t, quotes.Save(ctx, accepted))

	expired, err := quotes.FindExpired(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
}

func TestQuoteRepositorySaveWithLockDetectsStaleVersion(t *testing.T) {
	quotes, rfqs, _ := setupQuoteRepos(t)
	ctx := context.Background()

	rfq := seedRFQ(t, rfqs, "buyer-1")
	seeded := seedQuote(t, quotes, rfq, "QT-2026-0001", "seller-1", time.Now().Add(72*time.Hour))

	first, err := quotes.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	second, err := quotes.FindByID(ctx, seeded.ID)
	require.NoError(t, err)

	require.NoError(t, first.Send(time.Now()))
	require.NoError(t, quotes.SaveWithLock(ctx, first))

	require.NoError(t, second.Send(time.Now()))
	err = quotes.SaveWithLock(ctx, second)
	assert.Equal(t, shared.CodeConcurrency, shared.ErrorCode(err))
}

func TestQuoteRevisionRepositoryAppendKeepsSingleLatest(t *testing.T) {
	quotes, rfqs, revisions := setupQuoteRepos(t)
	ctx := context.Background()

	rfq := seedRFQ(t, rfqs, "buyer-1")
	quote := seedQuote(t, quotes, rfq, "QT-2026-0001", "seller-1", time.Now().Add(72*time.Hour))

	require.NoError(t, revisions.Append(ctx, quoting.NewQuoteRevision(quote)))

	require.NoError(t, quote.Update(quoting.QuoteTerms{
		UnitPrice:  decimal.NewFromInt(95),
		Quantity:   decimal.NewFromInt(10),
		Currency:   valueobject.DefaultCurrency,
		ValidUntil: time.Now().Add(72 * time.Hour),
	}))
	require.NoError(t, quotes.Save(ctx, quote))
	require.NoError(t, revisions.Append(ctx, quoting.NewQuoteRevision(quote)))

	history, err := revisions.FindByQuote(ctx, quote.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.False(t, history[0].IsLatest)
	assert.True(t, history[1].IsLatest)
	assert.Equal(t, 1, history[0].Revision)
	assert.Equal(t, 2, history[1].Revision)
}
