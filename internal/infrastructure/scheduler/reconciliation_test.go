package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/b2bmarket/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	quoteRuns   atomic.Int32
	invoiceRuns atomic.Int32
}

func (s *countingSweeper) ExpireQuotes(_ context.Context, _ int) (int, error) {
	s.quoteRuns.Add(1)
	return 1, nil
}

func (s *countingSweeper) ProcessOverdueInvoices(_ context.Context, _ int) (int, error) {
	s.invoiceRuns.Add(1)
	return 0, nil
}

func TestReconcilerRunsBothSweeps(t *testing.T) {
	sweeper := &countingSweeper{}
	r := NewReconciler(sweeper, sweeper, config.ReconcileConfig{
		QuoteExpiry: 10 * time.Millisecond,
		InvoiceDue:  10 * time.Millisecond,
		BatchSize:   50,
	}, zap.NewNop())

	r.Start(context.Background())

	assert.Eventually(t, func() bool {
		return sweeper.quoteRuns.Load() >= 2 && sweeper.invoiceRuns.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(stopCtx))
}

func TestReconcilerHonorsStartupDelay(t *testing.T) {
	sweeper := &countingSweeper{}
	r := NewReconciler(sweeper, sweeper, config.ReconcileConfig{
		QuoteExpiry:  time.Hour,
		InvoiceDue:   time.Hour,
		BatchSize:    50,
		StartupDelay: time.Hour,
	}, zap.NewNop())

	r.Start(context.Background())
	time.Sleep(20 * time.Millisecond)

	assert.Zero(t, sweeper.quoteRuns.Load())
	assert.Zero(t, sweeper.invoiceRuns.Load())

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(stopCtx))
}
