package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/b2bmarket/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// QuoteExpirer sweeps live quotes whose validity window has passed
type QuoteExpirer interface {
	ExpireQuotes(ctx context.Context, batchSize int) (int, error)
}

// InvoiceOverdueMarker sweeps issued invoices past their due date
type InvoiceOverdueMarker interface {
	ProcessOverdueInvoices(ctx context.Context, batchSize int) (int, error)
}

// Reconciler runs the time-based sweeps the lifecycle needs but no user
// action triggers: quote expiry and invoice overdue marking. Both sweeps are
// idempotent, so overlapping runs across instances only waste work.
type Reconciler struct {
	quotes   QuoteExpirer
	invoices InvoiceOverdueMarker
	config   config.ReconcileConfig
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconciler creates a new reconciliation scheduler
func NewReconciler(quotes QuoteExpirer, invoices InvoiceOverdueMarker, cfg config.ReconcileConfig, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		quotes:   quotes,
		invoices: invoices,
		config:   cfg,
		logger:   logger,
	}
}

// Start launches the sweep loops
func (r *Reconciler) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(2)
	go r.loop(ctx, "quote_expiry", r.config.QuoteExpiry, r.sweepQuotes)
	go r.loop(ctx, "invoice_due", r.config.InvoiceDue, r.sweepInvoices)

	r.logger.Info("reconciler started",
		zap.Duration("quote_expiry_interval", r.config.QuoteExpiry),
		zap.Duration("invoice_due_interval", r.config.InvoiceDue),
		zap.Int("batch_size", r.config.BatchSize),
	)
}

// Stop halts the sweep loops and waits for in-flight sweeps to finish
func (r *Reconciler) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("reconciler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reconciler) loop(ctx context.Context, name string, interval time.Duration, sweep func(context.Context)) {
	defer r.wg.Done()

	// Let the service finish coming up before the first sweep
	if r.config.StartupDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.config.StartupDelay):
		}
	}

	sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("sweep loop stopping", zap.String("sweep", name))
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

func (r *Reconciler) sweepQuotes(ctx context.Context) {
	count, err := r.quotes.ExpireQuotes(ctx, r.config.BatchSize)
	if err != nil {
		r.logger.Error("quote expiry sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		r.logger.Info("expired quotes", zap.Int("count", count))
	}
}

func (r *Reconciler) sweepInvoices(ctx context.Context) {
	count, err := r.invoices.ProcessOverdueInvoices(ctx, r.config.BatchSize)
	if err != nil {
		r.logger.Error("invoice overdue sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		r.logger.Info("marked invoices overdue", zap.Int("count", count))
	}
}
