package billing_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	appbilling "github.com/b2bmarket/backend/internal/application/billing"
	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"github.com/b2bmarket/backend/internal/infrastructure/cache"
	"github.com/b2bmarket/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSequences struct {
	counter atomic.Int64
}

func (f *fakeSequences) Next(_ context.Context, kind shared.SequenceKind, _ string, year int) (string, error) {
	return fmt.Sprintf("%s-%04d-%04d", kind.Prefix(), year, f.counter.Add(1)), nil
}

type billingFixture struct {
	svc      *appbilling.InvoiceService
	invoices *persistence.GormInvoiceRepository
	orders   *persistence.GormOrderRepository
	db       *gorm.DB
}

func setupInvoiceService(t *testing.T) billingFixture {
	t.Helper()
	db, err := persistence.NewTestDatabase()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	invoices := persistence.NewGormInvoiceRepository(db.DB, nil)
	invoiceEvents := persistence.NewGormInvoiceEventRepository(db.DB)
	payments := persistence.NewGormPaymentRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB, nil)

	directory := cache.NewStaticPartyDirectory()
	directory.Register("seller-1", cache.Party{DisplayName: "Gulf Steel Co"})
	directory.Register("buyer-1", cache.Party{DisplayName: "Alpha Trading", CreditEligible: true})

	svc := appbilling.NewInvoiceService(invoices, invoiceEvents, payments, orders, directory, &fakeSequences{}, zap.NewNop())
	return billingFixture{svc: svc, invoices: invoices, orders: orders, db: db.DB}
}

// seedOrder creates an order and walks it to the requested status
func seedOrder(t *testing.T, f billingFixture, method trade.PaymentMethod, target trade.OrderStatus) *trade.Order {
	t.Helper()
	now := time.Now()

	order, err := trade.NewOrder("ORD-2026-0001", trade.OrderSource{
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		TotalAmount: decimal.NewFromInt(1000),
	}, method, now)
	require.NoError(t, err)

	steps := []func() error{
		func() error { return order.Confirm(now) },
		func() error { return order.StartProcessing(now) },
		func() error { return order.Ship("SMSA", "SM1", now) },
		func() error { return order.MarkDelivered("buyer-1", now) },
		func() error { return order.Close(now) },
	}
	for _, step := range steps {
		if order.Status == target {
			break
		}
		require.NoError(t, step())
	}
	require.Equal(t, target, order.Status)

	order.ClearDomainEvents()
	require.NoError(t, f.orders.Save(context.Background(), order))
	return order
}

func TestGenerateForOrderComputesVATAndIssues(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)

	invoice, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)

	assert.Contains(t, invoice.InvoiceNumber, "INV-")
	assert.Equal(t, billing.InvoiceStatusIssued, invoice.Status)
	assert.True(t, invoice.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, invoice.VATAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(1150)))
	assert.Equal(t, "Gulf Steel Co", invoice.SellerName)
	assert.Equal(t, "Alpha Trading", invoice.BuyerName)
	require.NotNil(t, invoice.DueDate)
	require.NotNil(t, invoice.IssuedAt)
	assert.WithinDuration(t, invoice.IssuedAt.AddDate(0, 0, 30), *invoice.DueDate, time.Second)
}

func TestGenerateForOrderIsIdempotent(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)

	first, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)
	second, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.Equal(t, first.ID, second.ID)
}

func TestGenerateForOrderRequiresBillingTrigger(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	pending := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusConfirmed)
	_, err := f.svc.GenerateForOrder(ctx, pending.ID)
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))
}

func TestCreditOrderIsInvoicedAtConfirmation(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodCredit, trade.OrderStatusConfirmed)

	invoice, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusIssued, invoice.Status)
}

func TestRecordPaymentSettlesInvoiceWhenCovered(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)
	invoice, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)

	partial, err := f.svc.RecordPayment(ctx, appbilling.RecordPaymentRequest{
		OrderID:   order.ID,
		Reference: "BT-001",
		Amount:    decimal.NewFromInt(500),
		Confirmed: true,
	})
	require.NoError(t, err)
	require.NotNil(t, partial.Invoice)
	assert.Equal(t, billing.InvoiceStatusIssued, partial.Invoice.Status)
	assert.True(t, partial.Invoice.BalanceDue.Equal(decimal.NewFromInt(650)))

	settled, err := f.svc.RecordPayment(ctx, appbilling.RecordPaymentRequest{
		OrderID:   order.ID,
		Reference: "BT-002",
		Amount:    decimal.NewFromInt(650),
		Confirmed: true,
	})
	require.NoError(t, err)
	require.NotNil(t, settled.Invoice)
	assert.Equal(t, billing.InvoiceStatusPaid, settled.Invoice.Status)
	assert.True(t, settled.Invoice.PaidAmount.Equal(invoice.TotalAmount))
	assert.True(t, settled.Invoice.BalanceDue.IsZero())
	require.NotNil(t, settled.Invoice.PaidAt)
}

func TestPaymentBeforeInvoiceIsPickedUpAtGeneration(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)

	parked, err := f.svc.RecordPayment(ctx, appbilling.RecordPaymentRequest{
		OrderID:   order.ID,
		Reference: "BT-EARLY",
		Amount:    decimal.NewFromInt(1150),
		Confirmed: true,
	})
	require.NoError(t, err)
	require.NotNil(t, parked)
	assert.Equal(t, billing.PaymentStatusConfirmed, parked.Status)
	assert.Nil(t, parked.Invoice)

	invoice, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, invoice.Status)
	assert.True(t, invoice.PaidAmount.Equal(decimal.NewFromInt(1150)))
}

func TestUnconfirmedPaymentsDoNotSettle(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)
	_, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)

	recorded, err := f.svc.RecordPayment(ctx, appbilling.RecordPaymentRequest{
		OrderID:   order.ID,
		Reference: "BT-PENDING",
		Amount:    decimal.NewFromInt(1150),
		Confirmed: false,
	})
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusPending, recorded.Status)
	require.NotNil(t, recorded.Invoice)
	assert.Equal(t, billing.InvoiceStatusIssued, recorded.Invoice.Status)
	assert.True(t, recorded.Invoice.PaidAmount.IsZero())
}

func TestProcessOverdueInvoicesSweepIsIdempotent(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)
	invoice, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)

	// age the invoice past its due date
	require.NoError(t, f.db.Model(&billing.Invoice{}).
		Where("id = ?", invoice.ID).
		Update("due_date", time.Now().Add(-48*time.Hour)).Error)

	flagged, err := f.svc.ProcessOverdueInvoices(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	reloaded, err := f.svc.GetInvoice(ctx, shared.NewIdentitySet("seller-1"), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusOverdue, reloaded.Status)

	again, err := f.svc.ProcessOverdueInvoices(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestOverduePaymentStillSettles(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)
	invoice, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&billing.Invoice{}).
		Where("id = ?", invoice.ID).
		Update("due_date", time.Now().Add(-48*time.Hour)).Error)
	_, err = f.svc.ProcessOverdueInvoices(ctx, 10)
	require.NoError(t, err)

	settled, err := f.svc.RecordPayment(ctx, appbilling.RecordPaymentRequest{
		OrderID:   order.ID,
		Reference: "BT-LATE",
		Amount:    decimal.NewFromInt(1150),
		Confirmed: true,
	})
	require.NoError(t, err)
	require.NotNil(t, settled.Invoice)
	assert.Equal(t, billing.InvoiceStatusPaid, settled.Invoice.Status)
}

func TestCancelIssuedInvoiceConflicts(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)
	invoice, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelInvoice(ctx, shared.NewIdentitySet("seller-1"), invoice.ID, appbilling.CancelInvoiceRequest{Reason: "mistake"})
	assert.Equal(t, shared.CodeConflict, shared.ErrorCode(err))

	_, err = f.svc.CancelInvoice(ctx, shared.NewIdentitySet("seller-9"), invoice.ID, appbilling.CancelInvoiceRequest{Reason: "mistake"})
	assert.Equal(t, shared.CodeUnauthorized, shared.ErrorCode(err))
}

func TestGetInvoiceVisibility(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)
	invoice, err := f.svc.GenerateForOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = f.svc.GetInvoice(ctx, shared.NewIdentitySet("buyer-1"), invoice.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetInvoice(ctx, shared.NewIdentitySet("buyer-9"), invoice.ID)
	assert.Equal(t, shared.CodeUnauthorized, shared.ErrorCode(err))

	fromOrder, err := f.svc.GetInvoiceForOrder(ctx, shared.NewIdentitySet("seller-1"), order.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, fromOrder.ID)
}
