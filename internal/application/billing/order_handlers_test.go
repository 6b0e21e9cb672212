package billing_test

import (
	"context"
	"testing"

	appbilling "github.com/b2bmarket/backend/internal/application/billing"
	"github.com/b2bmarket/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOrderConfirmedHandlerInvoicesCreditOrders(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodCredit, trade.OrderStatusConfirmed)
	handler := appbilling.NewOrderConfirmedHandler(f.svc, f.invoices, zap.NewNop())

	event := trade.NewOrderConfirmedEvent(order)
	require.NoError(t, handler.Handle(ctx, event))

	exists, err := f.invoices.ExistsByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// redelivery of the same event is a no-op
	require.NoError(t, handler.Handle(ctx, event))
	invoice, err := f.invoices.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Contains(t, invoice.InvoiceNumber, "-0001")
}

func TestOrderConfirmedHandlerIgnoresNonCreditOrders(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusConfirmed)
	handler := appbilling.NewOrderConfirmedHandler(f.svc, f.invoices, zap.NewNop())

	require.NoError(t, handler.Handle(ctx, trade.NewOrderConfirmedEvent(order)))

	exists, err := f.invoices.ExistsByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOrderDeliveredHandlerInvoicesUpfrontOrders(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodBankTransfer, trade.OrderStatusDelivered)
	handler := appbilling.NewOrderDeliveredHandler(f.svc, f.invoices, zap.NewNop())

	require.NoError(t, handler.Handle(ctx, trade.NewOrderDeliveredEvent(order)))

	exists, err := f.invoices.ExistsByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOrderDeliveredHandlerSkipsCreditOrders(t *testing.T) {
	f := setupInvoiceService(t)
	ctx := context.Background()

	order := seedOrder(t, f, trade.PaymentMethodCredit, trade.OrderStatusDelivered)
	handler := appbilling.NewOrderDeliveredHandler(f.svc, f.invoices, zap.NewNop())

	require.NoError(t, handler.Handle(ctx, trade.NewOrderDeliveredEvent(order)))

	exists, err := f.invoices.ExistsByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
