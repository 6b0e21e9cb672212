package shared

import "context"

// Notification kinds emitted on key lifecycle transitions
const (
	NotificationQuoteSent      = "QUOTE_SENT"
	NotificationOrderCreated   = "ORDER_CREATED"
	NotificationOrderConfirmed = "ORDER_CONFIRMED"
	NotificationOrderShipped   = "ORDER_SHIPPED"
	NotificationInvoiceIssued  = "INVOICE_ISSUED"
)

// Notifier is the fire-and-forget notification sink. Delivery is owned by a
// collaborator outside this core; failures must never affect the lifecycle
// transition that triggered the notification.
type Notifier interface {
	Notify(ctx context.Context, userID PartyID, kind string, entityRef string, metadata map[string]string) error
}
