package billing

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the billing domain
const (
	EventTypeInvoiceIssued  = "billing.invoice.issued"
	EventTypeInvoicePaid    = "billing.invoice.paid"
	EventTypeInvoiceOverdue = "billing.invoice.overdue"
)

// InvoiceIssuedEvent is emitted when an invoice is finalized
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	OrderID       uuid.UUID       `json:"order_id"`
	BuyerID       shared.PartyID  `json:"buyer_id"`
	SellerID      shared.PartyID  `json:"seller_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DueDate       time.Time       `json:"due_date"`
}

// NewInvoiceIssuedEvent creates a new invoice issued event
func NewInvoiceIssuedEvent(invoice *Invoice) *InvoiceIssuedEvent {
	event := &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, "Invoice", invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		OrderID:         invoice.OrderID,
		BuyerID:         invoice.BuyerID,
		SellerID:        invoice.SellerID,
		TotalAmount:     invoice.TotalAmount,
	}
	if invoice.DueDate != nil {
		event.DueDate = *invoice.DueDate
	}
	return event
}

// InvoicePaidEvent is emitted when confirmed payments settle the invoice
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	OrderID       uuid.UUID       `json:"order_id"`
	SellerID      shared.PartyID  `json:"seller_id"`
	NetToSeller   decimal.Decimal `json:"net_to_seller"`
}

// NewInvoicePaidEvent creates a new invoice paid event
func NewInvoicePaidEvent(invoice *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		OrderID:         invoice.OrderID,
		SellerID:        invoice.SellerID,
		NetToSeller:     invoice.NetToSeller,
	}
}

// InvoiceOverdueEvent is emitted when an issued invoice passes its due date
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	BuyerID       shared.PartyID  `json:"buyer_id"`
	SellerID      shared.PartyID  `json:"seller_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DueDate       time.Time       `json:"due_date"`
}

// NewInvoiceOverdueEvent creates a new invoice overdue event
func NewInvoiceOverdueEvent(invoice *Invoice) *InvoiceOverdueEvent {
	event := &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceOverdue, "Invoice", invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		BuyerID:         invoice.BuyerID,
		SellerID:        invoice.SellerID,
		TotalAmount:     invoice.TotalAmount,
	}
	if invoice.DueDate != nil {
		event.DueDate = *invoice.DueDate
	}
	return event
}
