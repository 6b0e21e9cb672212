package billing

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/billing"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest registers money received against an order
type RecordPaymentRequest struct {
	OrderID    uuid.UUID       `json:"order_id" binding:"required"`
	Reference  string          `json:"reference" binding:"required,min=1,max=64"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Currency   string          `json:"currency" binding:"omitempty,len=3"`
	Confirmed  bool            `json:"confirmed"`
	ReceivedAt time.Time       `json:"received_at"`
}

// PaymentRecordedResponse acknowledges a recorded payment. Invoice is empty
// when the payment arrived ahead of invoicing; such payments stay parked
// against the order and are adopted when the invoice is generated.
type PaymentRecordedResponse struct {
	PaymentID uuid.UUID             `json:"payment_id"`
	OrderID   uuid.UUID             `json:"order_id"`
	Reference string                `json:"reference"`
	Status    billing.PaymentStatus `json:"status"`
	Invoice   *InvoiceResponse      `json:"invoice,omitempty"`
}

// CancelInvoiceRequest voids a draft invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// InvoiceResponse represents an invoice in API responses. PaidAmount and
// BalanceDue are computed from confirmed payments at read time.
type InvoiceResponse struct {
	ID            uuid.UUID                `json:"id"`
	InvoiceNumber string                   `json:"invoice_number"`
	OrderID       uuid.UUID                `json:"order_id"`
	OrderNumber   string                   `json:"order_number"`
	SellerID      shared.PartyID           `json:"seller_id"`
	BuyerID       shared.PartyID           `json:"buyer_id"`
	SellerName    string                   `json:"seller_name"`
	BuyerName     string                   `json:"buyer_name"`
	Items         valueobject.LineItems    `json:"items"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	VATRate       decimal.Decimal          `json:"vat_rate"`
	VATAmount     decimal.Decimal          `json:"vat_amount"`
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	PlatformFee   decimal.Decimal          `json:"platform_fee"`
	NetToSeller   decimal.Decimal          `json:"net_to_seller"`
	Currency      valueobject.Currency     `json:"currency"`
	Terms         valueobject.PaymentTerms `json:"terms"`
	DueDate       *time.Time               `json:"due_date,omitempty"`
	Status        billing.InvoiceStatus    `json:"status"`
	PaidAmount    decimal.Decimal          `json:"paid_amount"`
	BalanceDue    decimal.Decimal          `json:"balance_due"`
	IssuedAt      *time.Time               `json:"issued_at,omitempty"`
	PaidAt        *time.Time               `json:"paid_at,omitempty"`
	OverdueAt     *time.Time               `json:"overdue_at,omitempty"`
	CancelledAt   *time.Time               `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// ToInvoiceResponse converts an invoice to its response representation
func ToInvoiceResponse(invoice *billing.Invoice, paidAmount decimal.Decimal) InvoiceResponse {
	return InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		OrderID:       invoice.OrderID,
		OrderNumber:   invoice.OrderNumber,
		SellerID:      invoice.SellerID,
		BuyerID:       invoice.BuyerID,
		SellerName:    invoice.SellerName,
		BuyerName:     invoice.BuyerName,
		Items:         invoice.Items,
		Subtotal:      invoice.Subtotal,
		VATRate:       invoice.VATRate,
		VATAmount:     invoice.VATAmount,
		TotalAmount:   invoice.TotalAmount,
		PlatformFee:   invoice.PlatformFee,
		NetToSeller:   invoice.NetToSeller,
		Currency:      invoice.Currency,
		Terms:         invoice.Terms,
		DueDate:       invoice.DueDate,
		Status:        invoice.Status,
		PaidAmount:    paidAmount,
		BalanceDue:    invoice.BalanceDue(paidAmount),
		IssuedAt:      invoice.IssuedAt,
		PaidAt:        invoice.PaidAt,
		OverdueAt:     invoice.OverdueAt,
		CancelledAt:   invoice.CancelledAt,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}

// InvoiceEventResponse represents one row of the invoice activity log
type InvoiceEventResponse struct {
	EventType  billing.InvoiceEventType `json:"event_type"`
	Actor      shared.PartyID           `json:"actor"`
	ActorType  shared.ActorType         `json:"actor_type"`
	FromStatus billing.InvoiceStatus    `json:"from_status"`
	ToStatus   billing.InvoiceStatus    `json:"to_status"`
	CreatedAt  time.Time                `json:"created_at"`
}

// InvoiceListFilter represents filter options for invoice listings
type InvoiceListFilter struct {
	Status   *billing.InvoiceStatus `form:"status"`
	Page     int                    `form:"page" binding:"omitempty,min=1"`
	PageSize int                    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
