package billing

import (
	"fmt"
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusIssued || target == InvoiceStatusCancelled
	case InvoiceStatusIssued:
		return target == InvoiceStatusPaid || target == InvoiceStatusOverdue
	case InvoiceStatusOverdue:
		return target == InvoiceStatusPaid
	default:
		return false
	}
}

// VATRate is the value-added tax applied to every invoice subtotal
var VATRate = decimal.NewFromFloat(0.15)

// PlatformFeeRate is the marketplace's cut of the invoice total. The field
// is carried on every invoice so a future non-zero rate needs no migration.
var PlatformFeeRate = decimal.Zero

// InvoiceSource carries the frozen order and party details an invoice is
// built from. Party names are snapshotted so later profile edits cannot
// change an issued document.
type InvoiceSource struct {
	OrderID     uuid.UUID
	OrderNumber string
	SellerID    shared.PartyID
	BuyerID     shared.PartyID
	SellerName  string
	BuyerName   string
	Items       valueobject.LineItems
	Subtotal    decimal.Decimal
	Currency    valueobject.Currency
}

// Invoice is the billing aggregate for a single order. Once issued the
// financial fields never change again; only status, payment and overdue
// markers move.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string                   `gorm:"uniqueIndex;size:50"`
	OrderID       uuid.UUID                `gorm:"type:uuid;uniqueIndex"`
	OrderNumber   string                   `gorm:"size:50"`
	SellerID      shared.PartyID           `gorm:"index;size:64"`
	BuyerID       shared.PartyID           `gorm:"index;size:64"`
	SellerName    string
	BuyerName     string
	Items         valueobject.LineItems    `gorm:"type:jsonb"`
	Subtotal      decimal.Decimal          `gorm:"type:decimal(20,4)"`
	VATRate       decimal.Decimal          `gorm:"type:decimal(8,4)"`
	VATAmount     decimal.Decimal          `gorm:"type:decimal(20,4)"`
	TotalAmount   decimal.Decimal          `gorm:"type:decimal(20,4)"`
	PlatformFee   decimal.Decimal          `gorm:"type:decimal(20,4)"`
	NetToSeller   decimal.Decimal          `gorm:"type:decimal(20,4)"`
	Currency      valueobject.Currency     `gorm:"size:8"`
	Terms         valueobject.PaymentTerms `gorm:"size:16"`
	DueDate       *time.Time               `gorm:"index"`
	Status        InvoiceStatus            `gorm:"index;size:32"`
	IssuedAt      *time.Time
	IssuedBy      shared.PartyID `gorm:"size:64"`
	PaidAt        *time.Time
	OverdueAt     *time.Time
	CancelledAt   *time.Time
	CancelReason  string
}

// NewInvoice creates a draft invoice with all financial fields computed
func NewInvoice(invoiceNumber string, src InvoiceSource, terms valueobject.PaymentTerms) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewValidationError("Invoice number cannot be empty")
	}
	if src.Subtotal.IsNegative() {
		return nil, shared.NewValidationError("Invoice subtotal cannot be negative")
	}
	if !terms.IsValid() {
		terms = valueobject.DefaultPaymentTerms
	}

	vat := src.Subtotal.Mul(VATRate).Round(2)
	total := src.Subtotal.Add(vat)
	fee := total.Mul(PlatformFeeRate).Round(2)

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		OrderID:           src.OrderID,
		OrderNumber:       src.OrderNumber,
		SellerID:          src.SellerID,
		BuyerID:           src.BuyerID,
		SellerName:        src.SellerName,
		BuyerName:         src.BuyerName,
		Items:             src.Items,
		Subtotal:          src.Subtotal,
		VATRate:           VATRate,
		VATAmount:         vat,
		TotalAmount:       total,
		PlatformFee:       fee,
		NetToSeller:       total.Sub(fee),
		Currency:          src.Currency,
		Terms:             terms,
		Status:            InvoiceStatusDraft,
	}, nil
}

// Issue finalizes the invoice and starts the payment clock
func (i *Invoice) Issue(issuedBy shared.PartyID, now time.Time) error {
	if !i.Status.CanTransitionTo(InvoiceStatusIssued) {
		return shared.NewConflictError(fmt.Sprintf("Cannot issue invoice in %s status", i.Status))
	}

	due := i.Terms.DueDate(now)
	i.Status = InvoiceStatusIssued
	i.IssuedAt = &now
	i.IssuedBy = issuedBy
	i.DueDate = &due
	i.UpdatedAt = now
	i.AddDomainEvent(NewInvoiceIssuedEvent(i))
	return nil
}

// Cancel voids the invoice. Only drafts can be cancelled; an issued invoice
// is a legal document and stays on record.
func (i *Invoice) Cancel(reason string, now time.Time) error {
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewConflictError(fmt.Sprintf("Cannot cancel invoice in %s status", i.Status))
	}

	i.Status = InvoiceStatusCancelled
	i.CancelledAt = &now
	i.CancelReason = reason
	i.UpdatedAt = now
	return nil
}

// MarkPaid settles the invoice once confirmed payments cover the total
func (i *Invoice) MarkPaid(confirmedTotal decimal.Decimal, now time.Time) error {
	if !i.Status.CanTransitionTo(InvoiceStatusPaid) {
		return shared.NewConflictError(fmt.Sprintf("Cannot mark invoice paid in %s status", i.Status))
	}
	if confirmedTotal.LessThan(i.TotalAmount) {
		return shared.NewConflictError(fmt.Sprintf(
			"Confirmed payments %s do not cover invoice total %s",
			confirmedTotal.StringFixed(2), i.TotalAmount.StringFixed(2)))
	}

	i.Status = InvoiceStatusPaid
	i.PaidAt = &now
	i.UpdatedAt = now
	i.AddDomainEvent(NewInvoicePaidEvent(i))
	return nil
}

// MarkOverdue flags an issued invoice whose due date has passed
func (i *Invoice) MarkOverdue(now time.Time) error {
	if !i.Status.CanTransitionTo(InvoiceStatusOverdue) {
		return shared.NewConflictError(fmt.Sprintf("Cannot mark invoice overdue in %s status", i.Status))
	}
	if i.DueDate == nil || !i.DueDate.Before(now) {
		return shared.NewConflictError("Invoice is not past its due date")
	}

	i.Status = InvoiceStatusOverdue
	i.OverdueAt = &now
	i.UpdatedAt = now
	i.AddDomainEvent(NewInvoiceOverdueEvent(i))
	return nil
}

// BalanceDue returns what remains to be paid given confirmed payments
func (i *Invoice) BalanceDue(confirmedTotal decimal.Decimal) decimal.Decimal {
	balance := i.TotalAmount.Sub(confirmedTotal)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// VisibleToBuyer reports whether the buyer may see the invoice. Drafts are
// seller-side working documents.
func (i *Invoice) VisibleToBuyer() bool {
	return i.Status != InvoiceStatusDraft
}
