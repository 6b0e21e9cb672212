package valueobject

import "time"

// PaymentTerms is the net-payment window agreed for an invoice
type PaymentTerms string

const (
	TermsNet0  PaymentTerms = "NET_0"
	TermsNet7  PaymentTerms = "NET_7"
	TermsNet14 PaymentTerms = "NET_14"
	TermsNet30 PaymentTerms = "NET_30"
)

// DefaultPaymentTerms applies when the seller does not override terms
const DefaultPaymentTerms = TermsNet30

// IsValid checks if the terms value is supported
func (t PaymentTerms) IsValid() bool {
	switch t {
	case TermsNet0, TermsNet7, TermsNet14, TermsNet30:
		return true
	}
	return false
}

// Days returns the payment window length in days
func (t PaymentTerms) Days() int {
	switch t {
	case TermsNet7:
		return 7
	case TermsNet14:
		return 14
	case TermsNet30:
		return 30
	default:
		return 0
	}
}

// DueDate computes the payment due date from the given issue time
func (t PaymentTerms) DueDate(from time.Time) time.Time {
	return from.AddDate(0, 0, t.Days())
}
