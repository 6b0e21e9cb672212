package quoting

import (
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteRevision is an immutable snapshot of a quote's terms at a given
// revision number. One row is appended per edit so the negotiation history
// survives later changes to the quote itself.
type QuoteRevision struct {
	ID            uuid.UUID             `gorm:"type:uuid;primaryKey"`
	QuoteID       uuid.UUID             `gorm:"type:uuid;index:idx_quote_revision,unique"`
	Revision      int                   `gorm:"index:idx_quote_revision,unique"`
	UnitPrice     decimal.Decimal       `gorm:"type:decimal(20,4)"`
	Quantity      decimal.Decimal       `gorm:"type:decimal(20,4)"`
	Discount      valueobject.Discount  `gorm:"type:jsonb"`
	TotalPrice    decimal.Decimal       `gorm:"type:decimal(20,4)"`
	Currency      valueobject.Currency  `gorm:"size:8"`
	DeliveryTerms string
	DeliveryDays  int
	ValidUntil    time.Time
	Items         valueobject.LineItems `gorm:"type:jsonb"`
	Status        QuoteStatus           `gorm:"size:32"`
	IsLatest      bool                  `gorm:"index"`
	CreatedAt     time.Time
}

// NewQuoteRevision snapshots the quote's current terms
func NewQuoteRevision(quote *Quote) *QuoteRevision {
	return &QuoteRevision{
		ID:            uuid.New(),
		QuoteID:       quote.ID,
		Revision:      quote.Revision,
		UnitPrice:     quote.UnitPrice,
		Quantity:      quote.Quantity,
		Discount:      quote.Discount,
		TotalPrice:    quote.TotalPrice,
		Currency:      quote.Currency,
		DeliveryTerms: quote.DeliveryTerms,
		DeliveryDays:  quote.DeliveryDays,
		ValidUntil:    quote.ValidUntil,
		Items:         quote.Items,
		Status:        quote.Status,
		IsLatest:      true,
		CreatedAt:     time.Now(),
	}
}
