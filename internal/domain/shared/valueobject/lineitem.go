package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// LineItem is a snapshot of a catalog item at the moment a document was
// created. It carries copied name/sku/price values, never live references,
// so later catalog edits cannot change a signed document.
type LineItem struct {
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewLineItem creates a line item with the amount computed from price and quantity
func NewLineItem(name, sku string, unitPrice, quantity decimal.Decimal) LineItem {
	return LineItem{
		Name:      name,
		SKU:       sku,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Amount:    unitPrice.Mul(quantity),
	}
}

// LineItems is stored as a JSON column; the codec lives here at the storage
// boundary instead of threading encoded strings through business logic.
type LineItems []LineItem

// Total returns the sum of all line amounts
func (l LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l {
		total = total.Add(item.Amount)
	}
	return total
}

// Value implements driver.Valuer for JSON storage
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSON storage
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*l = LineItems{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}
