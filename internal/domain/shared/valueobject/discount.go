package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DiscountType distinguishes a flat amount from a percentage
type DiscountType string

const (
	DiscountTypeFlat    DiscountType = "FLAT"
	DiscountTypePercent DiscountType = "PERCENT"
)

// Discount is a tagged value applied to a gross amount before tax
type Discount struct {
	Type   DiscountType    `json:"type"`
	Amount decimal.Decimal `json:"value"`
}

// NoDiscount returns a zero flat discount
func NoDiscount() Discount {
	return Discount{Type: DiscountTypeFlat, Amount: decimal.Zero}
}

// NewFlatDiscount creates a flat-amount discount
func NewFlatDiscount(amount decimal.Decimal) (Discount, error) {
	if amount.IsNegative() {
		return Discount{}, errors.New("discount amount cannot be negative")
	}
	return Discount{Type: DiscountTypeFlat, Amount: amount}, nil
}

// NewPercentDiscount creates a percentage discount (0-100)
func NewPercentDiscount(percent decimal.Decimal) (Discount, error) {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return Discount{}, errors.New("discount percent must be between 0 and 100")
	}
	return Discount{Type: DiscountTypePercent, Amount: percent}, nil
}

// IsZero returns true if the discount has no effect
func (d Discount) IsZero() bool {
	return d.Amount.IsZero()
}

// AmountOff returns the absolute amount deducted from the given gross value
func (d Discount) AmountOff(gross decimal.Decimal) decimal.Decimal {
	switch d.Type {
	case DiscountTypePercent:
		return gross.Mul(d.Amount).Div(decimal.NewFromInt(100)).Round(2)
	default:
		return d.Amount
	}
}

// Apply returns the gross value with the discount deducted, floored at zero
func (d Discount) Apply(gross decimal.Decimal) decimal.Decimal {
	net := gross.Sub(d.AmountOff(gross))
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// Value implements driver.Valuer for JSON storage
func (d Discount) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSON storage
func (d *Discount) Scan(value interface{}) error {
	if value == nil {
		*d = NoDiscount()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan Discount: unsupported type %T", value)
	}

	if len(bytes) == 0 {
		*d = NoDiscount()
		return nil
	}

	return json.Unmarshal(bytes, d)
}
