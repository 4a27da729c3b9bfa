package dto

import (
	"github.com/shopspring/decimal"

	"github.com/banca/opledger/internal/domain"
)

// Amount is a decimal that is written as a string with the ledger's fixed scale,
// so 100 goes out as "100.0000".
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.StringFixed(domain.AmountScale) + `"`), nil
}
