package models

import (
	"github.com/shopspring/decimal"
)

// MaxMemoLength is the ledger's memo limit in characters.
const MaxMemoLength = 500

// Row is a normalized order line: the interchange format between the CSV
// parsers and the transaction builder.
type Row struct {
	Date     string          `json:"date"` // YYYY-MM-DD
	Payee    string          `json:"payee"`
	Memo     string          `json:"memo"`
	Amount   decimal.Decimal `json:"amount"` // negative = outflow
	Category string          `json:"category"`
	OrderID  string          `json:"orderId,omitempty"`
}

// Milliunits returns the row amount in ledger milliunits.
func (r Row) Milliunits() int64 {
	return ToMilliunits(r.Amount)
}

// Truncate returns s cut to at most n characters.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
