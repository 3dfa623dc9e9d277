package models

import (
	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// ToMilliunits converts a currency amount to integer milliunits, rounding
// half away from zero.
func ToMilliunits(amount decimal.Decimal) int64 {
	return amount.Mul(thousand).Round(0).IntPart()
}

// FromMilliunits converts milliunits back to a currency amount.
func FromMilliunits(m int64) decimal.Decimal {
	return decimal.New(m, -3)
}

// SubTransaction is one category share of a split transaction.
type SubTransaction struct {
	Amount     int64   `json:"amount"`
	CategoryID *string `json:"category_id"`
	Memo       *string `json:"memo,omitempty"`
}

// LedgerTransaction is a transaction ready to be submitted to the ledger.
// Either CategoryID or SubTransactions is set, never both.
type LedgerTransaction struct {
	AccountID       string           `json:"account_id"`
	Date            string           `json:"date"`
	Amount          int64            `json:"amount"`
	PayeeName       string           `json:"payee_name,omitempty"`
	Memo            string           `json:"memo,omitempty"`
	CategoryID      *string          `json:"category_id"`
	Cleared         string           `json:"cleared"`
	Approved        bool             `json:"approved"`
	ImportID        string           `json:"import_id"`
	SubTransactions []SubTransaction `json:"subtransactions,omitempty"`
}

// IsSplit reports whether the transaction is divided across categories.
func (t LedgerTransaction) IsSplit() bool {
	return len(t.SubTransactions) > 0
}

// RemoteTransaction is the subset of an existing ledger transaction needed
// for duplicate detection.
type RemoteTransaction struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Amount  int64  `json:"amount"`
	Deleted bool   `json:"deleted"`
}

// CreateResult is the ledger's answer to a batch create.
type CreateResult struct {
	TransactionIDs     []string `json:"transaction_ids"`
	DuplicateImportIDs []string `json:"duplicate_import_ids"`
}
