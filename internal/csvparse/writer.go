package csvparse

import (
	"bufio"
	"io"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/models"
	"github.com/shopspring/decimal"
)

// WriteCSV writes rows as a ledger-ready file. The memo is always quoted;
// other fields are quoted only when they need it.
func WriteCSV(w io.Writer, rows []models.Row) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(LedgerHeader, ",") + "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		fields := []string{
			quoteIfNeeded(r.Date),
			quoteIfNeeded(r.Payee),
			quote(r.Memo),
			formatAmount(r.Amount),
			quoteIfNeeded(r.Category),
			quoteIfNeeded(r.OrderID),
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// formatAmount writes cents, or milliunits when the amount has a sub-cent
// part, so re-reading the file yields the same milliunit value.
func formatAmount(d decimal.Decimal) string {
	if d.Round(2).Equal(d) {
		return d.StringFixed(2)
	}
	return d.StringFixed(3)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsAny(s, ",\"\r\n") || s[0] == ' ' || s[0] == '\t' {
		return quote(s)
	}
	return s
}
