package csvparse

import (
	"fmt"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/models"
)

// Candidate header names per field, in order of preference.
var (
	DateColumns       = []string{"order.date", "order date", "order_date", "date", "order placed", "charged on"}
	AmountColumns     = []string{"order.total", "order total", "order_total", "item total", "item.total", "total", "amount", "price"}
	MemoColumns       = []string{"item.title", "item title", "item_title", "title", "product", "description", "item", "memo", "order.items"}
	OrderIDColumns    = []string{"order id", "order number", "order_id", "orderid"}
	OrderTotalColumns = []string{"order.total", "order total", "order_total"}
)

// Columns holds the index of each detected column, or -1 when absent.
type Columns struct {
	Date       int
	Amount     int
	Memo       int
	OrderID    int
	OrderTotal int

	headers []string
}

// Name returns the header text at index i, or "" for -1.
func (c Columns) Name(i int) string {
	if i < 0 || i >= len(c.headers) {
		return ""
	}
	return c.headers[i]
}

// ResolveColumn finds the header matching one of candidates. Exact
// case-insensitive matches are tried first in candidate order; failing that,
// spaces and periods are stripped and the first header containing a
// candidate wins.
func ResolveColumn(headers []string, candidates []string) (int, bool) {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, c := range candidates {
		c = strings.ToLower(c)
		for i, h := range lowered {
			if h == c {
				return i, true
			}
		}
	}

	for _, c := range candidates {
		nc := squash(strings.ToLower(c))
		if nc == "" {
			continue
		}
		for i, h := range lowered {
			if strings.Contains(squash(h), nc) {
				return i, true
			}
		}
	}
	return -1, false
}

func squash(s string) string {
	return strings.NewReplacer(" ", "", ".", "", "\t", "").Replace(s)
}

// ResolveColumns detects every semantic column in headers. Date and amount
// are required; the rest degrade to -1.
func ResolveColumns(headers []string) (Columns, error) {
	cols := Columns{headers: headers}
	cols.Date, _ = ResolveColumn(headers, DateColumns)
	cols.Amount, _ = ResolveColumn(headers, AmountColumns)
	cols.Memo, _ = ResolveColumn(headers, MemoColumns)
	cols.OrderID, _ = ResolveColumn(headers, OrderIDColumns)
	cols.OrderTotal, _ = ResolveColumn(headers, OrderTotalColumns)

	if cols.Date < 0 || cols.Amount < 0 {
		return cols, fmt.Errorf("%w (available: %s)", models.ErrMissingColumns, strings.Join(headers, ", "))
	}
	return cols, nil
}
