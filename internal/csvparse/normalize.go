// Package csvparse reads marketplace order exports and ledger-ready CSV files
// into normalized rows, and writes rows back out as ledger-ready CSV.
package csvparse

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/categorize"
	"github.com/rocjay1/ynab-importer/internal/models"
)

const (
	dedupeMemoPrefix = 100
	utf8BOM          = "\ufeff"
)

// Normalizer turns raw order exports into rows. A nil Keywords disables
// categorization and leaves Category blank for the caller to fill.
type Normalizer struct {
	Keywords *categorize.Keywords
	Payee    string
}

// NormalizeResult is the output of one normalization pass.
type NormalizeResult struct {
	Rows              []models.Row
	Columns           Columns
	SkippedInvalid    int
	SkippedDuplicates int
}

// Normalize reads r once, top to bottom. Rows with an unreadable date or
// amount are dropped; rows repeating an earlier (date, amount, memo) are
// dropped as duplicates. A file without date and amount columns fails.
func (n *Normalizer) Normalize(ctx context.Context, r io.Reader) (*NormalizeResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	reader := newReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, models.ErrEmptyInput
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	header = cleanHeader(header)

	cols, err := ResolveColumns(header)
	if err != nil {
		return nil, err
	}
	logColumns(cols)

	payee := n.Payee
	if payee == "" {
		payee = models.DefaultPayee
	}

	result := &NormalizeResult{Columns: cols}
	seen := make(map[string]struct{})

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.SkippedInvalid++
				continue
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		row, ok := n.normalizeRecord(record, cols, payee)
		if !ok {
			result.SkippedInvalid++
			continue
		}

		key := DedupeKey(row)
		if _, dup := seen[key]; dup {
			result.SkippedDuplicates++
			continue
		}
		seen[key] = struct{}{}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

func (n *Normalizer) normalizeRecord(record []string, cols Columns, payee string) (models.Row, bool) {
	date, ok := ParseDate(field(record, cols.Date))
	if !ok {
		return models.Row{}, false
	}
	amount, ok := ParseAmount(field(record, cols.Amount))
	if !ok {
		return models.Row{}, false
	}

	memo := models.Truncate(strings.TrimSpace(field(record, cols.Memo)), models.MaxMemoLength)
	signed := SignAmount(amount, memo)
	if memo == "" {
		memo = "Order " + date
	}

	row := models.Row{
		Date:    date,
		Payee:   payee,
		Memo:    memo,
		Amount:  signed,
		OrderID: orderID(record, cols, date),
	}
	if n.Keywords != nil {
		row.Category = n.Keywords.Match(memo)
	}
	return row, true
}

func orderID(record []string, cols Columns, date string) string {
	if id := strings.TrimSpace(field(record, cols.OrderID)); id != "" {
		return id
	}
	if cols.OrderTotal >= 0 {
		if total, ok := ParseAmount(field(record, cols.OrderTotal)); ok {
			return date + "|" + total.String()
		}
	}
	return ""
}

// DedupeKey identifies rows that describe the same event within one file.
func DedupeKey(r models.Row) string {
	return fmt.Sprintf("%s|%d|%s", r.Date, r.Milliunits(), models.Truncate(r.Memo, dedupeMemoPrefix))
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader
}

func cleanHeader(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func logColumns(cols Columns) {
	attrs := []any{
		"date", cols.Name(cols.Date),
		"amount", cols.Name(cols.Amount),
	}
	if cols.Memo >= 0 {
		attrs = append(attrs, "memo", cols.Name(cols.Memo))
	}
	if cols.OrderID >= 0 {
		attrs = append(attrs, "order_id", cols.Name(cols.OrderID))
	} else if cols.OrderTotal >= 0 {
		attrs = append(attrs, "order_total", cols.Name(cols.OrderTotal))
	}
	slog.Info("detected columns", attrs...)
}
