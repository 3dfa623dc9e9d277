package csvparse

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/models"
)

// LedgerHeader is the column layout of a ledger-ready file.
var LedgerHeader = []string{"Date", "Payee", "Memo", "Amount", "Category", "OrderId"}

// LedgerOptions controls how a ledger-ready file is read back.
type LedgerOptions struct {
	// SignedRefunds keeps positive amounts positive. By default every
	// positive amount is treated as a stray outflow and negated.
	SignedRefunds bool
	Payee         string
}

// LedgerParseResult is the output of ParseLedgerReady.
type LedgerParseResult struct {
	Rows           []models.Row
	HasOrderID     bool // the header carried an OrderId column
	SkippedInvalid int
}

// ParseLedgerReady reads a Date,Payee,Memo,Amount,Category[,OrderId] file.
func ParseLedgerReady(ctx context.Context, r io.Reader, opts LedgerOptions) (*LedgerParseResult, error) {
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

	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(h)
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	col := func(name string) int {
		if i, ok := idx[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}

	dateCol, amountCol := col("Date"), col("Amount")
	if dateCol < 0 || amountCol < 0 {
		return nil, fmt.Errorf("%w (available: %s)", models.ErrMissingColumns, strings.Join(header, ", "))
	}
	payeeCol, memoCol, categoryCol, orderCol := col("Payee"), col("Memo"), col("Category"), col("OrderId")

	defaultPayee := opts.Payee
	if defaultPayee == "" {
		defaultPayee = models.DefaultPayee
	}

	result := &LedgerParseResult{HasOrderID: orderCol >= 0}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
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

		date, ok := ParseDate(field(record, dateCol))
		if !ok {
			result.SkippedInvalid++
			continue
		}
		amount, ok := ParseAmount(field(record, amountCol))
		if !ok {
			result.SkippedInvalid++
			continue
		}
		if amount.IsPositive() && !opts.SignedRefunds {
			amount = amount.Neg()
		}

		payee := field(record, payeeCol)
		if payee == "" {
			payee = defaultPayee
		}
		category := field(record, categoryCol)
		if category == "" {
			category = models.DefaultCategory
		}

		result.Rows = append(result.Rows, models.Row{
			Date:     date,
			Payee:    payee,
			Memo:     models.Truncate(field(record, memoCol), models.MaxMemoLength),
			Amount:   amount,
			Category: category,
			OrderID:  field(record, orderCol),
		})
	}
	return result, nil
}
