package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocjay1/ynab-importer/internal/models"
)

const (
	// DefaultTolerance is the default date window, in days, within which
	// an equal amount counts as a duplicate.
	DefaultTolerance = 5
	// DefaultPageSize is the number of transactions the ledger returns
	// per listing call.
	DefaultPageSize = 500

	dateLayout = "2006-01-02"
)

// Index holds existing transaction dates keyed by amount.
type Index struct {
	tolerance int
	byAmount  map[int64][]time.Time
	count     int
}

// NewIndex returns an empty index with the given day tolerance. Negative
// tolerances are treated as zero.
func NewIndex(tolerance int) *Index {
	if tolerance < 0 {
		tolerance = 0
	}
	return &Index{tolerance: tolerance, byAmount: make(map[int64][]time.Time)}
}

// Add records a remote transaction. Deleted transactions and ones with an
// unparseable date are ignored.
func (i *Index) Add(tx models.RemoteTransaction) bool {
	if tx.Deleted {
		return false
	}
	d, err := time.Parse(dateLayout, tx.Date)
	if err != nil {
		return false
	}
	i.byAmount[tx.Amount] = append(i.byAmount[tx.Amount], d)
	i.count++
	return true
}

// Len returns the number of indexed transactions.
func (i *Index) Len() int {
	return i.count
}

// IsDuplicate reports whether a transaction with exactly this amount
// exists within the tolerance window of date.
func (i *Index) IsDuplicate(date string, amount int64) bool {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return false
	}
	for _, existing := range i.byAmount[amount] {
		if absDays(d.Sub(existing)) <= i.tolerance {
			return true
		}
	}
	return false
}

func absDays(d time.Duration) int {
	days := int(d / (24 * time.Hour))
	if days < 0 {
		return -days
	}
	return days
}

// Reconciler filters candidates that already exist in the ledger.
type Reconciler struct {
	Client    TransactionLister
	Tolerance int
	PageSize  int
}

// Reconciliation is the outcome of Reconcile.
type Reconciliation struct {
	Accepted       []models.LedgerTransaction
	Duplicates     []models.LedgerTransaction
	ExistingLoaded int
}

// FetchIndex pages through the account's transactions starting at since.
// Each page's cursor is the day after the latest date seen, and paging
// stops on a short page or when the cursor stops advancing.
func (r *Reconciler) FetchIndex(ctx context.Context, budgetID, accountID string, since time.Time) (*Index, error) {
	pageSize := r.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	idx := NewIndex(r.Tolerance)
	seen := make(map[string]struct{})
	cursor := since.UTC().Truncate(24 * time.Hour)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := r.Client.ListTransactionsSince(ctx, budgetID, accountID, cursor.Format(dateLayout))
		if err != nil {
			return nil, fmt.Errorf("failed to list existing transactions: %w", err)
		}

		var latest time.Time
		for _, tx := range page {
			if d, err := time.Parse(dateLayout, tx.Date); err == nil && d.After(latest) {
				latest = d
			}
			if tx.ID != "" {
				if _, dup := seen[tx.ID]; dup {
					continue
				}
				seen[tx.ID] = struct{}{}
			}
			idx.Add(tx)
		}

		slog.Debug("fetched existing transactions page", "since", cursor.Format(dateLayout), "count", len(page))

		if len(page) < pageSize || latest.IsZero() {
			break
		}
		next := latest.AddDate(0, 0, 1)
		if !next.After(cursor) {
			break
		}
		cursor = next
	}
	return idx, nil
}

// Reconcile splits candidates into accepted and duplicate transactions.
// The history window starts tolerance days before the earliest candidate.
func (r *Reconciler) Reconcile(ctx context.Context, budgetID, accountID string, candidates []models.LedgerTransaction) (*Reconciliation, error) {
	result := &Reconciliation{}
	if len(candidates) == 0 {
		return result, nil
	}

	var earliest time.Time
	for _, c := range candidates {
		d, err := time.Parse(dateLayout, c.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction date %q: %w", c.Date, err)
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}

	tolerance := r.Tolerance
	if tolerance < 0 {
		tolerance = 0
	}
	idx, err := r.FetchIndex(ctx, budgetID, accountID, earliest.AddDate(0, 0, -tolerance))
	if err != nil {
		return nil, err
	}
	result.ExistingLoaded = idx.Len()

	for _, c := range candidates {
		if idx.IsDuplicate(c.Date, c.Amount) {
			result.Duplicates = append(result.Duplicates, c)
			continue
		}
		result.Accepted = append(result.Accepted, c)
	}
	return result, nil
}
