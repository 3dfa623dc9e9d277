package ledger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/models"
)

const groupMemoPrefix = 60

// Builder groups rows into ledger transactions: one per order, splitting
// the order across categories when its rows disagree.
type Builder struct {
	AccountID  string
	Categories *CategoryIndex
	Payee      string
	// SeparateUngrouped turns off the merge of identical-looking rows that
	// have no order id; each such row becomes its own transaction.
	SeparateUngrouped bool
}

// BuildResult is the output of Build.
type BuildResult struct {
	Transactions  []models.LedgerTransaction
	NetZeroGroups int
	Unmapped      []string // category names with no ledger id
}

type group struct {
	rows  []models.Row
	total int64
}

type categoryShare struct {
	id     *string
	amount int64
}

// GroupKey returns the order id, or a date|milliunits|memo key for rows
// without one.
func GroupKey(r models.Row) string {
	if id := strings.TrimSpace(r.OrderID); id != "" {
		return id
	}
	return fmt.Sprintf("%s|%d|%s", r.Date, r.Milliunits(), models.Truncate(r.Memo, groupMemoPrefix))
}

// Build groups rows in first-seen order and returns one transaction per
// group with a non-zero total.
func (b *Builder) Build(rows []models.Row) BuildResult {
	var (
		order  []string
		groups = make(map[string]*group)
	)
	for i, r := range rows {
		key := GroupKey(r)
		if b.SeparateUngrouped && strings.TrimSpace(r.OrderID) == "" {
			key = fmt.Sprintf("#%d", i)
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, r)
		g.total += r.Milliunits()
	}

	var result BuildResult
	unmapped := make(map[string]bool)
	occurrences := make(map[string]int)

	for _, key := range order {
		g := groups[key]
		if g.total == 0 {
			result.NetZeroGroups++
			continue
		}

		shares := b.shares(g.rows, unmapped, &result)
		first := g.rows[0]

		payee := strings.TrimSpace(first.Payee)
		if payee == "" {
			payee = b.payee()
		}
		memo := models.Truncate(strings.TrimSpace(first.Memo), models.MaxMemoLength)

		occKey := fmt.Sprintf("%d:%s", g.total, first.Date)
		occurrences[occKey]++

		tx := models.LedgerTransaction{
			AccountID: b.AccountID,
			Date:      first.Date,
			Amount:    g.total,
			PayeeName: payee,
			Memo:      memo,
			Cleared:   "uncleared",
			Approved:  false,
			ImportID:  ImportID(g.total, first.Date, occurrences[occKey]),
		}

		if len(shares) == 1 {
			tx.CategoryID = shares[0].id
		} else {
			for _, s := range shares {
				tx.SubTransactions = append(tx.SubTransactions, models.SubTransaction{
					Amount:     s.amount,
					CategoryID: s.id,
				})
			}
			if tx.Memo == "" {
				tx.Memo = models.Truncate(fmt.Sprintf("Order %s (split)", first.Date), models.MaxMemoLength)
			}
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result
}

// shares sums row amounts per resolved category id, in first-seen order.
func (b *Builder) shares(rows []models.Row, unmapped map[string]bool, result *BuildResult) []categoryShare {
	var shares []categoryShare
	pos := make(map[string]int)
	for _, r := range rows {
		id := b.Categories.Lookup(r.Category)
		if id == nil && !models.IsUncategorized(r.Category) && !unmapped[r.Category] {
			unmapped[r.Category] = true
			result.Unmapped = append(result.Unmapped, r.Category)
			slog.Warn("category not found in ledger, leaving uncategorized", "category", r.Category)
		}

		key := ""
		if id != nil {
			key = *id
		}
		if i, ok := pos[key]; ok {
			shares[i].amount += r.Milliunits()
			continue
		}
		pos[key] = len(shares)
		shares = append(shares, categoryShare{id: id, amount: r.Milliunits()})
	}
	return shares
}

func (b *Builder) payee() string {
	if b.Payee != "" {
		return b.Payee
	}
	return models.DefaultPayee
}

// ImportID is the ledger's idempotency token for a transaction: the same
// amount and date always yield the same id, with occurrence distinguishing
// repeats within one batch.
func ImportID(milliunits int64, date string, occurrence int) string {
	return fmt.Sprintf("YNAB:%d:%s:%d", milliunits, date, occurrence)
}
