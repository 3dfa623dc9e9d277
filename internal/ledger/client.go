// Package ledger builds ledger transactions from normalized rows and
// reconciles them against transactions already in the ledger.
package ledger

import (
	"context"

	"github.com/rocjay1/ynab-importer/internal/models"
)

// Client is the remote ledger API the importer depends on.
type Client interface {
	ListCategories(ctx context.Context, budgetID string) ([]models.CategoryGroup, error)
	TransactionLister
	CreateTransactions(ctx context.Context, budgetID string, txns []models.LedgerTransaction) (*models.CreateResult, error)
}

// TransactionLister returns the account's transactions dated on or after
// since (YYYY-MM-DD). The ledger may cap the number returned per call.
type TransactionLister interface {
	ListTransactionsSince(ctx context.Context, budgetID, accountID, since string) ([]models.RemoteTransaction, error)
}
