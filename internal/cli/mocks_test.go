package cli

import (
	"context"

	"github.com/rocjay1/ynab-importer/internal/models"
)

// MockLedgerClient is a mock implementation of ledger.Client
type MockLedgerClient struct {
	ListCategoriesFunc        func(ctx context.Context, budgetID string) ([]models.CategoryGroup, error)
	ListTransactionsSinceFunc func(ctx context.Context, budgetID, accountID, since string) ([]models.RemoteTransaction, error)
	CreateTransactionsFunc    func(ctx context.Context, budgetID string, txns []models.LedgerTransaction) (*models.CreateResult, error)
}

func (m *MockLedgerClient) ListCategories(ctx context.Context, budgetID string) ([]models.CategoryGroup, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx, budgetID)
	}
	return nil, nil
}

func (m *MockLedgerClient) ListTransactionsSince(ctx context.Context, budgetID, accountID, since string) ([]models.RemoteTransaction, error) {
	if m.ListTransactionsSinceFunc != nil {
		return m.ListTransactionsSinceFunc(ctx, budgetID, accountID, since)
	}
	return nil, nil
}

func (m *MockLedgerClient) CreateTransactions(ctx context.Context, budgetID string, txns []models.LedgerTransaction) (*models.CreateResult, error) {
	if m.CreateTransactionsFunc != nil {
		return m.CreateTransactionsFunc(ctx, budgetID, txns)
	}
	ids := make([]string, len(txns))
	for i := range txns {
		ids[i] = txns[i].ImportID
	}
	return &models.CreateResult{TransactionIDs: ids}, nil
}

// MockClassifier is a mock implementation of categorize.Classifier
type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, text string, categories []string) (string, error)
}

func (m *MockClassifier) Classify(ctx context.Context, text string, categories []string) (string, error) {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text, categories)
	}
	return models.DefaultCategory, nil
}
