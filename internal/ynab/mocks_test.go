package ynab

import (
	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/category"
	"github.com/brunomvsouza/ynab.go/api/transaction"
)

// MockCategoryAPI is a mock implementation of categoryAPI
type MockCategoryAPI struct {
	GetCategoriesFunc func(budgetID string, f *api.Filter) (*category.SearchResultSnapshot, error)
}

func (m *MockCategoryAPI) GetCategories(budgetID string, f *api.Filter) (*category.SearchResultSnapshot, error) {
	if m.GetCategoriesFunc != nil {
		return m.GetCategoriesFunc(budgetID, f)
	}
	return &category.SearchResultSnapshot{}, nil
}

// MockTransactionAPI is a mock implementation of transactionAPI
type MockTransactionAPI struct {
	GetTransactionsByAccountFunc func(budgetID, accountID string, f *transaction.Filter) ([]*transaction.Transaction, error)
	CreateTransactionsFunc       func(budgetID string, p []transaction.PayloadTransaction) (*transaction.OperationSummary, error)
}

func (m *MockTransactionAPI) GetTransactionsByAccount(budgetID, accountID string, f *transaction.Filter) ([]*transaction.Transaction, error) {
	if m.GetTransactionsByAccountFunc != nil {
		return m.GetTransactionsByAccountFunc(budgetID, accountID, f)
	}
	return nil, nil
}

func (m *MockTransactionAPI) CreateTransactions(budgetID string, p []transaction.PayloadTransaction) (*transaction.OperationSummary, error) {
	if m.CreateTransactionsFunc != nil {
		return m.CreateTransactionsFunc(budgetID, p)
	}
	return &transaction.OperationSummary{}, nil
}
