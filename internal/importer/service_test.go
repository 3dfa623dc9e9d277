package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rocjay1/ynab-importer/internal/categorize"
	"github.com/rocjay1/ynab-importer/internal/config"
	"github.com/rocjay1/ynab-importer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.AccessToken = "token"
	cfg.BudgetID = "budget"
	cfg.AccountID = "account"
	return cfg
}

func testGroups() []models.CategoryGroup {
	return []models.CategoryGroup{{
		ID:   "g1",
		Name: "Everyday",
		Categories: []models.Category{
			{ID: "cat-groceries", Name: "Groceries"},
			{ID: "cat-kids", Name: "Kids Supplies"},
			{ID: "cat-hidden", Name: "Hidden", Hidden: true},
		},
	}}
}

func TestImport_MissingConfig(t *testing.T) {
	client := &MockLedgerClient{
		ListCategoriesFunc: func(ctx context.Context, budgetID string) ([]models.CategoryGroup, error) {
			t.Fatal("ledger must not be contacted")
			return nil, nil
		},
	}
	svc := &Service{Config: config.Default(), Ledger: client}

	_, err := svc.Import(context.Background(), strings.NewReader("Date,Amount\n"), ImportOptions{})
	assert.ErrorIs(t, err, models.ErrMissingConfig)
}

func TestImport_SplitsAndDuplicates(t *testing.T) {
	content := `Date,Payee,Memo,Amount,Category,OrderId
2025-01-15,Amazon.ca,Coffee,-20.00,Groceries,112-5566
2025-01-15,Amazon.ca,Crayons,-5.00,Kids Supplies,112-5566
2025-01-20,Amazon.ca,Lamp,-12.00,Groceries,112-7777
2025-01-21,Amazon.ca,Nothing,0.00,Groceries,112-8888
`
	client := &MockLedgerClient{
		ListCategoriesFunc: func(ctx context.Context, budgetID string) ([]models.CategoryGroup, error) {
			assert.Equal(t, "budget", budgetID)
			return testGroups(), nil
		},
		ListTransactionsSinceFunc: func(ctx context.Context, budgetID, accountID, since string) ([]models.RemoteTransaction, error) {
			assert.Equal(t, "2025-01-10", since)
			return []models.RemoteTransaction{{ID: "r1", Date: "2025-01-22", Amount: -12000}}, nil
		},
	}
	svc := &Service{Config: testConfig(), Ledger: client}

	report, err := svc.Import(context.Background(), strings.NewReader(content), ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.SkippedDuplicates)
	assert.Equal(t, 1, report.SkippedZeroAmount)
	assert.Equal(t, 0, report.SkippedWithinFile)
	assert.Equal(t, 1, report.ExistingLoaded)
	assert.NotEmpty(t, report.RunID)
	assert.Empty(t, report.Message)

	require.Len(t, client.created, 1)
	require.Len(t, client.created[0], 1)
	tx := client.created[0][0]
	assert.Equal(t, int64(-25000), tx.Amount)
	assert.Equal(t, "account", tx.AccountID)
	require.Len(t, tx.SubTransactions, 2)
	assert.Equal(t, "cat-groceries", *tx.SubTransactions[0].CategoryID)
	assert.Equal(t, "cat-kids", *tx.SubTransactions[1].CategoryID)
}

func TestImport_WithinFileDedupe(t *testing.T) {
	content := `Date,Payee,Memo,Amount,Category
2025-01-15,Amazon.ca,Coffee,-20.00,Groceries
2025-01-15,Amazon.ca,Coffee,-20.00,Groceries
2025-01-16,Amazon.ca,Tea,4.00,Groceries
`
	client := &MockLedgerClient{
		ListCategoriesFunc: func(ctx context.Context, budgetID string) ([]models.CategoryGroup, error) {
			return testGroups(), nil
		},
		CreateTransactionsFunc: func(ctx context.Context, budgetID string, txns []models.LedgerTransaction) (*models.CreateResult, error) {
			return &models.CreateResult{
				TransactionIDs:     []string{"t1"},
				DuplicateImportIDs: []string{txns[1].ImportID},
			}, nil
		},
	}
	svc := &Service{Config: testConfig(), Ledger: client}

	report, err := svc.Import(context.Background(), strings.NewReader(content), ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.SkippedWithinFile)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.APIDuplicates)

	require.Len(t, client.created, 1)
	require.Len(t, client.created[0], 2)
	assert.Equal(t, int64(-4000), client.created[0][1].Amount)
}

func TestImport_SignedRefunds(t *testing.T) {
	content := "Date,Payee,Memo,Amount,Category\n2025-01-16,Amazon.ca,Refund,4.00,Groceries\n"
	client := &MockLedgerClient{}
	svc := &Service{Config: testConfig(), Ledger: client}

	_, err := svc.Import(context.Background(), strings.NewReader(content), ImportOptions{SignedRefunds: true})
	require.NoError(t, err)
	require.Len(t, client.created, 1)
	assert.Equal(t, int64(4000), client.created[0][0].Amount)
	assert.Nil(t, client.created[0][0].CategoryID)
}

func TestImport_NoRows(t *testing.T) {
	client := &MockLedgerClient{}
	svc := &Service{Config: testConfig(), Ledger: client}

	report, err := svc.Import(context.Background(), strings.NewReader("Date,Payee,Memo,Amount,Category\n"), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, MessageNoRows, report.Message)
	assert.Empty(t, client.created)
}

func TestImport_AllDuplicates(t *testing.T) {
	content := "Date,Payee,Memo,Amount,Category\n2025-01-15,Amazon.ca,Coffee,-20.00,Groceries\n2025-01-16,Amazon.ca,Free,0,Groceries\n"
	client := &MockLedgerClient{
		ListTransactionsSinceFunc: func(ctx context.Context, budgetID, accountID, since string) ([]models.RemoteTransaction, error) {
			return []models.RemoteTransaction{{ID: "r1", Date: "2025-01-15", Amount: -20000}}, nil
		},
	}
	svc := &Service{Config: testConfig(), Ledger: client}

	report, err := svc.Import(context.Background(), strings.NewReader(content), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 1, report.SkippedDuplicates)
	assert.Equal(t, 1, report.SkippedZeroAmount)
	assert.Equal(t, MessageNothingNew, report.Message)
	assert.Empty(t, client.created)
}

func TestImport_APIError(t *testing.T) {
	apiErr := &models.APIError{StatusCode: 401, Detail: "Unauthorized"}
	client := &MockLedgerClient{
		ListCategoriesFunc: func(ctx context.Context, budgetID string) ([]models.CategoryGroup, error) {
			return nil, apiErr
		},
	}
	svc := &Service{Config: testConfig(), Ledger: client}

	_, err := svc.Import(context.Background(), strings.NewReader("Date,Payee,Memo,Amount,Category\n2025-01-15,,x,-1,\n"), ImportOptions{})
	var got *models.APIError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "Unauthorized", got.Detail)
}

func TestNormalize_Keywords(t *testing.T) {
	kw, err := categorize.LoadEmbedded()
	require.NoError(t, err)
	svc := &Service{Keywords: kw}

	out, err := svc.Normalize(context.Background(), strings.NewReader("date,amount,title\n2025-01-15,42.99,Toy Truck\n2025-01-16,3.00,Mystery\n"), NormalizeOptions{})
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "Kids Supplies", out.Rows[0].Category)
	assert.Equal(t, models.DefaultCategory, out.Rows[1].Category)
	assert.Len(t, out.Breakdown, 2)
}

func TestNormalize_NoKeywords(t *testing.T) {
	kw, err := categorize.LoadEmbedded()
	require.NoError(t, err)
	svc := &Service{Keywords: kw}

	out, err := svc.Normalize(context.Background(), strings.NewReader("date,amount,title\n2025-01-15,42.99,Toy Truck\n"), NormalizeOptions{NoKeywords: true})
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "", out.Rows[0].Category)
}

func TestNormalize_Classifier(t *testing.T) {
	kw, err := categorize.LoadEmbedded()
	require.NoError(t, err)

	client := &MockLedgerClient{
		ListCategoriesFunc: func(ctx context.Context, budgetID string) ([]models.CategoryGroup, error) {
			return testGroups(), nil
		},
	}
	classifier := &MockClassifier{
		ClassifyFunc: func(ctx context.Context, text string, categories []string) (string, error) {
			assert.Equal(t, []string{"Groceries", "Kids Supplies"}, categories)
			if text == "Espresso" {
				return "groceries", nil
			}
			return "", errors.New("model unavailable")
		},
	}
	svc := &Service{Config: testConfig(), Ledger: client, Keywords: kw, Classifier: classifier}

	out, err := svc.Normalize(context.Background(), strings.NewReader("date,amount,title\n2025-01-15,5.00,Espresso\n2025-01-16,9.00,Toy car\n"), NormalizeOptions{})
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "Groceries", out.Rows[0].Category)
	assert.Equal(t, "Kids Supplies", out.Rows[1].Category)
}

func TestNormalize_ClassifierWithoutLedger(t *testing.T) {
	classifier := &MockClassifier{
		ClassifyFunc: func(ctx context.Context, text string, categories []string) (string, error) {
			assert.Equal(t, []string{models.DefaultCategory}, categories)
			return models.DefaultCategory, nil
		},
	}
	svc := &Service{Classifier: classifier}

	out, err := svc.Normalize(context.Background(), strings.NewReader("date,amount,title\n2025-01-15,5.00,Thing\n"), NormalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategory, out.Rows[0].Category)
}

func TestNormalize_MissingColumns(t *testing.T) {
	svc := &Service{}
	_, err := svc.Normalize(context.Background(), strings.NewReader("foo,bar\n1,2\n"), NormalizeOptions{})
	assert.ErrorIs(t, err, models.ErrMissingColumns)
}

func TestBreakdown(t *testing.T) {
	rows := []models.Row{
		{Category: "Groceries"}, {Category: "Wardrobe"}, {Category: "Groceries"}, {Category: ""},
	}
	got := Breakdown(rows)
	assert.Equal(t, []models.CategoryCount{
		{Category: "Groceries", Count: 2},
		{Category: models.DefaultCategory, Count: 1},
		{Category: "Wardrobe", Count: 1},
	}, got)
}
