// Package ynab adapts the ynab.go SDK to the importer's ledger.Client.
package ynab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sdk "github.com/brunomvsouza/ynab.go"
	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/category"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/rocjay1/ynab-importer/internal/models"
)

// DefaultBaseURL is the public YNAB API root used for split creates.
const DefaultBaseURL = "https://api.ynab.com/v1"

type categoryAPI interface {
	GetCategories(budgetID string, f *api.Filter) (*category.SearchResultSnapshot, error)
}

type transactionAPI interface {
	GetTransactionsByAccount(budgetID, accountID string, f *transaction.Filter) ([]*transaction.Transaction, error)
	CreateTransactions(budgetID string, p []transaction.PayloadTransaction) (*transaction.OperationSummary, error)
}

// Client talks to the YNAB API with a personal access token. Category and
// transaction calls go through the SDK; split transactions, which the SDK
// payload cannot express, are posted directly.
type Client struct {
	categories   categoryAPI
	transactions transactionAPI
	splits       *splitCreator
}

// NewClient creates a new Client. An empty baseURL uses DefaultBaseURL and a
// nil httpClient gets a 30 second timeout; both only affect split creates.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	c := sdk.NewClient(token)
	return &Client{
		categories:   c.Category(),
		transactions: c.Transaction(),
		splits: &splitCreator{
			baseURL:    strings.TrimRight(baseURL, "/"),
			token:      token,
			httpClient: httpClient,
		},
	}
}

// ListCategories returns every category group of the budget.
func (c *Client) ListCategories(ctx context.Context, budgetID string) ([]models.CategoryGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot, err := c.categories.GetCategories(budgetID, nil)
	if err != nil {
		return nil, apiError("list categories", err)
	}

	groups := make([]models.CategoryGroup, 0, len(snapshot.GroupWithCategories))
	for _, g := range snapshot.GroupWithCategories {
		group := models.CategoryGroup{ID: g.ID, Name: g.Name, Hidden: g.Hidden, Deleted: g.Deleted}
		for _, cat := range g.Categories {
			group.Categories = append(group.Categories, models.Category{
				ID:      cat.ID,
				Name:    cat.Name,
				Hidden:  cat.Hidden,
				Deleted: cat.Deleted,
			})
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// ListTransactionsSince returns the account's transactions dated on or after
// since.
func (c *Client) ListTransactionsSince(ctx context.Context, budgetID, accountID, since string) ([]models.RemoteTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sinceDate, err := api.DateFromString(since)
	if err != nil {
		return nil, fmt.Errorf("invalid since date %q: %w", since, err)
	}

	txns, err := c.transactions.GetTransactionsByAccount(budgetID, accountID, &transaction.Filter{Since: &sinceDate})
	if err != nil {
		return nil, apiError("list transactions", err)
	}

	out := make([]models.RemoteTransaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, models.RemoteTransaction{
			ID:      t.ID,
			Date:    t.Date.Format(time.DateOnly),
			Amount:  t.Amount,
			Deleted: t.Deleted,
		})
	}
	return out, nil
}

// CreateTransactions submits txns. Plain transactions go in one SDK batch,
// splits in one direct batch; the results are merged.
func (c *Client) CreateTransactions(ctx context.Context, budgetID string, txns []models.LedgerTransaction) (*models.CreateResult, error) {
	var plain, split []models.LedgerTransaction
	for _, t := range txns {
		if t.IsSplit() {
			split = append(split, t)
		} else {
			plain = append(plain, t)
		}
	}

	result := &models.CreateResult{}
	if len(plain) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		payloads, err := toPayloads(plain)
		if err != nil {
			return nil, err
		}
		summary, err := c.transactions.CreateTransactions(budgetID, payloads)
		if err != nil {
			return nil, apiError("create transactions", err)
		}
		result.TransactionIDs = append(result.TransactionIDs, summary.TransactionIDs...)
		result.DuplicateImportIDs = append(result.DuplicateImportIDs, summary.DuplicateImportIDs...)
	}

	if len(split) > 0 {
		created, err := c.splits.create(ctx, budgetID, split)
		if err != nil {
			return nil, err
		}
		result.TransactionIDs = append(result.TransactionIDs, created.TransactionIDs...)
		result.DuplicateImportIDs = append(result.DuplicateImportIDs, created.DuplicateImportIDs...)
	}
	return result, nil
}

func toPayloads(txns []models.LedgerTransaction) ([]transaction.PayloadTransaction, error) {
	out := make([]transaction.PayloadTransaction, 0, len(txns))
	for _, t := range txns {
		date, err := api.DateFromString(t.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction date %q: %w", t.Date, err)
		}
		out = append(out, transaction.PayloadTransaction{
			AccountID:  t.AccountID,
			Date:       date,
			Amount:     t.Amount,
			Cleared:    transaction.ClearingStatus(t.Cleared),
			Approved:   t.Approved,
			PayeeName:  optional(t.PayeeName),
			Memo:       optional(t.Memo),
			CategoryID: t.CategoryID,
			ImportID:   optional(t.ImportID),
		})
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// apiError converts SDK failures into *models.APIError so callers can map
// them to a status without knowing the SDK.
func apiError(op string, err error) error {
	var sdkErr *api.Error
	if !errors.As(err, &sdkErr) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	apiErr := &models.APIError{
		StatusCode: statusFromID(sdkErr.ID),
		ID:         sdkErr.ID,
		Name:       sdkErr.Name,
		Detail:     sdkErr.Detail,
	}
	slog.Error("ledger api request failed", "op", op, "status", apiErr.StatusCode, "name", apiErr.Name)
	return apiErr
}

// statusFromID reads the HTTP status from a YNAB error id such as "404.2".
func statusFromID(id string) int {
	head, _, _ := strings.Cut(id, ".")
	status, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return status
}
