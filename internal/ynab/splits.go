package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rocjay1/ynab-importer/internal/models"
)

// splitCreator posts split transactions straight to the API.
type splitCreator struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type errorEnvelope struct {
	Error struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

type createRequest struct {
	Transactions []models.LedgerTransaction `json:"transactions"`
}

type createResponse struct {
	Data models.CreateResult `json:"data"`
}

func (s *splitCreator) create(ctx context.Context, budgetID string, txns []models.LedgerTransaction) (*models.CreateResult, error) {
	jsonBody, err := json.Marshal(createRequest{Transactions: txns})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/budgets/%s/transactions", s.baseURL, url.PathEscape(budgetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &models.APIError{StatusCode: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(respBody, &env) == nil {
			apiErr.ID = env.Error.ID
			apiErr.Name = env.Error.Name
			apiErr.Detail = env.Error.Detail
		}
		slog.Error("ledger api request failed", "op", "create split transactions", "status", resp.StatusCode, "name", apiErr.Name)
		return nil, apiErr
	}

	var out createResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out.Data, nil
}
