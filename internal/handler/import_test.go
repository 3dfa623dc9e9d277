package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocjay1/ynab-importer/internal/importer"
	"github.com/rocjay1/ynab-importer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleImport_Success(t *testing.T) {
	runs := &MockRunStore{}
	deps := &Dependencies{
		Importer: &MockImporter{ImportFunc: func(ctx context.Context, r io.Reader, opts importer.ImportOptions) (*models.ImportReport, error) {
			assert.False(t, opts.SignedRefunds)
			return &models.ImportReport{RunID: "run-1", Imported: 3, SkippedDuplicates: 1, ExistingLoaded: 12}, nil
		}},
		Runs: runs,
	}

	w := httptest.NewRecorder()
	deps.HandleImport(w, newUploadRequest(t, "/api/import", "ready.csv", "Date,Payee,Memo,Amount,Category\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	var report map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, float64(3), report["imported"])
	assert.Equal(t, float64(1), report["skippedDuplicates"])
	assert.Equal(t, float64(12), report["existingLoaded"])
	assert.Contains(t, report, "apiDuplicates")
	require.Len(t, runs.saved, 1)
	assert.Equal(t, "ready.csv", runs.saved[0].Source)
}

func TestHandleImport_NoFile(t *testing.T) {
	deps := &Dependencies{Importer: &MockImporter{}}
	req := httptest.NewRequest(http.MethodPost, "/api/import", nil)
	w := httptest.NewRecorder()

	deps.HandleImport(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleImport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"missing config", models.ErrMissingConfig, http.StatusInternalServerError, models.ErrMissingConfig.Error()},
		{"missing columns", fmt.Errorf("%w (headers: a)", models.ErrMissingColumns), http.StatusBadRequest, "could not find date and amount columns"},
		{"api detail", fmt.Errorf("failed to create transactions: %w", &models.APIError{StatusCode: 400, Detail: "invalid account"}), http.StatusBadGateway, "invalid account"},
		{"api generic", &models.APIError{StatusCode: 503}, http.StatusBadGateway, "ledger API request failed with status 503"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := &Dependencies{Importer: &MockImporter{ImportFunc: func(ctx context.Context, r io.Reader, opts importer.ImportOptions) (*models.ImportReport, error) {
				return nil, tt.err
			}}}

			w := httptest.NewRecorder()
			deps.HandleImport(w, newUploadRequest(t, "/api/import", "ready.csv", "x"))

			assert.Equal(t, tt.status, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.message)
		})
	}
}

func TestRecordRun_FailuresAreLogged(t *testing.T) {
	deps := &Dependencies{
		Runs: &MockRunStore{SaveImportRunFunc: func(ctx context.Context, run models.ImportRun) error {
			return errors.New("table down")
		}},
		Email: &MockEmailClient{SendImportSummaryFunc: func(ctx context.Context, recipients []string, run models.ImportRun) error {
			return errors.New("mail down")
		}},
		NotifyRecipients: []string{"me@example.com"},
	}

	assert.NotPanics(t, func() {
		deps.recordRun(context.Background(), models.ImportRun{Status: models.RunSucceeded})
	})
}

func TestRecordRun_NoRecipients(t *testing.T) {
	deps := &Dependencies{
		Email: &MockEmailClient{SendImportSummaryFunc: func(ctx context.Context, recipients []string, run models.ImportRun) error {
			t.Fatal("must not send without recipients")
			return nil
		}},
	}
	deps.recordRun(context.Background(), models.ImportRun{})
}
