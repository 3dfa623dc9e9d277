package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/ynab-importer/internal/importer"
	"github.com/rocjay1/ynab-importer/internal/models"
	"github.com/rocjay1/ynab-importer/internal/utils"
)

// HandleImport imports an uploaded ledger-ready CSV synchronously and
// returns the report.
func (d *Dependencies) HandleImport(w http.ResponseWriter, r *http.Request) {
	content, filename, err := readUpload(r)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	run, err := d.runImport(r.Context(), filename, content, importer.ImportOptions{
		SignedRefunds: queryBool(r, "signed_refunds"),
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, run.ImportReport)
}

// runImport imports content, then records and announces the run. The
// returned run is never nil.
func (d *Dependencies) runImport(ctx context.Context, source string, content []byte, opts importer.ImportOptions) (*models.ImportRun, error) {
	started := time.Now().UTC()
	report, err := d.Importer.Import(ctx, bytes.NewReader(content), opts)

	run := models.ImportRun{
		Source:      source,
		ContentHash: utils.GenerateSHA256Hash(string(content)),
		FinishedAt:  time.Now().UTC(),
	}
	if err != nil {
		run.RunID = uuid.NewString()
		run.StartedAt = started
		run.Status = models.RunFailed
		run.Error = err.Error()
	} else {
		run.ImportReport = *report
		run.Status = models.RunSucceeded
	}

	d.recordRun(ctx, run)
	return &run, err
}

// recordRun stores and emails a run. Failures here are logged only.
func (d *Dependencies) recordRun(ctx context.Context, run models.ImportRun) {
	if d.Runs != nil {
		if err := d.Runs.SaveImportRun(ctx, run); err != nil {
			slog.Error("failed to save import run", "run_id", run.RunID, "error", err)
		}
	}
	if d.Email != nil && len(d.NotifyRecipients) > 0 {
		if err := d.Email.SendImportSummary(ctx, d.NotifyRecipients, run); err != nil {
			slog.Error("failed to send import summary", "run_id", run.RunID, "error", err)
		}
	}
}
