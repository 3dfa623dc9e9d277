package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/ynab-importer/internal/models"
	"github.com/rocjay1/ynab-importer/internal/utils"
)

// HandleUpload archives a ledger-ready CSV and queues it for import.
// A file that was already imported successfully is refused unless
// ?force=true is given.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if d.Blob == nil || d.Queue == nil {
		WriteError(w, http.StatusServiceUnavailable, "Asynchronous import is not configured")
		return
	}

	content, filename, err := readUpload(r)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	if d.Runs != nil && !queryBool(r, "force") {
		hash := utils.GenerateSHA256Hash(string(content))
		previous, err := d.Runs.FindRunByContentHash(r.Context(), hash)
		if err != nil {
			slog.Warn("could not check for a previous import of this file", "error", err)
		} else if previous != nil {
			slog.Info("file already imported", "filename", filename, "run_id", previous.RunID)
			WriteJSON(w, http.StatusConflict, map[string]any{
				"error":    "File was already imported",
				"runId":    previous.RunID,
				"imported": previous.Imported,
			})
			return
		}
	}

	blobName := fmt.Sprintf("uploads/%s-%s", time.Now().UTC().Format("20060102-150405"), filename)
	if err := d.Blob.Upload(r.Context(), blobName, content); err != nil {
		slog.Error("failed to upload blob", "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to upload blob: "+err.Error())
		return
	}

	job := models.ImportJob{
		BlobName:      blobName,
		Filename:      filename,
		SignedRefunds: queryBool(r, "signed_refunds"),
	}
	if err := d.Queue.EnqueueImportJob(r.Context(), job); err != nil {
		slog.Error("failed to enqueue import job", "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue message: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":   "queued",
		"blobName": blobName,
	})
}
