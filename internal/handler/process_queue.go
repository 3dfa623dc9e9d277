package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/rocjay1/ynab-importer/internal/importer"
	"github.com/rocjay1/ynab-importer/internal/models"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// ProcessQueue handles the queue trigger that imports an uploaded file.
// Import failures are recorded on the run and the message is consumed;
// only a failed download asks the host to retry.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var invokeReq invokeRequest
	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	queueItemVal, ok := invokeReq.Data["queueItem"]
	if !ok {
		queueItemVal, ok = invokeReq.Data["queueitem"]
		if !ok {
			WriteError(w, http.StatusBadRequest, "Missing queueItem in Data")
			return
		}
	}

	job, err := decodeJob(queueItemVal)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if job.BlobName == "" {
		slog.Warn("queue message missing blob_name")
		WriteError(w, http.StatusBadRequest, "Missing blob_name")
		return
	}
	if d.Blob == nil {
		WriteError(w, http.StatusServiceUnavailable, "Blob storage is not configured")
		return
	}

	slog.Info("processing import job", "blob_name", job.BlobName)

	content, err := d.Blob.Download(r.Context(), job.BlobName)
	if err != nil {
		slog.Error("failed to download upload", "blob_name", job.BlobName, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to download CSV: %v", err))
		return
	}

	source := job.Filename
	if source == "" {
		source = job.BlobName
	}
	run, err := d.runImport(r.Context(), source, content, importer.ImportOptions{SignedRefunds: job.SignedRefunds})
	if err != nil {
		slog.Warn("import job failed", "blob_name", job.BlobName, "run_id", run.RunID, "error", err)
	} else {
		slog.Info("import job complete", "blob_name", job.BlobName, "run_id", run.RunID, "imported", run.Imported)
	}
	w.WriteHeader(http.StatusOK)
}

// decodeJob accepts the queue item either as a JSON string or as an
// already decoded object.
func decodeJob(item any) (models.ImportJob, error) {
	var job models.ImportJob
	var raw []byte
	switch v := item.(type) {
	case string:
		raw = []byte(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return job, fmt.Errorf("invalid queueItem: %v", err)
		}
		raw = b
	default:
		return job, fmt.Errorf("queueItem is not a string")
	}
	if err := json.Unmarshal(raw, &job); err != nil {
		return job, fmt.Errorf("invalid queueItem JSON: %v", err)
	}
	return job, nil
}
