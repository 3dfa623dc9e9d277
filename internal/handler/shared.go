package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/rocjay1/ynab-importer/internal/models"
)

// maxUploadSize caps multipart uploads at 10MB.
const maxUploadSize = 10 << 20

// Dependencies holds the services required by the handlers. Runs, Blob,
// Queue and Email are optional; handlers that need a missing one answer
// with 503.
type Dependencies struct {
	Importer         Importer
	Runs             RunStore
	Blob             BlobClient
	Queue            QueueClient
	Email            EmailClient
	NotifyRecipients []string
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// statusFor maps pipeline errors onto HTTP statuses.
func statusFor(err error) int {
	var apiErr *models.APIError
	switch {
	case errors.Is(err, models.ErrNoFile),
		errors.Is(err, models.ErrMissingColumns),
		errors.Is(err, models.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMissingConfig):
		return http.StatusInternalServerError
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writePipelineError reports a normalize or import failure.
func writePipelineError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Error()
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "error", err)
	} else {
		slog.Warn("request rejected", "status", status, "error", err)
	}
	WriteError(w, status, message)
}

// readUpload returns the content and base name of the multipart "file" field.
func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrNoFile, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrNoFile, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	slog.Info("received file upload", "filename", header.Filename, "size_bytes", len(data))
	return data, filepath.Base(header.Filename), nil
}

// queryBool reads a boolean query parameter, treating anything unparsable
// as false.
func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
