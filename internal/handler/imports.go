package handler

import (
	"net/http"
	"strconv"

	"github.com/rocjay1/ynab-importer/internal/models"
)

const defaultRunsLimit = 20

// HandleListImports returns recent import runs, newest first.
func (d *Dependencies) HandleListImports(w http.ResponseWriter, r *http.Request) {
	if d.Runs == nil {
		WriteError(w, http.StatusServiceUnavailable, "Import history is not configured")
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	runs, err := d.Runs.ListImportRuns(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list imports: "+err.Error())
		return
	}
	if runs == nil {
		runs = []models.ImportRun{}
	}
	WriteJSON(w, http.StatusOK, runs)
}
