package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/csvparse"
	"github.com/rocjay1/ynab-importer/internal/importer"
)

// HandleNormalize converts an uploaded order export into a ledger-ready CSV.
// With ?format=json the rows and the category breakdown are returned as JSON.
func (d *Dependencies) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	content, filename, err := readUpload(r)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	out, err := d.Importer.Normalize(r.Context(), bytes.NewReader(content), importer.NormalizeOptions{
		NoClassifier: queryBool(r, "no_ai"),
		NoKeywords:   queryBool(r, "no_keywords"),
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		WriteJSON(w, http.StatusOK, map[string]any{
			"rows":              out.Rows,
			"skippedInvalid":    out.SkippedInvalid,
			"skippedDuplicates": out.SkippedDuplicates,
			"categories":        out.Breakdown,
		})
		return
	}

	var buf bytes.Buffer
	if err := csvparse.WriteCSV(&buf, out.Rows); err != nil {
		slog.Error("failed to write normalized csv", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to write CSV")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", normalizedName(filename)))
	w.Header().Set("X-Rows", strconv.Itoa(len(out.Rows)))
	w.Header().Set("X-Skipped-Invalid", strconv.Itoa(out.SkippedInvalid))
	w.Header().Set("X-Skipped-Duplicates", strconv.Itoa(out.SkippedDuplicates))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func normalizedName(filename string) string {
	base := strings.TrimSuffix(filename, ".csv")
	if base == "" || base == "." {
		base = "orders"
	}
	return base + "_ynab.csv"
}
