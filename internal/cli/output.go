package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rocjay1/ynab-importer/internal/models"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed)
	bold   = color.New(color.Bold)
)

func success(w io.Writer, format string, args ...any) {
	green.Fprintf(w, "✓ "+format+"\n", args...)
}

func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  → "+format+"\n", args...)
}

func warning(w io.Writer, format string, args ...any) {
	yellow.Fprintf(w, "  ⚠ "+format+"\n", args...)
}

// PrintError prints a fatal command error.
func PrintError(w io.Writer, err error) {
	red.Fprintf(w, "Error: %s\n", err)
}

// printBreakdown prints a category count table, widest name first column.
func printBreakdown(w io.Writer, counts []models.CategoryCount) {
	if len(counts) == 0 {
		return
	}
	width := 0
	for _, c := range counts {
		width = max(width, len(c.Category))
	}
	bold.Fprintln(w, "\nCategory breakdown:")
	for _, c := range counts {
		fmt.Fprintf(w, "  %s%s  %d\n", c.Category, strings.Repeat(" ", width-len(c.Category)), c.Count)
	}
}

func printReport(w io.Writer, r *models.ImportReport) {
	if r.Imported > 0 {
		success(w, "Imported %d transaction(s).", r.Imported)
	} else {
		warning(w, "Nothing imported: %s.", r.Message)
	}
	info(w, "Existing transactions checked: %d", r.ExistingLoaded)
	if r.SkippedDuplicates > 0 {
		info(w, "Skipped %d duplicate(s) already in YNAB.", r.SkippedDuplicates)
	}
	if r.SkippedWithinFile > 0 {
		info(w, "Skipped %d duplicate row(s) within the file.", r.SkippedWithinFile)
	}
	if r.SkippedZeroAmount > 0 {
		info(w, "Skipped %d zero-amount transaction(s).", r.SkippedZeroAmount)
	}
	if r.APIDuplicates > 0 {
		info(w, "YNAB rejected %d transaction(s) as already imported.", r.APIDuplicates)
	}
}
