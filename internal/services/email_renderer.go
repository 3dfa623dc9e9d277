package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/models"
)

// RenderErrorSection renders the failure banner, or nothing for a
// successful run.
func RenderErrorSection(run models.ImportRun) string {
	if run.Status != models.RunFailed {
		return ""
	}
	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: #d13438; margin-top: 0; font-size: 18px;">Import failed</h3>
			<p style="margin-bottom: 0;">%s</p>
		</div>
	`, html.EscapeString(run.Error))
}

// RenderCountsTable renders the report counts as a two-column table.
func RenderCountsTable(run models.ImportRun) string {
	rows := []struct {
		label string
		value int
	}{
		{"Imported", run.Imported},
		{"Skipped (already in YNAB)", run.SkippedDuplicates},
		{"Skipped (repeated in file)", run.SkippedWithinFile},
		{"Skipped (zero amount)", run.SkippedZeroAmount},
		{"Rejected by YNAB as duplicates", run.APIDuplicates},
		{"Existing transactions checked", run.ExistingLoaded},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf(`<tr><td style="padding: 4px 12px 4px 0;">%s</td><td style="text-align: right;"><b>%d</b></td></tr>`, r.label, r.value))
	}
	return fmt.Sprintf(`<table style="border-collapse: collapse;">%s</table>`, b.String())
}

// RenderImportSummary renders the full HTML body for an import notification.
func RenderImportSummary(run models.ImportRun) string {
	color := "#107c10"
	title := "Import Completed"
	if run.Status == models.RunFailed {
		color = "#d13438"
		title = "Import Failed"
	}

	message := ""
	if run.Message != "" {
		message = fmt.Sprintf("<p><i>%s</i></p>", html.EscapeString(run.Message))
	}

	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: %s; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">%s</h2>
				</div>
				<div style="padding: 20px;">
					<p>File <b>%s</b>, run %s.</p>
					%s
					%s
					%s
				</div>
			</div>
		</body>
		</html>
	`, color, title, html.EscapeString(run.Source), html.EscapeString(run.RunID), RenderErrorSection(run), message, RenderCountsTable(run))
}
