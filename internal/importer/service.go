// Package importer runs the normalize and import pipelines end to end.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/ynab-importer/internal/categorize"
	"github.com/rocjay1/ynab-importer/internal/config"
	"github.com/rocjay1/ynab-importer/internal/csvparse"
	"github.com/rocjay1/ynab-importer/internal/ledger"
	"github.com/rocjay1/ynab-importer/internal/metrics"
	"github.com/rocjay1/ynab-importer/internal/models"
)

const (
	MessageNoRows     = "no valid rows found in file"
	MessageNothingNew = "all transactions were duplicates or zero amount"
)

// Service wires the parsers, the category sources and the remote ledger.
type Service struct {
	Config     *config.Config
	Ledger     ledger.Client
	Keywords   *categorize.Keywords
	Classifier categorize.Classifier
	Now        func() time.Time
}

// ImportOptions tunes a single import.
type ImportOptions struct {
	SignedRefunds bool
}

// NormalizeOptions tunes a single normalize pass.
type NormalizeOptions struct {
	NoClassifier bool
	NoKeywords   bool
}

// NormalizeOutput is the result of Normalize.
type NormalizeOutput struct {
	Rows              []models.Row
	SkippedInvalid    int
	SkippedDuplicates int
	Breakdown         []models.CategoryCount
}

// Import reads a ledger-ready file and submits the new transactions to the
// ledger in one batch.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*models.ImportReport, error) {
	if s.Config == nil {
		return nil, models.ErrMissingConfig
	}
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}

	report := &models.ImportReport{RunID: uuid.NewString(), StartedAt: s.now()}
	start := time.Now()
	status := "error"
	defer func() {
		metrics.ImportRuns.WithLabelValues(status).Inc()
		metrics.ImportDuration.Observe(time.Since(start).Seconds())
		if status == "ok" {
			metrics.ObserveImport(report.Imported, report.SkippedDuplicates, report.SkippedZeroAmount, report.APIDuplicates)
		}
	}()

	parsed, err := csvparse.ParseLedgerReady(ctx, r, csvparse.LedgerOptions{
		SignedRefunds: opts.SignedRefunds,
		Payee:         s.Config.Payee,
	})
	if err != nil {
		return nil, err
	}

	rows := parsed.Rows
	if len(rows) == 0 {
		report.Message = MessageNoRows
		status = "ok"
		return report, nil
	}

	if !anyOrderID(rows) {
		rows, report.SkippedWithinFile = dedupe(rows)
	}

	nonZero := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		if row.Milliunits() == 0 {
			report.SkippedZeroAmount++
			continue
		}
		nonZero = append(nonZero, row)
	}
	if len(nonZero) == 0 {
		report.Message = MessageNothingNew
		status = "ok"
		return report, nil
	}

	groups, err := s.Ledger.ListCategories(ctx, s.Config.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	builder := &ledger.Builder{
		AccountID:         s.Config.AccountID,
		Categories:        ledger.NewCategoryIndex(groups),
		Payee:             s.Config.Payee,
		SeparateUngrouped: s.Config.SeparateUngrouped,
	}
	built := builder.Build(nonZero)
	report.SkippedZeroAmount += built.NetZeroGroups

	reconciler := &ledger.Reconciler{Client: s.Ledger, Tolerance: s.Config.DuplicateDays}
	rec, err := reconciler.Reconcile(ctx, s.Config.BudgetID, s.Config.AccountID, built.Transactions)
	if err != nil {
		return nil, err
	}
	report.SkippedDuplicates = len(rec.Duplicates)
	report.ExistingLoaded = rec.ExistingLoaded

	if len(rec.Accepted) == 0 {
		report.Message = MessageNothingNew
		status = "ok"
		slog.Info("nothing to import", "run_id", report.RunID, "duplicates", report.SkippedDuplicates, "zero_amount", report.SkippedZeroAmount)
		return report, nil
	}

	created, err := s.Ledger.CreateTransactions(ctx, s.Config.BudgetID, rec.Accepted)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactions: %w", err)
	}
	report.Imported = len(created.TransactionIDs)
	report.APIDuplicates = len(created.DuplicateImportIDs)

	status = "ok"

	slog.Info("import completed",
		"run_id", report.RunID,
		"imported", report.Imported,
		"skipped_duplicates", report.SkippedDuplicates,
		"skipped_within_file", report.SkippedWithinFile,
		"skipped_zero_amount", report.SkippedZeroAmount,
		"api_duplicates", report.APIDuplicates,
	)
	return report, nil
}

// Normalize turns a raw order export into ledger-ready rows. With a
// classifier configured, categories come from the classifier and the
// ledger's category list, falling back to keyword rules.
func (s *Service) Normalize(ctx context.Context, r io.Reader, opts NormalizeOptions) (*NormalizeOutput, error) {
	useClassifier := s.Classifier != nil && !opts.NoClassifier
	var keywords *categorize.Keywords
	if !opts.NoKeywords {
		keywords = s.Keywords
	}

	payee := models.DefaultPayee
	if s.Config != nil && s.Config.Payee != "" {
		payee = s.Config.Payee
	}

	n := &csvparse.Normalizer{Payee: payee}
	if !useClassifier {
		n.Keywords = keywords
	}
	res, err := n.Normalize(ctx, r)
	if err != nil {
		return nil, err
	}

	if useClassifier {
		categorizer := &categorize.Categorizer{Classifier: s.Classifier, Keywords: keywords}
		categorizer.Apply(ctx, res.Rows, s.categoryNames(ctx))
	}

	metrics.ObserveNormalize(len(res.Rows), res.SkippedInvalid, res.SkippedDuplicates)
	slog.Info("normalized order export", "rows", len(res.Rows), "skipped_invalid", res.SkippedInvalid, "skipped_duplicates", res.SkippedDuplicates)

	return &NormalizeOutput{
		Rows:              res.Rows,
		SkippedInvalid:    res.SkippedInvalid,
		SkippedDuplicates: res.SkippedDuplicates,
		Breakdown:         Breakdown(res.Rows),
	}, nil
}

// categoryNames returns the ledger's active categories, or just the default
// category when the ledger cannot be reached.
func (s *Service) categoryNames(ctx context.Context) []string {
	fallback := []string{models.DefaultCategory}
	if s.Ledger == nil || s.Config == nil || !s.Config.LedgerConfigured() {
		return fallback
	}
	groups, err := s.Ledger.ListCategories(ctx, s.Config.BudgetID)
	if err != nil {
		slog.Warn("could not fetch categories, using default only", "error", err)
		return fallback
	}
	names := models.ActiveCategoryNames(groups)
	if len(names) == 0 {
		return fallback
	}
	return names
}

// Breakdown counts rows per category, most frequent first.
func Breakdown(rows []models.Row) []models.CategoryCount {
	counts := make(map[string]int)
	for _, r := range rows {
		name := strings.TrimSpace(r.Category)
		if name == "" {
			name = models.DefaultCategory
		}
		counts[name]++
	}
	out := make([]models.CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.CategoryCount{Category: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func anyOrderID(rows []models.Row) bool {
	for _, r := range rows {
		if strings.TrimSpace(r.OrderID) != "" {
			return true
		}
	}
	return false
}

func dedupe(rows []models.Row) ([]models.Row, int) {
	seen := make(map[string]struct{}, len(rows))
	out := make([]models.Row, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		key := csvparse.DedupeKey(r)
		if _, ok := seen[key]; ok {
			skipped++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out, skipped
}
