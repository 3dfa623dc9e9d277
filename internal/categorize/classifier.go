package categorize

import (
	"context"
	"log/slog"

	"github.com/rocjay1/ynab-importer/internal/metrics"
	"github.com/rocjay1/ynab-importer/internal/models"
)

// DefaultBatchSize is how many memos are sent to a batch classifier per call.
const DefaultBatchSize = 30

// Classifier picks one of categories for a piece of product text. It returns
// models.DefaultCategory when nothing fits.
type Classifier interface {
	Classify(ctx context.Context, text string, categories []string) (string, error)
}

// BatchClassifier classifies many texts in one call. The result maps input
// index to category name; missing indexes are treated as uncategorized.
type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, texts []string, categories []string) (map[int]string, error)
}

// Categorizer fills in row categories using a classifier, falling back to
// keyword rules and finally to models.DefaultCategory.
type Categorizer struct {
	Classifier Classifier
	Keywords   *Keywords
	BatchSize  int
}

// Apply sets Category on every row whose category is blank. Classifier
// failures are logged and never abort the run.
func (c *Categorizer) Apply(ctx context.Context, rows []models.Row, categories []string) {
	var pending []int
	for i := range rows {
		if rows[i].Category == "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return
	}

	if c.Classifier != nil && len(categories) > 0 {
		if batch, ok := c.Classifier.(BatchClassifier); ok {
			c.applyBatches(ctx, batch, rows, pending, categories)
		} else {
			for _, i := range pending {
				if ctx.Err() != nil {
					break
				}
				name, err := c.Classifier.Classify(ctx, rows[i].Memo, categories)
				if err != nil {
					slog.Warn("classification failed, using fallback", "memo", models.Truncate(rows[i].Memo, 60), "error", err)
					metrics.ClassifierFallbacks.Inc()
					continue
				}
				rows[i].Category = ResolveName(name, categories)
			}
		}
	}

	for _, i := range pending {
		if rows[i].Category != "" && !models.IsUncategorized(rows[i].Category) {
			continue
		}
		rows[i].Category = c.fallback(rows[i].Memo)
	}
}

func (c *Categorizer) applyBatches(ctx context.Context, batch BatchClassifier, rows []models.Row, pending []int, categories []string) {
	size := c.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(pending); start += size {
		if ctx.Err() != nil {
			return
		}
		end := min(start+size, len(pending))
		idx := pending[start:end]

		texts := make([]string, len(idx))
		for j, i := range idx {
			texts[j] = rows[i].Memo
		}

		result, err := batch.ClassifyBatch(ctx, texts, categories)
		if err != nil {
			slog.Warn("batch classification failed, using fallback", "batch_start", start, "batch_size", len(idx), "error", err)
			metrics.ClassifierFallbacks.Inc()
			continue
		}
		for j, i := range idx {
			if name, ok := result[j]; ok {
				rows[i].Category = ResolveName(name, categories)
			}
		}
		slog.Info("categorized batch", "done", end, "total", len(pending))
	}
}

func (c *Categorizer) fallback(memo string) string {
	if c.Keywords != nil {
		return c.Keywords.Match(memo)
	}
	return models.DefaultCategory
}
