package categorize

import (
	"context"
	"errors"
	"testing"

	"github.com/rocjay1/ynab-importer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, text string, categories []string) (string, error)
}

func (m *MockClassifier) Classify(ctx context.Context, text string, categories []string) (string, error) {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text, categories)
	}
	return models.DefaultCategory, nil
}

type MockBatchClassifier struct {
	MockClassifier
	ClassifyBatchFunc func(ctx context.Context, texts []string, categories []string) (map[int]string, error)
	calls             int
}

func (m *MockBatchClassifier) ClassifyBatch(ctx context.Context, texts []string, categories []string) (map[int]string, error) {
	m.calls++
	if m.ClassifyBatchFunc != nil {
		return m.ClassifyBatchFunc(ctx, texts, categories)
	}
	return nil, nil
}

func TestCategorizer_Classifier(t *testing.T) {
	mock := &MockClassifier{
		ClassifyFunc: func(ctx context.Context, text string, categories []string) (string, error) {
			if text == "Bananas" {
				return "groceries", nil
			}
			return "Nonsense", nil
		},
	}
	c := &Categorizer{Classifier: mock}
	rows := []models.Row{{Memo: "Bananas"}, {Memo: "Widget"}, {Memo: "Kept", Category: "Wardrobe"}}

	c.Apply(context.Background(), rows, []string{"Groceries", "Wardrobe"})

	assert.Equal(t, "Groceries", rows[0].Category)
	assert.Equal(t, models.DefaultCategory, rows[1].Category)
	assert.Equal(t, "Wardrobe", rows[2].Category)
}

func TestCategorizer_FallsBackToKeywords(t *testing.T) {
	k, err := LoadEmbedded()
	require.NoError(t, err)
	mock := &MockClassifier{
		ClassifyFunc: func(ctx context.Context, text string, categories []string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	c := &Categorizer{Classifier: mock, Keywords: k}
	rows := []models.Row{{Memo: "Toy Truck"}, {Memo: "Mystery"}}

	c.Apply(context.Background(), rows, []string{"Kids Supplies"})

	assert.Equal(t, "Kids Supplies", rows[0].Category)
	assert.Equal(t, models.DefaultCategory, rows[1].Category)
}

func TestCategorizer_NoClassifier(t *testing.T) {
	c := &Categorizer{}
	rows := []models.Row{{Memo: "Toy Truck"}}

	c.Apply(context.Background(), rows, nil)

	assert.Equal(t, models.DefaultCategory, rows[0].Category)
}

func TestCategorizer_Batches(t *testing.T) {
	mock := &MockBatchClassifier{
		ClassifyBatchFunc: func(ctx context.Context, texts []string, categories []string) (map[int]string, error) {
			out := map[int]string{}
			for i := range texts {
				out[i] = "Groceries"
			}
			return out, nil
		},
	}
	c := &Categorizer{Classifier: mock, BatchSize: 2}
	rows := make([]models.Row, 5)
	for i := range rows {
		rows[i].Memo = "Tea"
	}

	c.Apply(context.Background(), rows, []string{"Groceries"})

	assert.Equal(t, 3, mock.calls)
	for _, r := range rows {
		assert.Equal(t, "Groceries", r.Category)
	}
}

func TestCategorizer_BatchFailure(t *testing.T) {
	mock := &MockBatchClassifier{
		ClassifyBatchFunc: func(ctx context.Context, texts []string, categories []string) (map[int]string, error) {
			return nil, errors.New("boom")
		},
	}
	c := &Categorizer{Classifier: mock}
	rows := []models.Row{{Memo: "Tea"}}

	c.Apply(context.Background(), rows, []string{"Groceries"})

	assert.Equal(t, models.DefaultCategory, rows[0].Category)
}
