package categorize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockGenerator struct {
	text   string
	err    error
	prompt string
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		m.prompt = contents[0].Parts[0].Text
	}
	if m.err != nil {
		return nil, m.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: m.text}}},
		}},
	}, nil
}

func TestGeminiClassifier_ClassifyBatch(t *testing.T) {
	gen := &mockGenerator{text: "```json\n{\"0\": \"Kids Supplies\", \"1\": \"Wardrobe\", \"7\": \"Ignored\"}\n```"}
	g := &GeminiClassifier{models: gen, model: "test-model"}

	got, err := g.ClassifyBatch(context.Background(), []string{"Toy Truck", "Wool socks"}, []string{"Kids Supplies", "Wardrobe"})

	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "Kids Supplies", 1: "Wardrobe"}, got)
	assert.Contains(t, gen.prompt, "- Kids Supplies")
	assert.Contains(t, gen.prompt, "1. Wool socks")
}

func TestGeminiClassifier_Classify(t *testing.T) {
	g := &GeminiClassifier{models: &mockGenerator{text: `{"0": "Groceries"}`}, model: "m"}

	got, err := g.Classify(context.Background(), "Coffee beans", []string{"Groceries"})

	require.NoError(t, err)
	assert.Equal(t, "Groceries", got)
}

func TestGeminiClassifier_Errors(t *testing.T) {
	g := &GeminiClassifier{models: &mockGenerator{err: errors.New("unavailable")}, model: "m"}
	_, err := g.ClassifyBatch(context.Background(), []string{"x"}, []string{"A"})
	assert.Error(t, err)

	g = &GeminiClassifier{models: &mockGenerator{text: "not json"}, model: "m"}
	_, err = g.ClassifyBatch(context.Background(), []string{"x"}, []string{"A"})
	assert.Error(t, err)
}

func TestCleanModelJSON(t *testing.T) {
	assert.Equal(t, `{"0": "A"}`, cleanModelJSON("Sure! Here you go: {\"0\": \"A\"} Thanks"))
	assert.Equal(t, `{"0": "A"}`, cleanModelJSON("```\n{\"0\": \"A\"}\n```"))
}
