package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/models"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier asks a Gemini model which budget category an item belongs to.
type GeminiClassifier struct {
	models contentGenerator
	model  string
}

// NewGeminiClassifier creates a classifier backed by the Gemini API.
func NewGeminiClassifier(ctx context.Context, apiKey, model string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClassifier{models: client.Models, model: model}, nil
}

// Classify categorizes a single text.
func (g *GeminiClassifier) Classify(ctx context.Context, text string, categories []string) (string, error) {
	result, err := g.ClassifyBatch(ctx, []string{text}, categories)
	if err != nil {
		return "", err
	}
	if name, ok := result[0]; ok {
		return name, nil
	}
	return models.DefaultCategory, nil
}

// ClassifyBatch categorizes texts in one model call.
func (g *GeminiClassifier) ClassifyBatch(ctx context.Context, texts []string, categories []string) (map[int]string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(texts, categories)), nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal model JSON: %w", err)
	}

	out := make(map[int]string, len(parsed))
	for k, v := range parsed {
		i, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || i < 0 || i >= len(texts) {
			continue
		}
		out[i] = strings.TrimSpace(v)
	}
	return out, nil
}

func buildPrompt(texts []string, categories []string) string {
	var b strings.Builder
	b.WriteString("You are a budget categorization assistant. For each purchase below, pick the most appropriate budget category based on what the product actually is.\n\n")
	b.WriteString("AVAILABLE CATEGORIES:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nITEMS TO CATEGORIZE:\n")
	for i, t := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i, models.Truncate(t, 300))
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- For mixed orders pick the category of the highest-value or primary item.\n")
	fmt.Fprintf(&b, "- If truly uncertain, use %q.\n", models.DefaultCategory)
	b.WriteString("- Use the EXACT category name from the list, including any emoji.\n\n")
	b.WriteString("Return ONLY a JSON object mapping item index to category name, e.g. {\"0\": \"Groceries\"}.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	return b.String()
}

// cleanModelJSON strips Markdown fences and any text around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
