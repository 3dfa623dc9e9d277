// Package categorize assigns budget categories to order lines, either by
// ordered keyword rules or by an external classifier.
package categorize

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// Rule maps a category to the keywords that select it.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// RuleSet is the top-level YAML structure.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Keywords matches free text against an ordered list of rules. Order is the
// priority: the first rule with any matching keyword wins.
type Keywords struct {
	rules []Rule
}

// NewKeywords builds a matcher from YAML rule data.
func NewKeywords(data []byte) (*Keywords, error) {
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse keyword rules: %w", err)
	}
	return NewKeywordsFromRules(set.Rules)
}

// NewKeywordsFromRules validates rules and keeps them in the given order.
// Keywords are lower-cased and trimmed once here.
func NewKeywordsFromRules(rules []Rule) (*Keywords, error) {
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		category := strings.TrimSpace(r.Category)
		if category == "" {
			return nil, fmt.Errorf("rule %d: category cannot be empty", i)
		}
		var kws []string
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("rule %d (%s): at least one keyword is required", i, category)
		}
		out = append(out, Rule{Category: category, Keywords: kws})
	}
	return &Keywords{rules: out}, nil
}

// LoadEmbedded loads the built-in rules.
func LoadEmbedded() (*Keywords, error) {
	k, err := NewKeywords(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules: %w", err)
	}
	return k, nil
}

// LoadFromFile loads rules from path.
func LoadFromFile(path string) (*Keywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	k, err := NewKeywords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return k, nil
}

// Load returns the rules at path, or the embedded rules when path is empty.
func Load(path string) (*Keywords, error) {
	if path == "" {
		return LoadEmbedded()
	}
	return LoadFromFile(path)
}

// Match returns the category of the first rule with a keyword contained in
// text (case-insensitive), or models.DefaultCategory.
func (k *Keywords) Match(text string) string {
	lower := strings.ToLower(text)
	for _, r := range k.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Category
			}
		}
	}
	return models.DefaultCategory
}

// Categories returns the rule categories in priority order.
func (k *Keywords) Categories() []string {
	names := make([]string, len(k.rules))
	for i, r := range k.rules {
		names[i] = r.Category
	}
	return names
}
