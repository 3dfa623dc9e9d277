// Package config loads importer settings from an optional TOML file and the
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rocjay1/ynab-importer/internal/ledger"
	"github.com/rocjay1/ynab-importer/internal/models"
)

// FileEnv names the variable holding the default config file path.
const FileEnv = "IMPORTER_CONFIG"

// Config holds everything the importer needs to reach the ledger and to
// categorize rows.
type Config struct {
	AccessToken       string `toml:"access_token"`
	BudgetID          string `toml:"budget_id"`
	AccountID         string `toml:"account_id"`
	APIURL            string `toml:"api_url"`
	DuplicateDays     int    `toml:"duplicate_days"`
	Payee             string `toml:"payee"`
	SeparateUngrouped bool   `toml:"separate_ungrouped"`
	RulesFile         string `toml:"rules_file"`
	GeminiAPIKey      string `toml:"gemini_api_key"`
	GeminiModel       string `toml:"gemini_model"`
}

// Default returns a Config with defaults applied and nothing else set.
func Default() *Config {
	return &Config{
		DuplicateDays: ledger.DefaultTolerance,
		Payee:         models.DefaultPayee,
	}
}

// Load reads path (or $IMPORTER_CONFIG when path is empty) if set, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.AccessToken, "YNAB_ACCESS_TOKEN")
	setString(&c.BudgetID, "YNAB_BUDGET_ID")
	setString(&c.AccountID, "YNAB_ACCOUNT_ID")
	setString(&c.APIURL, "YNAB_API_URL")
	setString(&c.Payee, "YNAB_PAYEE")
	setString(&c.RulesFile, "CATEGORY_RULES_FILE")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.GeminiModel, "GEMINI_MODEL")

	if v := strings.TrimSpace(os.Getenv("YNAB_DUPLICATE_DAYS")); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid YNAB_DUPLICATE_DAYS %q: %w", v, err)
		}
		c.DuplicateDays = days
	}
	if v := strings.TrimSpace(os.Getenv("YNAB_SEPARATE_UNGROUPED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid YNAB_SEPARATE_UNGROUPED %q: %w", v, err)
		}
		c.SeparateUngrouped = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks the settings an import cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.AccessToken == "" {
		missing = append(missing, "YNAB_ACCESS_TOKEN")
	}
	if c.BudgetID == "" {
		missing = append(missing, "YNAB_BUDGET_ID")
	}
	if c.AccountID == "" {
		missing = append(missing, "YNAB_ACCOUNT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", models.ErrMissingConfig, strings.Join(missing, ", "))
	}
	if c.DuplicateDays < 0 {
		return fmt.Errorf("duplicate days must not be negative, got %d", c.DuplicateDays)
	}
	return nil
}

// LedgerConfigured reports whether a ledger can be reached for category
// lookups.
func (c *Config) LedgerConfigured() bool {
	return c.AccessToken != "" && c.BudgetID != ""
}
