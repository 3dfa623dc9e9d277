// Package cli implements the ynabimport command tree.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/rocjay1/ynab-importer/internal/categorize"
	"github.com/rocjay1/ynab-importer/internal/config"
	"github.com/rocjay1/ynab-importer/internal/importer"
	"github.com/rocjay1/ynab-importer/internal/ledger"
	"github.com/rocjay1/ynab-importer/internal/ynab"
	"github.com/spf13/cobra"
)

// app carries flag values and the constructors commands use to reach the
// outside world.
type app struct {
	configPath string
	verbose    bool

	newLedger     func(cfg *config.Config) ledger.Client
	newClassifier func(ctx context.Context, cfg *config.Config) (categorize.Classifier, error)
}

func defaultLedger(cfg *config.Config) ledger.Client {
	return ynab.NewClient(cfg.APIURL, cfg.AccessToken, nil)
}

func defaultClassifier(ctx context.Context, cfg *config.Config) (categorize.Classifier, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, nil
	}
	return categorize.NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}

// NewRootCmd builds the ynabimport command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{newLedger: defaultLedger, newClassifier: defaultClassifier})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ynabimport",
		Short: "Turn marketplace order exports into YNAB transactions",
		Long: `ynabimport normalizes order-history CSV exports into a ledger-ready file
and imports that file into a YNAB account, grouping order items into split
transactions and skipping ones YNAB already has.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a TOML config file (default $"+config.FileEnv+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newNormalizeCmd(a))
	root.AddCommand(newImportCmd(a))
	return root
}

// service loads config and assembles an importer.Service. The classifier
// is only built when withClassifier is set.
func (a *app) service(ctx context.Context, withClassifier bool) (*importer.Service, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}

	keywords, err := categorize.Load(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	svc := &importer.Service{
		Config:   cfg,
		Ledger:   a.newLedger(cfg),
		Keywords: keywords,
	}
	if withClassifier {
		classifier, err := a.newClassifier(ctx, cfg)
		if err != nil {
			slog.Warn("classifier unavailable, using keyword rules", "error", err)
		} else if classifier != nil {
			svc.Classifier = classifier
		}
	}
	return svc, nil
}
