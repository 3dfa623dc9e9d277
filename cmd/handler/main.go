package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/rocjay1/ynab-importer/internal/categorize"
	"github.com/rocjay1/ynab-importer/internal/config"
	"github.com/rocjay1/ynab-importer/internal/handler"
	"github.com/rocjay1/ynab-importer/internal/importer"
	"github.com/rocjay1/ynab-importer/internal/services"
	"github.com/rocjay1/ynab-importer/internal/ynab"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	keywords, err := categorize.Load(cfg.RulesFile)
	if err != nil {
		slog.Error("failed to load category rules", "error", err)
		os.Exit(1)
	}

	svc := &importer.Service{
		Config:   cfg,
		Ledger:   ynab.NewClient(cfg.APIURL, cfg.AccessToken, nil),
		Keywords: keywords,
	}
	if cfg.GeminiAPIKey != "" {
		classifier, err := categorize.NewGeminiClassifier(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("failed to init gemini classifier (continuing with keyword rules)", "error", err)
		} else {
			svc.Classifier = classifier
		}
	}

	deps := &handler.Dependencies{
		Importer:         svc,
		NotifyRecipients: recipients(os.Getenv("USER_EMAIL")),
	}

	// Storage services are optional: without them only the synchronous
	// routes are useful.
	if db, err := services.NewDatabaseService(); err != nil {
		slog.Warn("failed to init DatabaseService (import history disabled)", "error", err)
	} else {
		deps.Runs = db
	}
	if blob, err := services.NewBlobService(); err != nil {
		slog.Warn("failed to init BlobService (async import disabled)", "error", err)
	} else {
		deps.Blob = blob
	}
	if queue, err := services.NewQueueService(); err != nil {
		slog.Warn("failed to init QueueService (async import disabled)", "error", err)
	} else {
		deps.Queue = queue
	}
	if email, err := services.NewEmailService(nil); err != nil {
		slog.Warn("failed to init EmailService (continuing anyway)", "error", err)
	} else {
		deps.Email = email
	}

	port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "port", port, "ledger_configured", cfg.LedgerConfigured())
	if err := http.ListenAndServe(":"+port, handler.NewRouter(deps)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func recipients(v string) []string {
	var out []string
	for _, addr := range strings.Split(v, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
