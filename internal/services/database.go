package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rocjay1/ynab-importer/internal/models"
)

// DatabaseService stores import run history in Azure Table Storage.
type DatabaseService struct {
	serviceClient *aztables.ServiceClient
	runsTable     string
}

// NewDatabaseService creates a new DatabaseService instance.
func NewDatabaseService() (*DatabaseService, error) {
	target, err := storageTargetFromEnv("TABLE_SERVICE_URL", "IMPORT_RUNS_TABLE", "importruns")
	if err != nil {
		return nil, err
	}
	tableURL, runsTable := target.url, target.name

	var client *aztables.ServiceClient

	if target.local() {
		slog.Info("using Azurite credentials for database service")
		name, key := azuriteAccount()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, err
		}
		client, err = aztables.NewServiceClient(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &DatabaseService{
		serviceClient: client,
		runsTable:     runsTable,
	}

	if err := svc.CreateTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("database service initialized successfully", "table_url", tableURL, "runs_table", runsTable)
	return svc, nil
}

// CreateTables ensures the run history table exists.
func (s *DatabaseService) CreateTables(ctx context.Context) error {
	_, err := s.serviceClient.CreateTable(ctx, s.runsTable, nil)
	if err != nil {
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", s.runsTable, err)
	}
	return nil
}

func (s *DatabaseService) getClient() *aztables.Client {
	return s.serviceClient.NewClient(s.runsTable)
}

// runPartition groups runs by the month they started in.
func runPartition(t time.Time) string {
	return "runs_" + t.UTC().Format("2006-01")
}

// runEntity flattens a run into a table entity.
func runEntity(run models.ImportRun) map[string]any {
	entity := map[string]any{
		"PartitionKey":      runPartition(run.StartedAt),
		"RowKey":            run.RunID,
		"Source":            run.Source,
		"ContentHash":       run.ContentHash,
		"Status":            run.Status,
		"StartedAt":         run.StartedAt.UTC().Format(time.RFC3339),
		"FinishedAt":        run.FinishedAt.UTC().Format(time.RFC3339),
		"Imported":          run.Imported,
		"SkippedDuplicates": run.SkippedDuplicates,
		"SkippedWithinFile": run.SkippedWithinFile,
		"SkippedZeroAmount": run.SkippedZeroAmount,
		"APIDuplicates":     run.APIDuplicates,
		"ExistingLoaded":    run.ExistingLoaded,
	}
	if run.Message != "" {
		entity["Message"] = run.Message
	}
	if run.Error != "" {
		entity["Error"] = run.Error
	}
	return entity
}

// parseRunEntity is the inverse of runEntity.
func parseRunEntity(data []byte) (models.ImportRun, error) {
	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return models.ImportRun{}, err
	}

	getString := func(key string) string {
		if v, ok := parsed[key].(string); ok {
			return v
		}
		return ""
	}
	getInt := func(key string) int {
		if v, ok := parsed[key].(float64); ok {
			return int(v)
		}
		return 0
	}
	getTime := func(key string) time.Time {
		t, _ := time.Parse(time.RFC3339, getString(key))
		return t
	}

	run := models.ImportRun{
		ImportReport: models.ImportReport{
			RunID:             getString("RowKey"),
			StartedAt:         getTime("StartedAt"),
			Imported:          getInt("Imported"),
			SkippedDuplicates: getInt("SkippedDuplicates"),
			SkippedWithinFile: getInt("SkippedWithinFile"),
			SkippedZeroAmount: getInt("SkippedZeroAmount"),
			APIDuplicates:     getInt("APIDuplicates"),
			ExistingLoaded:    getInt("ExistingLoaded"),
			Message:           getString("Message"),
		},
		Source:      getString("Source"),
		ContentHash: getString("ContentHash"),
		Status:      getString("Status"),
		Error:       getString("Error"),
		FinishedAt:  getTime("FinishedAt"),
	}
	return run, nil
}

// SaveImportRun upserts one run record.
func (s *DatabaseService) SaveImportRun(ctx context.Context, run models.ImportRun) error {
	entityJSON, err := json.Marshal(runEntity(run))
	if err != nil {
		return fmt.Errorf("failed to marshal import run: %w", err)
	}
	if _, err := s.getClient().UpsertEntity(ctx, entityJSON, nil); err != nil {
		return fmt.Errorf("failed to save import run %s: %w", run.RunID, err)
	}
	slog.Info("saved import run", "run_id", run.RunID, "status", run.Status)
	return nil
}

// ListImportRuns returns up to limit runs, newest first. A limit of zero
// or less returns every run.
func (s *DatabaseService) ListImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	pager := s.getClient().NewListEntitiesPager(nil)

	var runs []models.ImportRun
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list import runs: %w", err)
		}
		for _, entity := range resp.Entities {
			run, err := parseRunEntity(entity)
			if err != nil {
				slog.Warn("skipping unreadable import run entity", "error", err)
				continue
			}
			runs = append(runs, run)
		}
	}

	sortRuns(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// FindRunByContentHash returns the latest successful run for a file with
// the given hash, or nil.
func (s *DatabaseService) FindRunByContentHash(ctx context.Context, hash string) (*models.ImportRun, error) {
	filter := fmt.Sprintf("ContentHash eq '%s' and Status eq '%s'", hash, models.RunSucceeded)
	pager := s.getClient().NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	var runs []models.ImportRun
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query import runs: %w", err)
		}
		for _, entity := range resp.Entities {
			if run, err := parseRunEntity(entity); err == nil {
				runs = append(runs, run)
			}
		}
	}
	if len(runs) == 0 {
		return nil, nil
	}
	sortRuns(runs)
	return &runs[0], nil
}

func sortRuns(runs []models.ImportRun) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
}
