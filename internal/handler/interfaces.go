package handler

import (
	"context"
	"io"

	"github.com/rocjay1/ynab-importer/internal/importer"
	"github.com/rocjay1/ynab-importer/internal/models"
)

// Importer runs the normalize and import pipelines.
type Importer interface {
	Import(ctx context.Context, r io.Reader, opts importer.ImportOptions) (*models.ImportReport, error)
	Normalize(ctx context.Context, r io.Reader, opts importer.NormalizeOptions) (*importer.NormalizeOutput, error)
}

// RunStore persists import run history.
type RunStore interface {
	SaveImportRun(ctx context.Context, run models.ImportRun) error
	ListImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error)
	FindRunByContentHash(ctx context.Context, hash string) (*models.ImportRun, error)
}

// BlobClient archives uploaded files.
type BlobClient interface {
	Upload(ctx context.Context, blobName string, data []byte) error
	Download(ctx context.Context, blobName string) ([]byte, error)
}

// QueueClient schedules asynchronous imports.
type QueueClient interface {
	EnqueueImportJob(ctx context.Context, job models.ImportJob) error
}

// EmailClient sends import notifications.
type EmailClient interface {
	SendImportSummary(ctx context.Context, recipients []string, run models.ImportRun) error
}
