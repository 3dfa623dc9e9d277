package handler

import (
	"context"
	"io"

	"github.com/rocjay1/ynab-importer/internal/importer"
	"github.com/rocjay1/ynab-importer/internal/models"
)

// MockImporter is a mock implementation of Importer
type MockImporter struct {
	ImportFunc    func(ctx context.Context, r io.Reader, opts importer.ImportOptions) (*models.ImportReport, error)
	NormalizeFunc func(ctx context.Context, r io.Reader, opts importer.NormalizeOptions) (*importer.NormalizeOutput, error)
}

func (m *MockImporter) Import(ctx context.Context, r io.Reader, opts importer.ImportOptions) (*models.ImportReport, error) {
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, r, opts)
	}
	return &models.ImportReport{RunID: "run-1"}, nil
}

func (m *MockImporter) Normalize(ctx context.Context, r io.Reader, opts importer.NormalizeOptions) (*importer.NormalizeOutput, error) {
	if m.NormalizeFunc != nil {
		return m.NormalizeFunc(ctx, r, opts)
	}
	return &importer.NormalizeOutput{}, nil
}

// MockRunStore is a mock implementation of RunStore
type MockRunStore struct {
	SaveImportRunFunc        func(ctx context.Context, run models.ImportRun) error
	ListImportRunsFunc       func(ctx context.Context, limit int) ([]models.ImportRun, error)
	FindRunByContentHashFunc func(ctx context.Context, hash string) (*models.ImportRun, error)

	saved []models.ImportRun
}

func (m *MockRunStore) SaveImportRun(ctx context.Context, run models.ImportRun) error {
	m.saved = append(m.saved, run)
	if m.SaveImportRunFunc != nil {
		return m.SaveImportRunFunc(ctx, run)
	}
	return nil
}

func (m *MockRunStore) ListImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if m.ListImportRunsFunc != nil {
		return m.ListImportRunsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockRunStore) FindRunByContentHash(ctx context.Context, hash string) (*models.ImportRun, error) {
	if m.FindRunByContentHashFunc != nil {
		return m.FindRunByContentHashFunc(ctx, hash)
	}
	return nil, nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadFunc   func(ctx context.Context, blobName string, data []byte) error
	DownloadFunc func(ctx context.Context, blobName string) ([]byte, error)
}

func (m *MockBlobClient) Upload(ctx context.Context, blobName string, data []byte) error {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, blobName, data)
	}
	return nil
}

func (m *MockBlobClient) Download(ctx context.Context, blobName string) ([]byte, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, blobName)
	}
	return nil, nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	EnqueueImportJobFunc func(ctx context.Context, job models.ImportJob) error
}

func (m *MockQueueClient) EnqueueImportJob(ctx context.Context, job models.ImportJob) error {
	if m.EnqueueImportJobFunc != nil {
		return m.EnqueueImportJobFunc(ctx, job)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendImportSummaryFunc func(ctx context.Context, recipients []string, run models.ImportRun) error
}

func (m *MockEmailClient) SendImportSummary(ctx context.Context, recipients []string, run models.ImportRun) error {
	if m.SendImportSummaryFunc != nil {
		return m.SendImportSummaryFunc(ctx, recipients, run)
	}
	return nil
}
