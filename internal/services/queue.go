package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/rocjay1/ynab-importer/internal/models"
)

// QueueService posts import jobs to Azure Queue Storage.
type QueueService struct {
	serviceClient *azqueue.ServiceClient
	queueName     string
}

// NewQueueService creates a new QueueService instance.
func NewQueueService() (*QueueService, error) {
	target, err := storageTargetFromEnv("QUEUE_SERVICE_URL", "IMPORT_QUEUE", "import-queue")
	if err != nil {
		return nil, err
	}
	queueURL := target.url

	slog.Info("initializing queue service", "queue_url", queueURL, "queue", target.name)
	var client *azqueue.ServiceClient

	if target.local() {
		slog.Info("using Azurite shared key credentials for queue service")
		name, key := azuriteAccount()
		cred, err := azqueue.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azqueue.NewServiceClientWithSharedKeyCredential(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, err
		}
		client, err = azqueue.NewServiceClient(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client: %w", err)
		}
	}

	return &QueueService{serviceClient: client, queueName: target.name}, nil
}

// encodeJob serializes a job the way the Functions host expects queue
// messages: base64 of the JSON body.
func encodeJob(job models.ImportJob) (string, error) {
	msgBytes, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal import job: %w", err)
	}
	return base64.StdEncoding.EncodeToString(msgBytes), nil
}

// EnqueueImportJob asks the queue worker to import an uploaded file.
func (s *QueueService) EnqueueImportJob(ctx context.Context, job models.ImportJob) error {
	queueClient := s.serviceClient.NewQueueClient(s.queueName)

	_, err := queueClient.Create(ctx, nil)
	if err != nil && !strings.Contains(err.Error(), "QueueAlreadyExists") {
		slog.Warn("failed to create queue (may already exist)", "queue", s.queueName, "error", err)
	}

	encoded, err := encodeJob(job)
	if err != nil {
		return err
	}
	if _, err := queueClient.EnqueueMessage(ctx, encoded, nil); err != nil {
		return fmt.Errorf("failed to enqueue message to %s: %w", s.queueName, err)
	}

	slog.Info("enqueued import job", "queue", s.queueName, "blob_name", job.BlobName)
	return nil
}
