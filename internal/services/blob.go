package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobService archives uploaded order files in Azure Blob Storage.
type BlobService struct {
	client    *azblob.Client
	container string
}

// NewBlobService creates a new BlobService instance.
func NewBlobService() (*BlobService, error) {
	target, err := storageTargetFromEnv("BLOB_SERVICE_URL", "UPLOADS_CONTAINER", "ynab-uploads")
	if err != nil {
		return nil, err
	}
	blobURL := target.url

	slog.Info("initializing blob service", "blob_url", blobURL, "container", target.name)
	var client *azblob.Client

	if target.local() {
		slog.Info("using Azurite shared key credentials for blob service")
		name, key := azuriteAccount()
		cred, err := azblob.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, err
		}
		client, err = azblob.NewClient(blobURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}

	return &BlobService{client: client, container: target.name}, nil
}

// Upload stores data under blobName, creating the container on first use.
func (s *BlobService) Upload(ctx context.Context, blobName string, data []byte) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !strings.Contains(err.Error(), "ContainerAlreadyExists") {
		slog.Warn("failed to create container (may already exist)", "container", s.container, "error", err)
	}

	if _, err := s.client.UploadBuffer(ctx, s.container, blobName, data, nil); err != nil {
		return fmt.Errorf("failed to upload blob %s/%s: %w", s.container, blobName, err)
	}
	slog.Info("uploaded blob", "container", s.container, "blob_name", blobName, "size_bytes", len(data))
	return nil
}

// Download returns the content of blobName.
func (s *BlobService) Download(ctx context.Context, blobName string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s/%s: %w", s.container, blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob content: %w", err)
	}
	slog.Info("downloaded blob", "container", s.container, "blob_name", blobName, "size_bytes", len(data))
	return data, nil
}
