package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/sirupsen/logrus"
)

const (
	azureOpTimeout = 30 * time.Second
	azureBlockSize = 1024 * 1024
)

// AzureStorage keeps feed snapshots as blobs in one container
type AzureStorage struct {
	client    *azblob.Client
	container string
	log       *logrus.Entry
}

// Ensure AzureStorage implements StorageInterface
var _ StorageInterface = (*AzureStorage)(nil)

// NewAzureStorage opens the snapshot container of the given account,
// creating it on first use. Credentials come from the default Azure chain.
func NewAzureStorage(accountName, containerName string) (*AzureStorage, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClient(fmt.Sprintf("https://%s.blob.core.windows.net/", accountName), credential, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob client for account %s: %w", accountName, err)
	}

	s := &AzureStorage{
		client:    client,
		container: containerName,
		log:       logrus.WithFields(logrus.Fields{"backend": "azure", "container": containerName}),
	}

	if err := s.createSnapshotContainer(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *AzureStorage) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), azureOpTimeout)
}

func (s *AzureStorage) createSnapshotContainer() error {
	ctx, cancel := s.opContext()
	defer cancel()

	_, err := s.client.CreateContainer(ctx, s.container, nil)
	switch {
	case err == nil:
		s.log.Info("Snapshot container created")
	case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
		s.log.Debug("Snapshot container ready")
	default:
		return fmt.Errorf("snapshot container %s: %w", s.container, err)
	}
	return nil
}

// Store writes one snapshot blob, replacing any blob with the same name
func (s *AzureStorage) Store(filename string, data []byte) error {
	ctx, cancel := s.opContext()
	defer cancel()

	if _, err := s.client.UploadBuffer(ctx, s.container, filename, data, &azblob.UploadBufferOptions{
		BlockSize:   azureBlockSize,
		Concurrency: 3,
	}); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", filename, err)
	}

	s.log.WithFields(logrus.Fields{"blob": filename, "bytes": len(data)}).Info("Stored feed snapshot")
	return nil
}

func (s *AzureStorage) Retrieve(filename string) ([]byte, error) {
	ctx, cancel := s.opContext()
	defer cancel()

	response, err := s.client.DownloadStream(ctx, s.container, filename, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil, fmt.Errorf("snapshot not found: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", filename, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", filename, err)
	}
	return data, nil
}

// List returns snapshot names under prefix, oldest first
func (s *AzureStorage) List(prefix string) ([]string, error) {
	ctx, cancel := s.opContext()
	defer cancel()

	names := []string{}
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}

	sort.Strings(names)
	return names, nil
}

func (s *AzureStorage) Delete(filename string) error {
	ctx, cancel := s.opContext()
	defer cancel()

	if _, err := s.client.DeleteBlob(ctx, s.container, filename, nil); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", filename, err)
	}

	s.log.WithField("blob", filename).Debug("Pruned feed snapshot")
	return nil
}
