package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureCropStore publishes crops as blobs in a container with public read access
type AzureCropStore struct {
	client    *azblob.Client
	container string
	baseURL   string
}

// NewAzureCropStore authenticates with a shared key and creates the container if missing.
// serviceURL defaults to the public blob endpoint of the account.
func NewAzureCropStore(ctx context.Context, accountName, accountKey, container, serviceURL string) (*AzureCropStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	}
	serviceURL = strings.TrimRight(serviceURL, "/")

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL+"/", credential, nil)
	if err != nil {
		return nil, err
	}

	if _, err := client.CreateContainer(ctx, container, nil); err != nil &&
		!bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container %s: %w", container, err)
	}

	return &AzureCropStore{
		client:    client,
		container: container,
		baseURL:   serviceURL + "/" + container,
	}, nil
}

// Save uploads the crop as a blob and returns its URL
func (s *AzureCropStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.UploadBuffer(ctx, s.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return s.baseURL + "/" + name, nil
}
