package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

// ImageArchiver persists normalized images for offline inspection. Archiving
// is best-effort infrastructure: a failed upload never affects the response
// already sent to the client.
type ImageArchiver interface {
	Archive(ctx context.Context, analysisID string, img *models.NormalizedImage) error
}

type azureArchive struct {
	client    *azblob.Client
	container string
}

// NewAzureArchive builds a blob-backed archiver using shared key credentials.
func NewAzureArchive(accountName, accountKey, container string) (ImageArchiver, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureArchive{client: client, container: container}, nil
}

func (a *azureArchive) Archive(ctx context.Context, analysisID string, img *models.NormalizedImage) error {
	blobName := fmt.Sprintf("%s.jpg", analysisID)

	_, err := a.client.UploadStream(ctx, a.container, blobName, bytes.NewReader(img.Data), nil)
	if err != nil {
		return fmt.Errorf("upload %s: %w", blobName, err)
	}
	return nil
}

// NopArchiver is used when no storage account is configured.
type NopArchiver struct{}

func (NopArchiver) Archive(ctx context.Context, analysisID string, img *models.NormalizedImage) error {
	return nil
}
