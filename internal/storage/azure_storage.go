package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
)

// BlobDownloader is the subset of the azblob client used to fetch documents
type BlobDownloader interface {
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureBlobFetcher downloads documents from one storage account
type AzureBlobFetcher struct {
	client  BlobDownloader
	account string
	maxSize int64
}

// NewAzureBlobFetcher authenticates against the account with a shared key
func NewAzureBlobFetcher(accountName string, accountKey string) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	return NewAzureBlobFetcherWithClient(accountName, client), nil
}

// NewAzureBlobFetcherWithClient wraps an existing downloader
func NewAzureBlobFetcherWithClient(accountName string, client BlobDownloader) *AzureBlobFetcher {
	return &AzureBlobFetcher{
		client:  client,
		account: strings.ToLower(accountName),
		maxSize: models.MaxDocumentSize,
	}
}

// Handles reports whether the URL points at this fetcher's account
func (s *AzureBlobFetcher) Handles(documentURL string) bool {
	u, err := url.Parse(documentURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), s.account+".blob.core.windows.net")
}

// FetchDocument downloads https://{account}.blob.core.windows.net/{container}/{blob}.
// The blob name may also be given as a "blob" query parameter.
func (s *AzureBlobFetcher) FetchDocument(ctx context.Context, documentURL string) (models.UploadedDocument, error) {
	containerName, blobName, err := ParseBlobURL(documentURL)
	if err != nil {
		return models.UploadedDocument{}, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return models.UploadedDocument{}, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body, s.maxSize)
	if err != nil {
		return models.UploadedDocument{}, err
	}

	var contentType string
	if resp.ContentType != nil {
		contentType = *resp.ContentType
	}
	name := blobName[strings.LastIndex(blobName, "/")+1:]
	return models.NewUploadedDocument(name, string(resolveMediaType(contentType, name, data)), data), nil
}

// ParseBlobURL splits a blob URL into container and blob names
func ParseBlobURL(blobURL string) (container string, blob string, err error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	trimmed := strings.TrimPrefix(parsedURL.Path, "/")
	container, blob, _ = strings.Cut(trimmed, "/")
	if q := parsedURL.Query().Get("blob"); q != "" {
		blob = q
	}
	if container == "" || blob == "" {
		return "", "", fmt.Errorf("invalid blob URL: expected /{container}/{blob}")
	}
	return container, blob, nil
}
