package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	container, blob string
	data            []byte
	contentType     string
	err             error
}

func (f *fakeDownloader) DownloadStream(_ context.Context, containerName, blobName string, _ *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error) {
	f.container, f.blob = containerName, blobName
	var resp azblob.DownloadStreamResponse
	if f.err != nil {
		return resp, f.err
	}
	resp.Body = io.NopCloser(bytes.NewReader(f.data))
	if f.contentType != "" {
		resp.ContentType = &f.contentType
	}
	return resp, nil
}

func TestParseBlobURL(t *testing.T) {
	tests := []struct {
		url       string
		container string
		blob      string
		wantErr   bool
	}{
		{"https://acct.blob.core.windows.net/reports/2024/cbc.pdf", "reports", "2024/cbc.pdf", false},
		{"https://acct.blob.core.windows.net/reports?blob=cbc.png", "reports", "cbc.png", false},
		{"https://acct.blob.core.windows.net/reports", "", "", true},
		{"https://acct.blob.core.windows.net/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			container, blob, err := ParseBlobURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.container, container)
			assert.Equal(t, tt.blob, blob)
		})
	}
}

func TestAzureBlobFetcher_FetchDocument(t *testing.T) {
	client := &fakeDownloader{data: []byte("%PDF-1.4 body"), contentType: "application/pdf"}
	fetcher := NewAzureBlobFetcherWithClient("LabAccount", client)

	assert.True(t, fetcher.Handles("https://labaccount.blob.core.windows.net/reports/a.pdf"))
	assert.False(t, fetcher.Handles("https://other.blob.core.windows.net/reports/a.pdf"))
	assert.False(t, fetcher.Handles("https://example.com/a.pdf"))

	doc, err := fetcher.FetchDocument(context.Background(), "https://labaccount.blob.core.windows.net/reports/2024/a.pdf")
	require.NoError(t, err)

	assert.Equal(t, "reports", client.container)
	assert.Equal(t, "2024/a.pdf", client.blob)
	assert.Equal(t, "a.pdf", doc.Name)
	assert.Equal(t, models.MediaTypePDF, doc.MediaType)
	assert.Equal(t, int64(len("%PDF-1.4 body")), doc.Size)
}

func TestAzureBlobFetcher_Errors(t *testing.T) {
	client := &fakeDownloader{err: errors.New("BlobNotFound")}
	fetcher := NewAzureBlobFetcherWithClient("acct", client)

	_, err := fetcher.FetchDocument(context.Background(), "https://acct.blob.core.windows.net/reports/a.pdf")
	assert.ErrorContains(t, err, "download failed")

	_, err = fetcher.FetchDocument(context.Background(), "https://acct.blob.core.windows.net/")
	assert.ErrorContains(t, err, "invalid blob URL")
}

func TestAzureBlobFetcher_SniffsMissingContentType(t *testing.T) {
	client := &fakeDownloader{data: pngData}
	doc, err := NewAzureBlobFetcherWithClient("acct", client).FetchDocument(context.Background(), "https://acct.blob.core.windows.net/c/scan")
	require.NoError(t, err)
	assert.Equal(t, models.MediaTypePNG, doc.MediaType)
}

func TestNewAzureBlobFetcher_InvalidKey(t *testing.T) {
	_, err := NewAzureBlobFetcher("acct", "not base64 !!")
	assert.Error(t, err)
}
