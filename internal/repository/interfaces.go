package repository

import (
	"context"

	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
)

// DocumentRepository defines the interface for remote lab-report access.
// Documents are never stored; every call reads from the source.
type DocumentRepository interface {
	// FetchDocument downloads the document behind the URL
	FetchDocument(ctx context.Context, documentURL string) (models.UploadedDocument, error)

	// ValidateDocumentURL validates if the provided URL is acceptable
	ValidateDocumentURL(documentURL string) error
}

// BlobSource is a document source bound to a subset of URLs
type BlobSource interface {
	Handles(documentURL string) bool
	FetchDocument(ctx context.Context, documentURL string) (models.UploadedDocument, error)
}
