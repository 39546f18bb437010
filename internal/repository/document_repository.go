package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anime-shed/lab-report-inspector-go/internal/storage"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/anime-shed/lab-report-inspector-go/pkg/validation"
)

// RemoteDocumentRepository reads documents over HTTP(S) and, when configured,
// from an Azure storage account
type RemoteDocumentRepository struct {
	fetcher   storage.DocumentFetcher
	blobs     BlobSource
	validator *validation.URLValidator
}

// NewRemoteDocumentRepository creates a repository. blobs may be nil.
func NewRemoteDocumentRepository(fetcher storage.DocumentFetcher, blobs BlobSource, validator *validation.URLValidator) DocumentRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &RemoteDocumentRepository{
		fetcher:   fetcher,
		blobs:     blobs,
		validator: validator,
	}
}

// FetchDocument validates the URL and downloads it from the matching source
func (r *RemoteDocumentRepository) FetchDocument(ctx context.Context, documentURL string) (models.UploadedDocument, error) {
	if err := r.ValidateDocumentURL(documentURL); err != nil {
		return models.UploadedDocument{}, err
	}

	source := r.sourceFor(documentURL)
	if source == nil {
		return models.UploadedDocument{}, ErrRepositoryUnavailable
	}

	doc, err := source.FetchDocument(ctx, documentURL)
	if err != nil {
		var statusErr *storage.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return models.UploadedDocument{}, fmt.Errorf("%w: %w", ErrDocumentNotFound, err)
		}
		return models.UploadedDocument{}, err
	}
	return doc, nil
}

// ValidateDocumentURL validates if the provided URL is acceptable
func (r *RemoteDocumentRepository) ValidateDocumentURL(documentURL string) error {
	if documentURL == "" {
		return ErrInvalidDocumentURL
	}
	if _, err := r.validator.ValidateDocumentURL(documentURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocumentURL, err)
	}
	return nil
}

func (r *RemoteDocumentRepository) sourceFor(documentURL string) storage.DocumentFetcher {
	if r.blobs != nil && r.blobs.Handles(documentURL) {
		return r.blobs
	}
	if r.fetcher == nil {
		return nil
	}
	return r.fetcher
}
