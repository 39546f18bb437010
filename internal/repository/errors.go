package repository

import "errors"

var (
	// ErrInvalidDocumentURL indicates the URL failed validation
	ErrInvalidDocumentURL = errors.New("invalid document URL")

	// ErrDocumentNotFound indicates the source replied that the document does not exist
	ErrDocumentNotFound = errors.New("document not found")

	// ErrRepositoryUnavailable indicates no document source is configured
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
