package validation

import (
	"bytes"
	"fmt"
	"net/http"

	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
)

// DocumentValidator checks uploads against the accepted media types and size limit
type DocumentValidator struct {
	allowedTypes []models.MediaType
	maxSize      int64
}

// NewDocumentValidator accepts JPEG, PNG and PDF up to 10 MiB
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{
		allowedTypes: models.AllowedMediaTypes,
		maxSize:      models.MaxDocumentSize,
	}
}

// NewDocumentValidatorWithLimit accepts the default types up to maxSize bytes
func NewDocumentValidatorWithLimit(maxSize int64) *DocumentValidator {
	v := NewDocumentValidator()
	v.maxSize = maxSize
	return v
}

// Validate checks the declared type, the size and that the content matches the declared type
func (v *DocumentValidator) Validate(doc models.UploadedDocument) error {
	if !v.isAllowed(doc.MediaType) {
		return apperrors.NewValidationError(
			fmt.Sprintf("unsupported file type %q: please upload a JPEG, PNG or PDF file", doc.MediaType), nil)
	}
	if doc.Size <= 0 || len(doc.Data) == 0 {
		return apperrors.NewValidationError("file is empty", nil)
	}
	if doc.Size > v.maxSize {
		return apperrors.NewValidationError(
			fmt.Sprintf("file too large: %d bytes exceeds the %d byte limit", doc.Size, v.maxSize), nil)
	}
	if sniffed := sniff(doc.Data); sniffed != "" && sniffed != doc.MediaType {
		return apperrors.NewValidationError(
			fmt.Sprintf("file content (%s) does not match declared type %s", sniffed, doc.MediaType), nil)
	}
	return nil
}

func (v *DocumentValidator) isAllowed(mediaType models.MediaType) bool {
	for _, allowed := range v.allowedTypes {
		if allowed == mediaType {
			return true
		}
	}
	return false
}

// sniff detects the accepted formats from their magic bytes. Unknown content returns "".
func sniff(data []byte) models.MediaType {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return models.MediaTypePDF
	}
	switch models.NormalizeMediaType(http.DetectContentType(data)) {
	case models.MediaTypeJPEG:
		return models.MediaTypeJPEG
	case models.MediaTypePNG:
		return models.MediaTypePNG
	case models.MediaTypePDF:
		return models.MediaTypePDF
	}
	return ""
}

// DetectMediaType returns the sniffed type of data, falling back to the given name's extension
func DetectMediaType(name string, data []byte) models.MediaType {
	if mt := sniff(data); mt != "" {
		return mt
	}
	return models.MediaTypeFromFilename(name)
}
