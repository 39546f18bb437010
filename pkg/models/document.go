package models

import (
	"path/filepath"
	"strings"
)

// MediaType is the declared content type of an uploaded document
type MediaType string

const (
	MediaTypeJPEG MediaType = "image/jpeg"
	MediaTypePNG  MediaType = "image/png"
	MediaTypePDF  MediaType = "application/pdf"

	// MaxDocumentSize is the largest accepted upload (10 MiB)
	MaxDocumentSize int64 = 10 * 1024 * 1024
)

// AllowedMediaTypes lists every media type the pipeline accepts
var AllowedMediaTypes = []MediaType{MediaTypeJPEG, MediaTypePNG, MediaTypePDF}

// UploadedDocument is a lab report handed to the pipeline for one analysis.
// It is never persisted.
type UploadedDocument struct {
	Name      string    `json:"name,omitempty"`
	MediaType MediaType `json:"media_type"`
	Size      int64     `json:"size"`
	Data      []byte    `json:"-"`
}

// NewUploadedDocument builds a document from raw bytes, normalizing the declared media type
func NewUploadedDocument(name string, mediaType string, data []byte) UploadedDocument {
	return UploadedDocument{
		Name:      name,
		MediaType: NormalizeMediaType(mediaType),
		Size:      int64(len(data)),
		Data:      data,
	}
}

// IsPDF reports whether the document is a PDF
func (d UploadedDocument) IsPDF() bool {
	return d.MediaType == MediaTypePDF
}

// IsImage reports whether the document is a raster image
func (d UploadedDocument) IsImage() bool {
	return d.MediaType == MediaTypeJPEG || d.MediaType == MediaTypePNG
}

// NormalizeMediaType lowercases the type, strips parameters and maps known aliases
func NormalizeMediaType(mediaType string) MediaType {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "image/jpg", "image/pjpeg":
		return MediaTypeJPEG
	case "application/x-pdf":
		return MediaTypePDF
	}
	return MediaType(mt)
}

// MediaTypeFromFilename guesses the media type from a file extension
func MediaTypeFromFilename(name string) MediaType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return MediaTypeJPEG
	case ".png":
		return MediaTypePNG
	case ".pdf":
		return MediaTypePDF
	}
	return ""
}
