package factory

import (
	"context"
	"errors"
	"fmt"

	"github.com/anime-shed/lab-report-inspector-go/internal/config"
	"github.com/anime-shed/lab-report-inspector-go/internal/ocr"
	"github.com/anime-shed/lab-report-inspector-go/internal/ocr/tesseract"
	"github.com/anime-shed/lab-report-inspector-go/internal/storage"
)

// RecognizerType represents different OCR backends
type RecognizerType string

const (
	// TesseractRecognizer runs Tesseract through gosseract
	TesseractRecognizer RecognizerType = "tesseract"
	// NoRecognizer disables OCR; images are sent to the model as they are
	NoRecognizer RecognizerType = "none"
)

// StorageType represents different types of document sources
type StorageType string

const (
	// HTTPStorage for HTTP-based document fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// ErrOCRDisabled is returned by the recognizer created for NoRecognizer
var ErrOCRDisabled = errors.New("ocr is disabled")

// RecognizerFactory creates OCR backends
type RecognizerFactory interface {
	CreateRecognizer(recognizerType RecognizerType) (ocr.Recognizer, error)
}

// StorageFactory creates document sources
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.DocumentFetcher, error)
}

// recognizerFactory implements RecognizerFactory
type recognizerFactory struct{}

// NewRecognizerFactory creates a new recognizer factory
func NewRecognizerFactory() RecognizerFactory {
	return &recognizerFactory{}
}

// CreateRecognizer creates a recognizer based on the specified type
func (f *recognizerFactory) CreateRecognizer(recognizerType RecognizerType) (ocr.Recognizer, error) {
	switch recognizerType {
	case TesseractRecognizer:
		return tesseract.NewRecognizer(), nil
	case NoRecognizer:
		return ocr.RecognizerFunc(func(context.Context, []byte, ocr.EngineConfig) (ocr.Recognition, error) {
			return ocr.Recognition{}, ErrOCRDisabled
		}), nil
	default:
		return nil, fmt.Errorf("unsupported recognizer type: %s", recognizerType)
	}
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a document source based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.DocumentFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPDocumentFetcher(f.cfg.DocumentFetchTimeout), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, errors.New("azure storage requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
		fetcher, err := storage.NewAzureBlobFetcher(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	RecognizerFactory RecognizerFactory
	StorageFactory    StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		RecognizerFactory: NewRecognizerFactory(),
		StorageFactory:    NewStorageFactory(cfg),
	}
}
