package analyzer

import (
	"image"

	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
)

// MetricsCalculator computes the quality gate metrics of an image
type MetricsCalculator interface {
	Calculate(img image.Image) models.QualityMetrics
}

// Enhancer prepares an image for text recognition
type Enhancer interface {
	Enhance(img image.Image) *image.Gray
	EnhanceToPNG(img image.Image) ([]byte, error)
}

// Upscaler enlarges small images before text recognition
type Upscaler interface {
	NeedsUpscale(bounds image.Rectangle) bool
	TargetSize(bounds image.Rectangle) (int, int)
	Upscale(img image.Image) image.Image
}

// Preprocessor runs the quality gate, enhancement and upscaling on one document
type Preprocessor interface {
	CheckQuality(doc models.UploadedDocument) (models.QualityReport, error)
	Preprocess(doc models.UploadedDocument, opts PreprocessOptions) (*PreprocessResult, error)
}
