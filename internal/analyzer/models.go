package analyzer

import "github.com/anime-shed/lab-report-inspector-go/pkg/models"

// PreprocessResult is the OCR-ready form of an uploaded image
type PreprocessResult struct {
	// PNG is the lossless encoding of the processed image
	PNG      []byte
	Width    int
	Height   int
	Enhanced bool
	Upscaled bool
	Quality  models.QualityReport
}
