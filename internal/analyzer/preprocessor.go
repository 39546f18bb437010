package analyzer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/anime-shed/lab-report-inspector-go/pkg/validation"
	"github.com/disintegration/imaging"
)

// preprocessor implements Preprocessor and orchestrates the imaging components
type preprocessor struct {
	metricsCalculator MetricsCalculator
	qualityValidator  *validation.QualityValidator
	enhancer          Enhancer
	upscaler          Upscaler
}

// NewPreprocessor wires the quality gate, enhancer and upscaler together
func NewPreprocessor(qualityValidator *validation.QualityValidator, upscaler Upscaler) Preprocessor {
	return &preprocessor{
		metricsCalculator: NewMetricsCalculator(),
		qualityValidator:  qualityValidator,
		enhancer:          NewEnhancer(),
		upscaler:          upscaler,
	}
}

// CheckQuality runs the quality gate. PDFs are not checked and always pass.
func (p *preprocessor) CheckQuality(doc models.UploadedDocument) (models.QualityReport, error) {
	if !doc.IsImage() {
		return models.QualityReport{Checked: false, Accepted: true}, nil
	}
	img, err := DecodeImage(doc.Data)
	if err != nil {
		return models.QualityReport{}, err
	}
	report, _ := p.checkImage(img)
	return report, nil
}

// checkImage returns the quality report and, for a rejected image, the quality_rejected error
func (p *preprocessor) checkImage(img image.Image) (models.QualityReport, error) {
	metrics := p.metricsCalculator.Calculate(img)
	issues, rejection := p.qualityValidator.Check(metrics)
	return models.QualityReport{
		Checked:  true,
		Accepted: rejection == nil,
		Metrics:  &metrics,
		Issues:   issues,
	}, rejection
}

// Preprocess decodes the image, applies the quality gate and produces an OCR-ready PNG.
// A rejected image returns the report together with a quality_rejected error unless opts.Force is set.
func (p *preprocessor) Preprocess(doc models.UploadedDocument, opts PreprocessOptions) (*PreprocessResult, error) {
	if !doc.IsImage() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot preprocess %s as an image", doc.MediaType), nil)
	}
	img, err := DecodeImage(doc.Data)
	if err != nil {
		return nil, err
	}

	quality, rejection := p.checkImage(img)
	result := &PreprocessResult{Quality: quality}
	if rejection != nil && !opts.Force {
		return result, rejection
	}

	var processed image.Image = img
	if !opts.SkipEnhancement {
		processed = p.enhancer.Enhance(processed)
		result.Enhanced = true
	}
	if !opts.SkipUpscale && p.upscaler.NeedsUpscale(processed.Bounds()) {
		processed = p.upscaler.Upscale(processed)
		result.Upscaled = true
	}

	png, err := encodePNG(processed)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to encode processed image", err)
	}
	result.PNG = png
	result.Width = processed.Bounds().Dx()
	result.Height = processed.Bounds().Dy()
	return result, nil
}

// DecodeImage decodes JPEG or PNG bytes, honouring EXIF orientation
func DecodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.NewValidationError("failed to decode image", err)
	}
	return img, nil
}
