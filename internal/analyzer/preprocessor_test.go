package analyzer

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/anime-shed/lab-report-inspector-go/pkg/validation"
)

func newTestPreprocessor() Preprocessor {
	return NewPreprocessor(validation.NewQualityValidator(), NewUpscaler(1200, 1600, 300))
}

func TestCheckQuality_PDFBypassesGate(t *testing.T) {
	doc := models.NewUploadedDocument("report.pdf", "application/pdf", []byte("%PDF-1.4"))

	report, err := newTestPreprocessor().CheckQuality(doc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Checked || !report.Accepted {
		t.Errorf("Expected unchecked accepted report, got %+v", report)
	}
}

func TestCheckQuality_AcceptsReadablePage(t *testing.T) {
	doc := models.NewUploadedDocument("page.png", "image/png", encodeTestPNG(t, createTextLikeImage(850, 650)))

	report, err := newTestPreprocessor().CheckQuality(doc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !report.Accepted {
		t.Errorf("Expected page to be accepted, issues: %v", report.Issues)
	}
	if report.Metrics == nil || report.Metrics.Width != 850 {
		t.Errorf("Expected metrics for 850px wide page, got %+v", report.Metrics)
	}
}

func TestPreprocess_RejectsSmallImageUnlessForced(t *testing.T) {
	doc := models.NewUploadedDocument("thumb.png", "image/png", encodeTestPNG(t, createTextLikeImage(200, 150)))
	p := newTestPreprocessor()

	result, err := p.Preprocess(doc, DefaultOptions())
	if !apperrors.IsType(err, apperrors.ErrorTypeQualityRejected) {
		t.Fatalf("Expected quality_rejected, got %v", err)
	}
	if result == nil || result.Quality.Accepted || result.PNG != nil {
		t.Fatalf("Expected rejected report without output, got %+v", result)
	}

	result, err = p.Preprocess(doc, DefaultOptions().WithForce(true))
	if err != nil {
		t.Fatalf("Expected forced preprocessing to succeed, got %v", err)
	}
	if !result.Enhanced || !result.Upscaled {
		t.Errorf("Expected enhancement and upscaling, got %+v", result)
	}
	if result.Width != 1200 || result.Height != 900 {
		t.Errorf("Expected 1200x900 output, got %dx%d", result.Width, result.Height)
	}
	decoded, err := png.Decode(bytes.NewReader(result.PNG))
	if err != nil {
		t.Fatalf("Expected PNG output: %v", err)
	}
	if decoded.Bounds().Dx() != 1200 {
		t.Errorf("Decoded width %d", decoded.Bounds().Dx())
	}
}

func TestPreprocess_SkipsStages(t *testing.T) {
	doc := models.NewUploadedDocument("thumb.png", "image/png",
		encodeTestPNG(t, createTestImage(100, 100, color.RGBA{120, 120, 120, 255})))

	result, err := newTestPreprocessor().Preprocess(doc, DefaultOptions().WithForce(true).WithoutEnhancement().WithoutUpscale())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Enhanced || result.Upscaled || result.Width != 100 {
		t.Errorf("Expected untouched 100px image, got %+v", result)
	}
	if len(result.Quality.Issues) == 0 {
		t.Error("Expected forced run to keep the quality issues")
	}
}

func TestPreprocess_RejectsUndecodableImage(t *testing.T) {
	doc := models.NewUploadedDocument("bad.png", "image/png", []byte("not an image"))

	_, err := newTestPreprocessor().Preprocess(doc, DefaultOptions())
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
