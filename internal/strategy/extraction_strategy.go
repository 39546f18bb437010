package strategy

import (
	"context"
	"fmt"

	"github.com/anime-shed/lab-report-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/internal/ocr"
	"github.com/anime-shed/lab-report-inspector-go/internal/pdf"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/anime-shed/lab-report-inspector-go/pkg/validation"
)

const (
	NameOCR       = "ocr"
	NamePDFText   = "pdf_text"
	NameImageOnly = "image_only"
)

// ExtractionStrategy defines how text is pulled from a document before interpretation
type ExtractionStrategy interface {
	Extract(ctx context.Context, doc models.UploadedDocument, opts analyzer.PreprocessOptions) (*Outcome, error)
	GetStrategyName() string
}

// Outcome is what a strategy learned about a document. It is returned
// alongside errors so the caller can still report quality and warnings.
type Outcome struct {
	Extraction models.ExtractionReport
	Quality    models.QualityReport
}

// TextEngine recognizes text in an OCR-ready image
type TextEngine interface {
	Extract(ctx context.Context, image []byte) (*ocr.Extraction, error)
}

// TextLayerReader reads the embedded text of a PDF
type TextLayerReader interface {
	Extract(ctx context.Context, data []byte) (pdf.TextLayer, error)
}

// OCRStrategy preprocesses images and runs the OCR engine over them
type OCRStrategy struct {
	preprocessor analyzer.Preprocessor
	engine       TextEngine
}

// NewOCRStrategy creates a new OCR extraction strategy
func NewOCRStrategy(preprocessor analyzer.Preprocessor, engine TextEngine) ExtractionStrategy {
	return &OCRStrategy{
		preprocessor: preprocessor,
		engine:       engine,
	}
}

// Extract runs the quality gate, enhancement, upscaling and OCR
func (s *OCRStrategy) Extract(ctx context.Context, doc models.UploadedDocument, opts analyzer.PreprocessOptions) (*Outcome, error) {
	out := &Outcome{Extraction: models.ExtractionReport{Source: models.SourceNone, Strategy: NameOCR}}

	prepared, err := s.preprocessor.Preprocess(doc, opts)
	if prepared != nil {
		out.Quality = prepared.Quality
		if !prepared.Quality.Accepted {
			out.Extraction.Warnings = append(out.Extraction.Warnings, validation.ConvertIssuesToMessages(prepared.Quality.Issues)...)
		}
	}
	if err != nil {
		return out, err
	}

	ext, err := s.engine.Extract(ctx, prepared.PNG)
	if err != nil {
		out.Extraction.Warnings = append(out.Extraction.Warnings, "Text extraction failed; the image will be interpreted directly")
		return out, err
	}

	out.Extraction.Text = ext.Text
	out.Extraction.Source = models.SourceOCR
	out.Extraction.Attempts = ext.Attempts
	out.Extraction.Config = ext.Config
	out.Extraction.Confidence = ext.Confidence
	out.Extraction.Warnings = append(out.Extraction.Warnings, ext.Warnings...)
	return out, nil
}

// GetStrategyName returns the strategy name
func (s *OCRStrategy) GetStrategyName() string {
	return NameOCR
}

// PDFTextStrategy reads the text layer of PDF documents
type PDFTextStrategy struct {
	reader TextLayerReader
}

// NewPDFTextStrategy creates a new PDF text layer strategy
func NewPDFTextStrategy(reader TextLayerReader) ExtractionStrategy {
	return &PDFTextStrategy{reader: reader}
}

// Extract never fails on unreadable PDFs; the document is attached to the prompt regardless
func (s *PDFTextStrategy) Extract(ctx context.Context, doc models.UploadedDocument, _ analyzer.PreprocessOptions) (*Outcome, error) {
	out := &Outcome{
		Extraction: models.ExtractionReport{Source: models.SourceNone, Strategy: NamePDFText},
		Quality:    models.QualityReport{Checked: false, Accepted: true},
	}
	if !doc.IsPDF() {
		return out, apperrors.NewValidationError(fmt.Sprintf("cannot read a text layer from %s", doc.MediaType), nil)
	}

	layer, err := s.reader.Extract(ctx, doc.Data)
	if err != nil {
		out.Extraction.Warnings = append(out.Extraction.Warnings, "PDF text layer could not be read; the document will be interpreted directly")
		return out, nil
	}

	out.Extraction.Attempts = 1
	out.Extraction.Text = layer.Text
	if layer.Text != "" {
		out.Extraction.Source = models.SourcePDFText
	}
	return out, nil
}

// GetStrategyName returns the strategy name
func (s *PDFTextStrategy) GetStrategyName() string {
	return NamePDFText
}

// ImageOnlyStrategy extracts nothing so the raw document is always attached.
// Images still go through the quality gate when a preprocessor is set.
type ImageOnlyStrategy struct {
	preprocessor analyzer.Preprocessor
}

// NewImageOnlyStrategy creates a strategy that skips text extraction
func NewImageOnlyStrategy(preprocessor analyzer.Preprocessor) ExtractionStrategy {
	return &ImageOnlyStrategy{preprocessor: preprocessor}
}

// Extract only applies the quality gate
func (s *ImageOnlyStrategy) Extract(_ context.Context, doc models.UploadedDocument, opts analyzer.PreprocessOptions) (*Outcome, error) {
	out := &Outcome{
		Extraction: models.ExtractionReport{Source: models.SourceNone, Strategy: NameImageOnly},
		Quality:    models.QualityReport{Checked: false, Accepted: true},
	}
	if s.preprocessor == nil || !doc.IsImage() {
		return out, nil
	}

	quality, err := s.preprocessor.CheckQuality(doc)
	if err != nil {
		return out, err
	}
	out.Quality = quality
	if !quality.Accepted {
		out.Extraction.Warnings = append(out.Extraction.Warnings, validation.ConvertIssuesToMessages(quality.Issues)...)
		if !opts.Force {
			return out, apperrors.NewQualityRejectedError("image failed the quality check", nil)
		}
	}
	return out, nil
}

// GetStrategyName returns the strategy name
func (s *ImageOnlyStrategy) GetStrategyName() string {
	return NameImageOnly
}
