package strategy

import "github.com/anime-shed/lab-report-inspector-go/pkg/models"

// Selector picks the extraction strategy for a document
type Selector struct {
	image    ExtractionStrategy
	pdf      ExtractionStrategy
	fallback ExtractionStrategy
}

// NewSelector creates a selector. A nil image or pdf strategy falls back to fallback.
func NewSelector(image, pdf, fallback ExtractionStrategy) *Selector {
	if fallback == nil {
		fallback = NewImageOnlyStrategy(nil)
	}
	return &Selector{image: image, pdf: pdf, fallback: fallback}
}

// SetImageStrategy changes the strategy used for JPEG and PNG documents
func (s *Selector) SetImageStrategy(strategy ExtractionStrategy) {
	s.image = strategy
}

// For returns the strategy for the document's media type
func (s *Selector) For(doc models.UploadedDocument) ExtractionStrategy {
	switch {
	case doc.IsImage() && s.image != nil:
		return s.image
	case doc.IsPDF() && s.pdf != nil:
		return s.pdf
	default:
		return s.fallback
	}
}
