package models

// ExtractionSource names where the extracted text came from
type ExtractionSource string

const (
	SourceOCR     ExtractionSource = "ocr"
	SourcePDFText ExtractionSource = "pdf_text"
	SourceNone    ExtractionSource = "none"
)

// ExtractionReport describes the text extraction stage of one analysis
type ExtractionReport struct {
	Text       string           `json:"text"`
	Source     ExtractionSource `json:"source"`
	Strategy   string           `json:"strategy"`
	Attempts   int              `json:"attempts"`
	Config     string           `json:"config,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`

	// Populated only when reference text was supplied
	ExpectedText string  `json:"expected_text,omitempty"`
	WER          float64 `json:"word_error_rate,omitempty"`
	CER          float64 `json:"character_error_rate,omitempty"`
}
