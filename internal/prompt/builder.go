// Package prompt builds the interpretation request for a lab report.
package prompt

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
)

// MinInlineTextLength is the extracted-text length below which the document is attached too
const MinInlineTextLength = 100

const instructions = `You are a medical AI assistant analyzing a lab report.
Analyze the attached file (image or PDF) thoroughly.
Focus on medical values, ranges, and abnormalities.
Provide clear, actionable insights.
If information is limited, make reasonable assumptions based on standard lab report formats.

Format your response as:
SUMMARY: Brief overview of findings
KEY_FINDINGS:
- List important values and abnormalities
RECOMMENDATIONS:
- Actionable health advice
RISK_FACTORS:
- Potential health concerns`

// InlineData is a base64 encoded document attached to the request
type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Request is the text prompt plus an optional document attachment
type Request struct {
	Text       string
	Attachment *InlineData
}

// Build assembles the prompt. Extracted text is inlined when present; the
// document itself is attached when the text is missing or short, or the
// document is a PDF.
func Build(text string, doc models.UploadedDocument) Request {
	text = strings.TrimSpace(text)

	var b strings.Builder
	b.WriteString(instructions)
	if text != "" {
		b.WriteString("\n\nExtracted text from the lab report:\n")
		b.WriteString(text)
	}

	req := Request{Text: b.String()}
	if NeedsAttachment(text, doc) && len(doc.Data) > 0 {
		req.Attachment = &InlineData{
			MimeType: string(doc.MediaType),
			Data:     base64.StdEncoding.EncodeToString(doc.Data),
		}
	}
	return req
}

// NeedsAttachment reports whether the raw document must accompany the text
func NeedsAttachment(text string, doc models.UploadedDocument) bool {
	return doc.IsPDF() || utf8.RuneCountInString(strings.TrimSpace(text)) < MinInlineTextLength
}

// Instructions returns the fixed interpretation template
func Instructions() string {
	return instructions
}
