package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IncompleteMarker is present in every summary produced when interpretation failed
const IncompleteMarker = "could not be completed"

// DegradedSummary is the summary of the result returned when the interpretation model is unavailable
const DegradedSummary = "Analysis " + IncompleteMarker + ". We encountered issues analyzing your lab report. " +
	"Please try uploading a clearer image or consult with a healthcare professional."

// DegradedRecommendations accompany DegradedSummary
var DegradedRecommendations = []string{
	"Try uploading a clearer image with better lighting",
	"Ensure all text is visible and not cut off",
	"Consider scanning the document instead of taking a photo",
	"Consult with a healthcare professional for interpretation",
}

// AnalysisResult is the structured interpretation of one lab report.
// Every list is non-nil and the summary is never empty. Values are immutable:
// accessors hand out copies.
type AnalysisResult struct {
	summary         string
	keyFindings     []string
	recommendations []string
	riskFactors     []string
}

// NewAnalysisResult copies the given fields into a result
func NewAnalysisResult(summary string, keyFindings, recommendations, riskFactors []string) AnalysisResult {
	return AnalysisResult{
		summary:         summary,
		keyFindings:     cloneStrings(keyFindings),
		recommendations: cloneStrings(recommendations),
		riskFactors:     cloneStrings(riskFactors),
	}
}

// DegradedResult is the fixed result used when the model call fails
func DegradedResult() AnalysisResult {
	return NewAnalysisResult(DegradedSummary, nil, DegradedRecommendations, nil)
}

func (r AnalysisResult) Summary() string           { return r.summary }
func (r AnalysisResult) KeyFindings() []string     { return cloneStrings(r.keyFindings) }
func (r AnalysisResult) Recommendations() []string { return cloneStrings(r.recommendations) }
func (r AnalysisResult) RiskFactors() []string     { return cloneStrings(r.riskFactors) }

// IsIncomplete reports whether the summary carries the incomplete marker
func (r AnalysisResult) IsIncomplete() bool {
	return strings.Contains(r.summary, IncompleteMarker)
}

// IsLowQuality reports whether the result is worth retrying: either the model
// failed or nothing clinically relevant was found.
func (r AnalysisResult) IsLowQuality() bool {
	return r.IsIncomplete() || (len(r.keyFindings) == 0 && len(r.riskFactors) == 0)
}

type analysisResultJSON struct {
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"keyFindings"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"riskFactors"`
}

// MarshalJSON always emits all four fields, lists as arrays
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(analysisResultJSON{
		Summary:         r.summary,
		KeyFindings:     cloneStrings(r.keyFindings),
		Recommendations: cloneStrings(r.recommendations),
		RiskFactors:     cloneStrings(r.riskFactors),
	})
}

// UnmarshalJSON accepts a result previously produced by MarshalJSON
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw analysisResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NewAnalysisResult(raw.Summary, raw.KeyFindings, raw.Recommendations, raw.RiskFactors)
	return nil
}

// BuildAnalysisContext flattens a result into the context string used for follow-up questions
func BuildAnalysisContext(r AnalysisResult) string {
	return fmt.Sprintf("Summary: %s\nKey Findings: %s\nRecommendations: %s\nRisk Factors: %s",
		r.summary,
		strings.Join(r.keyFindings, ", "),
		strings.Join(r.recommendations, ", "),
		strings.Join(r.riskFactors, ", "),
	)
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
