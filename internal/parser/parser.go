// Package parser turns the interpretation model's free-form reply into an AnalysisResult.
package parser

import (
	"fmt"
	"strings"

	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
)

const (
	// MissingSummary is the summary kept when no summary header was found
	MissingSummary = "No summary available"

	PartialSummary = "The system was able to extract some information from your lab report, " +
		"but couldn't fully analyze it. Below are the details we could identify:"

	UnstructuredFinding = "Some text was detected in the image but could not be properly structured into findings."
)

// PartialRecommendations accompany a reply that could not be structured
var PartialRecommendations = []string{
	"Upload a clearer image of your lab report",
	"Make sure all values and reference ranges are visible",
	"Consider consulting with a healthcare professional to review your results",
}

var compiled = compileRules(Rules)

// Parse maps the reply onto the four result fields. It never fails and
// keeps no state between calls.
func Parse(text string) models.AnalysisResult {
	summary := MissingSummary
	var findings, recommendations, risks []string

	for _, rule := range compiled {
		section, ok := rule.section(text)
		if !ok {
			continue
		}
		switch rule.field {
		case FieldSummary:
			summary = strings.TrimSpace(section)
		case FieldKeyFindings:
			findings = ExtractItems(section)
		case FieldRecommendations:
			recommendations = ExtractItems(section)
		case FieldRiskFactors:
			risks = ExtractItems(section)
		}
	}

	if summary == MissingSummary && len(findings) > 0 {
		summary = fmt.Sprintf("Analysis found %d key findings to review.", len(findings))
	}

	if summary == MissingSummary && len(findings) == 0 && len(recommendations) == 0 && len(risks) == 0 {
		summary = PartialSummary
		findings = fallbackFindings(text)
		if len(findings) == 0 {
			findings = []string{UnstructuredFinding}
		}
		recommendations = append([]string(nil), PartialRecommendations...)
	}

	return models.NewAnalysisResult(summary, findings, recommendations, risks)
}
