package validation

import (
	"fmt"
	"strings"

	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"

	IssueResolution = "resolution"
	IssueExposure   = "exposure"
	IssueFlatness   = "flatness"
)

// QualityIssue is shared with the transport models
type QualityIssue = models.QualityIssue

// QualityThresholds defines configurable thresholds for the upload quality gate
type QualityThresholds struct {
	// Resolution thresholds
	MinWidth  int
	MinHeight int

	// Mean brightness band on the 0-255 scale
	MinBrightness float64
	MaxBrightness float64

	// Minimum (max-min)/255 luminance range
	MinContrast float64
}

// DefaultQualityThresholds returns the default quality thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinWidth:      800,
		MinHeight:     600,
		MinBrightness: 50,
		MaxBrightness: 200,
		MinContrast:   0.3,
	}
}

// QualityValidator handles image quality validation logic
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// Thresholds returns the thresholds in use
func (qv *QualityValidator) Thresholds() QualityThresholds {
	return qv.thresholds
}

// Validate returns every issue found in the metrics. Error-severity issues reject the upload.
func (qv *QualityValidator) Validate(metrics models.QualityMetrics) []QualityIssue {
	var issues []QualityIssue
	t := qv.thresholds

	if metrics.Width < t.MinWidth || metrics.Height < t.MinHeight {
		issues = append(issues, QualityIssue{
			Type: IssueResolution,
			Message: fmt.Sprintf("Image resolution too low (%dx%d). Minimum is %dx%d.",
				metrics.Width, metrics.Height, t.MinWidth, t.MinHeight),
			Severity:    SeverityError,
			ActualValue: float64(metrics.Width * metrics.Height),
			Threshold:   float64(t.MinWidth * t.MinHeight),
		})
	}

	if metrics.Brightness < t.MinBrightness {
		issues = append(issues, QualityIssue{
			Type:        IssueExposure,
			Message:     "Image is too dark. Please retake the photo with better lighting.",
			Severity:    SeverityError,
			ActualValue: metrics.Brightness,
			Threshold:   t.MinBrightness,
		})
	} else if metrics.Brightness > t.MaxBrightness {
		issues = append(issues, QualityIssue{
			Type:        IssueExposure,
			Message:     "Image is too bright. Please avoid glare and direct light.",
			Severity:    SeverityError,
			ActualValue: metrics.Brightness,
			Threshold:   t.MaxBrightness,
		})
	}

	if metrics.Contrast < t.MinContrast {
		issues = append(issues, QualityIssue{
			Type:        IssueFlatness,
			Message:     "Image contrast is too low. Text may not be readable.",
			Severity:    SeverityError,
			ActualValue: metrics.Contrast,
			Threshold:   t.MinContrast,
		})
	}

	return issues
}

// Check validates the metrics and returns the issues together with a
// quality_rejected error naming every blocking issue, or a nil error
func (qv *QualityValidator) Check(metrics models.QualityMetrics) ([]QualityIssue, error) {
	issues := qv.Validate(metrics)
	if !HasErrors(issues) {
		return issues, nil
	}

	var reasons, types []string
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			reasons = append(reasons, issue.Message)
			types = append(types, issue.Type)
		}
	}
	return issues, apperrors.NewQualityRejectedError(strings.Join(reasons, "; "), nil).
		WithDetails(strings.Join(types, ","))
}

// ConvertIssuesToMessages flattens issues into user-facing strings
func ConvertIssuesToMessages(issues []QualityIssue) []string {
	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasErrors reports whether any issue blocks the upload
func HasErrors(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
