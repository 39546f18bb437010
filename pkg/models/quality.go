package models

// QualityMetrics describes an uploaded image for the quality gate
type QualityMetrics struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Brightness      float64 `json:"brightness"`
	Contrast        float64 `json:"contrast"`
	LuminanceStdDev float64 `json:"luminance_stddev"`
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// QualityReport is the outcome of running the quality gate on one document
type QualityReport struct {
	Checked  bool            `json:"checked"`
	Accepted bool            `json:"accepted"`
	Metrics  *QualityMetrics `json:"metrics,omitempty"`
	Issues   []QualityIssue  `json:"issues,omitempty"`
}
