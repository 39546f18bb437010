package models

import "time"

// AnalysisReport wraps an AnalysisResult with pipeline diagnostics
type AnalysisReport struct {
	ID                string           `json:"id"`
	Document          string           `json:"document,omitempty"`
	Timestamp         time.Time        `json:"timestamp"`
	ProcessingTimeSec float64          `json:"processing_time_sec"`
	Attempts          int              `json:"attempts"`
	Result            AnalysisResult   `json:"result"`
	Quality           QualityReport    `json:"quality"`
	Extraction        ExtractionReport `json:"extraction"`
	Warnings          []string         `json:"warnings,omitempty"`
}

// AnalyzeURLRequest asks the service to fetch and analyze a remote document
type AnalyzeURLRequest struct {
	URL   string `json:"url" binding:"required,url"`
	Force bool   `json:"force,omitempty"`
}

// AskRequest carries a follow-up question. Context wins over Result when both are set.
type AskRequest struct {
	Question string          `json:"question" binding:"required"`
	Context  string          `json:"context,omitempty"`
	Result   *AnalysisResult `json:"result,omitempty"`
}

// AskResponse is the answer to a follow-up question
type AskResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
