package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeProcessing   ErrorType = "processing"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeRateLimited  ErrorType = "rate_limited"

	// Pipeline stages
	ErrorTypeQualityRejected   ErrorType = "quality_rejected"
	ErrorTypeExtractionFailed  ErrorType = "extraction_failed"
	ErrorTypeLimitedExtraction ErrorType = "limited_extraction"
	ErrorTypeAnalysisTimedOut  ErrorType = "analysis_timed_out"
	ErrorTypeAnalysisFailed    ErrorType = "analysis_failed"
	ErrorTypeEmptyAnswer       ErrorType = "empty_answer"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails returns a copy of the error carrying extra detail text
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func newAppError(errorType ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       errorType,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return newAppError(ErrorTypeProcessing, http.StatusUnprocessableEntity, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewRateLimitedError creates a new rate limit error
func NewRateLimitedError(message string) *AppError {
	return newAppError(ErrorTypeRateLimited, http.StatusTooManyRequests, message, nil)
}

// NewQualityRejectedError signals an upload that failed the image quality gate
func NewQualityRejectedError(message string, cause error) *AppError {
	return newAppError(ErrorTypeQualityRejected, http.StatusUnprocessableEntity, message, cause)
}

// NewExtractionFailedError signals that text extraction exhausted its retries
func NewExtractionFailedError(message string, cause error) *AppError {
	return newAppError(ErrorTypeExtractionFailed, http.StatusUnprocessableEntity, message, cause)
}

// NewLimitedExtractionError signals that extraction succeeded with too little text
func NewLimitedExtractionError(message string) *AppError {
	return newAppError(ErrorTypeLimitedExtraction, http.StatusOK, message, nil)
}

// NewAnalysisTimedOutError signals that the interpretation model did not answer in time
func NewAnalysisTimedOutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeAnalysisTimedOut, http.StatusGatewayTimeout, message, cause)
}

// NewAnalysisFailedError signals a failed or empty interpretation response
func NewAnalysisFailedError(message string, cause error) *AppError {
	return newAppError(ErrorTypeAnalysisFailed, http.StatusBadGateway, message, cause)
}

// NewEmptyAnswerError signals an empty follow-up answer
func NewEmptyAnswerError(message string) *AppError {
	return newAppError(ErrorTypeEmptyAnswer, http.StatusBadGateway, message, nil)
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
