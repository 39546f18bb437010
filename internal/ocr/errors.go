package ocr

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyImage is returned when no image bytes were supplied
	ErrEmptyImage = errors.New("empty image")

	// ErrRecognizerUnavailable is returned when no OCR backend is configured
	ErrRecognizerUnavailable = errors.New("ocr recognizer unavailable")
)

// RecognitionError records which configuration and attempt failed
type RecognitionError struct {
	Config  string
	Attempt int
	Err     error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("ocr attempt %d (%s): %v", e.Attempt, e.Config, e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}
