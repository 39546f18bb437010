package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
	"github.com/anime-shed/lab-report-inspector-go/internal/retry"
	"github.com/sirupsen/logrus"
)

// Selection decides which attempt wins when the alternate configuration ran
type Selection string

const (
	// SelectLatest keeps the alternate attempt's text even when it is shorter
	SelectLatest Selection = "latest"
	// SelectLongest keeps whichever attempt produced more text
	SelectLongest Selection = "longest"
)

// Options configures the extraction engine
type Options struct {
	Primary       EngineConfig
	Alternate     EngineConfig
	MinTextLength int
	MaxRetries    int
	Timeout       time.Duration
	Selection     Selection
}

// DefaultOptions returns the engine defaults for English lab reports
func DefaultOptions() Options {
	return Options{
		Primary:       PrimaryConfig("eng"),
		Alternate:     AlternateConfig("eng"),
		MinTextLength: 50,
		MaxRetries:    2,
		Timeout:       30 * time.Second,
		Selection:     SelectLatest,
	}
}

// Extraction is the outcome of a successful extraction
type Extraction struct {
	Text       string
	Config     string
	Attempts   int
	Confidence float64
	Limited    bool
	Warnings   []string
}

// Engine runs the primary and alternate recognizer configurations
type Engine struct {
	recognizer Recognizer
	opts       Options
}

// NewEngine creates an extraction engine over the given recognizer
func NewEngine(recognizer Recognizer, opts Options) *Engine {
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = 50
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Engine{recognizer: recognizer, opts: opts}
}

// Extract runs the primary configuration and falls back to the alternate one
// when the primary yields too little text or fails. Alternate attempts are
// retried on error up to MaxRetries times; once those are spent an
// extraction_failed error is returned. Short text is returned with a warning.
func (e *Engine) Extract(ctx context.Context, image []byte) (*Extraction, error) {
	if len(image) == 0 {
		return nil, apperrors.NewExtractionFailedError("no image to extract text from", ErrEmptyImage)
	}
	if e.recognizer == nil {
		return nil, apperrors.NewExtractionFailedError("text extraction is not available", ErrRecognizerUnavailable)
	}

	log := logger.WithComponent("ocr")
	primary, primaryErr := e.recognize(ctx, image, e.opts.Primary, 0)
	if primaryErr == nil && textLength(primary.Text) >= e.opts.MinTextLength {
		return e.finish(primary, e.opts.Primary.Name, 1), nil
	}

	if primaryErr != nil {
		log.WithError(primaryErr).Warn("Primary OCR attempt failed, retrying with alternate configuration")
	} else {
		log.WithField("chars", textLength(primary.Text)).Info("Primary OCR yield too short, retrying with alternate configuration")
	}

	policy := retry.Policy[Recognition]{
		MaxAttempts: e.opts.MaxRetries,
		Succeeded:   func(_ Recognition, err error) bool { return err == nil || ctx.Err() != nil },
	}
	var out retry.Outcome[Recognition]
	if e.opts.MaxRetries > 0 {
		out = policy.Do(ctx, func(ctx context.Context, attempt int) (Recognition, error) {
			return e.recognize(ctx, image, e.opts.Alternate, attempt+1)
		})
	}
	attempts := 1 + out.Attempts

	switch {
	case out.Attempts > 0 && out.Err == nil:
		if e.opts.Selection == SelectLongest && primaryErr == nil && textLength(primary.Text) > textLength(out.Value.Text) {
			return e.finish(primary, e.opts.Primary.Name, attempts), nil
		}
		return e.finish(out.Value, e.opts.Alternate.Name, attempts), nil

	case primaryErr == nil:
		// The primary text is short but usable; the alternate never succeeded.
		log.WithFields(logrus.Fields{"attempts": attempts}).WithError(out.Err).
			Warn("Keeping short primary OCR result")
		ext := e.finish(primary, e.opts.Primary.Name, attempts)
		if out.Attempts > 0 {
			ext.Warnings = append(ext.Warnings, "Alternate text recognition failed; using the first attempt")
		}
		return ext, nil

	default:
		cause := out.Err
		if cause == nil {
			cause = primaryErr
		}
		return nil, apperrors.NewExtractionFailedError(
			fmt.Sprintf("text extraction failed after %d attempts", attempts), cause)
	}
}

func (e *Engine) recognize(ctx context.Context, image []byte, cfg EngineConfig, attempt int) (Recognition, error) {
	if err := ctx.Err(); err != nil {
		return Recognition{}, &RecognitionError{Config: cfg.Name, Attempt: attempt, Err: err}
	}
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	rec, err := e.recognizer.Recognize(ctx, image, cfg)
	if err != nil {
		return Recognition{}, &RecognitionError{Config: cfg.Name, Attempt: attempt, Err: err}
	}
	rec.Text = strings.TrimSpace(rec.Text)
	return rec, nil
}

func (e *Engine) finish(rec Recognition, config string, attempts int) *Extraction {
	ext := &Extraction{
		Text:       rec.Text,
		Config:     config,
		Attempts:   attempts,
		Confidence: rec.MeanConfidence(),
	}
	if n := textLength(rec.Text); n < e.opts.MinTextLength {
		ext.Limited = true
		ext.Warnings = append(ext.Warnings,
			fmt.Sprintf("Limited text extracted from image (%d characters)", n))
	}
	return ext
}

func textLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
