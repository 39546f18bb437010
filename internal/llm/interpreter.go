package llm

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
	"github.com/anime-shed/lab-report-inspector-go/internal/parser"
	"github.com/anime-shed/lab-report-inspector-go/internal/prompt"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/sirupsen/logrus"
)

// CallConfig holds the sampling parameters and deadline of one kind of call
type CallConfig struct {
	Temperature     float64
	MaxOutputTokens int
	TopP            float64
	TopK            int
	Timeout         time.Duration
}

func (c CallConfig) generation() GenerationConfig {
	return GenerationConfig{
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
		TopP:            c.TopP,
		TopK:            c.TopK,
	}
}

// DefaultAnalysisConfig returns the analysis call defaults
func DefaultAnalysisConfig() CallConfig {
	return CallConfig{
		Temperature:     0.1,
		MaxOutputTokens: 2048,
		TopP:            0.95,
		TopK:            40,
		Timeout:         60 * time.Second,
	}
}

// Interpreter turns a built prompt into an AnalysisResult
type Interpreter struct {
	generator Generator
	cfg       CallConfig
}

// NewInterpreter creates an interpreter over the given generator
func NewInterpreter(generator Generator, cfg CallConfig) *Interpreter {
	return &Interpreter{generator: generator, cfg: cfg}
}

// Interpret sends the prompt and parses the reply. On any failure it returns
// the degraded result together with an analysis_timed_out or analysis_failed
// error; the result is always usable.
func (i *Interpreter) Interpret(ctx context.Context, req prompt.Request) (models.AnalysisResult, error) {
	log := logger.WithComponent("interpreter")

	callCtx := ctx
	if i.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, i.cfg.Timeout)
		defer cancel()
	}

	parts := []Part{{Text: req.Text}}
	if req.Attachment != nil {
		parts = append(parts, Part{InlineData: req.Attachment})
	}

	start := time.Now()
	text, err := i.generator.Generate(callCtx, GenerateRequest{
		Contents:         []Content{{Parts: parts}},
		GenerationConfig: i.cfg.generation(),
	})
	if err != nil {
		appErr := classify(callCtx, err)
		log.WithFields(logrus.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
			"attached":    req.Attachment != nil,
		}).WithError(appErr).Warn("Interpretation failed, returning degraded result")
		return models.DegradedResult(), appErr
	}

	log.WithFields(logrus.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
		"reply_chars": len(text),
	}).Debug("Interpretation reply received")

	return parser.Parse(text), nil
}

func classify(ctx context.Context, err error) *apperrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewAnalysisTimedOutError("Analysis timed out. Please try again.", err)
	}
	return apperrors.NewAnalysisFailedError("Failed to analyze lab report", err)
}
