package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
)

// Apology is returned whenever a question cannot be answered
const Apology = "I'm sorry, I couldn't process your question due to a technical issue. " +
	"Please try asking again with a different phrasing."

const qaTemplate = `You are a medical AI assistant helping to interpret lab results. You should provide helpful, informative responses about medical lab reports.

Context from the lab report: %s

User Question: %s

Guidelines for your response:
1. Answer based ONLY on the information in the lab report context provided
2. If the answer cannot be determined from the context, say so clearly
3. Provide short, clear explanations for medical terms
4. For abnormal values, explain the potential implications
5. Be factual and medically accurate
6. Avoid speculative diagnoses
7. If you're uncertain about any aspect, acknowledge it

Provide a detailed but concise answer to the user's question.`

// DefaultQAConfig returns the follow-up question defaults
func DefaultQAConfig() CallConfig {
	return CallConfig{
		Temperature:     0.2,
		MaxOutputTokens: 1024,
		TopP:            0.95,
		Timeout:         30 * time.Second,
	}
}

// BuildQAPrompt grounds the question on the analysis context
func BuildQAPrompt(question, context string) string {
	return fmt.Sprintf(qaTemplate, context, question)
}

// QAClient answers follow-up questions about a prior analysis
type QAClient struct {
	generator Generator
	cfg       CallConfig
}

// NewQAClient creates a question client over the given generator
func NewQAClient(generator Generator, cfg CallConfig) *QAClient {
	return &QAClient{generator: generator, cfg: cfg}
}

// Ask returns the trimmed answer. On failure it returns Apology and the cause.
func (q *QAClient) Ask(ctx context.Context, question, analysisContext string) (string, error) {
	callCtx := ctx
	if q.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, q.cfg.Timeout)
		defer cancel()
	}

	text, err := q.generator.Generate(callCtx, GenerateRequest{
		Contents:         []Content{{Parts: []Part{{Text: BuildQAPrompt(question, analysisContext)}}}},
		GenerationConfig: q.cfg.generation(),
	})

	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, ErrEmptyResponse):
		appErr = apperrors.NewEmptyAnswerError("Empty response when answering question")
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)):
		appErr = apperrors.NewTimeoutError("Request timed out. Please try asking again.", err)
	case err != nil:
		appErr = apperrors.NewNetworkError("Failed to get an answer", err)
	case strings.TrimSpace(text) == "":
		appErr = apperrors.NewEmptyAnswerError("Empty response when answering question")
	}
	if appErr != nil {
		logger.WithComponent("qa").WithError(appErr).Warn("Question could not be answered")
		return Apology, appErr
	}

	return strings.TrimSpace(text), nil
}
