package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anime-shed/lab-report-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
	"github.com/anime-shed/lab-report-inspector-go/internal/observer"
	"github.com/anime-shed/lab-report-inspector-go/internal/ocr"
	"github.com/anime-shed/lab-report-inspector-go/internal/prompt"
	"github.com/anime-shed/lab-report-inspector-go/internal/repository"
	"github.com/anime-shed/lab-report-inspector-go/internal/retry"
	"github.com/anime-shed/lab-report-inspector-go/internal/strategy"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/anime-shed/lab-report-inspector-go/pkg/validation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultMaxAttempts is how many times the whole pipeline runs before the last result is kept
const DefaultMaxAttempts = 2

// LabReportService defines the lab report pipeline
type LabReportService interface {
	// Analyze runs the pipeline on an uploaded document. It never fails:
	// problems are reported as a degraded result plus warnings.
	Analyze(ctx context.Context, doc models.UploadedDocument, opts analyzer.PreprocessOptions) *models.AnalysisReport

	// AnalyzeURL fetches the document and analyzes it. Only fetch and URL
	// validation failures are returned as errors.
	AnalyzeURL(ctx context.Context, documentURL string, opts analyzer.PreprocessOptions) (*models.AnalysisReport, error)

	// CheckQuality runs the quality gate alone
	CheckQuality(doc models.UploadedDocument) (models.QualityReport, error)

	// ExtractText runs text extraction alone and, when expected is set, measures its accuracy
	ExtractText(ctx context.Context, doc models.UploadedDocument, expected string) (models.ExtractionReport, error)

	// Ask answers a follow-up question about a prior analysis
	Ask(ctx context.Context, question, analysisContext string) string
}

// Interpreter turns a prompt into a result. On failure it still returns a usable result.
type Interpreter interface {
	Interpret(ctx context.Context, req prompt.Request) (models.AnalysisResult, error)
}

// Answerer answers follow-up questions. On failure it still returns a displayable answer.
type Answerer interface {
	Ask(ctx context.Context, question, analysisContext string) (string, error)
}

// Dependencies are the collaborators of the lab report service
type Dependencies struct {
	Validator    *validation.DocumentValidator
	Preprocessor analyzer.Preprocessor
	Strategies   *strategy.Selector
	Interpreter  Interpreter
	Answerer     Answerer
	Repository   repository.DocumentRepository
	Events       observer.Subject
	MaxAttempts  int
}

// labReportService implements LabReportService
type labReportService struct {
	validator    *validation.DocumentValidator
	preprocessor analyzer.Preprocessor
	strategies   *strategy.Selector
	interpreter  Interpreter
	answerer     Answerer
	repo         repository.DocumentRepository
	events       observer.Subject
	maxAttempts  int
}

// NewLabReportService creates a new lab report service
func NewLabReportService(deps Dependencies) LabReportService {
	s := &labReportService{
		validator:    deps.Validator,
		preprocessor: deps.Preprocessor,
		strategies:   deps.Strategies,
		interpreter:  deps.Interpreter,
		answerer:     deps.Answerer,
		repo:         deps.Repository,
		events:       deps.Events,
		maxAttempts:  deps.MaxAttempts,
	}
	if s.validator == nil {
		s.validator = validation.NewDocumentValidator()
	}
	if s.strategies == nil {
		s.strategies = strategy.NewSelector(nil, nil, strategy.NewImageOnlyStrategy(s.preprocessor))
	}
	if s.events == nil {
		s.events = observer.Nop{}
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = DefaultMaxAttempts
	}
	return s
}

// attempt is one pass of extraction, interpretation and parsing
type attempt struct {
	outcome  *strategy.Outcome
	result   models.AnalysisResult
	warnings []string
}

// Analyze runs the pipeline on an uploaded document
func (s *labReportService) Analyze(ctx context.Context, doc models.UploadedDocument, opts analyzer.PreprocessOptions) *models.AnalysisReport {
	start := time.Now()
	report := &models.AnalysisReport{
		ID:        uuid.NewString(),
		Document:  doc.Name,
		Timestamp: start.UTC(),
		Result:    models.DegradedResult(),
	}
	log := logger.WithComponent("service").WithFields(logrus.Fields{
		"analysis_id": report.ID,
		"document":    doc.Name,
		"media_type":  doc.MediaType,
		"size":        doc.Size,
	})
	s.publish(ctx, report, observer.AnalysisStarted, nil, nil)

	if err := s.validator.Validate(doc); err != nil {
		log.WithError(err).Warn("Document rejected")
		report.Warnings = append(report.Warnings, userMessage(err))
		return s.finish(ctx, report, start, err)
	}

	extractor := s.strategies.For(doc)
	policy := retry.Policy[attempt]{
		MaxAttempts: s.maxAttempts,
		Succeeded: func(a attempt, err error) bool {
			return err != nil || !a.result.IsLowQuality()
		},
	}
	out := policy.Do(ctx, func(ctx context.Context, n int) (attempt, error) {
		a, err := s.runOnce(ctx, extractor, doc, opts)
		log.WithFields(logrus.Fields{
			"attempt":     n + 1,
			"strategy":    extractor.GetStrategyName(),
			"low_quality": a.result.IsLowQuality(),
			"text_chars":  len(a.outcome.Extraction.Text),
		}).Debug("Pipeline attempt finished")
		return a, err
	})

	report.Attempts = out.Attempts
	if out.Value.outcome != nil {
		report.Quality = out.Value.outcome.Quality
		report.Extraction = out.Value.outcome.Extraction
		report.Warnings = appendUnique(report.Warnings, out.Value.outcome.Extraction.Warnings...)
	}
	report.Warnings = appendUnique(report.Warnings, out.Value.warnings...)
	if out.Value.result.Summary() != "" {
		report.Result = out.Value.result
	}

	if apperrors.IsType(out.Err, apperrors.ErrorTypeQualityRejected) {
		s.publish(ctx, report, observer.QualityRejected, out.Err, map[string]interface{}{"issues": len(report.Quality.Issues)})
		report.Warnings = appendUnique(report.Warnings, userMessage(out.Err))
	} else if out.Err != nil {
		report.Warnings = appendUnique(report.Warnings, userMessage(out.Err))
	}
	return s.finish(ctx, report, start, out.Err)
}

// runOnce extracts text, builds the prompt and interprets it. Only a quality
// rejection is returned as an error: it would repeat on every attempt.
func (s *labReportService) runOnce(ctx context.Context, extractor strategy.ExtractionStrategy, doc models.UploadedDocument, opts analyzer.PreprocessOptions) (attempt, error) {
	outcome, err := extractor.Extract(ctx, doc, opts)
	if outcome == nil {
		outcome = &strategy.Outcome{Extraction: models.ExtractionReport{Source: models.SourceNone, Strategy: extractor.GetStrategyName()}}
	}
	a := attempt{outcome: outcome, result: models.DegradedResult()}

	if apperrors.IsType(err, apperrors.ErrorTypeQualityRejected) {
		return a, err
	}
	if err != nil {
		logger.WithComponent("service").WithError(err).Warn("Text extraction failed, interpreting the document directly")
		a.warnings = append(a.warnings, userMessage(err))
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return a, ctxErr
	}

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType: observer.ExtractionCompleted,
		Document:  doc.Name,
		Success:   err == nil,
		Metadata: map[string]interface{}{
			"source":   string(outcome.Extraction.Source),
			"strategy": outcome.Extraction.Strategy,
			"attempts": outcome.Extraction.Attempts,
		},
	})

	result, err := s.interpreter.Interpret(ctx, prompt.Build(outcome.Extraction.Text, doc))
	a.result = result
	if err != nil {
		a.warnings = append(a.warnings, userMessage(err))
	}
	return a, nil
}

func (s *labReportService) finish(ctx context.Context, report *models.AnalysisReport, start time.Time, cause error) *models.AnalysisReport {
	elapsed := time.Since(start)
	report.ProcessingTimeSec = elapsed.Seconds()

	eventType := observer.AnalysisCompleted
	if report.Result.IsLowQuality() {
		eventType = observer.AnalysisDegraded
	}
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      eventType,
		AnalysisID:     report.ID,
		Document:       report.Document,
		ProcessingTime: elapsed,
		Success:        eventType == observer.AnalysisCompleted,
		ErrorMessage:   errorMessage(cause),
		Metadata: map[string]interface{}{
			"attempts": report.Attempts,
			"warnings": len(report.Warnings),
		},
	})
	return report
}

func (s *labReportService) publish(ctx context.Context, report *models.AnalysisReport, eventType observer.EventType, cause error, metadata map[string]interface{}) {
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:    eventType,
		AnalysisID:   report.ID,
		Document:     report.Document,
		Success:      cause == nil,
		ErrorMessage: errorMessage(cause),
		Metadata:     metadata,
	})
}

// AnalyzeURL fetches the document and analyzes it
func (s *labReportService) AnalyzeURL(ctx context.Context, documentURL string, opts analyzer.PreprocessOptions) (*models.AnalysisReport, error) {
	if s.repo == nil {
		return nil, apperrors.NewInternalError("no document source configured", repository.ErrRepositoryUnavailable)
	}
	if err := s.repo.ValidateDocumentURL(documentURL); err != nil {
		return nil, apperrors.NewValidationError("invalid document URL", err)
	}

	start := time.Now()
	doc, err := s.repo.FetchDocument(ctx, documentURL)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType:      observer.DocumentFetchFailed,
			Document:       documentURL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, fetchError(err)
	}
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.DocumentFetched,
		Document:       doc.Name,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"size": doc.Size, "media_type": string(doc.MediaType)},
	})

	return s.Analyze(ctx, doc, opts), nil
}

// CheckQuality runs the quality gate alone
func (s *labReportService) CheckQuality(doc models.UploadedDocument) (models.QualityReport, error) {
	if err := s.validator.Validate(doc); err != nil {
		return models.QualityReport{}, err
	}
	if s.preprocessor == nil {
		return models.QualityReport{Checked: false, Accepted: true}, nil
	}
	return s.preprocessor.CheckQuality(doc)
}

// ExtractText runs the document's extraction strategy once, bypassing the
// quality gate, and measures accuracy against expected when it is set
func (s *labReportService) ExtractText(ctx context.Context, doc models.UploadedDocument, expected string) (models.ExtractionReport, error) {
	if err := s.validator.Validate(doc); err != nil {
		return models.ExtractionReport{}, err
	}

	outcome, err := s.strategies.For(doc).Extract(ctx, doc, analyzer.DefaultOptions().WithForce(true))
	var report models.ExtractionReport
	if outcome != nil {
		report = outcome.Extraction
	}
	if err != nil {
		return report, err
	}

	if strings.TrimSpace(expected) != "" {
		accuracy := ocr.Measure(expected, report.Text)
		report.ExpectedText = expected
		report.WER = accuracy.WER
		report.CER = accuracy.CER
	}
	return report, nil
}

// Ask answers a follow-up question. Failures yield the apology text.
func (s *labReportService) Ask(ctx context.Context, question, analysisContext string) string {
	start := time.Now()
	answer, err := s.answerer.Ask(ctx, question, analysisContext)
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.QuestionAnswered,
		ProcessingTime: time.Since(start),
		Success:        err == nil,
		ErrorMessage:   errorMessage(err),
		Metadata:       map[string]interface{}{"question_chars": len(question)},
	})
	return answer
}

func fetchError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, repository.ErrInvalidDocumentURL):
		return apperrors.NewValidationError("invalid document URL", err)
	case errors.Is(err, repository.ErrDocumentNotFound):
		return apperrors.NewNotFoundError("document not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("document fetch timeout", err)
	default:
		return apperrors.NewNetworkError("failed to fetch document", err)
	}
}

// userMessage is the display text of an error: the AppError message when there is one
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" || contains(dst, v) {
			continue
		}
		dst = append(dst, v)
	}
	return dst
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
