package container

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anime-shed/lab-report-inspector-go/internal/analyzer"
	"github.com/anime-shed/lab-report-inspector-go/internal/config"
	"github.com/anime-shed/lab-report-inspector-go/internal/factory"
	"github.com/anime-shed/lab-report-inspector-go/internal/llm"
	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
	"github.com/anime-shed/lab-report-inspector-go/internal/observer"
	"github.com/anime-shed/lab-report-inspector-go/internal/ocr"
	"github.com/anime-shed/lab-report-inspector-go/internal/pdf"
	"github.com/anime-shed/lab-report-inspector-go/internal/repository"
	"github.com/anime-shed/lab-report-inspector-go/internal/service"
	"github.com/anime-shed/lab-report-inspector-go/internal/strategy"
	"github.com/anime-shed/lab-report-inspector-go/internal/transport"
	"github.com/anime-shed/lab-report-inspector-go/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds all application dependencies
type Container struct {
	config     *config.Config
	recognizer ocr.Recognizer
	service    service.LabReportService
	handler    http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.WithComponent("container")

	// Observability
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observer.NewMetricsObserver(registry)
	if err != nil {
		return nil, err
	}
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	components := factory.NewComponentFactory(cfg)

	// Imaging
	qualityValidator := validation.NewQualityValidatorWithThresholds(validation.QualityThresholds{
		MinWidth:      cfg.QualityMinWidth,
		MinHeight:     cfg.QualityMinHeight,
		MinBrightness: cfg.QualityMinBrightness,
		MaxBrightness: cfg.QualityMaxBrightness,
		MinContrast:   cfg.QualityMinContrast,
	})
	upscaler := analyzer.NewUpscaler(cfg.UpscaleTargetWidth, cfg.UpscaleTargetHeight, cfg.UpscaleMinDimension)
	preprocessor := analyzer.NewPreprocessor(qualityValidator, upscaler)

	// Text extraction
	recognizerType := factory.NoRecognizer
	if cfg.OCREnabled {
		recognizerType = factory.TesseractRecognizer
	}
	recognizer, err := components.RecognizerFactory.CreateRecognizer(recognizerType)
	if err != nil {
		return nil, err
	}

	imageStrategy := strategy.NewImageOnlyStrategy(preprocessor)
	if cfg.OCREnabled {
		imageStrategy = strategy.NewOCRStrategy(preprocessor, ocr.NewEngine(recognizer, EngineOptions(cfg)))
	}
	selector := strategy.NewSelector(
		imageStrategy,
		strategy.NewPDFTextStrategy(pdf.NewTextExtractor()),
		strategy.NewImageOnlyStrategy(preprocessor),
	)

	// Interpretation
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set; analyses will return degraded results")
	}
	client := llm.NewClient(cfg.GeminiAPIKey, llm.WithBaseURL(cfg.GeminiBaseURL), llm.WithModel(cfg.GeminiModel))
	interpreter := llm.NewInterpreter(client, AnalysisCallConfig(cfg))
	answerer := llm.NewQAClient(client, QACallConfig(cfg))

	// Document sources
	repo, err := newRepository(cfg, components.StorageFactory)
	if err != nil {
		return nil, err
	}

	svc := service.NewLabReportService(service.Dependencies{
		Validator:    validation.NewDocumentValidator(),
		Preprocessor: preprocessor,
		Strategies:   selector,
		Interpreter:  interpreter,
		Answerer:     answerer,
		Repository:   repo,
		Events:       events,
		MaxAttempts:  cfg.AnalysisMaxAttempts,
	})

	log.WithField("ocr_enabled", cfg.OCREnabled).
		WithField("azure_enabled", cfg.AzureEnabled()).
		WithField("model", client.Model()).
		Info("Dependencies initialized")

	return &Container{
		config:     cfg,
		recognizer: recognizer,
		service:    svc,
		handler:    transport.NewHandler(svc, cfg, registry),
	}, nil
}

func newRepository(cfg *config.Config, storageFactory factory.StorageFactory) (repository.DocumentRepository, error) {
	fetcher, err := storageFactory.CreateStorage(factory.HTTPStorage)
	if err != nil {
		return nil, err
	}

	var blobs repository.BlobSource
	if cfg.AzureEnabled() {
		azure, err := storageFactory.CreateStorage(factory.AzureStorage)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize azure storage: %w", err)
		}
		source, ok := azure.(repository.BlobSource)
		if !ok {
			return nil, errors.New("azure storage does not support URL routing")
		}
		blobs = source
	}

	return repository.NewRemoteDocumentRepository(fetcher, blobs, validation.NewURLValidator()), nil
}

// EngineOptions maps the OCR settings onto engine options
func EngineOptions(cfg *config.Config) ocr.Options {
	opts := ocr.DefaultOptions()
	opts.Primary = ocr.PrimaryConfig(cfg.OCRLanguage)
	opts.Alternate = ocr.AlternateConfig(cfg.OCRLanguage)
	opts.MaxRetries = cfg.OCRMaxRetries
	opts.Timeout = cfg.OCRTimeout
	opts.Selection = ocr.Selection(cfg.OCRSelection)
	return opts
}

// AnalysisCallConfig maps the analysis model settings
func AnalysisCallConfig(cfg *config.Config) llm.CallConfig {
	c := llm.DefaultAnalysisConfig()
	c.Temperature = cfg.AnalysisTemperature
	c.MaxOutputTokens = cfg.AnalysisMaxTokens
	c.Timeout = cfg.AnalysisTimeout
	return c
}

// QACallConfig maps the follow-up question model settings
func QACallConfig(cfg *config.Config) llm.CallConfig {
	c := llm.DefaultQAConfig()
	c.Temperature = cfg.QATemperature
	c.MaxOutputTokens = cfg.QAMaxTokens
	c.Timeout = cfg.QATimeout
	return c
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the lab report service
func (c *Container) Service() service.LabReportService {
	return c.service
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the OCR backend
func (c *Container) Close() error {
	if c.recognizer == nil {
		return nil
	}
	return c.recognizer.Close()
}
