package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anime-shed/lab-report-inspector-go/internal/analyzer"
	"github.com/anime-shed/lab-report-inspector-go/internal/config"
	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
	"github.com/anime-shed/lab-report-inspector-go/internal/service"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/anime-shed/lab-report-inspector-go/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// NewHandler builds the HTTP API. gatherer may be nil to disable /metrics.
func NewHandler(svc service.LabReportService, cfg *config.Config, gatherer prometheus.Gatherer) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestID(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	h := &handler{svc: svc, cfg: cfg}
	api := r.Group("/api/v1", rateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))
	api.POST("/analyze", h.analyzeUpload)
	api.POST("/analyze/url", h.analyzeURL)
	api.POST("/quality", h.checkQuality)
	api.POST("/ocr", h.extractText)
	api.POST("/ask", h.ask)

	return r
}

type handler struct {
	svc service.LabReportService
	cfg *config.Config
}

func (h *handler) analyzeUpload(c *gin.Context) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	log := requestLogger(c)
	log.Info("Processing lab report upload")

	doc, err := readUpload(c)
	if err != nil {
		respondError(c, determineStatusCode(err), "invalid upload", err)
		return
	}

	force, err := parseForce(c.DefaultPostForm("force", c.Query("force")))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid force flag", err)
		return
	}

	report := h.svc.Analyze(ctx, doc, analyzer.DefaultOptions().WithForce(force))

	log.WithFields(logrus.Fields{
		"analysis_id":        report.ID,
		"document":           doc.Name,
		"attempts":           report.Attempts,
		"low_quality":        report.Result.IsLowQuality(),
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	}).Info("Lab report analysis completed")

	c.JSON(http.StatusOK, report)
}

func (h *handler) analyzeURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.AnalyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	requestLogger(c).WithField("url", req.URL).Info("Processing lab report URL")

	report, err := h.svc.AnalyzeURL(ctx, req.URL, analyzer.DefaultOptions().WithForce(req.Force))
	if err != nil {
		respondError(c, determineStatusCode(err), "failed to fetch document", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *handler) checkQuality(c *gin.Context) {
	doc, err := readUpload(c)
	if err != nil {
		respondError(c, determineStatusCode(err), "invalid upload", err)
		return
	}

	report, err := h.svc.CheckQuality(doc)
	if err != nil {
		respondError(c, determineStatusCode(err), "quality check failed", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *handler) extractText(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	doc, err := readUpload(c)
	if err != nil {
		respondError(c, determineStatusCode(err), "invalid upload", err)
		return
	}

	report, err := h.svc.ExtractText(ctx, doc, c.PostForm("expected_text"))
	if err != nil {
		respondError(c, determineStatusCode(err), "text extraction failed", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *handler) ask(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		err := apperrors.NewValidationError("question cannot be empty", nil)
		respondError(c, err.StatusCode, "invalid question", err)
		return
	}

	analysisContext := strings.TrimSpace(req.Context)
	if analysisContext == "" && req.Result != nil {
		analysisContext = models.BuildAnalysisContext(*req.Result)
	}
	if analysisContext == "" {
		err := apperrors.NewValidationError("either context or result is required", nil)
		respondError(c, err.StatusCode, "missing analysis context", err)
		return
	}

	answer := h.svc.Ask(ctx, question, analysisContext)
	c.JSON(http.StatusOK, models.AskResponse{Question: question, Answer: answer})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// readUpload reads the multipart "file" field into a document
func readUpload(c *gin.Context) (models.UploadedDocument, error) {
	header, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return models.UploadedDocument{}, err
		}
		return models.UploadedDocument{}, apperrors.NewValidationError("multipart field \"file\" is required", err)
	}
	if header.Size > models.MaxDocumentSize {
		return models.UploadedDocument{}, apperrors.NewValidationError(
			fmt.Sprintf("file too large: %d bytes exceeds the %d byte limit", header.Size, models.MaxDocumentSize), nil)
	}

	f, err := header.Open()
	if err != nil {
		return models.UploadedDocument{}, apperrors.NewInternalError("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, models.MaxDocumentSize+1))
	if err != nil {
		return models.UploadedDocument{}, apperrors.NewInternalError("failed to read upload", err)
	}

	mediaType := models.NormalizeMediaType(header.Header.Get("Content-Type"))
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = validation.DetectMediaType(header.Filename, data)
	}
	return models.NewUploadedDocument(header.Filename, string(mediaType), data), nil
}

func parseForce(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func requestLogger(c *gin.Context) *logrus.Entry {
	return logger.WithRequestID(c.GetString(requestIDKey)).WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	})
}

func errorResponse(c *gin.Context, code int, message string, err error) models.ErrorResponse {
	text := message
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		text = fmt.Sprintf("%s: %s", message, appErr.Message)
	} else if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	return models.ErrorResponse{
		Error:     http.StatusText(code),
		Message:   text,
		RequestID: c.GetString(requestIDKey),
	}
}
