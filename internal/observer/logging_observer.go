package observer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LoggingObserver logs pipeline events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) *LoggingObserver {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles pipeline events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"component":       "pipeline",
		"event_type":      event.EventType,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.AnalysisID != "" {
		fields["analysis_id"] = event.AnalysisID
	}
	if event.Document != "" {
		fields["document"] = event.Document
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithContext(ctx).WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Info("Lab report analysis started")
	case AnalysisCompleted:
		entry.Info("Lab report analysis completed")
	case AnalysisDegraded:
		entry.Warn("Lab report analysis degraded")
	case QualityRejected:
		entry.Warn("Image rejected by quality gate")
	case ExtractionCompleted:
		entry.Debug("Text extraction completed")
	case QuestionAnswered:
		entry.Info("Follow-up question answered")
	case DocumentFetched:
		entry.Debug("Document fetched successfully")
	case DocumentFetchFailed:
		entry.Error("Document fetch failed")
	default:
		entry.Info("Pipeline event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}
