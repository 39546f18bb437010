package observer

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports pipeline events as Prometheus metrics
type MetricsObserver struct {
	analyses    *prometheus.CounterVec
	duration    prometheus.Histogram
	rejections  prometheus.Counter
	extractions *prometheus.CounterVec
	questions   *prometheus.CounterVec
	fetches     *prometheus.CounterVec
}

// NewMetricsObserver registers the pipeline collectors on reg
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labinsight",
			Name:      "analyses_total",
			Help:      "Lab report analyses by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "labinsight",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis time.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "labinsight",
			Name:      "quality_rejections_total",
			Help:      "Images rejected by the quality gate.",
		}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labinsight",
			Name:      "extractions_total",
			Help:      "Text extractions by source.",
		}, []string{"source"}),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labinsight",
			Name:      "questions_total",
			Help:      "Follow-up questions by outcome.",
		}, []string{"outcome"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labinsight",
			Name:      "document_fetches_total",
			Help:      "Remote document downloads by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{o.analyses, o.duration, o.rejections, o.extractions, o.questions, o.fetches} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return o, nil
}

// OnEvent handles pipeline events by updating metrics
func (o *MetricsObserver) OnEvent(_ context.Context, event AnalysisEvent) {
	switch event.EventType {
	case AnalysisStarted:
		o.analyses.WithLabelValues("started").Inc()
	case AnalysisCompleted:
		o.analyses.WithLabelValues("completed").Inc()
		o.duration.Observe(event.ProcessingTime.Seconds())
	case AnalysisDegraded:
		o.analyses.WithLabelValues("degraded").Inc()
		o.duration.Observe(event.ProcessingTime.Seconds())
	case QualityRejected:
		o.rejections.Inc()
	case ExtractionCompleted:
		source, _ := event.Metadata["source"].(string)
		if source == "" {
			source = "none"
		}
		o.extractions.WithLabelValues(source).Inc()
	case QuestionAnswered:
		o.questions.WithLabelValues(outcome(event.Success)).Inc()
	case DocumentFetched:
		o.fetches.WithLabelValues("success").Inc()
	case DocumentFetchFailed:
		o.fetches.WithLabelValues("failure").Inc()
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
