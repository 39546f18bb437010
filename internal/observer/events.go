package observer

import (
	"context"
	"sync"
	"time"

	"github.com/anime-shed/lab-report-inspector-go/internal/logger"
)

// EventType represents the type of pipeline event
type EventType string

const (
	// AnalysisStarted when analysis begins
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when analysis produced a usable result
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisDegraded when analysis ended with a low-quality or fallback result
	AnalysisDegraded EventType = "analysis_degraded"
	// QualityRejected when an image fails the quality gate
	QualityRejected EventType = "quality_rejected"
	// ExtractionCompleted when a text extraction strategy finished
	ExtractionCompleted EventType = "extraction_completed"
	// QuestionAnswered when a follow-up question was handled
	QuestionAnswered EventType = "question_answered"
	// DocumentFetched when a remote document was downloaded
	DocumentFetched EventType = "document_fetched"
	// DocumentFetchFailed when a remote document could not be downloaded
	DocumentFetchFailed EventType = "document_fetch_failed"
)

// AnalysisEvent represents one pipeline event
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	AnalysisID     string                 `json:"analysis_id,omitempty"`
	Document       string                 `json:"document,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes the first observer with the same name
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every observer concurrently and
// returns once all of them have handled it
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	var wg sync.WaitGroup
	for _, observer := range observers {
		wg.Add(1)
		go func(obs Observer) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.WithComponent("observer").
						WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
	wg.Wait()
}

// Nop discards every event
type Nop struct{}

func (Nop) Subscribe(Observer)                             {}
func (Nop) Unsubscribe(Observer)                           {}
func (Nop) NotifyObservers(context.Context, AnalysisEvent) {}
