package ocr

import "context"

// Word is a recognized word with its confidence (0-100)
type Word struct {
	Text       string
	Confidence float64
}

// Recognition is the raw output of one recognizer call
type Recognition struct {
	Text  string
	Words []Word
}

// MeanConfidence averages the word confidences, 0 when no words were returned
func (r Recognition) MeanConfidence() float64 {
	if len(r.Words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range r.Words {
		sum += w.Confidence
	}
	return sum / float64(len(r.Words))
}

// Recognizer is an OCR backend
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, cfg EngineConfig) (Recognition, error)
	Close() error
}

// RecognizerFunc adapts a function to the Recognizer interface
type RecognizerFunc func(ctx context.Context, image []byte, cfg EngineConfig) (Recognition, error)

func (f RecognizerFunc) Recognize(ctx context.Context, image []byte, cfg EngineConfig) (Recognition, error) {
	return f(ctx, image, cfg)
}

func (f RecognizerFunc) Close() error { return nil }
