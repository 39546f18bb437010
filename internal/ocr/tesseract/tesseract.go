// Package tesseract implements ocr.Recognizer on top of the gosseract client.
package tesseract

import (
	"context"
	"fmt"

	"github.com/anime-shed/lab-report-inspector-go/internal/ocr"
	"github.com/otiai10/gosseract/v2"
)

// initOnlyVariables are only honoured when Tesseract initialises, failing to set them is not fatal
var initOnlyVariables = map[string]bool{
	"tessedit_ocr_engine_mode": true,
	"load_system_dawg":         true,
	"load_freq_dawg":           true,
	"load_bigram_dawg":         true,
}

// Recognizer runs Tesseract with a fresh client per call
type Recognizer struct {
	clientFactory func() *gosseract.Client
}

// NewRecognizer constructs a Tesseract-backed recognizer
func NewRecognizer() *Recognizer {
	return &Recognizer{clientFactory: gosseract.NewClient}
}

// Recognize runs OCR on the PNG bytes using the given configuration.
// The cgo call cannot be interrupted, so a cancelled context returns early
// while the client finishes and closes in the background.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, cfg ocr.EngineConfig) (ocr.Recognition, error) {
	type result struct {
		rec ocr.Recognition
		err error
	}
	done := make(chan result, 1)

	go func() {
		c := r.clientFactory()
		defer c.Close()
		rec, err := recognizeWithClient(c, image, cfg)
		done <- result{rec: rec, err: err}
	}()

	select {
	case <-ctx.Done():
		return ocr.Recognition{}, ctx.Err()
	case res := <-done:
		return res.rec, res.err
	}
}

// Close is a no-op, clients are closed after every call
func (r *Recognizer) Close() error {
	return nil
}

func recognizeWithClient(c *gosseract.Client, image []byte, cfg ocr.EngineConfig) (ocr.Recognition, error) {
	if err := c.SetImageFromBytes(image); err != nil {
		return ocr.Recognition{}, fmt.Errorf("set image: %w", err)
	}
	if cfg.Language != "" {
		if err := c.SetLanguage(cfg.Language); err != nil {
			return ocr.Recognition{}, fmt.Errorf("set language: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		return ocr.Recognition{}, fmt.Errorf("set page segmentation mode: %w", err)
	}
	for k, v := range cfg.Variables() {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil && !initOnlyVariables[k] {
			return ocr.Recognition{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Recognition{}, fmt.Errorf("recognize text: %w", err)
	}

	return ocr.Recognition{Text: text, Words: extractWords(c)}, nil
}

func extractWords(c *gosseract.Client) []ocr.Word {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, ocr.Word{Text: b.Word, Confidence: b.Confidence})
	}
	return words
}
