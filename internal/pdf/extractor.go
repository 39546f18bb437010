// Package pdf reads the text layer of PDF lab reports.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrEmptyDocument is returned for zero-length input
var ErrEmptyDocument = errors.New("empty pdf document")

// TextLayer is the text recovered from a PDF
type TextLayer struct {
	Text  string
	Pages int
}

// TextExtractor pulls string operands out of page content streams
type TextExtractor struct {
	conf *model.Configuration
}

// NewTextExtractor creates an extractor with the default pdfcpu configuration
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{conf: model.NewDefaultConfiguration()}
}

// Extract validates the PDF and returns the text of every page it can read.
// Pages whose content cannot be decoded are skipped.
func (e *TextExtractor) Extract(ctx context.Context, data []byte) (layer TextLayer, err error) {
	if len(data) == 0 {
		return TextLayer{}, ErrEmptyDocument
	}

	// pdfcpu may panic on malformed input
	defer func() {
		if r := recover(); r != nil {
			layer = TextLayer{}
			err = fmt.Errorf("panic while reading pdf: %v", r)
		}
	}()

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), e.conf)
	if err != nil {
		return TextLayer{}, fmt.Errorf("read and validate pdf: %w", err)
	}

	var pages []string
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return TextLayer{}, err
		}
		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		if text := ContentText(content); text != "" {
			pages = append(pages, text)
		}
	}

	return TextLayer{Text: strings.Join(pages, "\n"), Pages: pdfCtx.PageCount}, nil
}
