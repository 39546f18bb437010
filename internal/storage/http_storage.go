package storage

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/anime-shed/lab-report-inspector-go/internal/retry"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/anime-shed/lab-report-inspector-go/pkg/validation"
)

const fetchAttempts = 3

// DocumentFetcher downloads a lab report from a remote location
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, documentURL string) (models.UploadedDocument, error)
}

// StatusError is a non-200 reply from the document host
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return fmt.Sprintf("client error: status code %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: status code %d", e.StatusCode)
}

// Retryable reports whether another attempt may succeed
func (e *StatusError) Retryable() bool {
	return e.StatusCode < 400 || e.StatusCode >= 500
}

// ErrDocumentTooLarge is returned when the body exceeds the upload limit
var ErrDocumentTooLarge = errors.New("document exceeds the size limit")

// HTTPDocumentFetcher downloads documents over HTTP(S) with retries on transient errors
type HTTPDocumentFetcher struct {
	client  *http.Client
	maxSize int64
	backoff func(int) time.Duration
}

// HTTPOption configures the HTTP fetcher
type HTTPOption func(*HTTPDocumentFetcher)

// WithBackoff sets the pause between attempts
func WithBackoff(backoff func(int) time.Duration) HTTPOption {
	return func(f *HTTPDocumentFetcher) {
		f.backoff = backoff
	}
}

// WithMaxSize sets the largest accepted body
func WithMaxSize(maxSize int64) HTTPOption {
	return func(f *HTTPDocumentFetcher) {
		if maxSize > 0 {
			f.maxSize = maxSize
		}
	}
}

// NewHTTPDocumentFetcher creates an HTTP document fetcher
func NewHTTPDocumentFetcher(timeout time.Duration, opts ...HTTPOption) *HTTPDocumentFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,

		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	f := &HTTPDocumentFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxSize: models.MaxDocumentSize,
		backoff: retry.LinearBackoff(time.Second),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchDocument downloads the document. 5xx replies and network errors are
// retried up to three attempts in total; 4xx replies fail immediately.
func (h *HTTPDocumentFetcher) FetchDocument(ctx context.Context, documentURL string) (models.UploadedDocument, error) {
	policy := retry.Policy[models.UploadedDocument]{
		MaxAttempts: fetchAttempts,
		Succeeded: func(_ models.UploadedDocument, err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return !statusErr.Retryable()
			}
			return err == nil || errors.Is(err, ErrDocumentTooLarge) || ctx.Err() != nil
		},
		Backoff: h.backoff,
	}

	out := policy.Do(ctx, func(ctx context.Context, _ int) (models.UploadedDocument, error) {
		return h.fetchOnce(ctx, documentURL)
	})
	if out.Err != nil {
		return models.UploadedDocument{}, fmt.Errorf("failed to fetch document after %d attempts: %w", out.Attempts, out.Err)
	}
	return out.Value, nil
}

func (h *HTTPDocumentFetcher) fetchOnce(ctx context.Context, documentURL string) (models.UploadedDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return models.UploadedDocument{}, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, application/pdf, */*")
	req.Header.Set("User-Agent", "Lab-Report-Inspector/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return models.UploadedDocument{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return models.UploadedDocument{}, &StatusError{StatusCode: resp.StatusCode}
	}

	data, err := readLimited(resp.Body, h.maxSize)
	if err != nil {
		return models.UploadedDocument{}, err
	}

	name := documentName(resp.Request.URL)
	return models.NewUploadedDocument(name, string(resolveMediaType(resp.Header.Get("Content-Type"), name, data)), data), nil
}

// readLimited reads at most maxSize bytes and fails if the body is longer
func readLimited(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrDocumentTooLarge
	}
	return data, nil
}

// resolveMediaType trusts an accepted Content-Type and otherwise sniffs the bytes
func resolveMediaType(contentType, name string, data []byte) models.MediaType {
	declared := models.NormalizeMediaType(contentType)
	for _, allowed := range models.AllowedMediaTypes {
		if declared == allowed {
			return declared
		}
	}
	if detected := validation.DetectMediaType(name, data); detected != "" {
		return detected
	}
	return declared
}

func documentName(u *url.URL) string {
	if u == nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
