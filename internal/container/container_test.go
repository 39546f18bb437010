package container

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anime-shed/lab-report-inspector-go/internal/config"
	"github.com/anime-shed/lab-report-inspector-go/internal/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("OCR_ENABLED", "false")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("AZURE_STORAGE_ACCOUNT", "")
	t.Setenv("AZURE_STORAGE_KEY", "")
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	return cfg
}

func TestNewContainer_ServesHealthAndMetrics(t *testing.T) {
	c, err := NewContainer(testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Service())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewContainer_TwiceDoesNotCollide(t *testing.T) {
	cfg := testConfig(t)
	_, err := NewContainer(cfg)
	require.NoError(t, err)
	_, err = NewContainer(cfg)
	require.NoError(t, err)
}

func TestNewContainer_InvalidAzureKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.AzureStorageAccount = "labreports"
	cfg.AzureStorageKey = "not base64 !!"

	_, err := NewContainer(cfg)
	assert.ErrorContains(t, err, "azure")
}

func TestCallConfigMapping(t *testing.T) {
	cfg := testConfig(t)
	cfg.AnalysisTimeout = 5 * time.Second
	cfg.OCRSelection = "longest"
	cfg.OCRMaxRetries = 1

	analysis := AnalysisCallConfig(cfg)
	assert.Equal(t, 0.1, analysis.Temperature)
	assert.Equal(t, 2048, analysis.MaxOutputTokens)
	assert.Equal(t, 0.95, analysis.TopP)
	assert.Equal(t, 5*time.Second, analysis.Timeout)

	qa := QACallConfig(cfg)
	assert.Equal(t, 0.2, qa.Temperature)
	assert.Equal(t, 1024, qa.MaxOutputTokens)
	assert.Equal(t, 30*time.Second, qa.Timeout)

	opts := EngineOptions(cfg)
	assert.Equal(t, ocr.SelectLongest, opts.Selection)
	assert.Equal(t, 1, opts.MaxRetries)
	assert.Equal(t, "eng", opts.Primary.Language)
}
