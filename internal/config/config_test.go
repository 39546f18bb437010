package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, 30*time.Second, cfg.QATimeout)
	assert.Equal(t, 0.1, cfg.AnalysisTemperature)
	assert.Equal(t, 0.2, cfg.QATemperature)
	assert.Equal(t, 2048, cfg.AnalysisMaxTokens)
	assert.Equal(t, 1024, cfg.QAMaxTokens)
	assert.Equal(t, 800, cfg.QualityMinWidth)
	assert.Equal(t, 600, cfg.QualityMinHeight)
	assert.Equal(t, 50.0, cfg.QualityMinBrightness)
	assert.Equal(t, 200.0, cfg.QualityMaxBrightness)
	assert.Equal(t, 0.3, cfg.QualityMinContrast)
	assert.Equal(t, 1200, cfg.UpscaleTargetWidth)
	assert.Equal(t, 1600, cfg.UpscaleTargetHeight)
	assert.Equal(t, 2, cfg.OCRMaxRetries)
	assert.Equal(t, "latest", cfg.OCRSelection)
	assert.Equal(t, 2, cfg.AnalysisMaxAttempts)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ANALYSIS_TIMEOUT", "5s")
	t.Setenv("QUALITY_MIN_CONTRAST", "0.25")
	t.Setenv("OCR_ENABLED", "false")
	t.Setenv("OCR_SELECTION", "LONGEST")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, 0.25, cfg.QualityMinContrast)
	assert.False(t, cfg.OCREnabled)
	assert.Equal(t, "longest", cfg.OCRSelection)
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad port", "PORT", "http"},
		{"inverted brightness band", "QUALITY_MIN_BRIGHTNESS", "250"},
		{"contrast above one", "QUALITY_MIN_CONTRAST", "1.5"},
		{"unknown selection", "OCR_SELECTION", "random"},
		{"zero attempts", "ANALYSIS_MAX_ATTEMPTS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_MODEL=from-file\nLAB_DOTENV_ONLY=yes\n"), 0o600))
	t.Setenv("GEMINI_MODEL", "from-env")
	t.Setenv("LAB_DOTENV_ONLY", "")
	os.Unsetenv("LAB_DOTENV_ONLY")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "from-env", os.Getenv("GEMINI_MODEL"))
	assert.Equal(t, "yes", os.Getenv("LAB_DOTENV_ONLY"))
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: " 127.0.0.1 ", Port: "8080 "}
	assert.Equal(t, "127.0.0.1:8080", cfg.ServerAddress())
}
