package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	LogLevel           string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	RateLimitRPS       float64
	RateLimitBurst     int

	// Interpretation model. GeminiAPIKey must never be logged.
	GeminiAPIKey        string
	GeminiBaseURL       string
	GeminiModel         string
	AnalysisTimeout     time.Duration
	QATimeout           time.Duration
	AnalysisTemperature float64
	QATemperature       float64
	AnalysisMaxTokens   int
	QAMaxTokens         int
	AnalysisMaxAttempts int

	// Quality gate
	QualityMinWidth      int
	QualityMinHeight     int
	QualityMinBrightness float64
	QualityMaxBrightness float64
	QualityMinContrast   float64

	// Upscaler
	UpscaleTargetWidth  int
	UpscaleTargetHeight int
	UpscaleMinDimension int

	// Text extraction
	OCREnabled    bool
	OCRLanguage   string
	OCRMaxRetries int
	OCRTimeout    time.Duration
	OCRSelection  string

	// Document sources
	DocumentFetchTimeout time.Duration
	AzureStorageAccount  string
	AzureStorageKey      string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob credentials were supplied
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding variables already present in the environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 120*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 11*1024*1024), // 10MB document + multipart overhead
		RateLimitRPS:       parseFloatOrDefault("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     int(parseIntOrDefault("RATE_LIMIT_BURST", 5)),

		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:       getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:         getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		AnalysisTimeout:     parseDurationOrDefault("ANALYSIS_TIMEOUT", 60*time.Second),
		QATimeout:           parseDurationOrDefault("QA_TIMEOUT", 30*time.Second),
		AnalysisTemperature: parseFloatOrDefault("ANALYSIS_TEMPERATURE", 0.1),
		QATemperature:       parseFloatOrDefault("QA_TEMPERATURE", 0.2),
		AnalysisMaxTokens:   int(parseIntOrDefault("ANALYSIS_MAX_TOKENS", 2048)),
		QAMaxTokens:         int(parseIntOrDefault("QA_MAX_TOKENS", 1024)),
		AnalysisMaxAttempts: int(parseIntOrDefault("ANALYSIS_MAX_ATTEMPTS", 2)),

		QualityMinWidth:      int(parseIntOrDefault("QUALITY_MIN_WIDTH", 800)),
		QualityMinHeight:     int(parseIntOrDefault("QUALITY_MIN_HEIGHT", 600)),
		QualityMinBrightness: parseFloatOrDefault("QUALITY_MIN_BRIGHTNESS", 50),
		QualityMaxBrightness: parseFloatOrDefault("QUALITY_MAX_BRIGHTNESS", 200),
		QualityMinContrast:   parseFloatOrDefault("QUALITY_MIN_CONTRAST", 0.3),

		UpscaleTargetWidth:  int(parseIntOrDefault("UPSCALE_TARGET_WIDTH", 1200)),
		UpscaleTargetHeight: int(parseIntOrDefault("UPSCALE_TARGET_HEIGHT", 1600)),
		UpscaleMinDimension: int(parseIntOrDefault("UPSCALE_MIN_DIMENSION", 300)),

		OCREnabled:    parseBoolOrDefault("OCR_ENABLED", true),
		OCRLanguage:   getEnvOrDefault("OCR_LANGUAGE", "eng"),
		OCRMaxRetries: int(parseIntOrDefault("OCR_MAX_RETRIES", 2)),
		OCRTimeout:    parseDurationOrDefault("OCR_TIMEOUT", 30*time.Second),
		OCRSelection:  strings.ToLower(getEnvOrDefault("OCR_SELECTION", "latest")),

		DocumentFetchTimeout: parseDurationOrDefault("DOCUMENT_FETCH_TIMEOUT", 15*time.Second),
		AzureStorageAccount:  os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:      os.Getenv("AZURE_STORAGE_KEY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.AnalysisTimeout <= 0 || c.QATimeout <= 0 || c.OCRTimeout <= 0 || c.DocumentFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s, qa=%s, ocr=%s, fetch=%s)",
			c.RequestTimeout, c.AnalysisTimeout, c.QATimeout, c.OCRTimeout, c.DocumentFetchTimeout)
	}
	if c.QualityMinBrightness < 0 || c.QualityMaxBrightness > 255 || c.QualityMinBrightness >= c.QualityMaxBrightness {
		return fmt.Errorf("invalid brightness band [%v, %v]", c.QualityMinBrightness, c.QualityMaxBrightness)
	}
	if c.QualityMinContrast < 0 || c.QualityMinContrast > 1 {
		return fmt.Errorf("QUALITY_MIN_CONTRAST must be within [0,1] (got %v)", c.QualityMinContrast)
	}
	if c.UpscaleTargetWidth <= 0 || c.UpscaleTargetHeight <= 0 {
		return fmt.Errorf("upscale target must be positive (got %dx%d)", c.UpscaleTargetWidth, c.UpscaleTargetHeight)
	}
	if c.OCRMaxRetries < 0 {
		return fmt.Errorf("OCR_MAX_RETRIES must be >= 0 (got %d)", c.OCRMaxRetries)
	}
	if c.OCRSelection != "latest" && c.OCRSelection != "longest" {
		return fmt.Errorf("OCR_SELECTION must be latest or longest (got %q)", c.OCRSelection)
	}
	if c.AnalysisMaxAttempts < 1 {
		return fmt.Errorf("ANALYSIS_MAX_ATTEMPTS must be >= 1 (got %d)", c.AnalysisMaxAttempts)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit must be >= 0 (got rps=%v, burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
