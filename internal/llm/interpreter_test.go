package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/anime-shed/lab-report-inspector-go/internal/errors"
	"github.com/anime-shed/lab-report-inspector-go/internal/prompt"
	"github.com/anime-shed/lab-report-inspector-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generatorFunc func(ctx context.Context, req GenerateRequest) (string, error)

func (f generatorFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}

func TestInterpret_ParsesReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, replyJSON("SUMMARY: All normal.\nKEY_FINDINGS:\n- LDL 125\nRISK_FACTORS:\n- None significant"))
	}))
	defer server.Close()

	interp := NewInterpreter(NewClient(testKey, WithBaseURL(server.URL)), DefaultAnalysisConfig())
	result, err := interp.Interpret(context.Background(), prompt.Request{Text: "analyze"})
	require.NoError(t, err)

	assert.Equal(t, "All normal.", result.Summary())
	assert.Equal(t, []string{"LDL 125"}, result.KeyFindings())
	assert.False(t, result.IsLowQuality())
}

func TestInterpret_TimeoutYieldsDegradedResult(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := DefaultAnalysisConfig()
	cfg.Timeout = 50 * time.Millisecond
	interp := NewInterpreter(NewClient(testKey, WithBaseURL(server.URL)), cfg)

	result, err := interp.Interpret(context.Background(), prompt.Request{Text: "analyze"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAnalysisTimedOut))
	assert.Equal(t, models.DegradedResult(), result)
	assert.True(t, result.IsIncomplete())
	assert.NotContains(t, err.Error(), testKey)
}

func TestInterpret_FailuresYieldDegradedResult(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"internal"}}`},
		{"empty body", http.StatusOK, ""},
		{"blank text", http.StatusOK, replyJSON("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			interp := NewInterpreter(NewClient(testKey, WithBaseURL(server.URL)), DefaultAnalysisConfig())
			result, err := interp.Interpret(context.Background(), prompt.Request{Text: "analyze"})

			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAnalysisFailed))
			assert.Equal(t, models.DegradedSummary, result.Summary())
			assert.Empty(t, result.KeyFindings())
			assert.Empty(t, result.RiskFactors())
			assert.Len(t, result.Recommendations(), 4)
		})
	}
}

func TestInterpret_AttachesInlineData(t *testing.T) {
	var got GenerateRequest
	gen := generatorFunc(func(_ context.Context, req GenerateRequest) (string, error) {
		got = req
		return "SUMMARY: ok", nil
	})

	attachment := &prompt.InlineData{MimeType: "application/pdf", Data: "JVBERi0="}
	_, err := NewInterpreter(gen, DefaultAnalysisConfig()).Interpret(context.Background(), prompt.Request{Text: "analyze", Attachment: attachment})
	require.NoError(t, err)

	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 2)
	assert.Equal(t, "analyze", got.Contents[0].Parts[0].Text)
	assert.Equal(t, attachment, got.Contents[0].Parts[1].InlineData)
	assert.Equal(t, 40, got.GenerationConfig.TopK)
}

func TestInterpret_CancelledParentIsFailure(t *testing.T) {
	gen := generatorFunc(func(ctx context.Context, _ GenerateRequest) (string, error) {
		return "", ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewInterpreter(gen, DefaultAnalysisConfig()).Interpret(ctx, prompt.Request{Text: "analyze"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAnalysisFailed))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, result.IsIncomplete())
}
