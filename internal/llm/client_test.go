package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anime-shed/lab-report-inspector-go/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-secret-key"

func replyJSON(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func TestClientGenerate_Request(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		_, _ = io.WriteString(w, replyJSON("SUMMARY: fine"))
	}))
	defer server.Close()

	client := NewClient(testKey, WithBaseURL(server.URL+"/"))
	text, err := client.Generate(context.Background(), GenerateRequest{
		Contents: []Content{{Parts: []Part{
			{Text: "analyze"},
			{InlineData: &prompt.InlineData{MimeType: "image/png", Data: "AAAA"}},
		}}},
		GenerationConfig: DefaultAnalysisConfig().generation(),
	})
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY: fine", text)

	parts := captured["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "analyze", parts[0].(map[string]any)["text"])
	inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
	assert.Equal(t, "image/png", inline["mime_type"])
	assert.Equal(t, "AAAA", inline["data"])

	gen := captured["generation_config"].(map[string]any)
	assert.Equal(t, 0.1, gen["temperature"])
	assert.Equal(t, float64(2048), gen["max_output_tokens"])
	assert.Equal(t, 0.95, gen["topP"])
	assert.Equal(t, float64(40), gen["topK"])
}

func TestClientGenerate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"empty body", http.StatusOK, "", ErrEmptyResponse},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, ErrEmptyResponse},
		{"blank text", http.StatusOK, replyJSON("   \n"), ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(testKey, WithBaseURL(server.URL)).Generate(context.Background(), GenerateRequest{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClientGenerate_StatusErrorIsRedacted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"API key `+r.URL.Query().Get("key")+` not valid"}}`)
	}))
	defer server.Close()

	_, err := NewClient(testKey, WithBaseURL(server.URL)).Generate(context.Background(), GenerateRequest{})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Message, "not valid")
	assert.NotContains(t, err.Error(), testKey)
}

func TestClientGenerate_TransportErrorIsRedacted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := NewClient(testKey, WithBaseURL(baseURL)).Generate(context.Background(), GenerateRequest{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testKey)
	assert.Contains(t, err.Error(), redacted)
}

func TestClientGenerate_MissingKey(t *testing.T) {
	_, err := NewClient("").Generate(context.Background(), GenerateRequest{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestClientOptions(t *testing.T) {
	c := NewClient(testKey, WithModel("gemini-1.5-pro"), WithModel(""), WithHTTPClient(nil))
	assert.Equal(t, "gemini-1.5-pro", c.Model())
	assert.NotNil(t, c.httpClient)
	assert.Contains(t, c.endpoint(), DefaultBaseURL+"/v1/models/gemini-1.5-pro:generateContent?key=")
}
