package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/smart-extract/internal/config"
	"github.com/phrazzld/smart-extract/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGenerator(t *testing.T, endpoint string) *Generator {
	t.Helper()
	g, err := NewGenerator(testLogger(), config.LLMConfig{
		APIKey:   "sk-test-0123456789abcdefghij",
		Endpoint: endpoint,
		Model:    "test-model",
	}, nil)
	require.NoError(t, err)
	return g
}

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(testLogger(), config.LLMConfig{}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewGenerator(nil, config.LLMConfig{APIKey: "k"}, nil)
	assert.Error(t, err)

	g, err := NewGenerator(testLogger(), config.LLMConfig{APIKey: "k", Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, g.endpoint)
	assert.Equal(t, DefaultModel, g.model)
	assert.Equal(t, 5*time.Second, g.httpClient.Timeout)
}

func TestGenerate_ChatCompletion(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test-0123456789abcdefghij", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"标签：#go"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	text, err := newTestGenerator(t, srv.URL+"/v1/chat/completions").Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "标签：#go", text)

	assert.Equal(t, "test-model", got["model"])
	assert.Equal(t, 0.7, got["temperature"])
	assert.Equal(t, float64(2048), got["max_tokens"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "hello"}, msgs[0])
}

func TestGenerate_DashScope(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"output":{"text":"总结：千问"},"request_id":"r"}`)
	}))
	defer srv.Close()

	text, err := newTestGenerator(t, srv.URL+"/api/v1/services/aigc/text-generation/generation").
		Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "总结：千问", text)

	input := got["input"].(map[string]any)
	assert.Len(t, input["messages"], 1)
	params := got["parameters"].(map[string]any)
	assert.Equal(t, "text", params["result_format"])
	assert.Equal(t, 0.8, params["top_p"])
	assert.NotContains(t, got, "messages")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, generation.ErrTransientFailure},
		{"server error", http.StatusBadGateway, `bad gateway`, generation.ErrTransientFailure},
		{"content filter", http.StatusOK, `{"choices":[{"message":{"content":""},"finish_reason":"content_filter"}]}`, generation.ErrContentBlocked},
		{"no text", http.StatusOK, `{"choices":[]}`, generation.ErrInvalidResponse},
		{"not json", http.StatusOK, `<html>`, generation.ErrInvalidResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "hello")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGenerate_ClientErrorIsPermanentAndRedacted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"invalid api_key=sk-test-0123456789abcdefghij"}`)
	}))
	defer srv.Close()

	_, err := newTestGenerator(t, srv.URL).Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.NotErrorIs(t, err, generation.ErrTransientFailure)
	assert.Contains(t, err.Error(), "status 401")
	assert.NotContains(t, err.Error(), "sk-test")
}

func TestGenerate_NetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestGenerator(t, url).Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
}

func TestGenerate_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestGenerator(t, srv.URL).Generate(ctx, "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	_, err := newTestGenerator(t, "http://127.0.0.1:1").Generate(context.Background(), "")
	assert.ErrorIs(t, err, generation.ErrEmptyText)
}
