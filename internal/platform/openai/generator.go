package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/smart-extract/internal/config"
	"github.com/phrazzld/smart-extract/internal/generation"
	"github.com/phrazzld/smart-extract/internal/redact"
)

// Defaults applied when the configuration leaves them empty.
const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultModel    = "gpt-3.5-turbo"
	DefaultTimeout  = 60 * time.Second

	defaultMaxTokens   = 2048
	defaultTemperature = 0.7
	defaultTopP        = 0.8

	maxResponseBytes = 4 << 20
	maxErrorSnippet  = 200
)

// Generator calls a chat completion endpoint.
type Generator struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	logger     *slog.Logger
}

// NewGenerator creates a Generator from cfg. A nil httpClient gets one with
// cfg.Timeout (or DefaultTimeout).
func NewGenerator(logger *slog.Logger, cfg config.LLMConfig, httpClient *http.Client) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", generation.ErrInvalidConfig)
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		model:      model,
		logger:     logger.With("component", "openai", "model", model),
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type dashScopeRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []message `json:"messages"`
	} `json:"input"`
	Parameters struct {
		Temperature  float64 `json:"temperature"`
		TopP         float64 `json:"top_p"`
		ResultFormat string  `json:"result_format"`
	} `json:"parameters"`
}

// reply covers both the chat completion and the DashScope reply shapes.
type reply struct {
	Output *struct {
		Text string `json:"text"`
	} `json:"output"`
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// isDashScope reports whether endpoint is DashScope's native generation API.
func isDashScope(endpoint string) bool {
	return strings.Contains(endpoint, "/services/aigc/")
}

func (g *Generator) requestBody(prompt string) any {
	msgs := []message{{Role: "user", Content: prompt}}
	if isDashScope(g.endpoint) {
		var req dashScopeRequest
		req.Model = g.model
		req.Input.Messages = msgs
		req.Parameters.Temperature = defaultTemperature
		req.Parameters.TopP = defaultTopP
		req.Parameters.ResultFormat = "text"
		return req
	}
	return chatRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
}

// Generate posts prompt as a single user message and returns the reply text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", generation.ErrEmptyText
	}

	body, err := json.Marshal(g.requestBody(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		g.logger.WarnContext(ctx, "chat completion request failed", "error", redact.Error(err))
		return "", fmt.Errorf("%w: %s", generation.ErrTransientFailure, redact.Error(err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", generation.ErrTransientFailure, err)
	}

	g.logger.DebugContext(ctx, "chat completion response",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if err := statusError(resp.StatusCode, raw); err != nil {
		g.logger.WarnContext(ctx, "chat completion rejected",
			"status", resp.StatusCode,
			"error", err)
		return "", err
	}

	return parseReply(raw)
}

// statusError maps non-2xx statuses to generation errors.
func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorSnippet {
		snippet = snippet[:maxErrorSnippet]
	}
	snippet = redact.String(snippet)

	if status == http.StatusTooManyRequests || status >= 500 {
		return fmt.Errorf("%w: status %d: %s", generation.ErrTransientFailure, status, snippet)
	}
	return fmt.Errorf("provider rejected request: status %d: %s", status, snippet)
}

func parseReply(raw []byte) (string, error) {
	var r reply
	if err := json.Unmarshal(raw, &r); err != nil {
		return "", fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	if r.Output != nil && strings.TrimSpace(r.Output.Text) != "" {
		return r.Output.Text, nil
	}

	if len(r.Choices) > 0 {
		choice := r.Choices[0]
		if choice.FinishReason == "content_filter" {
			return "", fmt.Errorf("%w: finish reason content_filter", generation.ErrContentBlocked)
		}
		if strings.TrimSpace(choice.Message.Content) != "" {
			return choice.Message.Content, nil
		}
	}

	return "", fmt.Errorf("%w: no text in response", generation.ErrInvalidResponse)
}
