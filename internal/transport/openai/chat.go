package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/shelfsense/shelfsense/internal/domain"
	"github.com/shelfsense/shelfsense/internal/metrics"
)

// ChatClient is a chat completion provider using the OpenAI-compatible API.
type ChatClient struct {
	client *openai.Client
	model  string
	user   string
	logger *zap.Logger
}

// Config holds the chat provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	User    string
	Logger  *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat completion provider.
func NewChatClient(cfg *Config) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		user:   cfg.User,
		logger: cfg.Logger,
	}
}

// Complete runs one chat completion round with transport-level metrics. The
// model from the config overrides whatever the request carries.
func (c *ChatClient) Complete(
	ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool,
) (openai.ChatCompletionMessage, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
		User:     c.user,
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.AgentRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return openai.ChatCompletionMessage{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.AgentRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return openai.ChatCompletionMessage{}, fmt.Errorf("empty chat response: %w", domain.ErrChatProviderError)
	}

	metrics.AgentRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.AgentRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.AgentTokensTotal.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.AgentTokensTotal.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.AgentTokensTotal.WithLabelValues(c.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *ChatClient) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrChatProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrChatProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
