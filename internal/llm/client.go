package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bi_dashboard/internal/config"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("llm is not configured")
	ErrEmptyResponse = errors.New("llm returned empty response")
)

// Client talks to an OpenRouter-compatible chat completion endpoint. A
// client built without a model or key is disabled and every call returns
// ErrNotConfigured.
type Client struct {
	api     *openrouter.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) (*Client, error) {
	model := strings.TrimSpace(cfg.LLMModel)
	apiKey := strings.TrimSpace(cfg.LLMAPIKey)
	c := &Client{model: model, timeout: cfg.LLMTimeout, logger: logger}

	if model == "" || apiKey == "" {
		logger.Warn("assistant disabled: LLM_MODEL or LLM_API_KEY not set",
			zap.Bool("has_model", model != ""),
			zap.Bool("has_api_key", apiKey != ""),
		)
		return c, nil
	}

	clientCfg := openrouter.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.LLMBaseURL); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{}
	c.api = openrouter.NewClientWithConfig(*clientCfg)
	return c, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.api != nil
}

// Complete runs one round of the conversation and returns the assistant
// message, which may carry tool calls instead of text.
func (c *Client) Complete(ctx context.Context, messages []openrouter.ChatCompletionMessage, tools []openrouter.Tool) (openrouter.ChatCompletionMessage, error) {
	if !c.Enabled() {
		return openrouter.ChatCompletionMessage{}, ErrNotConfigured
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return openrouter.ChatCompletionMessage{}, fmt.Errorf("chat completion: %w", err)
	}
	c.logUsage(resp, time.Since(started))

	if len(resp.Choices) == 0 {
		return openrouter.ChatCompletionMessage{}, ErrEmptyResponse
	}
	msg := resp.Choices[0].Message
	c.logger.Debug("llm response",
		zap.String("content", msg.Content.Text),
		zap.Int("tool_calls", len(msg.ToolCalls)),
	)
	return msg, nil
}

func (c *Client) logUsage(resp openrouter.ChatCompletionResponse, took time.Duration) {
	fields := []zap.Field{
		zap.String("model", c.model),
		zap.Int("choices", len(resp.Choices)),
		zap.Duration("took", took),
	}
	if resp.Usage != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			zap.Int("total_tokens", resp.Usage.TotalTokens),
			zap.Float64("cost", resp.Usage.Cost),
		)
	}
	c.logger.Info("llm usage", fields...)
}
