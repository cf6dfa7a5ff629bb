// Package ollama provides Ollama integration for local chat inference
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nutridash/dashboard/internal/domain/ai"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"go.uber.org/zap"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llama3.2:3b"
)

// Config configures the client
type Config struct {
	Host        string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client implements outbound.ChatProvider using the Ollama API
type Client struct {
	baseURL string
	model   string
	options map[string]interface{}
	client  *http.Client
	logger  *zap.Logger
}

var _ outbound.ChatProvider = (*Client)(nil)

// NewClient creates a new Ollama client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	options := map[string]interface{}{}
	if cfg.Temperature > 0 {
		options["temperature"] = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		options["num_predict"] = cfg.MaxTokens
	}

	logger.Info("Ollama client initialized",
		zap.String("base_url", cfg.Host),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{
		baseURL: strings.TrimRight(cfg.Host, "/"),
		model:   cfg.Model,
		options: options,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("ollama-client"),
	}
}

// Ollama API structures
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ChatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ChatResponse struct {
	Model           string      `json:"model"`
	Message         ChatMessage `json:"message"`
	Done            bool        `json:"done"`
	TotalDuration   int64       `json:"total_duration,omitempty"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// Provider identifies the backend
func (c *Client) Provider() ai.ProviderType {
	return ai.ProviderTypeOllama
}

// Chat sends the conversation to /api/chat without streaming
func (c *Client) Chat(ctx context.Context, messages []ai.Message) (*outbound.ChatReply, error) {
	reqBody := ChatRequest{
		Model:    c.model,
		Messages: make([]ChatMessage, 0, len(messages)),
		Stream:   false,
	}
	if len(c.options) > 0 {
		reqBody.Options = c.options
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if strings.TrimSpace(chatResp.Message.Content) == "" {
		return nil, fmt.Errorf("empty response from model %s", c.model)
	}

	c.logger.Info("Ollama chat completed",
		zap.String("model", chatResp.Model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("prompt_tokens", chatResp.PromptEvalCount),
		zap.Int("completion_tokens", chatResp.EvalCount),
	)

	return &outbound.ChatReply{
		Content: chatResp.Message.Content,
		Model:   chatResp.Model,
		Usage: ai.TokenUsage{
			PromptTokens:     chatResp.PromptEvalCount,
			CompletionTokens: chatResp.EvalCount,
			TotalTokens:      chatResp.PromptEvalCount + chatResp.EvalCount,
		},
	}, nil
}

// HealthCheck verifies the Ollama service is available
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint := c.baseURL + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check failed with status %d", resp.StatusCode)
	}

	c.logger.Debug("Ollama health check passed")
	return nil
}
