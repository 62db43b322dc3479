// Package llm talks to an OpenAI compatible chat completion endpoint.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dietcoach/backend/internal/domain"
	"github.com/dietcoach/backend/internal/pkg/logger"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultBaseURL is the OpenAI chat completions endpoint
const DefaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Config holds the model client settings
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	ConnectTimeout time.Duration
	Timeout        time.Duration // whole request, response read included
	Temperature    float64
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Client implements domain.ChatCompleter. It makes exactly one attempt per call.
type Client struct {
	http        *resty.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	logger      *zap.Logger
}

// NewClient creates a new chat completion client
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 3 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxIdleConnsPerHost: 4,
	}

	httpClient := resty.New().
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:        httpClient,
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      log,
	}
}

// Complete sends one system and one user message and returns the first choice's text
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", domain.ErrAINotConfigured
	}

	body := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAIFailure, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", domain.ErrAIFailure, resp.StatusCode())
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", domain.ErrAIFailure, err)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrAIFailure)
	}

	c.logger.Debug("[AI_CLIENT] completion",
		logger.Trace(ctx),
		zap.String("model", c.model),
		zap.Int64("took_ms", time.Since(start).Milliseconds()),
	)
	return result.Choices[0].Message.Content, nil
}
