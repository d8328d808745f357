// Package chat es el cliente de completions de DeepSeek (API compatible con
// OpenAI) que usa el asistente Habo AI.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/habo/internal/upstream"
)

const (
	DefaultBaseURL     = "https://api.deepseek.com/v1"
	DefaultModel       = "deepseek-chat"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
	DefaultTimeout     = 10 * time.Second

	serviceName = "DeepSeek"
)

// SystemPrompt fija el rol bancario del asistente.
const SystemPrompt = "You are Habo AI, a helpful banking assistant for Habo Banking. " +
	"You help customers with banking-related questions, account information, deposits, " +
	"withdrawals, transfers, loans, investments, and general banking services. " +
	"Be friendly, professional, and helpful. Keep responses concise but informative."

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

type Option func(*Client)

// WithHTTPClient reemplaza el http.Client (tests).
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured indica si hay API key.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete manda el mensaje del usuario con el prompt de sistema y devuelve
// el contenido de la primera choice. Toda falla es *upstream.Error.
func (c *Client) Complete(ctx context.Context, userMessage string) (string, error) {
	if !c.Configured() {
		return "", &upstream.Error{Service: serviceName, Err: errors.New("api key not configured")}
	}

	payload, err := json.Marshal(completionRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("chat: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &upstream.Error{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", upstream.FromResponse(serviceName, resp)
	}

	var out completionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", &upstream.Error{Service: serviceName, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return "", &upstream.Error{Service: serviceName, Status: resp.StatusCode, Err: errors.New("empty choices")}
	}
	return out.Choices[0].Message.Content, nil
}
