package llm

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicURL          = "https://api.anthropic.com"
	anthropicAPIVersion   = "2023-06-01"
	anthropicDefaultModel = "claude-3-5-haiku-latest"
)

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      []systemBlock      `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type systemBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	StopReason string `json:"stop_reason"`
}

// anthropicClient talks to the Messages API directly over HTTP.
type anthropicClient struct {
	http     *http.Client
	endpoint string
	apiKey   string
	model    string
	temp     float64
	tokens   int
}

func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	c := &anthropicClient{
		http:     newHTTPClient(),
		endpoint: strings.TrimRight(cmp.Or(cfg.BaseURL, anthropicURL), "/") + "/v1/messages",
		apiKey:   cfg.APIKey,
		model:    cmp.Or(cfg.Model, anthropicDefaultModel),
		temp:     cfg.Temperature,
		tokens:   cfg.MaxTokens,
	}
	if c.temp == 0 {
		c.temp = 0.2
	}
	if c.tokens == 0 {
		c.tokens = 50
	}
	return c, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Classify asks the model for a category and parses the first text block.
func (c *anthropicClient) Classify(ctx context.Context, prompt string) (CategoryResponse, error) {
	payload, err := json.Marshal(anthropicRequest{
		Model:       c.model,
		System:      []systemBlock{{Type: "text", Text: systemPrompt}},
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.tokens,
		Temperature: &c.temp,
	})
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	var out anthropicResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		detail := string(raw)
		if decodeErr == nil && out.Error != nil {
			detail = out.Error.Type + ": " + out.Error.Message
		}
		return CategoryResponse{}, statusError("anthropic", resp.StatusCode, detail)
	}
	if decodeErr != nil {
		return CategoryResponse{}, fmt.Errorf("failed to parse response: %w", decodeErr)
	}

	for _, block := range out.Content {
		if block.Type == "text" {
			return parseCategoryResponse(block.Text)
		}
	}
	return CategoryResponse{}, fmt.Errorf("no text content in response (stop reason %q)", out.StopReason)
}
