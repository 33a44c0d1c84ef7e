package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "openai", config: Config{Provider: "openai", APIKey: "k"}},
		{name: "anthropic mixed case", config: Config{Provider: "Anthropic", APIKey: "k"}},
		{name: "missing key", config: Config{Provider: "openai"}, wantErr: true},
		{name: "unknown provider", config: Config{Provider: "gemini", APIKey: "k"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestAnthropicClient_Classify(t *testing.T) {
	var gotReq anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant",
			"content":[{"type":"text","text":"{\"category\": \"Food\"}"}]}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := client.Classify(context.Background(), "Lunch at cafe")
	require.NoError(t, err)
	assert.Equal(t, "Food", resp.Category)
	require.Len(t, gotReq.System, 1)
	assert.Equal(t, systemPrompt, gotReq.System[0].Text)
	require.NotNil(t, gotReq.Temperature)
	assert.InDelta(t, 0.2, *gotReq.Temperature, 1e-9)
	assert.Equal(t, 50, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "Lunch at cafe", gotReq.Messages[0].Content)
}

func TestAnthropicClient_StatusErrors(t *testing.T) {
	tests := []struct {
		check  func(t *testing.T, err error)
		name   string
		status int
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, common.ErrRateLimit)
			},
		},
		{
			name:   "server error is retryable",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				assert.True(t, common.IsRetryable(err))
			},
		},
		{
			name:   "bad request is permanent",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				var re *common.RetryableError
				require.ErrorAs(t, err, &re)
				assert.False(t, re.Retryable)
				assert.Contains(t, err.Error(), "invalid_request_error: max_tokens too small")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens too small"}}`))
			}))
			defer server.Close()

			client, err := newAnthropicClient(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Classify(context.Background(), "x")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenAIClient_Classify(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop",
			"message":{"role":"assistant","content":"{\"category\":\"Transportation\"}"}}]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	resp, err := client.Classify(context.Background(), "Uber ride")
	require.NoError(t, err)
	assert.Equal(t, "Transportation", resp.Category)

	format, ok := gotBody["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
}

func TestOpenAIClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, common.IsRetryable(err))
}
