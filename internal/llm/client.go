package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
)

// Client defines the interface for LLM providers.
type Client interface {
	Classify(ctx context.Context, prompt string) (CategoryResponse, error)
}

// CategoryResponse is the structured answer the model must produce.
type CategoryResponse struct {
	Category string `json:"category" validate:"required,max=40,singleline"`
}

// statusError maps a provider HTTP status onto the retry policy:
// 429 waits out the rate limit, 5xx retries, anything else is permanent.
func statusError(provider string, status int, detail string) error {
	err := fmt.Errorf("%s API error (status %d): %s", provider, status, detail)
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case status >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return common.Permanent(err)
	}
}
