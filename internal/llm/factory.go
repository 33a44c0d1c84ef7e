package llm

import (
	"fmt"
	"strings"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
)

// Supported providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewClient creates the client for cfg.Provider, matched case-insensitively.
func NewClient(cfg Config) (Client, error) {
	var newClient func(Config) (Client, error)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		newClient = newOpenAIClient
	case ProviderAnthropic:
		newClient = newAnthropicClient
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMissingConfig, err)
	}
	return client, nil
}
