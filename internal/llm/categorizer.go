package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/service"
)

// Config holds configuration for the LLM categorizer.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// Categorizer implements service.Categorizer on top of an LLM client.
type Categorizer struct {
	client      Client
	cache       *suggestionCache
	inflight    singleflight.Group
	logger      *slog.Logger
	rateLimiter *rateLimiter
	categories  []string
	retryOpts   common.RetryOptions
}

var _ service.Categorizer = (*Categorizer)(nil)

// NewCategorizer creates a categorizer for the configured provider. The
// category names are offered to the model as the allowed answers.
func NewCategorizer(cfg Config, categories []string, logger *slog.Logger) (*Categorizer, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewCategorizerWithClient(client, cfg, categories, logger)
}

// NewCategorizerWithClient wires a categorizer around an existing client.
func NewCategorizerWithClient(client Client, cfg Config, categories []string, logger *slog.Logger) (*Categorizer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := newSuggestionCache(cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion cache: %w", err)
	}

	retryOpts := common.RetryOptions{
		Logger:       logger,
		Op:           "categorization",
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Categorizer{
		client:      client,
		cache:       cache,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		categories:  append([]string(nil), categories...),
	}, nil
}

// SuggestCategory returns the model's label for description. The label is
// not checked against the taxonomy; callers canonicalize it. Any failure
// wraps common.ErrCategorizationFailed.
func (c *Categorizer) SuggestCategory(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("%w: empty description", common.ErrCategorizationFailed)
	}

	if category, found := c.cache.get(description); found {
		c.logger.Debug("cache hit for description", "description", description)
		return category, nil
	}

	// Identical descriptions in flight share one model call.
	v, err, shared := c.inflight.Do(cacheKey(description), func() (any, error) {
		if category, found := c.cache.get(description); found {
			return category, nil
		}
		return c.classify(ctx, description)
	})
	if err != nil {
		c.logger.Warn("categorization failed", "description", description, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrCategorizationFailed, err)
	}

	category := v.(string)
	c.logger.Info("transaction categorized",
		"description", description,
		"category", category,
		"shared", shared)
	return category, nil
}

func (c *Categorizer) classify(ctx context.Context, description string) (string, error) {
	prompt := buildPrompt(description, c.categories)

	var resp CategoryResponse
	err := common.WithRetry(ctx, func() error {
		if err := c.rateLimiter.wait(ctx); err != nil {
			return common.Permanent(err)
		}
		var callErr error
		resp, callErr = c.client.Classify(ctx, prompt)
		return callErr
	}, c.retryOpts)
	if err != nil {
		return "", err
	}

	c.cache.set(description, resp.Category)
	return resp.Category, nil
}

// Close releases the categorizer's cache.
func (c *Categorizer) Close() {
	c.cache.Close()
}
