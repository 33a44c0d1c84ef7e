package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"github.com/itsNik05/Coin-Tracker-01/internal/auth"
)

func oauthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// Authorize runs the browser consent flow for the Sheets scope and stores
// the token in cfg.TokenFile.
func Authorize(ctx context.Context, cfg Config, logger *slog.Logger) (*oauth2.Token, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("google client id and secret are required")
	}
	if cfg.TokenFile == "" {
		return nil, fmt.Errorf("token file is required")
	}

	token, err := auth.RunAuthCodeFlow(ctx, oauthConfig(cfg), cfg.CallbackAddr, logger,
		oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if err != nil {
		return nil, err
	}

	if err := saveToken(cfg.TokenFile, token); err != nil {
		return nil, err
	}
	logger.Info("Token saved successfully", "file", cfg.TokenFile)
	return token, nil
}

// LoadToken loads a token from file.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// savingTokenSource writes refreshed tokens back to disk.
type savingTokenSource struct {
	base   oauth2.TokenSource
	logger *slog.Logger
	last   *oauth2.Token
	path   string
	mu     sync.Mutex
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || s.last.AccessToken != token.AccessToken {
		if saveErr := saveToken(s.path, token); saveErr != nil {
			s.logger.Warn("Failed to save refreshed token", "error", saveErr)
		}
		s.last = token
	}
	return token, nil
}

// userTokenSource loads the stored token and refreshes it as needed.
func userTokenSource(ctx context.Context, cfg Config, logger *slog.Logger) (oauth2.TokenSource, error) {
	token, err := LoadToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("no sheets token at %s, run 'coin auth sheets' first: %w", cfg.TokenFile, err)
	}
	return &savingTokenSource{
		base:   oauthConfig(cfg).TokenSource(ctx, token),
		logger: logger,
		last:   token,
		path:   cfg.TokenFile,
	}, nil
}
