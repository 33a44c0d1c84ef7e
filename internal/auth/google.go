package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleIdentity is what a completed Google sign-in tells us about the user.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleAuthenticator runs the Google sign-in flow.
type GoogleAuthenticator interface {
	Authenticate(ctx context.Context) (*GoogleIdentity, error)
}

// GoogleConfig configures the browser sign-in flow.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackAddr string
}

// GoogleOAuth signs in through the browser with the authorization-code flow
// and reads the profile from the userinfo endpoint.
type GoogleOAuth struct {
	logger *slog.Logger
	cfg    GoogleConfig
}

// NewGoogleOAuth creates the Google authenticator.
func NewGoogleOAuth(cfg GoogleConfig, logger *slog.Logger) (*GoogleOAuth, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google client ID and secret are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleOAuth{cfg: cfg, logger: logger}, nil
}

// Authenticate runs the flow and returns the signed-in identity.
func (g *GoogleOAuth) Authenticate(ctx context.Context) (*GoogleIdentity, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"openid",
			oauth2api.UserinfoEmailScope,
			oauth2api.UserinfoProfileScope,
		},
	}

	token, err := RunAuthCodeFlow(ctx, oauthConfig, g.cfg.CallbackAddr, g.logger,
		oauth2.SetAuthURLParam("prompt", "select_account"))
	if err != nil {
		return nil, err
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("google account has no email address")
	}

	return &GoogleIdentity{
		Subject: info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
