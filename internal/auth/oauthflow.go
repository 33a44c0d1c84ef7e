package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultCallbackAddr is where the local OAuth callback listener binds.
const DefaultCallbackAddr = "localhost:8080"

const callbackTimeout = 5 * time.Minute

// RunAuthCodeFlow performs an interactive authorization-code flow: it prints
// the consent URL, waits for the browser to hit the local callback and
// exchanges the code for a token. cfg.RedirectURL is set from addr.
func RunAuthCodeFlow(ctx context.Context, cfg *oauth2.Config, addr string, logger *slog.Logger, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = DefaultCallbackAddr
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}
	cfg.RedirectURL = "http://" + listener.Addr().String() + "/callback"

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			errorChan <- errors.New("oauth state mismatch")
			http.Error(w, "Authentication failed: state mismatch.", http.StatusBadRequest)
			return
		}
		code := query.Get("code")
		if code == "" {
			errorChan <- fmt.Errorf("no authorization code received: %s", query.Get("error"))
			_, _ = fmt.Fprint(w, `<html><body><h1>Authentication Failed</h1>
				<p>No authorization code received. Please try again.</p></body></html>`)
			return
		}
		codeChan <- code
		_, _ = fmt.Fprint(w, `<html><body><h1>Authentication Successful!</h1>
			<p>You can close this window and return to the terminal.</p></body></html>`)
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errorChan <- fmt.Errorf("callback server failed: %w", serveErr)
		}
	}()
	defer func() {
		if shutdownErr := server.Shutdown(context.Background()); shutdownErr != nil {
			logger.Warn("Error shutting down callback server", "error", shutdownErr)
		}
	}()

	authURL := cfg.AuthCodeURL(state, opts...)
	logger.Info("Please visit this URL to authenticate", "url", authURL)
	fmt.Printf("\nOpen this URL in your browser to continue:\n\n  %s\n\n", authURL)

	var code string
	select {
	case code = <-codeChan:
		logger.Debug("Received authorization code")
	case err := <-errorChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(callbackTimeout):
		return nil, fmt.Errorf("authentication timeout - no response received within %s", callbackTimeout)
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
