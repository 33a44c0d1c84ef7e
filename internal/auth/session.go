package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// sessionClaims is the payload of the cached session token.
type sessionClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// SessionStore caches the signed-in user between runs as a signed token.
type SessionStore struct {
	now    func() time.Time
	path   string
	secret []byte
	ttl    time.Duration
}

// NewSessionStore creates a store writing to path. An empty secret makes the
// store generate one and keep it in a key file next to the session.
func NewSessionStore(path string, secret []byte, ttl time.Duration) (*SessionStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session path is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if len(secret) == 0 {
		var err error
		secret, err = loadOrCreateKey(path + ".key")
		if err != nil {
			return nil, err
		}
	}
	return &SessionStore{path: path, secret: secret, ttl: ttl, now: time.Now}, nil
}

// Save writes a token for user.
func (s *SessionStore) Save(user model.User) error {
	now := s.now()
	claims := sessionClaims{
		Email:   user.Email,
		Name:    user.DisplayName,
		Picture: user.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "coin",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(signed), 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load returns the cached user. A missing, expired or tampered token yields
// nil without error; only I/O failures are reported.
func (s *SessionStore) Load() (*model.User, error) {
	raw, err := os.ReadFile(s.path) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(string(raw)), claims,
		func(_ *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject == "" {
		return nil, nil
	}

	return &model.User{
		ID:          claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
	}, nil
}

// Clear removes the cached session.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path) // #nosec G304
	if err == nil && len(key) >= 32 {
		return key, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read session key: %w", err)
	}

	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write session key: %w", err)
	}
	return key, nil
}
