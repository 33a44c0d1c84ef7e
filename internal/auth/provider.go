// Package auth implements sign-in and the observable current user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/service"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Messages carried by AuthError.
const (
	MsgInvalidCredentials = "invalid email or password"
	MsgEmailInUse         = "email already in use"
	MsgInvalidEmail       = "invalid email address"
	MsgWeakPassword       = "password must be at least 6 characters"
	MsgGoogleUnavailable  = "google sign-in is not configured"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type emailInput struct {
	Email string `validate:"required,email"`
}

// Provider implements service.IdentityProvider on the credential and profile
// stores, a session cache and an optional Google authenticator.
type Provider struct {
	google      GoogleAuthenticator
	credentials service.CredentialStore
	profiles    service.ProfileStore
	sessions    *SessionStore
	logger      *slog.Logger
	current     *model.User
	subscribers map[int]func(*model.User)
	bcryptCost  int
	nextID      int
	mu          sync.Mutex
	started     bool
}

var _ service.IdentityProvider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithGoogle enables Google sign-in.
func WithGoogle(g GoogleAuthenticator) Option {
	return func(p *Provider) { p.google = g }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.bcryptCost = cost }
}

// NewProvider creates an identity provider. Call Start to restore a session.
func NewProvider(store service.DocumentStore, sessions *SessionStore, logger *slog.Logger, opts ...Option) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		credentials: store.Credentials(),
		profiles:    store.Profiles(),
		sessions:    sessions,
		logger:      logger,
		subscribers: make(map[int]func(*model.User)),
		bcryptCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start restores the cached session and emits the resulting user (or nil).
func (p *Provider) Start(ctx context.Context) error {
	user, err := p.sessions.Load()
	if err != nil {
		p.logger.Warn("failed to restore session", "error", err)
	}

	if user != nil {
		cred, credErr := p.credentials.GetCredentialByEmail(ctx, user.Email)
		switch {
		case credErr != nil:
			return fmt.Errorf("failed to verify session: %w", credErr)
		case cred == nil || cred.ID != user.ID:
			p.logger.Info("cached session no longer matches an account")
			_ = p.sessions.Clear()
			user = nil
		}
	}

	p.mu.Lock()
	p.started = true
	p.mu.Unlock()

	p.publish(user)
	return nil
}

// SignInWithEmail verifies a password credential.
func (p *Provider) SignInWithEmail(ctx context.Context, email, password string) error {
	const op = "sign in"

	email = strings.TrimSpace(email)
	if err := validate.Struct(emailInput{Email: email}); err != nil {
		return common.NewAuthError(op, MsgInvalidEmail, nil)
	}

	cred, err := p.credentials.GetCredentialByEmail(ctx, email)
	if err != nil {
		return common.NewAuthError(op, "sign-in failed", err)
	}
	if cred == nil || cred.Provider != model.ProviderPassword || len(cred.PasswordHash) == 0 {
		return common.NewAuthError(op, MsgInvalidCredentials, nil)
	}
	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return common.NewAuthError(op, MsgInvalidCredentials, nil)
	}

	return p.establish(ctx, op, cred, "", "")
}

// SignUpWithEmail creates a password credential and its profile, then signs
// the new user in. The credential is removed again when the profile cannot
// be written.
func (p *Provider) SignUpWithEmail(ctx context.Context, email, password, firstName, lastName string) error {
	const op = "sign up"

	email = strings.TrimSpace(email)
	if err := validate.Struct(emailInput{Email: email}); err != nil {
		return common.NewAuthError(op, MsgInvalidEmail, nil)
	}
	if len(password) < MinPasswordLength {
		return common.NewAuthError(op, MsgWeakPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return common.NewAuthError(op, "sign-up failed", err)
	}

	cred := model.Credential{
		Email:        email,
		Provider:     model.ProviderPassword,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	id, err := p.credentials.CreateCredential(ctx, cred)
	if errors.Is(err, common.ErrDuplicateEntry) {
		return common.NewAuthError(op, MsgEmailInUse, nil)
	}
	if err != nil {
		return common.NewAuthError(op, "sign-up failed", err)
	}
	cred.ID = id

	profile := model.Profile{
		UserID:    id,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     email,
		CreatedAt: cred.CreatedAt,
	}
	if err := p.profiles.SaveProfile(ctx, profile); err != nil {
		// Without its profile the account is half-created; drop the
		// credential so the email can sign up again.
		if delErr := p.credentials.DeleteCredential(context.WithoutCancel(ctx), id); delErr != nil {
			p.logger.Error("failed to roll back credential", "user_id", id, "error", delErr)
		}
		return common.NewAuthError(op, "failed to save profile", err)
	}

	p.logger.Info("account created", "user_id", id)
	return p.establish(ctx, op, &cred, "", "")
}

// SignInWithGoogle runs the Google flow and links the account by email.
func (p *Provider) SignInWithGoogle(ctx context.Context) error {
	const op = "google sign in"

	if p.google == nil {
		return common.NewAuthError(op, MsgGoogleUnavailable, nil)
	}

	identity, err := p.google.Authenticate(ctx)
	if err != nil {
		return common.NewAuthError(op, "google sign-in failed", err)
	}

	cred, err := p.credentials.GetCredentialByEmail(ctx, identity.Email)
	if err != nil {
		return common.NewAuthError(op, "google sign-in failed", err)
	}
	if cred == nil {
		cred = &model.Credential{
			Email:     identity.Email,
			Provider:  model.ProviderGoogle,
			CreatedAt: time.Now(),
		}
		id, createErr := p.credentials.CreateCredential(ctx, *cred)
		if createErr != nil {
			return common.NewAuthError(op, "google sign-in failed", createErr)
		}
		cred.ID = id
	}

	return p.establish(ctx, op, cred, identity.Name, identity.Picture)
}

// SignOut clears the session and emits nil.
func (p *Provider) SignOut(_ context.Context) error {
	if err := p.sessions.Clear(); err != nil {
		return common.NewAuthError("sign out", "sign-out failed", err)
	}
	p.publish(nil)
	return nil
}

// Subscribe registers fn for identity changes. Once Start has run, fn is
// also called immediately with the current user.
func (p *Provider) Subscribe(fn func(*model.User)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn
	started := p.started
	current := copyUser(p.current)
	p.mu.Unlock()

	if started {
		fn(current)
	}

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (p *Provider) CurrentUser() *model.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyUser(p.current)
}

func (p *Provider) establish(ctx context.Context, op string, cred *model.Credential, providerName, photoURL string) error {
	user := model.User{
		ID:       cred.ID,
		Email:    cred.Email,
		PhotoURL: photoURL,
	}

	var profile *model.Profile
	if providerName == "" {
		var err error
		profile, err = p.profiles.GetProfile(ctx, cred.ID)
		if err != nil {
			p.logger.Warn("failed to load profile", "user_id", cred.ID, "error", err)
		}
	}
	user.DisplayName = ResolveDisplayName(providerName, profile, cred.Email)

	if err := p.sessions.Save(user); err != nil {
		return common.NewAuthError(op, "failed to save session", err)
	}

	p.logger.Info("signed in", "user_id", user.ID)
	p.publish(&user)
	return nil
}

// ResolveDisplayName picks the provider-supplied name, then the profile's
// full name, then the email.
func ResolveDisplayName(providerName string, profile *model.Profile, email string) string {
	if name := strings.TrimSpace(providerName); name != "" {
		return name
	}
	if profile != nil {
		if name := profile.FullName(); name != "" {
			return name
		}
	}
	return email
}

func (p *Provider) publish(user *model.User) {
	p.mu.Lock()
	p.current = copyUser(user)
	subs := make([]func(*model.User), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(copyUser(user))
	}
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
