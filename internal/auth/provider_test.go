package auth

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/service"
	"github.com/itsNik05/Coin-Tracker-01/internal/storage"
	"github.com/itsNik05/Coin-Tracker-01/internal/testutil"
)

type mockGoogle struct {
	mock.Mock
}

func (m *mockGoogle) Authenticate(ctx context.Context) (*GoogleIdentity, error) {
	args := m.Called(ctx)
	if id, ok := args.Get(0).(*GoogleIdentity); ok {
		return id, args.Error(1)
	}
	return nil, args.Error(1)
}

// recorder collects every identity emission.
type recorder struct {
	users []*model.User
	mu    sync.Mutex
}

func (r *recorder) record(u *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
}

func (r *recorder) last() *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.users) == 0 {
		return nil
	}
	return r.users[len(r.users)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fixture struct {
	store    *storage.SQLiteStorage
	sessions *SessionStore
	provider *Provider
	events   *recorder
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	store := testutil.SetupTestDB(t)
	sessions, err := NewSessionStore(filepath.Join(t.TempDir(), "session.jwt"), []byte("test-secret-test-secret-test-sec"), time.Hour)
	require.NoError(t, err)

	opts = append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)
	provider := NewProvider(store, sessions, common.DiscardLogger(), opts...)

	events := &recorder{}
	provider.Subscribe(events.record)

	return &fixture{store: store, sessions: sessions, provider: provider, events: events}
}

func requireAuthMessage(t *testing.T, err error, message string) {
	t.Helper()
	var authErr *common.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, message, authErr.Message)
}

func TestSignUpWithEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.provider.Start(ctx))

	require.NoError(t, f.provider.SignUpWithEmail(ctx, "ada@example.com", "secret1", "Ada", "Lovelace"))

	user := f.provider.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "Ada Lovelace", user.DisplayName)
	assert.Equal(t, user, f.events.last())

	profile, err := f.store.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.False(t, profile.CreatedAt.IsZero())
}

func TestSignUpWithEmail_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.provider.SignUpWithEmail(ctx, "ada@example.com", "secret1", "Ada", ""))

	tests := []struct {
		name     string
		email    string
		password string
		message  string
	}{
		{name: "duplicate email", email: "ADA@example.com", password: "secret1", message: MsgEmailInUse},
		{name: "short password", email: "grace@example.com", password: "12345", message: MsgWeakPassword},
		{name: "bad email", email: "not-an-email", password: "secret1", message: MsgInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.provider.SignUpWithEmail(ctx, tt.email, tt.password, "", "")
			requireAuthMessage(t, err, tt.message)
		})
	}
}

// flakyProfiles fails SaveProfile until fail is cleared.
type flakyProfiles struct {
	*storage.SQLiteStorage
	fail bool
}

func (f *flakyProfiles) Profiles() service.ProfileStore { return f }

func (f *flakyProfiles) SaveProfile(ctx context.Context, profile model.Profile) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.SQLiteStorage.SaveProfile(ctx, profile)
}

func TestSignUpWithEmail_ProfileFailureRollsBack(t *testing.T) {
	store := testutil.SetupTestDB(t)
	sessions, err := NewSessionStore(filepath.Join(t.TempDir(), "session.jwt"), []byte("test-secret-test-secret-test-sec"), time.Hour)
	require.NoError(t, err)

	docs := &flakyProfiles{SQLiteStorage: store, fail: true}
	provider := NewProvider(docs, sessions, common.DiscardLogger(), WithBcryptCost(bcrypt.MinCost))
	ctx := context.Background()
	require.NoError(t, provider.Start(ctx))

	err = provider.SignUpWithEmail(ctx, "ada@example.com", "secret1", "Ada", "Lovelace")
	requireAuthMessage(t, err, "failed to save profile")
	assert.Nil(t, provider.CurrentUser())

	cred, err := store.GetCredentialByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Nil(t, cred)

	docs.fail = false
	require.NoError(t, provider.SignUpWithEmail(ctx, "ada@example.com", "secret1", "Ada", "Lovelace"))

	user := provider.CurrentUser()
	require.NotNil(t, user)
	profile, err := store.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ada", profile.FirstName)
}

func TestSignInWithEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.provider.SignUpWithEmail(ctx, "ada@example.com", "secret1", "", ""))
	require.NoError(t, f.provider.SignOut(ctx))
	assert.Nil(t, f.provider.CurrentUser())

	err := f.provider.SignInWithEmail(ctx, "ada@example.com", "wrong-password")
	requireAuthMessage(t, err, MsgInvalidCredentials)

	err = f.provider.SignInWithEmail(ctx, "nobody@example.com", "secret1")
	requireAuthMessage(t, err, MsgInvalidCredentials)

	require.NoError(t, f.provider.SignInWithEmail(ctx, "ada@example.com", "secret1"))
	user := f.provider.CurrentUser()
	require.NotNil(t, user)
	// No provider name and an empty profile name fall back to the email.
	assert.Equal(t, "ada@example.com", user.DisplayName)
}

func TestSignOut_EmitsNil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.provider.SignUpWithEmail(ctx, "ada@example.com", "secret1", "Ada", ""))

	require.NoError(t, f.provider.SignOut(ctx))

	assert.Nil(t, f.events.last())
	user, err := f.sessions.Load()
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestStart_RestoresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.provider.SignUpWithEmail(ctx, "ada@example.com", "secret1", "Ada", "Lovelace"))
	signedIn := f.provider.CurrentUser()

	// A second process over the same database and session file.
	restarted := NewProvider(f.store, f.sessions, common.DiscardLogger())
	events := &recorder{}
	restarted.Subscribe(events.record)
	assert.Equal(t, 0, events.count())

	require.NoError(t, restarted.Start(ctx))
	require.Equal(t, 1, events.count())
	assert.Equal(t, signedIn, events.last())

	late := &recorder{}
	restarted.Subscribe(late.record)
	assert.Equal(t, signedIn, late.last())
}

func TestStart_ExpiredSessionEmitsNil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.provider.SignUpWithEmail(ctx, "ada@example.com", "secret1", "", ""))

	f.sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	restarted := NewProvider(f.store, f.sessions, common.DiscardLogger())
	events := &recorder{}
	restarted.Subscribe(events.record)
	require.NoError(t, restarted.Start(ctx))

	require.Equal(t, 1, events.count())
	assert.Nil(t, events.last())
}

func TestSignInWithGoogle(t *testing.T) {
	google := &mockGoogle{}
	google.On("Authenticate", mock.Anything).Return(&GoogleIdentity{
		Subject: "g-1", Email: "grace@example.com", Name: "Grace Hopper", Picture: "https://example.com/g.png",
	}, nil)

	f := newFixture(t, WithGoogle(google))
	ctx := context.Background()

	require.NoError(t, f.provider.SignInWithGoogle(ctx))
	first := f.provider.CurrentUser()
	require.NotNil(t, first)
	assert.Equal(t, "Grace Hopper", first.DisplayName)
	assert.Equal(t, "https://example.com/g.png", first.PhotoURL)

	// Signing in again links to the same account.
	require.NoError(t, f.provider.SignInWithGoogle(ctx))
	assert.Equal(t, first.ID, f.provider.CurrentUser().ID)

	cred, err := f.store.GetCredentialByEmail(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderGoogle, cred.Provider)
}

func TestSignInWithGoogle_Failures(t *testing.T) {
	f := newFixture(t)
	err := f.provider.SignInWithGoogle(context.Background())
	requireAuthMessage(t, err, MsgGoogleUnavailable)

	google := &mockGoogle{}
	google.On("Authenticate", mock.Anything).Return(nil, errors.New("access_denied"))
	f = newFixture(t, WithGoogle(google))

	err = f.provider.SignInWithGoogle(context.Background())
	var authErr *common.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Nil(t, f.provider.CurrentUser())
}

func TestResolveDisplayName(t *testing.T) {
	profile := &model.Profile{FirstName: "Ada", LastName: "Lovelace"}

	assert.Equal(t, "Countess", ResolveDisplayName("Countess", profile, "ada@example.com"))
	assert.Equal(t, "Ada Lovelace", ResolveDisplayName("", profile, "ada@example.com"))
	assert.Equal(t, "ada@example.com", ResolveDisplayName(" ", &model.Profile{}, "ada@example.com"))
	assert.Equal(t, "ada@example.com", ResolveDisplayName("", nil, "ada@example.com"))
}

func TestSessionStore_RejectsTamperedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jwt")
	good, err := NewSessionStore(path, []byte("secret-a-secret-a-secret-a-secre"), time.Hour)
	require.NoError(t, err)
	require.NoError(t, good.Save(model.User{ID: "u1", Email: "a@example.com"}))

	other, err := NewSessionStore(path, []byte("secret-b-secret-b-secret-b-secre"), time.Hour)
	require.NoError(t, err)

	user, err := other.Load()
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = good.Load()
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
}

func TestSessionStore_GeneratesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.jwt")

	first, err := NewSessionStore(path, nil, 0)
	require.NoError(t, err)
	require.NoError(t, first.Save(model.User{ID: "u1", Email: "a@example.com"}))

	second, err := NewSessionStore(path, nil, 0)
	require.NoError(t, err)
	user, err := second.Load()
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
}
