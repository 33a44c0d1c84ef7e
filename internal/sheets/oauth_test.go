package sheets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
)

type staticTokenSource struct {
	token *oauth2.Token
}

func (s staticTokenSource) Token() (*oauth2.Token, error) { return s.token, nil }

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}

	require.NoError(t, saveToken(path, token))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
}

func TestLoadToken_Missing(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSavingTokenSource_PersistsRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	old := &oauth2.Token{AccessToken: "old", RefreshToken: "refresh"}
	require.NoError(t, saveToken(path, old))

	fresh := &oauth2.Token{AccessToken: "new", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour)}
	src := &savingTokenSource{
		base:   staticTokenSource{token: fresh},
		logger: common.DiscardLogger(),
		last:   old,
		path:   path,
	}

	got, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "new", got.AccessToken)

	stored, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.AccessToken)
}

func TestUserTokenSource_RequiresToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TokenFile = filepath.Join(t.TempDir(), "missing.json")

	_, err := userTokenSource(context.Background(), cfg, common.DiscardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coin auth sheets")
}

func TestAuthorize_RequiresCredentials(t *testing.T) {
	_, err := Authorize(context.Background(), DefaultConfig(), common.DiscardLogger())
	assert.Error(t, err)
}
