package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

// SaveProfile writes or replaces the profile for profile.UserID.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, profile model.Profile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(profile.UserID, "userID"); err != nil {
		return err
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, email, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email
	`, profile.UserID, profile.FirstName, profile.LastName, profile.Email, profile.CreatedAt.UTC())
	if err != nil {
		return common.NewStoreError("save", "profiles", err)
	}
	return nil
}

// GetProfile returns the profile for userID, or nil when none was written.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var p model.Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, last_name, email, created_at
		FROM profiles WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewStoreError("get", "profiles", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// CreateCredential stores a sign-in identity and returns its user id.
// The id on cred is used when set, otherwise a new one is assigned.
func (s *SQLiteStorage) CreateCredential(ctx context.Context, cred model.Credential) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(cred.Email, "email"); err != nil {
		return "", err
	}
	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, provider, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, cred.ID, strings.TrimSpace(cred.Email), cred.Provider, cred.PasswordHash, cred.CreatedAt.UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return "", common.NewStoreError("create", "users", common.ErrDuplicateEntry)
		}
		return "", common.NewStoreError("create", "users", err)
	}
	return cred.ID, nil
}

// DeleteCredential removes the sign-in identity with the given user id.
func (s *SQLiteStorage) DeleteCredential(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return common.NewStoreError("delete", "users", err)
	}
	return nil
}

// GetCredentialByEmail looks up a credential case-insensitively.
// It returns nil when the email is unknown.
func (s *SQLiteStorage) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var c model.Credential
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, provider, password_hash, created_at
		FROM users WHERE email = ?
	`, strings.TrimSpace(email)).Scan(&c.ID, &c.Email, &c.Provider, &c.PasswordHash, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewStoreError("get", "users", err)
	}
	return &c, nil
}
