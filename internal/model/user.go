package model

import (
	"strings"
	"time"
)

// User is the signed-in identity.
type User struct {
	ID          string
	DisplayName string
	Email       string
	PhotoURL    string
}

// Profile is the record written on sign-up.
type Profile struct {
	CreatedAt time.Time
	UserID    string
	FirstName string
	LastName  string
	Email     string
}

// FullName joins first and last name, skipping empty parts.
func (p Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Credential is a stored sign-in identity.
type Credential struct {
	CreatedAt    time.Time
	ID           string
	Email        string
	Provider     string
	PasswordHash []byte
}

// Credential providers.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)
