// Package service defines the contracts between the state store and its adapters.
package service

import (
	"context"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

// Fields is a partial record keyed by field name. Field names are the
// lower-camel names used by the store ("amount", "category", ...).
type Fields map[string]any

// TransactionFields returns the full-replace field set for txn. A zero date
// is left out so the stored date is kept.
func TransactionFields(txn model.Transaction) Fields {
	fields := Fields{
		"description": txn.Description,
		"amount":      txn.Amount,
		"type":        txn.Type,
		"category":    txn.Category,
	}
	if !txn.Date.IsZero() {
		fields["date"] = txn.Date
	}
	return fields
}

// Collection is the generic document store contract for one record kind.
type Collection[T any] interface {
	// List returns every record owned by userID. An empty result is not an error.
	List(ctx context.Context, userID string) ([]T, error)
	// Create stores record and returns the id assigned to it.
	Create(ctx context.Context, record T) (string, error)
	// Update applies a partial update to a record owned by userID. A missing
	// id, or one owned by another user, wraps common.ErrNotFound.
	Update(ctx context.Context, userID, id string, fields Fields) error
	// Delete removes a record owned by userID. Deleting a missing or foreign
	// id succeeds and changes nothing.
	Delete(ctx context.Context, userID, id string) error
	// FindOne returns the first record owned by userID matching every field,
	// or nil when nothing matches.
	FindOne(ctx context.Context, userID string, match Fields) (*T, error)
}

// ProfileStore persists sign-up profiles keyed by user id.
type ProfileStore interface {
	SaveProfile(ctx context.Context, profile model.Profile) error
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
}

// CredentialStore persists sign-in identities.
type CredentialStore interface {
	CreateCredential(ctx context.Context, cred model.Credential) (string, error)
	GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error)
	// DeleteCredential removes the identity with the given user id. Deleting
	// a missing id succeeds.
	DeleteCredential(ctx context.Context, id string) error
}

// DocumentStore groups the collections the application reads and writes.
type DocumentStore interface {
	Transactions() Collection[model.Transaction]
	Budgets() Collection[model.Budget]
	Profiles() ProfileStore
	Credentials() CredentialStore
	Close() error
}

// IdentityProvider signs users in and out and publishes the current user.
type IdentityProvider interface {
	SignInWithGoogle(ctx context.Context) error
	SignInWithEmail(ctx context.Context, email, password string) error
	SignUpWithEmail(ctx context.Context, email, password, firstName, lastName string) error
	SignOut(ctx context.Context) error

	// Subscribe registers fn for every identity change. nil means signed out.
	Subscribe(fn func(*model.User)) (unsubscribe func())
	CurrentUser() *model.User
}

// Categorizer suggests a category label for a transaction description.
type Categorizer interface {
	SuggestCategory(ctx context.Context, description string) (string, error)
}

// Severity grades a notification.
type Severity string

// Notification severities.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a non-fatal message for the user.
type Notification struct {
	Err      error
	Title    string
	Message  string
	Severity Severity
}

// Notifier delivers notifications to the presentation layer.
type Notifier interface {
	Notify(n Notification)
}
