// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/storage"
)

// SetupTestDB creates a migrated in-memory database that is closed when the
// test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:", storage.WithLogger(common.DiscardLogger()))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return store
}

// SeedTransactions writes txns for userID and returns them with their ids set.
func SeedTransactions(t *testing.T, store *storage.SQLiteStorage, userID string, txns ...model.Transaction) []model.Transaction {
	t.Helper()

	ctx := context.Background()
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		txn.UserID = userID
		if txn.Date.IsZero() {
			txn.Date = time.Now().UTC()
		}
		id, err := store.Transactions().Create(ctx, txn)
		if err != nil {
			t.Fatalf("failed to seed transaction %q: %v", txn.Description, err)
		}
		txn.ID = id
		out = append(out, txn)
	}
	return out
}

// Txn builds a transaction fixture. amount must be a valid decimal string.
func Txn(date time.Time, description, amount string, typ model.TransactionType, category string) model.Transaction {
	return model.Transaction{
		Date:        date,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    category,
	}
}
