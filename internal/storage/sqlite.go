package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements service.DocumentStore on a single SQLite file.
type SQLiteStorage struct {
	db           *sql.DB
	transactions *collection[model.Transaction]
	budgets      *collection[model.Budget]
	logger       *slog.Logger
	dbPath       string
}

// Option configures a SQLiteStorage.
type Option func(*SQLiteStorage)

// WithLogger sets the logger used for schema changes.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SQLiteStorage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

var _ service.DocumentStore = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
// Callers must run Migrate before use.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{
		db:           db,
		dbPath:       dbPath,
		logger:       slog.Default(),
		transactions: newCollection(db, transactionCodec),
		budgets:      newCollection(db, budgetCodec),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Transactions returns the transactions collection.
func (s *SQLiteStorage) Transactions() service.Collection[model.Transaction] {
	return s.transactions
}

// Budgets returns the budgets collection.
func (s *SQLiteStorage) Budgets() service.Collection[model.Budget] {
	return s.budgets
}

// Profiles returns the profile store.
func (s *SQLiteStorage) Profiles() service.ProfileStore {
	return s
}

// Credentials returns the credential store.
func (s *SQLiteStorage) Credentials() service.CredentialStore {
	return s
}

// Path returns the database location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
