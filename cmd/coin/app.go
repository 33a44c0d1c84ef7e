package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/itsNik05/Coin-Tracker-01/internal/auth"
	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/llm"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/service"
	"github.com/itsNik05/Coin-Tracker-01/internal/state"
	"github.com/itsNik05/Coin-Tracker-01/internal/storage"
)

// app is the wired set of adapters behind every data command.
type app struct {
	docs        *storage.SQLiteStorage
	identity    *auth.Provider
	categorizer *llm.Categorizer
	store       *state.Store
	taxonomy    *model.Taxonomy
	prompter    *cli.Prompter
	logger      *slog.Logger
}

// openStorage opens the document store and brings its schema up to date.
func openStorage(ctx context.Context, logger *slog.Logger) (*storage.SQLiteStorage, error) {
	docs, err := storage.NewSQLiteStorage(appCfg.Database.Path, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := docs.Migrate(ctx); err != nil {
		_ = docs.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return docs, nil
}

// openApp wires storage, identity, categorization and the state store, then
// restores the cached session and waits for the first load to settle.
func openApp(ctx context.Context) (*app, error) {
	logger := slog.Default()

	tax, err := appCfg.Taxonomy()
	if err != nil {
		return nil, err
	}

	docs, err := openStorage(ctx, logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		docs:     docs,
		taxonomy: tax,
		prompter: cli.NewPrompter(os.Stdin, os.Stdout),
		logger:   logger,
	}

	sessions, err := auth.NewSessionStore(appCfg.Auth.SessionPath, []byte(appCfg.Auth.SessionSecret), appCfg.Auth.SessionTTL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	opts := []auth.Option{auth.WithBcryptCost(appCfg.Auth.BcryptCost)}
	if appCfg.Auth.GoogleEnabled() {
		google, err := auth.NewGoogleOAuth(appCfg.Auth.Google, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, auth.WithGoogle(google))
	}
	a.identity = auth.NewProvider(docs, sessions, logger, opts...)

	var categorizer service.Categorizer
	if appCfg.LLMEnabled() {
		c, err := llm.NewCategorizer(appCfg.LLM, categoryNames(tax.BudgetEligible()), logger)
		if err != nil {
			logger.Warn("Categorization disabled", "error", err)
		} else {
			a.categorizer = c
			categorizer = c
		}
	}

	a.store, err = state.New(state.Dependencies{
		Identity:    a.identity,
		Documents:   docs,
		Categorizer: categorizer,
		Notifier:    state.LogNotifier{Logger: logger},
		Taxonomy:    tax,
		Logger:      logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.identity.Start(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if err := a.store.WaitSettled(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Close releases everything openApp acquired.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.categorizer != nil {
		a.categorizer.Close()
	}
	if err := a.docs.Close(); err != nil {
		a.logger.Warn("Failed to close database", "error", err)
	}
}

// requireUser returns the signed-in user or a hint to sign in.
func (a *app) requireUser() (*model.User, error) {
	user := a.store.User()
	if user == nil {
		return nil, common.NewUserError("Not signed in. Run 'coin auth login' first.", common.ErrUnauthenticated)
	}
	return user, nil
}

// settle waits for the mirror to catch up after an identity change.
func (a *app) settle(ctx context.Context) error {
	return a.store.WaitSettled(ctx)
}

func categoryNames(categories []model.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}
