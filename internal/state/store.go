// Package state holds the in-memory mirror of the signed-in user's
// transactions and budgets and keeps it consistent with the document store.
package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/itsNik05/Coin-Tracker-01/internal/common"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/service"
)

// Status is the lifecycle stage of the mirror.
type Status int

// Mirror lifecycle.
const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Dependencies are the collaborators a Store is built from. Categorizer and
// Notifier are optional.
type Dependencies struct {
	Identity    service.IdentityProvider
	Documents   service.DocumentStore
	Categorizer service.Categorizer
	Notifier    service.Notifier
	Taxonomy    *model.Taxonomy
	Logger      *slog.Logger
}

// Store is the application state store.
type Store struct {
	transactions service.Collection[model.Transaction]
	budgets      service.Collection[model.Budget]
	categorizer  service.Categorizer
	notifier     service.Notifier
	taxonomy     *model.Taxonomy
	logger       *slog.Logger
	now          func() time.Time
	unsubscribe  func()
	user         *model.User
	settled      chan struct{}
	txns         []model.Transaction
	budgetList   []model.Budget
	generation   uint64
	status       Status
	mu           sync.RWMutex
	isSettled    bool
}

// New creates a store and subscribes it to identity changes.
func New(deps Dependencies) (*Store, error) {
	if deps.Identity == nil {
		return nil, errors.New("identity provider is required")
	}
	if deps.Documents == nil {
		return nil, errors.New("document store is required")
	}
	if deps.Taxonomy == nil {
		deps.Taxonomy = model.DefaultTaxonomy()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Notifier == nil {
		deps.Notifier = LogNotifier{Logger: deps.Logger}
	}

	s := &Store{
		transactions: deps.Documents.Transactions(),
		budgets:      deps.Documents.Budgets(),
		categorizer:  deps.Categorizer,
		notifier:     deps.Notifier,
		taxonomy:     deps.Taxonomy,
		logger:       deps.Logger,
		now:          time.Now,
		status:       StatusUninitialized,
		settled:      make(chan struct{}),
	}
	s.unsubscribe = deps.Identity.Subscribe(s.onUser)
	return s, nil
}

// Close stops observing identity changes.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Status returns the current lifecycle stage.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// User returns the signed-in user, or nil.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Transactions returns a copy of the mirror, newest first.
func (s *Store) Transactions() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

// Budgets returns a copy of the budget mirror.
func (s *Store) Budgets() []model.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Budget, len(s.budgetList))
	copy(out, s.budgetList)
	return out
}

// Taxonomy returns the category list the store validates against.
func (s *Store) Taxonomy() *model.Taxonomy {
	return s.taxonomy
}

// WaitSettled blocks while the store is Uninitialized or Loading.
func (s *Store) WaitSettled(ctx context.Context) error {
	for {
		s.mu.RLock()
		status, ch := s.status, s.settled
		s.mu.RUnlock()

		if status == StatusReady || status == StatusEmpty {
			return nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// onUser is the identity subscription. The mirror is cleared before it
// returns; loads for a user run in the background.
func (s *Store) onUser(user *model.User) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.txns = nil
	s.budgetList = nil

	if user == nil {
		s.user = nil
		s.status = StatusEmpty
		s.markSettledLocked()
		s.mu.Unlock()
		s.logger.Debug("signed out, mirror cleared")
		return
	}

	u := *user
	s.user = &u
	s.status = StatusLoading
	if s.isSettled {
		s.settled = make(chan struct{})
		s.isSettled = false
	}
	s.mu.Unlock()

	go s.load(gen, u.ID)
}

func (s *Store) markSettledLocked() {
	if !s.isSettled {
		close(s.settled)
		s.isSettled = true
	}
}

// session captures who a call is acting for so late results can be discarded.
type session struct {
	userID     string
	generation uint64
}

func (s *Store) currentSession() (session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return session{}, common.ErrUnauthenticated
	}
	return session{userID: s.user.ID, generation: s.generation}, nil
}

// applyIfCurrent runs fn under the write lock unless the user has changed
// since sess was taken.
func (s *Store) applyIfCurrent(sess session, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != sess.generation || s.user == nil || s.user.ID != sess.userID {
		s.logger.Debug("dropping stale mirror update", "user_id", sess.userID)
		return false
	}
	fn()
	return true
}
