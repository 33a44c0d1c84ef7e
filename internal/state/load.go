package state

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/service"
)

// load lists both collections concurrently. A failed list leaves that
// mirror empty and is reported through the notifier; the other is kept.
func (s *Store) load(gen uint64, userID string) {
	ctx := context.Background()

	var (
		txns    []model.Transaction
		budgets []model.Budget
		txnErr  error
		budErr  error
	)

	// Not errgroup.WithContext: one failing list must not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		txns, txnErr = s.transactions.List(ctx, userID)
		return txnErr
	})
	g.Go(func() error {
		budgets, budErr = s.budgets.List(ctx, userID)
		return budErr
	})
	_ = g.Wait()

	applied := s.applyIfCurrent(session{userID: userID, generation: gen}, func() {
		if txnErr == nil {
			model.SortByDateDesc(txns)
			s.txns = txns
		}
		if budErr == nil {
			s.budgetList = budgets
		}
		s.status = StatusReady
		s.markSettledLocked()
	})
	if !applied {
		return
	}

	s.logger.Debug("mirror loaded",
		"user_id", userID,
		"transactions", len(txns),
		"budgets", len(budgets))

	if txnErr != nil {
		s.notifier.Notify(service.Notification{
			Severity: service.SeverityError,
			Title:    "Could not load transactions",
			Message:  "Your transactions could not be loaded. Try again later.",
			Err:      txnErr,
		})
	}
	if budErr != nil {
		s.notifier.Notify(service.Notification{
			Severity: service.SeverityError,
			Title:    "Could not load budgets",
			Message:  "Your budgets could not be loaded. Try again later.",
			Err:      budErr,
		})
	}
}
