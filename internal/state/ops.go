package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/service"
)

// AddTransaction validates input, stamps it with the current time and writes
// it. The mirror only changes once the write succeeds.
func (s *Store) AddTransaction(ctx context.Context, input model.TransactionInput) (model.Transaction, error) {
	sess, err := s.currentSession()
	if err != nil {
		return model.Transaction{}, err
	}

	in, err := input.Normalize(s.taxonomy)
	if err != nil {
		return model.Transaction{}, err
	}

	txn := model.Transaction{
		UserID:      sess.userID,
		Date:        s.now().UTC(),
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
	}

	id, err := s.transactions.Create(ctx, txn)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to add transaction: %w", err)
	}
	txn.ID = id

	s.applyIfCurrent(sess, func() {
		s.upsertTransactionLocked(txn)
		model.SortByDateDesc(s.txns)
	})

	s.logger.Info("transaction added", "id", id, "type", txn.Type, "category", txn.Category)
	return txn, nil
}

// UpdateTransaction replaces every editable field of txn. A zero Date keeps
// the stored date.
func (s *Store) UpdateTransaction(ctx context.Context, txn model.Transaction) error {
	sess, err := s.currentSession()
	if err != nil {
		return err
	}
	if strings.TrimSpace(txn.ID) == "" {
		return fmt.Errorf("%w: transaction id is required", model.ErrInvalidInput)
	}

	in, err := txn.Input().Normalize(s.taxonomy)
	if err != nil {
		return err
	}
	txn.UserID = sess.userID
	txn.Description = in.Description
	txn.Amount = in.Amount
	txn.Type = in.Type
	txn.Category = in.Category
	if !txn.Date.IsZero() {
		txn.Date = txn.Date.UTC()
	}

	if err := s.transactions.Update(ctx, sess.userID, txn.ID, service.TransactionFields(txn)); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	s.applyIfCurrent(sess, func() {
		for i := range s.txns {
			if s.txns[i].ID != txn.ID {
				continue
			}
			if txn.Date.IsZero() {
				txn.Date = s.txns[i].Date
			}
			s.txns[i] = txn
			model.SortByDateDesc(s.txns)
			return
		}
	})

	s.logger.Info("transaction updated", "id", txn.ID)
	return nil
}

// DeleteTransaction removes a transaction. Deleting a missing id succeeds.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	sess, err := s.currentSession()
	if err != nil {
		return err
	}

	if err := s.transactions.Delete(ctx, sess.userID, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.applyIfCurrent(sess, func() {
		kept := s.txns[:0]
		for _, txn := range s.txns {
			if txn.ID != id {
				kept = append(kept, txn)
			}
		}
		s.txns = kept
	})

	s.logger.Info("transaction deleted", "id", id)
	return nil
}

// UpsertBudget sets the budget for a category, replacing the amount of an
// existing budget in place. The lookup and the write are separate calls; two
// concurrent first-time upserts can both create.
func (s *Store) UpsertBudget(ctx context.Context, input model.BudgetInput) (model.Budget, error) {
	sess, err := s.currentSession()
	if err != nil {
		return model.Budget{}, err
	}

	in, err := input.Normalize(s.taxonomy)
	if err != nil {
		return model.Budget{}, err
	}

	existing, err := s.budgets.FindOne(ctx, sess.userID, service.Fields{"category": in.Category})
	if err != nil {
		return model.Budget{}, fmt.Errorf("failed to look up budget: %w", err)
	}

	var budget model.Budget
	if existing != nil {
		budget = *existing
		budget.Amount = in.Amount
		if err := s.budgets.Update(ctx, sess.userID, budget.ID, service.Fields{"amount": in.Amount}); err != nil {
			return model.Budget{}, fmt.Errorf("failed to update budget: %w", err)
		}
	} else {
		budget = model.Budget{UserID: sess.userID, Category: in.Category, Amount: in.Amount}
		id, err := s.budgets.Create(ctx, budget)
		if err != nil {
			return model.Budget{}, fmt.Errorf("failed to create budget: %w", err)
		}
		budget.ID = id
	}

	s.applyIfCurrent(sess, func() {
		for i := range s.budgetList {
			if s.budgetList[i].ID == budget.ID {
				s.budgetList[i] = budget
				return
			}
		}
		s.budgetList = append(s.budgetList, budget)
	})

	s.logger.Info("budget saved", "category", budget.Category, "amount", budget.Amount.StringFixed(2))
	return budget, nil
}

// Categorize suggests a category for description. It returns a taxonomy
// name (Other when the suggestion is not in the taxonomy) and false when no
// suggestion could be made. It never fails.
func (s *Store) Categorize(ctx context.Context, description string) (string, bool) {
	if s.categorizer == nil || strings.TrimSpace(description) == "" {
		return "", false
	}

	label, err := s.categorizer.SuggestCategory(ctx, description)
	if err != nil {
		s.logger.Debug("no category suggestion", "error", err)
		return "", false
	}
	return s.taxonomy.Canonical(label), true
}

// CategorizeExpense is Categorize for an expense description. Suggestions of
// an income category become Other.
func (s *Store) CategorizeExpense(ctx context.Context, description string) (string, bool) {
	category, ok := s.Categorize(ctx, description)
	if !ok {
		return "", false
	}
	if c, found := s.taxonomy.Lookup(category); found && c.Type == model.CategoryTypeIncome {
		return model.CategoryOther, true
	}
	return category, true
}

func (s *Store) upsertTransactionLocked(txn model.Transaction) {
	for i := range s.txns {
		if s.txns[i].ID == txn.ID {
			s.txns[i] = txn
			return
		}
	}
	s.txns = append(s.txns, txn)
}
