package state

import (
	"context"
	"fmt"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

// ImportSummary reports the outcome of ImportTransactions.
type ImportSummary struct {
	Skipped     []SkippedRow
	Imported    int
	Categorized int
}

// SkippedRow is an input row that failed validation.
type SkippedRow struct {
	Err         error
	Description string
	Index       int
}

// ImportTransactions writes statement rows keeping their posted dates.
// Expense rows without a category are categorized first, falling back to
// Other. Invalid rows are skipped; a store failure stops the import and
// the rows written so far stay written. progress may be nil.
func (s *Store) ImportTransactions(ctx context.Context, rows []model.ImportedTransaction, progress func(done, total int)) (ImportSummary, error) {
	var summary ImportSummary

	sess, err := s.currentSession()
	if err != nil {
		return summary, err
	}

	written := make([]model.Transaction, 0, len(rows))
	defer func() {
		if len(written) == 0 {
			return
		}
		s.applyIfCurrent(sess, func() {
			for _, txn := range written {
				s.upsertTransactionLocked(txn)
			}
			model.SortByDateDesc(s.txns)
		})
	}()

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		in := row.TransactionInput
		if in.Type == model.TypeExpense && in.Category == "" {
			if category, ok := s.CategorizeExpense(ctx, in.Description); ok {
				in.Category = category
				summary.Categorized++
			}
		}

		norm, err := in.Normalize(s.taxonomy)
		if err != nil {
			summary.Skipped = append(summary.Skipped, SkippedRow{Index: i, Description: row.Description, Err: err})
			s.report(progress, i+1, len(rows))
			continue
		}

		date := row.Date
		if date.IsZero() {
			date = s.now()
		}
		txn := model.Transaction{
			UserID:      sess.userID,
			Date:        date.UTC(),
			Description: norm.Description,
			Amount:      norm.Amount,
			Type:        norm.Type,
			Category:    norm.Category,
		}

		id, err := s.transactions.Create(ctx, txn)
		if err != nil {
			return summary, fmt.Errorf("failed to import row %d: %w", i+1, err)
		}
		txn.ID = id
		written = append(written, txn)
		summary.Imported++
		s.report(progress, i+1, len(rows))
	}

	s.logger.Info("import finished",
		"imported", summary.Imported,
		"categorized", summary.Categorized,
		"skipped", len(summary.Skipped))
	return summary, nil
}

func (s *Store) report(progress func(done, total int), done, total int) {
	if progress != nil {
		progress(done, total)
	}
}
