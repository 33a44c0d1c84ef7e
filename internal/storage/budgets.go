package storage

import (
	"fmt"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

var budgetCodec = codec[model.Budget]{
	kind:    "budgets",
	columns: []string{"id", "user_id", "category", "amount"},
	orderBy: "created_at, rowid",
	fields: map[string]column{
		"category": textColumn("category"),
		"amount":   decimalColumn("amount"),
	},
	values: func(id string, b model.Budget) []any {
		return []any{id, b.UserID, b.Category, b.Amount}
	},
	scan: func(row rowScanner) (model.Budget, error) {
		var b model.Budget
		if err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount); err != nil {
			return model.Budget{}, fmt.Errorf("failed to scan budget: %w", err)
		}
		return b, nil
	},
}
