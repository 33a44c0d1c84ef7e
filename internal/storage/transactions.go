package storage

import (
	"fmt"
	"time"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

var transactionCodec = codec[model.Transaction]{
	kind:    "transactions",
	columns: []string{"id", "user_id", "date", "description", "amount", "type", "category"},
	orderBy: "date DESC",
	fields: map[string]column{
		"date":        timeColumn("date"),
		"description": textColumn("description"),
		"amount":      decimalColumn("amount"),
		"type":        transactionTypeColumn("type"),
		"category":    textColumn("category"),
	},
	values: func(id string, txn model.Transaction) []any {
		return []any{id, txn.UserID, txn.Date.UTC(), txn.Description, txn.Amount, string(txn.Type), txn.Category}
	},
	scan: scanTransaction,
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn     model.Transaction
		date    time.Time
		txnType string
	)
	if err := row.Scan(&txn.ID, &txn.UserID, &date, &txn.Description, &txn.Amount, &txnType, &txn.Category); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}
	txn.Date = date.UTC()
	txn.Type = model.TransactionType(txnType)
	return txn, nil
}
