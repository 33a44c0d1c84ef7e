package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validation errors.
var (
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyDescription = errors.New("description is required")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TransactionType is the direction of money flow.
type TransactionType string

const (
	// TypeIncome is money coming in.
	TypeIncome TransactionType = "income"
	// TypeExpense is money going out.
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single income or expense record.
type Transaction struct {
	Date        time.Time
	ID          string
	UserID      string
	Description string
	Category    string
	Type        TransactionType
	Amount      decimal.Decimal
}

// TransactionInput holds the user-editable fields of a transaction.
type TransactionInput struct {
	Description string          `validate:"required,max=200"`
	Category    string          `validate:"max=60"`
	Type        TransactionType `validate:"required,oneof=income expense"`
	Amount      decimal.Decimal
}

// ImportedTransaction is a statement row that keeps its posted date.
type ImportedTransaction struct {
	Date time.Time
	TransactionInput
}

// Normalize validates the input against the taxonomy and returns a copy with
// the category resolved to its canonical name. Income transactions must use
// the Income category (empty defaults to it); expense transactions may not,
// and unknown expense categories become Other.
func (in TransactionInput) Normalize(tax *Taxonomy) (TransactionInput, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)

	if in.Description == "" {
		return in, ErrEmptyDescription
	}
	if !in.Type.Valid() {
		return in, fmt.Errorf("%w: %q", ErrInvalidType, in.Type)
	}
	if err := validate.Struct(in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Amount.IsNegative() {
		return in, ErrNegativeAmount
	}

	switch in.Type {
	case TypeIncome:
		if in.Category == "" {
			in.Category = CategoryIncome
		}
		c, ok := tax.Lookup(in.Category)
		if !ok || c.Name != CategoryIncome {
			return in, fmt.Errorf("%w: income transactions must use %q", ErrInvalidCategory, CategoryIncome)
		}
		in.Category = c.Name
	case TypeExpense:
		c, ok := tax.Lookup(in.Category)
		if ok && c.Type == CategoryTypeIncome {
			return in, fmt.Errorf("%w: %q is reserved for income", ErrInvalidCategory, c.Name)
		}
		in.Category = tax.Canonical(in.Category)
	}

	return in, nil
}

// Input returns the user-editable part of the transaction.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Description: t.Description,
		Category:    t.Category,
		Type:        t.Type,
		Amount:      t.Amount,
	}
}

// SortByDateDesc orders transactions newest first. Equal dates keep their
// relative order.
func SortByDateDesc(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.After(txns[j].Date)
	})
}
