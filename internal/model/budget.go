package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Budget is a monthly spending ceiling for one category. A user has at most
// one budget per category.
type Budget struct {
	ID       string
	UserID   string
	Category string
	Amount   decimal.Decimal
}

// BudgetInput holds the fields of a budget upsert.
type BudgetInput struct {
	Category string
	Amount   decimal.Decimal
}

// Normalize validates the input and resolves the category to its canonical name.
func (in BudgetInput) Normalize(tax *Taxonomy) (BudgetInput, error) {
	in.Category = strings.TrimSpace(in.Category)
	if in.Amount.IsNegative() {
		return in, ErrNegativeAmount
	}
	c, ok := tax.Lookup(in.Category)
	if !ok {
		return in, fmt.Errorf("%w: unknown category %q", ErrInvalidCategory, in.Category)
	}
	if c.Type != CategoryTypeExpense {
		return in, fmt.Errorf("%w: %q cannot have a budget", ErrInvalidCategory, c.Name)
	}
	in.Category = c.Name
	return in, nil
}
