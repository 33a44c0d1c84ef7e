package report

import (
	"github.com/shopspring/decimal"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

var hundred = decimal.NewFromInt(100)

// BudgetProgress compares a budget to the expenses recorded in its category.
type BudgetProgress struct {
	Budget    model.Budget
	Spent     decimal.Decimal
	Remaining decimal.Decimal
}

// Overspent reports whether expenses exceed the budget.
func (p BudgetProgress) Overspent() bool {
	return p.Remaining.IsNegative()
}

// Overspend is the amount spent beyond the budget, or zero.
func (p BudgetProgress) Overspend() decimal.Decimal {
	if !p.Overspent() {
		return decimal.Zero
	}
	return p.Remaining.Neg()
}

// Percent is spent as a percentage of the budget, rounded to one place. A
// zero budget with any spending counts as 100.
func (p BudgetProgress) Percent() decimal.Decimal {
	if p.Budget.Amount.IsZero() {
		if p.Spent.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return p.Spent.Mul(hundred).Div(p.Budget.Amount).Round(1)
}

// Progress computes progress for each budget in the order given. Spending
// counts every expense in the budget's category.
func Progress(budgets []model.Budget, txns []model.Transaction) []BudgetProgress {
	spent := make(map[string]decimal.Decimal)
	for _, txn := range txns {
		if txn.Type == model.TypeExpense {
			spent[txn.Category] = spent[txn.Category].Add(txn.Amount)
		}
	}

	out := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		s := spent[b.Category]
		out = append(out, BudgetProgress{
			Budget:    b,
			Spent:     s,
			Remaining: b.Amount.Sub(s),
		})
	}
	return out
}

// Dashboard is the overview shown after sign-in.
type Dashboard struct {
	Summary    Summary
	Recent     []model.Transaction
	ByCategory []CategoryTotal
	Budgets    []BudgetProgress
}

// BuildDashboard summarizes all transactions and keeps the newest recent of
// them. txns is expected newest first.
func BuildDashboard(txns []model.Transaction, budgets []model.Budget, recent int) Dashboard {
	if recent < 0 {
		recent = 0
	}
	if recent > len(txns) {
		recent = len(txns)
	}
	return Dashboard{
		Summary:    Summarize(txns),
		Recent:     append([]model.Transaction(nil), txns[:recent]...),
		ByCategory: SpendingByCategory(txns),
		Budgets:    Progress(budgets, txns),
	}
}
