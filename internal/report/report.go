// Package report derives totals, category breakdowns and budget progress
// from a user's transactions and renders them for export.
package report

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

// ErrInvalidWindow is returned when a window ends before it starts.
var ErrInvalidWindow = errors.New("report window ends before it starts")

// Writer renders a report to some destination.
type Writer interface {
	Write(ctx context.Context, r Report) error
}

// Summary holds the headline totals. Balance is income minus expenses.
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
	Count    int
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
	Count    int
}

// Window is a range of calendar days, both ends inclusive. Days are taken in
// the location of From.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow validates and returns a window.
func NewWindow(from, to time.Time) (Window, error) {
	w := Window{From: from, To: to}
	if !w.end().After(w.start()) {
		return Window{}, ErrInvalidWindow
	}
	return w, nil
}

func (w Window) start() time.Time {
	loc := w.From.Location()
	y, m, d := w.From.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func (w Window) end() time.Time {
	loc := w.From.Location()
	y, m, d := w.To.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.start()) && t.Before(w.end())
}

// Report is the exported view of a window.
type Report struct {
	GeneratedAt  time.Time
	Window       Window
	Summary      Summary
	ByCategory   []CategoryTotal
	Transactions []model.Transaction
}

// Summarize totals income and expenses.
func Summarize(txns []model.Transaction) Summary {
	s := Summary{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, txn := range txns {
		switch txn.Type {
		case model.TypeIncome:
			s.Income = s.Income.Add(txn.Amount)
		case model.TypeExpense:
			s.Expenses = s.Expenses.Add(txn.Amount)
		default:
			continue
		}
		s.Count++
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

// SpendingByCategory groups expenses by category, largest first. Ties are
// ordered by name.
func SpendingByCategory(txns []model.Transaction) []CategoryTotal {
	idx := make(map[string]int)
	var totals []CategoryTotal
	for _, txn := range txns {
		if txn.Type != model.TypeExpense {
			continue
		}
		i, ok := idx[txn.Category]
		if !ok {
			i = len(totals)
			idx[txn.Category] = i
			totals = append(totals, CategoryTotal{Category: txn.Category, Amount: decimal.Zero})
		}
		totals[i].Amount = totals[i].Amount.Add(txn.Amount)
		totals[i].Count++
	}

	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].Amount.Cmp(totals[j].Amount); c != 0 {
			return c > 0
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

// Filter returns the transactions dated inside w, keeping their order.
func Filter(txns []model.Transaction, w Window) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if w.Contains(txn.Date) {
			out = append(out, txn)
		}
	}
	return out
}

// Build assembles the report for w. Transactions are listed newest first.
func Build(txns []model.Transaction, w Window, now time.Time) Report {
	inWindow := Filter(txns, w)
	model.SortByDateDesc(inWindow)
	return Report{
		GeneratedAt:  now,
		Window:       w,
		Summary:      Summarize(inWindow),
		ByCategory:   SpendingByCategory(inWindow),
		Transactions: inWindow,
	}
}
