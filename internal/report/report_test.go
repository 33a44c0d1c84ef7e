package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/testutil"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func sample() []model.Transaction {
	return []model.Transaction{
		testutil.Txn(day(2024, 3, 1), "Salary", "5000", model.TypeIncome, model.CategoryIncome),
		testutil.Txn(day(2024, 3, 5), "Groceries", "150.75", model.TypeExpense, "Food"),
		testutil.Txn(day(2024, 3, 10), "Rent", "1200", model.TypeExpense, "Housing"),
	}
}

func TestSummarize_Totals(t *testing.T) {
	s := Summarize(sample())

	assert.Equal(t, "3649.25", s.Balance.StringFixed(2))
	assert.Equal(t, "5000.00", s.Income.StringFixed(2))
	assert.Equal(t, "1350.75", s.Expenses.StringFixed(2))
	assert.Equal(t, 3, s.Count)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.True(t, s.Balance.IsZero())
	assert.Equal(t, "0.00", s.Income.StringFixed(2))
	assert.Zero(t, s.Count)
}

func TestSpendingByCategory(t *testing.T) {
	txns := append(sample(),
		testutil.Txn(day(2024, 3, 11), "Dinner", "60", model.TypeExpense, "Food"),
		testutil.Txn(day(2024, 3, 12), "Bus", "210.75", model.TypeExpense, "Transport"),
	)

	totals := SpendingByCategory(txns)

	require.Len(t, totals, 3)
	assert.Equal(t, "Housing", totals[0].Category)
	// Food and Transport tie at 210.75.
	assert.Equal(t, "Food", totals[1].Category)
	assert.Equal(t, "210.75", totals[1].Amount.StringFixed(2))
	assert.Equal(t, 2, totals[1].Count)
	assert.Equal(t, "Transport", totals[2].Category)
	for _, tot := range totals {
		assert.NotEqual(t, model.CategoryIncome, tot.Category)
	}
}

func TestWindow(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	w, err := NewWindow(time.Date(2024, 3, 5, 0, 0, 0, 0, loc), time.Date(2024, 3, 10, 0, 0, 0, 0, loc))
	require.NoError(t, err)

	tests := []struct {
		at   time.Time
		name string
		want bool
	}{
		{name: "first day morning", at: time.Date(2024, 3, 5, 0, 0, 0, 0, loc), want: true},
		{name: "last day night", at: time.Date(2024, 3, 10, 23, 59, 59, 0, loc), want: true},
		{name: "day before", at: time.Date(2024, 3, 4, 23, 59, 59, 0, loc), want: false},
		{name: "day after", at: time.Date(2024, 3, 11, 0, 0, 0, 0, loc), want: false},
		{name: "utc instant on last local day", at: time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Contains(tt.at))
		})
	}

	single, err := NewWindow(day(2024, 3, 5), day(2024, 3, 5))
	require.NoError(t, err)
	assert.True(t, single.Contains(day(2024, 3, 5)))

	_, err = NewWindow(day(2024, 3, 5), day(2024, 3, 4))
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestBuild(t *testing.T) {
	w, err := NewWindow(day(2024, 3, 2), day(2024, 3, 10))
	require.NoError(t, err)
	now := day(2024, 4, 1)

	r := Build(sample(), w, now)

	assert.Equal(t, now, r.GeneratedAt)
	require.Len(t, r.Transactions, 2)
	assert.Equal(t, "Rent", r.Transactions[0].Description)
	assert.Equal(t, "Groceries", r.Transactions[1].Description)
	assert.Equal(t, "1350.75", r.Summary.Expenses.StringFixed(2))
	assert.True(t, r.Summary.Income.IsZero())
	assert.Equal(t, "-1350.75", r.Summary.Balance.StringFixed(2))
	require.Len(t, r.ByCategory, 2)
}

func TestProgress(t *testing.T) {
	budgets := []model.Budget{
		{ID: "b1", Category: "Food", Amount: decimal.NewFromInt(100)},
		{ID: "b2", Category: "Housing", Amount: decimal.NewFromInt(1500)},
		{ID: "b3", Category: "Travel", Amount: decimal.NewFromInt(300)},
		{ID: "b4", Category: "Gifts", Amount: decimal.Zero},
	}

	progress := Progress(budgets, sample())

	require.Len(t, progress, 4)

	food := progress[0]
	assert.Equal(t, "150.75", food.Spent.StringFixed(2))
	assert.True(t, food.Overspent())
	assert.Equal(t, "50.75", food.Overspend().StringFixed(2))
	assert.Equal(t, "150.8", food.Percent().String())

	housing := progress[1]
	assert.False(t, housing.Overspent())
	assert.Equal(t, "300.00", housing.Remaining.StringFixed(2))
	assert.True(t, housing.Overspend().IsZero())
	assert.Equal(t, "80", housing.Percent().String())

	travel := progress[2]
	assert.True(t, travel.Spent.IsZero())
	assert.Equal(t, "300.00", travel.Remaining.StringFixed(2))
	assert.True(t, travel.Percent().IsZero())

	assert.True(t, progress[3].Percent().IsZero())
}

func TestBuildDashboard(t *testing.T) {
	txns := sample()
	model.SortByDateDesc(txns)
	budgets := []model.Budget{{ID: "b1", Category: "Food", Amount: decimal.NewFromInt(200)}}

	d := BuildDashboard(txns, budgets, 2)

	require.Len(t, d.Recent, 2)
	assert.Equal(t, "Rent", d.Recent[0].Description)
	assert.Equal(t, "3649.25", d.Summary.Balance.StringFixed(2))
	require.Len(t, d.Budgets, 1)
	assert.Equal(t, "49.25", d.Budgets[0].Remaining.StringFixed(2))

	assert.Len(t, BuildDashboard(txns, nil, 10).Recent, 3)
	assert.Empty(t, BuildDashboard(nil, nil, 5).Recent)
}

func TestCSVWriter(t *testing.T) {
	w, err := NewWindow(day(2024, 3, 1), day(2024, 3, 31))
	require.NoError(t, err)
	r := Build(sample(), w, day(2024, 4, 1))

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(&buf).Write(context.Background(), r))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{"2024-03-10", "Rent", "Housing", "expense", "1200.00"}, records[1])
	assert.Equal(t, []string{"2024-03-01", "Salary", "Income", "income", "5000.00"}, records[3])
}

func TestTextWriter(t *testing.T) {
	w, err := NewWindow(day(2024, 3, 1), day(2024, 3, 31))
	require.NoError(t, err)
	r := Build(sample(), w, day(2024, 4, 1))

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter(&buf).Write(context.Background(), r))

	out := buf.String()
	assert.Contains(t, out, "2024-03-01 to 2024-03-31")
	assert.Contains(t, out, "$5000.00")
	assert.Contains(t, out, "$1350.75")
	assert.Contains(t, out, "$3649.25")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Housing")
}

func TestTextWriter_EmptyReport(t *testing.T) {
	w, err := NewWindow(day(2024, 3, 1), day(2024, 3, 31))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter(&buf).Write(context.Background(), Build(nil, w, day(2024, 4, 1))))

	assert.Contains(t, buf.String(), "No transactions in this period.")
	assert.Contains(t, buf.String(), "No expenses in this period.")
}
