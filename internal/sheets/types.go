package sheets

import (
	"fmt"

	"github.com/itsNik05/Coin-Tracker-01/internal/report"
)

// Tab names.
const (
	SummaryTab      = "Summary"
	CategoriesTab   = "Categories"
	TransactionsTab = "Transactions"
)

// Tab is one sheet of the export: its title, the column holding money
// amounts (-1 for none) and its rows. The first row is the header.
type Tab struct {
	Title       string
	Values      [][]any
	AmountCol   int
	HeaderRows  int
	ColumnCount int
}

// TabData holds all the data for the complete spreadsheet export.
type TabData struct {
	Title string
	Tabs  []Tab
}

// BuildTabData lays a report out as spreadsheet tabs. Amounts are written as
// numbers rounded to cents so the sheet can format and sum them.
func BuildTabData(r report.Report) TabData {
	from := r.Window.From.Format(report.DateLayout)
	to := r.Window.To.Format(report.DateLayout)

	summary := Tab{
		Title:       SummaryTab,
		AmountCol:   -1,
		HeaderRows:  1,
		ColumnCount: 2,
		Values: [][]any{
			{"Coin Report", fmt.Sprintf("%s to %s", from, to)},
			{"Total Income", money(r.Summary.Income)},
			{"Total Expenses", money(r.Summary.Expenses)},
			{"Net Flow", money(r.Summary.Balance)},
			{"Transactions", r.Summary.Count},
			{"Generated", r.GeneratedAt.Format("2006-01-02 15:04")},
		},
	}

	categories := Tab{
		Title:       CategoriesTab,
		AmountCol:   2,
		HeaderRows:  1,
		ColumnCount: 3,
		Values:      [][]any{{"Category", "Count", "Amount"}},
	}
	for _, c := range r.ByCategory {
		categories.Values = append(categories.Values, []any{c.Category, c.Count, money(c.Amount)})
	}

	txns := Tab{
		Title:       TransactionsTab,
		AmountCol:   4,
		HeaderRows:  1,
		ColumnCount: len(report.Columns),
		Values:      [][]any{toAny(report.Columns)},
	}
	for _, txn := range r.Transactions {
		txns.Values = append(txns.Values, []any{
			txn.Date.Format(report.DateLayout),
			txn.Description,
			txn.Category,
			string(txn.Type),
			money(txn.Amount),
		})
	}

	return TabData{
		Title: fmt.Sprintf("Coin Report %s to %s", from, to),
		Tabs:  []Tab{summary, categories, txns},
	}
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
