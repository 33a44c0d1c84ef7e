package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
)

// TextWriter renders a report as styled terminal tables.
type TextWriter struct {
	out io.Writer
}

// NewTextWriter creates a text writer on out.
func NewTextWriter(out io.Writer) *TextWriter {
	return &TextWriter{out: out}
}

// Write implements Writer.
func (w *TextWriter) Write(_ context.Context, r Report) error {
	var b strings.Builder

	b.WriteString(cli.FormatTitle(fmt.Sprintf("Report %s to %s",
		r.Window.From.Format(DateLayout), r.Window.To.Format(DateLayout))))
	b.WriteString("\n")
	b.WriteString(SummaryText(r.Summary))
	b.WriteString("\n\n")

	b.WriteString(cli.BoldStyle.Render("Spending by Category"))
	b.WriteString("\n")
	if len(r.ByCategory) == 0 {
		b.WriteString(cli.SubtleStyle.Render("No expenses in this period."))
	} else {
		b.WriteString(cli.RenderTable([]string{"Category", "Count", "Amount"}, CategoryRows(r.ByCategory)))
	}
	b.WriteString("\n\n")

	b.WriteString(cli.BoldStyle.Render("Transactions"))
	b.WriteString("\n")
	if len(r.Transactions) == 0 {
		b.WriteString(cli.SubtleStyle.Render("No transactions in this period."))
	} else {
		b.WriteString(cli.RenderTable(Columns, Rows(r)))
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// SummaryText renders the headline totals on one line.
func SummaryText(s Summary) string {
	return fmt.Sprintf("Total Income: %s   Total Expenses: %s   Net Flow: %s",
		cli.FormatMoney(s.Income),
		cli.FormatMoney(s.Expenses),
		cli.FormatSigned(s.Balance))
}

// CategoryRows formats category totals as table rows.
func CategoryRows(totals []CategoryTotal) [][]string {
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{t.Category, fmt.Sprint(t.Count), cli.FormatMoney(t.Amount)})
	}
	return rows
}
