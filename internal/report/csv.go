package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// DateLayout is the date format used by every renderer.
const DateLayout = "2006-01-02"

// Columns is the header of the transaction table.
var Columns = []string{"Date", "Description", "Category", "Type", "Amount"}

// CSVWriter writes the transaction table of a report as CSV.
type CSVWriter struct {
	out io.Writer
}

// NewCSVWriter creates a CSV writer on out.
func NewCSVWriter(out io.Writer) *CSVWriter {
	return &CSVWriter{out: out}
}

// Write implements Writer.
func (w *CSVWriter) Write(ctx context.Context, r Report) error {
	cw := csv.NewWriter(w.out)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range Rows(r) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Rows formats the transactions of r as table rows matching Columns.
func Rows(r Report) [][]string {
	rows := make([][]string, 0, len(r.Transactions))
	for _, txn := range r.Transactions {
		rows = append(rows, []string{
			txn.Date.Format(DateLayout),
			txn.Description,
			txn.Category,
			string(txn.Type),
			txn.Amount.StringFixed(2),
		})
	}
	return rows
}
