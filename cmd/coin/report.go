package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/config"
	"github.com/itsNik05/Coin-Tracker-01/internal/report"
	"github.com/itsNik05/Coin-Tracker-01/internal/sheets"
)

// Report formats.
const (
	formatText   = "text"
	formatCSV    = "csv"
	formatSheets = "sheets"
)

func reportCmd() *cobra.Command {
	var from, to, format, output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a report for a date range",
		Long: `Export totals, spending by category and the transactions of a date range.

The range is inclusive and defaults to the current month.

Formats:
  text    tables in the terminal (default)
  csv     one row per transaction
  sheets  a Google Sheets spreadsheet (run 'coin auth sheets' first)

Examples:
  coin report
  coin report --from 2024-01-01 --to 2024-03-31 --format csv --output q1.csv
  coin report --format sheets`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			now := time.Now()
			w, err := windowFromFlags(from, to, monthStart(now), now)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireUser(); err != nil {
				return err
			}

			r := report.Build(a.store.Transactions(), w, now)

			out := io.Writer(os.Stdout)
			if output != "" && format != formatSheets {
				output = config.ExpandPath(output)
				if err := config.EnsureParentDir(output); err != nil {
					return fmt.Errorf("failed to create directory for %s: %w", output, err)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer func() {
					if err := f.Close(); err != nil {
						slog.Warn("Failed to close report file", "file", output, "error", err)
					}
				}()
				out = f
			}

			writer, err := reportWriter(cmd, format, out)
			if err != nil {
				return err
			}
			if err := writer.Write(ctx, r); err != nil {
				return err
			}

			switch {
			case format == formatSheets:
				fmt.Println(cli.FormatSuccess("Report exported to Google Sheets"))
			case output != "":
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Report with %d transactions written to %s", len(r.Transactions), output)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD, default: start of this month)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, csv, sheets)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}

func reportWriter(cmd *cobra.Command, format string, out io.Writer) (report.Writer, error) {
	switch format {
	case formatText:
		return report.NewTextWriter(out), nil
	case formatCSV:
		return report.NewCSVWriter(out), nil
	case formatSheets:
		w, err := sheets.NewWriter(cmd.Context(), appCfg.Sheets, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("failed to set up Google Sheets: %w", err)
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unknown format %q (use text, csv or sheets)", format)
	}
}

// windowFromFlags builds a report window from optional --from/--to values.
func windowFromFlags(from, to string, defaultFrom, now time.Time) (report.Window, error) {
	start, end := defaultFrom, now

	var err error
	if from != "" {
		if start, err = parseDate(from); err != nil {
			return report.Window{}, err
		}
	}
	if to != "" {
		if end, err = parseDate(to); err != nil {
			return report.Window{}, err
		}
	}

	w, err := report.NewWindow(start, end)
	if err != nil {
		return report.Window{}, fmt.Errorf("%w: --from %s is after --to %s", err,
			start.Format(report.DateLayout), end.Format(report.DateLayout))
	}
	return w, nil
}
