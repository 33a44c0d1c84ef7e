package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/ofx"
	"github.com/itsNik05/Coin-Tracker-01/internal/report"
)

func txImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) statements exported from your bank.

Deposits are recorded as income. Withdrawals and charges are recorded as
expenses and categorized when an LLM is configured, otherwise filed under Other.

Examples:
  # Import single file
  coin tx import ~/Downloads/checking_jan.qfx

  # Import all QFX files in a directory
  coin tx import ~/Downloads/*.qfx

  # Preview without saving
  coin tx import --dry-run ~/Downloads/card.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	rows, err := parseStatements(cmd.Context(), files)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		slog.Warn("No transactions found in any file")
		return nil
	}

	printImportPreview(rows)
	if dryRun {
		fmt.Println(cli.FormatInfo("Dry run complete, nothing saved."))
		return nil
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireUser(); err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(os.Stdout)
	ctx := handler.HandleInterrupts(cmd.Context(), "Import", true)

	bar := cli.NewProgress(os.Stdout, len(rows), "Importing")
	summary, err := a.store.ImportTransactions(ctx, rows, bar.Update)
	if !handler.WasInterrupted() {
		bar.Finish()
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d of %d transactions (%d categorized)",
		summary.Imported, len(rows), summary.Categorized)))
	for _, skipped := range summary.Skipped {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Skipped row %d %q: %v", skipped.Index+1, skipped.Description, skipped.Err)))
	}

	if handler.WasInterrupted() {
		return nil
	}
	return err
}

// expandFiles resolves glob patterns and plain paths.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// parseStatements reads every file. Rows repeated across overlapping
// statements are kept once; unreadable files are logged and skipped.
func parseStatements(ctx context.Context, files []string) ([]model.ImportedTransaction, error) {
	parser := ofx.NewParser(slog.Default())

	type rowKey struct {
		date        string
		description string
		amount      string
		typ         model.TransactionType
	}
	seen := make(map[rowKey]bool)

	var rows []model.ImportedTransaction
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}
		stmt, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, row := range stmt.Transactions {
			key := rowKey{
				date:        row.Date.Format(report.DateLayout),
				description: row.Description,
				amount:      row.Amount.String(),
				typ:         row.Type,
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			rows = append(rows, row)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"accounts", len(stmt.Accounts),
			"transactions_found", len(stmt.Transactions),
			"added", added,
			"duplicates", len(stmt.Transactions)-added)
	}
	return rows, nil
}

func printImportPreview(rows []model.ImportedTransaction) {
	txns := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, model.Transaction{
			Date:        row.Date,
			Description: row.Description,
			Category:    row.Category,
			Type:        row.Type,
			Amount:      row.Amount,
		})
	}
	model.SortByDateDesc(txns)

	oldest, newest := txns[len(txns)-1].Date, txns[0].Date
	fmt.Printf("\n📅 %d transactions from %s to %s\n",
		len(txns), oldest.Format(report.DateLayout), newest.Format(report.DateLayout))
	fmt.Println(report.SummaryText(report.Summarize(txns)))

	const sample = 5
	if len(txns) > sample {
		txns = txns[:sample]
	}
	fmt.Println(cli.RenderTable(transactionHeaders, transactionRows(txns)))
}
