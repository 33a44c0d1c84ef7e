package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/report"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and manage transactions",
	}

	cmd.AddCommand(txAddCmd())
	cmd.AddCommand(txListCmd())
	cmd.AddCommand(txUpdateCmd())
	cmd.AddCommand(txDeleteCmd())
	cmd.AddCommand(txImportCmd())

	return cmd
}

func txAddCmd() *cobra.Command {
	var (
		amount   string
		typ      string
		category string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Record an income or expense",
		Long: `Record a transaction dated now.

Expenses without --category get a suggested category when an LLM is
configured; you can accept it or pick another.

Examples:
  coin tx add "Salary" --amount 5000 --type income
  coin tx add "Weekly groceries" --amount 150.75
  coin tx add "Rent" --amount 1200 --category Housing`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireUser(); err != nil {
				return err
			}

			txType, err := parseType(typ)
			if err != nil {
				return err
			}
			value, err := parseAmount(amount)
			if err != nil {
				return err
			}

			input := model.TransactionInput{
				Description: strings.Join(args, " "),
				Amount:      value,
				Type:        txType,
				Category:    category,
			}
			if txType == model.TypeExpense && strings.TrimSpace(category) == "" {
				if input.Category, err = chooseCategory(ctx, a, input.Description, yes); err != nil {
					return err
				}
			}

			txn, err := a.store.AddTransaction(ctx, input)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s %s to %s (%s)",
				txn.Type, cli.FormatMoney(txn.Amount), txn.Category, shortID(txn.ID))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 12.50 (required)")
	cmd.Flags().StringVarP(&typ, "type", "t", "expense", "income or expense")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept the suggested category without asking")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// chooseCategory asks the categorizer for a suggestion and lets the user
// accept it or pick another. An empty result lets the store fall back to
// Other.
func chooseCategory(ctx context.Context, a *app, description string, acceptSuggestion bool) (string, error) {
	suggestion, ok := a.store.CategorizeExpense(ctx, description)
	if ok {
		if acceptSuggestion {
			fmt.Println(cli.FormatInfo(fmt.Sprintf("%s Categorized as %s", cli.RobotIcon, suggestion)))
			return suggestion, nil
		}
		useIt, err := a.prompter.Confirm(ctx, fmt.Sprintf("%s Suggested category: %s. Use it?", cli.RobotIcon, suggestion), true)
		if err != nil {
			return "", err
		}
		if useIt {
			return suggestion, nil
		}
	} else if acceptSuggestion {
		return "", nil
	}

	picked, err := a.prompter.Choose(ctx, "Category (number or name, empty for Other)", categoryNames(a.taxonomy.BudgetEligible()))
	if errors.Is(err, cli.ErrNoChoice) {
		return model.CategoryOther, nil
	}
	return picked, err
}

func txListCmd() *cobra.Command {
	var (
		limit    int
		from, to string
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireUser(); err != nil {
				return err
			}

			txns := a.store.Transactions()
			if from != "" || to != "" {
				oldest := time.Now()
				if len(txns) > 0 {
					oldest = txns[len(txns)-1].Date.Local()
				}
				w, err := windowFromFlags(from, to, oldest, time.Now())
				if err != nil {
					return err
				}
				txns = report.Filter(txns, w)
			}
			if category != "" {
				name := a.taxonomy.Canonical(category)
				filtered := txns[:0]
				for _, t := range txns {
					if t.Category == name {
						filtered = append(filtered, t)
					}
				}
				txns = filtered
			}

			if len(txns) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions found. Use 'coin tx add' to record one."))
				return nil
			}

			total := len(txns)
			if limit > 0 && limit < total {
				txns = txns[:limit]
			}

			fmt.Println(cli.RenderTable(transactionHeaders, transactionRows(txns)))
			fmt.Println(report.SummaryText(report.Summarize(txns)))
			if len(txns) < total {
				fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("Showing %d of %d transactions.", len(txns), total)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows to show (0 for all)")
	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")

	return cmd
}

func txUpdateCmd() *cobra.Command {
	var description, amount, typ, category, date string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a transaction",
		Long: `Edit a transaction by id or unique id prefix. Only the flags you pass
change; the record is then saved as a whole.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireUser(); err != nil {
				return err
			}

			txn, err := findTransaction(a.store.Transactions(), args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("description") {
				txn.Description = description
			}
			if flags.Changed("amount") {
				if txn.Amount, err = parseAmount(amount); err != nil {
					return err
				}
			}
			if flags.Changed("type") {
				if txn.Type, err = parseType(typ); err != nil {
					return err
				}
				if !flags.Changed("category") {
					switch {
					case txn.Type == model.TypeIncome:
						txn.Category = model.CategoryIncome
					case txn.Category == model.CategoryIncome:
						txn.Category = model.CategoryOther
					}
				}
			}
			if flags.Changed("category") {
				txn.Category = category
			}
			if flags.Changed("date") {
				if txn.Date, err = parseDate(date); err != nil {
					return err
				}
			}

			if err := a.store.UpdateTransaction(ctx, txn); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Updated " + shortID(txn.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "income or expense")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")

	return cmd
}

func txDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireUser(); err != nil {
				return err
			}

			txn, err := findTransaction(a.store.Transactions(), args[0])
			if err != nil {
				return err
			}

			if !yes {
				fmt.Println(cli.RenderTable(transactionHeaders, transactionRows([]model.Transaction{txn})))
				ok, err := a.prompter.Confirm(ctx, "Delete this transaction?", false)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println(cli.InfoStyle.Render("Kept."))
					return nil
				}
			}

			if err := a.store.DeleteTransaction(ctx, txn.ID); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Deleted " + shortID(txn.ID)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")

	return cmd
}
