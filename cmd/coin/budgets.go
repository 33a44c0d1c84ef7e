package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
	"github.com/itsNik05/Coin-Tracker-01/internal/report"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"budgets"},
		Short:   "Set and review monthly budgets",
	}

	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetListCmd())

	return cmd
}

func budgetSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Set the budget for a category",
		Long: `Create or replace the monthly budget of an expense category.

Examples:
  coin budget set Food 400
  coin budget set housing 1500`,
		Args: cobra.ExactArgs(2),
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

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			budget, err := a.store.UpsertBudget(ctx, model.BudgetInput{Category: args[0], Amount: amount})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s budget set to %s", budget.Category, cli.FormatMoney(budget.Amount))))
			return nil
		},
	}
}

func budgetListCmd() *cobra.Command {
	var thisMonth bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show budgets with what has been spent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireUser(); err != nil {
				return err
			}

			budgets := a.store.Budgets()
			if len(budgets) == 0 {
				fmt.Println(cli.InfoStyle.Render("No budgets yet. Use 'coin budget set <category> <amount>' to add one."))
				return nil
			}

			txns := a.store.Transactions()
			if thisMonth {
				now := time.Now()
				w, err := report.NewWindow(monthStart(now), now)
				if err != nil {
					return err
				}
				txns = report.Filter(txns, w)
			}

			fmt.Println(cli.RenderTable(budgetHeaders, budgetRows(report.Progress(budgets, txns))))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&thisMonth, "month", "m", false, "only count expenses from the current month")

	return cmd
}

var budgetHeaders = []string{"Category", "Budget", "Spent", "Remaining", "Used"}

// budgetRows formats budget progress for cli.RenderTable. Overspent rows
// show the overspend in the error style.
func budgetRows(progress []report.BudgetProgress) [][]string {
	rows := make([][]string, 0, len(progress))
	for _, p := range progress {
		remaining := cli.FormatMoney(p.Remaining)
		if p.Overspent() {
			remaining = cli.ErrorStyle.Render("over by " + cli.FormatMoney(p.Overspend()))
		}
		rows = append(rows, []string{
			p.Budget.Category,
			cli.FormatMoney(p.Budget.Amount),
			cli.FormatMoney(p.Spent),
			remaining,
			p.Percent().String() + "%",
		})
	}
	return rows
}
