package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/report"
)

// recentCount is how many transactions the dashboard lists.
const recentCount = 5

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show balance, recent activity and budgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.requireUser()
			if err != nil {
				return err
			}

			d := report.BuildDashboard(a.store.Transactions(), a.store.Budgets(), recentCount)
			fmt.Print(renderDashboard(user.DisplayName, d))
			return nil
		},
	}
}

func renderDashboard(name string, d report.Dashboard) string {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("Welcome back, " + name))
	b.WriteString("\n")
	b.WriteString(cli.RenderBox("Balance", fmt.Sprintf("%s\n%s",
		cli.FormatSigned(d.Summary.Balance), report.SummaryText(d.Summary))))
	b.WriteString("\n\n")

	b.WriteString(cli.BoldStyle.Render("Recent Transactions"))
	b.WriteString("\n")
	if len(d.Recent) == 0 {
		b.WriteString(cli.SubtleStyle.Render("Nothing recorded yet. Use 'coin tx add' to get started."))
	} else {
		b.WriteString(cli.RenderTable(transactionHeaders, transactionRows(d.Recent)))
	}
	b.WriteString("\n\n")

	if len(d.ByCategory) > 0 {
		b.WriteString(cli.BoldStyle.Render(cli.ChartIcon + " Spending by Category"))
		b.WriteString("\n")
		b.WriteString(cli.RenderTable([]string{"Category", "Count", "Amount"}, report.CategoryRows(d.ByCategory)))
		b.WriteString("\n\n")
	}

	if len(d.Budgets) > 0 {
		b.WriteString(cli.BoldStyle.Render("Budgets"))
		b.WriteString("\n")
		b.WriteString(cli.RenderTable(budgetHeaders, budgetRows(d.Budgets)))
		b.WriteString("\n")
	}

	return b.String()
}
