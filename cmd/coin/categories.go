package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Long: `Display the categories transactions and budgets can use. The list comes
from the categories key of the config file, or the built-in defaults.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			tax, err := appCfg.Taxonomy()
			if err != nil {
				return err
			}
			fmt.Println(cli.RenderTable([]string{"", "Name", "Type", "Budget"}, categoryRows(tax)))
			return nil
		},
	}
}

func categoryRows(tax *model.Taxonomy) [][]string {
	all := tax.All()
	rows := make([][]string, 0, len(all))
	for _, c := range all {
		budget := cli.SubtleStyle.Render("no")
		if tax.IsBudgetEligible(c.Name) {
			budget = "yes"
		}
		rows = append(rows, []string{c.Icon, c.Name, string(c.Type), budget})
	}
	return rows
}
