package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/model"
)

func categorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categorize <description>",
		Short: "Suggest a category for a description",
		Long: `Ask the configured LLM which category a description belongs to.
Nothing is saved. Answers outside the category list come back as Other.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !appCfg.LLMEnabled() {
				return fmt.Errorf("%w: set llm.api_key or %s_API_KEY to enable categorization",
					errNoCategorizer, strings.ToUpper(appCfg.LLM.Provider))
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			description := strings.Join(args, " ")
			category, ok := a.store.Categorize(ctx, description)
			if !ok {
				fmt.Println(cli.FormatWarning("No suggestion available, it would be filed under " + model.CategoryOther))
				return nil
			}

			icon := ""
			if c, found := a.taxonomy.Lookup(category); found {
				icon = c.Icon + " "
			}
			fmt.Printf("%s %s%s\n", cli.RobotIcon, icon, cli.BoldStyle.Render(category))
			return nil
		},
	}
}
