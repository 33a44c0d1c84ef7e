package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/itsNik05/Coin-Tracker-01/internal/cli"
	"github.com/itsNik05/Coin-Tracker-01/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign up and manage your session",
		Long:  `Sign in with email and password or Google, and authorize Google Sheets export.`,
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authSignupCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authWhoamiCmd())
	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	var (
		email      string
		withGoogle bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long: `Sign in with your email and password, or with --google to use your
Google account in the browser. The session is remembered until it expires
or you run 'coin auth logout'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if withGoogle {
				fmt.Println(cli.FormatInfo("Opening Google sign-in in your browser..."))
				err = a.identity.SignInWithGoogle(ctx)
			} else {
				if email == "" {
					if email, err = a.prompter.Ask(ctx, "Email"); err != nil {
						return err
					}
				}
				var password string
				if password, err = a.prompter.AskSecret(ctx, "Password"); err != nil {
					return err
				}
				err = a.identity.SignInWithEmail(ctx, email, password)
			}
			if err != nil {
				return err
			}

			if err := a.settle(ctx); err != nil {
				return err
			}
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Welcome, %s!", user.DisplayName)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	cmd.Flags().BoolVar(&withGoogle, "google", false, "sign in with Google")

	return cmd
}

func authSignupCmd() *cobra.Command {
	var email, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ask := func(value *string, label string) error {
				if *value != "" {
					return nil
				}
				answer, askErr := a.prompter.Ask(ctx, label)
				*value = answer
				return askErr
			}
			if err := ask(&firstName, "First name"); err != nil {
				return err
			}
			if err := ask(&lastName, "Last name"); err != nil {
				return err
			}
			if err := ask(&email, "Email"); err != nil {
				return err
			}

			password, err := a.prompter.AskSecret(ctx, "Password")
			if err != nil {
				return err
			}
			confirm, err := a.prompter.AskSecret(ctx, "Confirm password")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}

			if err := a.identity.SignUpWithEmail(ctx, email, password, firstName, lastName); err != nil {
				return err
			}
			if err := a.settle(ctx); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Account created. Welcome, %s!", a.store.User().DisplayName)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")

	return cmd
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.identity.SignOut(ctx); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Signed out."))
			return nil
		},
	}
}

func authWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			user := a.store.User()
			if user == nil {
				fmt.Println(cli.FormatInfo("Not signed in."))
				return nil
			}

			fmt.Println(cli.RenderBox(user.DisplayName, fmt.Sprintf("Email: %s\nID:    %s\nTransactions: %d",
				user.Email, user.ID, len(a.store.Transactions()))))
			return nil
		},
	}
}

func authSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets export",
		Long: `Authorize coin to create and update spreadsheets in your Google account.

The token is saved to sheets.token_file and refreshed automatically. Not
needed when sheets.service_account_path is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := appCfg.Sheets
			if cfg.ServiceAccountPath != "" {
				fmt.Println(cli.FormatInfo("A service account is configured; no authorization needed."))
				return nil
			}

			fmt.Println(cli.FormatInfo("Opening Google authorization in your browser..."))
			if _, err := sheets.Authorize(cmd.Context(), cfg, slog.Default()); err != nil {
				return fmt.Errorf("sheets authorization failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Google Sheets authorized. Token saved to " + cfg.TokenFile))
			return nil
		},
	}
}
