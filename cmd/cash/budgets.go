package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-cash-must-flow/internal/cli"
)

func budgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budgets",
		Short: "List the budgets the access token can read",
		RunE:  runBudgets,
	}
}

func runBudgets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, release, err := newEngine(ctx, cfg, nil, nil)
	if err != nil {
		return err
	}
	defer release()

	budgets, err := eng.Budgets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list budgets: %w", err)
	}

	if len(budgets) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No budgets found"))
		return nil
	}

	fmt.Fprintln(out, cli.RenderBudgets(budgets))
	return nil
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the accounts of the budget with their types",
		Long: `List the accounts of the configured budget.

Use the IDs shown here for ynab.account_ids or 'cash balance --account'.`,
		RunE: runAccounts,
	}

	cmd.Flags().StringSlice("ofx", nil, "read accounts from OFX/QFX statement files instead of YNAB")

	return cmd
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ofxFiles, _ := cmd.Flags().GetStringSlice("ofx")
	eng, release, err := newEngine(ctx, cfg, ofxFiles, nil)
	if err != nil {
		return err
	}
	defer release()

	budget, accounts, err := eng.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	fmt.Fprintln(out, cli.FormatTitle(budget.Name))
	if len(accounts) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No accounts found"))
		return nil
	}

	fmt.Fprintln(out, cli.RenderAccounts(accounts))
	return nil
}
