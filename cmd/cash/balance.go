package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-cash-must-flow/internal/charts"
	"github.com/Veraticus/the-cash-must-flow/internal/cli"
	"github.com/Veraticus/the-cash-must-flow/internal/engine"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
	"github.com/Veraticus/the-cash-must-flow/internal/tui"
)

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Average daily balances for the current statement period",
		Long: `Compute each account's average daily balance across the current
statement period: to date, and projected to the end of the period assuming
no further transactions.

By default every calendar day of the period counts. With --sparse only the
days with transactions count, each weighted by the days until the next one.

An account that fails is reported and skipped; the rest still run.`,
		RunE: runBalance,
	}

	cmd.Flags().StringSliceP("account", "a", nil, "account IDs (default: ynab.account_ids, then every open account)")
	cmd.Flags().StringSlice("ofx", nil, "read transactions from OFX/QFX statement files instead of YNAB")
	cmd.Flags().Int("cutoff", 0, "statement end day of the month (default: statement.end_day)")
	cmd.Flags().Bool("sparse", false, "average over transaction days instead of calendar days")
	cmd.Flags().Bool("opening", false, "with --sparse, start from the balance before the period instead of zero")
	cmd.Flags().Bool("daily", false, "list each account's daily balances")
	cmd.Flags().String("chart", "", "write a PNG balance chart per account into this directory")
	cmd.Flags().BoolP("interactive", "i", false, "browse the balances interactively")
	cmd.Flags().Bool("export", false, "export to Google Sheets")

	return cmd
}

func runBalance(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accountIDs, _ := cmd.Flags().GetStringSlice("account")
	ofxFiles, _ := cmd.Flags().GetStringSlice("ofx")
	cutoff, _ := cmd.Flags().GetInt("cutoff")
	sparse, _ := cmd.Flags().GetBool("sparse")
	opening, _ := cmd.Flags().GetBool("opening")

	eng, release, err := newEngine(ctx, cfg, ofxFiles, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer release()

	balances, runErr := eng.Balances(ctx, engine.BalanceOptions{
		AccountIDs:   accountIDs,
		CutoffDay:    cutoff,
		Sparse:       sparse,
		CarryOpening: opening,
	})
	if len(balances) == 0 {
		if runErr != nil {
			return runErr
		}
		fmt.Fprintln(out, cli.FormatWarning("No accounts to report"))
		return nil
	}

	if dir, _ := cmd.Flags().GetString("chart"); dir != "" {
		if err := writeBalanceCharts(dir, balances); err != nil {
			return err
		}
	}

	if export, _ := cmd.Flags().GetBool("export"); export {
		writer, err := newReportWriter(ctx)
		if err != nil {
			return err
		}
		if err := writer.WriteBalances(ctx, balances); err != nil {
			return fmt.Errorf("failed to export balances: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess("Exported balances to Google Sheets"))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if err := tui.Run(ctx, nil, tui.WithBalances(balances)); err != nil {
			return err
		}
		return runErr
	}

	fmt.Fprint(out, cli.RenderBalances(balances))

	if daily, _ := cmd.Flags().GetBool("daily"); daily {
		for _, bal := range balances {
			fmt.Fprintln(out, cli.RenderDailyBalances(bal))
		}
	}

	if runErr != nil {
		fmt.Fprintln(out, cli.FormatWarning("Some accounts were skipped"))
		return fmt.Errorf("some accounts failed: %w", runErr)
	}
	return nil
}

func writeBalanceCharts(dir string, balances []service.AccountBalance) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	generator := charts.NewGenerator()
	for _, bal := range balances {
		png, err := generator.Balance(bal)
		if errors.Is(err, charts.ErrNoData) {
			slog.Warn("Not enough days to chart", "account", bal.Account.Name)
			continue
		}
		if err != nil {
			return err
		}

		path := filepath.Join(dir, bal.Account.ID+".png")
		if err := writeFile(path, png); err != nil {
			return err
		}
		slog.Info("Wrote balance chart", "account", bal.Account.Name, "file", path)
	}
	return nil
}
