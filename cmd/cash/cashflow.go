package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-cash-must-flow/internal/charts"
	"github.com/Veraticus/the-cash-must-flow/internal/cli"
	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/config"
	"github.com/Veraticus/the-cash-must-flow/internal/currency"
	"github.com/Veraticus/the-cash-must-flow/internal/tui"
)

func cashflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cashflow",
		Short: "Project the cash each month of the year needs",
		Long: `Project the cash each calendar month of the current year needs.

Recurring categories (names with a day-of-month marker like "Rent (1)")
count every month. Goals funded from checking or cash count in their goal
month; goals paid by credit card count two months later, when the statement
is paid. Each month's target balance is half its cash flow plus the target
average daily balance.`,
		RunE: runCashFlow,
	}

	cmd.Flags().StringP("month", "m", "", "budget month to read goals from (format: 2024-01)")
	cmd.Flags().Float64("target", config.DefaultTargetADB, "target average daily balance in dollars")
	cmd.Flags().BoolP("interactive", "i", false, "browse the report interactively")
	cmd.Flags().Bool("details", false, "list the contributing categories of every month")
	cmd.Flags().String("chart", "", "write a PNG bar chart of the monthly cash flow to this file")
	cmd.Flags().Bool("export", false, "export to Google Sheets")

	return cmd
}

func runCashFlow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if month, _ := cmd.Flags().GetString("month"); month != "" {
		parsed, parseErr := time.ParseInLocation(config.MonthLayout, strings.TrimSpace(month), time.UTC)
		if parseErr != nil {
			return common.NewUserError(fmt.Sprintf("invalid month %q: use YYYY-MM", month), parseErr)
		}
		cfg.CashFlow.Month = parsed
	}
	if cmd.Flags().Changed("target") {
		target, _ := cmd.Flags().GetFloat64("target")
		if target < 0 {
			return common.NewUserError("target average daily balance cannot be negative", common.ErrInvalidConfig)
		}
		cfg.CashFlow.TargetADB = currency.FromUnits(target)
	}

	eng, release, err := newEngine(ctx, cfg, nil, nil)
	if err != nil {
		return err
	}
	defer release()

	report, err := eng.CashFlow(ctx)
	if err != nil {
		return fmt.Errorf("failed to project cash flow: %w", err)
	}

	if path, _ := cmd.Flags().GetString("chart"); path != "" {
		png, chartErr := charts.NewGenerator().CashFlow(report)
		switch {
		case errors.Is(chartErr, charts.ErrNoData):
			fmt.Fprintln(out, cli.FormatWarning("Nothing to chart: every month is empty"))
		case chartErr != nil:
			return chartErr
		default:
			if err := writeFile(path, png); err != nil {
				return err
			}
			slog.Info("Wrote cash flow chart", "file", path)
		}
	}

	if export, _ := cmd.Flags().GetBool("export"); export {
		writer, err := newReportWriter(ctx)
		if err != nil {
			return err
		}
		if err := writer.WriteCashFlow(ctx, report); err != nil {
			return fmt.Errorf("failed to export cash flow: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess("Exported cash flow to Google Sheets"))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		return tui.Run(ctx, report)
	}

	fmt.Fprint(out, cli.RenderCashFlow(report))

	if details, _ := cmd.Flags().GetBool("details"); details {
		for _, month := range report.Months {
			fmt.Fprintln(out, cli.RenderMonth(report.Year, month))
		}
	}

	return nil
}
