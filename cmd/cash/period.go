package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-cash-must-flow/internal/balance"
	"github.com/Veraticus/the-cash-must-flow/internal/cli"
	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

func periodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Show the current statement period",
		RunE:  runPeriod,
	}

	cmd.Flags().Int("cutoff", 0, "statement end day of the month (default: statement.end_day)")

	return cmd
}

func runPeriod(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cutoff, _ := cmd.Flags().GetInt("cutoff")
	if cutoff == 0 {
		cutoff = cfg.Statement.EndDay
	}

	today := model.Day(clock())
	period, err := balance.StatementPeriod(today, cutoff)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("invalid statement end day %d", cutoff), err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderPeriod(period.Start, period.End, today))
	return nil
}
