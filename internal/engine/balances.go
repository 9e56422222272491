package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/the-cash-must-flow/internal/balance"
	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// BalanceOptions selects what a balance run covers.
type BalanceOptions struct {
	// AccountIDs limits the run; empty falls back to the configured accounts,
	// then to every open account.
	AccountIDs []string
	// CutoffDay overrides the configured statement end day when non-zero.
	CutoffDay int
	// Sparse averages over transaction days instead of calendar days.
	Sparse bool
	// CarryOpening starts the sparse ledger from the balance before the
	// period instead of zero.
	CarryOpening bool
}

// Period returns the statement period containing today.
func (e *Engine) Period(cutoffDay int) (balance.Period, error) {
	if cutoffDay == 0 {
		cutoffDay = e.cfg.Statement.EndDay
	}
	return balance.StatementPeriod(e.now(), cutoffDay)
}

// Balances computes the statement balance of each selected account. A
// failing account is logged and skipped; its error is part of the joined
// error returned alongside the balances that did succeed.
func (e *Engine) Balances(ctx context.Context, opts BalanceOptions) ([]service.AccountBalance, error) {
	period, err := e.Period(opts.CutoffDay)
	if err != nil {
		return nil, err
	}

	budget, accounts, err := e.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := e.selectAccounts(accounts, opts.AccountIDs)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Computing statement balances",
		"period", period.String(),
		"accounts", len(selected),
		"sparse", opts.Sparse)

	bar := e.newProgressBar(len(selected))

	var (
		balances []service.AccountBalance
		errs     []error
	)
	for _, account := range selected {
		if err := ctx.Err(); err != nil {
			return balances, err
		}

		result, err := e.AccountBalance(ctx, budget.ID, account, period, opts)
		if err != nil {
			common.LogError(ctx, e.logger, err, "Skipping account", common.Fields{
				"account":    account.Name,
				"account_id": account.ID,
			})
			errs = append(errs, fmt.Errorf("account %s: %w", account.Name, err))
		} else {
			balances = append(balances, *result)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return balances, errors.Join(errs...)
}

func (e *Engine) selectAccounts(accounts []model.Account, ids []string) ([]model.Account, error) {
	if len(ids) == 0 {
		ids = e.cfg.YNAB.AccountIDs
	}

	if len(ids) == 0 {
		var open []model.Account
		for _, a := range accounts {
			if !a.Closed && !a.Deleted {
				open = append(open, a)
			}
		}
		return open, nil
	}

	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	selected := make([]model.Account, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, common.NewUserError(
				fmt.Sprintf("account %s not found; run 'cash accounts' to list accounts", id),
				common.ErrNotFound)
		}
		selected = append(selected, a)
	}
	return selected, nil
}

// AccountBalance computes one account's average daily balance to date and
// projected to the end of the period.
func (e *Engine) AccountBalance(ctx context.Context, budgetID string, account model.Account, period balance.Period, opts BalanceOptions) (*service.AccountBalance, error) {
	// Full history up to the period end: the starting balance needs it.
	end := period.End
	transactions, err := e.source.GetTransactionsByAccount(ctx, budgetID, account.ID, nil, &end)
	if err != nil {
		return nil, err
	}

	today := model.Day(e.now())
	if opts.Sparse {
		return e.sparseBalance(account, period, transactions, today, opts.CarryOpening)
	}
	return e.denseBalance(account, period, transactions, today)
}

func (e *Engine) denseBalance(account model.Account, period balance.Period, transactions []model.Transaction, today time.Time) (*service.AccountBalance, error) {
	elapsed := period.Through(today)

	toDate, err := balance.AverageDailyBalance(transactions, elapsed.Start, elapsed.End)
	if err != nil {
		return nil, err
	}

	projected, err := balance.AverageDailyBalance(transactions, period.Start, period.End)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Computed daily balance",
		"account", account.Name,
		"to_date", toDate.Average,
		"projected", projected.Average)

	return &service.AccountBalance{
		Period:          service.DateRange{Start: period.Start, End: period.End},
		Account:         account,
		Buckets:         toDate.Buckets,
		StartingBalance: toDate.StartingBalance,
		ToDate:          toDate.Average,
		ToDateDays:      toDate.Days,
		Projected:       projected.Average,
		ProjectedDays:   projected.Days,
	}, nil
}

func (e *Engine) sparseBalance(account model.Account, period balance.Period, transactions []model.Transaction, today time.Time, carryOpening bool) (*service.AccountBalance, error) {
	var opening model.Milliunits
	if carryOpening {
		opening = balance.StartingBalance(transactions, period.Start)
	}

	ledger, err := balance.TransactionDays(balance.InPeriod(transactions, period, today), opening, period.Through(today).End)
	if err != nil {
		return nil, err
	}

	toDate, err := ledger.Average()
	if err != nil {
		return nil, err
	}

	projectedLedger, err := ledger.Project(period.End)
	if err != nil {
		return nil, err
	}

	projected, err := projectedLedger.Average()
	if err != nil {
		return nil, err
	}

	buckets := make([]model.DayBucket, 0, len(ledger.Days))
	for _, d := range ledger.Days {
		buckets = append(buckets, model.DayBucket{Date: d.Date, Net: d.Net, Balance: d.Running})
	}

	e.logger.Debug("Computed transaction-day balance",
		"account", account.Name,
		"entries", len(ledger.Days),
		"to_date", toDate,
		"projected", projected)

	return &service.AccountBalance{
		Period:          service.DateRange{Start: period.Start, End: period.End},
		Account:         account,
		Buckets:         buckets,
		StartingBalance: opening,
		ToDate:          toDate,
		ToDateDays:      ledger.TotalDays(),
		Projected:       projected,
		ProjectedDays:   projectedLedger.TotalDays(),
		Sparse:          true,
	}, nil
}

func (e *Engine) newProgressBar(total int) *progressbar.ProgressBar {
	if e.progress == nil || total < 2 {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reading accounts...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionClearOnFinish(),
	)
}
