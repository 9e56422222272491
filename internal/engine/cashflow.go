package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/the-cash-must-flow/internal/cashflow"
	"github.com/Veraticus/the-cash-must-flow/internal/join"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// Snapshot is everything the cash-flow report reads from one budget.
type Snapshot struct {
	Budget       model.Budget
	Categories   []model.Category
	Accounts     []model.Account
	Transactions []model.Transaction
}

// Fetch loads categories, accounts and transactions concurrently. Any
// failure cancels the others and no partial snapshot is returned.
func (e *Engine) Fetch(ctx context.Context, budget model.Budget, month time.Time) (*Snapshot, error) {
	snap := &Snapshot{Budget: budget}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		categories, err := e.source.GetMonthCategories(gctx, budget.ID, month)
		if err != nil {
			return fmt.Errorf("failed to get categories: %w", err)
		}
		snap.Categories = categories
		return nil
	})

	g.Go(func() error {
		accounts, err := e.source.GetAccounts(gctx, budget.ID)
		if err != nil {
			return fmt.Errorf("failed to get accounts: %w", err)
		}
		snap.Accounts = accounts
		return nil
	})

	g.Go(func() error {
		transactions, err := e.source.GetTransactions(gctx, budget.ID)
		if err != nil {
			return fmt.Errorf("failed to get transactions: %w", err)
		}
		snap.Transactions = transactions
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Debug("Fetched budget snapshot",
		"budget", budget.Name,
		"categories", len(snap.Categories),
		"accounts", len(snap.Accounts),
		"transactions", len(snap.Transactions))

	return snap, nil
}

// CashFlow builds the year's cash-flow report for the configured budget.
func (e *Engine) CashFlow(ctx context.Context) (*service.CashFlowReport, error) {
	budget, err := e.ResolveBudget(ctx)
	if err != nil {
		return nil, err
	}

	snap, err := e.Fetch(ctx, budget, e.cfg.CashFlow.Month)
	if err != nil {
		return nil, err
	}

	categories, err := join.AccountTypes(join.Pointers(snap.Categories), snap.Accounts, snap.Transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to join categories: %w", err)
	}

	projection := cashflow.NewProjector(e.cfg.CashFlow.TargetADB).
		WithClock(e.now).
		Project(categories)

	e.logger.Info("Projected cash flow",
		"budget", budget.Name,
		"year", projection.Year,
		"recurring", len(projection.Recurring))

	return &service.CashFlowReport{
		GeneratedAt:    e.now(),
		BudgetName:     budget.Name,
		Year:           projection.Year,
		Months:         projection.Months,
		Recurring:      projection.Recurring,
		RecurringTotal: projection.RecurringTotal,
		TargetADB:      e.cfg.CashFlow.TargetADB,
	}, nil
}
