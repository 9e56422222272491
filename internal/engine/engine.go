// Package engine runs the fetch, join, reduce pipelines behind every report.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/config"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// Engine computes reports from a data source. It holds no state between
// runs; each report fetches a fresh snapshot.
type Engine struct {
	source   service.DataSource
	cfg      *config.Config
	now      func() time.Time
	logger   *slog.Logger
	progress io.Writer
}

// New creates an engine reading from source with the given configuration.
func New(source service.DataSource, cfg *config.Config) *Engine {
	return &Engine{
		source: source,
		cfg:    cfg,
		now:    time.Now,
		logger: slog.Default().With("component", "engine"),
	}
}

// WithClock sets the clock that decides "today" and the current year.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithProgress draws a progress bar on w during multi-account runs.
func (e *Engine) WithProgress(w io.Writer) *Engine {
	e.progress = w
	return e
}

// Budgets lists every budget the data source can see.
func (e *Engine) Budgets(ctx context.Context) ([]model.Budget, error) {
	return e.source.ListBudgets(ctx)
}

// ResolveBudget returns the configured budget, or the first budget when none
// is configured.
func (e *Engine) ResolveBudget(ctx context.Context) (model.Budget, error) {
	budgets, err := e.source.ListBudgets(ctx)
	if err != nil {
		return model.Budget{}, fmt.Errorf("failed to list budgets: %w", err)
	}

	if len(budgets) == 0 {
		return model.Budget{}, common.NewUserError("no budgets found for this access token", common.ErrNotFound)
	}

	want := e.cfg.YNAB.BudgetID
	if want == "" {
		e.logger.Debug("No budget configured, using first budget", "budget", budgets[0].Name)
		return budgets[0], nil
	}

	for _, b := range budgets {
		if b.ID == want {
			return b, nil
		}
	}

	// YNAB resolves its aliases server side
	if want == "last-used" || want == "default" {
		return model.Budget{ID: want, Name: want}, nil
	}

	return model.Budget{}, common.NewUserError(
		fmt.Sprintf("budget %s not found; run 'cash budgets' to list budgets", want),
		common.ErrNotFound)
}

// Accounts lists the open accounts of the resolved budget.
func (e *Engine) Accounts(ctx context.Context) (model.Budget, []model.Account, error) {
	budget, err := e.ResolveBudget(ctx)
	if err != nil {
		return model.Budget{}, nil, err
	}

	accounts, err := e.source.GetAccounts(ctx, budget.ID)
	if err != nil {
		return budget, nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	return budget, accounts, nil
}
