// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// DataSource is a read-only view of a budget. Every call returns a snapshot
// taken at call time.
type DataSource interface {
	ListBudgets(ctx context.Context) ([]model.Budget, error)
	GetMonthCategories(ctx context.Context, budgetID string, month time.Time) ([]model.Category, error)
	GetAccounts(ctx context.Context, budgetID string) ([]model.Account, error)
	GetTransactions(ctx context.Context, budgetID string) ([]model.Transaction, error)
	// GetTransactionsByAccount returns the account's transactions, optionally
	// limited to [start, end]. Nil bounds are open.
	GetTransactionsByAccount(ctx context.Context, budgetID, accountID string, start, end *time.Time) ([]model.Transaction, error)
}

// CashFlowReport is the projected cash flow of a budget for one year.
type CashFlowReport struct {
	GeneratedAt    time.Time
	BudgetName     string
	Months         []model.MonthReport
	Recurring      []model.Category
	Year           int
	RecurringTotal model.Milliunits
	TargetADB      model.Milliunits
}

// AccountBalance is the statement-window balance report of one account.
type AccountBalance struct {
	Period          DateRange
	Account         model.Account
	Buckets         []model.DayBucket
	ToDateDays      int
	ProjectedDays   int
	StartingBalance model.Milliunits
	ToDate          model.Milliunits
	Projected       model.Milliunits
	// Sparse is set when the averages come from the transaction-day ledger.
	Sparse bool
}

// ReportWriter exports computed reports somewhere outside the terminal.
type ReportWriter interface {
	WriteCashFlow(ctx context.Context, report *CashFlowReport) error
	WriteBalances(ctx context.Context, balances []AccountBalance) error
}

// DateRange represents a time period with start and end dates, both inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
