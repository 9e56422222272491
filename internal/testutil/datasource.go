// Package testutil provides an in-memory budget for tests of the report
// pipelines and commands.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// Method names accepted by FakeDataSource.FailOn.
const (
	MethodListBudgets              = "ListBudgets"
	MethodGetMonthCategories       = "GetMonthCategories"
	MethodGetAccounts              = "GetAccounts"
	MethodGetTransactions          = "GetTransactions"
	MethodGetTransactionsByAccount = "GetTransactionsByAccount"
)

// FakeDataSource is an in-memory service.DataSource. It serves one budget.
type FakeDataSource struct {
	failures     map[string]error
	accountFails map[string]error
	calls        map[string]int
	Budget       model.Budget
	Categories   []model.Category
	Accounts     []model.Account
	Transactions []model.Transaction
	// LastMonth is the month argument of the latest GetMonthCategories call.
	LastMonth time.Time
	mu        sync.Mutex
}

var _ service.DataSource = (*FakeDataSource)(nil)

// NewFakeDataSource creates an empty budget with the given ID and name.
func NewFakeDataSource(budgetID, name string) *FakeDataSource {
	return &FakeDataSource{
		Budget:       model.Budget{ID: budgetID, Name: name},
		failures:     make(map[string]error),
		accountFails: make(map[string]error),
		calls:        make(map[string]int),
	}
}

// WithAccount adds an account.
func (f *FakeDataSource) WithAccount(id, name string, accountType model.AccountType) *FakeDataSource {
	f.Accounts = append(f.Accounts, model.Account{ID: id, Name: name, Type: accountType})
	return f
}

// WithCategory adds a category. A zero goalMonth means no goal month.
func (f *FakeDataSource) WithCategory(id, name string, goal model.Milliunits, goalMonth time.Time) *FakeDataSource {
	c := model.Category{ID: id, Name: name, GoalTarget: goal}
	if !goalMonth.IsZero() {
		m := goalMonth
		c.GoalTargetMonth = &m
	}
	f.Categories = append(f.Categories, c)
	return f
}

// WithTransaction adds a transaction dated day ("YYYY-MM-DD").
func (f *FakeDataSource) WithTransaction(id, accountID, categoryID, day string, amount model.Milliunits) *FakeDataSource {
	date, err := model.ParseDay(day)
	if err != nil {
		panic(fmt.Sprintf("testutil: bad day %q: %v", day, err))
	}
	f.Transactions = append(f.Transactions, model.Transaction{
		ID:         id,
		AccountID:  accountID,
		CategoryID: categoryID,
		Date:       date,
		Amount:     amount,
	})
	return f
}

// FailOn makes every call of method return err.
func (f *FakeDataSource) FailOn(method string, err error) *FakeDataSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
	return f
}

// FailAccount makes GetTransactionsByAccount fail for one account.
func (f *FakeDataSource) FailAccount(accountID string, err error) *FakeDataSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountFails[accountID] = err
	return f
}

// Calls returns how many times method was called.
func (f *FakeDataSource) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeDataSource) enter(method, budgetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[method]++
	if err := f.failures[method]; err != nil {
		return &common.DataSourceError{Op: method, Err: err}
	}
	if method != MethodListBudgets && budgetID != f.Budget.ID {
		return &common.DataSourceError{Op: method, Err: fmt.Errorf("%w: budget %s", common.ErrNotFound, budgetID)}
	}
	return nil
}

// ListBudgets implements service.DataSource.
func (f *FakeDataSource) ListBudgets(_ context.Context) ([]model.Budget, error) {
	if err := f.enter(MethodListBudgets, ""); err != nil {
		return nil, err
	}
	return []model.Budget{f.Budget}, nil
}

// GetMonthCategories implements service.DataSource.
func (f *FakeDataSource) GetMonthCategories(_ context.Context, budgetID string, month time.Time) ([]model.Category, error) {
	if err := f.enter(MethodGetMonthCategories, budgetID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.LastMonth = month
	f.mu.Unlock()
	return append([]model.Category(nil), f.Categories...), nil
}

// GetAccounts implements service.DataSource.
func (f *FakeDataSource) GetAccounts(_ context.Context, budgetID string) ([]model.Account, error) {
	if err := f.enter(MethodGetAccounts, budgetID); err != nil {
		return nil, err
	}
	return append([]model.Account(nil), f.Accounts...), nil
}

// GetTransactions implements service.DataSource.
func (f *FakeDataSource) GetTransactions(_ context.Context, budgetID string) ([]model.Transaction, error) {
	if err := f.enter(MethodGetTransactions, budgetID); err != nil {
		return nil, err
	}
	return append([]model.Transaction(nil), f.Transactions...), nil
}

// GetTransactionsByAccount implements service.DataSource.
func (f *FakeDataSource) GetTransactionsByAccount(_ context.Context, budgetID, accountID string, start, end *time.Time) ([]model.Transaction, error) {
	if err := f.enter(MethodGetTransactionsByAccount, budgetID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	accountErr := f.accountFails[accountID]
	f.mu.Unlock()
	if accountErr != nil {
		return nil, &common.DataSourceError{Op: MethodGetTransactionsByAccount, Err: accountErr}
	}

	var out []model.Transaction
	for _, tx := range f.Transactions {
		if tx.AccountID != accountID {
			continue
		}
		if start != nil && tx.Date.Before(model.Day(*start)) {
			continue
		}
		if end != nil && tx.Date.After(model.Day(*end)) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
