package sheets

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-cash-must-flow/internal/currency"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// Tab titles.
const (
	CashFlowTab = "Cash Flow"
	BalancesTab = "Statement Balances"
)

// RecurringRow is a single recurring category in the Cash Flow tab.
type RecurringRow struct {
	Category string
	Goal     decimal.Decimal
}

// MonthRow summarizes one projected month.
type MonthRow struct {
	Month         string // e.g. "January 2024"
	Contributors  string
	CashFlow      decimal.Decimal
	TargetBalance decimal.Decimal
}

// ContributorRow is one category counted in a month's cash flow.
type ContributorRow struct {
	Month       string
	Category    string
	AccountType string
	GoalMonth   string
	Goal        decimal.Decimal
}

// CashFlowData holds everything written to the Cash Flow tab.
type CashFlowData struct {
	GeneratedAt    time.Time
	BudgetName     string
	Recurring      []RecurringRow
	Months         []MonthRow
	Contributors   []ContributorRow
	Year           int
	RecurringTotal decimal.Decimal
	TargetADB      decimal.Decimal
}

// BalanceRow is one account's statement summary.
type BalanceRow struct {
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Account         string
	AccountType     string
	Method          string
	StartingBalance decimal.Decimal
	ToDate          decimal.Decimal
	Projected       decimal.Decimal
	ToDateDays      int
	ProjectedDays   int
}

// DailyBalanceRow is one day of an account's running balance.
type DailyBalanceRow struct {
	Date    time.Time
	Account string
	Net     decimal.Decimal
	Balance decimal.Decimal
}

// BalanceData holds everything written to the Statement Balances tab.
type BalanceData struct {
	Accounts []BalanceRow
	Daily    []DailyBalanceRow
}

func money(m model.Milliunits) decimal.Decimal {
	return currency.Units(m).Round(2)
}

// NewCashFlowData flattens a cash-flow report into sheet rows.
func NewCashFlowData(report *service.CashFlowReport) CashFlowData {
	data := CashFlowData{
		GeneratedAt:    report.GeneratedAt,
		BudgetName:     report.BudgetName,
		Year:           report.Year,
		RecurringTotal: money(report.RecurringTotal),
		TargetADB:      money(report.TargetADB),
	}

	for _, c := range report.Recurring {
		data.Recurring = append(data.Recurring, RecurringRow{
			Category: c.Name,
			Goal:     money(c.GoalTarget),
		})
	}

	for _, m := range report.Months {
		label := time.Date(report.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")

		names := make([]string, 0, len(m.Contributors))
		for _, c := range m.Contributors {
			names = append(names, c.Name)

			goalMonth := ""
			if c.HasGoalMonth() {
				goalMonth = c.GoalTargetMonth.Format(model.DayLayout)
			}
			data.Contributors = append(data.Contributors, ContributorRow{
				Month:       label,
				Category:    c.Name,
				AccountType: c.AccountType.String(),
				GoalMonth:   goalMonth,
				Goal:        money(c.GoalTarget),
			})
		}

		data.Months = append(data.Months, MonthRow{
			Month:         label,
			CashFlow:      money(m.CashFlow),
			TargetBalance: money(m.TargetBalance),
			Contributors:  strings.Join(names, "; "),
		})
	}

	return data
}

// NewBalanceData flattens statement balances into sheet rows.
func NewBalanceData(balances []service.AccountBalance) BalanceData {
	var data BalanceData

	for _, b := range balances {
		method := "daily"
		if b.Sparse {
			method = "transaction-day"
		}

		data.Accounts = append(data.Accounts, BalanceRow{
			Account:         b.Account.Name,
			AccountType:     b.Account.Type.String(),
			PeriodStart:     b.Period.Start,
			PeriodEnd:       b.Period.End,
			Method:          method,
			StartingBalance: money(b.StartingBalance),
			ToDate:          money(b.ToDate),
			ToDateDays:      b.ToDateDays,
			Projected:       money(b.Projected),
			ProjectedDays:   b.ProjectedDays,
		})

		for _, bucket := range b.Buckets {
			data.Daily = append(data.Daily, DailyBalanceRow{
				Account: b.Account.Name,
				Date:    bucket.Date,
				Net:     money(bucket.Net),
				Balance: money(bucket.Balance),
			})
		}
	}

	return data
}
