package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/the-cash-must-flow/internal/currency"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// newTable returns a bordered table whose columns listed in amountCols are
// right aligned.
func newTable(headers []string, amountCols ...int) *table.Table {
	amounts := make(map[int]bool, len(amountCols))
	for _, c := range amountCols {
		amounts[c] = true
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(BorderColor)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case amounts[col]:
				return AmountCellStyle
			default:
				return TableCellStyle
			}
		})
}

// Money formats an amount, coloring negatives.
func Money(m model.Milliunits) string {
	s := currency.Format(m)
	if m < 0 {
		return ErrorStyle.Render(s)
	}
	return s
}

// RenderCashFlow renders the yearly cash-flow report: the recurring
// categories, one row per month, and each month's contributing lines.
func RenderCashFlow(report *service.CashFlowReport) string {
	var b strings.Builder

	b.WriteString(FormatTitle(fmt.Sprintf("Cash Flow %d: %s", report.Year, report.BudgetName)))
	b.WriteString("\n")

	recurring := newTable([]string{"Recurring", "Goal"}, 1)
	for _, c := range report.Recurring {
		recurring.Row(c.Name, Money(c.GoalTarget))
	}
	recurring.Row(BoldStyle.Render("Total"), BoldStyle.Render(Money(report.RecurringTotal)))
	b.WriteString(recurring.String())
	b.WriteString("\n\n")

	months := newTable([]string{"Month", "Cash Flow", "Target Balance", "Contributors"}, 1, 2)
	for _, m := range report.Months {
		months.Row(
			time.Month(m.Month).String(),
			Money(m.CashFlow),
			Money(m.TargetBalance),
			strconv.Itoa(len(m.Contributors)),
		)
	}
	b.WriteString(months.String())
	b.WriteString("\n")

	b.WriteString(SubtleStyle.Render(fmt.Sprintf("Target average daily balance %s", currency.Format(report.TargetADB))))
	b.WriteString("\n")

	return b.String()
}

// RenderMonth renders a single month's contributing lines in a box.
func RenderMonth(year int, m model.MonthReport) string {
	title := fmt.Sprintf("%s %s %d", CalendarIcon, time.Month(m.Month), year)

	var b strings.Builder
	for _, line := range m.Lines {
		b.WriteString("  • ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.Lines) == 0 {
		b.WriteString(SubtleStyle.Render("  nothing due"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Cash flow:      %s\n", Money(m.CashFlow))
	fmt.Fprintf(&b, "Target balance: %s", Money(m.TargetBalance))

	return RenderBox(title, b.String())
}

// RenderBalances renders one row per account with its averages.
func RenderBalances(balances []service.AccountBalance) string {
	if len(balances) == 0 {
		return FormatWarning("No balances computed")
	}

	var b strings.Builder

	p := balances[0].Period
	b.WriteString(FormatTitle(fmt.Sprintf("Statement %s → %s", model.DayKey(p.Start), model.DayKey(p.End))))
	b.WriteString("\n")

	t := newTable([]string{"Account", "Type", "Starting", "ADB To Date", "Days", "Projected ADB", "Days", "Method"}, 2, 3, 4, 5, 6)
	for _, bal := range balances {
		method := "daily"
		if bal.Sparse {
			method = "transaction-day"
		}
		t.Row(
			bal.Account.Name,
			bal.Account.Type.String(),
			Money(bal.StartingBalance),
			Money(bal.ToDate),
			strconv.Itoa(bal.ToDateDays),
			Money(bal.Projected),
			strconv.Itoa(bal.ProjectedDays),
			method,
		)
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	return b.String()
}

// RenderDailyBalances renders an account's per-day buckets.
func RenderDailyBalances(bal service.AccountBalance) string {
	t := newTable([]string{"Date", "Net", "Balance"}, 1, 2)
	for _, d := range bal.Buckets {
		t.Row(model.DayKey(d.Date), Money(d.Net), Money(d.Balance))
	}
	return SubtitleStyle.Render(BankIcon+" "+bal.Account.Name) + "\n" + t.String()
}

// RenderBudgets lists budgets.
func RenderBudgets(budgets []model.Budget) string {
	t := newTable([]string{"Budget", "ID"})
	for _, b := range budgets {
		t.Row(b.Name, b.ID)
	}
	return t.String()
}

// RenderAccounts lists accounts with type and current balance.
func RenderAccounts(accounts []model.Account) string {
	t := newTable([]string{"Account", "Type", "Balance", "ID"}, 2)
	for _, a := range accounts {
		name := a.Name
		if a.Closed {
			name = SubtleStyle.Render(name + " (closed)")
		}
		t.Row(name, a.Type.String(), Money(a.Balance), a.ID)
	}
	return t.String()
}

// RenderPeriod describes a statement period relative to today.
func RenderPeriod(start, end, today time.Time) string {
	elapsed := model.DaysBetween(start, today) + 1
	if elapsed < 0 {
		elapsed = 0
	}
	total := model.DaysBetween(start, end) + 1
	if elapsed > total {
		elapsed = total
	}

	content := fmt.Sprintf("Start:   %s\nEnd:     %s\nElapsed: %d of %d days",
		start.Format("Mon Jan 2, 2006"),
		end.Format("Mon Jan 2, 2006"),
		elapsed, total)

	return RenderBox(CalendarIcon+" Statement Period", content)
}
