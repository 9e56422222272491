package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/the-cash-must-flow/internal/currency"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// maxDetailDays caps how many daily buckets the balance detail lists.
const maxDetailDays = 31

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.view {
	case ViewMonths:
		body = m.renderMonths()
	case ViewMonthDetail:
		body = m.renderMonthDetail()
	case ViewBalances:
		body = m.renderBalances()
	case ViewBalanceDetail:
		body = m.renderBalanceDetail()
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, "", m.help.View(m.keymap))
}

func (m Model) money(amount model.Milliunits) string {
	s := currency.Format(amount)
	if amount < 0 {
		return m.theme.Negative.Render(s)
	}
	return s
}

func (m Model) renderMonths() string {
	if m.report == nil {
		return m.theme.Muted.Render("No cash flow report")
	}
	title := m.theme.Title.Render(fmt.Sprintf("Cash Flow %d", m.report.Year))
	subtitle := m.theme.Subtitle.Render(fmt.Sprintf("%s | recurring %s | target ADB %s",
		m.report.BudgetName,
		currency.Format(m.report.RecurringTotal),
		currency.Format(m.report.TargetADB)))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, m.months.View())
}

func (m Model) renderMonthDetail() string {
	idx := m.months.Cursor()
	if m.report == nil || idx < 0 || idx >= len(m.report.Months) {
		return m.theme.Muted.Render("No month selected")
	}
	month := m.report.Months[idx]

	var b strings.Builder
	for _, line := range month.Lines {
		b.WriteString("• ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(month.Lines) == 0 {
		b.WriteString(m.theme.Muted.Render("nothing due"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Cash flow:      %s\n", m.money(month.CashFlow))
	fmt.Fprintf(&b, "Target balance: %s", m.money(month.TargetBalance))

	title := m.theme.Title.Render(fmt.Sprintf("%s %d", time.Month(month.Month), m.report.Year))
	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.RoundedBox.Render(b.String()))
}

func (m Model) renderBalances() string {
	if len(m.balances) == 0 {
		return m.theme.Muted.Render("No balances computed")
	}
	p := m.balances[0].Period
	title := m.theme.Title.Render("Statement Balances")
	subtitle := m.theme.Subtitle.Render(fmt.Sprintf("%s → %s", model.DayKey(p.Start), model.DayKey(p.End)))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, m.accounts.View())
}

func (m Model) renderBalanceDetail() string {
	idx := m.accounts.Cursor()
	if idx < 0 || idx >= len(m.balances) {
		return m.theme.Muted.Render("No account selected")
	}
	bal := m.balances[idx]

	method := "daily"
	if bal.Sparse {
		method = "transaction-day"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Starting balance: %s\n", m.money(bal.StartingBalance))
	fmt.Fprintf(&b, "ADB to date:      %s over %d days\n", m.money(bal.ToDate), bal.ToDateDays)
	fmt.Fprintf(&b, "Projected ADB:    %s over %d days\n", m.money(bal.Projected), bal.ProjectedDays)
	fmt.Fprintf(&b, "Method:           %s", method)

	buckets := bal.Buckets
	if len(buckets) > maxDetailDays {
		buckets = buckets[len(buckets)-maxDetailDays:]
	}
	if len(buckets) > 0 {
		b.WriteString("\n\n")
		for _, d := range buckets {
			fmt.Fprintf(&b, "%s  %12s  %12s\n", model.DayKey(d.Date), currency.Format(d.Net), currency.Format(d.Balance))
		}
	}

	title := m.theme.Title.Render(bal.Account.Name)
	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.RoundedBox.Render(strings.TrimRight(b.String(), "\n")))
}
