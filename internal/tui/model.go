// Package tui provides an interactive browser for cash-flow and statement
// balance reports.
package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/the-cash-must-flow/internal/currency"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// View represents the current view mode.
type View int

const (
	ViewMonths View = iota
	ViewMonthDetail
	ViewBalances
	ViewBalanceDetail
)

const defaultTableHeight = 14

// Model holds the TUI state.
type Model struct {
	report   *service.CashFlowReport
	theme    Theme
	keymap   KeyMap
	help     help.Model
	balances []service.AccountBalance
	months   table.Model
	accounts table.Model
	width    int
	height   int
	view     View
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the theme.
func WithTheme(theme Theme) Option {
	return func(m *Model) {
		m.theme = theme
	}
}

// WithBalances adds a balances view reachable with Tab.
func WithBalances(balances []service.AccountBalance) Option {
	return func(m *Model) {
		m.balances = balances
	}
}

// New creates a model browsing the given report.
func New(report *service.CashFlowReport, opts ...Option) Model {
	m := Model{
		report: report,
		theme:  Default,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		view:   ViewMonths,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.months = m.newTable([]table.Column{
		{Title: "Month", Width: 10},
		{Title: "Cash Flow", Width: 14},
		{Title: "Target Balance", Width: 16},
		{Title: "Lines", Width: 6},
	}, m.monthRows())
	m.months.Focus()

	m.accounts = m.newTable([]table.Column{
		{Title: "Account", Width: 24},
		{Title: "Starting", Width: 14},
		{Title: "ADB To Date", Width: 14},
		{Title: "Projected", Width: 14},
		{Title: "Days", Width: 6},
	}, m.accountRows())

	if m.report == nil && len(m.balances) > 0 {
		m.view = ViewBalances
		m.months.Blur()
		m.accounts.Focus()
	}

	return m
}

func (m Model) newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(defaultTableHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(m.theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = m.theme.Selected
	t.SetStyles(s)

	return t
}

func (m Model) monthRows() []table.Row {
	if m.report == nil {
		return nil
	}
	rows := make([]table.Row, 0, len(m.report.Months))
	for _, month := range m.report.Months {
		rows = append(rows, table.Row{
			time.Month(month.Month).String(),
			currency.Format(month.CashFlow),
			currency.Format(month.TargetBalance),
			strconv.Itoa(len(month.Lines)),
		})
	}
	return rows
}

func (m Model) accountRows() []table.Row {
	rows := make([]table.Row, 0, len(m.balances))
	for _, bal := range m.balances {
		rows = append(rows, table.Row{
			bal.Account.Name,
			currency.Format(bal.StartingBalance),
			currency.Format(bal.ToDate),
			currency.Format(bal.Projected),
			strconv.Itoa(bal.ToDateDays),
		})
	}
	return rows
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if h := msg.Height - 8; h > 3 {
			m.months.SetHeight(h)
			m.accounts.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	switch m.view {
	case ViewMonths:
		m.months, cmd = m.months.Update(msg)
	case ViewBalances:
		m.accounts, cmd = m.accounts.Update(msg)
	}
	return m, cmd
}

// handleKey applies the model's own bindings. Keys it does not handle fall
// through to the focused table.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit, true

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return nil, true

	case key.Matches(msg, m.keymap.Select):
		switch m.view {
		case ViewMonths:
			if len(m.months.Rows()) > 0 {
				m.view = ViewMonthDetail
			}
		case ViewBalances:
			if len(m.accounts.Rows()) > 0 {
				m.view = ViewBalanceDetail
			}
		}
		return nil, true

	case key.Matches(msg, m.keymap.Back):
		switch m.view {
		case ViewMonthDetail:
			m.view = ViewMonths
		case ViewBalanceDetail:
			m.view = ViewBalances
		}
		return nil, true

	case key.Matches(msg, m.keymap.ToggleView):
		m.toggleView()
		return nil, true
	}

	return nil, false
}

func (m *Model) toggleView() {
	switch m.view {
	case ViewMonths, ViewMonthDetail:
		if len(m.balances) == 0 {
			return
		}
		m.view = ViewBalances
		m.months.Blur()
		m.accounts.Focus()
	case ViewBalances, ViewBalanceDetail:
		if m.report == nil {
			return
		}
		m.view = ViewMonths
		m.accounts.Blur()
		m.months.Focus()
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() View {
	return m.view
}

// SelectedMonth returns the index of the highlighted month.
func (m Model) SelectedMonth() int {
	return m.months.Cursor()
}

// SelectedAccount returns the index of the highlighted account.
func (m Model) SelectedAccount() int {
	return m.accounts.Cursor()
}
