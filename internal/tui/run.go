package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// ErrNothingToShow is returned when Run gets neither a report nor balances.
var ErrNothingToShow = errors.New("nothing to show")

// Run opens the browser in the alternate screen and blocks until the user
// quits or ctx is canceled.
func Run(ctx context.Context, report *service.CashFlowReport, opts ...Option) error {
	m := New(report, opts...)
	if report == nil && len(m.balances) == 0 {
		return ErrNothingToShow
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
