package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// MockWriter is a mock implementation of ReportWriter for testing.
type MockWriter struct {
	Err           error
	LastCashFlow  *service.CashFlowReport
	LastBalances  []service.AccountBalance
	CashFlowCalls int
	BalanceCalls  int
	mu            sync.Mutex
}

var _ service.ReportWriter = (*MockWriter)(nil)

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteCashFlow records the report.
func (m *MockWriter) WriteCashFlow(_ context.Context, report *service.CashFlowReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CashFlowCalls++
	m.LastCashFlow = report
	return m.Err
}

// WriteBalances records the balances.
func (m *MockWriter) WriteBalances(_ context.Context, balances []service.AccountBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BalanceCalls++
	m.LastBalances = append([]service.AccountBalance(nil), balances...)
	return m.Err
}

// SetWriteError configures the mock to fail every later write.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}
